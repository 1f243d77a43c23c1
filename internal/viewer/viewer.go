package viewer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/scrollseq/internal/animation"
	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/loader"
	"github.com/ivlev/scrollseq/internal/overlay"
	"github.com/ivlev/scrollseq/internal/pin"
)

const overlayMargin = 32

var (
	pageColor  = color.RGBA{18, 18, 22, 255}
	trackColor = color.RGBA{255, 255, 255, 40}
	thumbColor = color.RGBA{255, 255, 255, 160}
)

// Game hosts one animation in an ebiten window. The mouse wheel and the
// keyboard drive the scroll pinner; binding and painting happen in Update.
type Game struct {
	cfg     *config.Config
	anim    *animation.Animation
	pinner  *pin.ScrollPinner
	surface *Surface
	box     *overlay.TextBox
	height  pin.Length
	logger  *slog.Logger

	face      *text.GoTextFace
	textOpts  text.DrawOptions
	card      *ebiten.Image
	preview   *ebiten.Image
	previewOf image.Image

	width, viewport int
}

// NewGame wires the animation to an ebiten surface and the given pinner.
func NewGame(cfg *config.Config, anim *animation.Animation, pinner *pin.ScrollPinner,
	surface *Surface, box *overlay.TextBox, logger *slog.Logger) (*Game, error) {
	height, err := pin.ParseLength(cfg.PinHeight)
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Game{
		cfg:      cfg,
		anim:     anim,
		pinner:   pinner,
		surface:  surface,
		box:      box,
		height:   height,
		logger:   logger,
		face:     &text.GoTextFace{Source: src, Size: 16},
		width:    cfg.Window.Width,
		viewport: cfg.Window.Height,
	}
	if box != nil {
		g.card = ebiten.NewImageFromImage(box.Card())
	}
	return g, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	step := g.cfg.ScrollStep
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.pinner.Scroll(-dy * step)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyJ):
		g.pinner.Scroll(step / 4)
	case ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyK):
		g.pinner.Scroll(-step / 4)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.pinner.Scroll(float64(g.viewport))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.pinner.Scroll(-float64(g.viewport))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.pinner.ScrollTo(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) {
		g.pinner.ScrollTo(g.pinner.Extent())
	}

	g.anim.Poll()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(pageColor)
	box := container(g.width, g.viewport, g.height)
	if box.Empty() {
		return
	}
	area := screen.SubImage(box).(*ebiten.Image)

	if g.anim.Bound() && g.surface.Image() != nil {
		w, h := g.surface.Size()
		drawFitted(area, g.surface.Image(), w, h, box)
	} else if ph := g.anim.Placeholder(); ph != nil {
		if g.previewOf != ph.Image {
			g.preview = ebiten.NewImageFromImage(ph.Image)
			g.previewOf = ph.Image
		}
		drawFitted(area, g.preview, ph.Width, ph.Height, box)
	}

	if g.card != nil && g.box.Visible() {
		st := g.box.State()
		at := overlayOrigin(g.card.Bounds().Size(), box, overlayMargin)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(at.X), float64(at.Y)+st.OffsetY)
		op.ColorScale.ScaleAlpha(float32(st.Opacity))
		area.DrawImage(g.card, op)
	}

	g.drawScrollbar(screen)
	if st := g.anim.State(); !st.Terminal() || !g.anim.Bound() {
		g.drawStatus(screen, st)
	}
}

func drawFitted(dst, img *ebiten.Image, w, h int, box image.Rectangle) {
	scale, at := fitWidth(w, h, box)
	if scale == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(at.X), float64(at.Y))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

func (g *Game) drawScrollbar(screen *ebiten.Image) {
	extent := g.pinner.Extent()
	if extent <= 0 {
		return
	}
	const barW = 6
	x := float32(g.width - barW - 4)
	track := float32(g.viewport - 8)
	vector.FillRect(screen, x, 4, barW, track, trackColor, false)
	thumb := max(track*float32(float64(g.viewport)/(extent+float64(g.viewport))), 12)
	y := 4 + (track-thumb)*float32(g.pinner.Offset()/extent)
	vector.FillRect(screen, x, y, barW, thumb, thumbColor, false)
}

func (g *Game) drawStatus(screen *ebiten.Image, st loader.State) {
	msg := fmt.Sprintf("%s · %d frames · scroll %.0f", st, g.cfg.TotalFrames, g.cfg.ScrollBudget())
	if st.Terminal() && !g.anim.Bound() {
		msg = "sequence unavailable"
	}
	g.textOpts.GeoM.Reset()
	g.textOpts.GeoM.Translate(12, 10)
	g.textOpts.ColorScale.Reset()
	g.textOpts.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, msg, g.face, &g.textOpts)
}

// Layout follows the window so that viewport-relative pin heights track resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.viewport {
		g.width, g.viewport = outsideWidth, outsideHeight
		g.pinner.SetViewport(float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.cfg.Window.Width, g.cfg.Window.Height)
	ebiten.SetWindowTitle(g.cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	g.logger.Info("viewer started", "width", g.cfg.Window.Width, "height", g.cfg.Window.Height)
	err := ebiten.RunGame(g)
	g.anim.Unmount()
	g.surface.Dispose()
	if err == ebiten.Termination {
		return nil
	}
	return err
}
