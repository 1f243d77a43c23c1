package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/timeline"
)

const (
	padding   = 24
	titleSize = 32
	bodySize  = 18
	qrSize    = 128
)

var (
	background = color.RGBA{R: 12, G: 12, B: 16, A: 200}
	foreground = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// TextBox is the revealed overlay. It renders its card once and keeps the
// transform applied by the renderer.
type TextBox struct {
	mu    sync.Mutex
	state timeline.TextBoxState
	card  *image.RGBA
}

// New renders the card for text at the given width.
func New(text config.TextConfig, width int) (*TextBox, error) {
	card, err := renderCard(text, width)
	if err != nil {
		return nil, err
	}
	return &TextBox{state: timeline.HiddenTextBox(), card: card}, nil
}

// Apply implements renderer.TextBox.
func (b *TextBox) Apply(st timeline.TextBoxState) {
	b.mu.Lock()
	b.state = st
	b.mu.Unlock()
}

func (b *TextBox) State() timeline.TextBoxState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Card is the rendered overlay without transform.
func (b *TextBox) Card() *image.RGBA {
	return b.card
}

func (b *TextBox) Visible() bool {
	return b.State().Opacity > 0
}

// Compose draws the card onto dst with its top-left corner at `at`, shifted
// down by the current offset and faded by the current opacity.
func (b *TextBox) Compose(dst draw.Image, at image.Point) {
	st := b.State()
	if st.Opacity <= 0 {
		return
	}
	alpha := uint8(min(st.Opacity, 1) * 255)
	origin := at.Add(image.Pt(0, int(st.OffsetY)))
	r := b.card.Bounds().Sub(b.card.Bounds().Min).Add(origin)
	draw.DrawMask(dst, r, b.card, b.card.Bounds().Min, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
}

func renderCard(text config.TextConfig, width int) (*image.RGBA, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	title, err := opentype.NewFace(f, &opentype.FaceOptions{Size: titleSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	defer title.Close()
	body, err := opentype.NewFace(f, &opentype.FaceOptions{Size: bodySize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var qr image.Image
	if text.Link != "" {
		q, err := qrcode.New(text.Link, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encode link %q: %w", text.Link, err)
		}
		q.DisableBorder = true
		qr = q.Image(qrSize)
	}

	textWidth := width - 2*padding
	if qr != nil {
		textWidth -= qrSize + padding
	}
	if textWidth < 1 {
		return nil, fmt.Errorf("overlay width %d too narrow", width)
	}

	var lines []line
	if text.Title != "" {
		for _, l := range wrap(title, text.Title, textWidth) {
			lines = append(lines, line{face: title, text: l})
		}
	}
	for _, para := range strings.Split(text.Body, "\n") {
		for _, l := range wrap(body, para, textWidth) {
			lines = append(lines, line{face: body, text: l})
		}
	}

	height := padding
	for _, l := range lines {
		height += l.face.Metrics().Height.Ceil()
	}
	height += padding
	if qr != nil {
		height = max(height, qrSize+2*padding)
	}

	card := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(card, card.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	y := padding
	for _, l := range lines {
		m := l.face.Metrics()
		d := font.Drawer{
			Dst:  card,
			Src:  image.NewUniform(foreground),
			Face: l.face,
			Dot:  fixed.P(padding, y+m.Ascent.Ceil()),
		}
		d.DrawString(l.text)
		y += m.Height.Ceil()
	}

	if qr != nil {
		at := image.Pt(width-padding-qrSize, padding)
		draw.Draw(card, image.Rectangle{Min: at, Max: at.Add(qr.Bounds().Size())}, qr, qr.Bounds().Min, draw.Src)
	}
	return card, nil
}

type line struct {
	face font.Face
	text string
}

// wrap breaks s into lines no wider than width. A single word wider than the
// line is kept on its own line.
func wrap(face font.Face, s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	limit := fixed.I(width)
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if font.MeasureString(face, next) > limit {
			out = append(out, cur)
			cur = w
			continue
		}
		cur = next
	}
	return append(out, cur)
}
