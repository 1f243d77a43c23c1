package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/ivlev/scrollseq/internal/animation"
	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/export"
	"github.com/ivlev/scrollseq/internal/overlay"
	"github.com/ivlev/scrollseq/internal/pin"
	"github.com/ivlev/scrollseq/internal/renderer"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/system"
	"github.com/ivlev/scrollseq/internal/timeline"
	"github.com/ivlev/scrollseq/internal/viewer"
)

const maxOverlayWidth = 560

func main() {
	configPtr := flag.String("config", "", "YAML config file (defaults are used when empty)")
	writeConfigPtr := flag.String("write-config", "", "Write the effective config to this path and exit")
	firstPtr := flag.String("first", "", "Reference of frame 1 (path, URL or file.pdf#page=1)")
	patternPtr := flag.String("pattern", "", "Template for frames 2..N, e.g. frames/%04d.jpg")
	framesPtr := flag.Int("frames", 0, "Total number of frames")
	sensitivityPtr := flag.Float64("sensitivity", 0, "Scroll units per frame")
	revealPtr := flag.Int("reveal-start", -1, "Frame at which the text overlay starts to reveal")
	easePtr := flag.String("ease", "", "Reveal easing: "+strings.Join(timeline.EasingNames(), ", "))
	concurrencyPtr := flag.Int("max-concurrent", -1, "Cap on in-flight frame fetches (0 = unbounded)")
	titlePtr := flag.String("title", "", "Overlay title")
	bodyPtr := flag.String("body", "", "Overlay body text")
	linkPtr := flag.String("link", "", "Overlay link, rendered as a QR code")
	exportPtr := flag.String("export", "", "Export a preview instead of opening a window: a directory for PNGs or an .mp4 path")
	samplesPtr := flag.Int("samples", 0, "Number of preview samples")
	encoderPtr := flag.String("encoder", "", "ffmpeg video encoder for .mp4 export (auto picks hardware H.264)")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		cfg = loaded
	}

	if *firstPtr != "" {
		cfg.FirstFrame = *firstPtr
	}
	if *patternPtr != "" {
		cfg.FramePattern = *patternPtr
	}
	if *framesPtr > 0 {
		cfg.TotalFrames = *framesPtr
	}
	if *sensitivityPtr > 0 {
		cfg.ScrollSensitivity = *sensitivityPtr
	}
	if *revealPtr >= 0 {
		cfg.RevealStartFrame = *revealPtr
	}
	if *easePtr != "" {
		cfg.RevealEase = *easePtr
	}
	if *concurrencyPtr >= 0 {
		cfg.MaxConcurrent = *concurrencyPtr
	}
	if *titlePtr != "" {
		cfg.Text.Title = *titlePtr
	}
	if *bodyPtr != "" {
		cfg.Text.Body = *bodyPtr
	}
	if *linkPtr != "" {
		cfg.Text.Link = *linkPtr
	}
	if *exportPtr != "" {
		cfg.Export.Output = *exportPtr
	}
	if *samplesPtr > 0 {
		cfg.Export.Samples = *samplesPtr
	}
	if *encoderPtr != "" {
		cfg.Export.Encoder = *encoderPtr
	}

	if *writeConfigPtr != "" {
		if err := cfg.Save(*writeConfigPtr); err != nil {
			log.Fatalf("[-] %v", err)
		}
		fmt.Printf("[+++] Config written: %s\n", *writeConfigPtr)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid configuration: %v", err)
	}

	system.InitResourceLimits(logger, uint64(cfg.TotalFrames)+256)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := source.NewRouter(source.HTTPOptions{
		Timeout:   cfg.FetchTimeout,
		UserAgent: "scrollseq/1.0",
	})
	pinner := pin.NewScrollPinner(float64(cfg.Window.Height))

	box, err := overlay.New(cfg.Text, min(maxOverlayWidth, cfg.Window.Width-64))
	if err != nil {
		log.Fatalf("[-] Overlay: %v", err)
	}

	fmt.Printf("[*] Sequence: %s | %d frames | scroll %.0f\n", cfg.FirstFrame, cfg.TotalFrames, cfg.ScrollBudget())

	if cfg.Export.Output != "" {
		if err := runExport(ctx, cfg, fetcher, pinner, box, logger); err != nil {
			log.Fatalf("[-] Export: %v", err)
		}
		fmt.Printf("[+++] Preview written: %s\n", cfg.Export.Output)
		return
	}

	surface := viewer.NewSurface()
	anim, err := animation.New(cfg, fetcher, pinner, surface, box, logger)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if err := anim.Mount(ctx); err != nil {
		log.Fatalf("[-] %v", err)
	}
	game, err := viewer.NewGame(cfg, anim, pinner, surface, box, logger)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if err := viewer.Run(game); err != nil {
		log.Fatalf("[-] Viewer: %v", err)
	}
}

func runExport(ctx context.Context, cfg *config.Config, fetcher source.Fetcher, pinner *pin.ScrollPinner,
	box *overlay.TextBox, logger *slog.Logger) error {
	surface := renderer.NewImageSurface(cfg.Window.Width, cfg.Window.Height)
	defer surface.Release()

	anim, err := animation.New(cfg, fetcher, pinner, surface, box, logger)
	if err != nil {
		return err
	}
	if err := anim.Mount(ctx); err != nil {
		return err
	}
	defer anim.Unmount()

	var sink export.Sink
	out := cfg.Export.Output
	if strings.EqualFold(filepath.Ext(out), ".mp4") {
		sink, err = export.NewFFmpegSink(ctx, out, cfg.Window.Width, cfg.Window.Height,
			cfg.Export.FPS, cfg.Export.Encoder, cfg.Export.Quality)
	} else {
		sink, err = export.NewPNGSink(out)
	}
	if err != nil {
		return err
	}

	e := &export.Exporter{
		Width:   cfg.Window.Width,
		Height:  cfg.Window.Height,
		Samples: cfg.Export.Samples,
		Logger:  logger,
	}
	n, runErr := e.Run(ctx, anim, pinner, surface, box, sink)
	closeErr := sink.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	fmt.Printf("[*] %d samples\n", n)
	return nil
}
