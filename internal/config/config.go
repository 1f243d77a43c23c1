package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrNoFirstFrame = errors.New("first_frame is required")

type Config struct {
	FirstFrame        string        `yaml:"first_frame"`
	TotalFrames       int           `yaml:"total_frames"`
	FramePattern      string        `yaml:"frame_pattern"`
	ScrollSensitivity float64       `yaml:"scroll_sensitivity"`
	PinHeight         string        `yaml:"pin_height"`
	RevealStartFrame  int           `yaml:"reveal_start_frame"`
	RevealEase        string        `yaml:"reveal_ease"`
	MaxConcurrent     int           `yaml:"max_concurrent"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	ScrollStep        float64       `yaml:"scroll_step"`
	Text              TextConfig    `yaml:"text"`
	Window            WindowConfig  `yaml:"window"`
	Export            ExportConfig  `yaml:"export"`
}

// TextConfig is the content of the overlay that is revealed near the end of the sequence.
type TextConfig struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Link  string `yaml:"link"` // rendered as a QR code when set
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ExportConfig struct {
	Output  string `yaml:"output"` // directory for PNG snapshots or an .mp4 path
	Samples int    `yaml:"samples"`
	FPS     int    `yaml:"fps"`
	Encoder string `yaml:"encoder"`
	Quality int    `yaml:"quality"`
}

// FrameSpec describes the sequence to preload. Index 1 is FirstFrameRef, indices
// 2..TotalFrames are produced by FramePathRule.
type FrameSpec struct {
	TotalFrames   int
	FirstFrameRef string
	FramePathRule func(index int) string
}

// Ref returns the reference of the frame at source index (1-based).
func (s FrameSpec) Ref(index int) string {
	if index == 1 || s.FramePathRule == nil {
		return s.FirstFrameRef
	}
	return s.FramePathRule(index)
}

func Default() *Config {
	return &Config{
		TotalFrames:       48,
		FramePattern:      "frames/%04d.jpg",
		ScrollSensitivity: 15,
		PinHeight:         "100vh",
		RevealStartFrame:  30,
		RevealEase:        "outQuad",
		ScrollStep:        60,
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "scrollseq",
		},
		Export: ExportConfig{
			Samples: 96,
			FPS:     30,
			Encoder: "libx264",
			Quality: 23,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.FirstFrame == "" {
		return ErrNoFirstFrame
	}
	if c.TotalFrames < 1 {
		return fmt.Errorf("total_frames must be positive, got %d", c.TotalFrames)
	}
	if c.ScrollSensitivity <= 0 {
		return fmt.Errorf("scroll_sensitivity must be positive, got %g", c.ScrollSensitivity)
	}
	if c.TotalFrames > 1 {
		if err := checkPattern(c.FramePattern); err != nil {
			return err
		}
	}
	if c.RevealStartFrame < 0 || c.RevealStartFrame > c.TotalFrames-1 {
		return fmt.Errorf("reveal_start_frame %d out of range [0, %d]", c.RevealStartFrame, c.TotalFrames-1)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent must not be negative, got %d", c.MaxConcurrent)
	}
	return nil
}

func checkPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("frame_pattern is required when total_frames > 1")
	}
	if out := fmt.Sprintf(pattern, 2); strings.Contains(out, "%!") {
		return fmt.Errorf("frame_pattern %q must take exactly one integer verb", pattern)
	}
	return nil
}

// FrameSpec builds the immutable sequence description. The path rule only
// closes over the pattern string, so it is safe to call from concurrent fetches.
func (c *Config) FrameSpec() FrameSpec {
	pattern := c.FramePattern
	return FrameSpec{
		TotalFrames:   c.TotalFrames,
		FirstFrameRef: c.FirstFrame,
		FramePathRule: func(index int) string {
			return fmt.Sprintf(pattern, index)
		},
	}
}

// ScrollBudget is the scroll distance consumed by the whole sequence.
func (c *Config) ScrollBudget() float64 {
	return float64(c.TotalFrames) * c.ScrollSensitivity
}
