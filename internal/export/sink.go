package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/scrollseq/internal/system"
)

// Sink receives composited preview frames in order.
type Sink interface {
	WriteFrame(index int, img *image.RGBA) error
	Close() error
}

// PNGSink writes every frame as frame_NNNN.png into Dir.
type PNGSink struct {
	Dir     string
	written int
}

func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSink{Dir: dir}, nil
}

func (s *PNGSink) WriteFrame(index int, img *image.RGBA) error {
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%04d.png", index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	s.written++
	return f.Close()
}

func (s *PNGSink) Close() error {
	return nil
}

// FFmpegSink pipes raw RGBA frames into an ffmpeg process that encodes them
// as H.264.
type FFmpegSink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	w, h  int
}

// NewFFmpegSink starts ffmpeg for a w×h stream. An encoder of "auto" picks
// the best H.264 encoder available.
func NewFFmpegSink(ctx context.Context, path string, w, h, fps int, encoder string, quality int) (*FFmpegSink, error) {
	if !system.HasFFmpeg() {
		return nil, fmt.Errorf("ffmpeg not found in PATH")
	}
	if encoder == "" || encoder == "auto" {
		encoder = system.BestH264Encoder()
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(w, h, fps, encoder, quality, path)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &FFmpegSink{cmd: cmd, stdin: stdin, w: w, h: h}, nil
}

func ffmpegArgs(w, h, fps int, encoder string, quality int, path string) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	switch encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}
	return append(args, path)
}

func (s *FFmpegSink) WriteFrame(index int, img *image.RGBA) error {
	if img.Rect.Dx() != s.w || img.Rect.Dy() != s.h {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", index, img.Rect.Dx(), img.Rect.Dy(), s.w, s.h)
	}
	if _, err := s.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (s *FFmpegSink) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", err)
	}
	return nil
}
