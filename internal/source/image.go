package source

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// FileFetcher reads frames from the local filesystem. A "file://" prefix is accepted.
type FileFetcher struct{}

func (s *FileFetcher) Fetch(ctx context.Context, ref string) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(ref, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decode(ref, f)
}

func decode(ref string, r io.Reader) (*Frame, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return NewFrame(ref, img), nil
}
