package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

var ErrUnsupported = errors.New("unsupported frame reference")

// Frame is a successfully fetched and decoded image with its natural size.
type Frame struct {
	Ref    string
	Image  image.Image
	Width  int
	Height int
}

func NewFrame(ref string, img image.Image) *Frame {
	b := img.Bounds()
	return &Frame{Ref: ref, Image: img, Width: b.Dx(), Height: b.Dy()}
}

// Fetcher fetches the content behind a reference. Implementations must be safe
// for concurrent use: the loader calls Fetch from one goroutine per frame.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (*Frame, error)
}

// Router dispatches a reference to the fetcher that understands it.
type Router struct {
	File *FileFetcher
	HTTP *HTTPFetcher
	PDF  *PDFFetcher
}

func NewRouter(opts HTTPOptions) *Router {
	return &Router{
		File: &FileFetcher{},
		HTTP: NewHTTPFetcher(opts),
		PDF:  &PDFFetcher{DPI: 150},
	}
}

func (r *Router) Fetch(ctx context.Context, ref string) (*Frame, error) {
	switch Kind(ref) {
	case "http":
		if r.HTTP != nil {
			return r.HTTP.Fetch(ctx, ref)
		}
	case "pdf":
		if r.PDF != nil {
			return r.PDF.Fetch(ctx, ref)
		}
	default:
		if r.File != nil {
			return r.File.Fetch(ctx, ref)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, ref)
}

// Kind classifies a reference as "http", "pdf" or "file".
func Kind(ref string) string {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return "http"
	case strings.Contains(lower, ".pdf#page="):
		return "pdf"
	default:
		return "file"
	}
}
