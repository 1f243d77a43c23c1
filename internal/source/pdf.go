package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFFetcher rasterises a single page of a PDF document, addressed as
// "deck.pdf#page=N" with N starting at 1.
type PDFFetcher struct {
	DPI int
}

func (p *PDFFetcher) Fetch(ctx context.Context, ref string) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, page, err := ParsePageRef(ref)
	if err != nil {
		return nil, err
	}

	// A document handle is not safe for concurrent rendering, so every fetch opens its own.
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page > doc.NumPage() {
		return nil, fmt.Errorf("%s: page %d out of range (document has %d)", path, page, doc.NumPage())
	}

	dpi := p.DPI
	if dpi <= 0 {
		dpi = 150
	}
	img, err := doc.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ref, err)
	}
	return NewFrame(ref, img), nil
}

// ParsePageRef splits "deck.pdf#page=3" into the document path and the 1-based page.
func ParsePageRef(ref string) (string, int, error) {
	idx := strings.LastIndex(ref, "#page=")
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupported, ref)
	}
	page, err := strconv.Atoi(ref[idx+len("#page="):])
	if err != nil || page < 1 {
		return "", 0, fmt.Errorf("invalid page in %s", ref)
	}
	return ref[:idx], page, nil
}
