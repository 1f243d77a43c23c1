package source

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type HTTPOptions struct {
	Timeout   time.Duration // 0 means no timeout
	UserAgent string
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, ref string) (*Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", ref, resp.Status)
	}
	return decode(ref, resp.Body)
}
