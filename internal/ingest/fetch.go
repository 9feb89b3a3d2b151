package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// maxPageBytes bounds how much of an upstream page is read.
const maxPageBytes = 4 << 20

// NewHTTPClient returns an http.Client tuned for polling an upstream
// directory.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Retry runs fn up to attempts times with bounded exponential backoff.
func Retry(ctx context.Context, attempts int, initial, max time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}
	d := initial
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := fn(); err != nil {
			if i == attempts-1 {
				return err
			}
			if d < max {
				d *= 2
				if d > max {
					d = max
				}
			}
			continue
		}
		return nil
	}
	return errors.New("retry: exhausted")
}

// PageFetcher retrieves the body of one upstream page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

type httpFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher returns a PageFetcher backed by a plain HTTP GET.
func NewHTTPFetcher(timeout time.Duration, userAgent string) PageFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &httpFetcher{client: NewHTTPClient(timeout), userAgent: userAgent}
}

func (f *httpFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

type renderedFetcher struct {
	timeout time.Duration
}

// NewRenderedFetcher returns a PageFetcher that loads the page in headless
// Chromium and returns the rendered DOM. Needed for listing sites that are
// empty shells without JavaScript.
func NewRenderedFetcher(timeout time.Duration) PageFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &renderedFetcher{timeout: timeout}
}

func (f *renderedFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	cctx, timeoutCancel := context.WithTimeout(cctx, f.timeout)
	defer timeoutCancel()

	var rendered string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay to allow client-side rendering to settle.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	}
	if err := chromedp.Run(cctx, tasks); err != nil {
		return nil, fmt.Errorf("rendered fetch %s: %w", url, err)
	}
	return []byte(rendered), nil
}
