package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBodyBytes caps the response body size; a larger body fails the fetch.
	MaxBodyBytes int64
	// RatePerSec spaces out requests across all workers. Zero disables it.
	RatePerSec float64
}

// HTTPFetcher implements Fetcher using net/http. It makes exactly one attempt
// per call.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; stoltzen-cli/1.0)"
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 2 << 20
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch GETs the URL and returns its body decoded to UTF-8. Every failure is
// reported as a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	fail := func(status int, err error) (*Page, error) {
		return nil, &FetchError{URL: rawURL, StatusCode: status, Err: err}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return fail(0, eris.Wrap(err, "rate limiter wait"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(0, eris.Wrap(err, "create request"))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "nb-NO,nb;q=0.9,no;q=0.8,en;q=0.6")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fail(0, eris.Wrap(err, "request"))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return fail(resp.StatusCode, eris.Wrap(err, "read body"))
	}
	if int64(len(raw)) > f.opts.MaxBodyBytes {
		return fail(resp.StatusCode, eris.Errorf("body exceeds %d bytes", f.opts.MaxBodyBytes))
	}

	zap.L().Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if blocked, kind := DetectBlock(resp, raw); blocked {
		return fail(resp.StatusCode, eris.Errorf("blocked (%s)", kind))
	}

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, eris.Errorf("unexpected status %s", resp.Status))
	}

	if len(raw) == 0 {
		return fail(resp.StatusCode, eris.New("empty body"))
	}

	body, charset, err := DecodeBody(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	return &Page{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Charset:    charset,
		Body:       body,
	}, nil
}
