// Package sheets fetches the spreadsheet CSV export
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/networth/internal/common"
	"github.com/bobmcallan/networth/internal/models"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
	MaxBodySize      = 16 << 20
)

// ErrBodyTooLarge is returned instead of a truncated export.
var ErrBodyTooLarge = errors.New("sheet export exceeds size limit")

// Client downloads a published CSV export over HTTP
type Client struct {
	exportURL  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	maxBody    int64
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxBodySize caps the export size in bytes
func WithMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for one export URL
func NewClient(exportURL string, opts ...ClientOption) *Client {
	c := &Client{
		exportURL: exportURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		maxBody: MaxBodySize,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 export response
type APIError struct {
	StatusCode int
	Message    string
	Host       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheet export error: %s (status: %d, host: %s)", e.Message, e.StatusCode, e.Host)
}

// SourceID identifies the export for cache keys
func (c *Client) SourceID() string {
	return "url:" + c.exportURL
}

// Fetch performs a rate-limited GET of the export
func (c *Client) Fetch(ctx context.Context) (*models.SheetSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	// The export URL embeds the sheet key; only the host is logged.
	host := redactedHost(c.exportURL)
	c.logger.Debug().Str("host", host).Msg("Sheet export request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error prints the full URL
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("failed to execute request to %s: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Host:       host,
		}
	}

	body, err := readLimited(resp.Body, c.maxBody)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("host", host).Int("bytes", len(body)).Msg("Sheet export fetched")

	return &models.SheetSnapshot{
		SourceID:  c.SourceID(),
		Body:      body,
		FetchedAt: c.now(),
	}, nil
}

// readLimited reads one byte past limit so an oversized body fails instead
// of being parsed as a complete export.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

func redactedHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// FileSource reads the export from a local CSV file
type FileSource struct {
	path string
	now  func() time.Time
}

// NewFileSource creates a file-backed source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, now: time.Now}
}

// SourceID identifies the file for cache keys
func (f *FileSource) SourceID() string {
	return "file:" + f.path
}

// Fetch reads the whole file
func (f *FileSource) Fetch(ctx context.Context) (*models.SheetSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet file: %w", err)
	}
	defer file.Close()

	body, err := readLimited(file, MaxBodySize)
	if err != nil {
		return nil, err
	}
	return &models.SheetSnapshot{
		SourceID:  f.SourceID(),
		Body:      body,
		FetchedAt: f.now(),
	}, nil
}
