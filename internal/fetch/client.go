// Package fetch implements the binary fetch primitive over HTTP: a GET with
// chunked progress reporting and context cancellation.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/folio/internal/domain"
)

const (
	defaultTimeout = 2 * time.Minute
	userAgent      = "Folio/1.0"
	chunkSize      = 32 * 1024
	maxPrealloc    = 8 << 20 // Content-Length is only a hint
)

// Client downloads preview assets
type Client struct {
	httpClient *http.Client
	maxBytes   int64 // 0 = unlimited
	logger     *slog.Logger
}

// NewClient creates a fetch client. A zero timeout uses the default.
func NewClient(timeout time.Duration, maxBytes int64, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch downloads url, calling onProgress after the headers and after every
// chunk. Cancelling ctx yields an error matching domain.ErrCancelled.
func (c *Client) Fetch(ctx context.Context, url string, onProgress domain.ProgressFunc) (domain.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*,video/*;q=0.8,*/*;q=0.5")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("preview request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Payload{}, c.transferError(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("preview request error", "url", url, "status", resp.StatusCode)
		return domain.Payload{}, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}

	total := resp.ContentLength
	if c.maxBytes > 0 && total > c.maxBytes {
		return domain.Payload{}, fmt.Errorf("%w: %d > %d bytes", domain.ErrTooLarge, total, c.maxBytes)
	}

	data, err := c.readBody(ctx, resp.Body, total, onProgress)
	if err != nil {
		return domain.Payload{}, c.transferError(ctx, url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return domain.Payload{Data: data, ContentType: contentType}, nil
}

// initialCapacity sizes the body buffer from the announced length, bounded
// by the size limit and maxPrealloc.
func (c *Client) initialCapacity(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(maxPrealloc)
	if c.maxBytes > 0 {
		limit = min(limit, c.maxBytes+1)
	}
	return int(min(total, limit))
}

func (c *Client) readBody(ctx context.Context, body io.Reader, total int64, onProgress domain.ProgressFunc) ([]byte, error) {
	report := func(loaded int64) {
		if onProgress != nil {
			onProgress(loaded, total)
		}
	}

	data := make([]byte, 0, c.initialCapacity(total))
	report(0)

	buf := make([]byte, chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
				return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrTooLarge, c.maxBytes)
			}
			report(int64(len(data)))
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
}

// transferError marks failures caused by cancelling ctx so callers can tell
// them apart from network errors.
func (c *Client) transferError(ctx context.Context, url string, err error) error {
	if errors.Is(err, domain.ErrTooLarge) {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	c.logger.Debug("preview request failed", "url", url, "error", err)
	return fmt.Errorf("failed to fetch preview: %w", err)
}
