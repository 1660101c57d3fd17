// Package optimizer is an HTTP client for the out-of-process timetable
// optimization engine.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/pkg/config"
)

// ErrTimeout reports that the engine did not answer within the configured timeout.
var ErrTimeout = errors.New("optimizer timed out")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("optimizer returned %d: %s", e.Status, e.Body)
}

// Client calls /optimize/sync and /optimize/async. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client bound to cfg.BaseURL with cfg.Timeout per call.
func NewClient(cfg config.OptimizerConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Optimize runs a synchronous optimization.
func (c *Client) Optimize(ctx context.Context, job JobRequest) (*Result, error) {
	var result Result
	if err := c.post(ctx, "/optimize/sync", job, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Submit starts an asynchronous optimization and returns the upstream job.
func (c *Client) Submit(ctx context.Context, job JobRequest) (*JobAccepted, error) {
	var accepted JobAccepted
	if err := c.post(ctx, "/optimize/async", job, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode optimizer request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build optimizer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("optimizer request failed", zap.String("path", path), zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("call optimizer: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("optimizer rejected request", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return &StatusError{Status: resp.StatusCode, Body: string(snippet)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode optimizer response: %w", err)
	}
	c.logger.Info("optimizer call completed", zap.String("path", path), zap.Duration("elapsed", time.Since(started)))
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
