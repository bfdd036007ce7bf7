package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError carries status and body for non-2xx responses so callers can
// decide whether a retry makes sense.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 400))
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
	}
}

func IsRetryableHTTPStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableNetErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// DoWithRetry executes a request built by buildReq, retrying retryable
// transport errors and statuses with jittered exponential backoff. The
// response body is always fully read so the transport can reuse connections.
func DoWithRetry(ctx context.Context, client *http.Client, buildReq func(context.Context) (*http.Request, error), cfg RetryConfig) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 15 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if !isRetryableNetErr(err) || attempt == cfg.MaxAttempts {
				return nil, err
			}
			if err := sleepBackoff(ctx, attempt, cfg); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if attempt == cfg.MaxAttempts {
				return nil, readErr
			}
			if err := sleepBackoff(ctx, attempt, cfg); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		httpErr := &HTTPError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Body: body}
		lastErr = httpErr
		if !IsRetryableHTTPStatus(resp.StatusCode) || attempt == cfg.MaxAttempts {
			return nil, httpErr
		}
		if wait := retryAfter(resp); wait > 0 {
			if err := sleepFor(ctx, capDelay(wait, cfg.MaxDelay)); err != nil {
				return nil, err
			}
			continue
		}
		if err := sleepBackoff(ctx, attempt, cfg); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func capDelay(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleepBackoff(ctx context.Context, attempt int, cfg RetryConfig) error {
	delay := cfg.BaseDelay << uint(attempt-1)
	delay = capDelay(delay, cfg.MaxDelay)
	// +/-20% jitter
	j := 0.2 * float64(delay)
	delay = time.Duration(float64(delay) - j + rand.Float64()*2*j)
	return sleepFor(ctx, delay)
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
