package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/esp-rs/espup/internal/safety"
)

// Options configures a single artifact download.
type Options struct {
	URL              string
	DestPath         string
	ExpectedChecksum string // SHA256 hex string, empty to skip validation
	RetryCount       int    // 0 defaults to 3
}

// Result describes a completed download.
type Result struct {
	Path     string
	Size     int64
	SHA256   string
	Attempts int
	Duration time.Duration
}

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Status)
}

// Client downloads toolchain distribution artifacts with retry and
// checksum validation.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewClient creates a download client.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		// No overall timeout: toolchain archives are large and body reads
		// can take as long as needed. Context cancellation still applies.
		httpClient: &http.Client{Transport: safety.NewHTTPClient(0).Transport},
		logger:     logger,
		userAgent:  "espup",
	}
}

// Download fetches the artifact at opts.URL into opts.DestPath, retrying
// transient failures with exponential backoff.
func (c *Client) Download(ctx context.Context, opts Options) (*Result, error) {
	if opts.RetryCount == 0 {
		opts.RetryCount = 3
	}

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= opts.RetryCount; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("download cancelled: %w", ctx.Err())
		default:
		}

		result, err := c.attempt(ctx, opts, attempt)
		if err == nil {
			result.Duration = time.Since(start)
			return result, nil
		}

		lastErr = err
		c.logger.Warn("download attempt failed", "url", opts.URL, "attempt", attempt, "error", err)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if shouldNotRetry(err) {
			return nil, err
		}

		if attempt < opts.RetryCount {
			delay := backoffDelay(attempt)
			c.logger.Debug("retrying download", "url", opts.URL, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("download cancelled during retry: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("download failed after %d attempts: %w", opts.RetryCount, lastErr)
}

func (c *Client) attempt(ctx context.Context, opts Options, attempt int) (*Result, error) {
	if dir := filepath.Dir(opts.DestPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	file, err := os.Create(opts.DestPath)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(file, hash), resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(opts.DestPath)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	if opts.ExpectedChecksum != "" && sum != opts.ExpectedChecksum {
		_ = os.Remove(opts.DestPath)
		return nil, fmt.Errorf("checksum mismatch: got %s, expected %s", sum, opts.ExpectedChecksum)
	}

	c.logger.Debug("download completed", "url", opts.URL, "dest", filepath.Base(opts.DestPath), "size", size)
	return &Result{
		Path:     opts.DestPath,
		Size:     size,
		SHA256:   sum,
		Attempts: attempt,
	}, nil
}

// backoffDelay calculates exponential backoff with jitter. Base delay is
// 1s, doubles each attempt, plus random jitter up to half the delay.
func backoffDelay(attempt int) time.Duration {
	base := time.Second
	exponential := time.Duration(math.Pow(2, float64(attempt-1))) * base
	jitter := time.Duration(rand.Int63n(int64(exponential / 2)))
	return exponential + jitter
}

// shouldNotRetry returns true if the error should not trigger a retry.
// 4xx responses other than 429 are never transient.
func shouldNotRetry(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != 429 {
			return true
		}
	}
	return false
}
