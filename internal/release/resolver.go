package release

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/esp-rs/espup/internal/safety"
)

const (
	// DefaultXtensaRustIndexURL is the release index of the Xtensa-enabled
	// Rust toolchain builds.
	DefaultXtensaRustIndexURL = "https://api.github.com/repos/esp-rs/rust-build/releases/latest"

	selfIndexURL = "https://api.github.com/repos/esp-rs/espup/releases/latest"

	maxIndexBodySize = 4 * 1024 * 1024
)

var toolchainVersionRe = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// InvalidVersionError indicates a toolchain version that does not match the
// required <major>.<minor>.<patch>.<subpatch> shape.
type InvalidVersionError struct {
	Tag string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid toolchain version '%s', must be in the form '<major>.<minor>.<patch>.<subpatch>'", e.Tag)
}

// ParseVersion validates an explicitly requested Xtensa Rust toolchain
// version.
func ParseVersion(s string) (string, error) {
	if !toolchainVersionRe.MatchString(s) {
		return "", &InvalidVersionError{Tag: s}
	}
	return s, nil
}

// Resolver resolves symbolic version strings against remote release
// indexes. It never retries on its own; retry policy belongs to callers.
type Resolver struct {
	client   *http.Client
	indexURL string
	logger   *slog.Logger
}

// NewResolver creates a resolver against the given release index URL.
// An empty URL selects the default Xtensa Rust index.
func NewResolver(indexURL string, logger *slog.Logger) *Resolver {
	if indexURL == "" {
		indexURL = DefaultXtensaRustIndexURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:   safety.NewHTTPClient(30 * time.Second),
		indexURL: indexURL,
		logger:   logger,
	}
}

// LatestXtensaRust queries the release index and returns the newest
// toolchain version. A tag that does not match the required shape fails
// with InvalidVersionError.
func (r *Resolver) LatestXtensaRust(ctx context.Context) (string, error) {
	tag, err := r.fetchLatestTag(ctx, r.indexURL)
	if err != nil {
		return "", fmt.Errorf("querying release index: %w", err)
	}
	version := strings.TrimPrefix(tag, "v")
	if !toolchainVersionRe.MatchString(version) {
		return "", &InvalidVersionError{Tag: tag}
	}
	r.logger.Debug("resolved latest Xtensa Rust version", "version", version)
	return version, nil
}

// CheckForUpdate logs a notice when a newer espup release than current is
// available. Failures are logged and swallowed; an unreachable index must
// never break an install.
func (r *Resolver) CheckForUpdate(ctx context.Context, current string) {
	tag, err := r.fetchLatestTag(ctx, selfIndexURL)
	if err != nil {
		r.logger.Debug("update check failed", "error", err)
		return
	}
	latest := strings.TrimPrefix(tag, "v")
	if latest != "" && latest != strings.TrimPrefix(current, "v") {
		r.logger.Warn("a new espup release is available", "current", current, "latest", latest)
	}
}

func (r *Resolver) fetchLatestTag(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release index returned %s", resp.Status)
	}

	body, err := safety.ReadAllWithLimit(resp.Body, maxIndexBodySize)
	if err != nil {
		return "", fmt.Errorf("reading release index: %w", err)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("decoding release index: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release index has no tag name")
	}
	return release.TagName, nil
}
