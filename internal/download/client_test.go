package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDownload(t *testing.T) {
	content := []byte("xtensa toolchain dist payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "dist", "rust.tar.xz")
	sum := sha256.Sum256(content)

	result, err := NewClient(testLogger()).Download(context.Background(), Options{
		URL:              server.URL,
		DestPath:         dest,
		ExpectedChecksum: hex.EncodeToString(sum[:]),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("got size %d, want %d", result.Size, len(content))
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Error("downloaded content differs from served content")
	}
}

func TestDownloadChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("corrupted"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "dist.tar.xz")
	_, err := NewClient(testLogger()).Download(context.Background(), Options{
		URL:              server.URL,
		DestPath:         dest,
		ExpectedChecksum: "deadbeef",
		RetryCount:       1,
	})
	if err == nil {
		t.Fatal("expected checksum error")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("expected corrupt file to be removed")
	}
}

func TestDownloadDoesNotRetryNotFound(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewClient(testLogger()).Download(context.Background(), Options{
		URL:      server.URL,
		DestPath: filepath.Join(t.TempDir(), "missing.tar.xz"),
	})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("expected exactly 1 request, got %d", requests.Load())
	}
}

func TestDownloadRetriesServerError(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	result, err := NewClient(testLogger()).Download(context.Background(), Options{
		URL:      server.URL,
		DestPath: filepath.Join(t.TempDir(), "retry.tar.xz"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempts != 2 {
		t.Errorf("got %d attempts, want 2", result.Attempts)
	}
}
