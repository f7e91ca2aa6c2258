package release

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseVersion(t *testing.T) {
	if v, err := ParseVersion("1.73.0.1"); err != nil || v != "1.73.0.1" {
		t.Errorf("ParseVersion(1.73.0.1) = %q, %v", v, err)
	}

	for _, bad := range []string{"1.73.0", "v1.73.0.1", "1.73.0.1.2", "latest", ""} {
		_, err := ParseVersion(bad)
		var invalid *InvalidVersionError
		if !errors.As(err, &invalid) {
			t.Errorf("ParseVersion(%q) error = %v, want InvalidVersionError", bad, err)
		}
	}
}

func TestLatestXtensaRust(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "v1.73.0.1"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	got, err := r.LatestXtensaRust(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "1.73.0.1" {
		t.Errorf("LatestXtensaRust = %q, want 1.73.0.1", got)
	}
}

func TestLatestXtensaRustBadTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name": "nightly"}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	_, err := r.LatestXtensaRust(context.Background())
	var invalid *InvalidVersionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidVersionError", err)
	}
	if invalid.Tag != "nightly" {
		t.Errorf("tag = %q, want nightly", invalid.Tag)
	}
}

func TestLatestXtensaRustIndexError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	if _, err := r.LatestXtensaRust(context.Background()); err == nil {
		t.Fatal("expected error for non-200 index response")
	}
}

func TestParseGitRef(t *testing.T) {
	cases := []struct {
		input string
		want  GitRef
	}{
		{"commit:abc123", GitRef{RefCommit, "abc123"}},
		{"tag:v5.1", GitRef{RefTag, "v5.1"}},
		{"branch:release/v5.1", GitRef{RefBranch, "release/v5.1"}},
		{"5.1", GitRef{RefTag, "v5.1"}},
		{"v5.1", GitRef{RefTag, "v5.1"}},
		{"5.1.2", GitRef{RefTag, "v5.1.2"}},
		{"release/v5.1", GitRef{RefBranch, "release/v5.1"}},
		{"master", GitRef{RefBranch, "master"}},
	}
	for _, tc := range cases {
		if got := ParseGitRef(tc.input); got != tc.want {
			t.Errorf("ParseGitRef(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}
