package safety

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeJoinUnder(t *testing.T) {
	root := t.TempDir()

	got, err := SafeJoinUnder(root, "llvm/bin/clang")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "llvm", "bin", "clang")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSafeJoinUnderRejectsTraversal(t *testing.T) {
	root := t.TempDir()

	cases := []string{
		"../outside",
		"..",
		"a/../../outside",
		"/etc/passwd",
		"",
	}
	for _, member := range cases {
		if _, err := SafeJoinUnder(root, member); err == nil {
			t.Errorf("expected error for member %q", member)
		}
	}
}

func TestReadAllWithLimit(t *testing.T) {
	data, err := ReadAllWithLimit(strings.NewReader("hello"), 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want %q", data, "hello")
	}
}

func TestReadAllWithLimitTooLarge(t *testing.T) {
	_, err := ReadAllWithLimit(strings.NewReader("too many bytes"), 4)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}
