package download

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeTarGz(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range entries {
		hdr := &tar.Header{
			Name: name,
			Mode: 0o755,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dist.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}

func TestUnpackTarGz(t *testing.T) {
	archive := writeTarGz(t, map[string]string{
		"bin/xtensa-esp32-elf-gcc": "#!/bin/sh\n",
		"lib/libclang.so":          "binary",
	})
	dest := t.TempDir()

	if err := Unpack(archive, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, rel := range []string{"bin/xtensa-esp32-elf-gcc", "lib/libclang.so"} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Errorf("expected %s to exist: %v", rel, err)
		}
	}
}

func TestUnpackRejectsTraversal(t *testing.T) {
	archive := writeTarGz(t, map[string]string{
		"../escape": "nope",
	})

	if err := Unpack(archive, t.TempDir()); err == nil {
		t.Fatal("expected traversal error")
	}
}

func TestUnpackZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("bin/clang.exe")
	if err != nil {
		t.Fatalf("creating zip member: %v", err)
	}
	if _, err := w.Write([]byte("exe")); err != nil {
		t.Fatalf("writing zip member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}

	archive := filepath.Join(t.TempDir(), "dist.zip")
	if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	dest := t.TempDir()
	if err := Unpack(archive, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "bin", "clang.exe")); err != nil {
		t.Errorf("expected zip member extracted: %v", err)
	}
}
