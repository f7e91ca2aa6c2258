package download

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/esp-rs/espup/internal/safety"
)

// Unpack extracts a toolchain distribution archive into destDir. Tarball
// compression is detected by magic number (xz, zstd, gzip); .zip archives
// are detected by extension. Member paths are constrained to destDir.
func Unpack(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	if strings.HasSuffix(archivePath, ".zip") {
		return unzip(archivePath, destDir)
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	reader, err := decompressor(bufio.NewReader(file))
	if err != nil {
		return fmt.Errorf("unpacking %s: %w", filepath.Base(archivePath), err)
	}
	if err := untar(reader, destDir); err != nil {
		return fmt.Errorf("unpacking %s: %w", filepath.Base(archivePath), err)
	}
	return nil
}

// decompressor wraps r with the decompressor matching its magic number.
// Uncompressed input is passed through for plain tarballs.
func decompressor(r *bufio.Reader) (io.Reader, error) {
	magic, err := r.Peek(6)
	if err != nil && len(magic) < 2 {
		return nil, fmt.Errorf("reading archive header: %w", err)
	}

	// XZ magic number: fd 37 7a 58 5a 00
	if len(magic) >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a &&
		magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00 {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return xr, nil
	}

	// Zstd magic number: 28 b5 2f fd
	if len(magic) >= 4 && magic[0] == 0x28 && magic[1] == 0xb5 && magic[2] == 0x2f && magic[3] == 0xfd {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	}

	// Gzip magic number: 1f 8b
	if len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gr, nil
	}

	return r, nil
}

func untar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		path, err := safety.SafeJoinUnder(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, os.FileMode(hdr.Mode)&0o777|0o700); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			if err := writeFile(path, tr, os.FileMode(hdr.Mode)&0o777); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			_ = os.Remove(path)
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				return fmt.Errorf("creating symlink: %w", err)
			}
		default:
			// Hard links, devices etc. do not occur in toolchain dists.
		}
	}
}

func unzip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		path, err := safety.SafeJoinUnder(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip member %s: %w", f.Name, err)
		}
		err = writeFile(path, rc, f.Mode()&0o777)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}
