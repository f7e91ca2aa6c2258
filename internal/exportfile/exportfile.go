// Package exportfile writes the shell script that puts the installed
// toolchains into the user's environment.
package exportfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	// DefaultPosixName is the export script name on POSIX hosts.
	DefaultPosixName = "export-esp.sh"
	// DefaultWindowsName is the export script name on Windows hosts.
	DefaultWindowsName = "export-esp.ps1"
)

// Resolve turns the requested export file path into an absolute one. An
// empty request selects the platform default in the home directory;
// relative paths resolve against the working directory.
func Resolve(requested string, windows bool) (string, error) {
	if requested == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		name := DefaultPosixName
		if windows {
			name = DefaultWindowsName
		}
		return filepath.Join(home, name), nil
	}

	abs, err := filepath.Abs(requested)
	if err != nil {
		return "", fmt.Errorf("resolving export file path: %w", err)
	}
	return abs, nil
}

// Write emits one line per export entry, in the given order. On Windows
// forward slashes inside the entries are rewritten to backslashes so the
// PowerShell assignments carry native paths.
func Write(path string, exports []string, windows bool) error {
	var b strings.Builder
	for _, line := range exports {
		if windows {
			line = strings.ReplaceAll(line, "/", `\`)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing export file %s: %w", path, err)
	}
	return nil
}

// Delete removes an export file. An absent file is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing export file %s: %w", path, err)
	}
	return nil
}
