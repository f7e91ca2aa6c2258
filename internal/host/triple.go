package host

import (
	"fmt"
	"runtime"
	"strings"
)

// Triple identifies the OS, architecture and ABI of the machine running
// espup. It selects which platform-specific artifacts get downloaded.
type Triple string

const (
	X8664LinuxGnu    Triple = "x86_64-unknown-linux-gnu"
	Aarch64LinuxGnu  Triple = "aarch64-unknown-linux-gnu"
	X8664WindowsMsvc Triple = "x86_64-pc-windows-msvc"
	X8664WindowsGnu  Triple = "x86_64-pc-windows-gnu"
	X8664Darwin      Triple = "x86_64-apple-darwin"
	Aarch64Darwin    Triple = "aarch64-apple-darwin"
)

var supported = []Triple{
	X8664LinuxGnu,
	Aarch64LinuxGnu,
	X8664WindowsMsvc,
	X8664WindowsGnu,
	X8664Darwin,
	Aarch64Darwin,
}

// UnsupportedTripleError indicates a host triple outside the supported set.
type UnsupportedTripleError struct {
	Triple string
}

func (e *UnsupportedTripleError) Error() string {
	return fmt.Sprintf("host triple '%s' is not supported", e.Triple)
}

func (t Triple) String() string {
	return string(t)
}

// Windows reports whether the triple targets a Windows host.
func (t Triple) Windows() bool {
	return strings.Contains(string(t), "windows")
}

// Resolve returns the host triple for this invocation. An explicit override
// is validated against the supported set; otherwise the triple is derived
// from the running platform.
func Resolve(override string) (Triple, error) {
	if override != "" {
		for _, t := range supported {
			if string(t) == override {
				return t, nil
			}
		}
		return "", &UnsupportedTripleError{Triple: override}
	}

	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "linux/amd64":
		return X8664LinuxGnu, nil
	case "linux/arm64":
		return Aarch64LinuxGnu, nil
	case "windows/amd64":
		return X8664WindowsMsvc, nil
	case "darwin/amd64":
		return X8664Darwin, nil
	case "darwin/arm64":
		return Aarch64Darwin, nil
	default:
		return "", &UnsupportedTripleError{Triple: runtime.GOOS + "/" + runtime.GOARCH}
	}
}
