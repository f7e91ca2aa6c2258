// Package toolchain implements the installable components of the esp-rs
// environment: the Xtensa Rust toolchain, the Xtensa LLVM build, RISC-V
// target support, the cross-GCC toolchains, the ESP-IDF checkout, and
// extra cargo crates.
package toolchain

import (
	"context"
	"fmt"

	"github.com/esp-rs/espup/internal/host"
)

// Installable is implemented by every component espup can provision and
// later reverse. Components are mutually independent at install time, so
// the engine may run them concurrently.
type Installable interface {
	// Name identifies the component in logs and the run history.
	Name() string
	// Install provisions the component and returns the environment export
	// lines the shell needs afterwards.
	Install(ctx context.Context) ([]string, error)
	// Uninstall removes the component. Removing an already-absent
	// artifact is not an error.
	Uninstall(ctx context.Context) error
}

// exportVar formats an environment variable assignment for the host shell.
func exportVar(t host.Triple, name, value string) string {
	if t.Windows() {
		return fmt.Sprintf(`$Env:%s = "%s"`, name, value)
	}
	return fmt.Sprintf(`export %s="%s"`, name, value)
}

// exportPath formats a PATH prepend entry for the host shell.
func exportPath(t host.Triple, dir string) string {
	if t.Windows() {
		return fmt.Sprintf(`$Env:PATH = "%s;$Env:PATH"`, dir)
	}
	return fmt.Sprintf(`export PATH="%s:$PATH"`, dir)
}
