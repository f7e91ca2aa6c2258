package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/esp-rs/espup/internal/release"
	"github.com/esp-rs/espup/internal/targets"
)

// EspIdf checks out the ESP-IDF framework at a pinned git reference and
// runs its installer for the selected targets.
type EspIdf struct {
	RawVersion string
	Ref        release.GitRef
	Minified   bool
	Targets    targets.Set

	env        *Env
	installDir string
}

// NewEspIdf creates the component for the given version expression.
func NewEspIdf(env *Env, version string, minified bool, ts targets.Set) *EspIdf {
	ref := release.ParseGitRef(version)
	return &EspIdf{
		RawVersion: version,
		Ref:        ref,
		Minified:   minified,
		Targets:    ts,
		env:        env,
		installDir: filepath.Join(env.FrameworksDir, "esp-idf-"+sanitizeRef(ref.Value)),
	}
}

func (e *EspIdf) Name() string { return "esp-idf" }

// Path returns the framework checkout directory, recorded in the state file.
func (e *EspIdf) Path() string { return e.installDir }

func (e *EspIdf) Install(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(e.installDir); err == nil {
		e.env.Logger.Warn("ESP-IDF already installed, reusing", "path", e.installDir)
	} else if err := e.clone(ctx); err != nil {
		return nil, err
	}

	if err := e.runInstaller(ctx); err != nil {
		return nil, err
	}

	e.env.Logger.Info("ESP-IDF installed", "path", e.installDir)
	return e.exports(), nil
}

func (e *EspIdf) clone(ctx context.Context) error {
	url := e.env.Settings.EspIdfRepositoryURL
	e.env.Logger.Info("cloning ESP-IDF", "url", url, "ref", e.Ref.String())

	opts := &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}
	switch e.Ref.Kind {
	case release.RefTag:
		opts.ReferenceName = plumbing.NewTagReferenceName(e.Ref.Value)
		opts.SingleBranch = true
		opts.Depth = 1
	case release.RefBranch:
		opts.ReferenceName = plumbing.NewBranchReferenceName(e.Ref.Value)
		opts.SingleBranch = true
		opts.Depth = 1
	}

	repo, err := git.PlainCloneContext(ctx, e.installDir, false, opts)
	if err != nil {
		return fmt.Errorf("cloning ESP-IDF '%s': %w", e.Ref.String(), err)
	}

	if e.Ref.Kind == release.RefCommit {
		wt, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("opening ESP-IDF worktree: %w", err)
		}
		err = wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(e.Ref.Value)})
		if err != nil {
			return fmt.Errorf("checking out ESP-IDF commit '%s': %w", e.Ref.Value, err)
		}
	}
	return nil
}

// runInstaller invokes the framework's bundled install script, which sets
// up the ESP-IDF python environment and per-chip tools.
func (e *EspIdf) runInstaller(ctx context.Context) error {
	script := "install.sh"
	shell := "bash"
	if e.env.Host.Windows() {
		script = "install.ps1"
		shell = "powershell"
	}

	args := []string{filepath.Join(e.installDir, script)}
	args = append(args, e.Targets.Strings()...)
	if err := runCommand(ctx, e.env.Logger, shell, args...); err != nil {
		return fmt.Errorf("running ESP-IDF installer: %w", err)
	}
	return nil
}

func (e *EspIdf) exports() []string {
	return []string{
		exportVar(e.env.Host, "IDF_PATH", e.installDir),
		exportPath(e.env.Host, filepath.Join(e.installDir, "tools")),
	}
}

func (e *EspIdf) Uninstall(ctx context.Context) error {
	e.env.Logger.Info("deleting ESP-IDF", "path", e.installDir)
	return RemoveToolDir(e.installDir)
}

// InstallDirForVersion resolves the checkout directory a given version
// expression installs into, without creating the component.
func InstallDirForVersion(env *Env, version string) string {
	ref := release.ParseGitRef(version)
	return filepath.Join(env.FrameworksDir, "esp-idf-"+sanitizeRef(ref.Value))
}

// sanitizeRef makes a git ref value safe as a directory name component.
func sanitizeRef(value string) string {
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(value)
}
