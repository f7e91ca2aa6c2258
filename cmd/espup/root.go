package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/esp-rs/espup/internal/config"
	"github.com/esp-rs/espup/internal/download"
	"github.com/esp-rs/espup/internal/engine"
	"github.com/esp-rs/espup/internal/host"
	"github.com/esp-rs/espup/internal/release"
	"github.com/esp-rs/espup/internal/state"
	"github.com/esp-rs/espup/internal/store"
	"github.com/esp-rs/espup/internal/toolchain"
)

const appVersion = "0.1.0"

var (
	// Global flags
	cfgPath   string
	logLevel  string
	logFormat string

	settings *config.Settings
	logger   *slog.Logger
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "espup",
		Short: "Tool for installing and maintaining the Rust environment for Espressif SoCs",
		Long: `espup installs the toolchains required to develop Rust applications for
Espressif chips: the Xtensa-enabled Rust toolchain, an Xtensa LLVM build,
RISC-V target support, the cross-GCC toolchains, and optionally the
ESP-IDF framework. It records what it installed so the installation can
be reversed or updated later.`,
		Example: `  espup install
  espup install --targets esp32,esp32c3 --esp-idf-version 5.1
  espup update
  espup uninstall`,
		Version: appVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			if cfgPath != "" {
				var err error
				settings, err = config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("failed to load settings: %w", err)
				}
				return nil
			}

			var err error
			settings, err = config.Resolve()
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to settings file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	cmd.AddCommand(
		newInstallCmd(),
		newUpdateCmd(),
		newUninstallCmd(),
		newCompletionsCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags.
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newManager wires the engine for one invocation. The returned cleanup
// closes the run-history store.
func newManager(hostOverride string) (*engine.Manager, func(), error) {
	h, err := host.Resolve(hostOverride)
	if err != nil {
		return nil, nil, err
	}

	client := download.NewClient(logger)
	env, err := toolchain.NewEnv(h, settings, client, logger)
	if err != nil {
		return nil, nil, err
	}

	resolver := release.NewResolver(settings.RustBuildIndexURL, logger)

	statePath, err := state.DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	stateStore := state.NewStore(statePath, logger)

	// The run history is observational; a broken ledger never blocks a run.
	var history *store.Store
	if historyPath, err := store.DefaultPath(); err == nil {
		history, err = store.New(historyPath, logger)
		if err != nil {
			logger.Warn("could not open run history", "error", err)
			history = nil
		}
	}

	cleanup := func() {
		if history != nil {
			if err := history.Close(); err != nil {
				logger.Error("failed to close run history", "error", err)
			}
		}
	}
	return engine.New(env, resolver, stateStore, history, logger), cleanup, nil
}
