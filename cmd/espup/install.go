package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/esp-rs/espup/internal/engine"
	"github.com/esp-rs/espup/internal/release"
	"github.com/esp-rs/espup/internal/targets"
	"github.com/esp-rs/espup/internal/toolchain"
)

var (
	installHost        string
	installEspIdf      string
	installExportFile  string
	installExtraCrates string
	installLlvm        string
	installNightly     string
	installMinified    bool
	installTargets     string
	installToolchain   string
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Rust environment for Espressif chips",
		Long: `Install the toolchains required by the requested targets. Xtensa targets
pull in the Xtensa Rust toolchain, RISC-V capable targets pull in RISC-V
target support, and either the ESP-IDF framework or standalone cross-GCC
toolchains are installed depending on --esp-idf-version.

The resulting environment exports are written to an export file that must
be sourced before building.`,
		Example: `  espup install
  espup install --targets esp32c3
  espup install --targets all --esp-idf-version 5.1 --extra-crates espflash
  espup install --profile-minimal --toolchain-version 1.73.0.1`,
		RunE: installRun,
	}

	cmd.Flags().StringVarP(&installHost, "default-host", "d", "", "host triple (auto-detected if not specified)")
	cmd.Flags().StringVarP(&installEspIdf, "esp-idf-version", "e", "", "install ESP-IDF at this version instead of standalone GCC toolchains")
	cmd.Flags().StringVarP(&installExportFile, "export-file", "f", "", "export file path (defaults to the home directory)")
	cmd.Flags().StringVarP(&installExtraCrates, "extra-crates", "c", "", "comma or space separated extra crates to install")
	cmd.Flags().StringVarP(&installLlvm, "llvm-version", "x", "", "LLVM major version (defaults to the settings file value)")
	cmd.Flags().StringVarP(&installNightly, "nightly-version", "n", "", "Rust nightly channel (defaults to the settings file value)")
	cmd.Flags().BoolVarP(&installMinified, "profile-minimal", "m", false, "install the minimal LLVM profile and clear downloaded dists")
	cmd.Flags().StringVarP(&installTargets, "targets", "t", "all", "comma or space separated target chips")
	cmd.Flags().StringVarP(&installToolchain, "toolchain-version", "v", "", "Xtensa Rust toolchain version (defaults to the latest release)")

	return cmd
}

func installRun(cmd *cobra.Command, args []string) error {
	ts, err := targets.Parse(installTargets)
	if err != nil {
		return err
	}

	toolchainVersion := installToolchain
	if toolchainVersion != "" {
		if toolchainVersion, err = release.ParseVersion(toolchainVersion); err != nil {
			return err
		}
	}

	llvmVersion := installLlvm
	if llvmVersion == "" {
		llvmVersion = settings.DefaultLlvmVersion
	}
	nightly := installNightly
	if nightly == "" {
		nightly = settings.DefaultNightly
	}

	mgr, cleanup, err := newManager(installHost)
	if err != nil {
		return err
	}
	defer cleanup()

	release.NewResolver(settings.RustBuildIndexURL, logger).
		CheckForUpdate(cmd.Context(), appVersion)

	opts := &engine.Options{
		Targets:          ts,
		EspIdfVersion:    installEspIdf,
		ToolchainVersion: toolchainVersion,
		LlvmVersion:      llvmVersion,
		Nightly:          nightly,
		ExtraCrates:      toolchain.ParseCrates(installExtraCrates),
		Minified:         installMinified,
		ExportFilePath:   installExportFile,
	}
	if err := mgr.Install(cmd.Context(), opts); err != nil {
		return err
	}

	color.Green("installation successfully completed!")
	color.Yellow("source the export file before building, it is not sourced automatically")
	return nil
}
