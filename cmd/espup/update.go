package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	updateHost      string
	updateToolchain string
)

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the installed Xtensa Rust toolchain",
		Long: `Update the recorded Xtensa Rust toolchain to the requested version, or to
the latest release when no version is given. When the recorded version
already matches, nothing is changed.`,
		Example: `  espup update
  espup update --toolchain-version 1.73.0.1`,
		RunE: updateRun,
	}

	cmd.Flags().StringVarP(&updateHost, "default-host", "d", "", "host triple (auto-detected if not specified)")
	cmd.Flags().StringVarP(&updateToolchain, "toolchain-version", "v", "", "Xtensa Rust toolchain version (defaults to the latest release)")

	return cmd
}

func updateRun(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager(updateHost)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Update(cmd.Context(), updateToolchain); err != nil {
		return err
	}

	color.Green("update successfully completed!")
	return nil
}
