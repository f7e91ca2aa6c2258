package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed Rust environment for Espressif chips",
		Long: `Remove everything the recorded installation provisioned: toolchains,
framework checkout, extra crates, and the export file. Removal proceeds
group by group with the installation record persisted between groups, so
an interrupted uninstall can simply be re-run.`,
		RunE: uninstallRun,
	}
}

func uninstallRun(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := newManager("")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Uninstall(cmd.Context()); err != nil {
		return err
	}

	color.Green("uninstallation successfully completed!")
	return nil
}
