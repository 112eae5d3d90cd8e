package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wsim/internal/printer"
	"github.com/verte-zerg/wsim/internal/scenario"
)

var scenarioForce bool

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Create or inspect scenario files",
	}

	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the default scenario (JSON, or YAML for .yaml/.yml)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarioInitCmd,
	}
	initCmd.Flags().BoolVar(&scenarioForce, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a scenario with defaults filled in",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarioShowCmd,
	}

	cmd.AddCommand(initCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func runScenarioInitCmd(_ *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !scenarioForce {
		return printer.Error("Scenario already exists", path, "Pass --force to overwrite it")
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat scenario: %w", err)
	}
	if err := scenario.Save(path, scenario.Default()); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	printer.Success("Wrote default scenario to %s", path)
	return nil
}

func runScenarioShowCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	sc, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	data, err := scenario.Encode(sc, scenario.FormatFor(path))
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
