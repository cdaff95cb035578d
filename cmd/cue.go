// Package cmd provides command-line interface for cue sheet processing.
// This file contains commands for reading and rewriting cue sheets.
package cmd

import (
	"fmt"

	"github.com/hansbonini/isobin/pkg"
	"github.com/spf13/cobra"
)

// cueCmd represents the parent command for cue sheet operations.
var cueCmd = &cobra.Command{
	Use:   "cue",
	Short: "Read and rewrite cue sheets",
	Long: `Read and rewrite the cue sheets that describe .bin images.

Commands:
  show      Print a parsed cue sheet as YAML
  fmt       Rewrite a cue sheet in canonical form

Examples:
  isobin cue show game.cue
  isobin cue fmt -o clean.cue game.cue`,
}

// cueShowCmd prints a parsed sheet.
var cueShowCmd = &cobra.Command{
	Use:   "show [sheet.cue]",
	Short: "Print a parsed cue sheet as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCueProcessor(appFs)
		return processor.Show(args[0], cmd.OutOrStdout())
	},
}

// cueFmtCmd rewrites a sheet.
var cueFmtCmd = &cobra.Command{
	Use:   "fmt [sheet.cue]",
	Short: "Rewrite a cue sheet in canonical form",
	Long: `Parse a cue sheet and write it back with canonical indentation and
zero-padded numbers. Commands isobin does not know are kept as they are.

Example:
  isobin cue fmt game.cue
  isobin cue fmt -o clean.cue game.cue`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("error getting output flag: %w", err)
		}

		processor := pkg.NewCueProcessor(appFs)
		return processor.Format(args[0], output, cmd.OutOrStdout())
	},
}

// init initializes the cue command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(cueCmd)

	cueCmd.AddCommand(cueShowCmd)
	cueCmd.AddCommand(cueFmtCmd)

	cueFmtCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
