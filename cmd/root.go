// Package cmd provides command-line interface functionality for isobin.
// isobin reads, lists, extracts and rewrites ISO 9660 file systems stored
// in raw 2352-byte sector CD images.
package cmd

import (
	"os"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// appFs is the filesystem every command reads from and writes to
	appFs afero.Fs = afero.NewOsFs()
	// cfg holds the settings after the config file and flags are applied
	cfg = common.DefaultConfig()
)

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the isobin application.
var rootCmd = &cobra.Command{
	Use:   "isobin",
	Short: "Tools for ISO 9660 file systems in raw CD images",
	Long: `isobin - Tools for ISO 9660 file systems stored in raw CD-ROM images
(2352 bytes per sector, as found in .bin/.cue dumps).

Currently supports:
  - Listing directories and resolving files through the path table
  - Extracting single files or the whole file system
  - Loading and saving an image to check it round-trips exactly
  - Converting between cooked (2048) and raw (2352) sector images
  - Reading and rewriting cue sheets

Examples:
  isobin iso ls game.bin /DATA
  isobin iso stat game.bin /SYSTEM.CNF
  isobin iso dump -v game.bin ./output/
  isobin iso dump game.cue ./output/
  isobin iso roundtrip game.bin copy.bin
  isobin cue show game.cue

Use 'isobin [command] --help' for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyConfig(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// applyConfig loads the config file, if any, and lets explicitly set
// flags override its values.
func applyConfig(flags *pflag.FlagSet) error {
	path, err := flags.GetString("config")
	if err != nil {
		return err
	}
	loaded, err := common.LoadConfig(appFs, path)
	if err != nil {
		return err
	}

	if flags.Changed("verbose") {
		if loaded.Verbose, err = flags.GetBool("verbose"); err != nil {
			return err
		}
	}
	if flags.Changed("strict") {
		if loaded.Strict, err = flags.GetBool("strict"); err != nil {
			return err
		}
	}
	if flags.Changed("base-offset") {
		if loaded.BaseOffset, err = flags.GetInt64("base-offset"); err != nil {
			return err
		}
	}
	if flags.Changed("keep-system-area") {
		if loaded.KeepSystemArea, err = flags.GetBool("keep-system-area"); err != nil {
			return err
		}
	}

	*cfg = *loaded
	common.SetVerboseMode(cfg.Verbose)
	return nil
}

// init initializes the root command with the flags shared by every command.
func init() {
	defaults := common.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file with default settings")
	flags.BoolP("verbose", "v", defaults.Verbose, "Enable verbose output (show debug messages)")
	flags.Bool("strict", defaults.Strict, "Fail on missing directories or files instead of ignoring them")
	flags.Int64("base-offset", defaults.BaseOffset, "Byte offset of sector 0 inside the image")
	flags.Bool("keep-system-area", defaults.KeepSystemArea, "Keep sectors 0-15 verbatim when saving")
}
