// Package cmd provides command-line interface for CD image processing.
// This file contains commands for listing, extracting and rewriting the
// ISO 9660 file system of raw CD images.
package cmd

import (
	"fmt"

	"github.com/hansbonini/isobin/pkg"
	"github.com/spf13/cobra"
)

// isoCmd represents the parent command for all CD image operations.
var isoCmd = &cobra.Command{
	Use:   "iso",
	Short: "Process ISO 9660 file systems in raw CD images",
	Long: `Process ISO 9660 file systems stored in raw CD images (.bin, 2352 bytes
per sector). An image may also be given as a .cue sheet; its first data
track is used.

Commands:
  ls         List the records of a directory
  stat       Show where a file is stored
  get        Extract a single file
  dump       Extract all files
  roundtrip  Load and save an image and compare the result
  wrap       Convert a cooked .iso into a raw .bin
  unwrap     Convert a raw .bin into a cooked .iso
  build      Create a raw .bin holding a single file

Examples:
  isobin iso ls game.bin /
  isobin iso dump game.bin ./output/`,
}

// isoLsCmd lists the records of one directory.
var isoLsCmd = &cobra.Command{
	Use:   "ls [image] [directory]",
	Short: "List the records of a directory",
	Long: `List the records of a directory, resolved through the path table.
The directory defaults to the root.

Output columns:
  - ID (4-digit hex)
  - MSF (Minutes:Seconds:Frames)
  - LBA (Logical Block Address)
  - Size in bytes
  - Path within the CD structure

Example:
  isobin iso ls game.bin /DATA
  isobin iso ls --yaml game.bin /DATA`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "/"
		if len(args) == 2 {
			dir = args[1]
		}

		asYAML, err := cmd.Flags().GetBool("yaml")
		if err != nil {
			return fmt.Errorf("error getting yaml flag: %w", err)
		}

		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.List(args[0], dir, cmd.OutOrStdout(), asYAML)
	},
}

// isoStatCmd resolves a single file.
var isoStatCmd = &cobra.Command{
	Use:   "stat [image] [file]",
	Short: "Show where a file is stored",
	Long: `Resolve a file and print its LBA, MSF, size and sector count as YAML,
together with the raw header (address, mode, sub-mode) of its first sector.
The version suffix (";1") may be left out.

Example:
  isobin iso stat game.bin /SYSTEM.CNF`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Stat(args[0], args[1], cmd.OutOrStdout())
	},
}

// isoGetCmd extracts a single file.
var isoGetCmd = &cobra.Command{
	Use:   "get [image] [file] [output_file]",
	Short: "Extract a single file",
	Long: `Extract a single file from a raw CD image.

Example:
  isobin iso get game.bin /SYSTEM.CNF SYSTEM.CNF`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Extract(args[0], args[1], args[2])
	},
}

// isoDumpCmd extracts every file of an image.
var isoDumpCmd = &cobra.Command{
	Use:   "dump [image] [output_directory]",
	Short: "Extract all files",
	Long: `Extract every file of the ISO 9660 file system. The directory
structure is recreated below the output directory. With -v each file is
logged with its ID, MSF, LBA, size and path.

Example:
  isobin iso dump game.bin ./output/
  isobin iso dump -v game.bin ./output/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		fmt.Fprintf(cmd.OutOrStdout(), "Processing CD image file: %s\n", inputFile)
		fmt.Fprintf(cmd.OutOrStdout(), "Output directory: %s\n", outputDir)

		processor := pkg.NewCDProcessor(appFs, cfg)
		if err := processor.Dump(inputFile, outputDir); err != nil {
			return fmt.Errorf("failed to process CD image file: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "CD image file processed successfully!")
		return nil
	},
}

// isoRoundtripCmd loads and saves an image.
var isoRoundtripCmd = &cobra.Command{
	Use:   "roundtrip [image] [output_image]",
	Short: "Load and save an image and compare the result",
	Long: `Load the volume descriptors, path table and directories of an image,
save them over a copy of it and check that the copy is byte-identical.

Example:
  isobin iso roundtrip game.bin copy.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Roundtrip(args[0], args[1])
	},
}

// isoWrapCmd converts a cooked image into raw sectors.
var isoWrapCmd = &cobra.Command{
	Use:   "wrap [cooked.iso] [raw.bin]",
	Short: "Convert a cooked .iso into a raw .bin",
	Long: `Wrap every 2048-byte sector of a cooked image into a raw Mode 2
Form 1 sector (sync, MSF header, subheader). EDC/ECC are left zero.

Example:
  isobin iso wrap game.iso game.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Wrap(args[0], args[1])
	},
}

// isoUnwrapCmd converts a raw image into cooked sectors.
var isoUnwrapCmd = &cobra.Command{
	Use:   "unwrap [raw.bin] [cooked.iso]",
	Short: "Convert a raw .bin into a cooked .iso",
	Long: `Copy the 2048 bytes of user data of every raw sector into a cooked image.

Example:
  isobin iso unwrap game.bin game.iso`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Unwrap(args[0], args[1])
	},
}

// isoBuildCmd creates a raw image holding one file.
var isoBuildCmd = &cobra.Command{
	Use:   "build [file] [raw.bin]",
	Short: "Create a raw .bin holding a single file",
	Long: `Create an ISO 9660 volume whose root directory holds the given file,
then wrap it into raw sectors.

Example:
  isobin iso build config.txt config.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewCDProcessor(appFs, cfg)
		return processor.Build(args[0], args[1])
	},
}

// init initializes the iso command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(isoCmd)

	isoCmd.AddCommand(isoLsCmd)
	isoCmd.AddCommand(isoStatCmd)
	isoCmd.AddCommand(isoGetCmd)
	isoCmd.AddCommand(isoDumpCmd)
	isoCmd.AddCommand(isoRoundtripCmd)
	isoCmd.AddCommand(isoWrapCmd)
	isoCmd.AddCommand(isoUnwrapCmd)
	isoCmd.AddCommand(isoBuildCmd)

	isoLsCmd.Flags().Bool("yaml", false, "Print the listing as YAML")
}
