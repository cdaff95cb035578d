package common

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Global variable to control debug output
var VerboseMode bool = false

func init() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
}

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// SetLogOutput redirects all log output to w
func SetLogOutput(w io.Writer) {
	log.SetOutput(w)
}

// Error messages
const (
	ErrFailedToOpenImage        = "failed to open image"
	ErrFailedToLoadImage        = "failed to load image"
	ErrFailedToSaveImage        = "failed to save image"
	ErrFailedToCreateOutputFile = "failed to create output file"
	ErrFailedToCreateDirectory  = "failed to create directory"
	ErrFailedToExtractFile      = "failed to extract file"
	ErrFailedToReadConfig       = "failed to read config file"
	ErrFailedToParseConfig      = "failed to parse config file"
	ErrFailedToParseCueSheet    = "failed to parse cue sheet"
	ErrFailedToEncodeYAML       = "failed to encode YAML"
	ErrFailedToWrapImage        = "failed to wrap image"
	ErrFailedToUnwrapImage      = "failed to unwrap image"
	ErrFailedToBuildImage       = "failed to build image"
	ErrNoDataTrack              = "cue sheet has no data track"
	ErrRoundTripMismatch        = "round trip mismatch"
	ErrFailedToReadSector       = "failed to read sector"
)

// Info messages
const (
	InfoImageLoaded      = "Loaded image %s: volume %q, %d directories"
	InfoFilesExtracted   = "Extracted %d files to: %s"
	InfoRoundTripMatches = "Round trip of %s reproduced all %d bytes exactly"
	InfoSectorsWrapped   = "Wrapped %d sectors into %s"
	InfoSectorsUnwrapped = "Unwrapped %d sectors into %s"
	InfoDataTrackOffset  = "Data track %d starts at byte offset %d"
	InfoImageBuilt       = "Built %s holding %s (%d bytes)"
)

// Debug messages
const (
	DebugDescriptorsLoaded = "Volume descriptor set: %d descriptors"
	DebugPathTableLoaded   = "Path table: %d entries at LBA %d"
	DebugDirectoryLoaded   = "Directory at LBA %d: %d records"
	DebugFileExtracted     = "Extracted %d bytes from LBA %d (%s)"
	DebugFileEntry         = "ID: %04X  MSF: %s  LBA: %6d  Size: %10d  Path: %s"
	DebugSectorsWrapped    = "Wrapped %d cooked sectors"
	DebugSectorsUnwrapped  = "Unwrapped %d raw sectors"
)

// Warning messages
const (
	WarnSkippingInvalidName = "Skipping entry with invalid file name %q in %s"
	WarnRoundTripMismatch   = "Round trip of %s differs at byte offset %d"
	WarnCueNotRaw           = "Cue sheet track %d is %s; only raw 2352-byte tracks can be read"
	WarnDirectoryNotFound   = "Directory %q not found"
	WarnFileNotFound        = "File %q not found"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Infof(message, args...)
	} else {
		log.Info(message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Warnf(message, args...)
	} else {
		log.Warn(message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Errorf(message, args...)
	} else {
		log.Error(message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Debugf(message, args...)
	} else {
		log.Debug(message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
