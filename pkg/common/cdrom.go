// Package common provides common utilities for CD-ROM operations.
// This file contains MSF conversion and file name checks for ISO 9660
// identifiers.
package common

import "fmt"

// CD time constants. LBA 0 sits after the 150-frame (2 second) pregap.
const (
	framesPerSecond  = 75
	secondsPerMinute = 60
	pregapFrames     = 2 * framesPerSecond
	logicalBlockSize = 2048
)

// LBAToMSF converts an LBA to its absolute "mm:ss:ff" disc position
func LBAToMSF(lba uint32) string {
	total := lba + pregapFrames
	return fmt.Sprintf("%02d:%02d:%02d",
		total/(secondsPerMinute*framesPerSecond),
		total/framesPerSecond%secondsPerMinute,
		total%framesPerSecond)
}

// GetSizeInSectors returns how many logical blocks hold sizeBytes
func GetSizeInSectors(sizeBytes uint32) uint32 {
	return (sizeBytes + logicalBlockSize - 1) / logicalBlockSize
}

// CleanFileName strips a ";N" version suffix ("FILE.EXT;1" -> "FILE.EXT").
// A trailing ';' with no digits is left alone.
func CleanFileName(fileName string) string {
	for i := len(fileName) - 1; i >= 0; i-- {
		c := fileName[i]
		if c == ';' && i < len(fileName)-1 {
			return fileName[:i]
		}
		if c < '0' || c > '9' {
			break
		}
	}
	return fileName
}

// IsSpecialDirEntry reports whether an identifier is the "." (0x00) or
// ".." (0x01) record
func IsSpecialDirEntry(fileName string) bool {
	return fileName == "\x00" || fileName == "\x01"
}

// IsValidFileName checks that a name is safe to create on the host
// filesystem when dumping an image
func IsValidFileName(fileName string) bool {
	if len(fileName) == 0 || len(fileName) > 255 {
		return false
	}

	// Garbage read from a damaged directory extent
	if tooManyNullBytes(fileName) || controlCharacterSpam(fileName) {
		return false
	}

	validChars := 0
	for _, b := range []byte(fileName) {
		switch {
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') ||
			(b >= '0' && b <= '9') || b == '.' || b == '_' || b == '-':
			validChars++
		case b >= 0x80:
			return false
		case b == '<' || b == '>' || b == ':' || b == '"' || b == '|' || b == '?' || b == '*' || b == '\\' || b == '/':
			return false
		}
	}

	return validChars > 0
}

// tooManyNullBytes reports more than 20% NUL bytes in names of 10 or more bytes
func tooManyNullBytes(s string) bool {
	if len(s) < 10 {
		return false
	}
	return float64(countBytes(s, func(b byte) bool { return b == 0x00 }))/float64(len(s)) > 0.2
}

// controlCharacterSpam reports more than 30% control characters, ignoring
// the 0x00 and 0x01 record identifiers
func controlCharacterSpam(s string) bool {
	if len(s) < 5 {
		return false
	}
	return float64(countBytes(s, func(b byte) bool { return b < 0x20 && b > 0x01 }))/float64(len(s)) > 0.3
}

func countBytes(s string, match func(byte) bool) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if match(s[i]) {
			n++
		}
	}
	return n
}
