// Package cue reads and writes CUE sheets describing the track layout of
// BIN/CUE disc dumps.
package cue

import (
	"strings"
)

// FileType is the format of a FILE referenced by a sheet.
type FileType int

const (
	// Intel binary file (least significant byte first)
	FileBinary FileType = iota
	// Motorola binary file (most significant byte first)
	FileMotorola
	FileAiff
	FileWave
	FileMp3
)

var fileTypeNames = map[FileType]string{
	FileBinary:   "BINARY",
	FileMotorola: "MOTOROLA",
	FileAiff:     "AIFF",
	FileWave:     "WAVE",
	FileMp3:      "MP3",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return "BINARY"
}

// ParseFileType maps a FILE type keyword; unknown keywords are BINARY.
func ParseFileType(s string) FileType {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range fileTypeNames {
		if name == s {
			return t
		}
	}
	return FileBinary
}

func (t FileType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// DataType is the sector format of a track.
type DataType int

const (
	Audio DataType = iota
	// Karaoke CD+G
	Cdg
	// CDROM Mode1 data, cooked
	Mode1_2048
	// CDROM Mode1 data, raw
	Mode1_2352
	// CDROM-XA Mode2 data
	Mode2_2336
	Mode2_2352
	// CDI Mode2 data
	Cdi_2336
	Cdi_2352
)

var dataTypeNames = []string{
	Audio:      "AUDIO",
	Cdg:        "CDG",
	Mode1_2048: "MODE1/2048",
	Mode1_2352: "MODE1/2352",
	Mode2_2336: "MODE2/2336",
	Mode2_2352: "MODE2/2352",
	Cdi_2336:   "CDI/2336",
	Cdi_2352:   "CDI/2352",
}

var dataTypeSectorSizes = []int{
	Audio:      2352,
	Cdg:        2448,
	Mode1_2048: 2048,
	Mode1_2352: 2352,
	Mode2_2336: 2336,
	Mode2_2352: 2352,
	Cdi_2336:   2336,
	Cdi_2352:   2352,
}

func (t DataType) String() string {
	if t >= 0 && int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return dataTypeNames[Audio]
}

// ParseDataType maps a TRACK mode keyword; unknown keywords are AUDIO.
func ParseDataType(s string) DataType {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, name := range dataTypeNames {
		if name == s {
			return DataType(t)
		}
	}
	return Audio
}

// SectorSize returns the number of bytes one sector of this type occupies
// in the image file.
func (t DataType) SectorSize() int {
	if t >= 0 && int(t) < len(dataTypeSectorSizes) {
		return dataTypeSectorSizes[t]
	}
	return 2352
}

// IsData reports whether the track carries data rather than audio.
func (t DataType) IsData() bool {
	return t != Audio && t != Cdg
}

func (t DataType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// TrackFlags is the set of FLAGS of a track.
type TrackFlags uint8

const (
	FlagDcp TrackFlags = 1 << iota
	FlagCh4
	// Pre-emphasis, audio tracks only
	FlagPre
	// Serial copy management system
	FlagScms
	FlagData
)

var flagNames = []struct {
	flag TrackFlags
	name string
}{
	{FlagData, "DATA"},
	{FlagDcp, "DCP"},
	{FlagCh4, "4CH"},
	{FlagPre, "PRE"},
	{FlagScms, "SCMS"},
}

// Names returns the flag keywords in sheet order.
func (f TrackFlags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f TrackFlags) MarshalYAML() (interface{}, error) {
	return f.Names(), nil
}

// DataFile is a FILE command: the image file a track's data lives in.
type DataFile struct {
	Name string   `yaml:"name"`
	Type FileType `yaml:"type"`
}
