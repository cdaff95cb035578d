package cue

import (
	"fmt"
	"strings"
)

// Track is one TRACK of a sheet together with its commands.
type Track struct {
	Number           int        `yaml:"number"`
	DataType         DataType   `yaml:"type"`
	File             *DataFile  `yaml:"file,omitempty"`
	Flags            TrackFlags `yaml:"flags,omitempty"`
	ISRC             string     `yaml:"isrc,omitempty"`
	Performer        string     `yaml:"performer,omitempty"`
	Songwriter       string     `yaml:"songwriter,omitempty"`
	Title            string     `yaml:"title,omitempty"`
	PreGap           *Index     `yaml:"pregap,omitempty"`
	PostGap          *Index     `yaml:"postgap,omitempty"`
	Indexes          []Index    `yaml:"indexes"`
	Comments         []string   `yaml:"comments,omitempty"`
	UnsupportedLines []string   `yaml:"unsupported,omitempty"`
}

// NewTrack creates a track with the given number and data type.
func NewTrack(number int, dataType DataType) *Track {
	return &Track{Number: number, DataType: dataType}
}

// AddFlag sets the flag named by keyword. Unknown keywords are ignored.
func (t *Track) AddFlag(keyword string) {
	switch strings.ToUpper(keyword) {
	case "DATA":
		t.Flags |= FlagData
	case "DCP":
		t.Flags |= FlagDcp
	case "4CH":
		t.Flags |= FlagCh4
	case "PRE":
		t.Flags |= FlagPre
	case "SCMS":
		t.Flags |= FlagScms
	}
}

// Start returns INDEX 01, the point where the track's data begins, falling
// back to the first index of the track.
func (t *Track) Start() (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Number == 1 {
			return idx, true
		}
	}
	if len(t.Indexes) > 0 {
		return t.Indexes[0], true
	}
	return Index{}, false
}

// ByteOffset returns where the track starts inside its file, assuming the
// tracks before it in that file use the same sector size.
func (t *Track) ByteOffset() (int64, bool) {
	start, ok := t.Start()
	if !ok {
		return 0, false
	}
	return int64(start.LBA()) * int64(t.DataType.SectorSize()), true
}

func (t *Track) String() string {
	var b strings.Builder

	if t.File != nil && strings.TrimSpace(t.File.Name) != "" {
		fmt.Fprintf(&b, "FILE \"%s\" %s\n", strings.TrimSpace(t.File.Name), t.File.Type)
	}

	fmt.Fprintf(&b, "  TRACK %02d %s", t.Number, t.DataType)

	for _, comment := range t.Comments {
		fmt.Fprintf(&b, "\n    REM %s", comment)
	}
	if strings.TrimSpace(t.Performer) != "" {
		fmt.Fprintf(&b, "\n    PERFORMER \"%s\"", t.Performer)
	}
	if strings.TrimSpace(t.Songwriter) != "" {
		fmt.Fprintf(&b, "\n    SONGWRITER \"%s\"", t.Songwriter)
	}
	if strings.TrimSpace(t.Title) != "" {
		fmt.Fprintf(&b, "\n    TITLE \"%s\"", t.Title)
	}
	if t.Flags != 0 {
		fmt.Fprintf(&b, "\n    FLAGS %s", strings.Join(t.Flags.Names(), " "))
	}
	if strings.TrimSpace(t.ISRC) != "" {
		fmt.Fprintf(&b, "\n    ISRC %s", strings.TrimSpace(t.ISRC))
	}
	if t.PreGap != nil {
		fmt.Fprintf(&b, "\n    PREGAP %s", t.PreGap.Time())
	}
	for _, idx := range t.Indexes {
		fmt.Fprintf(&b, "\n    INDEX %02d %s", idx.Number, idx.Time())
	}
	if t.PostGap != nil {
		fmt.Fprintf(&b, "\n    POSTGAP %s", t.PostGap.Time())
	}
	for _, line := range t.UnsupportedLines {
		fmt.Fprintf(&b, "\n    %s", line)
	}

	return b.String()
}
