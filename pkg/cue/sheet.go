package cue

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sheet is a parsed CUE sheet.
type Sheet struct {
	// 13-digit UPC/EAN media catalog number
	Catalog          string   `yaml:"catalog,omitempty"`
	CDTextFile       string   `yaml:"cdtextfile,omitempty"`
	Performer        string   `yaml:"performer,omitempty"`
	Songwriter       string   `yaml:"songwriter,omitempty"`
	Title            string   `yaml:"title,omitempty"`
	Comments         []string `yaml:"comments,omitempty"`
	UnsupportedLines []string `yaml:"unsupported,omitempty"`
	Tracks           []*Track `yaml:"tracks"`
}

// Parse reads a sheet from r. Commands are dispatched line by line; a
// command seen before the first TRACK applies to the whole disc.
func Parse(r io.Reader) (*Sheet, error) {
	p := &parser{sheet: &Sheet{}}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := p.command(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.sheet, nil
}

// ParseString parses a sheet held in memory.
func ParseString(s string) (*Sheet, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	sheet *Sheet
	track *Track
	file  *DataFile
}

func (p *parser) command(line string) error {
	cmd, value, _ := strings.Cut(line, " ")
	cmd = strings.ToUpper(cmd)
	value = strings.TrimSpace(value)

	switch cmd {
	case "CATALOG":
		if p.track == nil {
			p.sheet.Catalog = unquote(value)
		}

	case "CDTEXTFILE":
		if p.track == nil {
			p.sheet.CDTextFile = unquote(value)
		}

	case "FILE":
		name, fileType := splitFile(value)
		p.file = &DataFile{Name: name, Type: ParseFileType(fileType)}

	case "FLAGS":
		if p.track != nil {
			for _, flag := range strings.Fields(value) {
				p.track.AddFlag(flag)
			}
		}

	case "INDEX":
		if p.track == nil {
			return fmt.Errorf("INDEX outside of a track")
		}
		number, time, ok := strings.Cut(value, " ")
		if !ok {
			return fmt.Errorf("invalid INDEX %q", value)
		}
		n, err := strconv.Atoi(number)
		if err != nil {
			return fmt.Errorf("invalid index number %q: %w", number, err)
		}
		idx, err := ParseIndex(n, time)
		if err != nil {
			return err
		}
		p.track.Indexes = append(p.track.Indexes, idx)

	case "ISRC":
		if p.track != nil {
			p.track.ISRC = unquote(value)
		}

	case "PERFORMER":
		if p.track == nil {
			p.sheet.Performer = unquote(value)
		} else {
			p.track.Performer = unquote(value)
		}

	case "PREGAP", "POSTGAP":
		if p.track == nil {
			return fmt.Errorf("%s outside of a track", cmd)
		}
		gap, err := ParseIndex(0, value)
		if err != nil {
			return err
		}
		if cmd == "PREGAP" {
			p.track.PreGap = &gap
		} else {
			p.track.PostGap = &gap
		}

	case "REM":
		if value != "" {
			if p.track != nil {
				p.track.Comments = append(p.track.Comments, value)
			} else {
				p.sheet.Comments = append(p.sheet.Comments, value)
			}
		}

	case "SONGWRITER":
		if p.track == nil {
			p.sheet.Songwriter = unquote(value)
		} else {
			p.track.Songwriter = unquote(value)
		}

	case "TITLE":
		if p.track == nil {
			p.sheet.Title = unquote(value)
		} else {
			p.track.Title = unquote(value)
		}

	case "TRACK":
		number, dataType, _ := strings.Cut(value, " ")
		n, err := strconv.Atoi(number)
		if err != nil {
			return fmt.Errorf("invalid track number %q: %w", number, err)
		}
		p.track = NewTrack(n, ParseDataType(dataType))
		p.track.File, p.file = p.file, nil
		p.sheet.Tracks = append(p.sheet.Tracks, p.track)

	default:
		if p.track != nil {
			p.track.UnsupportedLines = append(p.track.UnsupportedLines, line)
		} else {
			p.sheet.UnsupportedLines = append(p.sheet.UnsupportedLines, line)
		}
	}
	return nil
}

// splitFile separates a FILE argument into its name and type keyword. A
// quoted name may contain spaces; the type may be missing.
func splitFile(value string) (name, fileType string) {
	if strings.HasPrefix(value, `"`) {
		if end := strings.Index(value[1:], `"`); end >= 0 {
			return value[1 : end+1], strings.TrimSpace(value[end+2:])
		}
		return unquote(value), ""
	}
	if sep := strings.LastIndex(value, " "); sep >= 0 {
		return strings.TrimSpace(value[:sep]), value[sep+1:]
	}
	return value, ""
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}

func (s *Sheet) String() string {
	var b strings.Builder

	for _, comment := range s.Comments {
		fmt.Fprintf(&b, "REM %s\n", comment)
	}
	if strings.TrimSpace(s.Catalog) != "" {
		fmt.Fprintf(&b, "CATALOG %s\n", s.Catalog)
	}
	if strings.TrimSpace(s.Performer) != "" {
		fmt.Fprintf(&b, "PERFORMER \"%s\"\n", s.Performer)
	}
	if strings.TrimSpace(s.Songwriter) != "" {
		fmt.Fprintf(&b, "SONGWRITER \"%s\"\n", s.Songwriter)
	}
	if strings.TrimSpace(s.Title) != "" {
		fmt.Fprintf(&b, "TITLE \"%s\"\n", s.Title)
	}
	if strings.TrimSpace(s.CDTextFile) != "" {
		fmt.Fprintf(&b, "CDTEXTFILE \"%s\"\n", strings.TrimSpace(s.CDTextFile))
	}
	for _, line := range s.UnsupportedLines {
		fmt.Fprintf(&b, "%s\n", line)
	}

	for i, track := range s.Tracks {
		b.WriteString(track.String())
		if i != len(s.Tracks)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// WriteTo writes the sheet followed by a final newline.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String()+"\n")
	return int64(n), err
}

// DataTrack returns the first track that carries data.
func (s *Sheet) DataTrack() (*Track, bool) {
	for _, t := range s.Tracks {
		if t.DataType.IsData() {
			return t, true
		}
	}
	return nil, false
}

// FileOf returns the FILE a track's data lives in: the last FILE given at
// or before the track. It returns nil when t is not in the sheet or no
// FILE precedes it.
func (s *Sheet) FileOf(t *Track) *DataFile {
	var file *DataFile
	for _, track := range s.Tracks {
		if track.File != nil {
			file = track.File
		}
		if track == t {
			return file
		}
	}
	return nil
}
