package iso9660

import (
	"path"
	"strings"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/pkg/errors"
)

// Reindex rebuilds the lookup tables after Directories or the path table
// were edited in memory. Load and Serialize call it.
func (d *Disc) Reindex() {
	d.buildIndex()
}

// SplitPath splits p on forward and back slashes, dropping empty segments.
func SplitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// ResolveDirectory returns the directory block at p, resolved through the
// path table. With strict unset a missing directory yields (nil, nil).
func (d *Disc) ResolveDirectory(p string, strict bool) (*DirectoryBlock, error) {
	lba, err := d.walk(SplitPath(p))
	if err != nil {
		return nil, miss(err, strict)
	}
	block, err := d.blockAt(lba)
	if err != nil {
		return nil, miss(err, strict)
	}
	return block, nil
}

// ResolveFile returns the record of the file at p. Directory records never
// match. The bare root is not a file and fails with ErrInvalidPath. With
// strict unset a miss yields (nil, nil).
func (d *Disc) ResolveFile(p string, strict bool) (*DirectoryRecord, error) {
	segments := SplitPath(p)
	if len(segments) == 0 {
		return nil, miss(errors.Wrapf(ErrInvalidPath, "%q names no file", p), strict)
	}

	lba, err := d.walk(segments[:len(segments)-1])
	if err != nil {
		return nil, miss(err, strict)
	}
	block, err := d.blockAt(lba)
	if err != nil {
		return nil, miss(err, strict)
	}

	name := segments[len(segments)-1]
	if rec := findFile(block, name); rec != nil {
		return rec, nil
	}
	return nil, miss(errors.Wrapf(ErrFileNotFound, "%q in directory at LBA %d", name, lba), strict)
}

// findFile prefers an exact identifier match over one that only matches
// once the ";N" version suffix is stripped.
func findFile(block *DirectoryBlock, name string) *DirectoryRecord {
	for i := range block.Records {
		rec := &block.Records[i]
		if !rec.IsDir() && rec.Identifier == name {
			return rec
		}
	}
	for i := range block.Records {
		rec := &block.Records[i]
		if !rec.IsDir() && !rec.IsSpecial() && common.CleanFileName(rec.Identifier) == name {
			return rec
		}
	}
	return nil
}

// walk follows segments from the root through the path table and returns
// the extent of the last directory reached.
func (d *Disc) walk(segments []string) (uint32, error) {
	primary, err := d.Primary()
	if err != nil {
		return 0, err
	}

	entries := d.PathTable.Payload.Entries
	index := 0
	lba := primary.RootLBA()
	for _, segment := range segments {
		next, ok := d.children[childKey{parent: index + 1, name: segment}]
		if !ok {
			return 0, errors.Wrapf(ErrPathSegmentNotFound, "directory %q", segment)
		}
		index = next
		lba = entries[index].ExtentLBA
	}
	return lba, nil
}

func (d *Disc) blockAt(lba uint32) (*DirectoryBlock, error) {
	i, ok := d.blocks[lba]
	if !ok {
		return nil, errors.Wrapf(ErrDirectoryBlockNotFound, "LBA %d", lba)
	}
	return &d.Directories[i].Payload, nil
}

func miss(err error, strict bool) error {
	if strict {
		return err
	}
	return nil
}

// DirectoryPath builds the absolute path of the path table entry at the
// 0-based index i by following parent indexes.
func (d *Disc) DirectoryPath(i int) string {
	entries := d.PathTable.Payload.Entries
	var parts []string
	for guard := 0; i > 0 && i < len(entries) && guard < len(entries); guard++ {
		e := entries[i]
		parts = append(parts, e.Identifier)
		parent := int(e.ParentIndex) - 1
		if parent >= i {
			break
		}
		i = parent
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return "/" + path.Join(parts...)
}

// Walk calls fn for every record of every directory, in path table order,
// skipping the "." and ".." entries. dir is the absolute directory path.
func (d *Disc) Walk(fn func(dir string, rec *DirectoryRecord) error) error {
	for i := range d.Directories {
		dir := d.DirectoryPath(i)
		records := d.Directories[i].Payload.Records
		for j := range records {
			if records[j].IsSpecial() {
				continue
			}
			if err := fn(dir, &records[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Entry is a record together with the absolute path of its directory.
type Entry struct {
	Dir    string
	Record *DirectoryRecord
}

// Path returns the absolute path of the record.
func (e Entry) Path() string {
	return path.Join(e.Dir, e.Record.Name())
}

// Entries collects every record visited by Walk.
func (d *Disc) Entries() []Entry {
	var entries []Entry
	_ = d.Walk(func(dir string, rec *DirectoryRecord) error {
		entries = append(entries, Entry{Dir: dir, Record: rec})
		return nil
	})
	return entries
}
