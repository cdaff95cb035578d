package iso9660

import (
	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/hansbonini/isobin/pkg/common"
	"github.com/pkg/errors"
)

// RootIndex is the 1-based path table index of the root directory.
const RootIndex = 1

// PathTableEntry names one directory, its parent and its extent.
// ParentIndex is 1-based; the root is its own parent.
type PathTableEntry struct {
	IdentifierLength uint8
	ExtAttrLength    uint8
	ExtentLBA        uint32
	ParentIndex      uint16
	Identifier       string
	// byte after an odd-length identifier, kept as found
	Pad uint8
}

// NewPathTableEntry builds an entry with a consistent identifier length.
func NewPathTableEntry(identifier string, lba uint32, parent uint16) (PathTableEntry, error) {
	idLen, err := common.SafeIntToUint8(len(identifier))
	if err != nil {
		return PathTableEntry{}, errors.Wrapf(err, "identifier %q", identifier)
	}
	return PathTableEntry{
		IdentifierLength: idLen,
		ExtentLBA:        lba,
		ParentIndex:      parent,
		Identifier:       identifier,
	}, nil
}

func (e *PathTableEntry) Serialize(s binser.Serializer) error {
	if err := s.Uint8(&e.IdentifierLength); err != nil {
		return err
	}
	if e.IdentifierLength == 0 {
		return nil
	}
	if err := s.Uint8(&e.ExtAttrLength); err != nil {
		return err
	}
	if err := s.Uint32(&e.ExtentLBA); err != nil {
		return err
	}
	if err := s.Uint16(&e.ParentIndex); err != nil {
		return err
	}
	if err := s.FixedString(&e.Identifier, int(e.IdentifierLength)); err != nil {
		return err
	}
	if e.IdentifierLength%2 != 0 {
		return s.Uint8(&e.Pad)
	}
	return nil
}

// PathTable is the flat, parent-indexed list of every directory on the
// volume. Entry 1 is the root.
type PathTable struct {
	Entries []PathTableEntry
}

func (t *PathTable) Serialize(s binser.Serializer) error {
	start := s.Pos()
	entries, err := binser.ArrayUntil(s, t.Entries,
		func(e *PathTableEntry) bool { return e.IdentifierLength == 0 },
		func() PathTableEntry { return PathTableEntry{} },
		func() bool { return s.Pos()-start < SectorDataSize })
	if err != nil {
		return errors.Wrap(err, "path table entries")
	}
	t.Entries = entries
	return nil
}
