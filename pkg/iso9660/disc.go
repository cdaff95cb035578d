package iso9660

import (
	"io"

	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/hansbonini/isobin/pkg/common"
	"github.com/pkg/errors"
)

// SystemAreaHook serializes whatever occupies the reserved sectors in
// front of the volume descriptor set. The serializer is positioned at the
// image base when it is called.
type SystemAreaHook func(s binser.Serializer, d *Disc) error

// Options controls how an image is loaded and saved.
type Options struct {
	// BaseOffset is the byte offset of sector 0 inside the stream.
	BaseOffset int64
	// SystemArea handles sectors 0-15. Nil skips them.
	SystemArea SystemAreaHook
}

// KeepSystemArea is a SystemAreaHook that captures the reserved sectors
// verbatim and writes them back on save.
func KeepSystemArea(s binser.Serializer, d *Disc) error {
	return s.Bytes(&d.SystemArea, SystemAreaSectors*SectorSize)
}

// Disc is a loaded raw CD-ROM image. It owns the volume descriptor set, the
// path table and one directory block per path table entry; Directories[i]
// belongs to PathTable.Payload.Entries[i].
//
// A Disc performs no I/O after Load, and lookups do not mutate it, so
// concurrent lookups are safe as long as nobody loads or saves it at the
// same time. There is no internal locking.
type Disc struct {
	SystemArea  []byte
	Descriptors []DescriptorSector
	PathTable   PathTableSector
	Directories []DirectorySector

	opts Options

	// (parent index, identifier) -> 0-based path table index, first entry wins
	children map[childKey]int
	// extent LBA -> directory block index, first block wins
	blocks map[uint32]int
}

type childKey struct {
	parent int
	name   string
}

// New returns an empty Disc ready to be serialized with the given options.
func New(opts Options) *Disc {
	return &Disc{opts: opts}
}

// Load reads a complete image from rs.
func Load(rs io.ReadSeeker, opts Options) (*Disc, error) {
	r, err := binser.NewReader(rs)
	if err != nil {
		return nil, err
	}
	d := New(opts)
	if err := d.Serialize(r); err != nil {
		return nil, err
	}
	return d, nil
}

// Save writes the in-memory structures back to ws at the same offsets they
// were read from.
func (d *Disc) Save(ws io.WriteSeeker) error {
	w, err := binser.NewWriter(ws)
	if err != nil {
		return err
	}
	return d.Serialize(w)
}

// Serialize walks the image top-down: system area, descriptor set from
// sector 16, path table, then one directory block per path table entry.
func (d *Disc) Serialize(s binser.Serializer) error {
	if d.opts.SystemArea != nil {
		if err := s.Goto(d.opts.BaseOffset); err != nil {
			return err
		}
		if err := d.opts.SystemArea(s, d); err != nil {
			return errors.Wrap(err, "system area")
		}
	}

	if err := s.Goto(d.LBAToOffset(SystemAreaSectors)); err != nil {
		return err
	}
	descriptors, err := binser.ArrayUntil(s, d.Descriptors,
		func(f *DescriptorSector) bool { return f.Payload.IsTerminator() },
		nil, nil)
	if err != nil {
		return errors.Wrap(err, "volume descriptors")
	}
	d.Descriptors = descriptors
	common.LogDebug(common.DebugDescriptorsLoaded, len(d.Descriptors))

	primary, err := d.Primary()
	if err != nil {
		return err
	}

	if err := s.Goto(d.LBAToOffset(primary.PathTableLBA())); err != nil {
		return err
	}
	if err := d.PathTable.Serialize(s); err != nil {
		return errors.Wrapf(err, "path table at LBA %d", primary.PathTableLBA())
	}
	entries := d.PathTable.Payload.Entries
	common.LogDebug(common.DebugPathTableLoaded, len(entries), primary.PathTableLBA())

	if s.Reading() {
		d.Directories = make([]DirectorySector, len(entries))
	} else if len(d.Directories) != len(entries) {
		return errors.Wrapf(ErrMisalignedDirectories, "%d blocks for %d entries", len(d.Directories), len(entries))
	}
	for i := range entries {
		lba := entries[i].ExtentLBA
		if err := s.Goto(d.LBAToOffset(lba)); err != nil {
			return err
		}
		if err := d.Directories[i].Serialize(s); err != nil {
			return errors.Wrapf(err, "directory %q at LBA %d", entries[i].Identifier, lba)
		}
		common.LogDebug(common.DebugDirectoryLoaded, lba, len(d.Directories[i].Payload.Records))
	}

	d.buildIndex()
	return nil
}

// LBAToOffset returns the byte offset of the raw sector at lba.
func (d *Disc) LBAToOffset(lba uint32) int64 {
	return d.opts.BaseOffset + int64(lba)*SectorSize
}

// Primary returns the first primary volume descriptor of the set.
func (d *Disc) Primary() (*PrimaryVolumeDescriptor, error) {
	for i := range d.Descriptors {
		if vd := &d.Descriptors[i].Payload; vd.Type == TypePrimary && vd.Primary != nil {
			return vd.Primary, nil
		}
	}
	return nil, ErrMissingPrimary
}

// PathTableEntries returns the path table in table order.
func (d *Disc) PathTableEntries() []PathTableEntry {
	return d.PathTable.Payload.Entries
}

func (d *Disc) buildIndex() {
	entries := d.PathTable.Payload.Entries
	d.children = make(map[childKey]int, len(entries))
	for i, e := range entries {
		key := childKey{parent: int(e.ParentIndex), name: e.Identifier}
		if _, ok := d.children[key]; !ok {
			d.children[key] = i
		}
	}

	d.blocks = make(map[uint32]int, len(d.Directories))
	for i := range d.Directories {
		lba, ok := d.Directories[i].Payload.LBA()
		if !ok {
			continue
		}
		if _, seen := d.blocks[lba]; !seen {
			d.blocks[lba] = i
		}
	}
}
