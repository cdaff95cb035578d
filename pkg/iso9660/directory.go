package iso9660

import (
	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/hansbonini/isobin/pkg/common"
	"github.com/pkg/errors"
)

// FileFlags is the directory record flag byte.
type FileFlags uint8

const (
	FlagHidden      FileFlags = 1 << 0
	FlagDirectory   FileFlags = 1 << 1
	FlagAssociated  FileFlags = 1 << 2
	FlagRecord      FileFlags = 1 << 3
	FlagProtection  FileFlags = 1 << 4
	FlagMultiExtent FileFlags = 1 << 7
)

// directoryRecordHeaderSize is the size of a record without identifier,
// padding and system use area.
const directoryRecordHeaderSize = 33

// DirectoryRecord describes one file or subdirectory. Both-endian fields
// are kept as stored; only the little-endian halves are interpreted.
type DirectoryRecord struct {
	Length            uint8
	ExtAttrLength     uint8
	ExtentLBA         uint32
	ExtentLBAMSB      uint32
	DataLength        uint32
	DataLengthMSB     uint32
	RecordingTime     []byte
	Flags             FileFlags
	FileUnitSize      uint8
	InterleaveGapSize uint8
	VolumeSequence    uint16
	VolumeSequenceMSB uint16
	IdentifierLength  uint8
	Identifier        string
	// byte after an even-length identifier, kept as found
	Pad       uint8
	SystemUse []byte
}

// NewDirectoryRecord builds a record with consistent length fields.
func NewDirectoryRecord(identifier string, lba, size uint32, flags FileFlags) (DirectoryRecord, error) {
	idLen, err := common.SafeIntToUint8(len(identifier))
	if err != nil {
		return DirectoryRecord{}, errors.Wrapf(ErrMalformedRecord, "identifier %q: %v", identifier, err)
	}
	length, err := common.SafeIntToUint8(directoryRecordHeaderSize + len(identifier) + identifierPadding(idLen))
	if err != nil {
		return DirectoryRecord{}, errors.Wrapf(ErrMalformedRecord, "identifier %q: %v", identifier, err)
	}
	return DirectoryRecord{
		Length:            length,
		ExtentLBA:         lba,
		ExtentLBAMSB:      lba,
		DataLength:        size,
		DataLengthMSB:     size,
		RecordingTime:     make([]byte, 7),
		Flags:             flags,
		VolumeSequence:    1,
		VolumeSequenceMSB: 1,
		IdentifierLength:  idLen,
		Identifier:        identifier,
	}, nil
}

// Records pad the identifier so the system use area starts on an even offset.
func identifierPadding(idLen uint8) int {
	if idLen%2 == 0 {
		return 1
	}
	return 0
}

func (r *DirectoryRecord) Serialize(s binser.Serializer) error {
	if err := s.Uint8(&r.Length); err != nil {
		return err
	}
	if r.Length == 0 {
		return nil
	}
	if r.Length < directoryRecordHeaderSize {
		return errors.Wrapf(ErrMalformedRecord, "length %d at 0x%X", r.Length, s.Pos()-1)
	}

	if err := s.Uint8(&r.ExtAttrLength); err != nil {
		return err
	}
	if err := s.Uint32(&r.ExtentLBA); err != nil {
		return err
	}
	if err := s.Uint32BE(&r.ExtentLBAMSB); err != nil {
		return err
	}
	if err := s.Uint32(&r.DataLength); err != nil {
		return err
	}
	if err := s.Uint32BE(&r.DataLengthMSB); err != nil {
		return err
	}
	if err := s.Bytes(&r.RecordingTime, 7); err != nil {
		return err
	}
	flags := uint8(r.Flags)
	if err := s.Uint8(&flags); err != nil {
		return err
	}
	r.Flags = FileFlags(flags)
	if err := s.Uint8(&r.FileUnitSize); err != nil {
		return err
	}
	if err := s.Uint8(&r.InterleaveGapSize); err != nil {
		return err
	}
	if err := s.Uint16(&r.VolumeSequence); err != nil {
		return err
	}
	if err := s.Uint16BE(&r.VolumeSequenceMSB); err != nil {
		return err
	}
	if err := s.Uint8(&r.IdentifierLength); err != nil {
		return err
	}

	pad := identifierPadding(r.IdentifierLength)
	used := directoryRecordHeaderSize + int(r.IdentifierLength) + pad
	if used > int(r.Length) {
		// some mastering tools omit the pad byte
		pad, used = 0, used-pad
	}
	if used > int(r.Length) {
		return errors.Wrapf(ErrMalformedRecord, "identifier length %d exceeds record length %d", r.IdentifierLength, r.Length)
	}
	if err := s.FixedString(&r.Identifier, int(r.IdentifierLength)); err != nil {
		return err
	}
	if pad == 1 {
		if err := s.Uint8(&r.Pad); err != nil {
			return err
		}
	}
	if rest := int(r.Length) - used; rest > 0 {
		return s.Bytes(&r.SystemUse, rest)
	}
	return nil
}

// IsDir reports whether the record describes a directory.
func (r *DirectoryRecord) IsDir() bool {
	return r.Flags&FlagDirectory != 0
}

// Name returns the identifier in display form: "." and ".." for the self
// and parent entries, and without the ";N" version suffix otherwise.
func (r *DirectoryRecord) Name() string {
	switch r.Identifier {
	case "\x00":
		return "."
	case "\x01":
		return ".."
	}
	return common.CleanFileName(r.Identifier)
}

// IsSpecial reports whether r is the "." or ".." entry.
func (r *DirectoryRecord) IsSpecial() bool {
	return common.IsSpecialDirEntry(r.Identifier)
}

// DirectoryBlock holds the records stored in the first block of a
// directory extent. It always starts with the "." and ".." entries.
type DirectoryBlock struct {
	Records []DirectoryRecord
}

func (d *DirectoryBlock) Serialize(s binser.Serializer) error {
	start := s.Pos()
	within := func() bool {
		return s.Pos()-start < SectorDataSize
	}

	records, err := binser.ArrayUntil(s, d.Records,
		func(r *DirectoryRecord) bool { return r.Length == 0 },
		func() DirectoryRecord { return DirectoryRecord{} },
		within)
	if err != nil {
		return errors.Wrap(err, "directory records")
	}
	d.Records = records
	return nil
}

// LBA returns the extent the block belongs to, taken from its "." entry.
func (d *DirectoryBlock) LBA() (uint32, bool) {
	if len(d.Records) == 0 {
		return 0, false
	}
	return d.Records[0].ExtentLBA, true
}
