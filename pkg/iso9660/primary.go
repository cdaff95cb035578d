package iso9660

import (
	"strings"

	"github.com/hansbonini/isobin/pkg/binser"
)

// PrimaryFields is the fixed part of a primary volume descriptor between
// the descriptor header and the root directory record.
type PrimaryFields struct {
	Unused8              uint8
	SystemID             [32]byte
	VolumeID             [32]byte
	Unused72             [8]byte
	VolumeSpaceSize      uint32 `struc:"little"`
	VolumeSpaceSizeMSB   uint32 `struc:"big"`
	Unused88             [32]byte
	VolumeSetSize        uint16 `struc:"little"`
	VolumeSetSizeMSB     uint16 `struc:"big"`
	VolumeSequenceNum    uint16 `struc:"little"`
	VolumeSequenceNumMSB uint16 `struc:"big"`
	LogicalBlockSize     uint16 `struc:"little"`
	LogicalBlockSizeMSB  uint16 `struc:"big"`
	PathTableSize        uint32 `struc:"little"`
	PathTableSizeMSB     uint32 `struc:"big"`
	PathTableL           uint32 `struc:"little"`
	PathTableLOptional   uint32 `struc:"little"`
	PathTableM           uint32 `struc:"big"`
	PathTableMOptional   uint32 `struc:"big"`
}

// PrimaryIdentifiers is the part following the root directory record.
// It is carried through untouched.
type PrimaryIdentifiers struct {
	VolumeSetID          [128]byte
	PublisherID          [128]byte
	DataPreparerID       [128]byte
	ApplicationID        [128]byte
	CopyrightFileID      [37]byte
	AbstractFileID       [37]byte
	BibliographicFileID  [37]byte
	CreationTime         [17]byte
	ModificationTime     [17]byte
	ExpirationTime       [17]byte
	EffectiveTime        [17]byte
	FileStructureVersion uint8
	Reserved882          uint8
	ApplicationUse       [512]byte
	Reserved1395         [653]byte
}

// PrimaryVolumeDescriptor describes the volume: where the root directory
// and the path table live. Everything else passes through opaquely.
type PrimaryVolumeDescriptor struct {
	Fields      PrimaryFields
	Root        DirectoryRecord
	Identifiers PrimaryIdentifiers
}

func (p *PrimaryVolumeDescriptor) Serialize(s binser.Serializer) error {
	if err := s.Struct(&p.Fields); err != nil {
		return err
	}
	if err := p.Root.Serialize(s); err != nil {
		return err
	}
	return s.Struct(&p.Identifiers)
}

// PathTableLBA returns the location of the Type-L path table.
func (p *PrimaryVolumeDescriptor) PathTableLBA() uint32 {
	return p.Fields.PathTableL
}

// RootLBA returns the extent of the root directory.
func (p *PrimaryVolumeDescriptor) RootLBA() uint32 {
	return p.Root.ExtentLBA
}

// VolumeID returns the volume identifier without trailing padding.
func (p *PrimaryVolumeDescriptor) VolumeID() string {
	return trimIdentifier(p.Fields.VolumeID[:])
}

// SystemID returns the system identifier without trailing padding.
func (p *PrimaryVolumeDescriptor) SystemID() string {
	return trimIdentifier(p.Fields.SystemID[:])
}

func trimIdentifier(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
