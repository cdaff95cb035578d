// Package iso9660 models an ISO 9660 volume stored in raw 2352-byte CD-ROM
// sectors and resolves paths through its path table.
package iso9660

import (
	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/hansbonini/isobin/pkg/psx"
)

// Raw sector geometry.
const (
	SectorDataSize   = psx.CD_DATA_SIZE
	SectorHeaderSize = psx.CD_SYNC_SIZE + psx.CD_HEADER_SIZE + psx.CD_SUBHEADER_SIZE
	SectorFooterSize = psx.CD_EDC_SIZE + psx.CD_ECC_SIZE
	SectorSize       = SectorDataSize + SectorHeaderSize + SectorFooterSize

	// SystemAreaSectors is the number of reserved sectors before the
	// volume descriptor set.
	SystemAreaSectors = 16
)

// SectorFrame wraps one raw sector around a payload of type T.
//
// The payload area is captured verbatim in Raw before T decodes it, and
// re-emitted before T encodes itself, so bytes a short payload leaves
// untouched survive a round trip. EDC and ECC are never checked.
type SectorFrame[T any, PT binser.Ptr[T]] struct {
	Sync      []byte
	Header    []byte
	SubHeader []byte
	Raw       []byte
	Payload   T
	EDC       []byte
	ECC       []byte
}

func (f *SectorFrame[T, PT]) Serialize(s binser.Serializer) error {
	start := s.Pos()

	if err := s.Bytes(&f.Sync, psx.CD_SYNC_SIZE); err != nil {
		return err
	}
	if err := s.Bytes(&f.Header, psx.CD_HEADER_SIZE); err != nil {
		return err
	}
	if err := s.Bytes(&f.SubHeader, psx.CD_SUBHEADER_SIZE); err != nil {
		return err
	}

	payload := s.Pos()
	if err := s.Bytes(&f.Raw, SectorDataSize); err != nil {
		return err
	}
	if err := s.Goto(payload); err != nil {
		return err
	}
	if err := binser.Object[T, PT](s, &f.Payload); err != nil {
		return err
	}

	// Short payloads must not shift the footer.
	if err := s.Goto(start + SectorHeaderSize + SectorDataSize); err != nil {
		return err
	}
	if err := s.Bytes(&f.EDC, psx.CD_EDC_SIZE); err != nil {
		return err
	}
	return s.Bytes(&f.ECC, psx.CD_ECC_SIZE)
}

// Sector frames used by the volume layout.
type (
	DescriptorSector = SectorFrame[VolumeDescriptor, *VolumeDescriptor]
	PathTableSector  = SectorFrame[PathTable, *PathTable]
	DirectorySector  = SectorFrame[DirectoryBlock, *DirectoryBlock]
)
