// Package psx provides raw CD-ROM sector handling for PlayStation style
// BIN images: 2352-byte Mode 2 sectors carrying 2048 bytes of user data.
package psx

// Sector size constants for PlayStation CD-ROM
const (
	CD_SECTOR_SIZE    = 2352 // Full CD sector size
	CD_DATA_SIZE      = 2048 // Data portion of Mode 1 / Mode 2 Form 1 sector
	CD_SYNC_SIZE      = 12   // Sync pattern size
	CD_HEADER_SIZE    = 4    // Header size (3 address bytes + 1 mode byte)
	CD_SUBHEADER_SIZE = 8    // XA subheader, stored twice
	CD_EDC_SIZE       = 4    // Error Detection Code
	CD_ECC_SIZE       = 276  // Error Correction Code

	// CD_DATA_OFFSET is where user data starts inside a raw sector.
	CD_DATA_OFFSET = CD_SYNC_SIZE + CD_HEADER_SIZE + CD_SUBHEADER_SIZE
)

// Sub-mode bits of the XA subheader
const (
	SubmodeEOR  = 0x01 // End of record
	SubmodeData = 0x08
	SubmodeEOF  = 0x80 // End of file
)

// SubmodeNames lists the sub-mode bits set in b, lowest bit first.
func SubmodeNames(b byte) []string {
	names := []string{}
	for _, bit := range []struct {
		mask byte
		name string
	}{
		{SubmodeEOR, "eor"},
		{SubmodeData, "data"},
		{SubmodeEOF, "eof"},
	} {
		if b&bit.mask != 0 {
			names = append(names, bit.name)
		}
	}
	return names
}

// SyncPattern starts every raw data sector.
var SyncPattern = [CD_SYNC_SIZE]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// SectorM2F1 represents a Mode 2 Form 1 sector (used in regular files)
type SectorM2F1 struct {
	Sync      [12]byte   // Sync pattern
	Address   [3]byte    // Sector address (MSF format, BCD)
	Mode      byte       // Mode (usually 2)
	SubHeader [8]byte    // XA subheader
	Data      [2048]byte // User data
	EDC       [4]byte    // Error Detection Code
	ECC       [276]byte  // Error Correction Code
}

// Bytes lays the sector out in its raw 2352-byte form.
func (s *SectorM2F1) Bytes() []byte {
	raw := make([]byte, 0, CD_SECTOR_SIZE)
	raw = append(raw, s.Sync[:]...)
	raw = append(raw, s.Address[:]...)
	raw = append(raw, s.Mode)
	raw = append(raw, s.SubHeader[:]...)
	raw = append(raw, s.Data[:]...)
	raw = append(raw, s.EDC[:]...)
	raw = append(raw, s.ECC[:]...)
	return raw
}

// NewSectorM2F1 builds a data sector for lba with the given payload.
// EDC and ECC are left zeroed.
func NewSectorM2F1(lba uint32, data []byte, submode byte) *SectorM2F1 {
	s := &SectorM2F1{
		Sync: SyncPattern,
		Mode: 2,
	}
	m, sec, f := LBAToMSF(lba)
	s.Address = [3]byte{toBCD(m), toBCD(sec), toBCD(f)}
	for i := 0; i < 2; i++ {
		s.SubHeader[i*4+2] = submode
	}
	copy(s.Data[:], data)
	return s
}

// LBAToMSF converts a logical block address to an absolute disc time,
// accounting for the 150-frame lead-in pregap.
func LBAToMSF(lba uint32) (minutes, seconds, frames uint8) {
	total := lba + 150
	return uint8(total / (60 * 75)), uint8((total % (60 * 75)) / 75), uint8(total % 75)
}

func toBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

func fromBCD(v uint8) uint8 {
	return (v>>4)*10 + v&0x0F
}
