package psx

import (
	"fmt"
	"io"

	"github.com/hansbonini/isobin/pkg/common"
)

// CDReader reads user data out of a raw image, skipping the per-sector
// header and footer.
type CDReader struct {
	src           io.ReaderAt
	base          int64
	totalSectors  int64
	currentSector int64
	currentOffset int
	sectorBuffer  []byte
}

// NewCDReader creates a reader over src whose sector 0 starts at base.
// size is the image length in bytes; zero or less disables bounds checks.
func NewCDReader(src io.ReaderAt, base, size int64) *CDReader {
	total := int64(-1)
	if size > 0 {
		total = (size - base) / CD_SECTOR_SIZE
	}
	return &CDReader{
		src:           src,
		base:          base,
		totalSectors:  total,
		currentSector: -1,
		sectorBuffer:  make([]byte, CD_SECTOR_SIZE),
	}
}

// TotalSectors returns the number of whole sectors, or -1 when unknown.
func (r *CDReader) TotalSectors() int64 {
	return r.totalSectors
}

// SeekToSector loads the sector at lba into the buffer
func (r *CDReader) SeekToSector(lba int64) error {
	if lba < 0 || (r.totalSectors >= 0 && lba >= r.totalSectors) {
		return fmt.Errorf("LBA %d out of bounds (total: %d)", lba, r.totalSectors)
	}

	n, err := r.src.ReadAt(r.sectorBuffer, r.base+lba*CD_SECTOR_SIZE)
	if n == CD_SECTOR_SIZE {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sector %d: %w", lba, err)
	}

	r.currentSector = lba
	r.currentOffset = 0
	return nil
}

// ReadBytes reads user data from the current position, moving on to the
// following sectors as needed
func (r *CDReader) ReadBytes(buffer []byte) (int, error) {
	if r.currentSector < 0 {
		return 0, fmt.Errorf("no sector loaded")
	}

	bytesRead := 0
	for bytesRead < len(buffer) {
		if r.currentOffset >= CD_DATA_SIZE {
			if err := r.SeekToSector(r.currentSector + 1); err != nil {
				return bytesRead, err
			}
		}

		available := CD_DATA_SIZE - r.currentOffset
		toCopy := len(buffer) - bytesRead
		if toCopy > available {
			toCopy = available
		}

		start := CD_DATA_OFFSET + r.currentOffset
		copy(buffer[bytesRead:], r.sectorBuffer[start:start+toCopy])
		bytesRead += toCopy
		r.currentOffset += toCopy
	}

	return bytesRead, nil
}

// ExtractFile copies fileSize bytes of user data starting at lba to w
func (r *CDReader) ExtractFile(lba uint32, fileSize uint32, w io.Writer) error {
	if fileSize == 0 {
		return nil
	}
	if err := r.SeekToSector(int64(lba)); err != nil {
		return fmt.Errorf("failed to seek to LBA %d: %w", lba, err)
	}

	buffer := make([]byte, CD_DATA_SIZE)
	bytesLeft := fileSize
	totalWritten := uint32(0)
	for bytesLeft > 0 {
		chunk := buffer
		if bytesLeft < CD_DATA_SIZE {
			chunk = buffer[:bytesLeft]
		}

		bytesRead, err := r.ReadBytes(chunk)
		if err != nil {
			return fmt.Errorf("failed to read data at offset %d: %w", totalWritten, err)
		}
		if _, err := w.Write(chunk[:bytesRead]); err != nil {
			return fmt.Errorf("failed to write data at offset %d: %w", totalWritten, err)
		}

		bytesLeft -= uint32(bytesRead)
		totalWritten += uint32(bytesRead)
	}

	common.LogDebug(common.DebugFileExtracted, totalWritten, lba, common.LBAToMSF(lba))
	return nil
}

// ReadSector returns the currently loaded sector
func (r *CDReader) ReadSector() (*SectorM2F1, error) {
	if r.currentSector < 0 {
		return nil, fmt.Errorf("no sector loaded")
	}

	sector := &SectorM2F1{}
	copy(sector.Sync[:], r.sectorBuffer[0:12])
	copy(sector.Address[:], r.sectorBuffer[12:15])
	sector.Mode = r.sectorBuffer[15]
	copy(sector.SubHeader[:], r.sectorBuffer[16:24])
	copy(sector.Data[:], r.sectorBuffer[CD_DATA_OFFSET:CD_DATA_OFFSET+CD_DATA_SIZE])
	copy(sector.EDC[:], r.sectorBuffer[2072:2076])
	copy(sector.ECC[:], r.sectorBuffer[2076:])
	return sector, nil
}

// SectorMSF decodes the BCD address of the currently loaded sector
func (r *CDReader) SectorMSF() (minutes, seconds, frames uint8, err error) {
	if r.currentSector < 0 {
		return 0, 0, 0, fmt.Errorf("no sector loaded")
	}
	return fromBCD(r.sectorBuffer[12]), fromBCD(r.sectorBuffer[13]), fromBCD(r.sectorBuffer[14]), nil
}
