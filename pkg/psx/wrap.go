package psx

import (
	"fmt"
	"io"

	"github.com/hansbonini/isobin/pkg/common"
)

// Wrap converts a cooked image (2048 bytes per sector) into raw Mode 2
// Form 1 sectors. A short final sector is zero padded. It returns the
// number of sectors written.
func Wrap(cooked io.Reader, raw io.Writer) (uint32, error) {
	buffer := make([]byte, CD_DATA_SIZE)
	lba := uint32(0)
	for {
		n, err := io.ReadFull(cooked, buffer)
		if err == io.EOF {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return lba, fmt.Errorf("failed to read cooked sector %d: %w", lba, err)
		}
		for i := n; i < CD_DATA_SIZE; i++ {
			buffer[i] = 0
		}

		sector := NewSectorM2F1(lba, buffer, SubmodeData)
		if _, werr := raw.Write(sector.Bytes()); werr != nil {
			return lba, fmt.Errorf("failed to write raw sector %d: %w", lba, werr)
		}
		lba++

		if err == io.ErrUnexpectedEOF {
			break
		}
	}

	common.LogDebug(common.DebugSectorsWrapped, lba)
	return lba, nil
}

// Unwrap copies the user data of every sector in a raw image of the given
// size to cooked. It returns the number of sectors copied.
func Unwrap(src io.ReaderAt, size int64, cooked io.Writer) (uint32, error) {
	reader := NewCDReader(src, 0, size)
	total := reader.TotalSectors()
	if total < 0 {
		return 0, fmt.Errorf("raw image size must be known")
	}

	buffer := make([]byte, CD_DATA_SIZE)
	for lba := int64(0); lba < total; lba++ {
		if err := reader.SeekToSector(lba); err != nil {
			return uint32(lba), err
		}
		if _, err := reader.ReadBytes(buffer); err != nil {
			return uint32(lba), err
		}
		if _, err := cooked.Write(buffer); err != nil {
			return uint32(lba), fmt.Errorf("failed to write cooked sector %d: %w", lba, err)
		}
	}

	common.LogDebug(common.DebugSectorsUnwrapped, total)
	return uint32(total), nil
}
