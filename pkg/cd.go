// Package pkg provides the image operations behind the isobin commands.
// This file contains the CD image processor used by the iso command.
package pkg

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/hansbonini/isobin/pkg/iso9660"
	"github.com/hansbonini/isobin/pkg/psx"
	"github.com/rn/iso9660wrap"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// CDFileEntry describes one record of a CD image in listings
type CDFileEntry struct {
	ID      int           `yaml:"id"`
	Path    string        `yaml:"path"`
	LBA     uint32        `yaml:"lba"`
	MSF     string        `yaml:"msf"`
	Size    uint32        `yaml:"size"`
	Sectors uint32        `yaml:"sectors"`
	Dir     bool          `yaml:"dir,omitempty"`
	Header  *SectorHeader `yaml:"header,omitempty"`
}

// SectorHeader is the raw header of the first sector of a file, as stored
// on the disc
type SectorHeader struct {
	MSF     string   `yaml:"msf"`
	Mode    uint8    `yaml:"mode"`
	Submode []string `yaml:"submode"`
}

func newCDFileEntry(id int, fullPath string, rec *iso9660.DirectoryRecord) CDFileEntry {
	return CDFileEntry{
		ID:      id,
		Path:    fullPath,
		LBA:     rec.ExtentLBA,
		MSF:     common.LBAToMSF(rec.ExtentLBA),
		Size:    rec.DataLength,
		Sectors: common.GetSizeInSectors(rec.DataLength),
		Dir:     rec.IsDir(),
	}
}

// CDProcessor handles CD image operations on top of a filesystem
type CDProcessor struct {
	fs  afero.Fs
	cfg *common.Config
}

// NewCDProcessor creates a new CD processor. A nil config uses the defaults.
func NewCDProcessor(fs afero.Fs, cfg *common.Config) *CDProcessor {
	if cfg == nil {
		cfg = common.DefaultConfig()
	}
	return &CDProcessor{fs: fs, cfg: cfg}
}

// cdImage is an open raw image together with its parsed file system
type cdImage struct {
	file afero.File
	size int64
	disc *iso9660.Disc
}

func (img *cdImage) Close() error {
	return img.file.Close()
}

func (p *CDProcessor) options(base int64) iso9660.Options {
	opts := iso9660.Options{BaseOffset: base}
	if p.cfg.KeepSystemArea {
		opts.SystemArea = iso9660.KeepSystemArea
	}
	return opts
}

// openImage opens a raw image, or the data track a cue sheet points at,
// and loads its file system.
func (p *CDProcessor) openImage(imagePath string) (*cdImage, error) {
	base := p.cfg.BaseOffset
	if strings.EqualFold(filepath.Ext(imagePath), ".cue") {
		binPath, offset, err := p.resolveCue(imagePath)
		if err != nil {
			return nil, err
		}
		imagePath = binPath
		base += offset
	}

	file, err := p.fs.Open(imagePath)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}

	disc, err := iso9660.Load(file, p.options(base))
	if err != nil {
		file.Close()
		return nil, common.FormatError(common.ErrFailedToLoadImage, err)
	}

	primary, _ := disc.Primary()
	common.LogInfo(common.InfoImageLoaded, imagePath, primary.VolumeID(), len(disc.Directories))

	return &cdImage{file: file, size: info.Size(), disc: disc}, nil
}

// resolveCue returns the file holding the first data track of a cue sheet
// and the byte offset where that track starts.
func (p *CDProcessor) resolveCue(cuePath string) (string, int64, error) {
	sheet, err := NewCueProcessor(p.fs).Read(cuePath)
	if err != nil {
		return "", 0, err
	}

	track, ok := sheet.DataTrack()
	if !ok {
		return "", 0, common.FormatErrorString(common.ErrNoDataTrack, "%s", cuePath)
	}
	if track.DataType.SectorSize() != psx.CD_SECTOR_SIZE {
		common.LogWarn(common.WarnCueNotRaw, track.Number, track.DataType)
		return "", 0, common.FormatErrorString(common.ErrFailedToOpenImage, "track %d is %s", track.Number, track.DataType)
	}
	file := sheet.FileOf(track)
	if file == nil {
		return "", 0, common.FormatErrorString(common.ErrFailedToOpenImage, "track %d has no FILE", track.Number)
	}

	offset, _ := track.ByteOffset()
	common.LogInfo(common.InfoDataTrackOffset, track.Number, offset)
	return filepath.Join(filepath.Dir(cuePath), file.Name), offset, nil
}

// cleanPath turns a user supplied image path into its absolute form
func cleanPath(p string) string {
	return path.Join(append([]string{"/"}, iso9660.SplitPath(p)...)...)
}

// List writes the records of the directory at dirPath, as a table or as YAML
func (p *CDProcessor) List(imagePath, dirPath string, w io.Writer, asYAML bool) error {
	img, err := p.openImage(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	block, err := img.disc.ResolveDirectory(dirPath, p.cfg.Strict)
	if err != nil {
		return err
	}
	if block == nil {
		common.LogWarn(common.WarnDirectoryNotFound, dirPath)
		return nil
	}

	dir := cleanPath(dirPath)
	var entries []CDFileEntry
	for i := range block.Records {
		rec := &block.Records[i]
		if rec.IsSpecial() {
			continue
		}
		entries = append(entries, newCDFileEntry(len(entries), path.Join(dir, rec.Name()), rec))
	}

	return writeEntries(w, entries, asYAML)
}

// Stat resolves the file at filePath and writes its entry as YAML
func (p *CDProcessor) Stat(imagePath, filePath string, w io.Writer) error {
	img, err := p.openImage(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	rec, err := img.disc.ResolveFile(filePath, p.cfg.Strict)
	if err != nil {
		return err
	}
	if rec == nil {
		common.LogWarn(common.WarnFileNotFound, filePath)
		return nil
	}

	entry := newCDFileEntry(0, cleanPath(filePath), rec)
	if rec.DataLength > 0 {
		if entry.Header, err = img.sectorHeader(rec.ExtentLBA); err != nil {
			return common.FormatError(common.ErrFailedToReadSector, err)
		}
	}
	return encodeYAML(w, entry)
}

// sectorHeader reads the address, mode and sub-mode stored in the raw
// sector at lba
func (img *cdImage) sectorHeader(lba uint32) (*SectorHeader, error) {
	reader := psx.NewCDReader(img.file, img.disc.LBAToOffset(0), img.size)
	if err := reader.SeekToSector(int64(lba)); err != nil {
		return nil, err
	}
	sector, err := reader.ReadSector()
	if err != nil {
		return nil, err
	}
	m, s, f, err := reader.SectorMSF()
	if err != nil {
		return nil, err
	}
	return &SectorHeader{
		MSF:     fmt.Sprintf("%02d:%02d:%02d", m, s, f),
		Mode:    sector.Mode,
		Submode: psx.SubmodeNames(sector.SubHeader[2]),
	}, nil
}

// Extract copies the single file at filePath out of the image
func (p *CDProcessor) Extract(imagePath, filePath, outPath string) error {
	img, err := p.openImage(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	rec, err := img.disc.ResolveFile(filePath, p.cfg.Strict)
	if err != nil {
		return err
	}
	if rec == nil {
		common.LogWarn(common.WarnFileNotFound, filePath)
		return nil
	}

	return p.extractFile(img, rec, outPath)
}

// Dump extracts every file of the image below outputDir, keeping the
// directory structure. A failing file does not stop the others; all
// failures are returned together.
func (p *CDProcessor) Dump(imagePath, outputDir string) error {
	img, err := p.openImage(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	if err := p.fs.MkdirAll(outputDir, 0755); err != nil {
		return common.FormatError(common.ErrFailedToCreateDirectory, err)
	}

	var errs error
	id, extracted := 0, 0
	for _, entry := range img.disc.Entries() {
		rec := entry.Record
		name := rec.Name()
		if !common.IsValidFileName(name) {
			common.LogWarn(common.WarnSkippingInvalidName, name, entry.Dir)
			continue
		}

		fullPath := entry.Path()
		target := filepath.Join(outputDir, filepath.FromSlash(fullPath))
		if rec.IsDir() {
			if err := p.fs.MkdirAll(target, 0755); err != nil {
				errs = multierr.Append(errs, common.FormatError(common.ErrFailedToCreateDirectory, err))
			}
			continue
		}

		common.LogDebug(common.DebugFileEntry, id, common.LBAToMSF(rec.ExtentLBA), rec.ExtentLBA, rec.DataLength, fullPath)
		id++

		if err := p.extractFile(img, rec, target); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", fullPath, err))
			continue
		}
		extracted++
	}

	common.LogInfo(common.InfoFilesExtracted, extracted, outputDir)
	return errs
}

func (p *CDProcessor) extractFile(img *cdImage, rec *iso9660.DirectoryRecord, target string) (err error) {
	if err := p.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return common.FormatError(common.ErrFailedToCreateDirectory, err)
	}

	out, err := p.fs.Create(target)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	if err := img.disc.ExtractFile(img.file, img.size, rec, out); err != nil {
		return common.FormatError(common.ErrFailedToExtractFile, err)
	}
	return nil
}

// Roundtrip loads an image, saves it over a copy at outPath and checks
// that the copy matches the source byte for byte.
func (p *CDProcessor) Roundtrip(imagePath, outPath string) (err error) {
	img, err := p.openImage(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	out, err := p.fs.Create(outPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	if _, err := img.file.Seek(0, io.SeekStart); err != nil {
		return common.FormatError(common.ErrFailedToSaveImage, err)
	}
	if _, err := io.Copy(out, img.file); err != nil {
		return common.FormatError(common.ErrFailedToSaveImage, err)
	}
	if err := img.disc.Save(out); err != nil {
		return common.FormatError(common.ErrFailedToSaveImage, err)
	}

	if _, err := img.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return err
	}
	offset, same, err := firstDifference(img.file, out)
	if err != nil {
		return err
	}
	if !same {
		common.LogWarn(common.WarnRoundTripMismatch, outPath, offset)
		return common.FormatErrorString(common.ErrRoundTripMismatch, "first difference at byte offset %d", offset)
	}

	common.LogInfo(common.InfoRoundTripMatches, imagePath, img.size)
	return nil
}

// firstDifference returns the offset of the first byte where a and b
// differ, and whether both streams are identical.
func firstDifference(a, b io.Reader) (int64, bool, error) {
	bufA := make([]byte, 64*1024)
	bufB := make([]byte, 64*1024)
	offset := int64(0)
	for {
		na, errA := io.ReadFull(a, bufA)
		nb, errB := io.ReadFull(b, bufB)

		n := min(na, nb)
		for i := 0; i < n; i++ {
			if bufA[i] != bufB[i] {
				return offset + int64(i), false, nil
			}
		}
		offset += int64(n)
		if na != nb {
			return offset, false, nil
		}

		endA, err := streamEnd(errA)
		if err != nil {
			return offset, false, err
		}
		endB, err := streamEnd(errB)
		if err != nil {
			return offset, false, err
		}
		if endA || endB {
			return offset, endA == endB, nil
		}
	}
}

func streamEnd(err error) (bool, error) {
	switch err {
	case nil:
		return false, nil
	case io.EOF, io.ErrUnexpectedEOF:
		return true, nil
	default:
		return false, err
	}
}

// Wrap converts a cooked 2048-byte sector image into raw sectors
func (p *CDProcessor) Wrap(cookedPath, rawPath string) (err error) {
	in, err := p.fs.Open(cookedPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToOpenImage, err)
	}
	defer in.Close()

	out, err := p.fs.Create(rawPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	sectors, err := psx.Wrap(in, out)
	if err != nil {
		return common.FormatError(common.ErrFailedToWrapImage, err)
	}

	common.LogInfo(common.InfoSectorsWrapped, sectors, rawPath)
	return nil
}

// Unwrap copies the user data of every raw sector into a cooked image
func (p *CDProcessor) Unwrap(rawPath, cookedPath string) (err error) {
	in, err := p.fs.Open(rawPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToOpenImage, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return common.FormatError(common.ErrFailedToOpenImage, err)
	}

	out, err := p.fs.Create(cookedPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	sectors, err := psx.Unwrap(in, info.Size(), out)
	if err != nil {
		return common.FormatError(common.ErrFailedToUnwrapImage, err)
	}

	common.LogInfo(common.InfoSectorsUnwrapped, sectors, cookedPath)
	return nil
}

// Build creates a single-file ISO 9660 volume holding the file at
// filePath and writes it as raw sectors to rawPath.
func (p *CDProcessor) Build(filePath, rawPath string) (err error) {
	data, err := afero.ReadFile(p.fs, filePath)
	if err != nil {
		return common.FormatError(common.ErrFailedToBuildImage, err)
	}
	if _, err := common.SafeInt64ToUint32(int64(len(data))); err != nil {
		return common.FormatError(common.ErrFailedToBuildImage, err)
	}

	name := strings.ToUpper(filepath.Base(filePath))
	var cooked bytes.Buffer
	if err := iso9660wrap.WriteBuffer(&cooked, data, name); err != nil {
		return common.FormatError(common.ErrFailedToBuildImage, err)
	}

	out, err := p.fs.Create(rawPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	sectors, err := psx.Wrap(&cooked, out)
	if err != nil {
		return common.FormatError(common.ErrFailedToWrapImage, err)
	}

	common.LogInfo(common.InfoImageBuilt, rawPath, name, len(data))
	common.LogInfo(common.InfoSectorsWrapped, sectors, rawPath)
	return nil
}

func writeEntries(w io.Writer, entries []CDFileEntry, asYAML bool) error {
	if asYAML {
		return encodeYAML(w, entries)
	}

	fmt.Fprintf(w, "ID   | MSF      | LBA    | Size       | Path\n")
	fmt.Fprintf(w, "-----|----------|--------|------------|--------------------------------------------------\n")
	for _, e := range entries {
		name := e.Path
		if e.Dir {
			name += "/"
		}
		fmt.Fprintf(w, "%04X | %s | %6d | %10d | %s\n", e.ID, e.MSF, e.LBA, e.Size, name)
	}
	return nil
}

func encodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return common.FormatError(common.ErrFailedToEncodeYAML, err)
	}
	return enc.Close()
}
