package iso9660

import (
	"io"

	"github.com/hansbonini/isobin/pkg/psx"
	"github.com/pkg/errors"
)

// ExtractFile copies the data of rec from the image in src to w. src must
// be the same image the Disc was loaded from; size is its length in bytes,
// or zero when unknown.
func (d *Disc) ExtractFile(src io.ReaderAt, size int64, rec *DirectoryRecord, w io.Writer) error {
	if rec.IsDir() {
		return errors.Wrapf(ErrFileNotFound, "%q is a directory", rec.Name())
	}
	reader := psx.NewCDReader(src, d.opts.BaseOffset, size)
	if err := reader.ExtractFile(rec.ExtentLBA, rec.DataLength, w); err != nil {
		return errors.Wrapf(err, "failed to extract %q", rec.Name())
	}
	return nil
}
