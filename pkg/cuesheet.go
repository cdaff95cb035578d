// Package pkg provides the image operations behind the isobin commands.
// This file contains the cue sheet processor used by the cue command.
package pkg

import (
	"io"

	"github.com/hansbonini/isobin/pkg/common"
	"github.com/hansbonini/isobin/pkg/cue"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// CueProcessor handles cue sheet operations (show/fmt)
type CueProcessor struct {
	fs afero.Fs
}

// NewCueProcessor creates a new cue sheet processor
func NewCueProcessor(fs afero.Fs) *CueProcessor {
	return &CueProcessor{fs: fs}
}

// Read parses the cue sheet at cuePath
func (p *CueProcessor) Read(cuePath string) (*cue.Sheet, error) {
	file, err := p.fs.Open(cuePath)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToParseCueSheet, err)
	}
	defer file.Close()

	sheet, err := cue.Parse(file)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToParseCueSheet, err)
	}
	return sheet, nil
}

// Show writes the parsed sheet as YAML
func (p *CueProcessor) Show(cuePath string, w io.Writer) error {
	sheet, err := p.Read(cuePath)
	if err != nil {
		return err
	}
	return encodeYAML(w, sheet)
}

// Format rewrites the sheet in canonical form to outPath, or to w when
// outPath is empty.
func (p *CueProcessor) Format(cuePath, outPath string, w io.Writer) (err error) {
	sheet, err := p.Read(cuePath)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = sheet.WriteTo(w)
		return err
	}

	out, err := p.fs.Create(outPath)
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputFile, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = sheet.WriteTo(out)
	return err
}
