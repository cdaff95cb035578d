package iso9660

import (
	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/pkg/errors"
)

// Structural errors abort a load. Lookup errors are reported according to
// the caller's strict flag.
var (
	// ErrMalformedMagic is returned when a volume descriptor does not carry "CD001".
	ErrMalformedMagic = binser.ErrMagicMismatch

	ErrUnsupportedVersion      = errors.New("unsupported volume descriptor version")
	ErrUnsupportedDescriptor   = errors.New("unsupported volume descriptor type code")
	ErrUnimplementedDescriptor = errors.New("unimplemented volume descriptor type")
	ErrMissingPrimary          = errors.New("missing primary volume descriptor")
	ErrMalformedRecord         = errors.New("malformed directory record")
	ErrMisalignedDirectories   = errors.New("directory blocks not aligned with path table")

	ErrPathSegmentNotFound    = errors.New("path segment not found")
	ErrDirectoryBlockNotFound = errors.New("directory block not found")
	ErrFileNotFound           = errors.New("file not found")
	ErrInvalidPath            = errors.New("invalid path")
)
