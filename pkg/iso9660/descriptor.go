package iso9660

import (
	"fmt"

	"github.com/hansbonini/isobin/pkg/binser"
	"github.com/pkg/errors"
)

// DescriptorType is the volume descriptor type code.
type DescriptorType uint8

const (
	TypeBootRecord    DescriptorType = 0
	TypePrimary       DescriptorType = 1
	TypeSupplementary DescriptorType = 2
	TypePartition     DescriptorType = 3
	TypeTerminator    DescriptorType = 0xFF
)

func (t DescriptorType) String() string {
	switch t {
	case TypeBootRecord:
		return "boot record"
	case TypePrimary:
		return "primary"
	case TypeSupplementary:
		return "supplementary"
	case TypePartition:
		return "partition"
	case TypeTerminator:
		return "terminator"
	default:
		return fmt.Sprintf("type 0x%02X", uint8(t))
	}
}

// StandardIdentifier is the magic every volume descriptor carries.
var StandardIdentifier = []byte("CD001")

const descriptorVersion = 1

// VolumeDescriptor is one 2048-byte block of the volume descriptor set.
// The body is selected by Type: only the primary variant carries data, the
// terminator has none and the remaining codes are rejected.
type VolumeDescriptor struct {
	Type    DescriptorType
	Version uint8
	Primary *PrimaryVolumeDescriptor
}

func (d *VolumeDescriptor) Serialize(s binser.Serializer) error {
	code := uint8(d.Type)
	if err := s.Uint8(&code); err != nil {
		return err
	}
	d.Type = DescriptorType(code)

	if err := s.Magic(StandardIdentifier); err != nil {
		return err
	}

	if err := s.Uint8(&d.Version); err != nil {
		return err
	}
	if d.Version != descriptorVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "version %d", d.Version)
	}

	switch d.Type {
	case TypePrimary:
		if d.Primary == nil {
			d.Primary = &PrimaryVolumeDescriptor{}
		}
		return d.Primary.Serialize(s)
	case TypeTerminator:
		return nil
	case TypeBootRecord, TypeSupplementary, TypePartition:
		return errors.Wrap(ErrUnimplementedDescriptor, d.Type.String())
	default:
		return errors.Wrap(ErrUnsupportedDescriptor, d.Type.String())
	}
}

// IsTerminator reports whether d ends the descriptor set.
func (d *VolumeDescriptor) IsTerminator() bool {
	return d.Type == TypeTerminator
}
