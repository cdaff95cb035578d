package binser

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Reader decodes values from a seekable stream.
type Reader struct {
	rs  io.ReadSeeker
	pos int64
	buf [4]byte
}

// NewReader creates a decoding serializer positioned at the current offset of rs.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current stream position")
	}
	return &Reader{rs: rs, pos: pos}, nil
}

func (r *Reader) Reading() bool { return true }

func (r *Reader) Pos() int64 { return r.pos }

func (r *Reader) Goto(pos int64) error {
	if pos == r.pos {
		return nil
	}
	if _, err := r.rs.Seek(pos, io.SeekStart); err != nil {
		return errors.Wrapf(err, "failed to seek to 0x%X", pos)
	}
	r.pos = pos
	return nil
}

func (r *Reader) read(b []byte) error {
	n, err := io.ReadFull(r.rs, b)
	r.pos += int64(n)
	if err != nil {
		return errors.Wrapf(err, "failed to read %d bytes at 0x%X", len(b), r.pos-int64(n))
	}
	return nil
}

func (r *Reader) Uint8(v *uint8) error {
	if err := r.read(r.buf[:1]); err != nil {
		return err
	}
	*v = r.buf[0]
	return nil
}

func (r *Reader) Uint16(v *uint16) error {
	if err := r.read(r.buf[:2]); err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint16(r.buf[:2])
	return nil
}

func (r *Reader) Uint32(v *uint32) error {
	if err := r.read(r.buf[:4]); err != nil {
		return err
	}
	*v = binary.LittleEndian.Uint32(r.buf[:4])
	return nil
}

func (r *Reader) Uint16BE(v *uint16) error {
	if err := r.read(r.buf[:2]); err != nil {
		return err
	}
	*v = binary.BigEndian.Uint16(r.buf[:2])
	return nil
}

func (r *Reader) Uint32BE(v *uint32) error {
	if err := r.read(r.buf[:4]); err != nil {
		return err
	}
	*v = binary.BigEndian.Uint32(r.buf[:4])
	return nil
}

func (r *Reader) Bytes(v *[]byte, n int) error {
	b := make([]byte, n)
	if err := r.read(b); err != nil {
		return err
	}
	*v = b
	return nil
}

func (r *Reader) FixedString(v *string, n int) error {
	b := make([]byte, n)
	if err := r.read(b); err != nil {
		return err
	}
	*v = string(b)
	return nil
}

func (r *Reader) Magic(expected []byte) error {
	start := r.pos
	b := make([]byte, len(expected))
	if err := r.read(b); err != nil {
		return err
	}
	if !bytes.Equal(b, expected) {
		return errors.Wrapf(ErrMagicMismatch, "at 0x%X: got %q, want %q", start, b, expected)
	}
	return nil
}

func (r *Reader) Padding(n int) error {
	return r.Goto(r.pos + int64(n))
}

func (r *Reader) Struct(v interface{}) error {
	start := r.pos
	if err := struc.Unpack(r.rs, v); err != nil {
		return errors.Wrapf(err, "failed to unpack struct at 0x%X", start)
	}
	pos, err := r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "failed to get current stream position")
	}
	r.pos = pos
	return nil
}
