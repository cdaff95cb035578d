package binser

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Writer encodes values into a seekable stream.
type Writer struct {
	ws  io.WriteSeeker
	pos int64
	buf [4]byte
}

// NewWriter creates an encoding serializer positioned at the current offset of ws.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current stream position")
	}
	return &Writer{ws: ws, pos: pos}, nil
}

func (w *Writer) Reading() bool { return false }

func (w *Writer) Pos() int64 { return w.pos }

func (w *Writer) Goto(pos int64) error {
	if pos == w.pos {
		return nil
	}
	if _, err := w.ws.Seek(pos, io.SeekStart); err != nil {
		return errors.Wrapf(err, "failed to seek to 0x%X", pos)
	}
	w.pos = pos
	return nil
}

func (w *Writer) write(b []byte) error {
	n, err := w.ws.Write(b)
	w.pos += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %d bytes at 0x%X", len(b), w.pos-int64(n))
	}
	return nil
}

func (w *Writer) Uint8(v *uint8) error {
	w.buf[0] = *v
	return w.write(w.buf[:1])
}

func (w *Writer) Uint16(v *uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], *v)
	return w.write(w.buf[:2])
}

func (w *Writer) Uint32(v *uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], *v)
	return w.write(w.buf[:4])
}

func (w *Writer) Uint16BE(v *uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], *v)
	return w.write(w.buf[:2])
}

func (w *Writer) Uint32BE(v *uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], *v)
	return w.write(w.buf[:4])
}

func (w *Writer) Bytes(v *[]byte, n int) error {
	if len(*v) > n {
		return errors.Errorf("byte array of length %d does not fit in %d bytes", len(*v), n)
	}
	b := make([]byte, n)
	copy(b, *v)
	return w.write(b)
}

func (w *Writer) FixedString(v *string, n int) error {
	if len(*v) > n {
		return errors.Errorf("string %q does not fit in %d bytes", *v, n)
	}
	b := make([]byte, n)
	copy(b, *v)
	return w.write(b)
}

func (w *Writer) Magic(expected []byte) error {
	return w.write(expected)
}

func (w *Writer) Padding(n int) error {
	return w.write(make([]byte, n))
}

func (w *Writer) Struct(v interface{}) error {
	start := w.pos
	if err := struc.Pack(w.ws, v); err != nil {
		return errors.Wrapf(err, "failed to pack struct at 0x%X", start)
	}
	pos, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "failed to get current stream position")
	}
	w.pos = pos
	return nil
}
