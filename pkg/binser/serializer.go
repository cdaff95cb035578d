// Package binser provides a small bidirectional binary serialization engine.
// A single Serialize method on a type both decodes and encodes it: the
// Serializer passed in decides the direction. Reads and writes are
// positioned, so structures that live at absolute offsets (sectors,
// extents) can jump around the stream with Goto.
package binser

import (
	"github.com/pkg/errors"
)

// ErrMagicMismatch is returned when a magic constant does not match.
var ErrMagicMismatch = errors.New("magic constant mismatch")

// Serializer is the contract every serializable type is written against.
// Multi-byte integers are little endian unless the method says otherwise.
type Serializer interface {
	// Reading reports whether the serializer decodes (true) or encodes.
	Reading() bool
	// Pos returns the current absolute stream position.
	Pos() int64
	// Goto moves to an absolute stream position.
	Goto(pos int64) error

	Uint8(v *uint8) error
	Uint16(v *uint16) error
	Uint32(v *uint32) error
	Uint16BE(v *uint16) error
	Uint32BE(v *uint32) error

	// Bytes serializes a fixed array of n bytes. On write a shorter slice
	// is padded with zeros.
	Bytes(v *[]byte, n int) error
	// FixedString serializes a string stored in exactly n bytes.
	FixedString(v *string, n int) error
	// Magic verifies (read) or emits (write) a constant byte sequence.
	Magic(expected []byte) error
	// Padding skips (read) or zero-fills (write) n bytes.
	Padding(n int) error
	// Struct serializes a fixed-layout struct using struc tags.
	Struct(v interface{}) error
}

// Serializable is implemented by every type the engine can (de)serialize.
type Serializable interface {
	Serialize(s Serializer) error
}

// Ptr constrains a type parameter to a pointer to T implementing Serializable.
type Ptr[T any] interface {
	*T
	Serializable
}

// Object serializes a single nested value.
func Object[T any, PT Ptr[T]](s Serializer, v *T) error {
	return PT(v).Serialize(s)
}

// Array serializes exactly n elements. When reading, items is replaced.
func Array[T any, PT Ptr[T]](s Serializer, items []T, n int) ([]T, error) {
	if s.Reading() {
		items = make([]T, n)
	} else if len(items) != n {
		return nil, errors.Errorf("array length %d does not match count %d", len(items), n)
	}
	for i := range items {
		if err := PT(&items[i]).Serialize(s); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return items, nil
}

// ArrayUntil serializes a sequence whose end is signaled by its content
// rather than by a count.
//
// When reading, elements are decoded until stop holds on the last decoded
// element. If last is nil that element is kept in the result; otherwise it
// is treated as a terminator and dropped. more, when non-nil, is a
// secondary bound checked before each element: once it returns false the
// sequence ends without a terminator.
//
// When writing, items are emitted in order, followed by last() when last is
// non-nil and more (if any) still allows it.
func ArrayUntil[T any, PT Ptr[T]](s Serializer, items []T, stop func(*T) bool, last func() T, more func() bool) ([]T, error) {
	if !s.Reading() {
		for i := range items {
			if err := PT(&items[i]).Serialize(s); err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
		}
		if last != nil && (more == nil || more()) {
			term := last()
			if err := PT(&term).Serialize(s); err != nil {
				return nil, errors.Wrap(err, "terminator")
			}
		}
		return items, nil
	}

	var out []T
	for more == nil || more() {
		var item T
		if err := PT(&item).Serialize(s); err != nil {
			return nil, errors.Wrapf(err, "element %d", len(out))
		}
		if stop(&item) {
			if last == nil {
				out = append(out, item)
			}
			break
		}
		out = append(out, item)
	}
	return out, nil
}
