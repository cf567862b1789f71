/*
Package codec implements the protobuf wire format for persisted models,
messages and transactions.

Types implement Marshal and Unmarshal by hand using an Encoder and a
Decoder. Fields equal to their zero value are omitted, exactly as proto3
does, and unknown fields are skipped when decoding, so that a record
written by a newer version can be read by an older one.

	func (m *Account) Marshal() ([]byte, error) {
		e := codec.NewEncoder()
		e.Bytes(1, m.Owner)
		if err := e.Message(2, m.Coins); err != nil {
			return nil, err
		}
		return e.Result(), nil
	}
*/
package codec

import (
	"github.com/cavelabs/cave/errors"
	"github.com/gogo/protobuf/proto"
)

// Wire types as defined by the protobuf encoding.
const (
	WireVarint  = 0
	WireFixed64 = 1
	WireBytes   = 2
	WireFixed32 = 5
)

// Marshaller is implemented by every type that can be nested in another
// message.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Encoder serializes fields in the order they are written.
type Encoder struct {
	buf *proto.Buffer
}

// NewEncoder returns an encoder with an empty buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: proto.NewBuffer(nil)}
}

func (e *Encoder) key(field int, wire int) {
	// Encoding into an in-memory buffer never fails.
	_ = e.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Bytes writes a length delimited field. Empty values are omitted.
func (e *Encoder) Bytes(field int, b []byte) {
	if len(b) == 0 {
		return
	}
	e.key(field, WireBytes)
	_ = e.buf.EncodeRawBytes(b)
}

// String writes a length delimited field. Empty values are omitted.
func (e *Encoder) String(field int, s string) {
	if s == "" {
		return
	}
	e.key(field, WireBytes)
	_ = e.buf.EncodeStringBytes(s)
}

// Uint64 writes a varint field. Zero is omitted.
func (e *Encoder) Uint64(field int, v uint64) {
	if v == 0 {
		return
	}
	e.key(field, WireVarint)
	_ = e.buf.EncodeVarint(v)
}

// Int64 writes a varint field using the two's complement representation,
// as protobuf int64 does. Zero is omitted.
func (e *Encoder) Int64(field int, v int64) {
	e.Uint64(field, uint64(v))
}

// Bool writes a varint field. False is omitted.
func (e *Encoder) Bool(field int, v bool) {
	if v {
		e.Uint64(field, 1)
	}
}

// Message writes a nested message as a length delimited field. The field
// is written even if the serialized message is empty, so that presence is
// preserved. Pass only non nil values.
func (e *Encoder) Message(field int, m Marshaller) error {
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "field %d", field)
	}
	e.key(field, WireBytes)
	_ = e.buf.EncodeRawBytes(raw)
	return nil
}

// Result returns the serialized content.
func (e *Encoder) Result() []byte {
	return e.buf.Bytes()
}

// Decoder reads fields one at a time from a serialized message.
//
//	d := codec.NewDecoder(raw)
//	for d.Next() {
//		switch d.Field() {
//		case 1:
//			m.Owner = d.Bytes()
//		default:
//			d.Skip()
//		}
//	}
//	if err := d.Err(); err != nil { ... }
type Decoder struct {
	raw   []byte
	off   int
	field int
	wire  int
	err   error
}

// NewDecoder returns a decoder reading from the given buffer.
func NewDecoder(raw []byte) *Decoder {
	return &Decoder{raw: raw}
}

// Next reads the next field key. It returns false once all data was
// consumed or a malformed key was found. Check Err afterwards.
func (d *Decoder) Next() bool {
	if d.err != nil || d.off >= len(d.raw) {
		return false
	}
	key, err := d.varint()
	if err != nil {
		d.err = err
		return false
	}
	d.field = int(key >> 3)
	d.wire = int(key & 0x7)
	if d.field <= 0 {
		d.err = errors.Wrapf(errors.ErrInput, "invalid field number %d", d.field)
		return false
	}
	return true
}

// Field returns the number of the field read by the last call to Next.
func (d *Decoder) Field() int {
	return d.field
}

// Fail stops decoding with the given error. A nil error is ignored.
func (d *Decoder) Fail(err error) {
	if err != nil && d.err == nil {
		d.err = err
	}
}

// Err returns the first error encountered.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) varint() (uint64, error) {
	v, n := proto.DecodeVarint(d.raw[d.off:])
	if n == 0 {
		return 0, errors.Wrap(errors.ErrInput, "malformed varint")
	}
	d.off += n
	return v, nil
}

func (d *Decoder) expect(wire int) error {
	if d.wire != wire {
		return errors.Wrapf(errors.ErrInput, "field %d: wire type %d, want %d", d.field, d.wire, wire)
	}
	return nil
}

// Bytes reads a length delimited value. The returned slice is a copy.
func (d *Decoder) Bytes() []byte {
	if err := d.expect(WireBytes); err != nil {
		d.Fail(err)
		return nil
	}
	size, err := d.varint()
	if err != nil {
		d.Fail(err)
		return nil
	}
	if size > uint64(len(d.raw)-d.off) {
		d.Fail(errors.Wrapf(errors.ErrInput, "field %d: truncated", d.field))
		return nil
	}
	end := d.off + int(size)
	out := make([]byte, size)
	copy(out, d.raw[d.off:end])
	d.off = end
	return out
}

// Text reads a length delimited value as a string.
func (d *Decoder) Text() string {
	return string(d.Bytes())
}

// Uint64 reads a varint value.
func (d *Decoder) Uint64() uint64 {
	if err := d.expect(WireVarint); err != nil {
		d.Fail(err)
		return 0
	}
	v, err := d.varint()
	d.Fail(err)
	return v
}

// Int64 reads a varint value written by Encoder.Int64.
func (d *Decoder) Int64() int64 {
	return int64(d.Uint64())
}

// Uint32 reads a varint value, failing if it does not fit.
func (d *Decoder) Uint32() uint32 {
	v := d.Uint64()
	if v > 1<<32-1 {
		d.Fail(errors.Wrapf(errors.ErrOverflow, "field %d: %d does not fit uint32", d.field, v))
		return 0
	}
	return uint32(v)
}

// Bool reads a varint value as a boolean.
func (d *Decoder) Bool() bool {
	return d.Uint64() != 0
}

// Message reads a nested message into the given destination.
func (d *Decoder) Message(dest interface{ Unmarshal([]byte) error }) {
	raw := d.Bytes()
	if d.err != nil {
		return
	}
	if err := dest.Unmarshal(raw); err != nil {
		d.Fail(errors.Wrapf(err, "field %d", d.field))
	}
}

// Skip discards the value of the current field.
func (d *Decoder) Skip() {
	var size int
	switch d.wire {
	case WireVarint:
		_, err := d.varint()
		d.Fail(err)
		return
	case WireBytes:
		d.Bytes()
		return
	case WireFixed64:
		size = 8
	case WireFixed32:
		size = 4
	default:
		d.Fail(errors.Wrapf(errors.ErrInput, "field %d: unsupported wire type %d", d.field, d.wire))
		return
	}
	if len(d.raw)-d.off < size {
		d.Fail(errors.Wrapf(errors.ErrInput, "field %d: truncated", d.field))
		return
	}
	d.off += size
}
