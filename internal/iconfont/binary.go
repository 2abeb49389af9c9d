package iconfont

import (
	"encoding/binary"
	"errors"
)

var errTruncated = errors.New("truncated font data")

// writer appends big-endian values, the byte order of every font format here.
type writer struct {
	b []byte
}

func (w *writer) u8(v uint8)        { w.b = append(w.b, v) }
func (w *writer) u16(v uint16)      { w.b = binary.BigEndian.AppendUint16(w.b, v) }
func (w *writer) i16(v int16)       { w.u16(uint16(v)) }
func (w *writer) u32(v uint32)      { w.b = binary.BigEndian.AppendUint32(w.b, v) }
func (w *writer) i64(v int64)       { w.b = binary.BigEndian.AppendUint64(w.b, uint64(v)) }
func (w *writer) bytes(p []byte)    { w.b = append(w.b, p...) }
func (w *writer) tag(t string)      { w.b = append(w.b, t[:4]...) }
func (w *writer) fixed(whole int16) { w.u32(uint32(uint16(whole)) << 16) }

// pad4 zero-pads to a 4-byte boundary.
func (w *writer) pad4() {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
}

// reader consumes big-endian values and records the first bounds error.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = errTruncated
		return nil
	}
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *reader) u8() uint8 {
	if p := r.take(1); p != nil {
		return p[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if p := r.take(2); p != nil {
		return binary.BigEndian.Uint16(p)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if p := r.take(4); p != nil {
		return binary.BigEndian.Uint32(p)
	}
	return 0
}

func (r *reader) tag() string {
	if p := r.take(4); p != nil {
		return string(p)
	}
	return ""
}

// checksum is the OpenType table checksum: the sum of big-endian uint32
// words, with the tail zero-padded.
func checksum(data []byte) uint32 {
	var sum uint32
	for len(data) >= 4 {
		sum += binary.BigEndian.Uint32(data)
		data = data[4:]
	}
	if len(data) > 0 {
		var tail [4]byte
		copy(tail[:], data)
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}

func align4(n int) int {
	return (n + 3) &^ 3
}
