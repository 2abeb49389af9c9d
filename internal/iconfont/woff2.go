package iconfont

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

const (
	woff2HeaderSize = 48

	woff2ExplicitTag     = 63
	woff2TransformShift  = 6
	woff2NullTransform   = 0
	woff2GlyfLocaNullXfm = 3
)

// woff2KnownTags maps a directory flag index to its table tag.
var woff2KnownTags = [...]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

func woff2TagIndex(tag string) int {
	for i, t := range woff2KnownTags {
		if t == tag {
			return i
		}
	}
	return woff2ExplicitTag
}

// glyf and loca signal "untransformed" with version 3, every other table with 0.
func woff2NullVersion(tag string) byte {
	if tag == "glyf" || tag == "loca" {
		return woff2GlyfLocaNullXfm
	}
	return woff2NullTransform
}

// encodeWOFF2 wraps an SFNT as WOFF2 with every table untransformed and the
// concatenated table data in a single brotli stream.
func encodeWOFF2(sfnt []byte) ([]byte, error) {
	version, tables, err := parseSFNT(sfnt)
	if err != nil {
		return nil, err
	}

	var dir writer
	var raw bytes.Buffer
	for _, t := range tables {
		idx := woff2TagIndex(t.tag)
		dir.u8(byte(idx) | woff2NullVersion(t.tag)<<woff2TransformShift)
		if idx == woff2ExplicitTag {
			dir.tag(t.tag)
		}
		dir.bytes(appendUIntBase128(nil, uint32(len(t.data))))
		raw.Write(t.data)
	}

	var compressed bytes.Buffer
	bw := brotli.NewWriterLevel(&compressed, brotli.BestCompression)
	if _, err := bw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}

	total := align4(woff2HeaderSize + len(dir.b) + compressed.Len())

	var w writer
	w.bytes(magicWOFF2)
	w.u32(version)
	w.u32(uint32(total))
	w.u16(uint16(len(tables)))
	w.u16(0) // reserved
	w.u32(uint32(len(sfnt)))
	w.u32(uint32(compressed.Len()))
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.u32(0) // metaOffset
	w.u32(0) // metaLength
	w.u32(0) // metaOrigLength
	w.u32(0) // privOffset
	w.u32(0) // privLength
	w.bytes(dir.b)
	w.bytes(compressed.Bytes())
	w.pad4()
	return w.b, nil
}

var errTransformed = errors.New("transformed woff2 tables are not supported")

func decodeWOFF2(data []byte) ([]byte, error) {
	r := &reader{b: data}
	r.take(4) // signature
	version := r.u32()
	length := r.u32()
	numTables := int(r.u16())
	r.u16() // reserved
	r.u32() // totalSfntSize
	compLength := int(r.u32())
	r.take(woff2HeaderSize - 24)
	if r.err != nil {
		return nil, fmt.Errorf("woff2 header: %w", r.err)
	}
	if int(length) != len(data) {
		return nil, fmt.Errorf("woff2 length %d does not match data size %d", length, len(data))
	}
	if version == 0x74746366 { // 'ttcf'
		return nil, fmt.Errorf("woff2 font collections are not supported")
	}

	type entry struct {
		tag    string
		length int
	}
	entries := make([]entry, 0, numTables)
	total := 0
	for i := 0; i < numTables; i++ {
		flags := r.u8()
		idx := int(flags & 0x3F)
		xfm := flags >> woff2TransformShift

		var tag string
		if idx == woff2ExplicitTag {
			tag = r.tag()
		} else if idx < len(woff2KnownTags) {
			tag = woff2KnownTags[idx]
		} else {
			return nil, fmt.Errorf("woff2 table %d: invalid tag index %d", i, idx)
		}
		origLength, err := readUIntBase128(r)
		if err != nil {
			return nil, fmt.Errorf("woff2 table %q: %w", tag, err)
		}
		if xfm != woff2NullVersion(tag) {
			return nil, fmt.Errorf("woff2 table %q: %w", tag, errTransformed)
		}
		entries = append(entries, entry{tag: tag, length: int(origLength)})
		total += int(origLength)
	}

	stream := r.take(compLength)
	if r.err != nil {
		return nil, fmt.Errorf("woff2 data: %w", r.err)
	}
	raw := make([]byte, total)
	if _, err := io.ReadFull(brotli.NewReader(bytes.NewReader(stream)), raw); err != nil {
		return nil, fmt.Errorf("woff2 brotli: %w", err)
	}

	tables := make([]table, len(entries))
	off := 0
	for i, e := range entries {
		tables[i] = table{tag: e.tag, data: raw[off : off+e.length]}
		off += e.length
	}
	return assembleSFNT(version, tables), nil
}

// appendUIntBase128 appends v as a WOFF2 UIntBase128: big-endian groups of
// seven bits, high bit set on every byte but the last.
func appendUIntBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	n := len(tmp)
	for {
		n--
		tmp[n] = byte(v & 0x7F)
		if n < len(tmp)-1 {
			tmp[n] |= 0x80
		}
		v >>= 7
		if v == 0 {
			break
		}
	}
	return append(b, tmp[n:]...)
}

func readUIntBase128(r *reader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b := r.u8()
		if r.err != nil {
			return 0, r.err
		}
		if i == 0 && b == 0x80 {
			return 0, fmt.Errorf("UIntBase128 has a leading zero")
		}
		if v&0xFE000000 != 0 {
			return 0, fmt.Errorf("UIntBase128 overflows 32 bits")
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("UIntBase128 longer than 5 bytes")
}
