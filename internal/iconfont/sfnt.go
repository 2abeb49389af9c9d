package iconfont

import (
	"fmt"
	"math/bits"
	"sort"
)

const (
	sfntVersionTrueType = 0x00010000

	sfntHeaderSize   = 12
	sfntDirEntrySize = 16

	headChecksumOffset = 8
	checksumMagic      = 0xB1B0AFBA
)

type table struct {
	tag  string
	data []byte
}

// assembleSFNT writes the offset table, table directory and table data in
// tag order, then patches head.checksumAdjustment.
func assembleSFNT(version uint32, tables []table) []byte {
	sorted := append([]table(nil), tables...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })

	// checksumAdjustment is computed with the field zeroed
	for i := range sorted {
		if sorted[i].tag == "head" && len(sorted[i].data) >= headChecksumOffset+4 {
			head := append([]byte(nil), sorted[i].data...)
			clear(head[headChecksumOffset : headChecksumOffset+4])
			sorted[i].data = head
		}
	}

	numTables := len(sorted)
	entrySelector := 0
	if numTables > 0 {
		entrySelector = bits.Len(uint(numTables)) - 1
	}
	searchRange := (1 << entrySelector) * 16

	var w writer
	w.u32(version)
	w.u16(uint16(numTables))
	w.u16(uint16(searchRange))
	w.u16(uint16(entrySelector))
	w.u16(uint16(numTables*16 - searchRange))

	offset := sfntHeaderSize + sfntDirEntrySize*numTables
	headOffset := -1
	for _, t := range sorted {
		w.tag(t.tag)
		w.u32(checksum(t.data))
		w.u32(uint32(offset))
		w.u32(uint32(len(t.data)))
		if t.tag == "head" {
			headOffset = offset
		}
		offset += align4(len(t.data))
	}
	for _, t := range sorted {
		w.bytes(t.data)
		w.pad4()
	}

	if headOffset >= 0 {
		adj := checksumMagic - checksum(w.b)
		pos := headOffset + headChecksumOffset
		w.b[pos] = byte(adj >> 24)
		w.b[pos+1] = byte(adj >> 16)
		w.b[pos+2] = byte(adj >> 8)
		w.b[pos+3] = byte(adj)
	}
	return w.b
}

// parseSFNT splits an SFNT file into its version and tables, in directory
// order. Table data aliases data.
func parseSFNT(data []byte) (uint32, []table, error) {
	r := &reader{b: data}
	version := r.u32()
	numTables := int(r.u16())
	r.take(6)
	if r.err != nil {
		return 0, nil, r.err
	}
	if version != sfntVersionTrueType && version != 0x4F54544F && version != 0x74727565 {
		return 0, nil, fmt.Errorf("not an SFNT font (version 0x%08X)", version)
	}

	tables := make([]table, 0, numTables)
	for i := 0; i < numTables; i++ {
		tag := r.tag()
		r.u32() // checksum
		off := int(r.u32())
		length := int(r.u32())
		if r.err != nil {
			return 0, nil, r.err
		}
		if off < 0 || length < 0 || off+length > len(data) {
			return 0, nil, fmt.Errorf("table %q: %w", tag, errTruncated)
		}
		tables = append(tables, table{tag: tag, data: data[off : off+length]})
	}
	return version, tables, nil
}
