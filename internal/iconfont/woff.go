package iconfont

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	woffHeaderSize   = 44
	woffDirEntrySize = 20
)

// encodeWOFF wraps an SFNT as WOFF 1.0. Each table is zlib-compressed and
// stored raw when compression does not make it smaller.
func encodeWOFF(sfnt []byte) ([]byte, error) {
	version, tables, err := parseSFNT(sfnt)
	if err != nil {
		return nil, err
	}

	type entry struct {
		table
		stored []byte
	}
	entries := make([]entry, len(tables))
	for i, t := range tables {
		stored, err := deflate(t.data)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", t.tag, err)
		}
		if len(stored) >= len(t.data) {
			stored = t.data
		}
		entries[i] = entry{table: t, stored: stored}
	}

	totalSFNT := sfntHeaderSize + sfntDirEntrySize*len(tables)
	for _, t := range tables {
		totalSFNT += align4(len(t.data))
	}

	var body writer
	offset := woffHeaderSize + woffDirEntrySize*len(entries)
	var dir writer
	for _, e := range entries {
		dir.tag(e.tag)
		dir.u32(uint32(offset + len(body.b)))
		dir.u32(uint32(len(e.stored)))
		dir.u32(uint32(len(e.data)))
		dir.u32(checksum(e.data))
		body.bytes(e.stored)
		body.pad4()
	}

	var w writer
	w.bytes(magicWOFF)
	w.u32(version)
	w.u32(uint32(woffHeaderSize + len(dir.b) + len(body.b)))
	w.u16(uint16(len(entries)))
	w.u16(0) // reserved
	w.u32(uint32(totalSFNT))
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.u32(0) // metaOffset
	w.u32(0) // metaLength
	w.u32(0) // metaOrigLength
	w.u32(0) // privOffset
	w.u32(0) // privLength
	w.bytes(dir.b)
	w.bytes(body.b)
	return w.b, nil
}

func decodeWOFF(data []byte) ([]byte, error) {
	r := &reader{b: data}
	r.take(4) // signature
	version := r.u32()
	length := r.u32()
	numTables := int(r.u16())
	r.take(woffHeaderSize - 14)
	if r.err != nil {
		return nil, fmt.Errorf("woff header: %w", r.err)
	}
	if int(length) != len(data) {
		return nil, fmt.Errorf("woff length %d does not match data size %d", length, len(data))
	}

	tables := make([]table, 0, numTables)
	for i := 0; i < numTables; i++ {
		tag := r.tag()
		off := int(r.u32())
		compLength := int(r.u32())
		origLength := int(r.u32())
		r.u32() // origChecksum
		if r.err != nil {
			return nil, fmt.Errorf("woff table directory: %w", r.err)
		}
		if off+compLength > len(data) || compLength > origLength {
			return nil, fmt.Errorf("woff table %q: %w", tag, errTruncated)
		}

		stored := data[off : off+compLength]
		if compLength == origLength {
			tables = append(tables, table{tag: tag, data: stored})
			continue
		}
		raw, err := inflate(stored, origLength)
		if err != nil {
			return nil, fmt.Errorf("woff table %q: %w", tag, err)
		}
		tables = append(tables, table{tag: tag, data: raw})
	}
	return assembleSFNT(version, tables), nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
