package iconfont

import (
	"math/bits"
	"unicode/utf16"
)

// seconds between the LONGDATETIME epoch (1904-01-01) and the Unix epoch
const macEpochOffset = 2082844800

const (
	onCurvePoint = 0x01

	headFlags = 0x000B // baseline at y=0, lsb at x=0, integer scaling
	macStyle  = 0

	os2FSSelectionRegular = 0x0040
)

func (f *Font) headTable() []byte {
	ts := f.spec.Timestamp.Unix() + macEpochOffset

	var w writer
	w.u16(1) // majorVersion
	w.u16(0) // minorVersion
	w.fixed(1)
	w.u32(0) // checksumAdjustment, filled in by assembleSFNT
	w.u32(0x5F0F3CF5)
	w.u16(headFlags)
	w.u16(f.spec.UnitsPerEm)
	w.i64(ts) // created
	w.i64(ts) // modified
	w.i16(f.bounds.xMin)
	w.i16(f.bounds.yMin)
	w.i16(f.bounds.xMax)
	w.i16(f.bounds.yMax)
	w.u16(macStyle)
	w.u16(8) // lowestRecPPEM
	w.i16(2) // fontDirectionHint
	w.i16(1) // indexToLocFormat: long offsets
	w.i16(0) // glyphDataFormat
	return w.b
}

func (f *Font) hheaTable() []byte {
	var (
		advanceMax uint16
		minLSB     int16
		minRSB     int16
		maxExtent  int16
		first      = true
	)
	for _, g := range f.glyphs {
		advanceMax = max(advanceMax, g.Advance)
		if g.empty {
			continue
		}
		lsb := g.bounds.xMin
		rsb := int16(int(g.Advance) - int(g.bounds.xMax))
		extent := g.bounds.xMax
		if first {
			minLSB, minRSB, maxExtent = lsb, rsb, extent
			first = false
			continue
		}
		minLSB = min(minLSB, lsb)
		minRSB = min(minRSB, rsb)
		maxExtent = max(maxExtent, extent)
	}

	var w writer
	w.fixed(1)
	w.i16(f.spec.Ascender)
	w.i16(f.spec.Descender)
	w.i16(0) // lineGap
	w.u16(advanceMax)
	w.i16(minLSB)
	w.i16(minRSB)
	w.i16(maxExtent)
	w.i16(1) // caretSlopeRise
	w.i16(0) // caretSlopeRun
	w.i16(0) // caretOffset
	for i := 0; i < 4; i++ {
		w.i16(0) // reserved
	}
	w.i16(0) // metricDataFormat
	w.u16(uint16(len(f.glyphs)))
	return w.b
}

func (f *Font) hmtxTable() []byte {
	var w writer
	for _, g := range f.glyphs {
		w.u16(g.Advance)
		if g.empty {
			w.i16(0)
		} else {
			w.i16(g.bounds.xMin)
		}
	}
	return w.b
}

func (f *Font) maxpTable() []byte {
	var maxPoints, maxContours int
	for _, g := range f.glyphs {
		maxPoints = max(maxPoints, g.numPoints)
		maxContours = max(maxContours, len(g.Contours))
	}

	var w writer
	w.fixed(1)
	w.u16(uint16(len(f.glyphs)))
	w.u16(uint16(maxPoints))
	w.u16(uint16(maxContours))
	w.u16(0) // maxCompositePoints
	w.u16(0) // maxCompositeContours
	w.u16(2) // maxZones
	w.u16(0) // maxTwilightPoints
	w.u16(0) // maxStorage
	w.u16(0) // maxFunctionDefs
	w.u16(0) // maxInstructionDefs
	w.u16(0) // maxStackElements
	w.u16(0) // maxSizeOfInstructions
	w.u16(0) // maxComponentElements
	w.u16(0) // maxComponentDepth
	return w.b
}

// glyfTable returns the glyf table and its long-format loca table.
func (f *Font) glyfTable() (glyf, loca []byte) {
	var g, l writer
	for _, cg := range f.glyphs {
		l.u32(uint32(len(g.b)))
		if cg.empty {
			continue
		}

		g.i16(int16(len(cg.Contours)))
		g.i16(cg.bounds.xMin)
		g.i16(cg.bounds.yMin)
		g.i16(cg.bounds.xMax)
		g.i16(cg.bounds.yMax)

		end := -1
		for _, c := range cg.Contours {
			end += len(c)
			g.u16(uint16(end))
		}
		g.u16(0) // instructionLength

		for _, c := range cg.Contours {
			for range c {
				g.u8(onCurvePoint)
			}
		}
		var prev int16
		for _, c := range cg.Contours {
			for _, p := range c {
				g.i16(p.X - prev)
				prev = p.X
			}
		}
		prev = 0
		for _, c := range cg.Contours {
			for _, p := range c {
				g.i16(p.Y - prev)
				prev = p.Y
			}
		}
		g.pad4()
	}
	l.u32(uint32(len(g.b)))
	return g.b, l.b
}

// cmapTable writes a single Windows Unicode BMP (3, 1) format 4 subtable.
func (f *Font) cmapTable() []byte {
	type segment struct {
		start, end uint16
		delta      uint16
	}

	var segs []segment
	for _, e := range f.cmap {
		code, gid := uint16(e.code), e.glyph
		if n := len(segs); n > 0 {
			last := &segs[n-1]
			if code == last.end+1 && gid-code == last.delta {
				last.end = code
				continue
			}
		}
		segs = append(segs, segment{start: code, end: code, delta: gid - code})
	}
	// required terminating segment
	segs = append(segs, segment{start: 0xFFFF, end: 0xFFFF, delta: 1})

	segCount := len(segs)
	entrySelector := bits.Len(uint(segCount)) - 1
	searchRange := 2 * (1 << entrySelector)

	var sub writer
	sub.u16(4)
	sub.u16(uint16(16 + 8*segCount))
	sub.u16(0) // language
	sub.u16(uint16(2 * segCount))
	sub.u16(uint16(searchRange))
	sub.u16(uint16(entrySelector))
	sub.u16(uint16(2*segCount - searchRange))
	for _, s := range segs {
		sub.u16(s.end)
	}
	sub.u16(0) // reservedPad
	for _, s := range segs {
		sub.u16(s.start)
	}
	for _, s := range segs {
		sub.u16(s.delta)
	}
	for range segs {
		sub.u16(0) // idRangeOffset
	}

	var w writer
	w.u16(0) // version
	w.u16(1) // numTables
	w.u16(3) // platformID: Windows
	w.u16(1) // encodingID: Unicode BMP
	w.u32(12)
	w.bytes(sub.b)
	return w.b
}

// Name IDs written to the name table.
const (
	nameIDFamily         = 1
	nameIDSubfamily      = 2
	nameIDUniqueID       = 3
	nameIDFullName       = 4
	nameIDVersion        = 5
	nameIDPostScriptName = 6
)

func (f *Font) names() []string {
	s := f.spec
	ps := make([]rune, 0, len(s.FamilyName))
	for _, r := range s.FamilyName {
		if r > ' ' && r < 0x7F && r != '[' && r != ']' && r != '(' && r != ')' &&
			r != '{' && r != '}' && r != '<' && r != '>' && r != '/' && r != '%' {
			ps = append(ps, r)
		}
	}
	return []string{
		nameIDFamily:         s.FamilyName,
		nameIDSubfamily:      s.StyleName,
		nameIDUniqueID:       s.FamilyName + " " + s.StyleName + ";" + s.Version,
		nameIDFullName:       s.FamilyName + " " + s.StyleName,
		nameIDVersion:        s.Version,
		nameIDPostScriptName: string(ps) + "-" + s.StyleName,
	}
}

func (f *Font) nameTable() []byte {
	names := f.names()
	const count = nameIDPostScriptName - nameIDFamily + 1

	var storage writer
	var records writer
	for id := nameIDFamily; id <= nameIDPostScriptName; id++ {
		offset := len(storage.b)
		for _, u := range utf16.Encode([]rune(names[id])) {
			storage.u16(u)
		}
		records.u16(3)      // platformID: Windows
		records.u16(1)      // encodingID: Unicode BMP
		records.u16(0x0409) // languageID: en-US
		records.u16(uint16(id))
		records.u16(uint16(len(storage.b) - offset))
		records.u16(uint16(offset))
	}

	var w writer
	w.u16(0) // format
	w.u16(count)
	w.u16(uint16(6 + 12*count))
	w.bytes(records.b)
	w.bytes(storage.b)
	return w.b
}

func (f *Font) postTable() []byte {
	upem := int(f.spec.UnitsPerEm)

	var w writer
	w.u32(0x00030000) // version 3: no glyph names
	w.u32(0)          // italicAngle
	w.i16(int16(-upem * 75 / 1000))
	w.i16(int16(upem * 50 / 1000))
	w.u32(0) // isFixedPitch
	w.u32(0) // minMemType42
	w.u32(0) // maxMemType42
	w.u32(0) // minMemType1
	w.u32(0) // maxMemType1
	return w.b
}

func (f *Font) os2Table() []byte {
	upem := int(f.spec.UnitsPerEm)
	scale := func(v int) int16 { return int16(upem * v / 1000) }

	var advSum, advCount int
	for _, g := range f.glyphs {
		if g.Advance > 0 {
			advSum += int(g.Advance)
			advCount++
		}
	}
	avg := 0
	if advCount > 0 {
		avg = advSum / advCount
	}

	var unicodeRange [4]uint32
	first, last := uint16(0xFFFF), uint16(0)
	for _, e := range f.cmap {
		code := uint16(e.code)
		first = min(first, code)
		last = max(last, code)
		switch {
		case e.code < 0x80:
			unicodeRange[0] |= 1 << 0 // Basic Latin
		case e.code >= 0xE000 && e.code <= 0xF8FF:
			unicodeRange[1] |= 1 << (60 - 32) // Private Use Area
		}
	}
	if len(f.cmap) == 0 {
		first = 0
	}

	winAscent := max(int(f.spec.Ascender), int(f.bounds.yMax))
	winDescent := max(-int(f.spec.Descender), -int(f.bounds.yMin))

	var w writer
	w.u16(4) // version
	w.i16(int16(avg))
	w.u16(400) // usWeightClass: normal
	w.u16(5)   // usWidthClass: medium
	w.u16(0)   // fsType: installable
	w.i16(scale(650))
	w.i16(scale(600))
	w.i16(0)
	w.i16(scale(75))
	w.i16(scale(650))
	w.i16(scale(600))
	w.i16(0)
	w.i16(scale(350))
	w.i16(scale(50))  // yStrikeoutSize
	w.i16(scale(250)) // yStrikeoutPosition
	w.i16(0)          // sFamilyClass
	w.bytes(make([]byte, 10))
	for _, r := range unicodeRange {
		w.u32(r)
	}
	w.tag("UKWN")
	w.u16(os2FSSelectionRegular)
	w.u16(first)
	w.u16(last)
	w.i16(f.spec.Ascender)
	w.i16(f.spec.Descender)
	w.i16(0) // sTypoLineGap
	w.u16(uint16(winAscent))
	w.u16(uint16(winDescent))
	w.u32(1) // ulCodePageRange1: Latin 1
	w.u32(0)
	w.i16(0)    // sxHeight
	w.i16(0)    // sCapHeight
	w.u16(0)    // usDefaultChar
	w.u16(0x20) // usBreakChar
	w.u16(0)    // usMaxContext
	return w.b
}
