// Package iconfont builds the small icon font used by web-font screenshot tests.
//
// The font is described by a Spec (straight-line glyph outlines plus
// metrics), compiled into a TrueType SFNT and wrapped as WOFF2, WOFF or
// left as TTF. Output is deterministic: the same Spec always yields the
// same bytes.
package iconfont

import (
	"fmt"
	"sort"
	"time"
)

// Point is a glyph outline point in font units (y up).
type Point struct {
	X, Y int16
}

// Glyph is one glyph: a name, its code point (0 for unmapped glyphs such
// as .notdef), its advance width and closed straight-line contours.
type Glyph struct {
	Name      string
	CodePoint rune
	Advance   uint16
	Contours  [][]Point
}

// Spec describes a font to build.
type Spec struct {
	FamilyName string
	StyleName  string
	Version    string
	UnitsPerEm uint16
	Ascender   int16
	Descender  int16
	// Timestamp is written as the head table's created and modified dates.
	Timestamp time.Time
	// Glyphs[0] must be the unmapped .notdef placeholder.
	Glyphs []Glyph
}

// Default font parameters.
const (
	DefaultFamily     = "pwtest-iconfont"
	DefaultUnitsPerEm = 1000
)

// Rect returns a clockwise rectangular contour.
func Rect(x0, y0, x1, y1 int16) []Point {
	return []Point{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
}

// DefaultSpec is the test icon font: .notdef and identical squares on A and B.
func DefaultSpec() Spec {
	square := [][]Point{Rect(50, 0, 550, 500)}
	return Spec{
		FamilyName: DefaultFamily,
		StyleName:  "Regular",
		Version:    "Version 1.000",
		UnitsPerEm: DefaultUnitsPerEm,
		Ascender:   800,
		Descender:  -200,
		Timestamp:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Glyphs: []Glyph{
			{Name: ".notdef", Advance: 600},
			{Name: "A", CodePoint: 'A', Advance: 600, Contours: square},
			{Name: "B", CodePoint: 'B', Advance: 600, Contours: square},
		},
	}
}

// maxCoord keeps every delta between two points representable as int16.
const maxCoord = 16383

type bounds struct {
	xMin, yMin, xMax, yMax int16
}

func (b bounds) union(o bounds) bounds {
	return bounds{
		xMin: min(b.xMin, o.xMin),
		yMin: min(b.yMin, o.yMin),
		xMax: max(b.xMax, o.xMax),
		yMax: max(b.yMax, o.yMax),
	}
}

type compiledGlyph struct {
	Glyph
	bounds    bounds
	numPoints int
	empty     bool
}

// Font is a validated Spec ready to be serialized.
type Font struct {
	spec   Spec
	glyphs []compiledGlyph
	bounds bounds
	cmap   []cmapEntry
}

type cmapEntry struct {
	code  rune
	glyph uint16
}

// Build validates spec and computes the derived metrics.
func Build(spec Spec) (*Font, error) {
	if spec.FamilyName == "" {
		return nil, fmt.Errorf("font family name is required")
	}
	if spec.StyleName == "" {
		spec.StyleName = "Regular"
	}
	if spec.Version == "" {
		spec.Version = "Version 1.000"
	}
	if spec.UnitsPerEm < 16 || spec.UnitsPerEm > 16384 {
		return nil, fmt.Errorf("unitsPerEm %d out of range [16, 16384]", spec.UnitsPerEm)
	}
	if len(spec.Glyphs) == 0 || spec.Glyphs[0].CodePoint != 0 {
		return nil, fmt.Errorf("glyph 0 must be an unmapped placeholder")
	}
	if len(spec.Glyphs) > 0xFFFF {
		return nil, fmt.Errorf("too many glyphs: %d", len(spec.Glyphs))
	}

	f := &Font{spec: spec}
	seenNames := make(map[string]bool)
	seenCodes := make(map[rune]string)
	first := true

	for i, g := range spec.Glyphs {
		if g.Name == "" {
			return nil, fmt.Errorf("glyph %d has no name", i)
		}
		if seenNames[g.Name] {
			return nil, fmt.Errorf("duplicate glyph name %q", g.Name)
		}
		seenNames[g.Name] = true

		if g.CodePoint != 0 {
			if g.CodePoint < 0 || g.CodePoint >= 0xFFFF {
				return nil, fmt.Errorf("glyph %q: code point U+%04X outside the Basic Multilingual Plane", g.Name, g.CodePoint)
			}
			if prev, ok := seenCodes[g.CodePoint]; ok {
				return nil, fmt.Errorf("glyph %q: code point U+%04X already mapped to %q", g.Name, g.CodePoint, prev)
			}
			seenCodes[g.CodePoint] = g.Name
			f.cmap = append(f.cmap, cmapEntry{code: g.CodePoint, glyph: uint16(i)})
		}

		cg, err := compileGlyph(g)
		if err != nil {
			return nil, err
		}
		if !cg.empty {
			if first {
				f.bounds = cg.bounds
				first = false
			} else {
				f.bounds = f.bounds.union(cg.bounds)
			}
		}
		f.glyphs = append(f.glyphs, cg)
	}

	sort.Slice(f.cmap, func(i, j int) bool { return f.cmap[i].code < f.cmap[j].code })
	return f, nil
}

func compileGlyph(g Glyph) (compiledGlyph, error) {
	cg := compiledGlyph{Glyph: g, empty: len(g.Contours) == 0}
	if len(g.Contours) > 0x7FFF {
		return cg, fmt.Errorf("glyph %q: too many contours", g.Name)
	}

	first := true
	for ci, contour := range g.Contours {
		if len(contour) < 3 {
			return cg, fmt.Errorf("glyph %q: contour %d has %d points, need at least 3", g.Name, ci, len(contour))
		}
		for _, p := range contour {
			if p.X < -maxCoord || p.X > maxCoord || p.Y < -maxCoord || p.Y > maxCoord {
				return cg, fmt.Errorf("glyph %q: point (%d, %d) out of range", g.Name, p.X, p.Y)
			}
			pb := bounds{p.X, p.Y, p.X, p.Y}
			if first {
				cg.bounds = pb
				first = false
			} else {
				cg.bounds = cg.bounds.union(pb)
			}
		}
		cg.numPoints += len(contour)
	}
	if cg.numPoints > 0xFFFF {
		return cg, fmt.Errorf("glyph %q: too many points", g.Name)
	}
	return cg, nil
}

// Spec returns the (defaulted) spec the font was built from.
func (f *Font) Spec() Spec {
	return f.spec
}

// NumGlyphs returns the glyph count, including .notdef.
func (f *Font) NumGlyphs() int {
	return len(f.glyphs)
}

// GlyphIndex returns the glyph mapped to r, or 0 when r is unmapped.
func (f *Font) GlyphIndex(r rune) int {
	for _, e := range f.cmap {
		if e.code == r {
			return int(e.glyph)
		}
	}
	return 0
}

// SFNT serializes the font as a TrueType file.
func (f *Font) SFNT() []byte {
	glyf, loca := f.glyfTable()
	tables := []table{
		{tag: "OS/2", data: f.os2Table()},
		{tag: "cmap", data: f.cmapTable()},
		{tag: "glyf", data: glyf},
		{tag: "head", data: f.headTable()},
		{tag: "hhea", data: f.hheaTable()},
		{tag: "hmtx", data: f.hmtxTable()},
		{tag: "loca", data: loca},
		{tag: "maxp", data: f.maxpTable()},
		{tag: "name", data: f.nameTable()},
		{tag: "post", data: f.postTable()},
	}
	return assembleSFNT(sfntVersionTrueType, tables)
}
