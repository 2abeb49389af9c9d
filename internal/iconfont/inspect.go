package iconfont

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Summary describes a parsed font file.
type Summary struct {
	Format     Format
	Family     string
	UnitsPerEm int
	NumGlyphs  int
	Glyphs     []GlyphSummary
}

// GlyphSummary reports one mapped rune, in font units with y up.
type GlyphSummary struct {
	Rune                   rune
	Index                  int
	Advance                int
	XMin, YMin, XMax, YMax int
}

// Inspect parses a ttf, woff or woff2 file and reports the glyphs mapped to
// runes. With no runes, printable ASCII is scanned.
func Inspect(data []byte, runes ...rune) (*Summary, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	f, err := sfnt.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return nil, fmt.Errorf("read family name: %w", err)
	}
	upem := int(f.UnitsPerEm())
	s := &Summary{
		Format:     format,
		Family:     family,
		UnitsPerEm: upem,
		NumGlyphs:  f.NumGlyphs(),
	}

	if len(runes) == 0 {
		for r := rune(0x20); r < 0x7F; r++ {
			runes = append(runes, r)
		}
	}

	// at ppem == unitsPerEm one 26.6 pixel is one font unit
	ppem := fixed.I(upem)
	for _, r := range runes {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph index for %q: %w", r, err)
		}
		if idx == 0 {
			continue
		}
		b, adv, err := f.GlyphBounds(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph bounds for %q: %w", r, err)
		}
		s.Glyphs = append(s.Glyphs, GlyphSummary{
			Rune:    r,
			Index:   int(idx),
			Advance: adv.Round(),
			XMin:    b.Min.X.Round(),
			YMin:    -b.Max.Y.Round(),
			XMax:    b.Max.X.Round(),
			YMax:    -b.Min.Y.Round(),
		})
	}
	return s, nil
}

// Verify checks that data is a font built from spec: same family, glyph
// count, and for every mapped glyph the same advance and bounds.
func Verify(data []byte, spec Spec) error {
	built, err := Build(spec)
	if err != nil {
		return err
	}

	var runes []rune
	for _, g := range built.glyphs {
		if g.CodePoint != 0 {
			runes = append(runes, g.CodePoint)
		}
	}
	sum, err := Inspect(data, runes...)
	if err != nil {
		return err
	}

	var problems []string
	if sum.Family != spec.FamilyName {
		problems = append(problems, fmt.Sprintf("family %q, want %q", sum.Family, spec.FamilyName))
	}
	if sum.NumGlyphs != built.NumGlyphs() {
		problems = append(problems, fmt.Sprintf("%d glyphs, want %d", sum.NumGlyphs, built.NumGlyphs()))
	}

	got := make(map[rune]GlyphSummary, len(sum.Glyphs))
	for _, g := range sum.Glyphs {
		got[g.Rune] = g
	}
	for _, g := range built.glyphs {
		if g.CodePoint == 0 {
			continue
		}
		gs, ok := got[g.CodePoint]
		if !ok {
			problems = append(problems, fmt.Sprintf("U+%04X is not mapped", g.CodePoint))
			continue
		}
		want := GlyphSummary{
			Rune:    g.CodePoint,
			Index:   built.GlyphIndex(g.CodePoint),
			Advance: int(g.Advance),
			XMin:    int(g.bounds.xMin),
			YMin:    int(g.bounds.yMin),
			XMax:    int(g.bounds.xMax),
			YMax:    int(g.bounds.yMax),
		}
		if gs != want {
			problems = append(problems, fmt.Sprintf("U+%04X: got %+v, want %+v", g.CodePoint, gs, want))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("font verification failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
