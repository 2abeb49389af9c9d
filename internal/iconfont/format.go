package iconfont

import (
	"bytes"
	"fmt"
	"strings"
)

// Format is a font container format.
type Format string

const (
	FormatWOFF2 Format = "woff2"
	FormatWOFF  Format = "woff"
	FormatTTF   Format = "ttf"
)

// DefaultFormat is what the web-font tests load.
const DefaultFormat = FormatWOFF2

// Formats lists the supported formats.
var Formats = []Format{FormatWOFF2, FormatWOFF, FormatTTF}

// ParseFormat accepts a format name, case-insensitively. An empty string
// selects DefaultFormat.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font format %q (expected woff2, woff or ttf)", s)
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string {
	return string(f)
}

var (
	magicWOFF2 = []byte("wOF2")
	magicWOFF  = []byte("wOFF")
)

// DetectFormat identifies data by its signature.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, magicWOFF2):
		return FormatWOFF2, nil
	case bytes.HasPrefix(data, magicWOFF):
		return FormatWOFF, nil
	case len(data) >= 4 && (bytes.HasPrefix(data, []byte{0, 1, 0, 0}) || bytes.HasPrefix(data, []byte("true"))):
		return FormatTTF, nil
	}
	return "", fmt.Errorf("unrecognized font data")
}

// Encode serializes font in format.
func Encode(font *Font, format Format) ([]byte, error) {
	sfnt := font.SFNT()
	switch format {
	case FormatTTF:
		return sfnt, nil
	case FormatWOFF:
		return encodeWOFF(sfnt)
	case FormatWOFF2:
		return encodeWOFF2(sfnt)
	}
	return nil, fmt.Errorf("unknown font format %q", format)
}

// Decode recovers the SFNT bytes from a ttf, woff or woff2 file.
func Decode(data []byte) ([]byte, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatWOFF:
		return decodeWOFF(data)
	case FormatWOFF2:
		return decodeWOFF2(data)
	}
	if _, _, err := parseSFNT(data); err != nil {
		return nil, err
	}
	return data, nil
}
