// Package archive selects the build outputs that belong in a developer archive.
//
// Candidates come from a descriptor file (Chromium's FILES.cfg format, or the
// same data as YAML/JSON). Each descriptor is filtered by archive marker,
// build type, target architecture and an exclusion list.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/silver2dream/build-utils/internal/pyliteral"
)

// FilesVar is the variable a descriptor file must define.
const FilesVar = "FILES"

// Descriptor describes one candidate file. Absent keys keep their zero
// value; the Has* fields record presence where it matters to filtering.
type Descriptor struct {
	Filename  string
	BuildType []string
	Arch      []string
	Archive   string

	HasArchive   bool
	HasBuildType bool
	HasArch      bool
}

// LoadFile reads descriptors from path. Files named *.yaml, *.yml or *.json
// are decoded as YAML; anything else is parsed as a Python literal file.
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes descriptors from src; name selects the format by extension
// and labels errors.
func Parse(src []byte, name string) ([]Descriptor, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return parseYAML(src, name)
	}
	return parsePython(src, name)
}

func parsePython(src []byte, name string) ([]Descriptor, error) {
	m, err := pyliteral.Parse(name, src)
	if err != nil {
		return nil, err
	}
	files, ok := m.Lookup(FilesVar)
	if !ok {
		return nil, fmt.Errorf("%s: %s is not defined", name, FilesVar)
	}
	return fromValue(files, name)
}

func parseYAML(src []byte, name string) ([]Descriptor, error) {
	var root any
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if m, ok := root.(map[string]any); ok {
		files, ok := m[FilesVar]
		if !ok {
			return nil, fmt.Errorf("%s: %s is not defined", name, FilesVar)
		}
		root = files
	}
	return fromValue(root, name)
}

// fromValue converts the generic decoded FILES value into descriptors.
// Both decoders produce []any of map[string]any.
func fromValue(v any, name string) ([]Descriptor, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %s must be a list, got %s", name, FilesVar, typeName(v))
	}

	descs := make([]Descriptor, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %s[%d] must be a mapping, got %s", name, FilesVar, i, typeName(item))
		}
		d, err := descriptorFromMap(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", name, FilesVar, i, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func descriptorFromMap(entry map[string]any) (Descriptor, error) {
	var d Descriptor

	v, ok := entry["filename"]
	if !ok {
		return d, fmt.Errorf("filename is required")
	}
	name, ok := v.(string)
	if !ok {
		return d, fmt.Errorf("filename must be a string, got %s", typeName(v))
	}
	if name == "" {
		return d, fmt.Errorf("filename is required")
	}
	d.Filename = name

	if v, ok := entry["archive"]; ok {
		d.HasArchive = true
		if s, ok := v.(string); ok {
			d.Archive = s
		}
	}

	if v, ok := entry["buildtype"]; ok {
		tags, err := stringList(v)
		if err != nil {
			return d, fmt.Errorf("buildtype: %w", err)
		}
		d.HasBuildType = true
		d.BuildType = tags
	}

	if v, ok := entry["arch"]; ok {
		arches, err := stringList(v)
		if err != nil {
			return d, fmt.Errorf("arch: %w", err)
		}
		d.HasArch = true
		d.Arch = arches
	}

	return d, nil
}

// stringList accepts a single string or a list/set of strings. None is an
// empty list, so the entry matches no build type or arch.
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %s", typeName(item))
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a string or list of strings, got %s", typeName(v))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
