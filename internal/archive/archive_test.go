package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleCfg = `
FILES = [
  {'filename': 'chrome', 'buildtype': ['dev', 'official']},
  {'filename': 'chrome-wrapper', 'buildtype': ['official']},
  {'filename': 'no-buildtype'},
  {'filename': 'chrome_sandbox', 'buildtype': ['dev']},
  {'filename': 'resources.pak', 'buildtype': ['dev'], 'archive': 'chrome-linux.zip'},
  {'filename': 'a.dll', 'buildtype': ['dev'], 'arch': '64bit'},
  {'filename': 'b.dll', 'buildtype': ['dev'], 'arch': '32bit'},
  {'filename': 'chrome.dll.pdb', 'buildtype': ['dev']},
  {'filename': 'both.dll', 'buildtype': ('dev',), 'arch': ['32bit', '64bit']},
]
`

func TestSelect_FilesCfg(t *testing.T) {
	descs, err := Parse([]byte(sampleCfg), "FILES.cfg")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		arch Arch
		want []string
	}{
		{Arch64, []string{"chrome", "a.dll", "chrome.dll.pdb", "both.dll"}},
		{Arch32, []string{"chrome", "b.dll", "chrome.dll.pdb", "both.dll"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.arch), func(t *testing.T) {
			got := NewSelector().Select(tt.arch, descs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Select mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	s := NewSelector()
	tests := []struct {
		name string
		d    Descriptor
		want Reason
	}{
		{
			name: "dev file without arch",
			d:    Descriptor{Filename: "chrome", BuildType: []string{"dev"}, HasBuildType: true},
			want: Selected,
		},
		{
			name: "archived entry",
			d:    Descriptor{Filename: "x", BuildType: []string{"dev"}, HasBuildType: true, HasArchive: true},
			want: AlreadyArchived,
		},
		{
			name: "archived with empty archive value",
			d:    Descriptor{Filename: "x", BuildType: []string{"dev"}, HasBuildType: true, HasArchive: true, Archive: ""},
			want: AlreadyArchived,
		},
		{
			name: "no buildtype",
			d:    Descriptor{Filename: "x"},
			want: NotDevBuild,
		},
		{
			name: "buildtype without dev",
			d:    Descriptor{Filename: "x", BuildType: []string{"official"}, HasBuildType: true},
			want: NotDevBuild,
		},
		{
			name: "dev tag must match exactly",
			d:    Descriptor{Filename: "x", BuildType: []string{"development"}, HasBuildType: true},
			want: NotDevBuild,
		},
		{
			name: "arch mismatch",
			d:    Descriptor{Filename: "x", BuildType: []string{"dev"}, HasBuildType: true, Arch: []string{"32bit"}, HasArch: true},
			want: ArchMismatch,
		},
		{
			name: "arch declared empty",
			d:    Descriptor{Filename: "x", BuildType: []string{"dev"}, HasBuildType: true, HasArch: true},
			want: ArchMismatch,
		},
		{
			name: "exact exclusion",
			d:    Descriptor{Filename: "setup.exe", BuildType: []string{"dev"}, HasBuildType: true},
			want: Excluded,
		},
		{
			name: "wildcard exclusion is not expanded",
			d:    Descriptor{Filename: "chrome.pdb", BuildType: []string{"dev"}, HasBuildType: true},
			want: Selected,
		},
		{
			name: "literal wildcard filename",
			d:    Descriptor{Filename: "*.pdb", BuildType: []string{"dev"}, HasBuildType: true},
			want: Excluded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Explain(Arch64, tt.d); got != tt.want {
				t.Errorf("Explain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelect_ArchMatch(t *testing.T) {
	descs := []Descriptor{{Filename: "a.dll", BuildType: []string{"dev"}, HasBuildType: true, Arch: []string{"64bit"}, HasArch: true}}
	got := NewSelector().Select(Arch64, descs)
	if diff := cmp.Diff([]string{"a.dll"}, got); diff != "" {
		t.Errorf("Select mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_NoneValues(t *testing.T) {
	src := `
FILES = [
  {'filename': 'no-arch', 'buildtype': ['dev'], 'arch': None},
  {'filename': 'no-buildtype', 'buildtype': None},
  {'filename': 'chrome', 'buildtype': ['dev']},
]
`
	descs, err := Parse([]byte(src), "FILES.cfg")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	s := NewSelector()
	wantReasons := []Reason{ArchMismatch, NotDevBuild, Selected}
	for i, d := range descs {
		if got := s.Explain(Arch64, d); got != wantReasons[i] {
			t.Errorf("Explain(%s) = %v, want %v", d.Filename, got, wantReasons[i])
		}
	}
	if diff := cmp.Diff([]string{"chrome"}, s.Select(Arch64, descs)); diff != "" {
		t.Errorf("Select mismatch (-want +got):\n%s", diff)
	}
}

func TestSelector_GlobMatching(t *testing.T) {
	d := Descriptor{Filename: "chrome.pdb", BuildType: []string{"dev"}, HasBuildType: true}

	if got := NewSelector(WithGlobMatching(true)).Explain(Arch64, d); got != Excluded {
		t.Errorf("glob mode: Explain() = %v, want %v", got, Excluded)
	}
	if got := NewSelector(WithGlobMatching(false)).Explain(Arch64, d); got != Selected {
		t.Errorf("exact mode: Explain() = %v, want %v", got, Selected)
	}

	nested := Descriptor{Filename: "swiftshader/libGLESv2.so", BuildType: []string{"dev"}, HasBuildType: true}
	s := NewSelector(WithGlobMatching(true), WithExclusions([]string{"swiftshader/**"}))
	if got := s.Explain(Arch64, nested); got != Excluded {
		t.Errorf("doublestar pattern: Explain() = %v, want %v", got, Excluded)
	}
}

func TestSelector_WithExclusions(t *testing.T) {
	s := NewSelector(WithExclusions([]string{"chrome"}))

	excl := s.Exclusions()
	if len(excl) != len(DefaultExclusions)+1 || excl[len(excl)-1] != "chrome" {
		t.Errorf("Exclusions() = %v", excl)
	}
	d := Descriptor{Filename: "chrome", BuildType: []string{"dev"}, HasBuildType: true}
	if got := s.Explain(Arch32, d); got != Excluded {
		t.Errorf("Explain() = %v, want %v", got, Excluded)
	}

	// the defaults slice must not be modified through a selector
	excl[0] = "mutated"
	if DefaultExclusions[0] == "mutated" {
		t.Error("Exclusions() must return a copy")
	}
}

func TestParseArch(t *testing.T) {
	for _, s := range []string{"32bit", "64bit"} {
		if a, err := ParseArch(s); err != nil || string(a) != s {
			t.Errorf("ParseArch(%q) = %q, %v", s, a, err)
		}
	}
	for _, s := range []string{"", "x64", "64"} {
		if _, err := ParseArch(s); err == nil {
			t.Errorf("ParseArch(%q) should fail", s)
		}
	}
}

func TestParse_YAMLAndJSON(t *testing.T) {
	yamlSrc := `
FILES:
  - filename: chrome
    buildtype: [dev]
  - filename: b.dll
    buildtype: dev
    arch: 32bit
`
	jsonSrc := `[{"filename": "chrome", "buildtype": ["dev"]}, {"filename": "b.dll", "buildtype": ["dev"], "arch": "32bit"}]`

	want := []Descriptor{
		{Filename: "chrome", BuildType: []string{"dev"}, HasBuildType: true},
		{Filename: "b.dll", BuildType: []string{"dev"}, HasBuildType: true, Arch: []string{"32bit"}, HasArch: true},
	}

	for name, src := range map[string]string{"files.yaml": yamlSrc, "files.json": jsonSrc} {
		t.Run(name, func(t *testing.T) {
			got, err := Parse([]byte(src), name)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		src     string
		wantMsg string
	}{
		{"missing FILES", "FILES.cfg", "OTHER = []\n", "FILES is not defined"},
		{"FILES not a list", "FILES.cfg", "FILES = {}\n", "must be a list"},
		{"entry not a mapping", "FILES.cfg", "FILES = ['chrome']\n", "FILES[0] must be a mapping"},
		{"filename not a string", "FILES.cfg", "FILES = [{'filename': 1}]\n", "filename must be a string"},
		{"missing filename", "FILES.cfg", "FILES = [{'buildtype': ['dev']}]\n", "FILES.cfg: FILES[0]: filename is required"},
		{"empty filename", "FILES.cfg", "FILES = [{'filename': 'a'}, {'filename': ''}]\n", "FILES[1]: filename is required"},
		{"missing filename in yaml", "files.yaml", "FILES:\n  - buildtype: [dev]\n", "filename is required"},
		{"bad buildtype", "FILES.cfg", "FILES = [{'filename': 'a', 'buildtype': [1]}]\n", "buildtype"},
		{"bad arch", "FILES.cfg", "FILES = [{'filename': 'a', 'arch': 1}]\n", "arch: expected a string or list of strings"},
		{"code is rejected", "FILES.cfg", "import os\nFILES = []\n", "expected assignment"},
		{"yaml without FILES", "files.yaml", "other: []\n", "FILES is not defined"},
		{"malformed yaml", "files.yaml", "FILES: [\n", "files.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.file)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FILES.cfg")
	if err := os.WriteFile(path, []byte(sampleCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	descs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(descs) != 9 {
		t.Errorf("got %d descriptors, want 9", len(descs))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.cfg")); err == nil {
		t.Error("expected error for missing file")
	}
}
