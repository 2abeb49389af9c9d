package archive

import (
	"fmt"

	"github.com/bmatcuk/doublestar"
)

// Arch is a target architecture token.
type Arch string

// Supported target architectures.
const (
	Arch32 Arch = "32bit"
	Arch64 Arch = "64bit"
)

// DevBuildType is the buildtype tag an entry needs to be archived.
const DevBuildType = "dev"

// DefaultExclusions are never archived. Entries are compared to filenames
// exactly; the wildcard entries only take effect with WithGlobMatching.
var DefaultExclusions = []string{
	"chrome_sandbox",
	"chromedriver",
	"chromedriver.exe",
	"mini_installer.exe",
	"setup.exe",
	"nacl_irt_x86_32.nexe",
	"nacl_irt_x86_64.nexe",
	"*.manifest",
	"*.pdb",
}

// ParseArch validates an architecture argument.
func ParseArch(s string) (Arch, error) {
	switch a := Arch(s); a {
	case Arch32, Arch64:
		return a, nil
	}
	return "", fmt.Errorf("unknown architecture %q (expected %s or %s)", s, Arch32, Arch64)
}

// Reason explains why a descriptor was or was not selected.
type Reason int

const (
	Selected Reason = iota
	AlreadyArchived
	NotDevBuild
	ArchMismatch
	Excluded
)

func (r Reason) String() string {
	switch r {
	case Selected:
		return "selected"
	case AlreadyArchived:
		return "already archived"
	case NotDevBuild:
		return "not a dev build"
	case ArchMismatch:
		return "architecture mismatch"
	case Excluded:
		return "excluded"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Selector filters descriptors for one archive run.
type Selector struct {
	exclusions []string
	excluded   map[string]bool
	glob       bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithExclusions appends patterns to the exclusion list.
func WithExclusions(patterns []string) Option {
	return func(s *Selector) {
		s.exclusions = append(s.exclusions, patterns...)
	}
}

// WithGlobMatching treats exclusion entries as doublestar glob patterns.
// Off by default: entries such as "*.pdb" then only exclude a file literally
// named "*.pdb".
func WithGlobMatching(enabled bool) Option {
	return func(s *Selector) {
		s.glob = enabled
	}
}

// NewSelector creates a Selector using DefaultExclusions plus opts.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		exclusions: append([]string(nil), DefaultExclusions...),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.excluded = make(map[string]bool, len(s.exclusions))
	for _, p := range s.exclusions {
		s.excluded[p] = true
	}
	return s
}

// Exclusions returns the effective exclusion list.
func (s *Selector) Exclusions() []string {
	return append([]string(nil), s.exclusions...)
}

// Select returns the filenames of descs to archive for arch, in input order.
func (s *Selector) Select(arch Arch, descs []Descriptor) []string {
	var out []string
	for _, d := range descs {
		if s.Explain(arch, d) == Selected {
			out = append(out, d.Filename)
		}
	}
	return out
}

// Explain returns the first rule d fails for arch, or Selected.
func (s *Selector) Explain(arch Arch, d Descriptor) Reason {
	if d.HasArchive {
		return AlreadyArchived
	}
	if !d.HasBuildType || !contains(d.BuildType, DevBuildType) {
		return NotDevBuild
	}
	if d.HasArch && !contains(d.Arch, string(arch)) {
		return ArchMismatch
	}
	if s.isExcluded(d.Filename) {
		return Excluded
	}
	return Selected
}

func (s *Selector) isExcluded(filename string) bool {
	if s.excluded[filename] {
		return true
	}
	if !s.glob {
		return false
	}
	for _, pattern := range s.exclusions {
		// a malformed pattern can only ever match exactly, handled above
		if ok, err := doublestar.Match(pattern, filename); err == nil && ok {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
