package langfile

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

const (
	// Prefix every translation file name starts with.
	Prefix = "lang_"
	// Suffix every translation file name ends with.
	Suffix = ".json"
)

// IgnoredFiles hold non-translation metadata and are never eligible.
var IgnoredFiles = []string{"lang_longlish.json", "lang_comment.json"}

// IsEligible reports whether name is a translation file under the default
// rule: lang_*.json and not reserved.
func IsEligible(name string) bool {
	return strings.HasPrefix(name, Prefix) &&
		strings.HasSuffix(name, Suffix) &&
		!slices.Contains(IgnoredFiles, name)
}

// Locale returns the locale part of a translation file name
// (lang_pt-BR.json -> pt-BR). Names outside the pattern are returned as is.
func Locale(name string) string {
	if !strings.HasPrefix(name, Prefix) || !strings.HasSuffix(name, Suffix) {
		return name
	}
	return strings.TrimSuffix(strings.TrimPrefix(name, Prefix), Suffix)
}

// Filter applies the eligibility rule plus extra ignore patterns.
type Filter struct {
	patterns []string
	ignore   []glob.Glob
}

// NewFilter compiles extra ignore glob patterns matched against file names.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, p)
		f.ignore = append(f.ignore, g)
	}
	return f, nil
}

// Patterns returns the extra ignore patterns in effect.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return f.patterns
}

// Eligible reports whether name qualifies as a translation file.
func (f *Filter) Eligible(name string) bool {
	if !IsEligible(name) {
		return false
	}
	if f == nil {
		return true
	}
	for _, g := range f.ignore {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// scan lists the eligible file names in dir in directory listing order.
func (f *Filter) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if f.Eligible(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// List returns the eligible file names in dir. It returns ErrNoEligibleFiles
// when nothing qualifies.
func (f *Filter) List(dir string) ([]string, error) {
	names, err := f.scan(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoEligibleFiles)
	}
	return names, nil
}

// Has reports whether dir contains at least one eligible file. File contents
// are not read.
func (f *Filter) Has(dir string) (bool, error) {
	names, err := f.scan(dir)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ListEligibleFiles returns the eligible file names in dir under the default
// rule.
func ListEligibleFiles(dir string) ([]string, error) {
	return (*Filter)(nil).List(dir)
}

// HasEligibleFiles reports whether dir contains an eligible file under the
// default rule.
func HasEligibleFiles(dir string) (bool, error) {
	return (*Filter)(nil).Has(dir)
}
