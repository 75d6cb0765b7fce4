// Package baseline implements keycheck.lock, a lock file that records
// accepted problems. A check run against a baseline only reports problems
// that are not recorded in it.
//
// Each problem is stored as an MD5 checksum of its kind and key, per
// translation file.
package baseline

import (
	"crypto/md5"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/keycheck/validate"
)

// FileName is the default baseline file name.
const FileName = "keycheck.lock"

// Version is the baseline file format version.
const Version = 1

// Problem kinds.
const (
	KindMissing = "missing"
	KindEmpty   = "empty"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Baseline represents the keycheck.lock file structure.
type Baseline struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // file -> key -> md5(kind, key)

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// New returns an empty baseline that will be saved to path.
func New(path string) *Baseline {
	return &Baseline{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a baseline file. Returns an empty baseline if the file doesn't
// exist.
func Load(path string) (*Baseline, error) {
	b := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if b.Version > Version {
		return nil, fmt.Errorf("%s: unsupported baseline version %d", path, b.Version)
	}
	b.path = path

	if b.Checksums == nil {
		b.Checksums = make(map[string]map[string]string)
	}

	return b, nil
}

// Save writes the baseline to disk.
func (b *Baseline) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.path == "" {
		return fmt.Errorf("baseline path not set")
	}

	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}

	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}

	return nil
}

// Path returns the baseline file path.
func (b *Baseline) Path() string {
	return b.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryContent builds the hashed content for a problem. The kind is part of
// the hash so a key moving from missing to empty counts as a new problem.
func EntryContent(kind, key string) string {
	return kind + "\x00" + key
}

// Known reports whether the problem was recorded for file.
func (b *Baseline) Known(file, kind, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.known(file, kind, key)
}

func (b *Baseline) known(file, kind, key string) bool {
	keys, ok := b.Checksums[file]
	if !ok {
		return false
	}
	return keys[key] == Hash(EntryContent(kind, key))
}

// Record replaces the recorded problems of every file in outcomes. Files
// without problems are removed from the baseline.
func (b *Baseline) Record(outcomes []validate.Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range outcomes {
		if o.OK() {
			delete(b.Checksums, o.File)
			continue
		}
		keys := make(map[string]string, o.Problems())
		for _, k := range o.MissingKeys {
			keys[k] = Hash(EntryContent(KindMissing, k))
		}
		for _, k := range o.EmptyTranslations {
			keys[k] = Hash(EntryContent(KindEmpty, k))
		}
		b.Checksums[o.File] = keys
	}
}

// Subtract returns copies of outcomes with recorded problems moved to
// Accepted. Key order is preserved.
func (b *Baseline) Subtract(outcomes []validate.Outcome) []validate.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]validate.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		n := validate.Outcome{
			File:              o.File,
			MissingKeys:       []string{},
			EmptyTranslations: []string{},
		}
		n.Accepted = append(n.Accepted, o.Accepted...)
		for _, k := range o.MissingKeys {
			if b.known(o.File, KindMissing, k) {
				n.Accepted = append(n.Accepted, k)
			} else {
				n.MissingKeys = append(n.MissingKeys, k)
			}
		}
		for _, k := range o.EmptyTranslations {
			if b.known(o.File, KindEmpty, k) {
				n.Accepted = append(n.Accepted, k)
			} else {
				n.EmptyTranslations = append(n.EmptyTranslations, k)
			}
		}
		out = append(out, n)
	}
	return out
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of files and total problems in the baseline.
func (b *Baseline) Stats() (files, problems int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	files = len(b.Checksums)
	for _, m := range b.Checksums {
		problems += len(m)
	}
	return
}

// Files returns the sorted list of files in the baseline.
func (b *Baseline) Files() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]string, 0, len(b.Checksums))
	for f := range b.Checksums {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Summary returns a human-readable summary string.
func (b *Baseline) Summary() string {
	files, problems := b.Stats()
	if files == 0 {
		return "empty"
	}

	var parts []string
	for _, f := range b.Files() {
		b.mu.Lock()
		n := len(b.Checksums[f])
		b.mu.Unlock()
		parts = append(parts, fmt.Sprintf("%s: %d", f, n))
	}
	return fmt.Sprintf("%d files, %d problems (%s)", files, problems, strings.Join(parts, ", "))
}
