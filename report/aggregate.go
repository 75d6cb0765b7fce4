// Package report reshapes validation outcomes into by-file and by-key views
// and renders them as text, JSON or YAML.
package report

import (
	"github.com/minios-linux/keycheck/validate"
)

// KeyFiles lists the files in which one key fails.
type KeyFiles struct {
	Key   string   `json:"key" yaml:"key"`
	Files []string `json:"files" yaml:"files"`
}

// KeyReport is the by-key view: which files each key is missing from, and
// which files have it with an empty translation. The two lists are built
// independently, so a key may appear in both.
type KeyReport struct {
	Missing []KeyFiles `json:"missingKeys" yaml:"missingKeys"`
	Empty   []KeyFiles `json:"emptyTranslations" yaml:"emptyTranslations"`
}

// ByFile returns outcomes unchanged; it is the default view.
func ByFile(outcomes []validate.Outcome) []validate.Outcome {
	return outcomes
}

// ByKey regroups outcomes per key. Keys keep first-seen order and each
// key's files keep the order in which outcomes were visited.
func ByKey(outcomes []validate.Outcome) *KeyReport {
	missing := newIndex()
	empty := newIndex()
	for _, o := range outcomes {
		for _, k := range o.MissingKeys {
			missing.add(k, o.File)
		}
		for _, k := range o.EmptyTranslations {
			empty.add(k, o.File)
		}
	}
	return &KeyReport{
		Missing: missing.list,
		Empty:   empty.list,
	}
}

// MissingIn returns the files key is missing from.
func (r *KeyReport) MissingIn(key string) []string {
	return lookup(r.Missing, key)
}

// EmptyIn returns the files where key has an empty translation.
func (r *KeyReport) EmptyIn(key string) []string {
	return lookup(r.Empty, key)
}

func lookup(list []KeyFiles, key string) []string {
	for _, kf := range list {
		if kf.Key == key {
			return kf.Files
		}
	}
	return nil
}

// index accumulates KeyFiles in insertion order.
type index struct {
	pos  map[string]int
	list []KeyFiles
}

func newIndex() *index {
	return &index{pos: make(map[string]int), list: []KeyFiles{}}
}

func (ix *index) add(key, file string) {
	i, ok := ix.pos[key]
	if !ok {
		i = len(ix.list)
		ix.pos[key] = i
		ix.list = append(ix.list, KeyFiles{Key: key})
	}
	ix.list[i].Files = append(ix.list[i].Files, file)
}

// FileSummary holds the per-file counts shown next to each result.
type FileSummary struct {
	File     string `json:"file" yaml:"file"`
	Checked  int    `json:"checked" yaml:"checked"`
	Valid    int    `json:"valid" yaml:"valid"`
	Problems int    `json:"problems" yaml:"problems"`
	Accepted int    `json:"accepted,omitempty" yaml:"accepted,omitempty"`
}

// Summarize computes per-file counts for total checked keys.
func Summarize(outcomes []validate.Outcome, total int) []FileSummary {
	out := make([]FileSummary, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, FileSummary{
			File:     o.File,
			Checked:  total,
			Valid:    o.Valid(total),
			Problems: o.Problems(),
			Accepted: len(o.Accepted),
		})
	}
	return out
}
