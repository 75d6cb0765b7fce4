// Package validate cross-references a key set against translation files.
package validate

import (
	"github.com/minios-linux/keycheck/langfile"
)

// Outcome is the validation result for a single translation file.
// A key appears in at most one of the two lists.
type Outcome struct {
	File              string   `json:"file" yaml:"file"`
	MissingKeys       []string `json:"missingKeys" yaml:"missingKeys"`
	EmptyTranslations []string `json:"emptyTranslations" yaml:"emptyTranslations"`
	// Accepted lists missing or empty keys hidden by a baseline. They are
	// neither problems nor valid keys.
	Accepted []string `json:"accepted,omitempty" yaml:"accepted,omitempty"`
}

// Problems returns the number of missing plus empty keys.
func (o Outcome) Problems() int {
	return len(o.MissingKeys) + len(o.EmptyTranslations)
}

// Valid returns how many of total checked keys are present and translated.
func (o Outcome) Valid(total int) int {
	return total - o.Problems() - len(o.Accepted)
}

// OK reports whether the file has no problems left to report.
func (o Outcome) OK() bool {
	return o.Problems() == 0
}

// Complete reports whether every checked key is present and translated.
func (o Outcome) Complete() bool {
	return o.OK() && len(o.Accepted) == 0
}

// Validate classifies each key in keys against dict, in key order.
// Keys absent from dict are missing; keys whose value is "" are empty.
func Validate(keys []string, dict *langfile.Dictionary) (missing, empty []string) {
	missing = []string{}
	empty = []string{}
	for _, k := range keys {
		v, ok := dict.Lookup(k)
		switch {
		case !ok:
			missing = append(missing, k)
		case v == "":
			empty = append(empty, k)
		}
	}
	return missing, empty
}

// Check validates keys against dict and labels the result with file.
func Check(file string, keys []string, dict *langfile.Dictionary) Outcome {
	missing, empty := Validate(keys, dict)
	return Outcome{
		File:              file,
		MissingKeys:       missing,
		EmptyTranslations: empty,
	}
}
