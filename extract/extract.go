// Package extract pulls localization keys out of free-form pasted text.
//
// A key is a token starting with '#'. Each line of input contributes at most
// one key:
//
//	label = #menu.start        -> #menu.start
//	"#menu.quit": "Quit"       -> #menu.quit
//	"# spaced key"             -> # spaced key
//
// Lines without '#' are ignored. Lines that contain '#' but match neither
// form are dropped silently; extraction never fails.
package extract

import (
	"regexp"
	"strings"
)

// Marker is the character every key starts with.
const Marker = "#"

var (
	// bareKeyRe matches a run starting with '#' up to whitespace or a quote.
	// Whitespace includes \v, Unicode separators (NBSP, U+2000..U+200A,
	// U+3000, ...) and the BOM.
	bareKeyRe = regexp.MustCompile(`#[^\s\v\p{Z}\x{FEFF}"]+`)
	// quotedKeyRe matches a double-quoted string whose content starts with '#'.
	quotedKeyRe = regexp.MustCompile(`"(#[^"]+)"`)
)

// Result holds the outcome of an extraction.
type Result struct {
	// Keys is the deduplicated key set in first-occurrence order.
	Keys []string
	// Duplicates maps keys seen more than once to their raw occurrence count.
	Duplicates map[string]int
}

// Extract returns the ordered, deduplicated key set found in raw along with
// the duplicate report. It is a pure function of its input.
func Extract(raw string) *Result {
	var found []string
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, Marker) {
			continue
		}
		if key := lineKey(strings.TrimSpace(line)); key != "" {
			found = append(found, key)
		}
	}

	counts := make(map[string]int, len(found))
	for _, k := range found {
		counts[k]++
	}

	dups := make(map[string]int)
	for k, n := range counts {
		if n > 1 {
			dups[k] = n
		}
	}

	return &Result{
		Keys:       Dedupe(found),
		Duplicates: dups,
	}
}

// lineKey applies the two extraction strategies to a single trimmed line.
// Only the first bare key on a line is kept.
func lineKey(line string) string {
	if m := bareKeyRe.FindString(line); m != "" {
		return m
	}
	if m := quotedKeyRe.FindStringSubmatch(line); len(m) == 2 {
		return m[1]
	}
	return ""
}

// Dedupe removes duplicate and empty keys, keeping the first occurrence of
// each. Applying it to an already deduplicated slice returns an equal slice.
func Dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// DuplicateKeys returns the keys of the duplicate report in key set order.
func (r *Result) DuplicateKeys() []string {
	var out []string
	for _, k := range r.Keys {
		if _, ok := r.Duplicates[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of unique keys.
func (r *Result) Len() int {
	return len(r.Keys)
}
