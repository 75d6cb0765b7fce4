// Package langfile implements discovery and reading of lang_*.json
// translation files.
//
// The expected file format is:
//
//	{
//	    "en": {
//	        "#menu.start": "Start",
//	        "#menu.quit": ""
//	    }
//	}
//
// Only the first top-level property is read; its name is the locale
// identifier and its value is the flat key -> value dictionary. "First" is
// the order of the source document, so parsing must preserve property order.
package langfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedFile matches every *MalformedFileError.
	ErrMalformedFile = errors.New("malformed translation file")
	// ErrNoEligibleFiles is returned when a directory holds no lang_*.json files.
	ErrNoEligibleFiles = errors.New("NO_JSON_FILES")
	// ErrDirectoryUnreadable is returned when a directory cannot be listed.
	ErrDirectoryUnreadable = errors.New("directory unreadable")
)

// MalformedFileError reports a translation file that could not be read or
// does not have the { "<locale>": { "<key>": "<value>" } } shape.
type MalformedFileError struct {
	File string
	Err  error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *MalformedFileError) Unwrap() []error {
	return []error{ErrMalformedFile, e.Err}
}

// Dictionary is a parsed translation file.
type Dictionary struct {
	// Locale is the name of the top-level property holding the entries.
	Locale string
	// Entries maps key -> translated value. Empty means untranslated.
	Entries map[string]string
}

// Lookup returns the value for key and whether the key is present.
func (d *Dictionary) Lookup(key string) (string, bool) {
	v, ok := d.Entries[key]
	return v, ok
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.Entries)
}

// LoadDictionary reads and parses the named file in dir.
func LoadDictionary(dir, name string) (*Dictionary, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedFileError{File: name, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	d, err := Parse(data)
	if err != nil {
		return nil, &MalformedFileError{File: name, Err: err}
	}

	log.Debug().
		Str("file", name).
		Str("locale", d.Locale).
		Int("entries", d.Len()).
		Msg("Loaded translation file")

	return d, nil
}

// Parse parses translation file data.
func Parse(data []byte) (*Dictionary, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("expected a JSON object at top level, got %s", doc.Type)
	}

	// ForEach walks properties in document order; stop at the first one.
	var (
		locale string
		first  gjson.Result
		found  bool
	)
	doc.ForEach(func(key, value gjson.Result) bool {
		locale = key.String()
		first = value
		found = true
		return false
	})
	if !found {
		return nil, errors.New("no top-level locale property")
	}
	if !first.IsObject() {
		return nil, fmt.Errorf("locale %q: expected an object of translations, got %s", locale, first.Type)
	}

	entries, err := parseStringMap([]byte(first.Raw))
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}

	return &Dictionary{
		Locale:  locale,
		Entries: entries,
	}, nil
}

// parseStringMap decodes a flat object into string values. Strings are
// kept as-is, null becomes "", numbers and booleans keep their literal text.
// Nested objects and arrays are rejected.
func parseStringMap(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	// Read opening brace.
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	values := make(map[string]string)

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}

		var value string
		switch v := vt.(type) {
		case string:
			value = v
		case nil:
			value = ""
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("expected string value for key %q, got %v", key, vt)
		}

		// Later duplicates overwrite earlier ones.
		values[key] = value
	}

	return values, nil
}
