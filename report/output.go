package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/minios-linux/keycheck/extract"
	"github.com/minios-linux/keycheck/i18n"
	"github.com/minios-linux/keycheck/langfile"
	"github.com/minios-linux/keycheck/langmeta"
	"github.com/minios-linux/keycheck/validate"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// View selects the aggregation shown.
type View string

const (
	ViewFile View = "file" // results grouped per translation file
	ViewKey  View = "key"  // results grouped per key
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: text, json, yaml)", s)
}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewFile, ViewKey:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q (valid: file, key)", s)
}

// Duplicate is one entry of the duplicate report.
type Duplicate struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// Skipped is a translation file that could not be loaded.
type Skipped struct {
	File  string `json:"file" yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// Document is everything a report shows about one run.
type Document struct {
	View       View               `json:"view,omitempty" yaml:"view,omitempty"`
	Directory  string             `json:"directory,omitempty" yaml:"directory,omitempty"`
	Keys       []string           `json:"keys" yaml:"keys"`
	Duplicates []Duplicate        `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Files      []validate.Outcome `json:"files,omitempty" yaml:"files,omitempty"`
	Summary    []FileSummary      `json:"summary,omitempty" yaml:"summary,omitempty"`
	ByKey      *KeyReport         `json:"byKey,omitempty" yaml:"byKey,omitempty"`
	Skipped    []Skipped          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Duplicates converts an extraction duplicate report to key set order.
func Duplicates(keys *extract.Result) []Duplicate {
	var out []Duplicate
	for _, k := range keys.DuplicateKeys() {
		out = append(out, Duplicate{Key: k, Count: keys.Duplicates[k]})
	}
	return out
}

// NewDocument builds a report document for a validation run.
func NewDocument(res *validate.Result, view View) *Document {
	doc := &Document{
		View:       view,
		Directory:  res.Directory,
		Keys:       res.Keys.Keys,
		Duplicates: Duplicates(res.Keys),
		Summary:    Summarize(res.Outcomes, res.Keys.Len()),
	}
	switch view {
	case ViewKey:
		doc.ByKey = ByKey(res.Outcomes)
	default:
		doc.Files = ByFile(res.Outcomes)
	}
	for _, s := range res.Skipped {
		doc.Skipped = append(doc.Skipped, Skipped{File: s.File, Error: s.Err.Error()})
	}
	return doc
}

// Write renders doc to w.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		data, err := yaml.MarshalWithOptions(doc, yaml.IndentSequence(true))
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return writeText(w, doc)
	}
}

func writeText(w io.Writer, doc *Document) error {
	p := &printer{w: w}

	if doc.Directory != "" {
		p.line(i18n.T("Directory: %s"), doc.Directory)
	}
	writeDuplicatesText(p, doc.Duplicates)

	total := len(doc.Keys)
	switch doc.View {
	case ViewKey:
		writeByKeyText(p, doc.ByKey)
	default:
		p.line(i18n.N("Validation results (%d file)", "Validation results (%d files)", len(doc.Files)), len(doc.Files))
		for _, o := range doc.Files {
			p.blank()
			writeOutcomeText(p, o, total)
		}
	}

	if len(doc.Skipped) > 0 {
		p.blank()
		for _, s := range doc.Skipped {
			p.line(i18n.T("Skipped %s: %s"), s.File, s.Error)
		}
	}

	return p.err
}

func writeOutcomeText(p *printer, o validate.Outcome, total int) {
	p.line("%s  %s", o.File, langmeta.Label(langfile.Locale(o.File)))

	if o.Complete() {
		p.line("  "+i18n.T("All specified keys (%d) are present and translated"), total)
		return
	}

	p.line("  "+i18n.T("Problem keys: %d")+"   "+i18n.T("Valid keys: %d")+"   "+i18n.T("Total keys checked: %d"),
		o.Problems(), o.Valid(total), total)
	if len(o.Accepted) > 0 {
		p.line("  "+i18n.T("Accepted in baseline: %d"), len(o.Accepted))
	}
	if len(o.MissingKeys) > 0 {
		p.line("  "+i18n.T("Missing keys (%d):"), len(o.MissingKeys))
		for _, k := range o.MissingKeys {
			p.line("    %s", k)
		}
	}
	if len(o.EmptyTranslations) > 0 {
		p.line("  "+i18n.T("Empty translations (%d):"), len(o.EmptyTranslations))
		for _, k := range o.EmptyTranslations {
			p.line("    %s", k)
		}
	}
}

func writeByKeyText(p *printer, r *KeyReport) {
	if r == nil {
		r = &KeyReport{}
	}
	section := func(header, none string, list []KeyFiles) {
		if len(list) == 0 {
			p.line("%s", none)
			return
		}
		p.line(header, len(list))
		for _, kf := range list {
			p.line("  %s", kf.Key)
			for _, f := range kf.Files {
				p.line("    %s", f)
			}
		}
	}
	section(i18n.T("Missing keys (%d):"), i18n.T("No missing keys found."), r.Missing)
	p.blank()
	section(i18n.T("Empty translations (%d):"), i18n.T("No empty translations found."), r.Empty)
}

func writeDuplicatesText(p *printer, dups []Duplicate) {
	if len(dups) == 0 {
		return
	}
	p.line(i18n.T("Duplicate keys (%d):"), len(dups))
	for _, d := range dups {
		p.line("  "+i18n.T("%s (%d times)"), d.Key, d.Count)
	}
	p.blank()
}

// WriteKeys renders an extraction result on its own.
func WriteKeys(w io.Writer, keys *extract.Result, format Format) error {
	doc := &Document{
		Keys:       keys.Keys,
		Duplicates: Duplicates(keys),
	}
	if format != FormatText {
		return Write(w, doc, format)
	}

	p := &printer{w: w}
	writeDuplicatesText(p, doc.Duplicates)
	p.line(i18n.T("Found keys (%d):"), len(doc.Keys))
	for _, k := range doc.Keys {
		p.line("  %s", k)
	}
	return p.err
}

// printer writes formatted lines and remembers the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) blank() {
	p.line("")
}
