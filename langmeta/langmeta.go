// Package langmeta provides language display metadata (native names and
// emoji flags) for the locales of translation files.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR and pt-BR. Unknown codes are returned as
// the name with no flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil || tag == language.Und {
		return Meta{Name: lang}
	}

	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}

	return Meta{Name: name, Flag: flag(tag)}
}

// flag returns the regional indicator pair for the tag's region, which may
// be inferred (en -> US).
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No || !region.IsCountry() {
		return ""
	}
	return FlagFromRegion(region.String())
}

// FlagFromRegion converts a two-letter region code to an emoji flag.
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, r := range region {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}

// Label formats a locale for display, for example "🇩🇪 Deutsch".
func Label(lang string) string {
	m := Resolve(lang)
	if m.Flag == "" {
		return m.Name
	}
	return m.Flag + " " + m.Name
}
