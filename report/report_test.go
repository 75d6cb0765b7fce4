package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/keycheck/extract"
	"github.com/minios-linux/keycheck/langfile"
	"github.com/minios-linux/keycheck/validate"
)

func sampleOutcomes() []validate.Outcome {
	return []validate.Outcome{
		{File: "lang_en.json", MissingKeys: []string{"#x", "#y"}, EmptyTranslations: []string{"#z"}},
		{File: "lang_fr.json", MissingKeys: []string{"#x", "#z"}, EmptyTranslations: []string{}},
		{File: "lang_ru.json", MissingKeys: []string{}, EmptyTranslations: []string{"#y"}},
	}
}

func TestByFileIsPassThrough(t *testing.T) {
	outcomes := sampleOutcomes()
	assert.Equal(t, outcomes, ByFile(outcomes))
}

func TestByKey(t *testing.T) {
	r := ByKey(sampleOutcomes())

	assert.Equal(t, []KeyFiles{
		{Key: "#x", Files: []string{"lang_en.json", "lang_fr.json"}},
		{Key: "#y", Files: []string{"lang_en.json"}},
		{Key: "#z", Files: []string{"lang_fr.json"}},
	}, r.Missing)
	assert.Equal(t, []KeyFiles{
		{Key: "#z", Files: []string{"lang_en.json"}},
		{Key: "#y", Files: []string{"lang_ru.json"}},
	}, r.Empty)

	// Missing in one file and empty in another lands in both views.
	assert.Equal(t, []string{"lang_fr.json"}, r.MissingIn("#z"))
	assert.Equal(t, []string{"lang_en.json"}, r.EmptyIn("#z"))
	assert.Nil(t, r.MissingIn("#nope"))
}

func TestByKeyMatchesOutcomes(t *testing.T) {
	outcomes := sampleOutcomes()
	r := ByKey(outcomes)

	listed := map[string]bool{}
	for _, o := range outcomes {
		for _, k := range o.MissingKeys {
			listed[k] = true
			assert.Contains(t, r.MissingIn(k), o.File)
		}
	}
	for _, kf := range r.Missing {
		assert.True(t, listed[kf.Key], "key %s not missing in any outcome", kf.Key)
	}
}

func TestByKeyEmpty(t *testing.T) {
	r := ByKey(nil)
	assert.Empty(t, r.Missing)
	assert.Empty(t, r.Empty)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleOutcomes(), 4)
	require.Len(t, s, 3)
	assert.Equal(t, FileSummary{File: "lang_en.json", Checked: 4, Valid: 1, Problems: 3}, s[0])
	assert.Equal(t, FileSummary{File: "lang_ru.json", Checked: 4, Valid: 3, Problems: 1}, s[2])
}

func TestParseFormatAndView(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	v, err := ParseView("key")
	require.NoError(t, err)
	assert.Equal(t, ViewKey, v)

	_, err = ParseView("table")
	assert.Error(t, err)
}

func sampleResult() *validate.Result {
	return &validate.Result{
		Directory: "/tmp/lang",
		Keys:      extract.Extract("#x\n#y\n#z\n#x"),
		Outcomes:  sampleOutcomes(),
		Skipped: []*langfile.MalformedFileError{
			{File: "lang_de.json", Err: assert.AnError},
		},
	}
}

func TestWriteJSONFileView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(sampleResult(), ViewFile), FormatJSON))

	var got struct {
		View       string             `json:"view"`
		Keys       []string           `json:"keys"`
		Duplicates []Duplicate        `json:"duplicates"`
		Files      []validate.Outcome `json:"files"`
		ByKey      *KeyReport         `json:"byKey"`
		Skipped    []Skipped          `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "file", got.View)
	assert.Equal(t, []string{"#x", "#y", "#z"}, got.Keys)
	assert.Equal(t, []Duplicate{{Key: "#x", Count: 2}}, got.Duplicates)
	assert.Equal(t, sampleOutcomes(), got.Files)
	assert.Nil(t, got.ByKey)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "lang_de.json", got.Skipped[0].File)
}

func TestWriteJSONUsesOriginalFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(sampleResult(), ViewFile), FormatJSON))

	out := buf.String()
	assert.Contains(t, out, `"missingKeys"`)
	assert.Contains(t, out, `"emptyTranslations"`)
	assert.Contains(t, out, `"file": "lang_fr.json"`)
}

func TestWriteYAMLKeyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(sampleResult(), ViewKey), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "view: key")
	assert.Contains(t, out, "byKey:")
	assert.Contains(t, out, "missingKeys:")
	assert.NotContains(t, out, "\nfiles:")
}

func TestWriteTextFileView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(sampleResult(), ViewFile), FormatText))

	out := buf.String()
	assert.Contains(t, out, "Directory: /tmp/lang")
	assert.Contains(t, out, "Duplicate keys (1):")
	assert.Contains(t, out, "#x (2 times)")
	assert.Contains(t, out, "Validation results (3 files)")
	assert.Contains(t, out, "Problem keys: 3   Valid keys: 0   Total keys checked: 3")
	assert.Contains(t, out, "Skipped lang_de.json: ")

	// Files appear in outcome order.
	en := strings.Index(out, "lang_en.json")
	fr := strings.Index(out, "lang_fr.json")
	ru := strings.Index(out, "lang_ru.json")
	assert.True(t, en < fr && fr < ru, "unexpected file order:\n%s", out)
}

func TestWriteTextAllTranslated(t *testing.T) {
	res := &validate.Result{
		Keys: extract.Extract("#a\n#b"),
		Outcomes: []validate.Outcome{
			{File: "lang_de.json", MissingKeys: []string{}, EmptyTranslations: []string{}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(res, ViewFile), FormatText))

	out := buf.String()
	assert.Contains(t, out, "All specified keys (2) are present and translated")
	assert.Contains(t, out, "Deutsch")
	assert.NotContains(t, out, "Directory:")
}

func TestWriteTextAcceptedIsNotComplete(t *testing.T) {
	res := &validate.Result{
		Keys: extract.Extract("#a\n#b"),
		Outcomes: []validate.Outcome{
			{File: "lang_en.json", MissingKeys: []string{}, EmptyTranslations: []string{}, Accepted: []string{"#b"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(res, ViewFile), FormatText))

	out := buf.String()
	assert.NotContains(t, out, "All specified keys")
	assert.Contains(t, out, "Problem keys: 0   Valid keys: 1   Total keys checked: 2")
	assert.Contains(t, out, "Accepted in baseline: 1")

	s := Summarize(res.Outcomes, 2)
	assert.Equal(t, FileSummary{File: "lang_en.json", Checked: 2, Valid: 1, Problems: 0, Accepted: 1}, s[0])
}

func TestWriteTextKeyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewDocument(sampleResult(), ViewKey), FormatText))

	out := buf.String()
	assert.Contains(t, out, "Missing keys (3):")
	assert.Contains(t, out, "  #x\n    lang_en.json\n    lang_fr.json\n")
	assert.Contains(t, out, "Empty translations (2):")
}

func TestWriteKeys(t *testing.T) {
	keys := extract.Extract("#a\n#b\n#a")

	var buf bytes.Buffer
	require.NoError(t, WriteKeys(&buf, keys, FormatText))
	assert.Equal(t, "Duplicate keys (1):\n  #a (2 times)\n\nFound keys (2):\n  #a\n  #b\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteKeys(&buf, keys, FormatJSON))
	var got Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"#a", "#b"}, got.Keys)
	assert.Empty(t, got.View)
}
