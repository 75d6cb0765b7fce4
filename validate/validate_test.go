package validate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/keycheck/extract"
	"github.com/minios-linux/keycheck/langfile"
)

func writeLangFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func mustParse(t *testing.T, data string) *langfile.Dictionary {
	t.Helper()
	d, err := langfile.Parse([]byte(data))
	require.NoError(t, err)
	return d
}

func TestValidate_ClassifiesInKeyOrder(t *testing.T) {
	dict := mustParse(t, `{"en": {"#d": "", "#a": "Hi", "#b": "", "#z": "0"}}`)
	keys := []string{"#c", "#b", "#a", "#d", "#e", "#z"}

	missing, empty := Validate(keys, dict)

	assert.Equal(t, []string{"#c", "#e"}, missing)
	assert.Equal(t, []string{"#b", "#d"}, empty)
}

func TestValidate_ZeroAndFalseAreNotEmpty(t *testing.T) {
	dict := mustParse(t, `{"en": {"#n": 0, "#f": false, "#null": null}}`)

	missing, empty := Validate([]string{"#n", "#f", "#null"}, dict)

	assert.Empty(t, missing)
	assert.Equal(t, []string{"#null"}, empty)
}

func TestValidate_Disjoint(t *testing.T) {
	dict := mustParse(t, `{"en": {"#a": "", "#b": "x"}}`)
	keys := []string{"#a", "#b", "#c", "#a"}

	missing, empty := Validate(keys, dict)

	seen := map[string]bool{}
	for _, k := range missing {
		seen[k] = true
	}
	for _, k := range empty {
		assert.False(t, seen[k], "key %s listed as missing and empty", k)
	}
}

func TestCheck_NeverNilLists(t *testing.T) {
	o := Check("lang_en.json", []string{"#a"}, mustParse(t, `{"en": {"#a": "x"}}`))

	require.NotNil(t, o.MissingKeys)
	require.NotNil(t, o.EmptyTranslations)
	assert.True(t, o.OK())
	assert.Equal(t, 1, o.Valid(1))
}

func TestOutcomeCounts(t *testing.T) {
	o := Outcome{File: "f", MissingKeys: []string{"#a", "#b"}, EmptyTranslations: []string{"#c"}}

	assert.Equal(t, 3, o.Problems())
	assert.Equal(t, 2, o.Valid(5))
	assert.False(t, o.OK())
}

func TestRun_SingleFile(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{
		"lang_en.json": `{"en": {"#a": "Hi", "#b": ""}}`,
	})

	res, err := Run(context.Background(), dir, "#a\n#b\n#c", Options{})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Outcome{
		File:              "lang_en.json",
		MissingKeys:       []string{"#c"},
		EmptyTranslations: []string{"#b"},
	}, res.Outcomes[0])
	assert.Equal(t, dir, res.Directory)
	assert.Equal(t, []string{"#a", "#b", "#c"}, res.Keys.Keys)
	assert.True(t, res.HasProblems())
}

func TestRun_ListingOrderWithManyFiles(t *testing.T) {
	files := map[string]string{}
	names := []string{"lang_de.json", "lang_en.json", "lang_es.json", "lang_fr.json", "lang_it.json", "lang_ru.json"}
	for _, n := range names {
		files[n] = `{"x": {"#a": "1"}}`
	}
	dir := writeLangFiles(t, files)

	res, err := Run(context.Background(), dir, "#a\n#b", Options{Jobs: 3})
	require.NoError(t, err)

	var got []string
	for _, o := range res.Outcomes {
		got = append(got, o.File)
		assert.Equal(t, []string{"#b"}, o.MissingKeys)
	}
	assert.Equal(t, names, got)
}

func TestRun_NoEligibleFiles(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{
		"lang_longlish.json": `{"x": {}}`,
		"lang_comment.json":  `{"x": {}}`,
	})

	_, err := Run(context.Background(), dir, "#a", Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, langfile.ErrNoEligibleFiles)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestRun_UnreadableDirectory(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "#a", Options{})

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, langfile.ErrDirectoryUnreadable)
}

func TestRun_NoKeys(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{"lang_en.json": `{"en": {}}`})

	_, err := Run(context.Background(), dir, "nothing to see", Options{})

	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestRun_MalformedIsolated(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{
		"lang_de.json": `{"de": {"#a": "x"}}`,
		"lang_en.json": `{"en": `,
		"lang_fr.json": `{"fr": {}}`,
	})

	res, err := Run(context.Background(), dir, "#a", Options{})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, "lang_de.json", res.Outcomes[0].File)
	assert.Equal(t, "lang_fr.json", res.Outcomes[1].File)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "lang_en.json", res.Skipped[0].File)
	assert.True(t, res.HasProblems())
}

func TestRun_MalformedStrict(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{
		"lang_de.json": `{"de": {"#a": "x"}}`,
		"lang_en.json": `["not", "an", "object"]`,
	})

	_, err := Run(context.Background(), dir, "#a", Options{Strict: true})

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, langfile.ErrMalformedFile)
	var mf *langfile.MalformedFileError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "lang_en.json", mf.File)
}

func TestRun_FilterAndGeneration(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{
		"lang_en.json":   `{"en": {"#a": "x"}}`,
		"lang_test.json": `{"t": {}}`,
	})
	f, err := langfile.NewFilter([]string{"lang_test*"})
	require.NoError(t, err)

	first, err := Run(context.Background(), dir, "#a", Options{Filter: f})
	require.NoError(t, err)
	second, err := RunKeys(context.Background(), dir, extract.Extract("#a"), Options{Filter: f})
	require.NoError(t, err)

	require.Len(t, first.Outcomes, 1)
	assert.Equal(t, "lang_en.json", first.Outcomes[0].File)
	assert.False(t, first.HasProblems())
	assert.Greater(t, second.Generation, first.Generation)
}

func TestRun_CanceledContext(t *testing.T) {
	dir := writeLangFiles(t, map[string]string{"lang_en.json": `{"en": {}}`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, dir, "#a", Options{})

	assert.ErrorIs(t, err, context.Canceled)
}
