// keycheck checks that every lang_*.json translation file in a directory
// contains the "#key" identifiers used by a project, with non-empty values.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/keycheck/baseline"
	"github.com/minios-linux/keycheck/config"
	"github.com/minios-linux/keycheck/extract"
	"github.com/minios-linux/keycheck/i18n"
	"github.com/minios-linux/keycheck/langfile"
	"github.com/minios-linux/keycheck/langmeta"
	"github.com/minios-linux/keycheck/report"
	"github.com/minios-linux/keycheck/settings"
	"github.com/minios-linux/keycheck/validate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit statuses.
const (
	exitOK       = 0
	exitError    = 1
	exitProblems = 2
)

// errProblems ends a check that completed and found problems.
var errProblems = errors.New("problems found")

// app carries global flag values and the resolved settings.
type app struct {
	rootDir  string
	logLevel string
	lang     string

	settings config.Settings
	stderr   io.Writer
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "keycheck",
		Short: "Check translation files for missing and empty keys",
		Long: `keycheck finds "#key" identifiers that are missing from, or have empty
values in, the lang_*.json translation files of a directory.

Keys are read from a file or stdin: any line containing "#" contributes
one key. Each translation file is a JSON object whose first property holds
the key/value dictionary. lang_longlish.json and lang_comment.json are
never checked.

Commands:
  check     Validate keys against every translation file
  keys      Show the keys found in the input
  files     List the translation files of a directory
  recent    Show or clear recently used directories

Configuration is read from .keycheck.yaml in --root and from KEYCHECK_*
environment variables; flags take precedence over both.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.rootDir, "root", ".", "Project root directory (holds .keycheck.yaml and keycheck.lock)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	pf.StringVar(&a.lang, "lang", "", "Language of keycheck's own messages (default from locale)")

	root.AddCommand(
		newCheckCmd(a),
		newKeysCmd(a),
		newFilesCmd(a),
		newRecentCmd(),
		newVersionCmd(),
	)

	return root
}

// setup loads configuration, then configures logging and message language.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load(a.rootDir)
	if err != nil {
		return err
	}
	a.settings = s

	level := s.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := setupLogging(a.stderr, level); err != nil {
		return err
	}

	lang := s.Lang
	if a.lang != "" {
		lang = a.lang
	}
	lang = i18n.Init(lang)
	if !hasCatalog(lang) {
		log.Debug().Str("lang", lang).Strs("available", i18n.Available()).Msg("No message catalog, using English")
	}
	log.Debug().Str("lang", lang).Str("root", a.rootDir).Msg("Configuration loaded")
	return nil
}

// hasCatalog reports whether keycheck's messages exist in lang.
// English is built in.
func hasCatalog(lang string) bool {
	base, _, _ := strings.Cut(strings.ReplaceAll(lang, "-", "_"), "_")
	if base == "en" {
		return true
	}
	for _, l := range i18n.Available() {
		if l == lang || l == base {
			return true
		}
	}
	return false
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	_ = setupLogging(stderr, "info")

	a := &app{stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if errors.Is(err, errProblems) {
			return exitProblems
		}
		log.Error().Msg(err.Error())
		return exitError
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "keycheck version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

type checkFlags struct {
	keysFile       string
	format         string
	view           string
	strict         bool
	jobs           int
	ignore         []string
	baseline       string
	noBaseline     bool
	updateBaseline bool
}

func newCheckCmd(a *app) *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check [DIR]",
		Short: "Validate keys against every translation file in DIR",
		Long: `Validate the keys read from --keys (or stdin) against every lang_*.json
file in DIR.

Without DIR, the directory from .keycheck.yaml or KEYCHECK_DIR is used,
then the most recently checked directory.

Problems already recorded in the baseline (keycheck.lock) are not
reported. --update-baseline records the current problems as accepted.

Exit status is 0 when no problems are found, 2 when problems are found,
and 1 on errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, &f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.keysFile, "keys", "k", "-", "File with the key text (- reads stdin)")
	addOutputFlags(fs, &f.format, &f.view)
	fs.BoolVar(&f.strict, "strict", false, "Abort on the first malformed translation file")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Files processed at once (0 = number of CPUs)")
	fs.StringSliceVar(&f.ignore, "ignore", nil, "Extra glob patterns of file names to skip")
	fs.StringVar(&f.baseline, "baseline", "", "Baseline file (default keycheck.lock in --root)")
	fs.BoolVar(&f.noBaseline, "no-baseline", false, "Report every problem, ignoring the baseline")
	fs.BoolVar(&f.updateBaseline, "update-baseline", false, "Record the current problems in the baseline")
	cmd.MarkFlagsMutuallyExclusive("no-baseline", "update-baseline")

	return cmd
}

func addOutputFlags(fs *pflag.FlagSet, format, view *string) {
	fs.StringVarP(format, "format", "f", string(report.FormatText), "Output format: text, json, yaml")
	if view != nil {
		fs.StringVar(view, "view", string(report.ViewFile), "Group results by file or key")
	}
}

// applyCheckFlags overrides s with the flags that were set explicitly.
func applyCheckFlags(fs *pflag.FlagSet, s *config.Settings, f *checkFlags) error {
	if fs.Changed("format") {
		format, err := report.ParseFormat(f.format)
		if err != nil {
			return err
		}
		s.Format = format
	}
	if fs.Changed("view") {
		view, err := report.ParseView(f.view)
		if err != nil {
			return err
		}
		s.View = view
	}
	if fs.Changed("strict") {
		s.Strict = f.strict
	}
	if fs.Changed("jobs") {
		if f.jobs < 0 {
			return fmt.Errorf("--jobs must not be negative, got %d", f.jobs)
		}
		s.Jobs = f.jobs
	}
	if fs.Changed("ignore") {
		s.Ignore = append(append([]string(nil), s.Ignore...), f.ignore...)
	}
	if fs.Changed("baseline") {
		s.Baseline = f.baseline
	}
	return nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string, f *checkFlags) error {
	s := a.settings
	if err := applyCheckFlags(cmd.Flags(), &s, f); err != nil {
		return err
	}

	recent := a.recent()
	dir, err := resolveDir(args, s, recent)
	if err != nil {
		return err
	}

	filter, err := langfile.NewFilter(s.Ignore)
	if err != nil {
		return err
	}
	if err := probe(filter, dir); err != nil {
		return err
	}

	raw, err := readKeys(cmd.InOrStdin(), f.keysFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := validate.Run(ctx, dir, raw, validate.Options{
		Filter: filter,
		Jobs:   s.Jobs,
		Strict: s.Strict,
	})
	if err != nil {
		return explain(err, dir)
	}
	remember(recent, dir)

	if !f.noBaseline {
		b, err := baseline.Load(s.Baseline)
		if err != nil {
			return err
		}
		if f.updateBaseline {
			b.Record(res.Outcomes)
			if err := b.Save(); err != nil {
				return err
			}
			log.Info().Str("path", b.Path()).Str("baseline", b.Summary()).Msg("Baseline updated")
		}
		if files, problems := b.Stats(); files > 0 {
			log.Debug().Int("files", files).Int("problems", problems).Msg("Applying baseline")
		}
		res.Outcomes = b.Subtract(res.Outcomes)
	}

	if err := report.Write(cmd.OutOrStdout(), report.NewDocument(res, s.View), s.Format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if res.HasProblems() {
		return errProblems
	}
	return nil
}

// ---------------------------------------------------------------------------
// keys
// ---------------------------------------------------------------------------

func newKeysCmd(a *app) *cobra.Command {
	var keysFile, format string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show the keys found in the input",
		Long: `Extract keys from --keys (or stdin) without checking any translation
file. Shows the deduplicated key list and the keys that occur more than
once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if cmd.Flags().Changed("format") {
				f, err := report.ParseFormat(format)
				if err != nil {
					return err
				}
				s.Format = f
			}

			raw, err := readKeys(cmd.InOrStdin(), keysFile)
			if err != nil {
				return err
			}
			return report.WriteKeys(cmd.OutOrStdout(), extract.Extract(raw), s.Format)
		},
	}

	cmd.Flags().StringVarP(&keysFile, "keys", "k", "-", "File with the key text (- reads stdin)")
	addOutputFlags(cmd.Flags(), &format, nil)

	return cmd
}

// ---------------------------------------------------------------------------
// files
// ---------------------------------------------------------------------------

func newFilesCmd(a *app) *cobra.Command {
	var ignore []string

	cmd := &cobra.Command{
		Use:   "files [DIR]",
		Short: "List the translation files of a directory",
		Long: `List the lang_*.json files that check would validate in DIR, with the
language each one holds. Fails when DIR has no eligible files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if cmd.Flags().Changed("ignore") {
				s.Ignore = append(append([]string(nil), s.Ignore...), ignore...)
			}

			recent := a.recent()
			dir, err := resolveDir(args, s, recent)
			if err != nil {
				return err
			}
			filter, err := langfile.NewFilter(s.Ignore)
			if err != nil {
				return err
			}

			files, err := filter.List(dir)
			if err != nil {
				return explain(err, dir)
			}
			remember(recent, dir)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, i18n.N("Found %d translation file in %s:", "Found %d translation files in %s:", len(files))+"\n", len(files), dir)
			for _, name := range files {
				fmt.Fprintf(out, "  %-24s %s\n", name, langmeta.Label(langfile.Locale(name)))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Extra glob patterns of file names to skip")

	return cmd
}

// ---------------------------------------------------------------------------
// recent
// ---------------------------------------------------------------------------

func newRecentCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "recent [clear]",
		Short:     "Show or clear recently used directories",
		Long:      `Show the directories most recently checked, newest first, or forget them with "recent clear".`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clear"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := settings.OpenDefault()
			if err != nil {
				return err
			}
			recent := settings.NewRecent(kv)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if err := recent.Clear(); err != nil {
					return fmt.Errorf("clearing recent directories: %w", err)
				}
				fmt.Fprintln(out, i18n.T("Recent directories cleared."))
				return nil
			}

			dirs := recent.List()
			if len(dirs) == 0 {
				fmt.Fprintln(out, i18n.T("No recent directories."))
				return nil
			}
			for i, d := range dirs {
				fmt.Fprintf(out, "%d. %s\n", i+1, d)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// recent opens the recent-directory list, or returns nil after a warning.
func (a *app) recent() *settings.Recent {
	kv, err := settings.OpenDefault()
	if err != nil {
		log.Warn().Err(err).Msg("Recent directories unavailable")
		return nil
	}
	return settings.NewRecent(kv)
}

func remember(recent *settings.Recent, dir string) {
	if recent == nil {
		return
	}
	if _, err := recent.Add(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Could not save recent directory")
	}
}

// resolveDir picks the directory to work on: the argument, then the
// configured directory, then the most recent one.
func resolveDir(args []string, s config.Settings, recent *settings.Recent) (string, error) {
	var dir string
	switch {
	case len(args) > 0:
		dir = args[0]
	case s.Directory != "":
		dir = s.Directory
	case recent != nil:
		dir = recent.Latest()
		if dir != "" {
			log.Info().Str("dir", dir).Msg("Using most recent directory")
		}
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("no directory given and no recent directory stored")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, nil
	}
	return abs, nil
}

// readKeys reads the key text from path, or from stdin when path is "-".
func readKeys(stdin io.Reader, path string) (string, error) {
	if path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading keys: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading keys from stdin: %w", err)
	}
	return string(data), nil
}

// probe checks that dir holds translation files without reading them.
func probe(filter *langfile.Filter, dir string) error {
	ok, err := filter.Has(dir)
	if err != nil {
		return err
	}
	if !ok {
		return explain(langfile.ErrNoEligibleFiles, dir)
	}
	return nil
}

// explain turns run errors into messages for the terminal.
func explain(err error, dir string) error {
	switch {
	case errors.Is(err, langfile.ErrNoEligibleFiles):
		return fmt.Errorf("no translation files (lang_*.json) found in %s", dir)
	case errors.Is(err, validate.ErrNoKeys):
		return errors.New("no keys found in the input (keys are words starting with #)")
	}
	return err
}
