package validate

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/keycheck/extract"
	"github.com/minios-linux/keycheck/langfile"
)

var (
	// ErrValidation marks a run that failed for a reason other than
	// langfile.ErrNoEligibleFiles.
	ErrValidation = errors.New("VALIDATION_ERROR")
	// ErrNoKeys is returned when the input text contains no keys.
	ErrNoKeys = errors.New("no keys found in input")
)

// generation numbers runs within the process.
var generation atomic.Uint64

// Options tune a validation run.
type Options struct {
	// Filter selects eligible files. Nil uses the default rule.
	Filter *langfile.Filter
	// Jobs bounds how many files are loaded at once (default runtime.NumCPU()).
	Jobs int
	// Strict aborts the whole run on the first malformed file instead of
	// skipping it.
	Strict bool
}

// Result is the output of a validation run.
type Result struct {
	// Generation increases with every run. Consumers holding a newer
	// generation must discard results from older ones.
	Generation uint64
	Directory  string
	Keys       *extract.Result
	// Outcomes are in directory listing order.
	Outcomes []Outcome
	// Skipped lists files that could not be loaded (non-strict mode only).
	Skipped []*langfile.MalformedFileError
}

// HasProblems reports whether any file has missing or empty keys, or was
// skipped.
func (r *Result) HasProblems() bool {
	if len(r.Skipped) > 0 {
		return true
	}
	for _, o := range r.Outcomes {
		if !o.OK() {
			return true
		}
	}
	return false
}

// Run extracts keys from raw and validates them against every eligible
// translation file in dir.
//
// Errors: langfile.ErrNoEligibleFiles when dir has no translation files,
// ErrNoKeys when raw yields no keys, and ErrValidation for everything else.
func Run(ctx context.Context, dir, raw string, opts Options) (*Result, error) {
	keys := extract.Extract(raw)
	if keys.Len() == 0 {
		return nil, ErrNoKeys
	}
	return RunKeys(ctx, dir, keys, opts)
}

// RunKeys is Run with an already extracted key set.
func RunKeys(ctx context.Context, dir string, keys *extract.Result, opts Options) (*Result, error) {
	gen := generation.Add(1)

	files, err := opts.Filter.List(dir)
	if err != nil {
		if errors.Is(err, langfile.ErrNoEligibleFiles) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	log.Debug().
		Uint64("generation", gen).
		Str("dir", dir).
		Int("files", len(files)).
		Int("keys", keys.Len()).
		Int("jobs", jobs).
		Strs("ignore", opts.Filter.Patterns()).
		Msg("Starting validation")

	// One slot per file keeps listing order regardless of completion order.
	outcomes := make([]*Outcome, len(files))
	failures := make([]*langfile.MalformedFileError, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			dict, err := langfile.LoadDictionary(dir, name)
			if err != nil {
				var mf *langfile.MalformedFileError
				if !errors.As(err, &mf) {
					mf = &langfile.MalformedFileError{File: name, Err: err}
				}
				if opts.Strict {
					return mf
				}
				log.Warn().Err(mf.Err).Str("file", name).Msg("Skipping malformed translation file")
				failures[i] = mf
				return nil
			}

			o := Check(name, keys.Keys, dict)
			outcomes[i] = &o
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	res := &Result{
		Generation: gen,
		Directory:  dir,
		Keys:       keys,
		Outcomes:   make([]Outcome, 0, len(files)),
	}
	for i := range files {
		if outcomes[i] != nil {
			res.Outcomes = append(res.Outcomes, *outcomes[i])
		}
		if failures[i] != nil {
			res.Skipped = append(res.Skipped, failures[i])
		}
	}

	return res, nil
}
