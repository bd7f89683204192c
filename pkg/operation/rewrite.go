package operation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/diff"
	"github.com/walteh/rewriterc/pkg/rule"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ✏️ RewriteOptions controls a single-file rewrite
type RewriteOptions struct {
	Marker string
	DryRun bool
	// Diff shapes the preview of a dry run
	Diff diff.Options
}

// RewriteResult is the outcome of rewriting one target.
type RewriteResult struct {
	File         string
	Status       status.FileStatus
	Changed      bool
	RulesApplied rule.Counts
	// Diff is the unified diff of a dry run
	Diff string
	Err  error
}

// Patterns is the number of rules that fired.
func (r RewriteResult) Patterns() int {
	return r.RulesApplied.Fired()
}

// RewriteTarget applies set to the target. A file where nothing matches but
// the marker is present is reported as already migrated and left untouched.
// A missing file is skipped; any other I/O failure is returned in the result
// and never affects other targets.
func RewriteTarget(ctx context.Context, files status.FileManager, target rule.Target, set *rule.Set, opts RewriteOptions) RewriteResult {
	res := RewriteResult{File: target.Path}
	logger := zerolog.Ctx(ctx).With().Str("file", target.Path).Logger()

	content, err := readTarget(ctx, files, target.Path)
	if err != nil {
		res.Status = statusForError(err)
		res.Err = err
		logger.Debug().Err(err).Msg("target not readable")
		return res
	}

	out, counts := set.Apply(content, target.Keys)
	res.RulesApplied = counts

	if counts.Total() == 0 || out == content {
		res.Status = status.StatusUnchanged
		if opts.Marker != "" && strings.Contains(content, opts.Marker) {
			res.Status = status.StatusAlreadyMigrated
		}
		logger.Debug().Stringer("status", res.Status).Msg("nothing to rewrite")
		return res
	}

	res.Status = status.StatusFixed
	res.Changed = true

	if opts.DryRun {
		res.Diff = diff.Unified(target.Path, []byte(content), []byte(out), opts.Diff)
		logger.Debug().Int("rules", counts.Fired()).Msg("dry run, not writing")
		return res
	}

	if err := files.WriteFileAtomic(ctx, target.Path, []byte(out)); err != nil {
		res.Status = status.StatusFailed
		res.Changed = false
		res.Err = errors.Errorf("writing %s: %w", target.Path, err)
		return res
	}

	logger.Debug().
		Int("rules", counts.Fired()).
		Int("replacements", counts.Total()).
		Msg("rewrote target")

	return res
}

// Rewrite applies the plan to every target.
func (o *operator) Rewrite(ctx context.Context) ([]RewriteResult, error) {
	results := make([]RewriteResult, len(o.targets))
	opts := RewriteOptions{Marker: o.opts.Marker, DryRun: o.opts.DryRun, Diff: o.opts.Diff}

	err := o.run.forEach(ctx, len(o.targets), func(ctx context.Context, i int) {
		p := o.targets[i]
		results[i] = RewriteTarget(ctx, o.opts.Files, p.target, p.rules, opts)
	})
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		o.opts.Reporter.ReportRewrite(ctx, res)
	}
	return results, nil
}
