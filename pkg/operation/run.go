package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
)

// 📈 Summary tallies a full run
type Summary struct {
	Targets         int
	Fixed           int
	Unchanged       int
	AlreadyMigrated int
	Skipped         int
	Failed          int
	Replacements    int
	ImportsInserted int
	ImportsPresent  int
	ImportWarnings  int
	DryRun          bool

	Rewrites []RewriteResult
	Imports  []ImportResult
}

// AddRewrite counts one rewrite outcome.
func (s *Summary) AddRewrite(res RewriteResult) {
	s.Targets++
	s.Rewrites = append(s.Rewrites, res)
	switch res.Status {
	case status.StatusFixed:
		s.Fixed++
		s.Replacements += res.RulesApplied.Total()
	case status.StatusUnchanged:
		s.Unchanged++
	case status.StatusAlreadyMigrated:
		s.AlreadyMigrated++
	case status.StatusSkipped:
		s.Skipped++
	case status.StatusFailed:
		s.Failed++
	}
}

// AddImport counts one import outcome.
func (s *Summary) AddImport(res ImportResult) {
	s.Imports = append(s.Imports, res)
	switch res.Status {
	case ImportInserted:
		s.ImportsInserted++
	case ImportPresent:
		s.ImportsPresent++
	case ImportNoAnchor, ImportFailed:
		s.ImportWarnings++
	}
}

// HasFailures reports whether any target failed with an I/O error.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run rewrites every target and then ensures the import in each file that
// was fixed or already uses the new API. Files left unchanged or skipped
// do not get an import.
func (o *operator) Run(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := &Summary{DryRun: o.opts.DryRun}

	rewrites, err := o.Rewrite(ctx)
	if err != nil {
		return nil, err
	}

	var eligible []int
	for i, res := range rewrites {
		summary.AddRewrite(res)
		if res.Status == status.StatusFixed || res.Status == status.StatusAlreadyMigrated {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) == 0 {
		logger.Debug().Msg("no files need the import")
		return summary, nil
	}

	imports, err := o.imports(ctx, eligible)
	if err != nil {
		return nil, err
	}
	for _, res := range imports {
		summary.AddImport(res)
	}

	logger.Info().
		Int("fixed", summary.Fixed).
		Int("already_migrated", summary.AlreadyMigrated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("imports_inserted", summary.ImportsInserted).
		Msg("run complete")

	return summary, nil
}
