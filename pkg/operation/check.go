package operation

import (
	"context"

	"github.com/walteh/rewriterc/pkg/status"
)

// ♻️ CheckResult says whether a target reaches a fixed point in one pass
type CheckResult struct {
	File string
	// Status is skipped or failed when the file could not be read
	Status    status.FileStatus
	Converged bool
	// Rule is the first rule that still fires on a second pass
	Rule string
	Err  error
}

// Check applies each target's rules twice in memory. Nothing is written.
func (o *operator) Check(ctx context.Context) ([]CheckResult, error) {
	results := make([]CheckResult, len(o.targets))
	err := o.run.forEach(ctx, len(o.targets), func(ctx context.Context, i int) {
		p := o.targets[i]
		res := CheckResult{File: p.target.Path}

		content, err := readTarget(ctx, o.opts.Files, p.target.Path)
		if err != nil {
			res.Status = statusForError(err)
			res.Err = err
			results[i] = res
			return
		}

		_, res.Rule = p.rules.Converges(content, p.target.Keys)
		res.Converged = res.Rule == ""
		res.Status = status.StatusUnchanged
		results[i] = res
	})
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		o.opts.Reporter.ReportCheck(ctx, res)
	}
	return results, nil
}
