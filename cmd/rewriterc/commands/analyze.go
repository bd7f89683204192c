package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewAnalyzeCmd creates a new analyze command
func NewAnalyzeCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "List legacy storage calls without changing files",
		Long: `Analyze reads every target and lists, per rule, each place the rule would
apply together with its line number. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			logger.Header(fmt.Sprintf("analyzing %d target(s)", len(opts.Plan.Targets)))

			results, err := op.Analyze(ctx)
			if err != nil {
				return errors.Errorf("analyzing: %w", err)
			}

			var matches, files, failed int
			for _, res := range results {
				matches += res.Matches()
				if res.Matches() > 0 {
					files++
				}
				if res.Status == status.StatusFailed {
					failed++
				}
			}

			logger.LogNewline()
			if matches == 0 {
				logger.Success("no legacy storage calls found")
			} else {
				logger.Infof("%d legacy call(s) in %d file(s)", matches, files)
			}

			return strictError(logger, opts, failed)
		},
	}

	return cmd
}

// strictError fails the command when --strict is set and any target failed.
// Without --strict the failures are only reported.
func strictError(logger *log.Logger, opts *opts.RootOpts, failed int) error {
	if failed == 0 {
		return nil
	}
	if opts.Strict {
		return errors.Errorf("%d target(s) failed", failed)
	}
	logger.Errorf("%d target(s) failed", failed)
	return nil
}
