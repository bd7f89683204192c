package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRewriteCmd creates a new rewrite command
func NewRewriteCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Apply the rules to every target",
		Long: `Rewrite applies each target's rules in plan order and replaces the file
when anything changed. A file where nothing matches but the new API is
already used is reported as already migrated. Imports are not touched;
use run for the full migration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			logger.Header(fmt.Sprintf("rewriting %d target(s)", len(opts.Plan.Targets)))

			results, err := op.Rewrite(ctx)
			if err != nil {
				return errors.Errorf("rewriting: %w", err)
			}

			summary := &operation.Summary{DryRun: opts.DryRun}
			for _, res := range results {
				summary.AddRewrite(res)
			}
			logger.Summary(ctx, summary)

			return strictError(logger, opts, summary.Failed)
		},
	}

	return cmd
}
