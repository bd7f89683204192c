package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates a new run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite every target, then add the storage import where it is used",
		Long: `Run is the full migration. It will:
1. Rewrite every target with its rules
2. Add the import to each file that was fixed or already uses the new API
3. Print a summary of every outcome`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			logger.Header(fmt.Sprintf("migrating %d target(s)", len(opts.Plan.Targets)))

			summary, err := op.Run(ctx)
			if err != nil {
				return errors.Errorf("running migration: %w", err)
			}

			logger.Summary(ctx, summary)

			return strictError(logger, opts, summary.Failed)
		},
	}

	return cmd
}
