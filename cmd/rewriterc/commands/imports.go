package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewImportsCmd creates a new imports command
func NewImportsCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Add the storage import to every target",
		Long: `Imports inserts the plan's import declaration after the last import
statement of each target, unless the file already contains it. Files with
no import statement are left unchanged and reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			logger.Header(fmt.Sprintf("adding imports to %d target(s)", len(opts.Plan.Targets)))

			results, err := op.Imports(ctx)
			if err != nil {
				return errors.Errorf("adding imports: %w", err)
			}

			summary := &operation.Summary{DryRun: opts.DryRun}
			var failed int
			for _, res := range results {
				summary.AddImport(res)
				if res.Status == operation.ImportFailed {
					failed++
				}
			}

			logger.LogNewline()
			logger.Successf("%d import(s) added, %d already present", summary.ImportsInserted, summary.ImportsPresent)
			if summary.ImportWarnings > 0 {
				logger.Warningf("%d file(s) need the import added by hand", summary.ImportWarnings)
			}

			return strictError(logger, opts, failed)
		},
	}

	return cmd
}
