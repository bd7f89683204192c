package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that one pass of the plan is enough for every target",
		Long: `Check applies each target's rules twice in memory and fails when the second
pass still changes something, which means the rule order leaves work behind.
Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			logger.Header(fmt.Sprintf("checking %d target(s)", len(opts.Plan.Targets)))

			results, err := op.Check(ctx)
			if err != nil {
				return errors.Errorf("checking: %w", err)
			}

			var unstable int
			for _, res := range results {
				if res.Err == nil && !res.Converged {
					unstable++
				}
			}

			logger.LogNewline()
			if unstable > 0 {
				return errors.Errorf("%d target(s) do not reach a fixed point in one pass", unstable)
			}
			logger.Success("every target is stable after one pass")
			return nil
		},
	}

	return cmd
}
