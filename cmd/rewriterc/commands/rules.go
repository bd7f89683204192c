package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates a new rules command
func NewRulesCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the plan: rules in application order and targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan := opts.Plan
			files := status.New(opts.RootDir())

			rules := pterm.TableData{{"#", "rule", "match", "replace", "files"}}
			for i, r := range plan.Rules.Rules() {
				def := r.Definition()
				glob := def.Files
				if glob == "" {
					glob = "*"
				}
				rules = append(rules, []string{strconv.Itoa(i + 1), def.Name, def.Match, def.Replace, glob})
			}

			targets := pterm.TableData{{"target", "keys", "rules", "found"}}
			for _, t := range plan.Targets {
				keys := strings.Join(t.Keys, ", ")
				if keys == "" {
					keys = "any"
				}
				names := strings.Join(t.Rules, ", ")
				if names == "" {
					names = "all"
				}
				exists, err := files.FileExists(ctx, t.Path)
				if err != nil {
					return errors.Errorf("checking target %s: %w", t.Path, err)
				}
				found := "no"
				if exists {
					found = "yes"
				}
				targets = append(targets, []string{t.Path, keys, names, found})
			}

			for _, table := range []pterm.TableData{rules, targets} {
				out, err := pterm.DefaultTable.WithHasHeader().WithData(table).Srender()
				if err != nil {
					return errors.Errorf("rendering table: %w", err)
				}
				fmt.Fprintf(opts.Console, "%s\n\n", out)
			}

			fmt.Fprintf(opts.Console, "root: %s\nmarker: %s\nimport: %s\n", opts.RootDir(), plan.Marker, plan.ImportDeclaration)
			return nil
		},
	}

	return cmd
}
