// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree. Console output goes to console.
func newRootCmd(console io.Writer) *cobra.Command {
	o := &opts.RootOpts{Console: console}

	rootCmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Migrate source files to a new storage API with ordered textual rewrite rules",
		Long: `rewriterc applies an ordered plan of pattern rules to an explicit list of files.
Each rule maps a legacy call shape such as localStorage.getItem('{{key}}') to
its replacement, scoped to the storage keys a file is known to use. After
rewriting, the import for the new API is added to every file that uses it.

Without --config the built-in plan for the dashboard components is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), o.Debug)
			cmd.SetContext(ctx)

			if err := loadPlan(ctx, o); err != nil {
				return err
			}
			cmd.SetContext(log.NewContext(ctx, o.Logger))
			return nil
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewAnalyzeCmd(o),
		commands.NewRewriteCmd(o),
		commands.NewImportsCmd(o),
		commands.NewRunCmd(o),
		commands.NewCheckCmd(o),
		commands.NewRulesCmd(o),
		newVersionCmd(console),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "plan file (.hcl, .yaml, .yml or .json); the built-in plan when empty")
	cmd.PersistentFlags().StringVarP(&o.Root, "root", "r", "", "directory target paths are relative to; overrides the plan's root")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().IntVarP(&o.Jobs, "jobs", "j", 1, "number of files processed in parallel")
	cmd.PersistentFlags().BoolVar(&o.Strict, "strict", false, "exit non-zero when any target fails")
	cmd.PersistentFlags().BoolVarP(&o.DryRun, "dry-run", "n", false, "print diffs instead of writing files")
	cmd.PersistentFlags().IntVar(&o.DiffContext, "diff-context", 3, "context lines around each dry run hunk")
	cmd.PersistentFlags().IntVar(&o.DiffMaxBytes, "diff-max-bytes", 1<<20, "omit dry run diffs of files larger than this; 0 means no limit")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// loadPlan loads the plan named by --config, or the built-in one.
func loadPlan(ctx context.Context, o *opts.RootOpts) error {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigFile != "" {
		cfg, err = config.Load(ctx, o.ConfigFile)
	} else {
		cfg, err = config.LoadDefault(ctx)
	}
	if err != nil {
		return errors.Errorf("loading plan: %w", err)
	}

	plan, err := cfg.Plan()
	if err != nil {
		return errors.Errorf("planning: %w", err)
	}

	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}

	o.Config = cfg
	o.Plan = plan
	o.Logger = log.New(o.Console, level)
	zerolog.Ctx(ctx).Debug().Str("plan", cfg.String()).Str("root", o.RootDir()).Msg("plan loaded")
	return nil
}
