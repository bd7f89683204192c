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

package operation

import (
	"context"
	"os"
	"regexp"

	"github.com/walteh/rewriterc/pkg/diff"
	"github.com/walteh/rewriterc/pkg/rule"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrMissingFile marks a target whose path does not exist.
	ErrMissingFile = errors.New("file not found")
	// ErrNoImportAnchor marks a file with no import statement to insert after.
	ErrNoImportAnchor = errors.New("no import statement to anchor on")
)

// 🎯 Operator runs the migration passes over every target of a plan
type Operator interface {
	// Analyze reports legacy call sites without modifying any file
	Analyze(ctx context.Context) ([]AnalysisResult, error)
	// Rewrite applies each target's rules and writes changed files
	Rewrite(ctx context.Context) ([]RewriteResult, error)
	// Imports ensures every target declares the new storage import
	Imports(ctx context.Context) ([]ImportResult, error)
	// Check verifies that a second rewrite pass would change nothing
	Check(ctx context.Context) ([]CheckResult, error)
	// Run rewrites, then adds imports to the files that use the new API
	Run(ctx context.Context) (*Summary, error)
}

// 📢 Reporter is told about every per-target result, in plan order
type Reporter interface {
	ReportAnalysis(ctx context.Context, res AnalysisResult)
	ReportRewrite(ctx context.Context, res RewriteResult)
	ReportImport(ctx context.Context, res ImportResult)
	ReportCheck(ctx context.Context, res CheckResult)
}

type nopReporter struct{}

func (nopReporter) ReportAnalysis(context.Context, AnalysisResult) {}
func (nopReporter) ReportRewrite(context.Context, RewriteResult)   {}
func (nopReporter) ReportImport(context.Context, ImportResult)     {}
func (nopReporter) ReportCheck(context.Context, CheckResult)       {}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Files reads and writes targets
	Files status.FileManager
	// Rules is the ordered rule set of the plan
	Rules *rule.Set
	// Targets is the explicit list of files to process
	Targets []rule.Target
	// Marker is a string whose presence shows a file already uses the new API
	Marker string
	// Import is the default import declaration and anchor
	Import ImportOptions
	// DryRun computes results and diffs without writing
	DryRun bool
	// Diff shapes the dry run previews
	Diff diff.Options
	// Jobs is the number of targets processed in parallel; <= 1 is sequential
	Jobs int
	// Reporter receives results; nil discards them
	Reporter Reporter
}

// 🎮 operator implements the Operator interface
type operator struct {
	opts    Options
	targets []planned
	run     runner
}

// planned is a target paired with the rules that apply to it.
type planned struct {
	target rule.Target
	rules  *rule.Set
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Rules == nil {
		return nil, errors.Errorf("rule set is required")
	}
	if err := rule.ValidateTargets(opts.Targets); err != nil {
		return nil, errors.Errorf("validating targets: %w", err)
	}
	if opts.Import.Anchor == nil {
		opts.Import.Anchor = DefaultImportAnchor
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}

	targets := make([]planned, 0, len(opts.Targets))
	for _, t := range opts.Targets {
		set, err := opts.Rules.ForTarget(t)
		if err != nil {
			return nil, errors.Errorf("planning target: %w", err)
		}
		targets = append(targets, planned{target: t, rules: set})
	}

	return &operator{
		opts:    opts,
		targets: targets,
		run:     runner{jobs: opts.Jobs},
	}, nil
}

// readTarget reads a target and classifies a missing file as ErrMissingFile.
func readTarget(ctx context.Context, files status.FileManager, path string) (string, error) {
	content, err := files.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.Errorf("%w: %s", ErrMissingFile, path)
		}
		return "", errors.Errorf("reading %s: %w", path, err)
	}
	return string(content), nil
}

// statusForError maps a per-target error to its terminal status.
func statusForError(err error) status.FileStatus {
	if errors.Is(err, ErrMissingFile) {
		return status.StatusSkipped
	}
	return status.StatusFailed
}

// declarationFor picks the target's own import declaration over the default.
func (o *operator) declarationFor(t rule.Target) ImportOptions {
	opts := o.opts.Import
	if t.Import != "" {
		opts.Declaration = t.Import
	}
	opts.DryRun = o.opts.DryRun
	return opts
}

// DefaultImportAnchor matches complete single-line imports, side-effect
// imports and the closing line of a multi-line import, indented or not. The
// opening line of a multi-line import never matches.
var DefaultImportAnchor = regexp.MustCompile(`(?m)^(?:import\s.*\bfrom\s+['"].*|import\s+['"].*|[ \t]*\}\s*from\s+['"].*)$`)
