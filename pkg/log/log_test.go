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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/rule"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx := context.Background()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "report_rewrite",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportRewrite(ctx, operation.RewriteResult{
					File:   "TodoList.tsx",
					Status: status.StatusFixed,
					RulesApplied: rule.Counts{
						{Rule: "get", N: 3},
						{Rule: "set", N: 0},
						{Rule: "remove", N: 1},
					},
				})
				logger.ReportRewrite(ctx, operation.RewriteResult{File: "Budget.tsx", Status: status.StatusAlreadyMigrated})
				logger.ReportRewrite(ctx, operation.RewriteResult{File: "Music.tsx", Status: status.StatusUnchanged})
				logger.ReportRewrite(ctx, operation.RewriteResult{File: "Gone.tsx", Status: status.StatusSkipped})
			},
			wantLogs: []string{
				"✅ TodoList.tsx - fixed 2 pattern(s)",
				"✅ Budget.tsx - already migrated",
				"⚠️  Music.tsx - no changes needed",
				"⏭️  Gone.tsx - skipped (not found)",
			},
		},
		{
			name: "report_failed_rewrite",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportRewrite(ctx, operation.RewriteResult{
					File:   "Locked.tsx",
					Status: status.StatusFailed,
					Err:    errors.New("permission denied"),
				})
			},
			wantLogs: []string{
				"❌ Locked.tsx - failed",
				"❌ Error: permission denied",
			},
		},
		{
			name: "report_dry_run_diff",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportRewrite(ctx, operation.RewriteResult{
					File:   "a.tsx",
					Status: status.StatusFixed,
					RulesApplied: rule.Counts{
						{Rule: "get", N: 1},
					},
					Diff: "--- a/a.tsx\n+++ b/a.tsx\n@@ -1 +1 @@\n-localStorage.getItem('x')\n+userDataStorage.getData('x')\n",
				})
			},
			wantLogs: []string{
				"✅ a.tsx - fixed 1 pattern(s)",
				"--- a/a.tsx",
				"+++ b/a.tsx",
				"@@ -1 +1 @@",
				"-localStorage.getItem('x')",
				"+userDataStorage.getData('x')",
			},
		},
		{
			name: "report_analysis",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportAnalysis(ctx, operation.AnalysisResult{
					File:   "TodoList.tsx",
					Status: status.StatusFixed,
					Reports: []operation.MatchReport{{
						File: "TodoList.tsx",
						Rule: "get",
						Occurrences: []operation.Occurrence{
							{Text: "localStorage.getItem('todos')", Line: 4},
							{Text: "localStorage.getItem(\n  'todos')", Line: 9},
						},
					}},
				})
				logger.ReportAnalysis(ctx, operation.AnalysisResult{File: "Done.tsx", Status: status.StatusAlreadyMigrated})
			},
			wantLogs: []string{
				"◆ TodoList.tsx - 2 match(es)",
				"get                      2",
				"L4: localStorage.getItem('todos')",
				"L9: localStorage.getItem( 'todos')",
				"✅ Done.tsx - already migrated",
			},
		},
		{
			name: "report_failed_analysis",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportAnalysis(ctx, operation.AnalysisResult{
					File:   "Locked.tsx",
					Status: status.StatusFailed,
					Err:    errors.New("reading Locked.tsx: permission denied"),
				})
			},
			wantLogs: []string{
				"❌ Locked.tsx - failed",
				"❌ Error: reading Locked.tsx: permission denied",
			},
		},
		{
			name: "report_imports",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportImport(ctx, operation.ImportResult{File: "a.tsx", Status: operation.ImportInserted})
				logger.ReportImport(ctx, operation.ImportResult{File: "b.tsx", Status: operation.ImportPresent})
				logger.ReportImport(ctx, operation.ImportResult{File: "c.tsx", Status: operation.ImportNoAnchor})
			},
			wantLogs: []string{
				"📦 a.tsx - added import",
				"✅ b.tsx - already imported",
				"⚠️  c.tsx - no imports found, skipping",
			},
		},
		{
			name: "report_check",
			op: func(t *testing.T, logger *Logger) {
				logger.ReportCheck(ctx, operation.CheckResult{File: "a.tsx", Converged: true})
				logger.ReportCheck(ctx, operation.CheckResult{File: "b.tsx", Rule: "grow"})
			},
			wantLogs: []string{
				"✅ a.tsx - stable",
				"❌ b.tsx - rule grow fires again on a second pass",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✨ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✨ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("rewriting 15 target(s)")
			},
			wantLogs: []string{
				"rewriterc • rewriting 15 target(s)",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Disabled)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match:\n%s", output)
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerSummary(t *testing.T) {
	color.NoColor = true
	pterm.DisableStyling()
	defer func() {
		color.NoColor = false
		pterm.EnableStyling()
	}()

	buf := &bytes.Buffer{}
	logger := New(buf, zerolog.Disabled)

	logger.Summary(context.Background(), &operation.Summary{
		Targets:         6,
		Fixed:           3,
		AlreadyMigrated: 1,
		Unchanged:       1,
		Skipped:         1,
		ImportsInserted: 3,
		DryRun:          true,
	})

	out := buf.String()
	assert.Contains(t, out, "summary (dry run, nothing written)")
	for _, want := range []string{"fixed", "already-migrated", "unchanged", "skipped", "failed", "imports added"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "⏳ Progress: 5/6 (83%)")
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := context.Background()
	ctx = NewContext(ctx, logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n   b\tc"))

	long := strings.Repeat("x", snippetWidth+10)
	got := snippet(long)
	assert.Len(t, got, snippetWidth)
	assert.True(t, strings.HasSuffix(got, "..."))

	wide := strings.Repeat("é", snippetWidth+10)
	got = snippet(wide)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, snippetWidth, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", snippetWidth-3)+"...", got)
}
