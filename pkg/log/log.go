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
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent   = 4  // spaces to indent nested entries
	ruleWidth    = 24 // width for rule names in analysis listings
	snippetWidth = 96 // longest match text shown before truncating
)

// 🎯 Logger prints per-file results to the console and mirrors them as
// structured zerolog events
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.FileFormatter
	mu        sync.Mutex
}

var _ operation.Reporter = (*Logger)(nil)

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFileFormatter(),
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func statusColor(s status.FileStatus) *color.Color {
	switch s {
	case status.StatusFixed:
		return color.New(color.FgGreen)
	case status.StatusAlreadyMigrated:
		return color.New(color.FgCyan)
	case status.StatusUnchanged:
		return color.New(color.FgYellow)
	case status.StatusSkipped:
		return color.New(color.Faint)
	case status.StatusFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

func indent(n int) string {
	return strings.Repeat(" ", n)
}

// snippet collapses a match to one line and bounds its width.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > snippetWidth {
		return string(runes[:snippetWidth-3]) + "..."
	}
	return text
}

// 📝 ReportRewrite prints one rewrite outcome and, for dry runs, its diff
func (l *Logger) ReportRewrite(ctx context.Context, res operation.RewriteResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := l.formatter.FormatOutcome(res.File, res.Status, res.Patterns())
	fmt.Fprintln(l.console, statusColor(res.Status).Sprint(line))

	if res.Status == status.StatusFailed && res.Err != nil {
		fmt.Fprintf(l.console, "%s%s\n", indent(fileIndent), color.New(color.Faint).Sprint(l.formatter.FormatError(res.Err)))
	}
	if res.Diff != "" {
		l.printDiff(res.Diff)
	}

	l.zlog.Debug().
		Str("file", res.File).
		Stringer("status", res.Status).
		Int("rules", res.Patterns()).
		Int("count", res.RulesApplied.Total()).
		Err(res.Err).
		Msg("rewrite")
}

func (l *Logger) printDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(l.console, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(l.console, color.New(color.FgCyan).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(l.console, color.New(color.FgGreen).Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(l.console, color.New(color.FgRed).Sprint(line))
		default:
			fmt.Fprint(l.console, line)
		}
	}
}

// 📝 ReportAnalysis lists the legacy call sites found in one file
func (l *Logger) ReportAnalysis(ctx context.Context, res operation.AnalysisResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch res.Status {
	case status.StatusFixed:
		fmt.Fprintf(l.console, "%s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprintf("%s - %d match(es)", res.File, res.Matches()))
		for _, rep := range res.Reports {
			fmt.Fprintf(l.console, "%s%s %s\n",
				indent(fileIndent),
				color.New(color.FgCyan).Sprintf("%-*s", ruleWidth, rep.Rule),
				color.New(color.Faint).Sprintf("%d", len(rep.Occurrences)))
			for _, occ := range rep.Occurrences {
				fmt.Fprintf(l.console, "%sL%d: %s\n", indent(fileIndent*2), occ.Line, snippet(occ.Text))
			}
		}
	case status.StatusAlreadyMigrated:
		fmt.Fprintln(l.console, statusColor(res.Status).Sprintf("✅ %s - already migrated", res.File))
	case status.StatusUnchanged:
		fmt.Fprintln(l.console, statusColor(res.Status).Sprintf("⚠️  %s - no legacy calls", res.File))
	default:
		fmt.Fprintln(l.console, statusColor(res.Status).Sprint(l.formatter.FormatOutcome(res.File, res.Status, 0)))
		if res.Status == status.StatusFailed && res.Err != nil {
			fmt.Fprintf(l.console, "%s%s\n", indent(fileIndent), color.New(color.Faint).Sprint(l.formatter.FormatError(res.Err)))
		}
	}

	l.zlog.Debug().
		Str("file", res.File).
		Stringer("status", res.Status).
		Int("count", res.Matches()).
		Err(res.Err).
		Msg("analysis")
}

// 📝 ReportImport prints the outcome of ensuring the import in one file
func (l *Logger) ReportImport(ctx context.Context, res operation.ImportResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var line string
	c := color.New(color.Reset)
	switch res.Status {
	case operation.ImportInserted:
		line = fmt.Sprintf("📦 %s - added import", res.File)
		c = color.New(color.FgGreen)
	case operation.ImportPresent:
		line = fmt.Sprintf("✅ %s - already imported", res.File)
		c = color.New(color.FgCyan)
	case operation.ImportNoAnchor:
		line = fmt.Sprintf("⚠️  %s - no imports found, skipping", res.File)
		c = color.New(color.FgYellow)
	case operation.ImportSkipped:
		line = fmt.Sprintf("⏭️  %s - skipped (not found)", res.File)
		c = color.New(color.Faint)
	case operation.ImportNoDeclaration:
		line = fmt.Sprintf("⏭️  %s - no import declaration configured", res.File)
		c = color.New(color.Faint)
	default:
		line = fmt.Sprintf("❌ %s - import failed", res.File)
		c = color.New(color.FgRed)
	}
	fmt.Fprintln(l.console, c.Sprint(line))

	ev := l.zlog.Debug()
	if res.Status == operation.ImportNoAnchor || res.Status == operation.ImportFailed {
		ev = l.zlog.Warn()
	}
	ev.Str("file", res.File).Stringer("status", res.Status).Err(res.Err).Msg("import")
}

// 📝 ReportCheck prints whether one file reaches a fixed point
func (l *Logger) ReportCheck(ctx context.Context, res operation.CheckResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case res.Err != nil:
		fmt.Fprintln(l.console, statusColor(res.Status).Sprint(l.formatter.FormatOutcome(res.File, res.Status, 0)))
	case res.Converged:
		fmt.Fprintln(l.console, color.New(color.FgGreen).Sprintf("✅ %s - stable", res.File))
	default:
		fmt.Fprintln(l.console, color.New(color.FgRed).Sprintf("❌ %s - rule %s fires again on a second pass", res.File, res.Rule))
	}

	l.zlog.Debug().
		Str("file", res.File).
		Bool("converged", res.Converged).
		Str("rule", res.Rule).
		Err(res.Err).
		Msg("check")
}

// 📊 Summary renders the totals of a run as a table
func (l *Logger) Summary(ctx context.Context, s *operation.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{
		{"result", "files"},
		{status.StatusFixed.String(), strconv.Itoa(s.Fixed)},
		{status.StatusAlreadyMigrated.String(), strconv.Itoa(s.AlreadyMigrated)},
		{status.StatusUnchanged.String(), strconv.Itoa(s.Unchanged)},
		{status.StatusSkipped.String(), strconv.Itoa(s.Skipped)},
		{status.StatusFailed.String(), strconv.Itoa(s.Failed)},
		{"imports added", strconv.Itoa(s.ImportsInserted)},
		{"import warnings", strconv.Itoa(s.ImportWarnings)},
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		l.zlog.Error().Err(err).Msg("rendering summary table")
		return
	}

	title := "summary"
	if s.DryRun {
		title = "summary (dry run, nothing written)"
	}
	fmt.Fprintf(l.console, "\n%s\n%s\n", color.New(color.Bold).Sprint(title), table)

	// skipped and failed targets still need attention
	done := s.Fixed + s.AlreadyMigrated + s.Unchanged
	fmt.Fprintln(l.console, l.formatter.FormatProgress(done, s.Targets))

	l.zlog.Info().
		Int("targets", s.Targets).
		Int("fixed", s.Fixed).
		Int("already_migrated", s.AlreadyMigrated).
		Int("unchanged", s.Unchanged).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("replacements", s.Replacements).
		Msg("summary")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✨ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
