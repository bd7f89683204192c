package operation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/rule"
	"github.com/walteh/rewriterc/pkg/status"
)

// Occurrence is one legacy call site.
type Occurrence struct {
	Text string
	Line int
}

// 🔍 MatchReport lists where one rule matched in one file
type MatchReport struct {
	File        string
	Rule        string
	Pattern     string
	Occurrences []Occurrence
}

// AnalysisResult is the analysis of one target.
type AnalysisResult struct {
	File    string
	Status  status.FileStatus
	Reports []MatchReport
	Err     error
}

// Matches returns the number of occurrences across all rules.
func (r AnalysisResult) Matches() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Occurrences)
	}
	return n
}

// AnalyzeTarget finds every place a rule of set matches in the target. The
// file is not modified. Matches are reported against the original content,
// so a later rule that would only fire after an earlier rewrite is not listed.
func AnalyzeTarget(ctx context.Context, files status.FileManager, target rule.Target, set *rule.Set) ([]MatchReport, error) {
	content, err := readTarget(ctx, files, target.Path)
	if err != nil {
		return nil, err
	}
	return analyzeContent(target.Path, content, target.Keys, set), nil
}

func analyzeContent(path, content string, keys []string, set *rule.Set) []MatchReport {
	var reports []MatchReport
	for _, r := range set.Rules() {
		matches := r.Find(content, keys)
		if len(matches) == 0 {
			continue
		}
		rep := MatchReport{
			File:    path,
			Rule:    r.Name(),
			Pattern: r.Pattern().String(),
		}
		for _, m := range matches {
			rep.Occurrences = append(rep.Occurrences, Occurrence{
				Text: m.Text,
				Line: 1 + strings.Count(content[:m.Start], "\n"),
			})
		}
		reports = append(reports, rep)
	}
	return reports
}

func (o *operator) analyze(ctx context.Context, p planned) AnalysisResult {
	res := AnalysisResult{File: p.target.Path}

	content, err := readTarget(ctx, o.opts.Files, p.target.Path)
	if err != nil {
		res.Status = statusForError(err)
		res.Err = err
		return res
	}

	res.Reports = analyzeContent(p.target.Path, content, p.target.Keys, p.rules)
	switch {
	case len(res.Reports) > 0:
		res.Status = status.StatusFixed
	case o.opts.Marker != "" && strings.Contains(content, o.opts.Marker):
		res.Status = status.StatusAlreadyMigrated
	default:
		res.Status = status.StatusUnchanged
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", res.File).
		Int("matches", res.Matches()).
		Stringer("status", res.Status).
		Msg("analyzed target")

	return res
}

// Analyze reports legacy call sites in every target.
func (o *operator) Analyze(ctx context.Context) ([]AnalysisResult, error) {
	results := make([]AnalysisResult, len(o.targets))
	err := o.run.forEach(ctx, len(o.targets), func(ctx context.Context, i int) {
		results[i] = o.analyze(ctx, o.targets[i])
	})
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		o.opts.Reporter.ReportAnalysis(ctx, res)
	}
	return results, nil
}
