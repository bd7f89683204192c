package operation

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/walteh/rewriterc/pkg/status"
)

// mockFileManager is a testify mock of status.FileManager.
type mockFileManager struct {
	mock.Mock
}

var _ status.FileManager = (*mockFileManager)(nil)

func (m *mockFileManager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

func (m *mockFileManager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	args := m.Called(ctx, path, content)
	return args.Error(0)
}

func (m *mockFileManager) FileExists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

// recordingReporter keeps the order results were reported in.
type recordingReporter struct {
	analyses []AnalysisResult
	rewrites []RewriteResult
	imports  []ImportResult
	checks   []CheckResult
}

func (r *recordingReporter) ReportAnalysis(_ context.Context, res AnalysisResult) {
	r.analyses = append(r.analyses, res)
}

func (r *recordingReporter) ReportRewrite(_ context.Context, res RewriteResult) {
	r.rewrites = append(r.rewrites, res)
}

func (r *recordingReporter) ReportImport(_ context.Context, res ImportResult) {
	r.imports = append(r.imports, res)
}

func (r *recordingReporter) ReportCheck(_ context.Context, res CheckResult) {
	r.checks = append(r.checks, res)
}
