package status

import (
	"fmt"
)

// FileFormatter defines how per-file outcomes and progress are worded
type FileFormatter interface {
	// FormatOutcome formats the result of a pass over one file
	FormatOutcome(path string, status FileStatus, patterns int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatOutcome formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatOutcome(path string, status FileStatus, patterns int) string {
	switch status {
	case StatusFixed:
		return fmt.Sprintf("✅ %s - fixed %d pattern(s)", path, patterns)
	case StatusAlreadyMigrated:
		return fmt.Sprintf("✅ %s - already migrated", path)
	case StatusUnchanged:
		return fmt.Sprintf("⚠️  %s - no changes needed", path)
	case StatusSkipped:
		return fmt.Sprintf("⏭️  %s - skipped (not found)", path)
	case StatusFailed:
		return fmt.Sprintf("❌ %s - failed", path)
	default:
		return fmt.Sprintf("❔ %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
