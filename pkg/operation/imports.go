package operation

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 ImportOptions describes the declaration to ensure and where it goes
type ImportOptions struct {
	// Declaration is inserted verbatim, e.g. import { x } from './x';
	Declaration string
	// Anchor matches import lines; the declaration goes after the last match
	Anchor *regexp.Regexp
	DryRun bool
}

// ImportStatus is the outcome of ensuring an import in one file.
type ImportStatus int

const (
	ImportUnknown ImportStatus = iota
	ImportInserted
	ImportPresent
	ImportNoAnchor
	ImportSkipped
	ImportFailed
	ImportNoDeclaration
)

func (s ImportStatus) String() string {
	switch s {
	case ImportInserted:
		return "inserted"
	case ImportPresent:
		return "present"
	case ImportNoAnchor:
		return "no-anchor"
	case ImportSkipped:
		return "skipped"
	case ImportFailed:
		return "failed"
	case ImportNoDeclaration:
		return "no-declaration"
	default:
		return "unknown"
	}
}

// ImportResult is the outcome of EnsureImport.
type ImportResult struct {
	File        string
	Declaration string
	Status      ImportStatus
	Err         error
}

// InsertImport returns content with decl on its own line after the last line
// anchor matches. When content already contains decl it is returned as is.
// The inserted line ending follows the anchor line's ending.
func InsertImport(content, decl string, anchor *regexp.Regexp) (string, bool, error) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return content, false, errors.Errorf("import declaration is empty")
	}
	if strings.Contains(content, decl) {
		return content, false, nil
	}
	if anchor == nil {
		anchor = DefaultImportAnchor
	}

	locs := anchor.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return content, false, ErrNoImportAnchor
	}

	end := locs[len(locs)-1][1]
	if i := strings.IndexByte(content[end:], '\n'); i >= 0 {
		end += i
	} else {
		end = len(content)
	}
	eol := "\n"
	if end > 0 && content[end-1] == '\r' {
		end--
		eol = "\r\n"
	}

	return content[:end] + eol + decl + content[end:], true, nil
}

// EnsureImport makes sure the file at path contains the declaration.
func EnsureImport(ctx context.Context, files status.FileManager, path string, opts ImportOptions) ImportResult {
	res := ImportResult{File: path, Declaration: strings.TrimSpace(opts.Declaration)}
	if res.Declaration == "" {
		res.Status = ImportNoDeclaration
		return res
	}

	content, err := readTarget(ctx, files, path)
	if err != nil {
		res.Err = err
		res.Status = ImportFailed
		if errors.Is(err, ErrMissingFile) {
			res.Status = ImportSkipped
		}
		return res
	}

	out, inserted, err := InsertImport(content, res.Declaration, opts.Anchor)
	switch {
	case errors.Is(err, ErrNoImportAnchor):
		res.Status = ImportNoAnchor
		res.Err = errors.Errorf("%s: %w", path, err)
		zerolog.Ctx(ctx).Warn().Str("file", path).Msg("no import statement found, leaving file unchanged")
		return res
	case err != nil:
		res.Status = ImportFailed
		res.Err = err
		return res
	case !inserted:
		res.Status = ImportPresent
		return res
	}

	res.Status = ImportInserted
	if opts.DryRun {
		return res
	}

	if err := files.WriteFileAtomic(ctx, path, []byte(out)); err != nil {
		res.Status = ImportFailed
		res.Err = errors.Errorf("writing %s: %w", path, err)
		return res
	}

	zerolog.Ctx(ctx).Debug().Str("file", path).Msg("inserted import")
	return res
}

// Imports ensures the import in every target.
func (o *operator) Imports(ctx context.Context) ([]ImportResult, error) {
	all := make([]int, len(o.targets))
	for i := range all {
		all[i] = i
	}
	return o.imports(ctx, all)
}

func (o *operator) imports(ctx context.Context, indices []int) ([]ImportResult, error) {
	results := make([]ImportResult, len(indices))
	err := o.run.forEach(ctx, len(indices), func(ctx context.Context, i int) {
		p := o.targets[indices[i]]
		results[i] = EnsureImport(ctx, o.opts.Files, p.target.Path, o.declarationFor(p.target))
	})
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		o.opts.Reporter.ReportImport(ctx, res)
	}
	return results, nil
}
