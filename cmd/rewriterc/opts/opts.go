package opts

import (
	"io"

	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/diff"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands. Flag values are
// bound before parsing; Config, Plan and Logger are set by the root
// command's pre-run hook.
type RootOpts struct {
	ConfigFile string
	Root       string
	Debug      bool
	Jobs       int
	Strict     bool
	DryRun     bool

	DiffContext  int
	DiffMaxBytes int

	Console io.Writer
	Config  *config.Config
	Plan    *config.Plan
	Logger  *log.Logger
}

// RootDir is the directory target paths are resolved against: the --root
// flag when given, otherwise the plan's own root.
func (o *RootOpts) RootDir() string {
	if o.Root != "" {
		return o.Root
	}
	return o.Plan.Root
}

// Operator builds an operator for the loaded plan.
func (o *RootOpts) Operator() (operation.Operator, error) {
	if o.Plan == nil {
		return nil, errors.Errorf("no plan loaded")
	}

	op, err := operation.New(operation.Options{
		Files:   status.New(o.RootDir()),
		Rules:   o.Plan.Rules,
		Targets: o.Plan.Targets,
		Marker:  o.Plan.Marker,
		Import: operation.ImportOptions{
			Declaration: o.Plan.ImportDeclaration,
			Anchor:      o.Plan.ImportAnchor,
		},
		Diff: diff.Options{
			Context:  o.DiffContext,
			MaxBytes: o.DiffMaxBytes,
		},
		DryRun:   o.DryRun,
		Jobs:     o.Jobs,
		Reporter: o.Logger,
	})
	if err != nil {
		return nil, errors.Errorf("creating operator: %w", err)
	}
	return op, nil
}
