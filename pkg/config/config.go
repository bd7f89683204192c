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

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

//go:embed default.hcl
var defaultPlan []byte

// DefaultPlan returns the HCL source of the built-in migration plan.
func DefaultPlan() []byte {
	return append([]byte(nil), defaultPlan...)
}

// 📦 ImportArgs is the import declaration added to migrated files
type ImportArgs struct {
	Declaration string `json:"declaration" yaml:"declaration"`
	// Anchor is a regular expression for import lines; the declaration goes
	// after the last match. It is compiled in multi-line mode, so ^ and $
	// match at line boundaries.
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// 🔄 RuleArgs is one rewrite rule
type RuleArgs struct {
	Name    string   `json:"name" yaml:"name"`
	Match   string   `json:"match" yaml:"match"`
	Replace string   `json:"replace" yaml:"replace"`
	Keys    []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Files   string   `json:"files,omitempty" yaml:"files,omitempty"`
	Loose   bool     `json:"loose,omitempty" yaml:"loose,omitempty"`
}

// 📄 TargetArgs is one file to migrate
type TargetArgs struct {
	Path   string   `json:"path" yaml:"path"`
	Keys   []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	Rules  []string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Import string   `json:"import,omitempty" yaml:"import,omitempty"`
}

// 📚 Config represents the complete migration plan as written
type Config struct {
	Root    string       `json:"root,omitempty" yaml:"root,omitempty"`
	Marker  string       `json:"marker,omitempty" yaml:"marker,omitempty"`
	Import  *ImportArgs  `json:"import,omitempty" yaml:"import,omitempty"`
	Rules   []RuleArgs   `json:"rules" yaml:"rules"`
	Targets []TargetArgs `json:"targets" yaml:"targets"`

	location string
}

// 🗺️ Plan is a validated config, ready to run
type Plan struct {
	Root              string
	Marker            string
	Rules             *rule.Set
	Targets           []rule.Target
	ImportDeclaration string
	ImportAnchor      *regexp.Regexp
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDefault parses the built-in plan.
func LoadDefault(ctx context.Context) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Msg("loading built-in plan")

	cfg, err := (&HCLParser{}).Parse(ctx, defaultPlan)
	if err != nil {
		return nil, errors.Errorf("parsing built-in plan: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating built-in plan: %w", err)
	}
	return cfg, nil
}

// Location is the file the config was loaded from, or "" for the built-in plan.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks that every rule compiles and every target is well formed
func (cfg *Config) Validate() error {
	_, err := cfg.Plan()
	return err
}

// ResolveRoot returns the directory target paths are relative to. A relative
// root is taken relative to the config file.
func (cfg *Config) ResolveRoot() string {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) || cfg.location == "" {
		return filepath.Clean(root)
	}
	return filepath.Join(filepath.Dir(cfg.location), root)
}

// 🏗️ Plan compiles the rules and targets
func (cfg *Config) Plan() (*Plan, error) {
	if len(cfg.Rules) == 0 {
		return nil, errors.Errorf("at least one rule is required")
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.Errorf("at least one target is required")
	}

	rules := make([]*rule.Rule, 0, len(cfg.Rules))
	for i, r := range cfg.Rules {
		compiled, err := rule.Compile(rule.Definition{
			Name:    r.Name,
			Match:   r.Match,
			Replace: r.Replace,
			Keys:    r.Keys,
			Files:   r.Files,
			Loose:   r.Loose,
		})
		if err != nil {
			return nil, errors.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, compiled)
	}

	set, err := rule.NewSet(rules...)
	if err != nil {
		return nil, err
	}

	targets := make([]rule.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		target := rule.Target{
			Keys:   t.Keys,
			Rules:  t.Rules,
			Import: t.Import,
		}
		if t.Path != "" {
			target.Path = filepath.ToSlash(filepath.Clean(t.Path))
		}
		targets = append(targets, target)
	}
	if err := rule.ValidateTargets(targets); err != nil {
		return nil, err
	}
	for _, t := range targets {
		if _, err := set.ForTarget(t); err != nil {
			return nil, err
		}
	}

	plan := &Plan{
		Root:    cfg.ResolveRoot(),
		Marker:  cfg.Marker,
		Rules:   set,
		Targets: targets,
	}

	if cfg.Import != nil {
		plan.ImportDeclaration = cfg.Import.Declaration
		if cfg.Import.Anchor != "" {
			anchor, err := regexp.Compile("(?m)" + cfg.Import.Anchor)
			if err != nil {
				return nil, errors.Errorf("import anchor: %w", err)
			}
			plan.ImportAnchor = anchor
		}
	}

	return plan, nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	src := cfg.location
	if src == "" {
		src = "built-in plan"
	}
	return fmt.Sprintf("%s: %d rule(s), %d target(s) under %s", src, len(cfg.Rules), len(cfg.Targets), cfg.ResolveRoot())
}
