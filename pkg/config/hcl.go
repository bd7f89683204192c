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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Expressions may read environment
// variables through the env object, e.g. root = env.PROJECT_ROOT.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rewriterc.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Root   string `hcl:"root,optional"`
		Marker string `hcl:"marker,optional"`
		Import *struct {
			Declaration string `hcl:"declaration"`
			Anchor      string `hcl:"anchor,optional"`
		} `hcl:"import,block"`
		Rules []struct {
			Name    string   `hcl:"name,label"`
			Match   string   `hcl:"match"`
			Replace string   `hcl:"replace"`
			Keys    []string `hcl:"keys,optional"`
			Files   string   `hcl:"files,optional"`
			Loose   bool     `hcl:"loose,optional"`
		} `hcl:"rule,block"`
		Targets []struct {
			Path   string   `hcl:"path,label"`
			Keys   []string `hcl:"keys,optional"`
			Rules  []string `hcl:"rules,optional"`
			Import string   `hcl:"import,optional"`
		} `hcl:"target,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Root:   hclCfg.Root,
		Marker: hclCfg.Marker,
	}
	if hclCfg.Import != nil {
		cfg.Import = &ImportArgs{
			Declaration: hclCfg.Import.Declaration,
			Anchor:      hclCfg.Import.Anchor,
		}
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, RuleArgs{
			Name:    r.Name,
			Match:   r.Match,
			Replace: r.Replace,
			Keys:    r.Keys,
			Files:   r.Files,
			Loose:   r.Loose,
		})
	}
	for _, t := range hclCfg.Targets {
		cfg.Targets = append(cfg.Targets, TargetArgs{
			Path:   t.Path,
			Keys:   t.Keys,
			Rules:  t.Rules,
			Import: t.Import,
		})
	}

	return cfg, nil
}

// envObject exposes the process environment to HCL expressions.
func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
