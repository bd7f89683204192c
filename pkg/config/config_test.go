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
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hclPlan = `
root   = "web"
marker = "store."

import {
  declaration = "import { store } from './store';"
  anchor      = "^'use client';$"
}

rule "get" {
  match   = "localStorage.getItem('{{key}}')"
  replace = "store.getData('{{key}}')"
}

rule "set" {
  match   = "localStorage.setItem('{{key}}',"
  replace = "store.setData('{{key}}',"
  files   = "**/*.tsx"
}

target "src/App.tsx" {
  keys = ["todos"]
}

target "src/Other.ts" {
  rules  = ["get"]
  import = "import { store } from '../store';"
}
`

const yamlPlan = `
root: web
marker: store.
import:
  declaration: "import { store } from './store';"
  anchor: "^'use client';$"
rules:
  - name: get
    match: "localStorage.getItem('{{key}}')"
    replace: "store.getData('{{key}}')"
  - name: set
    match: "localStorage.setItem('{{key}}',"
    replace: "store.setData('{{key}}',"
    files: "**/*.tsx"
targets:
  - path: src/App.tsx
    keys: [todos]
  - path: src/Other.ts
    rules: [get]
    import: "import { store } from '../store';"
`

const jsonPlan = `{
  "root": "web",
  "marker": "store.",
  "import": {
    "declaration": "import { store } from './store';",
    "anchor": "^'use client';$"
  },
  "rules": [
    {"name": "get", "match": "localStorage.getItem('{{key}}')", "replace": "store.getData('{{key}}')"},
    {"name": "set", "match": "localStorage.setItem('{{key}}',", "replace": "store.setData('{{key}}',", "files": "**/*.tsx"}
  ],
  "targets": [
    {"path": "src/App.tsx", "keys": ["todos"]},
    {"path": "src/Other.ts", "rules": ["get"], "import": "import { store } from '../store';"}
  ]
}`

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.TestWriter{T: t}).WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing config file should succeed")
	return path
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "hcl", file: "rewriterc.hcl", content: hclPlan},
		{name: "yaml", file: "rewriterc.yaml", content: yamlPlan},
		{name: "yml", file: "rewriterc.yml", content: yamlPlan},
		{name: "json", file: "rewriterc.json", content: jsonPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(testContext(t), path)
			require.NoError(t, err, "Load should succeed")

			assert.Equal(t, path, cfg.Location())
			assert.Equal(t, "store.", cfg.Marker)
			require.NotNil(t, cfg.Import)
			assert.Equal(t, "import { store } from './store';", cfg.Import.Declaration)
			require.Len(t, cfg.Rules, 2)
			assert.Equal(t, "get", cfg.Rules[0].Name)
			assert.Equal(t, "**/*.tsx", cfg.Rules[1].Files)
			require.Len(t, cfg.Targets, 2)
			assert.Equal(t, []string{"todos"}, cfg.Targets[0].Keys)
			assert.Equal(t, []string{"get"}, cfg.Targets[1].Rules)

			plan, err := cfg.Plan()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(filepath.Dir(path), "web"), plan.Root)
			assert.Equal(t, 2, plan.Rules.Len())
			assert.Equal(t, "src/App.tsx", plan.Targets[0].Path)
			assert.Equal(t, "import { store } from '../store';", plan.Targets[1].Import)
			assert.Equal(t, "import { store } from './store';", plan.ImportDeclaration)
			require.NotNil(t, plan.ImportAnchor)
			assert.Equal(t, "(?m)^'use client';$", plan.ImportAnchor.String())
			assert.Equal(t, "'use client';", plan.ImportAnchor.FindString("// header\n'use client';\nimport a from 'a';\n"))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		errContains string
	}{
		{
			name:        "unknown_extension",
			file:        "rewriterc.toml",
			content:     "",
			errContains: "no parser found",
		},
		{
			name:        "yaml_unknown_field",
			file:        "rewriterc.yaml",
			content:     "rules: []\ntargets: []\nextra: true\n",
			errContains: "field extra not found",
		},
		{
			name:        "json_unknown_field",
			file:        "rewriterc.json",
			content:     `{"rules": [], "targets": [], "extra": true}`,
			errContains: `unknown field "extra"`,
		},
		{
			name:        "hcl_syntax",
			file:        "rewriterc.hcl",
			content:     "rule \"x\" {",
			errContains: "parsing HCL",
		},
		{
			name:        "no_rules",
			file:        "rewriterc.yaml",
			content:     "targets:\n  - path: a.tsx\n",
			errContains: "at least one rule is required",
		},
		{
			name:        "no_targets",
			file:        "rewriterc.yaml",
			content:     "rules:\n  - {name: get, match: \"get('{{key}}')\", replace: \"x('{{key}}')\"}\n",
			errContains: "at least one target is required",
		},
		{
			name: "bad_pattern",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: bad, match: "{{key}}')", replace: "x"}
targets:
  - path: a.tsx
`,
			errContains: "rule 0",
		},
		{
			name: "template_uses_unknown_capture",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: bad, match: "get('{{key}}')", replace: "x({{value}})"}
targets:
  - path: a.tsx
`,
			errContains: "{{value}}",
		},
		{
			name: "duplicate_rule",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: get, match: "get('{{key}}')", replace: "x('{{key}}')"}
  - {name: get, match: "got('{{key}}')", replace: "x('{{key}}')"}
targets:
  - path: a.tsx
`,
			errContains: `duplicate rule "get"`,
		},
		{
			name: "duplicate_target",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: get, match: "get('{{key}}')", replace: "x('{{key}}')"}
targets:
  - path: a.tsx
  - path: ./a.tsx
`,
			errContains: `duplicate target "a.tsx"`,
		},
		{
			name: "target_names_unknown_rule",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: get, match: "get('{{key}}')", replace: "x('{{key}}')"}
targets:
  - {path: a.tsx, rules: [set]}
`,
			errContains: `unknown rule "set"`,
		},
		{
			name: "bad_glob",
			file: "rewriterc.yaml",
			content: `rules:
  - {name: get, match: "get('{{key}}')", replace: "x('{{key}}')", files: "[a"}
targets:
  - path: a.tsx
`,
			errContains: "rule 0",
		},
		{
			name: "bad_anchor",
			file: "rewriterc.yaml",
			content: `import: {declaration: "import x from 'x';", anchor: "("}
rules:
  - {name: get, match: "get('{{key}}')", replace: "x('{{key}}')"}
targets:
  - path: a.tsx
`,
			errContains: "import anchor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			_, err := Load(testContext(t), path)
			require.Error(t, err, "Load should return error")
			assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(t), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestHCL_EnvVariables(t *testing.T) {
	t.Setenv("REWRITERC_TEST_ROOT", "/srv/app")

	cfg, err := (&HCLParser{}).Parse(testContext(t), []byte(`
root = env.REWRITERC_TEST_ROOT

rule "get" {
  match   = "get('{{key}}')"
  replace = "x('{{key}}')"
}

target "a.tsx" {}
`))
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", cfg.Root)
	assert.Equal(t, "/srv/app", cfg.ResolveRoot())
}

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault(testContext(t))
	require.NoError(t, err)

	plan, err := cfg.Plan()
	require.NoError(t, err)

	assert.Equal(t, "userDataStorage.", plan.Marker)
	assert.Equal(t, "import { userDataStorage } from '../../utils/userDataStorage';", plan.ImportDeclaration)
	assert.Nil(t, plan.ImportAnchor)
	assert.Equal(t, ".", plan.Root)
	assert.Len(t, plan.Targets, 15)

	var names []string
	for _, r := range plan.Rules.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{
		"set-stringify",
		"parse-get-null",
		"parse-get-fallback",
		"parse-get",
		"get",
		"set",
		"remove",
		"unwrap-set",
		"unwrap-parse-null",
		"unwrap-parse-fallback",
		"unwrap-parse",
		"budget-cached-parse",
		"budget-cached-parse-block",
	}, names)
}

func TestDefaultPlan_Rewrites(t *testing.T) {
	cfg, err := LoadDefault(testContext(t))
	require.NoError(t, err)
	plan, err := cfg.Plan()
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		input  string
		want   string
	}{
		{
			name:   "todo_list",
			target: "client/src/components/dashboard/TodoList.tsx",
			input: `const saved = JSON.parse(localStorage.getItem('todos') || '[]');
localStorage.setItem('todos', JSON.stringify(todos));
localStorage.removeItem('todos');
`,
			want: `const saved = userDataStorage.getData('todos') || [];
userDataStorage.setData('todos', todos);
userDataStorage.removeData('todos');
`,
		},
		{
			name:   "half_migrated_settings",
			target: "client/src/components/dashboard/Settings.tsx",
			input: `const s = JSON.parse(userDataStorage.getData('onboarding') || '{}');
userDataStorage.setData('onboarding', JSON.stringify(settings));
`,
			want: `const s = userDataStorage.getData('onboarding') || {};
userDataStorage.setData('onboarding', settings);
`,
		},
		{
			name:   "overview_null_fallback",
			target: "client/src/components/dashboard/Overview.tsx",
			input:  "const o = JSON.parse(localStorage.getItem('onboarding') || 'null');\n",
			want:   "const o = userDataStorage.getData('onboarding');\n",
		},
		{
			name:   "budget_cached",
			target: "client/src/components/dashboard/BudgetTracker.tsx",
			input: `      const cached = localStorage.getItem('budget');
      if (cached) setCategories(JSON.parse(cached));
`,
			want: `      const cached = userDataStorage.getData('budget');
      if (cached && Array.isArray(cached)) setCategories(cached);
`,
		},
		{
			name:   "keys_outside_target_are_kept",
			target: "client/src/components/dashboard/Music.tsx",
			input:  "localStorage.getItem('musicPlaylist'); localStorage.getItem('theme');\n",
			want:   "userDataStorage.getData('musicPlaylist'); localStorage.getItem('theme');\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			for _, target := range plan.Targets {
				if target.Path != tt.target {
					continue
				}
				found = true
				set, err := plan.Rules.ForTarget(target)
				require.NoError(t, err)

				got, _ := set.Apply(tt.input, target.Keys)
				assert.Equal(t, tt.want, got)

				_, again := set.Converges(tt.input, target.Keys)
				assert.Empty(t, again, "the plan should reach a fixed point in one pass")
			}
			require.True(t, found, "target %s should be in the plan", tt.target)
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Root:    "/srv/app",
		Rules:   []RuleArgs{{Name: "a"}, {Name: "b"}},
		Targets: []TargetArgs{{Path: "x.tsx"}},
	}
	assert.Equal(t, "built-in plan: 2 rule(s), 1 target(s) under /srv/app", cfg.String())
}
