/*
Package config loads migration plans for rewriterc.

	            +-------------+
	            |   Config    |
	            |   (Plan)    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   HCL    | |   YAML   | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads a plan of ordered rules and explicit targets
- Picks a parser by file extension
- Compiles every rule so a bad pattern fails before any file is touched

🔄 Flow:
1. Reads the plan file (or the built-in default.hcl)
2. Parses format-specific syntax into Config
3. Plan() compiles rules and targets into a rule.Set and []rule.Target

An HCL plan looks like this:

	root   = "."
	marker = "userDataStorage."

	import {
	  declaration = "import { userDataStorage } from '../../utils/userDataStorage';"
	}

	rule "get" {
	  match   = "localStorage.getItem('{{key}}')"
	  replace = "userDataStorage.getData('{{key}}')"
	}

	target "client/src/components/dashboard/TodoList.tsx" {
	  keys = ["todos"]
	}

HCL expressions can read the environment through env, e.g. root = env.APP_ROOT.

🔍 Example:

	cfg, err := config.Load(ctx, "rewriterc.hcl")
	if err != nil {
		return err
	}
	plan, err := cfg.Plan()
*/
package config
