/*
Package operation runs the three passes of a storage migration over a plan.

	+-----------+     +-----------+     +-----------+
	|  Analyze  | --> |  Rewrite  | --> |  Imports  |
	| (dry run) |     |  (apply)  |     | (declare) |
	+-----------+     +-----------+     +-----------+

🎯 Purpose:
- Analyze lists every legacy call site a rule would touch, without writing
- Rewrite applies each target's rules in order and writes changed files atomically
- Imports makes sure rewritten files declare the new storage module exactly once
- Check applies the rules twice in memory to prove a single pass is enough

🔄 Flow:
1. Each target is read through a status.FileManager
2. Its rules (rule.Set.ForTarget) are applied in plan order
3. The outcome becomes a result entry; per-file errors never abort the batch
4. A Reporter is told about every result, in plan order, once the pass ends

⚡ Targets are independent. With Options.Jobs > 1 they are processed in
parallel, and results are still returned in plan order.

🔍 Example:

	op, err := operation.New(operation.Options{
		Files:   status.New(root),
		Rules:   set,
		Targets: targets,
		Marker:  "userDataStorage.",
	})
	summary, err := op.Run(ctx)
*/
package operation
