/*
Package transfer implements the confirm-then-delete pipeline at the heart of
syncmv.

	+--------------+
	| Orchestrator |
	|  (per file)  |
	+------+-------+
	       |
	 copy  |  confirm   delete   prune
	       v
	+------+-------+   +---------+   +--------+
	|   Monitor    +-->+ Source  +-->+ Pruner |
	| (stability)  |   | removal |   |        |
	+--------------+   +---------+   +--------+

🎯 Purpose:
- Enumerates source files in deterministic path order
- Copies each file into the destination tree, overwriting stale copies
- Waits for the sync agent's confirmation before touching the source
- Deletes the confirmed source and prunes emptied directories

🔄 Flow:
1. Enumerate files under the source root (sorted, capped, filtered)
2. Check the cancellation signal at the top of each iteration
3. Copy, confirm, delete, prune: one file fully through before the next
4. Emit events for the presentation layer, lines for the run log

⚡ Key Responsibilities:
- Sequential processing: one file mid-pipeline at a time, always. The
  destination sync backend degrades under concurrent load, so serializing
  is the reliability mechanism.
- Error containment: a per-file failure is logged and the run continues;
  nothing short of the cancellation signal stops new files from starting.
- Cooperative cancellation: the signal is read only at file boundaries;
  in-flight copies and poll loops always run to a terminal outcome.

🤝 Interfaces:
- Waiter: the post-copy confirmation wait (pkg/monitor)
- prune.Pruner: empty-directory removal bounded by the source root
- Sink: pipeline progress events for the console renderer

🔍 Example:

	orch, err := transfer.New(transfer.Options{
		SourceRoot: "/data/outbox",
		DestRoot:   "/vault/inbox",
		Monitor:    mon,
		Pruner:     prune.New(runLog),
		Cancel:     transfer.NewSignal(),
		PruneEmptyDirs: true,
	})
	sum, err := orch.Run(ctx)
*/
package transfer
