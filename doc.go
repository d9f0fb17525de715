// Package quorly provides a threshold (m-of-n) authorization engine.
//
// A fixed council of parties jointly controls the right to perform arbitrary
// actions: any member may propose an action, members confirm or revoke their
// confirmation while it is pending, and once the confirmation count reaches
// the board threshold any member may execute it exactly once. The owner set
// and the threshold themselves mutate only through this same propose/confirm/
// execute path, via the built-in governance action.
//
// The module comes with pluggable service layers such as:
//
//   - board    - the owner registry and threshold
//   - ledger   - the proposal log and confirmation tracker
//   - engine   - the state machine tying them together
//   - executor - payload decoding and action dispatch
//   - journal  - append-only records of every state change
//
// Quorly is designed to be embedded in host applications. End-users
// typically interact with the engine via the high-level Service facade
// exposed by the root package:
//
//	srv, _ := quorly.New(quorly.WithBoard(2, "alice", "bob", "carol"))
//	id, _ := srv.Propose(ctx, "alice", "printer.print", 0, []byte(`{"message":"hi"}`))
//	_ = srv.Confirm(ctx, "alice", id)
//	_ = srv.Confirm(ctx, "bob", id)
//	out, _ := srv.Execute(ctx, "carol", id)
//
// For more details see the individual sub-packages.
package quorly
