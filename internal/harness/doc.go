// Package harness provides a conformance testing framework for the
// document model database.
//
// Scenarios are YAML files describing a sequence of steps - transactions
// built from aliased operations, undos and redos - executed against a
// fresh database with deterministic ids. The runner watches every object
// a scenario creates and drains the notifier after each step, producing
// a stable notification trace: receiver, target, kind, bubbled flag,
// replay metadata and rendered change payloads, all addressed by
// scenario aliases rather than generated ids.
//
// Traces are compared against golden files with goldie. To regenerate
// golden files after an intentional behavior change, run:
//
//	go test ./internal/harness -update
package harness
