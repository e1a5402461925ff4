package harness

import (
	"slices"

	"github.com/korsimoro/ext-phosphor/modeldb"
)

// TraceEvent is one observed signal delivery, rendered into plain data
// for assertions and golden comparison. All object references are
// scenario aliases, never generated ids, so the trace is stable across
// runs.
type TraceEvent struct {
	// Step is the label of the step whose commit produced the event.
	Step string `json:"step"`

	// Receiver is the alias of the object whose signal fired.
	Receiver string `json:"receiver"`

	// Target is the alias of the mutated object. Equal to Receiver for
	// a direct emission, a descendant's alias for a bubbled one.
	Target string `json:"target"`

	// Kind is the mutated object's kind name.
	Kind string `json:"kind"`

	// Bubbled reports whether the event reached the receiver via
	// ancestor bubbling.
	Bubbled bool `json:"bubbled,omitempty"`

	// Undo and Redo carry the transaction's replay metadata.
	Undo bool `json:"undo,omitempty"`
	Redo bool `json:"redo,omitempty"`

	// Changes is the rendered per-object change list.
	Changes []map[string]any `json:"changes"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Trace lists every signal delivery in delivery order.
	Trace []TraceEvent `json:"trace"`
}

// renderChanges converts a change list into plain maps. alias resolves
// objects back to their scenario aliases.
func renderChanges(changes []modeldb.Change, alias func(modeldb.Object) string) []map[string]any {
	out := make([]map[string]any, len(changes))
	for i, c := range changes {
		out[i] = renderChange(c, alias)
	}
	return out
}

func renderChange(c modeldb.Change, alias func(modeldb.Object) string) map[string]any {
	switch ch := c.(type) {
	case *modeldb.ListChange:
		return map[string]any{
			"type":    "list",
			"index":   ch.Index,
			"removed": renderValues(ch.Removed),
			"added":   renderValues(ch.Added),
		}
	case *modeldb.MapChange:
		return map[string]any{
			"type":    "map",
			"removed": renderValueMap(ch.Removed),
			"added":   renderValueMap(ch.Added),
		}
	case *modeldb.TextChange:
		return map[string]any{
			"type":    "text",
			"index":   ch.Index,
			"removed": ch.Removed,
			"added":   ch.Added,
		}
	case *modeldb.RecordChange:
		return map[string]any{
			"type": "record",
			"old":  renderPropMap(ch.Old, alias),
			"new":  renderPropMap(ch.New, alias),
		}
	case *modeldb.TableChange:
		return map[string]any{
			"type":    "table",
			"removed": renderRecordRefs(ch.Removed, alias),
			"added":   renderRecordRefs(ch.Added, alias),
		}
	default:
		return map[string]any{"type": "unknown"}
	}
}

func renderValues(vs []modeldb.Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func renderValueMap(m map[string]modeldb.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// renderPropMap renders record property state: primitives stay Values,
// owned collections become alias references.
func renderPropMap(m map[string]any, alias func(modeldb.Object) string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if obj, ok := v.(modeldb.Object); ok {
			out[k] = map[string]any{"$ref": alias(obj)}
			continue
		}
		out[k] = v
	}
	return out
}

// renderRecordRefs renders a table delta as the sorted alias list of the
// affected records.
func renderRecordRefs(recs map[string]*modeldb.Record, alias func(modeldb.Object) string) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, alias(r))
	}
	slices.Sort(out)
	return out
}
