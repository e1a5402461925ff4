package harness

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/korsimoro/ext-phosphor/modeldb"
)

// Runner executes a scenario against a fresh database.
//
// Every object a scenario creates is bound to an alias and its Changed
// signal is watched; the runner drains the notifier after each step so
// the trace is complete and deterministic. Ids come from a
// FixedGenerator, so two runs of the same scenario produce identical
// traces.
type Runner struct {
	db *modeldb.DB

	mu      sync.Mutex
	objects map[string]modeldb.Object
	aliases map[modeldb.Object]string
	step    string
	trace   []TraceEvent
}

// Run executes a scenario and returns its trace.
//
// Each scenario runs in a fresh database for isolation. A step error
// aborts the run; everything committed before the failure is still in
// the trace semantics but the caller only sees the error.
func Run(scenario *Scenario) (*Result, error) {
	if err := ValidateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	r := &Runner{
		db:      modeldb.New(modeldb.WithIDGenerator(&modeldb.FixedGenerator{})),
		objects: make(map[string]modeldb.Object),
		aliases: make(map[modeldb.Object]string),
		trace:   []TraceEvent{},
	}
	defer r.db.Close()

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		label := step.Name
		if label == "" {
			label = fmt.Sprintf("step-%d", i+1)
		}
		r.setStep(label)

		var err error
		switch {
		case step.Undo:
			err = r.db.Undo()
		case step.Redo:
			err = r.db.Redo()
		default:
			err = r.db.Transact(func() error {
				for j := range step.Transact {
					if opErr := r.apply(&step.Transact[j]); opErr != nil {
						return fmt.Errorf("transact[%d]: %w", j, opErr)
					}
				}
				return nil
			})
		}
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", label, err)
		}

		// Flush deliveries so the next step's events cannot interleave
		// with this one's.
		r.db.Drain()
		slog.Debug("scenario step executed", "scenario", scenario.Name, "step", label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return &Result{Scenario: scenario.Name, Trace: r.trace}, nil
}

func (r *Runner) setStep(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.step = label
}

// watch binds an alias and records every delivery on the object's
// signal. The handler runs on the notifier goroutine.
func (r *Runner) watch(alias string, obj modeldb.Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[alias]; exists {
		return fmt.Errorf("alias %q already bound", alias)
	}
	r.objects[alias] = obj
	r.aliases[obj] = alias

	obj.Changed().Connect(func(args modeldb.ChangedArgs) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.trace = append(r.trace, TraceEvent{
			Step:     r.step,
			Receiver: alias,
			Target:   r.aliasOfLocked(args.Target),
			Kind:     args.Kind.String(),
			Bubbled:  args.IsBubbled(obj),
			Undo:     args.Meta.IsUndo,
			Redo:     args.Meta.IsRedo,
			Changes:  renderChanges(args.Changes, r.aliasOfLocked),
		})
	})
	return nil
}

// aliasOfLocked resolves an object to its alias. Callers hold r.mu.
func (r *Runner) aliasOfLocked(obj modeldb.Object) string {
	if alias, ok := r.aliases[obj]; ok {
		return alias
	}
	return obj.ID()
}

func (r *Runner) lookup(alias string) (modeldb.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objects[alias]
	if !ok {
		return nil, fmt.Errorf("unknown alias %q", alias)
	}
	return obj, nil
}

func (r *Runner) lookupTable(alias string) (*modeldb.Table, error) {
	obj, err := r.lookup(alias)
	if err != nil {
		return nil, err
	}
	table, ok := obj.(*modeldb.Table)
	if !ok {
		return nil, fmt.Errorf("alias %q is a %s, not a table", alias, obj.Kind())
	}
	return table, nil
}

func (r *Runner) lookupRecord(alias string) (*modeldb.Record, error) {
	obj, err := r.lookup(alias)
	if err != nil {
		return nil, err
	}
	rec, ok := obj.(*modeldb.Record)
	if !ok {
		return nil, fmt.Errorf("alias %q is a %s, not a record", alias, obj.Kind())
	}
	return rec, nil
}

// apply executes one operation. Runs inside the step's transaction.
func (r *Runner) apply(op *Op) error {
	switch op.Op {
	case OpCreateTable:
		table, err := r.db.CreateTable(modeldb.NewToken(op.Table))
		if err != nil {
			return fmt.Errorf("create table %q: %w", op.Table, err)
		}
		return r.watch(op.Table, table)

	case OpCreateList:
		vals, err := convertValues(op.Values)
		if err != nil {
			return fmt.Errorf("create list %q: %w", op.As, err)
		}
		return r.watch(op.As, r.db.CreateList(vals...))

	case OpCreateMap:
		return r.watch(op.As, r.db.CreateMap())

	case OpCreateText:
		return r.watch(op.As, r.db.CreateText(op.Text))

	case OpCreateRecord:
		state, err := r.resolveState(op.State)
		if err != nil {
			return fmt.Errorf("create record %q: %w", op.As, err)
		}
		rec, err := r.db.CreateRecord(state)
		if err != nil {
			return fmt.Errorf("create record %q: %w", op.As, err)
		}
		return r.watch(op.As, rec)

	case OpInsert:
		table, err := r.lookupTable(op.Table)
		if err != nil {
			return err
		}
		rec, err := r.lookupRecord(op.Record)
		if err != nil {
			return err
		}
		table.Insert(rec)
		return nil

	case OpDelete:
		return r.applyDelete(op)

	case OpSet:
		return r.applySet(op)

	case OpPush:
		obj, err := r.lookup(op.Target)
		if err != nil {
			return err
		}
		list, ok := obj.(*modeldb.List)
		if !ok {
			return fmt.Errorf("push target %q is a %s, not a list", op.Target, obj.Kind())
		}
		vals, err := convertValues(op.Values)
		if err != nil {
			return fmt.Errorf("push to %q: %w", op.Target, err)
		}
		list.Push(vals...)
		return nil

	case OpSplice:
		return r.applySplice(op)

	case OpRemove:
		obj, err := r.lookup(op.Target)
		if err != nil {
			return err
		}
		list, ok := obj.(*modeldb.List)
		if !ok {
			return fmt.Errorf("remove target %q is a %s, not a list", op.Target, obj.Kind())
		}
		list.Remove(*op.Index)
		return nil

	case OpClear:
		return r.applyClear(op)

	case OpAppend:
		obj, err := r.lookup(op.Target)
		if err != nil {
			return err
		}
		txt, ok := obj.(*modeldb.Text)
		if !ok {
			return fmt.Errorf("append target %q is a %s, not a text", op.Target, obj.Kind())
		}
		txt.Append(op.Text)
		return nil

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) applyDelete(op *Op) error {
	if op.Table != "" {
		table, err := r.lookupTable(op.Table)
		if err != nil {
			return err
		}
		rec, err := r.lookupRecord(op.Record)
		if err != nil {
			return err
		}
		table.Delete(rec.ID())
		return nil
	}

	obj, err := r.lookup(op.Target)
	if err != nil {
		return err
	}
	m, ok := obj.(*modeldb.Map)
	if !ok {
		return fmt.Errorf("delete target %q is a %s, not a map", op.Target, obj.Kind())
	}
	m.Delete(op.Key)
	return nil
}

func (r *Runner) applySet(op *Op) error {
	obj, err := r.lookup(op.Target)
	if err != nil {
		return err
	}

	switch target := obj.(type) {
	case *modeldb.Record:
		if op.Name == "" {
			return fmt.Errorf("set on record %q needs name", op.Target)
		}
		if op.Ref != "" {
			child, err := r.lookup(op.Ref)
			if err != nil {
				return err
			}
			target.Set(op.Name, child)
			return nil
		}
		target.Set(op.Name, op.Value)
		return nil

	case *modeldb.Map:
		if op.Key == "" {
			return fmt.Errorf("set on map %q needs key", op.Target)
		}
		val, err := modeldb.FromGo(op.Value)
		if err != nil {
			return fmt.Errorf("set %q[%q]: %w", op.Target, op.Key, err)
		}
		target.Set(op.Key, val)
		return nil

	default:
		return fmt.Errorf("set target %q is a %s, not a record or map", op.Target, obj.Kind())
	}
}

func (r *Runner) applySplice(op *Op) error {
	obj, err := r.lookup(op.Target)
	if err != nil {
		return err
	}

	switch target := obj.(type) {
	case *modeldb.List:
		vals, err := convertValues(op.Values)
		if err != nil {
			return fmt.Errorf("splice %q: %w", op.Target, err)
		}
		target.Splice(*op.Index, *op.Count, vals...)
		return nil
	case *modeldb.Text:
		target.Splice(*op.Index, *op.Count, op.Text)
		return nil
	default:
		return fmt.Errorf("splice target %q is a %s, not a list or text", op.Target, obj.Kind())
	}
}

func (r *Runner) applyClear(op *Op) error {
	obj, err := r.lookup(op.Target)
	if err != nil {
		return err
	}

	switch target := obj.(type) {
	case *modeldb.List:
		target.Clear()
	case *modeldb.Map:
		target.Clear()
	case *modeldb.Text:
		target.Clear()
	case *modeldb.Table:
		target.Clear()
	default:
		return fmt.Errorf("clear target %q is a %s", op.Target, obj.Kind())
	}
	return nil
}

// resolveState converts a scenario state map for create_record:
// {"$ref": alias} values resolve to the aliased collection, everything
// else passes through for primitive conversion.
func (r *Runner) resolveState(state map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(state))
	for name, v := range state {
		if refMap, ok := v.(map[string]any); ok {
			ref, isRef := refMap["$ref"].(string)
			if isRef && len(refMap) == 1 {
				obj, err := r.lookup(ref)
				if err != nil {
					return nil, fmt.Errorf("property %q: %w", name, err)
				}
				out[name] = obj
				continue
			}
		}
		out[name] = v
	}
	return out, nil
}

// convertValues converts YAML-parsed values to Values.
func convertValues(vs []any) ([]modeldb.Value, error) {
	out := make([]modeldb.Value, len(vs))
	for i, v := range vs {
		val, err := modeldb.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}
