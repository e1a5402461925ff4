package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios execute a scripted sequence of transactions against a fresh
// database and assert on the resulting notification trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps is the ordered script. Each step is exactly one of a
	// transaction, an undo, or a redo.
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action against the database.
// Exactly one of Transact, Undo, or Redo must be set.
type Step struct {
	// Name labels the step in the trace. Defaults to "step-N".
	Name string `yaml:"name,omitempty"`

	// Transact lists the operations to run inside one transaction.
	Transact []Op `yaml:"transact,omitempty"`

	// Undo reverts the most recent checkpoint.
	Undo bool `yaml:"undo,omitempty"`

	// Redo re-applies the most recently undone checkpoint.
	Redo bool `yaml:"redo,omitempty"`
}

// Op is a single operation within a transaction step.
// Objects are addressed by scenario-local aliases bound with "as" (or,
// for tables, the table name itself).
type Op struct {
	// Op selects the operation (see the Op* constants).
	Op string `yaml:"op"`

	// As binds the created object to an alias (create_* ops).
	As string `yaml:"as,omitempty"`

	// Table names a table, both at creation and when inserting/deleting
	// records.
	Table string `yaml:"table,omitempty"`

	// Record is the record alias for table insert/delete.
	Record string `yaml:"record,omitempty"`

	// Target is the alias of the object being mutated.
	Target string `yaml:"target,omitempty"`

	// Name is the record property for set.
	Name string `yaml:"name,omitempty"`

	// Key is the map key for set/delete on maps.
	Key string `yaml:"key,omitempty"`

	// Index is the position for splice/remove and text insertion.
	Index *int `yaml:"index,omitempty"`

	// Count is the removal count for splice.
	Count *int `yaml:"count,omitempty"`

	// Value is a single primitive value (set).
	Value any `yaml:"value,omitempty"`

	// Values is a list of primitive values (create_list, push, splice).
	Values []any `yaml:"values,omitempty"`

	// Ref names another alias whose object becomes the value (set on a
	// record property that holds a collection).
	Ref string `yaml:"ref,omitempty"`

	// Text is the string payload for text operations.
	Text string `yaml:"text,omitempty"`

	// State is the initial property state for create_record. Collection
	// properties reference aliases with a "$ref" string value.
	State map[string]any `yaml:"state,omitempty"`
}

// Operation name constants.
const (
	OpCreateTable  = "create_table"
	OpCreateList   = "create_list"
	OpCreateMap    = "create_map"
	OpCreateText   = "create_text"
	OpCreateRecord = "create_record"
	OpInsert       = "insert"
	OpDelete       = "delete"
	OpSet          = "set"
	OpPush         = "push"
	OpSplice       = "splice"
	OpRemove       = "remove"
	OpClear        = "clear"
	OpAppend       = "append"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario, err := ParseScenarioLenient(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenarioLenient decodes scenario YAML without structural
// validation. Unknown fields are still rejected. Used by the CLI's
// collect-all validation mode, which wants the decoded scenario even
// when it is structurally incomplete.
func ParseScenarioLenient(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// ValidateScenarioAll collects every structural problem instead of
// failing on the first. Used by the CLI's --all-errors mode.
func ValidateScenarioAll(s *Scenario) []error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}
	if s.Description == "" {
		errs = append(errs, fmt.Errorf("description is required"))
	}
	if len(s.Steps) == 0 {
		errs = append(errs, fmt.Errorf("steps list is required and must be non-empty"))
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ValidateScenario checks that required fields are present and valid.
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	set := 0
	if len(step.Transact) > 0 {
		set++
	}
	if step.Undo {
		set++
	}
	if step.Redo {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of transact, undo, redo is required", index)
	}

	for j, op := range step.Transact {
		if err := validateOp(index, j, &op); err != nil {
			return err
		}
	}
	return nil
}

func validateOp(step, index int, op *Op) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("steps[%d].transact[%d]: %s", step, index,
			fmt.Sprintf(format, args...))
	}

	switch op.Op {
	case OpCreateTable:
		if op.Table == "" {
			return fail("table is required for %s", op.Op)
		}
	case OpCreateList, OpCreateMap, OpCreateText, OpCreateRecord:
		if op.As == "" {
			return fail("as is required for %s", op.Op)
		}
	case OpInsert:
		if op.Table == "" || op.Record == "" {
			return fail("table and record are required for %s", op.Op)
		}
	case OpDelete:
		// Table form deletes a record; map form deletes a key.
		tableForm := op.Table != "" && op.Record != ""
		mapForm := op.Target != "" && op.Key != ""
		if tableForm == mapForm {
			return fail("delete needs either table+record or target+key")
		}
	case OpSet:
		if op.Target == "" {
			return fail("target is required for %s", op.Op)
		}
		if op.Name == "" && op.Key == "" {
			return fail("set needs name (record) or key (map)")
		}
	case OpPush:
		if op.Target == "" {
			return fail("target is required for %s", op.Op)
		}
		if len(op.Values) == 0 {
			return fail("values is required for %s", op.Op)
		}
	case OpSplice:
		if op.Target == "" {
			return fail("target is required for %s", op.Op)
		}
		if op.Index == nil || op.Count == nil {
			return fail("index and count are required for %s", op.Op)
		}
	case OpRemove:
		if op.Target == "" || op.Index == nil {
			return fail("target and index are required for %s", op.Op)
		}
	case OpClear:
		if op.Target == "" {
			return fail("target is required for %s", op.Op)
		}
	case OpAppend:
		if op.Target == "" {
			return fail("target is required for %s", op.Op)
		}
	case "":
		return fail("op is required")
	default:
		return fail("unknown op %q", op.Op)
	}
	return nil
}
