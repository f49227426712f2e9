package dataset

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/itiky/edit-session/model"
	"github.com/itiky/edit-session/storage"
)

// Script step operations on top of the item operations (model.OperationType).
const (
	NextStepOp     = "next"
	UndoStepOp     = "undo"
	ResetStepOp    = "reset"
	OkStepOp       = "ok"
	CondenseStepOp = "condense"
)

type (
	// Script is a YAML edit script replayed against a Session.
	Script struct {
		Steps []Step `yaml:"steps"`
	}

	// Step is a single script instruction.
	Step struct {
		Op   string         `yaml:"op"`
		Type model.DataType `yaml:"type,omitempty"`
		// Alias defined by insert, target alias otherwise
		Ref string `yaml:"ref,omitempty"`
		// Explicit target id
		Id      string            `yaml:"id,omitempty"`
		Fields  map[string]string `yaml:"fields,omitempty"`
		Version int               `yaml:"version,omitempty"`
	}

	// ScriptResult summarises a script run.
	ScriptResult struct {
		Steps      int
		Committed  int
		Failed     int
		LastErrors model.ErrorList
	}

	// ErrorCollector implements session.ErrorSink keeping the last error list.
	ErrorCollector struct {
		Errors model.ErrorList
	}

	scriptRunner struct {
		session *Session
		// Alias -> current item id (ids change when NEW items are committed)
		refs map[string]func() uuid.UUID
	}
)

// SetErrors implements session.ErrorSink interface.
func (c *ErrorCollector) SetErrors(errs model.ErrorList) {
	c.Errors = errs
}

// LoadScript reads a YAML script file.
func LoadScript(filePath string) (Script, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Script{}, fmt.Errorf("reading file (%s): %w", filePath, err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("YAML unmarshal: %w", err)
	}

	return s, nil
}

// RunScript replays script steps against the session.
// A failed "ok" step is not a script error: the session stays open and the run continues.
func (s *Session) RunScript(script Script) (ScriptResult, error) {
	r := scriptRunner{
		session: s,
		refs:    make(map[string]func() uuid.UUID),
	}
	res := ScriptResult{}

	for i, step := range script.Steps {
		res.Steps++

		switch step.Op {
		case NextStepOp:
			s.set.IncrementVersion()
		case UndoStepOp:
			s.set.UndoLastChange()
		case ResetStepOp:
			s.set.ResetChanges()
		case CondenseStepOp:
			if step.Version < 0 || step.Version > s.set.Version() {
				return res, fmt.Errorf("step[%d] (%s): version: must be in [0, %d]", i, step.Op, s.set.Version())
			}
			s.set.CondenseHistory(step.Version)
		case OkStepOp:
			if s.set.ApplyChanges() {
				res.Committed++
			} else {
				res.Failed++
				res.LastErrors = s.set.LastErrors()
			}
		default:
			if err := r.applyItemStep(step); err != nil {
				return res, fmt.Errorf("step[%d] (%s %s): %w", i, step.Op, step.Type, err)
			}
		}

		log.Printf("Script: step[%d] %s %s: v%d (%s)", i, step.Op, step.Type, s.set.Version(), s.set.EditState())
	}

	return res, nil
}

// applyItemStep dispatches an item operation to the list of the step data type.
func (r *scriptRunner) applyItemStep(step Step) error {
	switch step.Type {
	case AccountType:
		return applyStep(r, r.session.Accounts.List(), step, r.setAccountFields)
	case PayeeType:
		return applyStep(r, r.session.Payees.List(), step, r.setPayeeFields)
	case TransactionType:
		return applyStep(r, r.session.Transactions.List(), step, r.setTransactionFields)
	}

	return fmt.Errorf("type (%s): unknown", step.Type)
}

func applyStep[R storage.Record[R]](r *scriptRunner, list *storage.List[R], step Step, setFields func(R, map[string]string) (R, error)) error {
	if list == nil {
		return fmt.Errorf("type (%s): not bound", step.Type)
	}

	if model.OperationType(step.Op) == model.InsertOperationType {
		var zero R
		value, err := setFields(zero, step.Fields)
		if err != nil {
			return err
		}

		op := &storage.InsertOperation[R]{Value: value}
		if err := list.ApplyOperations(op); err != nil {
			return err
		}
		if step.Ref != "" {
			item, _ := list.Get(op.Id)
			r.refs[step.Ref] = item.Id
		}

		return nil
	}

	id, err := r.target(step)
	if err != nil {
		return err
	}

	var op storage.Operation[R]
	switch model.OperationType(step.Op) {
	case model.UpdateOperationType:
		item, found := list.Get(id)
		if !found {
			return fmt.Errorf("%s (%s): %w", step.Type, id, storage.ErrItemNotFound)
		}
		next, err := setFields(item.Record(), step.Fields)
		if err != nil {
			return err
		}
		if op, err = storage.NewUpdateOperation(id, func(R) R { return next }); err != nil {
			return err
		}
	case model.DeleteOperationType:
		if op, err = storage.NewDeleteOperation[R](id); err != nil {
			return err
		}
	case model.RecoverOperationType:
		if op, err = storage.NewRecoverOperation[R](id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("op (%s): unknown", step.Op)
	}

	return list.ApplyOperations(op)
}

// target resolves the step target id from an alias or an explicit id.
func (r *scriptRunner) target(step Step) (uuid.UUID, error) {
	if step.Ref != "" {
		return r.resolveRef(step.Ref)
	}

	id, err := uuid.Parse(step.Id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: invalid: %w", "id", err)
	}

	return id, nil
}

// resolveRef maps an alias or a literal uuid to an item id.
func (r *scriptRunner) resolveRef(ref string) (uuid.UUID, error) {
	if idFn, found := r.refs[ref]; found {
		return idFn(), nil
	}

	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ref (%s): unknown", ref)
	}

	return id, nil
}

func (r *scriptRunner) setAccountFields(a Account, fields map[string]string) (Account, error) {
	for k, v := range fields {
		switch k {
		case "name":
			a.Name = v
		case "currency":
			a.Currency = v
		case "closed":
			closed, err := strconv.ParseBool(v)
			if err != nil {
				return a, fmt.Errorf("%s: invalid: %w", k, err)
			}
			a.Closed = closed
		default:
			return a, fmt.Errorf("field (%s): unknown", k)
		}
	}

	return a, nil
}

func (r *scriptRunner) setPayeeFields(p Payee, fields map[string]string) (Payee, error) {
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v
		default:
			return p, fmt.Errorf("field (%s): unknown", k)
		}
	}

	return p, nil
}

func (r *scriptRunner) setTransactionFields(t Transaction, fields map[string]string) (Transaction, error) {
	for k, v := range fields {
		switch k {
		case "account":
			id, err := r.resolveRef(v)
			if err != nil {
				return t, fmt.Errorf("%s: %w", k, err)
			}
			t.Account = id
		case "payee":
			id, err := r.resolveRef(v)
			if err != nil {
				return t, fmt.Errorf("%s: %w", k, err)
			}
			t.Payee = id
		case "amount":
			amount, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return t, fmt.Errorf("%s: invalid: %w", k, err)
			}
			t.Amount = amount
		case "description":
			t.Description = v
		default:
			return t, fmt.Errorf("field (%s): unknown", k)
		}
	}

	return t, nil
}
