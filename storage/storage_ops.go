package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
)

type (
	// Operation is an edit performed on List to update its state.
	Operation[R Record[R]] interface {
		// Update the list state
		Apply(l *List[R]) error
		// Operation kind
		Type() model.OperationType
	}

	// InsertOperation implements Operation interface for create operation.
	InsertOperation[R Record[R]] struct {
		Value R
		// Filled on Apply with the provisional id
		Id uuid.UUID
	}

	// UpdateOperation implements Operation interface for update operation.
	UpdateOperation[R Record[R]] struct {
		Id     uuid.UUID
		Update func(r R) R
	}

	// DeleteOperation implements Operation interface for soft delete operation.
	DeleteOperation[R Record[R]] struct {
		Id uuid.UUID
	}

	// RecoverOperation implements Operation interface for undelete operation.
	RecoverOperation[R Record[R]] struct {
		Id uuid.UUID
	}
)

// ApplyOperations updates list state with Operation list stopping at the first failure.
func (l *List[R]) ApplyOperations(ops ...Operation[R]) error {
	for i, op := range ops {
		if op == nil {
			continue
		}

		if err := op.Apply(l); err != nil {
			return fmt.Errorf("op[%d] (%s): %w", i, op.Type(), err)
		}
	}

	return nil
}

// Apply implements Operation interface.
func (o *InsertOperation[R]) Apply(l *List[R]) error {
	o.Id = l.InsertNew(o.Value).Id()
	return nil
}

// Type implements Operation interface.
func (o *InsertOperation[R]) Type() model.OperationType {
	return model.InsertOperationType
}

// Apply implements Operation interface.
func (o UpdateOperation[R]) Apply(l *List[R]) error {
	return l.Edit(o.Id, o.Update)
}

// Type implements Operation interface.
func (o UpdateOperation[R]) Type() model.OperationType {
	return model.UpdateOperationType
}

// Apply implements Operation interface.
func (o DeleteOperation[R]) Apply(l *List[R]) error {
	return l.Delete(o.Id)
}

// Type implements Operation interface.
func (o DeleteOperation[R]) Type() model.OperationType {
	return model.DeleteOperationType
}

// Apply implements Operation interface.
func (o RecoverOperation[R]) Apply(l *List[R]) error {
	return l.Recover(o.Id)
}

// Type implements Operation interface.
func (o RecoverOperation[R]) Type() model.OperationType {
	return model.RecoverOperationType
}

// NewUpdateOperation creates a valid UpdateOperation object.
func NewUpdateOperation[R Record[R]](id uuid.UUID, update func(r R) R) (UpdateOperation[R], error) {
	if id == uuid.Nil {
		return UpdateOperation[R]{}, fmt.Errorf("%s: empty", "id")
	}
	if update == nil {
		return UpdateOperation[R]{}, fmt.Errorf("%s: nil", "update")
	}

	return UpdateOperation[R]{
		Id:     id,
		Update: update,
	}, nil
}

// NewDeleteOperation creates a valid DeleteOperation object.
func NewDeleteOperation[R Record[R]](id uuid.UUID) (DeleteOperation[R], error) {
	if id == uuid.Nil {
		return DeleteOperation[R]{}, fmt.Errorf("%s: empty", "id")
	}

	return DeleteOperation[R]{Id: id}, nil
}

// NewRecoverOperation creates a valid RecoverOperation object.
func NewRecoverOperation[R Record[R]](id uuid.UUID) (RecoverOperation[R], error) {
	if id == uuid.Nil {
		return RecoverOperation[R]{}, fmt.Errorf("%s: empty", "id")
	}

	return RecoverOperation[R]{Id: id}, nil
}
