package storage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current item state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrItemNotFound is returned when an item id is not known to the list.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnresolvedLink is returned by LinkResolver when a reference can not be mapped to a base item.
	ErrUnresolvedLink = errors.New("unresolved link")
)

type (
	// Record is the field payload carried by an Item.
	// Records are handled as values: every method returns a new value instead of mutating the receiver.
	Record[R any] interface {
		// Deep copy of the field values
		Clone() R
		// Field level validation
		Validate() model.ErrorList
		// Rewrites cross-list references into base list identifiers
		ResolveLinks(r LinkResolver) (R, error)
	}

	// ChangeApplier is an optional Record hook to merge edit values onto a base record.
	// Without it the edit record replaces the base one.
	ChangeApplier[R any] interface {
		ApplyChanges(edit R) (R, error)
	}

	// LinkResolver maps an item id referenced by a record to the id of its base counterpart.
	LinkResolver interface {
		ResolveLink(dataType model.DataType, id uuid.UUID) (uuid.UUID, error)
	}

	// Item keeps a single versioned record with its change history.
	Item[R Record[R]] struct {
		id       uuid.UUID
		seq      uint64
		state    model.ItemState
		version  int
		record   R
		baseLink uuid.UUID
		hasBase  bool
		history  []Snapshot[R]
		errors   model.ErrorList
	}
)

// String implements the stringer interface.
func (i *Item[R]) String() string {
	return fmt.Sprintf("%s (%s, v%d, h%d): %v", i.id, i.state, i.version, len(i.history), i.record)
}

// Id returns the item identifier.
func (i *Item[R]) Id() uuid.UUID {
	return i.id
}

// State returns the current item state.
func (i *Item[R]) State() model.ItemState {
	return i.state
}

// Version returns the version the item was last mutated at.
func (i *Item[R]) Version() int {
	return i.version
}

// Record returns a copy of the current field values.
func (i *Item[R]) Record() R {
	return i.record.Clone()
}

// BaseLink returns the id of the base list counterpart if one exists.
func (i *Item[R]) BaseLink() (uuid.UUID, bool) {
	return i.baseLink, i.hasBase
}

// Errors returns validation errors recorded by the last Validate call.
func (i *Item[R]) Errors() model.ErrorList {
	return i.errors
}

// HasErrors checks if the last Validate call flagged the item.
func (i *Item[R]) HasErrors() bool {
	return len(i.errors) > 0
}

// IsDeleted checks if the item is soft deleted.
func (i *Item[R]) IsDeleted() bool {
	return i.state.IsDeleted()
}

// HasChangedSince checks if the item was mutated after the version.
func (i *Item[R]) HasChangedSince(version int) bool {
	return i.version > version
}

// edit replaces the record and moves the item to the changed state.
func (i *Item[R]) edit(version int, record R) error {
	switch i.state {
	case model.CleanItemState, model.ChangedItemState, model.RecoveredItemState:
		i.pushHistory(version)
		i.state = model.ChangedItemState
	case model.NewItemState:
		i.pushHistory(version)
	default:
		return fmt.Errorf("edit (%s): %w", i.state, ErrInvalidTransition)
	}
	i.record = record

	return nil
}

// markDeleted soft deletes the item.
func (i *Item[R]) markDeleted(version int) error {
	var next model.ItemState
	switch i.state {
	case model.CleanItemState:
		next = model.DeletedItemState
	case model.ChangedItemState, model.RecoveredItemState:
		next = model.DelChgItemState
	case model.NewItemState:
		next = model.DelNewItemState
	default:
		return fmt.Errorf("delete (%s): %w", i.state, ErrInvalidTransition)
	}

	i.pushHistory(version)
	i.state = next
	i.errors = nil

	return nil
}

// markRecovered reverts a soft delete.
func (i *Item[R]) markRecovered(version int) error {
	var next model.ItemState
	switch i.state {
	case model.DeletedItemState, model.DelChgItemState:
		next = model.RecoveredItemState
	case model.DelNewItemState:
		next = model.NewItemState
	default:
		return fmt.Errorf("recover (%s): %w", i.state, ErrInvalidTransition)
	}

	i.pushHistory(version)
	i.state = next

	return nil
}

// validate runs the record validation for a live item.
func (i *Item[R]) validate(dataType model.DataType) {
	if i.state.IsDeleted() {
		i.errors = nil
		return
	}

	i.errors = i.record.Validate().WithItem(dataType, i.id.String())
}

// setBaseLink adopts the base id: the item is rekeyed to the base counterpart id.
func (i *Item[R]) setBaseLink(baseId uuid.UUID) {
	i.id = baseId
	i.baseLink, i.hasBase = baseId, true
}

// clearBaseLink reverts setBaseLink restoring the provisional id.
func (i *Item[R]) clearBaseLink(provisionalId uuid.UUID) {
	i.id = provisionalId
	i.baseLink, i.hasBase = uuid.Nil, false
}

// ClearHistory folds the item back to a clean baseline at version 0.
func (i *Item[R]) ClearHistory() {
	i.history = nil
	i.state = model.CleanItemState
	i.version = 0
	i.errors = nil
}

// newItem creates a new Item object (no validation as it is used internally).
func newItem[R Record[R]](id uuid.UUID, seq uint64, state model.ItemState, version int, record R) *Item[R] {
	return &Item[R]{
		id:      id,
		seq:     seq,
		state:   state,
		version: version,
		record:  record,
	}
}
