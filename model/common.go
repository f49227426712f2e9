package model

// DataType tags a list of one concrete record type participating in an edit session.
type DataType string

type OperationType string

const (
	InsertOperationType  OperationType = "insert"
	UpdateOperationType  OperationType = "update"
	DeleteOperationType  OperationType = "delete"
	RecoverOperationType OperationType = "recover"
)

// ItemState is the edit state of a single item.
type ItemState string

const (
	CleanItemState     ItemState = "clean"
	NewItemState       ItemState = "new"
	ChangedItemState   ItemState = "changed"
	DeletedItemState   ItemState = "deleted"
	DelChgItemState    ItemState = "delchg"
	DelNewItemState    ItemState = "delnew"
	RecoveredItemState ItemState = "recovered"
)

// IsDeleted returns true for the soft deleted states.
func (s ItemState) IsDeleted() bool {
	switch s {
	case DeletedItemState, DelChgItemState, DelNewItemState:
		return true
	}

	return false
}

// IsClean returns true if the item carries no session changes.
func (s ItemState) IsClean() bool {
	return s == CleanItemState || s == ""
}

// EditState is the aggregate state of a list or a whole session.
type EditState string

const (
	CleanEditState EditState = "clean"
	DirtyEditState EditState = "dirty"
	ErrorEditState EditState = "error"
	ValidEditState EditState = "valid"
)

// Combine joins two edit states: error dominates, then valid, then dirty. Clean is the identity.
func (s EditState) Combine(other EditState) EditState {
	if other.rank() > s.rank() {
		return other
	}
	if s == "" {
		return CleanEditState
	}

	return s
}

func (s EditState) rank() int {
	switch s {
	case ErrorEditState:
		return 3
	case ValidEditState:
		return 2
	case DirtyEditState:
		return 1
	}

	return 0
}

// Command is a named session action exposed to the UI layer.
type Command string

const (
	OkCommand    Command = "ok"
	UndoCommand  Command = "undo"
	ResetCommand Command = "reset"
)
