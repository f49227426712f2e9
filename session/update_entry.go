package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
	"github.com/itiky/edit-session/storage"
)

type (
	// entry is the type erased UpdateEntry view used by UpdateSet.
	entry interface {
		DataType() model.DataType
		IsBound() bool
		PrepareChanges() error
		CommitChanges()
		RollBackChanges()
		//
		setVersion(version int)
		validate()
		findEditState() model.EditState
		editState() model.EditState
		errors() model.ErrorList
		rewindToVersion(version int)
		condenseHistory(version int)
		resolveLink(id uuid.UUID) (uuid.UUID, bool)
	}

	// UpdateEntry binds one session List to its core base list for a single data type
	// and reconciles the session edits back into the base list.
	UpdateEntry[R storage.Record[R]] struct {
		dataType model.DataType
		set      *UpdateSet
		list     *storage.List[R]
		// Provisional session id -> base id for NEW items linked by PrepareChanges
		links map[uuid.UUID]uuid.UUID
	}
)

// DataType returns the entry data type tag.
func (e *UpdateEntry[R]) DataType() model.DataType {
	return e.dataType
}

// IsBound checks if a session list is bound to the entry.
func (e *UpdateEntry[R]) IsBound() bool {
	return e.list != nil
}

// List returns the bound session list (nil if unbound).
func (e *UpdateEntry[R]) List() *storage.List[R] {
	return e.list
}

// SetEditList binds the session list moving it to the session version.
// Panics if the list is not an edit list (should not happen).
func (e *UpdateEntry[R]) SetEditList(list *storage.List[R]) {
	if list != nil {
		if list.Style() != storage.EditListStyle || list.Base() == nil {
			panic(fmt.Sprintf("entry (%s): bind: list must be an edit list with a base", e.dataType))
		}
		list.SetVersion(e.set.version)
	}

	e.list = list
	e.links = nil
}

// Open creates a fresh session copy of the base list and binds it.
func (e *UpdateEntry[R]) Open(base *storage.List[R]) *storage.List[R] {
	list := storage.NewEditList(base)
	e.SetEditList(list)

	return list
}

// PrepareChanges applies the session edits onto the base list at the base pending version.
// On failure the base list might be partially updated: RollBackChanges must be called.
func (e *UpdateEntry[R]) PrepareChanges() error {
	if e.list == nil {
		return nil
	}
	base := e.list.Base()

	e.links = make(map[uuid.UUID]uuid.UUID)
	toResolve := make([]uuid.UUID, 0)

	for _, item := range e.list.Items() {
		itemId := item.Id()

		switch item.State() {
		case model.CleanItemState, model.DelNewItemState:
			continue

		case model.NewItemState:
			baseItem := base.InsertNew(item.Record())
			if err := e.list.LinkToBase(itemId, baseItem.Id()); err != nil {
				base.Remove(baseItem.Id())
				return fmt.Errorf("item (%s): link: %w", itemId, err)
			}
			e.links[itemId] = baseItem.Id()
			toResolve = append(toResolve, baseItem.Id())

		case model.DeletedItemState, model.DelChgItemState:
			baseId, err := e.baseLink(item)
			if err != nil {
				return err
			}
			if err := base.Delete(baseId); err != nil {
				return fmt.Errorf("item (%s): delete base: %w", itemId, err)
			}

		case model.RecoveredItemState:
			baseId, err := e.baseLink(item)
			if err != nil {
				return err
			}
			if baseItem, found := base.Get(baseId); found && baseItem.IsDeleted() {
				if err := base.Recover(baseId); err != nil {
					return fmt.Errorf("item (%s): recover base: %w", itemId, err)
				}
			}
			if err := base.ApplyChanges(baseId, item.Record()); err != nil {
				return fmt.Errorf("item (%s): %w", itemId, err)
			}
			toResolve = append(toResolve, baseId)

		case model.ChangedItemState:
			baseId, err := e.baseLink(item)
			if err != nil {
				return err
			}
			if err := base.ApplyChanges(baseId, item.Record()); err != nil {
				return fmt.Errorf("item (%s): %w", itemId, err)
			}
			toResolve = append(toResolve, baseId)

		default:
			return fmt.Errorf("item (%s): unknown state: %s", itemId, item.State())
		}
	}

	// Links are resolved once every base item of the list exists (self references)
	for _, baseId := range toResolve {
		if err := base.ResolveLinks(baseId, e.set); err != nil {
			return err
		}
	}

	return nil
}

// RollBackChanges undoes PrepareChanges. Safe on an unprepared or partially prepared entry.
func (e *UpdateEntry[R]) RollBackChanges() {
	if e.list == nil {
		return
	}
	base := e.list.Base()

	provisionalIds := make(map[uuid.UUID]uuid.UUID, len(e.links))
	for provisionalId, baseId := range e.links {
		provisionalIds[baseId] = provisionalId
	}

	for _, item := range e.list.Items() {
		baseId, linked := item.BaseLink()

		switch item.State() {
		case model.CleanItemState, model.DelNewItemState:
			continue

		case model.NewItemState:
			if !linked {
				continue
			}
			base.Remove(baseId)
			if provisionalId, found := provisionalIds[baseId]; found {
				e.list.UnlinkFromBase(baseId, provisionalId)
			}

		default:
			if linked {
				base.RewindItem(baseId, base.Version())
			}
		}
	}

	e.links = nil
}

// CommitChanges closes the base list step and folds the session list back to a clean baseline.
// The base version is advanced so the next prepare snapshots the committed base items.
// Must only be called after PrepareChanges succeeded for every entry of the UpdateSet.
func (e *UpdateEntry[R]) CommitChanges() {
	if e.list == nil {
		return
	}
	base := e.list.Base()
	base.SetVersion(base.Version() + 1)

	for _, item := range e.list.Items() {
		itemId := item.Id()

		switch item.State() {
		case model.CleanItemState:
			continue

		case model.DelNewItemState, model.DeletedItemState, model.DelChgItemState:
			e.list.Remove(itemId)

		default:
			baseId, err := e.baseLink(item)
			if err != nil {
				panic(fmt.Sprintf("entry (%s): commit: %v", e.dataType, err))
			}
			baseItem, found := base.Get(baseId)
			if !found {
				panic(fmt.Sprintf("entry (%s): commit: base item %s not found", e.dataType, baseId))
			}
			e.list.CommitItem(itemId, baseItem.Record())
		}
	}

	e.list.SetVersion(0)
	e.links = nil
}

// baseLink returns the base counterpart id of an item expected to have one.
func (e *UpdateEntry[R]) baseLink(item *storage.Item[R]) (uuid.UUID, error) {
	baseId, linked := item.BaseLink()
	if !linked {
		return uuid.Nil, fmt.Errorf("item (%s): %s: no base link", item.Id(), item.State())
	}

	return baseId, nil
}

func (e *UpdateEntry[R]) setVersion(version int) {
	if e.list != nil {
		e.list.SetVersion(version)
	}
}

func (e *UpdateEntry[R]) validate() {
	if e.list != nil {
		e.list.Validate()
	}
}

func (e *UpdateEntry[R]) findEditState() model.EditState {
	if e.list == nil {
		return model.CleanEditState
	}

	return e.list.FindEditState()
}

func (e *UpdateEntry[R]) editState() model.EditState {
	if e.list == nil {
		return model.CleanEditState
	}

	return e.list.EditState()
}

func (e *UpdateEntry[R]) errors() model.ErrorList {
	if e.list == nil {
		return nil
	}

	return e.list.Errors()
}

func (e *UpdateEntry[R]) rewindToVersion(version int) {
	if e.list != nil {
		e.list.RewindToVersion(version)
	}
}

func (e *UpdateEntry[R]) condenseHistory(version int) {
	if e.list != nil {
		e.list.CondenseHistory(version)
	}
}

// resolveLink maps a session or base id of this data type to the base id.
func (e *UpdateEntry[R]) resolveLink(id uuid.UUID) (uuid.UUID, bool) {
	if e.list == nil {
		return uuid.Nil, false
	}
	if baseId, found := e.links[id]; found {
		return baseId, true
	}
	if _, found := e.list.Base().Get(id); found {
		return id, true
	}

	return uuid.Nil, false
}
