package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
)

// ListStyle defines the role of a List.
type ListStyle string

const (
	// CoreListStyle is an authoritative list owned by the host.
	CoreListStyle ListStyle = "core"
	// EditListStyle is a session scoped copy of a core list.
	EditListStyle ListStyle = "edit"
)

type (
	// List keeps Item elements of one record type alongside the ordered list view.
	// List implements the "soft delete" methodology: deleted items stay until the session commits.
	// Every mutation is tagged with the pending version (Version() + 1) which becomes current on SetVersion.
	List[R Record[R]] struct {
		dataType    model.DataType
		style       ListStyle
		base        *List[R]
		version     int
		list        []*Item[R]
		idDataMatch map[uuid.UUID]*Item[R]
		seq         uint64
		less        func(a, b R) bool
		validated   bool
		editState   model.EditState
	}
)

// String implements stringer interface.
func (l *List[R]) String() string {
	str := strings.Builder{}
	str.WriteString(fmt.Sprintf("%s (%s, v%d, %s)\n", l.dataType, l.style, l.version, l.EditState()))
	for i, item := range l.list {
		str.WriteString(fmt.Sprintf("- [%d] %s\n", i, item))
	}

	return str.String()
}

// DataType returns the list data type tag.
func (l *List[R]) DataType() model.DataType {
	return l.dataType
}

// Style returns the list style.
func (l *List[R]) Style() ListStyle {
	return l.style
}

// Base returns the core list an edit list is editing against (nil for a core list).
func (l *List[R]) Base() *List[R] {
	return l.base
}

// Version returns the current list version.
func (l *List[R]) Version() int {
	return l.version
}

// SetVersion sets the list version, used when the owning session advances.
func (l *List[R]) SetVersion(version int) {
	l.version = version
}

// Len returns the number of items including soft deleted ones.
func (l *List[R]) Len() int {
	return len(l.list)
}

// Items returns the ordered list view.
func (l *List[R]) Items() []*Item[R] {
	out := make([]*Item[R], len(l.list))
	copy(out, l.list)

	return out
}

// Get returns an item by id.
func (l *List[R]) Get(id uuid.UUID) (*Item[R], bool) {
	item, found := l.idDataMatch[id]
	return item, found
}

// SetComparator sets the ordering used by ReSort (insertion order if nil).
func (l *List[R]) SetComparator(less func(a, b R) bool) {
	l.less = less
}

// ReSort re-establishes the list ordering after structural changes keeping ids intact.
func (l *List[R]) ReSort() {
	sort.SliceStable(l.list, func(i, j int) bool {
		if l.less != nil {
			a, b := l.list[i].record, l.list[j].record
			if l.less(a, b) {
				return true
			}
			if l.less(b, a) {
				return false
			}
		}
		return l.list[i].seq < l.list[j].seq
	})
}

// Add inserts a clean item at the current version (used to populate core lists).
func (l *List[R]) Add(id uuid.UUID, record R) (*Item[R], error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%s: empty", "id")
	}
	if _, found := l.idDataMatch[id]; found {
		return nil, fmt.Errorf("id (%s): duplicate", id)
	}

	item := newItem(id, l.nextSeq(), model.CleanItemState, l.version, record)
	l.append(item)

	return item, nil
}

// InsertNew creates a new item with a freshly assigned id at the pending version.
func (l *List[R]) InsertNew(record R) *Item[R] {
	item := newItem(uuid.New(), l.nextSeq(), model.NewItemState, l.pendingVersion(), record)
	l.append(item)
	l.validated = false

	return item
}

// Edit applies fn to a copy of the item record and stores the result.
func (l *List[R]) Edit(id uuid.UUID, fn func(r R) R) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}
	if err := item.edit(l.pendingVersion(), fn(item.record.Clone())); err != nil {
		return fmt.Errorf("item (%s): %w", id, err)
	}
	l.validated = false

	return nil
}

// ApplyChanges merges the edit record onto the item using the ChangeApplier hook if the record has one.
func (l *List[R]) ApplyChanges(id uuid.UUID, edit R) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}

	next := edit.Clone()
	if applier, ok := any(item.record).(ChangeApplier[R]); ok {
		if next, err = applier.ApplyChanges(edit.Clone()); err != nil {
			return fmt.Errorf("item (%s): apply changes: %w", id, err)
		}
	}
	if err := item.edit(l.pendingVersion(), next); err != nil {
		return fmt.Errorf("item (%s): %w", id, err)
	}
	l.validated = false

	return nil
}

// ResolveLinks rewrites the item record references through the resolver.
func (l *List[R]) ResolveLinks(id uuid.UUID, resolver LinkResolver) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}

	resolved, err := item.record.ResolveLinks(resolver)
	if err != nil {
		return fmt.Errorf("item (%s): resolve links: %w", id, err)
	}
	item.record = resolved

	return nil
}

// Delete soft deletes an item.
func (l *List[R]) Delete(id uuid.UUID) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}
	if err := item.markDeleted(l.pendingVersion()); err != nil {
		return fmt.Errorf("item (%s): %w", id, err)
	}
	l.validated = false

	return nil
}

// Recover reverts a soft delete.
func (l *List[R]) Recover(id uuid.UUID) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}
	if err := item.markRecovered(l.pendingVersion()); err != nil {
		return fmt.Errorf("item (%s): %w", id, err)
	}
	l.validated = false

	return nil
}

// Remove drops an item from the list entirely.
func (l *List[R]) Remove(id uuid.UUID) bool {
	item, found := l.idDataMatch[id]
	if !found {
		return false
	}

	// Cut
	idx := l.findItemIdx(item)
	delete(l.idDataMatch, id)
	l.list = append(l.list[:idx], l.list[idx+1:]...)

	return true
}

// LinkToBase rekeys an edit item to the id of its newly created base counterpart.
func (l *List[R]) LinkToBase(id, baseId uuid.UUID) error {
	item, err := l.mustGet(id)
	if err != nil {
		return err
	}
	if id != baseId {
		if _, found := l.idDataMatch[baseId]; found {
			return fmt.Errorf("base id (%s): duplicate", baseId)
		}
	}

	delete(l.idDataMatch, id)
	item.setBaseLink(baseId)
	l.idDataMatch[baseId] = item

	return nil
}

// UnlinkFromBase reverts LinkToBase restoring the provisional id.
func (l *List[R]) UnlinkFromBase(id, provisionalId uuid.UUID) {
	item, found := l.idDataMatch[id]
	if !found {
		return
	}

	delete(l.idDataMatch, id)
	item.clearBaseLink(provisionalId)
	l.idDataMatch[provisionalId] = item
}

// CommitItem folds an item back to a clean baseline holding the committed record.
func (l *List[R]) CommitItem(id uuid.UUID, record R) {
	item, found := l.idDataMatch[id]
	if !found {
		return
	}

	item.ClearHistory()
	item.record = record
}

// Validate runs per-item field validation recording the per-item error state.
func (l *List[R]) Validate() {
	for _, item := range l.list {
		item.validate(l.dataType)
	}
	l.validated = true
}

// Errors returns errors of every flagged item.
func (l *List[R]) Errors() model.ErrorList {
	var errs model.ErrorList
	for _, item := range l.list {
		errs = append(errs, item.errors...)
	}

	return errs
}

// FindEditState computes and stores the list edit state.
func (l *List[R]) FindEditState() model.EditState {
	state := model.CleanEditState
	switch {
	case l.HasErrors():
		state = model.ErrorEditState
	case !l.HasUpdates():
	case !l.validated:
		state = model.DirtyEditState
	default:
		state = model.ValidEditState
	}
	l.editState = state

	return state
}

// EditState returns the state computed by the last FindEditState call.
func (l *List[R]) EditState() model.EditState {
	if l.editState == "" {
		return model.CleanEditState
	}

	return l.editState
}

// HasUpdates checks if any item differs from its clean form.
func (l *List[R]) HasUpdates() bool {
	for _, item := range l.list {
		if !item.state.IsClean() {
			return true
		}
	}

	return false
}

// HasErrors checks if the last Validate flagged any item.
func (l *List[R]) HasErrors() bool {
	for _, item := range l.list {
		if item.HasErrors() {
			return true
		}
	}

	return false
}

// RewindToVersion rewinds every item and drops the ones that did not exist at version.
func (l *List[R]) RewindToVersion(version int) {
	kept := l.list[:0]
	for _, item := range l.list {
		if item.RewindToVersion(version) {
			kept = append(kept, item)
			continue
		}
		delete(l.idDataMatch, item.id)
	}
	for i := len(kept); i < len(l.list); i++ {
		l.list[i] = nil
	}
	l.list = kept
	l.version = version
	l.validated = false
}

// RewindItem rewinds a single item, removing it if it did not exist at version.
func (l *List[R]) RewindItem(id uuid.UUID, version int) {
	item, found := l.idDataMatch[id]
	if !found {
		return
	}
	if !item.RewindToVersion(version) {
		l.Remove(id)
	}
	l.validated = false
}

// CondenseHistory drops the item snapshots taken between the baseline and floor.
// The list version is left as is: edits made after floor stay undoable step by step.
func (l *List[R]) CondenseHistory(floor int) {
	for _, item := range l.list {
		item.CondenseHistory(floor)
	}
}

// pendingVersion is the version tag for mutations of the current edit step.
func (l *List[R]) pendingVersion() int {
	return l.version + 1
}

func (l *List[R]) nextSeq() uint64 {
	l.seq++
	return l.seq
}

func (l *List[R]) append(item *Item[R]) {
	l.idDataMatch[item.id] = item
	l.list = append(l.list, item)
}

func (l *List[R]) mustGet(id uuid.UUID) (*Item[R], error) {
	item, found := l.idDataMatch[id]
	if !found {
		return nil, fmt.Errorf("%s (%s): %w", l.dataType, id, ErrItemNotFound)
	}

	return item, nil
}

// findItemIdx returns the specified item index.
// Panics on failure (should not happen).
func (l *List[R]) findItemIdx(item *Item[R]) int {
	for i := range l.list {
		if l.list[i] == item {
			return i
		}
	}
	panic("item not found: by pointer")
}

// NewCoreList creates a new empty authoritative List object.
func NewCoreList[R Record[R]](dataType model.DataType) *List[R] {
	return &List[R]{
		dataType:    dataType,
		style:       CoreListStyle,
		idDataMatch: make(map[uuid.UUID]*Item[R]),
	}
}

// NewEditList creates a session List as a deep, independent copy of the base list live items.
// Copied items keep their base ids and link back to their base counterpart.
func NewEditList[R Record[R]](base *List[R]) *List[R] {
	l := &List[R]{
		dataType:    base.dataType,
		style:       EditListStyle,
		base:        base,
		idDataMatch: make(map[uuid.UUID]*Item[R], len(base.list)),
		less:        base.less,
	}

	for _, baseItem := range base.list {
		if baseItem.IsDeleted() {
			continue
		}

		item := newItem(baseItem.id, l.nextSeq(), model.CleanItemState, 0, baseItem.record.Clone())
		item.baseLink, item.hasBase = baseItem.id, true
		l.append(item)
	}

	return l
}
