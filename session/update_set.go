package session

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
	"github.com/itiky/edit-session/storage"
)

// UpdateSet is a registry of UpdateEntry objects of a single edit session.
// It keeps every bound list in lock-step with the session version and applies
// the session edits onto the base lists as a single all-or-nothing step.
// UpdateSet is not safe for concurrent use: a session has a single writer.
type UpdateSet struct {
	// Config
	host      Host
	errorSink ErrorSink
	// State
	entries    []entry
	entryMatch map[model.DataType]entry
	version    int
	// Steps up to floor were condensed into a single undo step
	floor      int
	lastErrors model.ErrorList
	listeners  []Listener
}

// Register returns the UpdateEntry for the data type creating it on the first call.
// A registered entry is unbound from its previous list.
// Panics if the data type was registered with another record type (should not happen).
func Register[R storage.Record[R]](s *UpdateSet, dataType model.DataType) *UpdateEntry[R] {
	if e, found := s.entryMatch[dataType]; found {
		typed, ok := e.(*UpdateEntry[R])
		if !ok {
			panic(fmt.Sprintf("UpdateSet: register (%s): record type mismatch: %T", dataType, e))
		}
		typed.SetEditList(nil)

		return typed
	}

	e := &UpdateEntry[R]{
		dataType: dataType,
		set:      s,
	}
	s.entries = append(s.entries, e)
	s.entryMatch[dataType] = e

	return e
}

// Version returns the session version.
func (s *UpdateSet) Version() int {
	return s.version
}

// DataTypes returns the registered data types in registration order.
func (s *UpdateSet) DataTypes() []model.DataType {
	out := make([]model.DataType, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.DataType())
	}

	return out
}

// AddListener adds a session state change listener.
func (s *UpdateSet) AddListener(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// EditState returns the joined edit state of every bound list.
func (s *UpdateSet) EditState() model.EditState {
	state := model.CleanEditState
	for _, e := range s.entries {
		state = state.Combine(e.editState())
	}

	return state
}

// Errors returns the validation errors of every bound list.
func (s *UpdateSet) Errors() model.ErrorList {
	var errs model.ErrorList
	for _, e := range s.entries {
		errs = append(errs, e.errors()...)
	}

	return errs
}

// LastErrors returns the errors reported by the last ApplyChanges call.
func (s *UpdateSet) LastErrors() model.ErrorList {
	return s.lastErrors
}

// IncrementVersion closes the current edit step: every bound list moves to the new version and is revalidated.
func (s *UpdateSet) IncrementVersion() {
	s.version++
	for _, e := range s.entries {
		e.setVersion(s.version)
		e.validate()
		e.findEditState()
	}

	s.notify()
}

// Floor returns the version the session history was last condensed to.
func (s *UpdateSet) Floor() int {
	return s.floor
}

// RewindToVersion reverts every bound list to version.
// Versions condensed away (between 0 and the floor) can not be reached.
// Panics if version was never reached by the session (should not happen).
func (s *UpdateSet) RewindToVersion(version int) {
	if version < 0 || version > s.version {
		panic(fmt.Sprintf("UpdateSet: rewind: version %d out of [0, %d]", version, s.version))
	}
	if version > 0 && version < s.floor {
		panic(fmt.Sprintf("UpdateSet: rewind: version %d condensed (floor %d)", version, s.floor))
	}

	s.version = version
	if version < s.floor {
		s.floor = 0
	}
	for _, e := range s.entries {
		e.rewindToVersion(version)
		e.findEditState()
	}

	s.notify()
}

// UndoLastChange reverts the last edit step.
// The condensed steps up to the floor are reverted at once.
func (s *UpdateSet) UndoLastChange() {
	if s.version == 0 {
		return
	}

	target := s.version - 1
	if target < s.floor {
		target = 0
	}

	monitor.UndoServed()
	s.RewindToVersion(target)
}

// ResetChanges reverts every session edit.
func (s *UpdateSet) ResetChanges() {
	if s.version == 0 {
		return
	}

	monitor.ResetServed()
	s.RewindToVersion(0)
}

// CondenseHistory squashes the edit steps up to floor into a single undo step.
// Steps made after floor stay undoable one by one, a reset still restores the opened state.
// Panics if floor was never reached by the session (should not happen).
func (s *UpdateSet) CondenseHistory(floor int) {
	if floor < 0 || floor > s.version {
		panic(fmt.Sprintf("UpdateSet: condense: version %d out of [0, %d]", floor, s.version))
	}
	if floor <= s.floor {
		return
	}

	s.floor = floor
	for _, e := range s.entries {
		e.condenseHistory(floor)
		e.findEditState()
	}

	s.notify()
}

// ApplyChanges validates the session and commits it onto the base lists.
// Returns false if nothing was committed: the session is left as it was and stays editable.
func (s *UpdateSet) ApplyChanges() bool {
	start := time.Now()

	// Validation
	for _, e := range s.entries {
		e.validate()
	}
	if s.findEditState() == model.ErrorEditState {
		errs := s.Errors()
		log.Printf("UpdateSet: apply rejected: %d validation errors", len(errs))

		s.setErrors(errs)
		s.notify()
		monitor.ApplyServed(applyResultRejected, time.Since(start))

		return false
	}

	// Nothing to commit
	if s.EditState() == model.CleanEditState {
		s.rebase()
		s.setErrors(nil)
		s.notify()

		log.Printf("UpdateSet: no changes to apply")
		monitor.ApplyServed(applyResultCommitted, time.Since(start))

		return true
	}

	// Prepare
	if err := s.prepareChanges(); err != nil {
		s.failApply(err, start)
		return false
	}

	// Analysis of the prepared base dataset
	if err := s.host.AnalyseData(false); err != nil {
		s.failApply(fmt.Errorf("analyse data: %w", err), start)
		return false
	}

	// Commit
	for _, e := range s.entries {
		e.CommitChanges()
	}
	s.rebase()

	s.host.IncrementVersion()
	s.host.RefreshViews()
	s.setErrors(nil)
	s.notify()

	log.Printf("UpdateSet: changes applied within %v", time.Since(start))
	monitor.ApplyServed(applyResultCommitted, time.Since(start))

	return true
}

// Execute runs a named session command.
func (s *UpdateSet) Execute(cmd model.Command) error {
	switch cmd {
	case model.OkCommand:
		if !s.ApplyChanges() {
			return ErrApplyFailed
		}
	case model.UndoCommand:
		s.UndoLastChange()
	case model.ResetCommand:
		s.ResetChanges()
	default:
		return fmt.Errorf("unsupported command: %s", cmd)
	}

	return nil
}

// ResolveLink implements storage.LinkResolver interface.
func (s *UpdateSet) ResolveLink(dataType model.DataType, id uuid.UUID) (uuid.UUID, error) {
	e, found := s.entryMatch[dataType]
	if !found {
		return uuid.Nil, fmt.Errorf("%s (%s): not registered: %w", dataType, id, storage.ErrUnresolvedLink)
	}

	baseId, ok := e.resolveLink(id)
	if !ok {
		return uuid.Nil, fmt.Errorf("%s (%s): %w", dataType, id, storage.ErrUnresolvedLink)
	}

	return baseId, nil
}

// prepareChanges prepares every entry in registration order stopping at the first failure.
func (s *UpdateSet) prepareChanges() error {
	for _, e := range s.entries {
		if err := e.PrepareChanges(); err != nil {
			return PrepareError{DataType: e.DataType(), Err: err}
		}
	}

	return nil
}

// failApply rolls back every entry, including those prepared before the failure.
func (s *UpdateSet) failApply(err error, start time.Time) {
	log.Printf("UpdateSet: apply failed: %v", err)

	for _, e := range s.entries {
		e.RollBackChanges()
	}

	if analyseErr := s.host.AnalyseData(true); analyseErr != nil {
		log.Printf("UpdateSet: analyse data after rollback: %v", analyseErr)
	}

	errs := model.ErrorList{}
	var prepareErr PrepareError
	if errors.As(err, &prepareErr) {
		errs = append(errs, prepareErr.FieldError())
	} else {
		errs = append(errs, model.FieldError{Message: err.Error()})
	}
	errs = append(errs, s.host.Errors()...)

	s.setErrors(errs)
	s.notify()
	monitor.ApplyServed(applyResultRolledBack, time.Since(start))
}

// rebase moves the session and every bound list back to version 0.
func (s *UpdateSet) rebase() {
	s.version, s.floor = 0, 0
	for _, e := range s.entries {
		e.setVersion(0)
	}
	s.findEditState()
}

func (s *UpdateSet) findEditState() model.EditState {
	state := model.CleanEditState
	for _, e := range s.entries {
		state = state.Combine(e.findEditState())
	}

	return state
}

func (s *UpdateSet) setErrors(errs model.ErrorList) {
	s.lastErrors = errs
	if s.errorSink != nil {
		s.errorSink.SetErrors(errs)
	}
}

func (s *UpdateSet) notify() {
	state := s.EditState()
	for _, l := range s.listeners {
		l(state)
	}
}

// NewUpdateSet creates a new UpdateSet object.
func NewUpdateSet(host Host, errorSink ErrorSink) (*UpdateSet, error) {
	if host == nil {
		return nil, fmt.Errorf("%s: nil", "host")
	}

	return &UpdateSet{
		host:       host,
		errorSink:  errorSink,
		entryMatch: make(map[model.DataType]entry),
	}, nil
}
