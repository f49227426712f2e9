package storage

import (
	"fmt"

	"github.com/itiky/edit-session/model"
)

// Snapshot is a full copy of an Item state tagged by the version it was current at.
type Snapshot[R Record[R]] struct {
	Version int
	State   model.ItemState
	Record  R
}

// History returns a copy of the item snapshots, oldest first.
func (i *Item[R]) History() []Snapshot[R] {
	out := make([]Snapshot[R], len(i.history))
	copy(out, i.history)

	return out
}

// pushHistory saves the pre-mutation state before the item moves to version.
// Mutations within one version share a single snapshot.
// Panics if version goes backwards (should not happen).
func (i *Item[R]) pushHistory(version int) {
	if version < i.version {
		panic(fmt.Sprintf("item %s: push history: version %d is behind item version %d", i.id, version, i.version))
	}
	if version == i.version && !i.state.IsClean() {
		return
	}

	i.history = append(i.history, Snapshot[R]{
		Version: i.version,
		State:   i.state,
		Record:  i.record.Clone(),
	})
	i.version = version
}

// RewindToVersion restores the item to the state it had at version.
// Returns false if the item did not exist at that version and must be dropped.
func (i *Item[R]) RewindToVersion(version int) bool {
	for i.version > version {
		n := len(i.history)
		if n == 0 {
			return false
		}

		snap := i.history[n-1]
		i.history = i.history[:n-1]
		i.version, i.state, i.record = snap.Version, snap.State, snap.Record
		i.errors = nil
	}
	if len(i.history) == 0 {
		i.history = nil
	}

	return true
}

// CondenseHistory drops the intermediate snapshots taken before floor.
// Three kinds of snapshots survive: the baseline (oldest) one so the item still rewinds to its
// original state, the one holding the state at floor (re-tagged as floor) and every snapshot
// taken after floor. Rewinding to a version strictly between 0 and floor is no longer exact.
func (i *Item[R]) CondenseHistory(floor int) {
	if len(i.history) < 2 {
		return
	}

	if i.version <= floor {
		i.history = i.history[:1]
		return
	}

	// Snapshot holding the state at floor
	last := -1
	for idx, snap := range i.history {
		if snap.Version > floor {
			break
		}
		last = idx
	}
	if last <= 0 {
		return
	}

	floorSnap := i.history[last]
	floorSnap.Version = floor
	kept := make([]Snapshot[R], 0, len(i.history)-last+1)
	kept = append(kept, i.history[0], floorSnap)
	i.history = append(kept, i.history[last+1:]...)
}
