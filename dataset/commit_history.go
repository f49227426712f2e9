package dataset

import (
	"sync"
	"time"

	"github.com/itiky/edit-session/model"
)

type (
	// CommitHistory keeps the committed dataset versions.
	// The history is read by report code concurrently with the edit thread committing.
	CommitHistory struct {
		sync.RWMutex
		// List of committed versions
		commits []Commit
	}

	Commit struct {
		Version     int
		CommittedAt time.Time
		// Live items per data type after the commit
		Counts map[model.DataType]int
	}
)

// AddVersion adds a new Commit.
func (h *CommitHistory) AddVersion(version int, counts map[model.DataType]int) {
	h.Lock()
	defer h.Unlock()

	h.commits = append(h.commits, Commit{
		Version:     version,
		CommittedAt: time.Now().UTC(),
		Counts:      counts,
	})
}

// Latest returns the last Commit.
func (h *CommitHistory) Latest() (Commit, bool) {
	h.RLock()
	defer h.RUnlock()

	if len(h.commits) == 0 {
		return Commit{}, false
	}

	return h.commits[len(h.commits)-1], true
}

// Get returns a Commit by version.
func (h *CommitHistory) Get(version int) (Commit, bool) {
	h.RLock()
	defer h.RUnlock()

	for _, c := range h.commits {
		if c.Version == version {
			return c, true
		}
	}

	return Commit{}, false
}

// Len returns the number of commits recorded.
func (h *CommitHistory) Len() int {
	h.RLock()
	defer h.RUnlock()

	return len(h.commits)
}

// NewCommitHistory creates a new empty CommitHistory object.
func NewCommitHistory() *CommitHistory {
	return &CommitHistory{
		commits: make([]Commit, 0),
	}
}
