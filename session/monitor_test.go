package session

import (
	"sync"
	"testing"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"github.com/stretchr/testify/require"
)

func Test_Monitor_Stats(t *testing.T) {
	m := &Monitor{applyDur: movingaverage.New(5)}

	m.ApplyServed(applyResultCommitted, 2*time.Millisecond)
	m.ApplyServed(applyResultCommitted, 4*time.Millisecond)
	m.ApplyServed(applyResultRolledBack, time.Millisecond)
	m.ApplyServed(applyResultRejected, time.Millisecond)
	m.UndoServed()
	m.ResetServed()
	m.ResetServed()

	committed, rolledBack, rejected, undos, resets := m.Stats()
	require.Equal(t, 2, committed)
	require.Equal(t, 1, rolledBack)
	require.Equal(t, 1, rejected)
	require.Equal(t, 1, undos)
	require.Equal(t, 2, resets)

	m.Report()
	committed, rolledBack, rejected, undos, resets = m.Stats()
	require.Zero(t, committed+rolledBack+rejected+undos+resets)
}

func Test_Monitor_StartStop(t *testing.T) {
	m := &Monitor{applyDur: movingaverage.New(5)}

	m.Start(0)
	require.Nil(t, m.stopCh)

	m.Start(time.Millisecond)
	require.NotNil(t, m.stopCh)
	time.Sleep(5 * time.Millisecond)

	m.Stop()
	require.Nil(t, m.stopCh)
	m.Stop()
}

// Test races Start and Stop from several goroutines: only one worker channel may exist at a time.
func Test_Monitor_ConcurrentStartStop(t *testing.T) {
	m := &Monitor{applyDur: movingaverage.New(5)}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Start(time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			m.Stop()
		}()
	}
	wg.Wait()

	m.Stop()
	m.Lock()
	require.Nil(t, m.stopCh)
	m.Unlock()

	m.Start(time.Millisecond)
	m.Start(time.Millisecond)
	m.Stop()
	require.Nil(t, m.stopCh)
}
