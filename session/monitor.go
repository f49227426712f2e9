package session

import (
	"log"
	"sync"
	"time"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	applyResultCommitted  = "committed"
	applyResultRolledBack = "rolled_back"
	applyResultRejected   = "rejected"
)

var (
	// applyTotal counts ApplyChanges calls by result
	applyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editsession_apply_total",
		Help: "Total apply changes calls by result",
	}, []string{"result"})

	// applyDuration tracks ApplyChanges latency
	applyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "editsession_apply_duration_seconds",
		Help:    "Apply changes duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"result"})

	// rewindTotal counts undo / reset requests
	rewindTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editsession_rewind_total",
		Help: "Total session rewinds by kind",
	}, []string{"kind"})
)

var monitor *Monitor

// Monitor keeps UpdateSet stats.
type Monitor struct {
	sync.Mutex
	applyDur   *movingaverage.MovingAverage
	committed  int
	rolledBack int
	rejected   int
	undos      int
	resets     int
	stopCh     chan struct{}
}

// DefaultMonitor returns the Monitor shared by every UpdateSet.
func DefaultMonitor() *Monitor {
	return monitor
}

// ApplyServed updates the ApplyChanges metrics.
func (m *Monitor) ApplyServed(result string, dur time.Duration) {
	applyTotal.WithLabelValues(result).Inc()
	applyDuration.WithLabelValues(result).Observe(dur.Seconds())

	m.Lock()
	defer m.Unlock()

	m.applyDur.Add(float64(dur/time.Microsecond) / 1000.0)
	switch result {
	case applyResultCommitted:
		m.committed++
	case applyResultRolledBack:
		m.rolledBack++
	case applyResultRejected:
		m.rejected++
	}
}

// UndoServed increments the undo metric.
func (m *Monitor) UndoServed() {
	rewindTotal.WithLabelValues("undo").Inc()

	m.Lock()
	defer m.Unlock()

	m.undos++
}

// ResetServed increments the reset metric.
func (m *Monitor) ResetServed() {
	rewindTotal.WithLabelValues("reset").Inc()

	m.Lock()
	defer m.Unlock()

	m.resets++
}

// Stats returns counters accumulated since the last report.
func (m *Monitor) Stats() (committed, rolledBack, rejected, undos, resets int) {
	m.Lock()
	defer m.Unlock()

	return m.committed, m.rolledBack, m.rejected, m.undos, m.resets
}

// Report prints the stats and resets the counters.
func (m *Monitor) Report() {
	m.Lock()
	defer m.Unlock()

	log.Printf("Monitor:")
	log.Printf("  - Applies committed:    %d", m.committed)
	log.Printf("  - Applies rolled back:  %d", m.rolledBack)
	log.Printf("  - Applies rejected:     %d", m.rejected)
	log.Printf("  - Undo / reset:         %d / %d", m.undos, m.resets)
	log.Printf("  - Apply dur [ms]:       %.2f", m.applyDur.Avg())
	m.committed, m.rolledBack, m.rejected = 0, 0, 0
	m.undos, m.resets = 0, 0
}

// Start starts the Monitor worker.
func (m *Monitor) Start(period time.Duration) {
	m.Lock()
	if m.stopCh != nil || period <= 0 {
		m.Unlock()
		return
	}
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.Unlock()

	go m.worker(stopCh, period)
}

// Stop stops the Monitor worker.
func (m *Monitor) Stop() {
	m.Lock()
	defer m.Unlock()

	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	m.stopCh = nil
}

// worker does the actual job.
func (m *Monitor) worker(stopCh <-chan struct{}, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			// Stop the monitor
			return
		case <-ticker.C:
			// Print the report
			m.Report()
		}
	}
}

func init() {
	monitor = &Monitor{
		applyDur: movingaverage.New(5),
	}
}
