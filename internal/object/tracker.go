package object

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrTrackingEnabled = errors.New("object tracking already enabled")

// Tracker records object allocation and destruction per type.
// It is process-wide diagnostic state, installed by EnableTracking and removed
// by DisableTracking.
type Tracker struct {
	reg       prometheus.Registerer
	created   *prometheus.CounterVec
	destroyed *prometheus.CounterVec
	live      *prometheus.GaugeVec

	mu     sync.Mutex
	counts map[string]int
}

var tracker atomic.Pointer[Tracker]

// EnableTracking registers the object metrics with reg and starts tracking.
func EnableTracking(reg prometheus.Registerer) (*Tracker, error) {
	t := &Tracker{
		reg: reg,
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ravecore",
			Subsystem: "objects",
			Name:      "created_total",
			Help:      "Objects created or cloned, by type.",
		}, []string{"type"}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ravecore",
			Subsystem: "objects",
			Name:      "destroyed_total",
			Help:      "Objects released to zero references, by type.",
		}, []string{"type"}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ravecore",
			Subsystem: "objects",
			Name:      "live",
			Help:      "Objects currently holding at least one reference, by type.",
		}, []string{"type"}),
		counts: make(map[string]int),
	}
	for _, c := range []prometheus.Collector{t.created, t.destroyed, t.live} {
		if err := reg.Register(c); err != nil {
			t.unregister()
			return nil, err
		}
	}
	if !tracker.CompareAndSwap(nil, t) {
		t.unregister()
		return nil, ErrTrackingEnabled
	}
	return t, nil
}

// DisableTracking uninstalls the current tracker and unregisters its metrics.
func DisableTracking() {
	if t := tracker.Swap(nil); t != nil {
		t.unregister()
	}
}

func (t *Tracker) unregister() {
	t.reg.Unregister(t.created)
	t.reg.Unregister(t.destroyed)
	t.reg.Unregister(t.live)
}

// Live returns the number of live objects of the named type.
func (t *Tracker) Live(typeName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[typeName]
}

// Leaks returns every type with live objects and its count.
func (t *Tracker) Leaks() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int)
	for name, n := range t.counts {
		if n > 0 {
			out[name] = n
		}
	}
	return out
}

func (t *Tracker) add(name string, delta int) {
	t.mu.Lock()
	t.counts[name] += delta
	t.mu.Unlock()
	t.live.WithLabelValues(name).Add(float64(delta))
}

func trackCreated(d *Descriptor) {
	t := tracker.Load()
	if t == nil {
		return
	}
	t.created.WithLabelValues(d.Name).Inc()
	t.add(d.Name, 1)
}

func trackDestroyed(d *Descriptor) {
	t := tracker.Load()
	if t == nil {
		return
	}
	t.destroyed.WithLabelValues(d.Name).Inc()
	t.add(d.Name, -1)
}
