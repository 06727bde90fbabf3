package neuron

import (
	"context"
	"sort"
	"sync"

	"axonet/internal/model"
)

// Target is one delivery point registered on an axon: a downstream synapse
// slot or an external output port. Deliver may block while the receiver's
// channel is full; a suspended flush is preferred over a dropped value.
type Target interface {
	ID() string
	Deliver(ctx context.Context, sig model.Signal) error
}

// Axon is the single broadcast point of a neuron. It holds non-owning links
// to its targets; the target set is wiring state and may be mutated from the
// caller's context while the owning neuron is live.
type Axon struct {
	mu      sync.RWMutex
	targets map[string]Target
}

func NewAxon() *Axon {
	return &Axon{targets: make(map[string]Target)}
}

func (a *Axon) Attach(t Target) {
	a.mu.Lock()
	a.targets[t.ID()] = t
	a.mu.Unlock()
}

func (a *Axon) Detach(id string) {
	a.mu.Lock()
	delete(a.targets, id)
	a.mu.Unlock()
}

func (a *Axon) TargetCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.targets)
}

func (a *Axon) TargetIDs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.targets))
	for id := range a.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Emit broadcasts the signal to every registered target, each delivery
// attempted independently. A failed target never aborts delivery to the
// others; failures are returned keyed by target id so the caller can surface
// them on the monitoring tap. Emitting over an empty target set is a no-op.
func (a *Axon) Emit(ctx context.Context, sig model.Signal) map[string]error {
	a.mu.RLock()
	snapshot := make([]Target, 0, len(a.targets))
	for _, t := range a.targets {
		snapshot = append(snapshot, t)
	}
	a.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID() < snapshot[j].ID() })

	var failed map[string]error
	for _, t := range snapshot {
		if err := t.Deliver(ctx, sig); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[t.ID()] = err
		}
	}
	return failed
}
