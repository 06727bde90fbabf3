package neuron

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"axonet/internal/model"
)

// mailboxCapacity bounds the per-neuron input queue. Senders suspend on a
// full mailbox instead of dropping signals.
const mailboxCapacity = 5

const commandCapacity = 4

// Reporter receives activity records from neuron units. Implementations must
// never block the caller.
type Reporter interface {
	Report(rec model.ActivityRecord)
}

type envelope struct {
	dendrite int
	signal   model.Signal
}

// Neuron is one autonomous unit of the network: a fixed ordered set of
// weighted dendrites, an accumulator with a reset policy, and a single
// broadcast axon. Each neuron runs as its own goroutine; all hot-path state
// is mutated only inside Run, serialized through the mailbox.
//
// Wiring metadata (the upstream table and the axon target set) is the only
// state touched from the caller's context, guarded by a short critical
// section.
type Neuron struct {
	id        string
	soma      *Soma
	dendrites []*Dendrite
	axon      *Axon

	mailbox  chan envelope
	commands chan model.Command

	mu       sync.Mutex
	upstream map[int]string

	monitoring atomic.Bool
	state      atomic.Int32

	reporter Reporter
}

// Unit lifecycle states. An idle unit accepts deliveries into its buffered
// mailbox; they are consumed once the unit is scheduled.
const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// New builds a neuron from an ordered dendrite configuration sequence. An
// empty sequence auto-supplies one default dendrite; it is a default-filling
// policy, not an error.
func New(id string, bias int, cfgs []model.DendriteCfg, reporter Reporter) (*Neuron, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: neuron id is required", ErrConfig)
	}
	if len(cfgs) == 0 {
		cfgs = []model.DendriteCfg{model.DefaultDendriteCfg()}
	}

	dendrites := make([]*Dendrite, 0, len(cfgs))
	for i, cfg := range cfgs {
		d, err := NewDendrite(cfg)
		if err != nil {
			return nil, fmt.Errorf("dendrite %d: %w", i, err)
		}
		dendrites = append(dendrites, d)
	}

	return &Neuron{
		id:        id,
		soma:      NewSoma(bias),
		dendrites: dendrites,
		axon:      NewAxon(),
		mailbox:   make(chan envelope, mailboxCapacity),
		commands:  make(chan model.Command, commandCapacity),
		upstream:  make(map[int]string),
		reporter:  reporter,
	}, nil
}

func (n *Neuron) ID() string {
	return n.id
}

func (n *Neuron) Axon() *Axon {
	return n.axon
}

func (n *Neuron) DendriteCount() int {
	return len(n.dendrites)
}

// Dendrite returns the slot at the given index, or false when out of range.
func (n *Neuron) Dendrite(idx int) (*Dendrite, bool) {
	if idx < 0 || idx >= len(n.dendrites) {
		return nil, false
	}
	return n.dendrites[idx], true
}

// DendriteConfigs returns the ordered configuration the dendrites were built
// from, for topology export.
func (n *Neuron) DendriteConfigs() []model.DendriteCfg {
	cfgs := make([]model.DendriteCfg, 0, len(n.dendrites))
	for _, d := range n.dendrites {
		cfgs = append(cfgs, d.Config())
	}
	return cfgs
}

func (n *Neuron) Bias() int {
	return n.soma.Bias()
}

// AttachUpstream marks the dendrite slot as fed by the named source. A slot
// accepts at most one upstream connection.
func (n *Neuron) AttachUpstream(idx int, sourceID string) error {
	if idx < 0 || idx >= len(n.dendrites) {
		return fmt.Errorf("dendrite %d out of range for neuron %s", idx, n.id)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if current, occupied := n.upstream[idx]; occupied {
		return fmt.Errorf("dendrite %d of neuron %s already fed by %s", idx, n.id, current)
	}
	n.upstream[idx] = sourceID
	return nil
}

func (n *Neuron) DetachUpstream(idx int) {
	n.mu.Lock()
	delete(n.upstream, idx)
	n.mu.Unlock()
}

// Upstream reports the source feeding the dendrite slot, if any.
func (n *Neuron) Upstream(idx int) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	source, ok := n.upstream[idx]
	return source, ok
}

// UpstreamSources returns a snapshot of the occupied slots.
func (n *Neuron) UpstreamSources() map[int]string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make(map[int]string, len(n.upstream))
	for idx, source := range n.upstream {
		out[idx] = source
	}
	return out
}

func (n *Neuron) ConnectedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.upstream)
}

// Deliver enqueues a signal for the dendrite slot. It suspends while the
// mailbox is full and fails with ErrSend when the neuron unit is not running.
func (n *Neuron) Deliver(ctx context.Context, dendrite int, sig model.Signal) error {
	if dendrite < 0 || dendrite >= len(n.dendrites) {
		return fmt.Errorf("dendrite %d out of range for neuron %s", dendrite, n.id)
	}
	if n.state.Load() == stateStopped {
		return fmt.Errorf("%w: neuron %s is not running", ErrSend, n.id)
	}

	select {
	case n.mailbox <- envelope{dendrite: dendrite, signal: sig}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrSend, ctx.Err())
	}
}

// Command hands a control message to the neuron. Commands are consumed
// opportunistically by the run loop and never block the caller; a command
// that does not fit the buffer is dropped.
func (n *Neuron) Command(cmd model.Command) {
	select {
	case n.commands <- cmd:
	default:
	}
}

// Running reports whether the neuron unit is currently scheduled.
func (n *Neuron) Running() bool {
	return n.state.Load() == stateRunning
}

// Stopped reports whether the unit has terminated. A stopped unit rejects
// deliveries until it is rescheduled.
func (n *Neuron) Stopped() bool {
	return n.state.Load() == stateStopped
}

// Run is the neuron unit: it waits on the mailbox and the command channel
// until the context is cancelled. A panic in signal processing is converted
// to an error so the supervising layer can decide a recovery policy.
func (n *Neuron) Run(ctx context.Context) (err error) {
	defer func() {
		n.state.Store(stateStopped)
		if r := recover(); r != nil {
			err = fmt.Errorf("neuron %s: panic: %v", n.id, r)
		}
	}()
	n.state.Store(stateRunning)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-n.commands:
			n.applyCommand(cmd)
		case env := <-n.mailbox:
			n.process(ctx, env)
		}
	}
}

func (n *Neuron) applyCommand(cmd model.Command) {
	switch cmd {
	case model.CommandMonitorOn:
		n.monitoring.Store(true)
	case model.CommandMonitorOff:
		n.monitoring.Store(false)
	}
}

func (n *Neuron) process(ctx context.Context, env envelope) {
	n.mu.Lock()
	weighted := n.dendrites[env.dendrite].Forward(env.signal)
	out, flushed := n.soma.Absorb(env.dendrite, weighted, len(n.upstream))
	n.mu.Unlock()

	if n.monitoring.Load() {
		n.report(model.EventReceive, weighted, "")
	}
	if !flushed {
		return
	}

	failures := n.axon.Emit(ctx, model.NewSignal(out))
	for targetID, deliverErr := range failures {
		n.report(model.EventSendError, out, fmt.Sprintf("target %s: %v", targetID, deliverErr))
	}
	if n.monitoring.Load() {
		n.report(model.EventFlush, out, "")
	}
}

func (n *Neuron) report(kind model.EventKind, value int, detail string) {
	if n.reporter == nil {
		return
	}
	n.reporter.Report(model.ActivityRecord{
		ID:        n.id,
		Kind:      kind,
		Timestamp: time.Now(),
		Value:     value,
		Detail:    detail,
	})
}

// Info snapshots the neuron state for monitoring consumers.
func (n *Neuron) Info() model.NeuronInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	totalWeight := 0
	for _, d := range n.dendrites {
		totalWeight += d.Weight()
	}
	return model.NeuronInfo{
		Timestamp:         time.Now(),
		ID:                n.id,
		DendriteCount:     len(n.dendrites),
		ConnectedCount:    len(n.upstream),
		ReportedCount:     n.soma.ReportedCount(),
		ResetCount:        n.soma.ResetCount(),
		HitCount:          n.soma.HitCount(),
		Accumulator:       n.soma.Accumulator(),
		ReceiverCount:     n.axon.TargetCount(),
		TotalWeight:       totalWeight,
		MonitoringEnabled: n.monitoring.Load(),
	}
}
