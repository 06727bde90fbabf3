// Package network assembles neurons, ports and the monitoring tap into one
// runnable signal-propagation graph. All wiring operations are atomic:
// validation happens under the registry lock and a failed precondition leaves
// the graph untouched.
package network

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"axonet/internal/idgen"
	"axonet/internal/model"
	"axonet/internal/neuron"
	"axonet/internal/platform"
)

var (
	// ErrNotFound reports a neuron id, dendrite slot or port index that the
	// network does not know.
	ErrNotFound = errors.New("not found")
	// ErrPortBusy reports a port or dendrite slot that is already occupied.
	ErrPortBusy = errors.New("already occupied")
	// ErrDisconnected reports a neuron whose unit terminated and was not
	// brought back by the recovery policy.
	ErrDisconnected = errors.New("neuron unit disconnected")
)

// outputPortCapacity buffers external consumers the same way neuron
// mailboxes buffer internal ones.
const outputPortCapacity = 5

type inputPort struct {
	id       string
	neuronID string
	dendrite int
	hits     atomic.Uint64
}

type outputPort struct {
	id       string
	neuronID string
	ch       chan model.Signal
	hits     atomic.Uint64
}

// Config carries the collaborators a network is built with. The zero value
// is usable: ids default to the sequential generator and supervision to the
// platform defaults with a bounded restart budget.
type Config struct {
	IDs         idgen.Generator
	Supervision platform.Policy
	TapCapacity int
}

// Network is the wiring facade over a set of neuron units. The registry
// lock guards topology; signal flow itself runs lock-free through neuron
// mailboxes and port channels.
type Network struct {
	id     string
	ids    idgen.Generator
	tap    *Tap
	policy platform.Policy

	mu      sync.RWMutex
	neurons map[string]*neuron.Neuron
	inputs  map[int]*inputPort
	outputs map[int]*outputPort
	started bool
	stopped bool

	supervisor *platform.Supervisor
	monitoring atomic.Bool
}

func New(cfg Config) *Network {
	ids := cfg.IDs
	if ids == nil {
		ids = idgen.NewSequential()
	}
	policy := cfg.Supervision
	if policy.MaxRestarts == 0 {
		policy.MaxRestarts = 5
	}
	return &Network{
		id:      ids.NetworkID(),
		ids:     ids,
		tap:     NewTap(cfg.TapCapacity),
		policy:  policy,
		neurons: make(map[string]*neuron.Neuron),
		inputs:  make(map[int]*inputPort),
		outputs: make(map[int]*outputPort),
	}
}

func (n *Network) ID() string {
	return n.id
}

func (n *Network) Tap() *Tap {
	return n.tap
}

// Len reports the number of registered neurons.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.neurons)
}

func (n *Network) HasNeuron(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.neurons[id]
	return ok
}

// NeuronIDs lists the registered neurons, sorted.
func (n *Network) NeuronIDs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]string, 0, len(n.neurons))
	for id := range n.neurons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ports lists the occupied input and output port indexes, sorted.
func (n *Network) Ports() (inputs, outputs []int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for port := range n.inputs {
		inputs = append(inputs, port)
	}
	for port := range n.outputs {
		outputs = append(outputs, port)
	}
	sort.Ints(inputs)
	sort.Ints(outputs)
	return inputs, outputs
}

// CreateNeuron registers a neuron built from the dendrite configuration
// sequence and returns its assigned id. On a started network the unit is
// scheduled immediately and inherits the current monitoring mode.
func (n *Network) CreateNeuron(bias int, cfgs []model.DendriteCfg) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.ids.NeuronID(n.id)
	if _, exists := n.neurons[id]; exists {
		return "", fmt.Errorf("generated id already in use: %s", id)
	}
	nr, err := neuron.New(id, bias, cfgs, n.tap)
	if err != nil {
		return "", err
	}

	if n.monitoring.Load() {
		nr.Command(model.CommandMonitorOn)
	}
	if n.started {
		if err := n.spawnLocked(nr); err != nil {
			return "", err
		}
	}
	n.neurons[id] = nr
	return id, nil
}

func (n *Network) spawnLocked(nr *neuron.Neuron) error {
	spec := platform.UnitSpec{Name: nr.ID(), Restart: platform.RestartTransient}
	return n.supervisor.StartSpec(spec, nr.Run)
}

// ConnectNeurons wires the source's axon into one dendrite slot of the
// destination. A self connection needs at least two dendrites, otherwise the
// neuron would saturate its own single input.
func (n *Network) ConnectNeurons(srcID, dstID string, dstDendrite int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, ok := n.neurons[srcID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, srcID)
	}
	dst, ok := n.neurons[dstID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, dstID)
	}
	if dstDendrite < 0 || dstDendrite >= dst.DendriteCount() {
		return fmt.Errorf("%w: dendrite %d of neuron %s", ErrNotFound, dstDendrite, dstID)
	}
	if srcID == dstID && dst.DendriteCount() < 2 {
		return fmt.Errorf("%w: self connection on %s requires at least two dendrites", neuron.ErrConfig, srcID)
	}
	if current, occupied := dst.Upstream(dstDendrite); occupied {
		return fmt.Errorf("%w: dendrite %d of neuron %s is fed by %s", ErrPortBusy, dstDendrite, dstID, current)
	}

	if err := dst.AttachUpstream(dstDendrite, srcID); err != nil {
		return err
	}
	src.Axon().Attach(&synapseTarget{
		id:       synapseTargetID(dstID, dstDendrite),
		dst:      dst,
		dendrite: dstDendrite,
	})
	return nil
}

// Disconnect removes the inner link between the source and the destination
// dendrite slot.
func (n *Network) Disconnect(srcID, dstID string, dstDendrite int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	src, ok := n.neurons[srcID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, srcID)
	}
	dst, ok := n.neurons[dstID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, dstID)
	}
	current, occupied := dst.Upstream(dstDendrite)
	if !occupied || current != srcID {
		return fmt.Errorf("%w: no link %s -> %s#%d", ErrNotFound, srcID, dstID, dstDendrite)
	}

	dst.DetachUpstream(dstDendrite)
	src.Axon().Detach(synapseTargetID(dstID, dstDendrite))
	return nil
}

// SetupInput binds an external input port to one dendrite slot of a neuron.
func (n *Network) SetupInput(port int, neuronID string, dendrite int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if port < 0 {
		return fmt.Errorf("%w: input port %d", ErrNotFound, port)
	}
	nr, ok := n.neurons[neuronID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, neuronID)
	}
	if dendrite < 0 || dendrite >= nr.DendriteCount() {
		return fmt.Errorf("%w: dendrite %d of neuron %s", ErrNotFound, dendrite, neuronID)
	}
	if _, busy := n.inputs[port]; busy {
		return fmt.Errorf("%w: input port %d", ErrPortBusy, port)
	}
	if current, occupied := nr.Upstream(dendrite); occupied {
		return fmt.Errorf("%w: dendrite %d of neuron %s is fed by %s", ErrPortBusy, dendrite, neuronID, current)
	}

	portID := fmt.Sprintf("%sI%d", n.id, port)
	if err := nr.AttachUpstream(dendrite, portID); err != nil {
		return err
	}
	n.inputs[port] = &inputPort{id: portID, neuronID: neuronID, dendrite: dendrite}
	return nil
}

// SetupOutput binds an external output port to a neuron's axon. Reading the
// port observes every flush of that neuron.
func (n *Network) SetupOutput(port int, neuronID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if port < 0 {
		return fmt.Errorf("%w: output port %d", ErrNotFound, port)
	}
	nr, ok := n.neurons[neuronID]
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, neuronID)
	}
	if _, busy := n.outputs[port]; busy {
		return fmt.Errorf("%w: output port %d", ErrPortBusy, port)
	}

	p := &outputPort{
		id:       fmt.Sprintf("%sO%d", n.id, port),
		neuronID: neuronID,
		ch:       make(chan model.Signal, outputPortCapacity),
	}
	nr.Axon().Attach(&outputTarget{port: p, net: n})
	n.outputs[port] = p
	return nil
}

// FreeOutput detaches the output port from its neuron and releases the index
// for reuse.
func (n *Network) FreeOutput(port int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	p, ok := n.outputs[port]
	if !ok {
		return fmt.Errorf("%w: output port %d", ErrNotFound, port)
	}
	if nr, ok := n.neurons[p.neuronID]; ok {
		nr.Axon().Detach(p.id)
	}
	delete(n.outputs, port)
	return nil
}

// GetOutputReceiver exposes the receive side of an output port.
func (n *Network) GetOutputReceiver(port int) (<-chan model.Signal, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	p, ok := n.outputs[port]
	if !ok {
		return nil, fmt.Errorf("%w: output port %d", ErrNotFound, port)
	}
	return p.ch, nil
}

// SendInput injects a raw value into the network through an input port. The
// call suspends while the receiving neuron's mailbox is full.
func (n *Network) SendInput(ctx context.Context, port, value int) error {
	n.mu.RLock()
	p, ok := n.inputs[port]
	if !ok {
		n.mu.RUnlock()
		return fmt.Errorf("%w: input port %d", ErrNotFound, port)
	}
	nr, ok := n.neurons[p.neuronID]
	started := n.started
	n.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: neuron %s", ErrNotFound, p.neuronID)
	}

	if err := nr.Deliver(ctx, p.dendrite, model.NewSignal(value)); err != nil {
		if started && nr.Stopped() {
			return fmt.Errorf("%w: neuron %s: %v", ErrDisconnected, p.neuronID, err)
		}
		return err
	}

	hits := p.hits.Add(1)
	if n.monitoring.Load() {
		n.tap.Report(model.ActivityRecord{
			ID:        p.id,
			Kind:      model.EventInput,
			Timestamp: time.Now(),
			Value:     value,
			Detail:    fmt.Sprintf("hits=%d", hits),
		})
	}
	return nil
}

// RemoveNeuron deletes a neuron that has no live connections. Upstream
// feeds, axon targets and port bindings must be released first.
func (n *Network) RemoveNeuron(id string) error {
	n.mu.Lock()

	nr, ok := n.neurons[id]
	if !ok {
		n.mu.Unlock()
		return fmt.Errorf("%w: neuron %s", ErrNotFound, id)
	}
	if nr.ConnectedCount() > 0 || nr.Axon().TargetCount() > 0 {
		n.mu.Unlock()
		return fmt.Errorf("neuron %s still has live connections", id)
	}

	delete(n.neurons, id)
	sup := n.supervisor
	started := n.started
	n.mu.Unlock()

	if started && sup != nil {
		sup.Stop(id)
	}
	return nil
}

// BroadcastCommand fans a control message out to every neuron and records
// the mode for neurons created later.
func (n *Network) BroadcastCommand(cmd model.Command) {
	switch cmd {
	case model.CommandMonitorOn:
		n.monitoring.Store(true)
	case model.CommandMonitorOff:
		n.monitoring.Store(false)
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, nr := range n.neurons {
		nr.Command(cmd)
	}
}

// SetMonitoring toggles activity reporting network-wide.
func (n *Network) SetMonitoring(enabled bool) {
	if enabled {
		n.BroadcastCommand(model.CommandMonitorOn)
	} else {
		n.BroadcastCommand(model.CommandMonitorOff)
	}
}

func (n *Network) MonitoringEnabled() bool {
	return n.monitoring.Load()
}

// NeuronStatus snapshots one neuron's counters and accumulator state.
func (n *Network) NeuronStatus(id string) (model.NeuronInfo, error) {
	n.mu.RLock()
	nr, ok := n.neurons[id]
	n.mu.RUnlock()
	if !ok {
		return model.NeuronInfo{}, fmt.Errorf("%w: neuron %s", ErrNotFound, id)
	}
	return nr.Info(), nil
}

// UnitStatus lists the supervised neuron units with restart diagnostics.
// Empty until the network is started.
func (n *Network) UnitStatus() []platform.UnitStatus {
	n.mu.RLock()
	sup := n.supervisor
	n.mu.RUnlock()
	if sup == nil {
		return nil
	}
	return sup.Status()
}

// Start schedules every registered neuron as a supervised unit. Restarted
// and permanently failed units are surfaced on the monitoring tap.
func (n *Network) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return errors.New("network has been shut down")
	}
	if n.started {
		return nil
	}

	hooks := platform.Hooks{
		OnUnitRestart: func(name string, err error, restarts int) {
			n.tap.Report(model.ActivityRecord{
				ID:        name,
				Kind:      model.EventDisconnect,
				Timestamp: time.Now(),
				Detail:    fmt.Sprintf("restart %d: %v", restarts, err),
			})
		},
		OnUnitPermanentFailure: func(name string, err error, restarts int) {
			n.tap.Report(model.ActivityRecord{
				ID:        name,
				Kind:      model.EventDisconnect,
				Timestamp: time.Now(),
				Detail:    fmt.Sprintf("permanent after %d restarts: %v", restarts, err),
			})
		},
	}
	n.supervisor = platform.NewSupervisorWithHooks(n.policy, hooks)

	for _, nr := range n.neurons {
		if err := n.spawnLocked(nr); err != nil {
			n.supervisor.StopAll()
			n.supervisor = nil
			return fmt.Errorf("start neuron %s: %w", nr.ID(), err)
		}
	}
	n.started = true
	return nil
}

func (n *Network) Started() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.started
}

// Shutdown stops every neuron unit, waits for them to finish and closes the
// monitoring tap. Records already collected stay drainable. Shutdown is
// terminal: the network cannot be started again.
func (n *Network) Shutdown() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	sup := n.supervisor
	n.started = false
	n.mu.Unlock()

	if sup != nil {
		sup.StopAll()
	}
	n.tap.Close()
}
