package network

import (
	"context"
	"fmt"
	"time"

	"axonet/internal/model"
	"axonet/internal/neuron"
)

// synapseTarget routes axon output into one dendrite slot of a downstream
// neuron. The target id encodes the destination slot so one source can feed
// several dendrites of the same neuron.
type synapseTarget struct {
	id       string
	dst      *neuron.Neuron
	dendrite int
}

func synapseTargetID(dstID string, dendrite int) string {
	return fmt.Sprintf("%s#%d", dstID, dendrite)
}

func (t *synapseTarget) ID() string {
	return t.id
}

func (t *synapseTarget) Deliver(ctx context.Context, sig model.Signal) error {
	return t.dst.Deliver(ctx, t.dendrite, sig)
}

// outputTarget bridges a neuron's axon to an external output channel.
// Delivery blocks while the consumer lags; output is at-least-once, never
// silently dropped.
type outputTarget struct {
	port *outputPort
	net  *Network
}

func (t *outputTarget) ID() string {
	return t.port.id
}

func (t *outputTarget) Deliver(ctx context.Context, sig model.Signal) error {
	select {
	case t.port.ch <- sig:
	case <-ctx.Done():
		return fmt.Errorf("%w: output port %s: %v", neuron.ErrSend, t.port.id, ctx.Err())
	}

	hits := t.port.hits.Add(1)
	if t.net.monitoring.Load() {
		t.net.tap.Report(model.ActivityRecord{
			ID:        t.port.id,
			Kind:      model.EventOutput,
			Timestamp: time.Now(),
			Value:     sig.Value,
			Detail:    fmt.Sprintf("hits=%d", hits),
		})
	}
	return nil
}
