package neuron

import (
	"fmt"

	"axonet/internal/model"
)

// Dendrite is a weighted input slot of a neuron wrapping exactly one synapse.
// The weight may be any signed value: excitatory (>= 0) or inhibitory (< 0).
type Dendrite struct {
	weight  int
	synapse *Synapse
	cfg     model.DendriteCfg
}

func NewDendrite(cfg model.DendriteCfg) (*Dendrite, error) {
	syn, err := NewSynapse(cfg.MaxCapacity, cfg.Regen)
	if err != nil {
		return nil, fmt.Errorf("synapse: %w", err)
	}
	return &Dendrite{weight: cfg.Weight, synapse: syn, cfg: cfg}, nil
}

// Forward passes the raw signal through the synapse gate and scales the
// clamped value by the dendrite weight. Pure composition, no extra state.
func (d *Dendrite) Forward(sig model.Signal) int {
	return d.synapse.Receive(sig) * d.weight
}

func (d *Dendrite) Weight() int {
	return d.weight
}

func (d *Dendrite) Synapse() *Synapse {
	return d.synapse
}

// Config returns the parameters the dendrite was built from.
func (d *Dendrite) Config() model.DendriteCfg {
	return d.cfg
}
