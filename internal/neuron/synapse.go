package neuron

import (
	"errors"
	"fmt"

	"axonet/internal/model"
)

var (
	// ErrConfig marks invalid synapse or dendrite parameters at construction.
	ErrConfig = errors.New("invalid component configuration")

	// ErrSend marks a downstream target that was closed or unreachable at
	// emit time.
	ErrSend = errors.New("signal delivery failed")
)

// Synapse is the capacity-gated limiter guarding one dendrite slot. It clamps
// incoming signal values to its current capacity and regenerates a fixed
// amount once before the next receive, never exceeding the maximum.
//
// A synapse is exclusively owned by one dendrite and is mutated only by the
// goroutine of the neuron owning that dendrite.
type Synapse struct {
	maxCapacity int
	capacity    int
	regen       int

	// regeneration is deferred until the next receive so that the capacity
	// observed right after a receive is the un-regenerated one
	spent bool
}

func NewSynapse(maxCapacity, regen uint) (*Synapse, error) {
	if regen > maxCapacity {
		return nil, fmt.Errorf("%w: regeneration %d exceeds max capacity %d", ErrConfig, regen, maxCapacity)
	}
	return &Synapse{
		maxCapacity: int(maxCapacity),
		capacity:    int(maxCapacity),
		regen:       int(regen),
	}, nil
}

// Receive clamps the signal value to the current capacity, spends the passed
// amount and returns it. Zero is a valid pass-through, not an error. Negative
// signal values are treated as zero stimulation.
func (s *Synapse) Receive(sig model.Signal) int {
	if s.spent {
		s.capacity += s.regen
		if s.capacity > s.maxCapacity {
			s.capacity = s.maxCapacity
		}
		s.spent = false
	}

	value := sig.Value
	if value < 0 {
		value = 0
	}
	passed := value
	if passed > s.capacity {
		passed = s.capacity
	}
	s.capacity -= passed
	s.spent = true
	return passed
}

// Capacity reports the current capacity as left by the most recent receive,
// before any pending regeneration.
func (s *Synapse) Capacity() int {
	return s.capacity
}

func (s *Synapse) MaxCapacity() int {
	return s.maxCapacity
}

func (s *Synapse) Regen() int {
	return s.regen
}
