// Package idgen supplies identifier generation for networks and neurons.
// The runtime treats the generator as an external collaborator and assumes
// nothing about the shape of the ids beyond uniqueness.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

type Generator interface {
	NetworkID() string
	NeuronID(networkID string) string
}

// New returns a generator by kind: "sequential" (default) or "uuid".
func New(kind string) (Generator, error) {
	switch kind {
	case "", "sequential":
		return NewSequential(), nil
	case "uuid":
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unsupported id generator: %s", kind)
	}
}

var networkCounter atomic.Uint64

// Sequential produces deterministic ids: networks are numbered process-wide
// ("M0", "M1", ...) and neurons per generator ("M0Z0", "M0Z1", ...). One
// generator is meant to serve one network.
type Sequential struct {
	neurons atomic.Uint64
}

func NewSequential() *Sequential {
	return &Sequential{}
}

func (g *Sequential) NetworkID() string {
	return fmt.Sprintf("M%d", networkCounter.Add(1)-1)
}

func (g *Sequential) NeuronID(networkID string) string {
	return fmt.Sprintf("%sZ%d", networkID, g.neurons.Add(1)-1)
}

// UUID produces collision-free random identifiers.
type UUID struct{}

func (UUID) NetworkID() string {
	return "M" + uuid.NewString()
}

func (UUID) NeuronID(string) string {
	return uuid.NewString()
}
