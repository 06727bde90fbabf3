package idgen

import (
	"strings"
	"testing"
)

func TestSequentialNeuronIDsScopeToNetwork(t *testing.T) {
	g := NewSequential()
	netID := g.NetworkID()
	if !strings.HasPrefix(netID, "M") {
		t.Fatalf("expected network id with M prefix, got=%s", netID)
	}

	first := g.NeuronID(netID)
	second := g.NeuronID(netID)
	if first == second {
		t.Fatalf("expected distinct neuron ids, got=%s twice", first)
	}
	if !strings.HasPrefix(first, netID+"Z") {
		t.Fatalf("expected neuron id scoped to %s, got=%s", netID, first)
	}
}

func TestSequentialNetworkIDsAreDistinct(t *testing.T) {
	a := NewSequential().NetworkID()
	b := NewSequential().NetworkID()
	if a == b {
		t.Fatalf("expected distinct network ids, got=%s twice", a)
	}
}

func TestUUIDGeneratorProducesDistinctIDs(t *testing.T) {
	g := UUID{}
	if g.NeuronID("") == g.NeuronID("") {
		t.Fatalf("expected distinct uuid neuron ids")
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	if _, err := New("banana"); err == nil {
		t.Fatalf("expected error for unknown generator kind")
	}
	if _, err := New(""); err != nil {
		t.Fatalf("expected empty kind to default to sequential, got=%v", err)
	}
	if _, err := New("uuid"); err != nil {
		t.Fatalf("expected uuid kind to be supported, got=%v", err)
	}
}
