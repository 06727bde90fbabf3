package neuron

import (
	"errors"
	"testing"

	"axonet/internal/model"
)

func TestSynapseClampsToCapacity(t *testing.T) {
	syn, err := NewSynapse(2, 1)
	if err != nil {
		t.Fatalf("new synapse: %v", err)
	}

	if passed := syn.Receive(model.NewSignal(3)); passed != 2 {
		t.Fatalf("expected first receive to pass 2, got=%d", passed)
	}
	if syn.Capacity() != 0 {
		t.Fatalf("expected capacity 0 after clamped receive, got=%d", syn.Capacity())
	}

	// regeneration of 1 applies before the next receive
	if passed := syn.Receive(model.NewSignal(3)); passed != 1 {
		t.Fatalf("expected second receive to pass 1, got=%d", passed)
	}
	if syn.Capacity() != 0 {
		t.Fatalf("expected capacity 0 after spending the regenerated unit, got=%d", syn.Capacity())
	}
}

func TestSynapsePassesSmallValuesUntouched(t *testing.T) {
	syn, err := NewSynapse(5, 2)
	if err != nil {
		t.Fatalf("new synapse: %v", err)
	}

	if passed := syn.Receive(model.NewSignal(3)); passed != 3 {
		t.Fatalf("expected pass-through of 3, got=%d", passed)
	}
	if syn.Capacity() != 2 {
		t.Fatalf("expected capacity 2 after passing 3 of 5, got=%d", syn.Capacity())
	}
}

func TestSynapseRegenerationNeverExceedsMax(t *testing.T) {
	syn, err := NewSynapse(3, 3)
	if err != nil {
		t.Fatalf("new synapse: %v", err)
	}

	if passed := syn.Receive(model.NewSignal(1)); passed != 1 {
		t.Fatalf("expected pass-through of 1, got=%d", passed)
	}
	// capacity 2 plus regen 3 must cap at max 3
	if passed := syn.Receive(model.NewSignal(10)); passed != 3 {
		t.Fatalf("expected full-capacity pass of 3, got=%d", passed)
	}
}

func TestSynapseZeroAndNegativeValues(t *testing.T) {
	syn, err := NewSynapse(2, 1)
	if err != nil {
		t.Fatalf("new synapse: %v", err)
	}

	if passed := syn.Receive(model.NewSignal(0)); passed != 0 {
		t.Fatalf("expected zero pass-through, got=%d", passed)
	}
	if syn.Capacity() != 2 {
		t.Fatalf("expected capacity untouched by zero signal, got=%d", syn.Capacity())
	}
	if passed := syn.Receive(model.NewSignal(-7)); passed != 0 {
		t.Fatalf("expected negative value treated as zero, got=%d", passed)
	}
}

func TestSynapseZeroCapacityBlocksEverything(t *testing.T) {
	syn, err := NewSynapse(0, 0)
	if err != nil {
		t.Fatalf("new synapse: %v", err)
	}

	for i := 0; i < 3; i++ {
		if passed := syn.Receive(model.NewSignal(5)); passed != 0 {
			t.Fatalf("expected zero-capacity synapse to block, got=%d", passed)
		}
	}
}

func TestSynapseRejectsRegenAboveMax(t *testing.T) {
	_, err := NewSynapse(1, 2)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for regen above max, got=%v", err)
	}
}
