package config

import (
	"context"
	"testing"
	"time"

	"axonet/internal/network"
)

func TestBuildMaterializesDocument(t *testing.T) {
	net := network.New(network.Config{})
	t.Cleanup(net.Shutdown)

	assigned, err := Build(net, validTopology())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("expected 2 assigned ids, got=%v", assigned)
	}
	for docID, realID := range assigned {
		if !net.HasNeuron(realID) {
			t.Fatalf("expected neuron %s (doc %s) registered", realID, docID)
		}
	}

	inputs, outputs := net.Ports()
	if len(inputs) != 1 || len(outputs) != 1 {
		t.Fatalf("expected 1 input and 1 output port, got=%v/%v", inputs, outputs)
	}

	info, err := net.NeuronStatus(assigned["b"])
	if err != nil {
		t.Fatalf("neuron status: %v", err)
	}
	if info.ConnectedCount != 1 {
		t.Fatalf("expected inner link wired into b, got=%+v", info)
	}
	if info.Accumulator != 1 {
		t.Fatalf("expected bias 1 carried over, got=%d", info.Accumulator)
	}
}

func TestBuildRejectsInvalidDocument(t *testing.T) {
	net := network.New(network.Config{})
	t.Cleanup(net.Shutdown)

	cfg := validTopology()
	cfg.Links[0].Port = 9
	if _, err := Build(net, cfg); err == nil {
		t.Fatalf("expected build to reject invalid document")
	}
}

func TestBuiltNetworkPropagatesSignals(t *testing.T) {
	net := network.New(network.Config{})
	t.Cleanup(net.Shutdown)

	if _, err := Build(net, validTopology()); err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx := context.Background()
	if err := net.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := net.GetOutputReceiver(0)
	if err != nil {
		t.Fatalf("output receiver: %v", err)
	}

	if err := net.SendInput(ctx, 0, 2); err != nil {
		t.Fatalf("send input: %v", err)
	}

	// a passes 2 through (bias 0, weight 1), b adds bias 1 and its default
	// dendrite clamps the 2 to 1
	select {
	case sig := <-out:
		if sig.Value != 2 {
			t.Fatalf("expected output 2, got=%d", sig.Value)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for output")
	}
}

func TestSnapshotOfBuiltNetworkRevalidates(t *testing.T) {
	net := network.New(network.Config{})
	t.Cleanup(net.Shutdown)

	if _, err := Build(net, validTopology()); err != nil {
		t.Fatalf("build: %v", err)
	}
	snap := net.Snapshot()
	if err := Validate(snap); err != nil {
		t.Fatalf("expected exported snapshot to validate, got=%v", err)
	}

	rebuilt := network.New(network.Config{})
	t.Cleanup(rebuilt.Shutdown)
	if _, err := Build(rebuilt, snap); err != nil {
		t.Fatalf("expected snapshot to rebuild, got=%v", err)
	}
	if rebuilt.Len() != net.Len() {
		t.Fatalf("expected same neuron count after rebuild, got=%d vs %d", rebuilt.Len(), net.Len())
	}
}
