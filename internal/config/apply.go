package config

import (
	"fmt"

	"axonet/internal/model"
	"axonet/internal/network"
)

// Build materializes a validated topology document into the given network.
// Document ids are remapped to the network's own id scheme; the returned map
// translates document id to assigned id. Build assumes Validate passed, so a
// wiring failure mid-build reports the offending link rather than rolling
// back.
func Build(net *network.Network, cfg model.NetworkCfg) (map[string]string, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	assigned := make(map[string]string, len(cfg.Neurons))
	for _, nc := range cfg.Neurons {
		id, err := net.CreateNeuron(nc.Bias, nc.Dendrites)
		if err != nil {
			return nil, fmt.Errorf("create neuron %s: %w", nc.ID, err)
		}
		assigned[nc.ID] = id
	}

	for i, link := range cfg.Links {
		switch link.Kind {
		case model.LinkInput:
			if err := net.SetupInput(link.Port, assigned[link.DstID], link.DstDendrite); err != nil {
				return nil, fmt.Errorf("link %d: %w", i, err)
			}
		case model.LinkInner:
			if err := net.ConnectNeurons(assigned[link.SrcID], assigned[link.DstID], link.DstDendrite); err != nil {
				return nil, fmt.Errorf("link %d: %w", i, err)
			}
		case model.LinkOutput:
			if err := net.SetupOutput(link.Port, assigned[link.SrcID]); err != nil {
				return nil, fmt.Errorf("link %d: %w", i, err)
			}
		}
	}
	return assigned, nil
}
