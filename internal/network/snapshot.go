package network

import (
	"sort"

	"axonet/internal/model"
)

// Snapshot exports the live topology as a structured document. The export is
// deterministic: neurons sorted by id, links grouped input/inner/output and
// sorted within each group. Versions are left zero; the persistence layer
// stamps them on save.
func (n *Network) Snapshot() model.NetworkCfg {
	n.mu.RLock()
	defer n.mu.RUnlock()

	cfg := model.NetworkCfg{ID: n.id}

	ids := make([]string, 0, len(n.neurons))
	for id := range n.neurons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		nr := n.neurons[id]
		cfg.Neurons = append(cfg.Neurons, model.NeuronCfg{
			ID:        id,
			Bias:      nr.Bias(),
			Dendrites: nr.DendriteConfigs(),
		})
	}

	inPorts := make([]int, 0, len(n.inputs))
	for port := range n.inputs {
		inPorts = append(inPorts, port)
	}
	sort.Ints(inPorts)
	for _, port := range inPorts {
		p := n.inputs[port]
		cfg.Links = append(cfg.Links, model.LinkCfg{
			Kind:        model.LinkInput,
			Port:        port,
			DstID:       p.neuronID,
			DstDendrite: p.dendrite,
		})
		if port+1 > cfg.Inputs {
			cfg.Inputs = port + 1
		}
	}

	for _, dstID := range ids {
		upstream := n.neurons[dstID].UpstreamSources()
		slots := make([]int, 0, len(upstream))
		for idx := range upstream {
			slots = append(slots, idx)
		}
		sort.Ints(slots)
		for _, idx := range slots {
			srcID := upstream[idx]
			if _, isNeuron := n.neurons[srcID]; !isNeuron {
				continue // fed by an input port, already exported above
			}
			cfg.Links = append(cfg.Links, model.LinkCfg{
				Kind:        model.LinkInner,
				SrcID:       srcID,
				DstID:       dstID,
				DstDendrite: idx,
			})
		}
	}

	outPorts := make([]int, 0, len(n.outputs))
	for port := range n.outputs {
		outPorts = append(outPorts, port)
	}
	sort.Ints(outPorts)
	for _, port := range outPorts {
		p := n.outputs[port]
		cfg.Links = append(cfg.Links, model.LinkCfg{
			Kind:  model.LinkOutput,
			Port:  port,
			SrcID: p.neuronID,
		})
		if port+1 > cfg.Outputs {
			cfg.Outputs = port + 1
		}
	}

	return cfg
}
