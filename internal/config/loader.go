// Package config loads, validates and renders network topology documents.
// Documents are declarative: the neuron set, port counts and links, with
// neuron ids scoped to the document and remapped on build.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"axonet/internal/model"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported topology file extension: %s", filepath.Ext(path))
	}
}

// Load reads and validates a topology document from disk.
func Load(path string) (model.NetworkCfg, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return model.NetworkCfg{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NetworkCfg{}, fmt.Errorf("read topology: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and validates a topology document.
func Parse(data []byte, format Format) (model.NetworkCfg, error) {
	var cfg model.NetworkCfg
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return model.NetworkCfg{}, fmt.Errorf("decode topology: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return model.NetworkCfg{}, fmt.Errorf("decode topology: %w", err)
		}
	default:
		return model.NetworkCfg{}, fmt.Errorf("unsupported topology format: %s", format)
	}
	if err := Validate(cfg); err != nil {
		return model.NetworkCfg{}, err
	}
	return cfg, nil
}

// Render encodes a topology document for export.
func Render(cfg model.NetworkCfg, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported topology format: %s", format)
	}
}

// Validate checks a topology document for structural consistency: id
// uniqueness, dendrite slot occupancy, port ranges and link endpoints. It
// mirrors the runtime wiring checks so a document that validates also builds.
func Validate(cfg model.NetworkCfg) error {
	if cfg.Inputs < 0 || cfg.Outputs < 0 {
		return fmt.Errorf("negative port count: inputs=%d outputs=%d", cfg.Inputs, cfg.Outputs)
	}
	if len(cfg.Neurons) == 0 {
		return fmt.Errorf("topology has no neurons")
	}

	dendrites := make(map[string]int, len(cfg.Neurons))
	for i, nc := range cfg.Neurons {
		if nc.ID == "" {
			return fmt.Errorf("neuron %d: id is required", i)
		}
		if _, dup := dendrites[nc.ID]; dup {
			return fmt.Errorf("duplicate neuron id: %s", nc.ID)
		}
		count := len(nc.Dendrites)
		if count == 0 {
			count = 1 // default dendrite is auto-supplied on build
		}
		dendrites[nc.ID] = count
		for j, dc := range nc.Dendrites {
			if dc.Regen > dc.MaxCapacity {
				return fmt.Errorf("neuron %s dendrite %d: regeneration %d exceeds max capacity %d",
					nc.ID, j, dc.Regen, dc.MaxCapacity)
			}
		}
	}

	inPorts := make(map[int]struct{})
	outPorts := make(map[int]struct{})
	occupied := make(map[string]map[int]struct{})
	feed := func(dstID string, slot int) error {
		slots, ok := occupied[dstID]
		if !ok {
			slots = make(map[int]struct{})
			occupied[dstID] = slots
		}
		if _, busy := slots[slot]; busy {
			return fmt.Errorf("dendrite %d of neuron %s wired twice", slot, dstID)
		}
		slots[slot] = struct{}{}
		return nil
	}

	for i, link := range cfg.Links {
		switch link.Kind {
		case model.LinkInput:
			if link.Port < 0 || link.Port >= cfg.Inputs {
				return fmt.Errorf("link %d: input port %d out of range [0,%d)", i, link.Port, cfg.Inputs)
			}
			if _, dup := inPorts[link.Port]; dup {
				return fmt.Errorf("link %d: input port %d wired twice", i, link.Port)
			}
			inPorts[link.Port] = struct{}{}
			count, ok := dendrites[link.DstID]
			if !ok {
				return fmt.Errorf("link %d: unknown neuron %s", i, link.DstID)
			}
			if link.DstDendrite < 0 || link.DstDendrite >= count {
				return fmt.Errorf("link %d: dendrite %d out of range for neuron %s", i, link.DstDendrite, link.DstID)
			}
			if err := feed(link.DstID, link.DstDendrite); err != nil {
				return fmt.Errorf("link %d: %w", i, err)
			}

		case model.LinkInner:
			if _, ok := dendrites[link.SrcID]; !ok {
				return fmt.Errorf("link %d: unknown neuron %s", i, link.SrcID)
			}
			count, ok := dendrites[link.DstID]
			if !ok {
				return fmt.Errorf("link %d: unknown neuron %s", i, link.DstID)
			}
			if link.DstDendrite < 0 || link.DstDendrite >= count {
				return fmt.Errorf("link %d: dendrite %d out of range for neuron %s", i, link.DstDendrite, link.DstID)
			}
			if link.SrcID == link.DstID && count < 2 {
				return fmt.Errorf("link %d: self connection on %s requires at least two dendrites", i, link.SrcID)
			}
			if err := feed(link.DstID, link.DstDendrite); err != nil {
				return fmt.Errorf("link %d: %w", i, err)
			}

		case model.LinkOutput:
			if link.Port < 0 || link.Port >= cfg.Outputs {
				return fmt.Errorf("link %d: output port %d out of range [0,%d)", i, link.Port, cfg.Outputs)
			}
			if _, dup := outPorts[link.Port]; dup {
				return fmt.Errorf("link %d: output port %d wired twice", i, link.Port)
			}
			outPorts[link.Port] = struct{}{}
			if _, ok := dendrites[link.SrcID]; !ok {
				return fmt.Errorf("link %d: unknown neuron %s", i, link.SrcID)
			}

		default:
			return fmt.Errorf("link %d: unknown kind %q", i, link.Kind)
		}
	}
	return nil
}
