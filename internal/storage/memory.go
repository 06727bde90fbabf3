package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"axonet/internal/model"
)

type MemoryStore struct {
	mu         sync.RWMutex
	topologies map[string]model.NetworkCfg
	activity   map[string][]model.ActivityRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topologies = make(map[string]model.NetworkCfg)
	s.activity = make(map[string][]model.ActivityRecord)
	return nil
}

func (s *MemoryStore) SaveTopology(_ context.Context, cfg model.NetworkCfg) error {
	if cfg.ID == "" {
		return errors.New("topology id is required")
	}
	cfg.SchemaVersion = CurrentSchemaVersion
	cfg.CodecVersion = CurrentCodecVersion

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.topologies == nil {
		return errors.New("store is not initialized")
	}
	s.topologies[cfg.ID] = copyTopology(cfg)
	return nil
}

func (s *MemoryStore) GetTopology(_ context.Context, id string) (model.NetworkCfg, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.topologies[id]
	if !ok {
		return model.NetworkCfg{}, false, nil
	}
	return copyTopology(cfg), true, nil
}

func (s *MemoryStore) ListTopologies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.topologies))
	for id := range s.topologies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveActivity(_ context.Context, networkID string, records []model.ActivityRecord) error {
	if networkID == "" {
		return errors.New("network id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activity == nil {
		return errors.New("store is not initialized")
	}
	s.activity[networkID] = append(s.activity[networkID], records...)
	return nil
}

func (s *MemoryStore) GetActivity(_ context.Context, networkID string) ([]model.ActivityRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.activity[networkID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.ActivityRecord, len(records))
	copy(copied, records)
	return copied, true, nil
}

func copyTopology(cfg model.NetworkCfg) model.NetworkCfg {
	out := cfg
	out.Neurons = make([]model.NeuronCfg, len(cfg.Neurons))
	for i, nc := range cfg.Neurons {
		out.Neurons[i] = nc
		out.Neurons[i].Dendrites = append([]model.DendriteCfg(nil), nc.Dendrites...)
	}
	out.Links = append([]model.LinkCfg(nil), cfg.Links...)
	return out
}
