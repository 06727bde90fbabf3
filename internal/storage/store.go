package storage

import (
	"context"

	"axonet/internal/model"
)

// Store defines persistence operations for network topologies and drained
// activity records. Activity saves are append-only per network.
type Store interface {
	Init(ctx context.Context) error
	SaveTopology(ctx context.Context, cfg model.NetworkCfg) error
	GetTopology(ctx context.Context, id string) (model.NetworkCfg, bool, error)
	ListTopologies(ctx context.Context) ([]string, error)
	SaveActivity(ctx context.Context, networkID string, records []model.ActivityRecord) error
	GetActivity(ctx context.Context, networkID string) ([]model.ActivityRecord, bool, error)
}
