// Package axonet is the embedding surface of the runtime: one Client wraps a
// network, its id generator and a persistence store behind a small API used
// by the CLI and by library consumers.
package axonet

import (
	"context"
	"fmt"

	"axonet/internal/config"
	"axonet/internal/idgen"
	"axonet/internal/model"
	"axonet/internal/network"
	"axonet/internal/platform"
	"axonet/internal/storage"
)

const defaultDBPath = "axonet.db"

type Options struct {
	StoreKind   string
	DBPath      string
	IDGen       string
	TapCapacity int
	Supervision platform.Policy
}

type Client struct {
	store storage.Store
	net   *network.Network
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	ids, err := idgen.New(opts.IDGen)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		net: network.New(network.Config{
			IDs:         ids,
			Supervision: opts.Supervision,
			TapCapacity: opts.TapCapacity,
		}),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the persistence store.
func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Network exposes the wiring facade for callers that build topologies by
// hand instead of from a document.
func (c *Client) Network() *network.Network {
	return c.net
}

func (c *Client) Start(ctx context.Context) error {
	return c.net.Start(ctx)
}

func (c *Client) Shutdown() {
	c.net.Shutdown()
}

// BuildFromFile loads a topology document and materializes it into the
// client's network. The returned map translates document ids to assigned
// ids.
func (c *Client) BuildFromFile(path string) (map[string]string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return config.Build(c.net, cfg)
}

func (c *Client) BuildFromDocument(cfg model.NetworkCfg) (map[string]string, error) {
	return config.Build(c.net, cfg)
}

// SendInput injects a value through an input port.
func (c *Client) SendInput(ctx context.Context, port, value int) error {
	return c.net.SendInput(ctx, port, value)
}

// Output exposes the receive side of an output port.
func (c *Client) Output(port int) (<-chan model.Signal, error) {
	return c.net.GetOutputReceiver(port)
}

func (c *Client) SetMonitoring(enabled bool) {
	c.net.SetMonitoring(enabled)
}

// DrainActivity empties the monitoring tap. With persist set the drained
// batch is appended to the store under the network id.
func (c *Client) DrainActivity(ctx context.Context, persist bool) ([]model.ActivityRecord, error) {
	records := c.net.Tap().Drain()
	if persist && len(records) > 0 {
		if err := c.store.SaveActivity(ctx, c.net.ID(), records); err != nil {
			return records, fmt.Errorf("persist activity: %w", err)
		}
	}
	return records, nil
}

// ActivityLog returns the persisted activity for a network.
func (c *Client) ActivityLog(ctx context.Context, networkID string) ([]model.ActivityRecord, bool, error) {
	return c.store.GetActivity(ctx, networkID)
}

// ExportTopology renders the live topology in the requested format.
func (c *Client) ExportTopology(format config.Format) ([]byte, error) {
	return config.Render(c.net.Snapshot(), format)
}

// SaveTopology persists the live topology and returns its id.
func (c *Client) SaveTopology(ctx context.Context) (string, error) {
	cfg := c.net.Snapshot()
	if err := c.store.SaveTopology(ctx, cfg); err != nil {
		return "", err
	}
	return cfg.ID, nil
}

// LoadTopology fetches a stored topology and materializes it into the
// client's network.
func (c *Client) LoadTopology(ctx context.Context, id string) (map[string]string, error) {
	cfg, ok, err := c.store.GetTopology(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: topology %s", network.ErrNotFound, id)
	}
	return config.Build(c.net, cfg)
}

func (c *Client) ListTopologies(ctx context.Context) ([]string, error) {
	return c.store.ListTopologies(ctx)
}

func (c *Client) NeuronStatus(id string) (model.NeuronInfo, error) {
	return c.net.NeuronStatus(id)
}

// Subscribe attaches a live consumer to the monitoring tap.
func (c *Client) Subscribe(buffer int) (<-chan model.ActivityRecord, func()) {
	return c.net.Tap().Subscribe(buffer)
}
