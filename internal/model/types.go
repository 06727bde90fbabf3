package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`
	CodecVersion  int `json:"codec_version" yaml:"codec_version"`
}

// Signal is the unit exchanged everywhere in the network: a discrete value
// stamped with its creation time. Immutable once created.
type Signal struct {
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSignal(value int) Signal {
	return Signal{Value: value, CreatedAt: time.Now()}
}

// Age reports how long ago the signal was created.
func (s Signal) Age() time.Duration {
	return time.Since(s.CreatedAt)
}

// DendriteCfg describes one input slot of a neuron: the synapse capacity
// gate plus the dendrite weight.
type DendriteCfg struct {
	MaxCapacity uint `json:"capacity_max" yaml:"capacity_max"`
	Regen       uint `json:"regeneration" yaml:"regeneration"`
	Weight      int  `json:"weight" yaml:"weight"`
}

// DefaultDendriteCfg is the slot auto-supplied when a neuron is created from
// an empty configuration sequence.
func DefaultDendriteCfg() DendriteCfg {
	return DendriteCfg{MaxCapacity: 1, Regen: 1, Weight: 1}
}

type NeuronCfg struct {
	ID        string        `json:"id" yaml:"id"`
	Bias      int           `json:"bias" yaml:"bias"`
	Dendrites []DendriteCfg `json:"dendrites" yaml:"dendrites"`
}

type LinkKind string

const (
	LinkInput  LinkKind = "input"
	LinkInner  LinkKind = "inner"
	LinkOutput LinkKind = "output"
)

// LinkCfg describes one edge of the connection graph. Which fields are
// meaningful depends on Kind: input links use Port/DstID/DstDendrite, inner
// links use SrcID/DstID/DstDendrite, output links use SrcID/Port.
type LinkCfg struct {
	Kind        LinkKind `json:"kind" yaml:"kind"`
	Port        int      `json:"port,omitempty" yaml:"port,omitempty"`
	SrcID       string   `json:"src_id,omitempty" yaml:"src_id,omitempty"`
	DstID       string   `json:"dst_id,omitempty" yaml:"dst_id,omitempty"`
	DstDendrite int      `json:"dst_dendrite,omitempty" yaml:"dst_dendrite,omitempty"`
}

// NetworkCfg is the structured topology document: the neuron set, the port
// counts and the connections between them.
type NetworkCfg struct {
	VersionedRecord `yaml:",inline"`
	ID              string      `json:"id" yaml:"id"`
	Inputs          int         `json:"inputs" yaml:"inputs"`
	Outputs         int         `json:"outputs" yaml:"outputs"`
	Neurons         []NeuronCfg `json:"neurons" yaml:"neurons"`
	Links           []LinkCfg   `json:"links" yaml:"links"`
}

// Command is a control message broadcast to all neurons. Neurons consume
// commands opportunistically, off the signal path.
type Command string

const (
	CommandMonitorOn  Command = "monitor_on"
	CommandMonitorOff Command = "monitor_off"
)

type EventKind string

const (
	// EventReceive records one weighted value absorbed by a neuron.
	EventReceive EventKind = "receive"
	// EventFlush records the accumulator value pushed onto the axon.
	EventFlush EventKind = "flush"
	// EventInput and EventOutput record signal hits on network ports.
	EventInput  EventKind = "port_in"
	EventOutput EventKind = "port_out"
	// EventSendError records a failed per-target delivery during emission.
	EventSendError EventKind = "send_error"
	// EventDisconnect records a neuron unit that terminated unexpectedly.
	EventDisconnect EventKind = "disconnect"
)

// ActivityRecord is one entry on the monitoring tap.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	Detail    string    `json:"detail,omitempty"`
}

// NeuronInfo is a point-in-time snapshot of one neuron's state, served by
// the network on request.
type NeuronInfo struct {
	Timestamp         time.Time `json:"timestamp"`
	ID                string    `json:"id"`
	DendriteCount     int       `json:"dendrite_count"`
	ConnectedCount    int       `json:"dendrite_connected_count"`
	ReportedCount     int       `json:"dendrite_hit_count"`
	ResetCount        uint64    `json:"reset_count"`
	HitCount          uint64    `json:"hit_count"`
	Accumulator       int       `json:"accumulator"`
	ReceiverCount     int       `json:"receiver_count"`
	TotalWeight       int       `json:"total_weight"`
	MonitoringEnabled bool      `json:"monitoring_enabled"`
}
