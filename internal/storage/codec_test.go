package storage

import (
	"errors"
	"testing"

	"axonet/internal/model"
)

func TestTopologyCodecStampsVersions(t *testing.T) {
	data, err := EncodeTopology(testTopology("M0"))
	if err != nil {
		t.Fatalf("encode topology: %v", err)
	}
	cfg, err := DecodeTopology(data)
	if err != nil {
		t.Fatalf("decode topology: %v", err)
	}
	if cfg.SchemaVersion != CurrentSchemaVersion || cfg.CodecVersion != CurrentCodecVersion {
		t.Fatalf("expected current versions, got=%+v", cfg.VersionedRecord)
	}
	if cfg.ID != "M0" || len(cfg.Links) != 2 {
		t.Fatalf("unexpected decoded topology: %+v", cfg)
	}
}

func TestDecodeTopologyRejectsVersionMismatch(t *testing.T) {
	raw := []byte(`{"schema_version": 99, "codec_version": 1, "id": "M0"}`)
	if _, err := DecodeTopology(raw); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got=%v", err)
	}
}

func TestActivityCodecRoundTrip(t *testing.T) {
	records := []model.ActivityRecord{
		{ID: "n0", Kind: model.EventFlush, Value: 5, Detail: "hits=1"},
	}
	data, err := EncodeActivity(records)
	if err != nil {
		t.Fatalf("encode activity: %v", err)
	}
	back, err := DecodeActivity(data)
	if err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	if len(back) != 1 || back[0] != records[0] {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
