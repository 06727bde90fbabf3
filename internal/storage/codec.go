package storage

import (
	"encoding/json"
	"errors"

	"axonet/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeTopology stamps the current versions and marshals the document.
func EncodeTopology(cfg model.NetworkCfg) ([]byte, error) {
	cfg.SchemaVersion = CurrentSchemaVersion
	cfg.CodecVersion = CurrentCodecVersion
	return json.Marshal(cfg)
}

func DecodeTopology(data []byte) (model.NetworkCfg, error) {
	var cfg model.NetworkCfg
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.NetworkCfg{}, err
	}
	if err := checkVersion(cfg.VersionedRecord); err != nil {
		return model.NetworkCfg{}, err
	}
	return cfg, nil
}

func EncodeActivity(records []model.ActivityRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeActivity(data []byte) ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
