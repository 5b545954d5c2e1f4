package museum

import (
	"encoding/json"
	"fmt"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// envelopeVersion guards the serialized list shape; bump on incompatible
// changes
const envelopeVersion = 1

type envelope struct {
	Version     int                `json:"version"`
	Discoveries []*types.Discovery `json:"discoveries"`
}

func encodeDiscoveries(list []*types.Discovery) ([]byte, error) {
	raw, err := json.Marshal(envelope{Version: envelopeVersion, Discoveries: list})
	if err != nil {
		return nil, fmt.Errorf("failed to encode discoveries: %w", err)
	}
	return raw, nil
}

func decodeDiscoveries(raw []byte) ([]*types.Discovery, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode discoveries: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("unknown discoveries version %d", env.Version)
	}
	return env.Discoveries, nil
}
