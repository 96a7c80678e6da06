package event

import (
	"encoding/json"
	"time"

	"github.com/ktiyab/babel-tool-sub001/internal/idgen"
)

// NewID derives a content-addressed event id from its timestamp, type,
// and payload hash, per spec §3's "ids are generated from (timestamp,
// type, payload-hash)". The nonce lets a caller retry on the rare
// collision without changing any other input.
func NewID(t Type, data Data, createdAt time.Time, nonce int) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return idgen.ContentHash(12, createdAt, nonce, string(t), string(payload)), nil
}
