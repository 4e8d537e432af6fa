// Package cursor encodes opaque page tokens for sequence-ordered listings.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor is the state behind a page token.
type Cursor struct {
	// Seq is the last sequence number already returned.
	Seq int64 `json:"seq"`
	// FilterHash invalidates the token when the filter changes.
	FilterHash string `json:"filter_hash,omitempty"`
}

// New returns a cursor after seq for filter.
func New(seq int64, filter string) Cursor {
	return Cursor{Seq: seq, FilterHash: HashFilter(filter)}
}

// Encode encodes a cursor to an opaque base64 string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque token. An empty token is an error.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.Seq < 0 {
		return Cursor{}, fmt.Errorf("cursor sequence must not be negative")
	}
	return c, nil
}

// HashFilter returns a short stable hash of a filter value.
func HashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(sum[:8])
}

// Resume decodes token and checks it was issued for filter. An empty token
// starts from the beginning.
func Resume(token, filter string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	c, err := Decode(token)
	if err != nil {
		return 0, err
	}
	if c.FilterHash != HashFilter(filter) {
		return 0, fmt.Errorf("page token does not match filter")
	}
	return c.Seq, nil
}
