package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Decode parses a JSON object. Numbers decode as float64.
func Decode(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("document must be a JSON object")
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// DecodeValue parses any JSON value, used for parameter tables.
func DecodeValue(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return v, nil
}

func Encode(doc map[string]any) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// NewID returns a random published id.
func NewID() string {
	return uuid.NewString()
}

// NewRevision returns a fresh revision token.
func NewRevision() string {
	return uuid.NewString()
}

// Stamp sets the system attributes written on every save.
func Stamp(doc map[string]any, rev string, createdAt, updatedAt time.Time) {
	doc[FieldCreatedAt] = createdAt.UTC().Format(time.RFC3339Nano)
	doc[FieldUpdatedAt] = updatedAt.UTC().Format(time.RFC3339Nano)
	doc[FieldRev] = rev
}
