// Package storage persists enriched records to pluggable back ends.
// Back ends differ in what they can do; Capabilities makes the
// asymmetries explicit instead of papering over them.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a handle does not resolve to a stored
// record.
var ErrNotFound = errors.New("stored record not found")

// Record is one enriched message ready for persistence.
type Record struct {
	UserID    int64
	Username  string
	MessageID int

	// Timestamp is RFC 3339.
	Timestamp string

	Content   string
	Summary   string
	Category  string
	Tags      []string
	Keywords  []string
	Embedding []float32
	Metadata  map[string]any
}

// Capabilities describes what a back end supports.
type Capabilities struct {
	// HardDelete is true when Delete removes the record; false when it
	// archives in place.
	HardDelete bool

	// UpdatesContent is true when Update rewrites the stored body; false
	// when only metadata fields change.
	UpdatesContent bool
}

// Backend stores records. Save returns an opaque handle (a Notion page ID,
// a vault file path) that the other operations accept.
type Backend interface {
	Name() string
	Capabilities() Capabilities
	Save(ctx context.Context, rec *Record) (string, error)
	Get(ctx context.Context, handle string) (*Record, error)
	Update(ctx context.Context, handle string, rec *Record) error
	Delete(ctx context.Context, handle string) error
}
