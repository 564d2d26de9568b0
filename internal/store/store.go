package store

import (
	"context"
	"strconv"
)

// Collection names used by the portal.
const (
	Users    = "users"
	Feedback = "feedback"
	Teams    = "teams"
)

// deleteField is the tagged remove-field instruction. It is never persisted
// as a literal value; backends translate it into their own field removal.
type deleteField struct{}

// DeleteField returns the sentinel that instructs Update (or a batched
// update) to remove the named field from the document.
func DeleteField() any { return deleteField{} }

// IsDeleteField reports whether v is the remove-field sentinel.
func IsDeleteField(v any) bool {
	_, ok := v.(deleteField)
	return ok
}

// Document is a stored record plus its store-assigned identity.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter selects documents in a Query call. Op is "==" or "in"; for "in",
// Value must be a slice. Field may be a dotted path ("roles.participants").
type Filter struct {
	Field string
	Op    string
	Value any
}

// Store is the document-database surface the dashboard router consumes.
// Field maps passed to Update may use dotted paths for nested fields and the
// DeleteField sentinel for removals.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Batch() Batch
}

// Batch queues document mutations for a single atomic commit: either every
// queued mutation applies or none do. Queuing never fails; errors surface
// from Commit.
type Batch interface {
	Update(collection, id string, fields map[string]any)
	Delete(collection, id string)
	Commit(ctx context.Context) error
}

// ToInt coerces the loosely-typed numbers that come back from document
// decoding (or straight from JSON payloads) into an int. Returns 0 when the
// value is absent or not numeric.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		// payloads sometimes carry numeric strings ("5")
		total, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return total, true
	}
	return 0, false
}
