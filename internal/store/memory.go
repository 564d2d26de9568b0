package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document not found")

// MemoryStore is an in-memory Store used by unit tests and local runs
// without a database. Batched commits are applied all-or-nothing under the
// store lock.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any

	// CommitHook, when set, runs inside Commit before any staged mutation is
	// applied; returning an error fails the whole batch. Used by tests to
	// force commit failures.
	CommitHook func() error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

// col creates the collection when absent. Callers must hold the write lock;
// read paths go through m.collections directly (a nil map reads as empty).
func (m *MemoryStore) col(name string) map[string]map[string]any {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]map[string]any)
		m.collections[name] = c
	}
	return c
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: copyFields(doc)}, nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Document{}
	for id, doc := range m.collections[collection] {
		if matchesAll(doc, filters) {
			out = append(out, Document{ID: id, Fields: copyFields(doc)})
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return applyUpdate(m.col(collection), id, fields)
}

func (m *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.col(collection)[id] = copyFields(fields)
	return id, nil
}

func (m *MemoryStore) Batch() Batch {
	return &memoryBatch{store: m}
}

type memoryOp struct {
	collection string
	id         string
	fields     map[string]any // nil means delete the document
}

type memoryBatch struct {
	store *MemoryStore
	ops   []memoryOp
}

func (b *memoryBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, fields: fields})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id})
}

// Commit validates every staged mutation against the live data before
// applying any of them, so a failing op leaves the store untouched.
func (b *memoryBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	if b.store.CommitHook != nil {
		if err := b.store.CommitHook(); err != nil {
			return err
		}
	}
	for _, op := range b.ops {
		if _, ok := b.store.col(op.collection)[op.id]; !ok {
			return fmt.Errorf("commit: %s/%s: %w", op.collection, op.id, ErrNotFound)
		}
	}
	for _, op := range b.ops {
		if op.fields == nil {
			delete(b.store.col(op.collection), op.id)
			continue
		}
		// existence checked above
		_ = applyUpdate(b.store.col(op.collection), op.id, op.fields)
	}
	return nil
}

func applyUpdate(col map[string]map[string]any, id string, fields map[string]any) error {
	doc, ok := col[id]
	if !ok {
		return ErrNotFound
	}
	for path, v := range fields {
		if IsDeleteField(v) {
			deletePath(doc, path)
			continue
		}
		setPath(doc, path, v)
	}
	return nil
}

// setPath writes a possibly dotted path, creating intermediate maps.
func setPath(doc map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[p] = next
		}
		doc = next
	}
	doc[parts[len(parts)-1]] = v
}

func getPath(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			return nil, false
		}
		doc = next
	}
	v, ok := doc[parts[len(parts)-1]]
	return v, ok
}

// deletePath removes the field entirely, never leaving a null behind.
func deletePath(doc map[string]any, path string) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			return
		}
		doc = next
	}
	delete(doc, parts[len(parts)-1])
}

func matchesAll(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := getPath(doc, f.Field)
		if !ok {
			return false
		}
		switch f.Op {
		case "==":
			if !valueEq(v, f.Value) {
				return false
			}
		case "in":
			if !valueIn(v, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func valueEq(a, b any) bool {
	if ai, ok := ToInt(a); ok {
		if bi, ok2 := ToInt(b); ok2 {
			return ai == bi
		}
	}
	return a == b
}

func valueIn(v, set any) bool {
	switch s := set.(type) {
	case []int:
		for _, c := range s {
			if valueEq(v, c) {
				return true
			}
		}
	case []any:
		for _, c := range s {
			if valueEq(v, c) {
				return true
			}
		}
	case []string:
		for _, c := range s {
			if v == c {
				return true
			}
		}
	}
	return false
}

func copyFields(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = copyFields(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}
