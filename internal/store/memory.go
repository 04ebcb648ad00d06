package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryBackend keeps every collection as an in-process slice of BSON
// documents. Reads decode fresh copies, so callers never alias stored state.
// Nothing survives a restart.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string][]bson.Raw
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string][]bson.Raw),
	}
}

func (m *MemoryBackend) Kind() Kind { return KindMemory }

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close(context.Context) error { return nil }

type memoryCollection[T any] struct {
	backend *MemoryBackend
	name    string
}

type memoryEntry struct {
	raw bson.Raw
	doc bson.M
}

// matching returns the entries of the collection that satisfy filter along with
// their positions. Callers must hold the backend lock.
func (c *memoryCollection[T]) matching(filter Filter) ([]memoryEntry, []int, error) {
	var (
		entries []memoryEntry
		indexes []int
	)
	for i, raw := range c.backend.collections[c.name] {
		doc, err := decodeMap(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		if matches(doc, filter) {
			entries = append(entries, memoryEntry{raw: raw, doc: doc})
			indexes = append(indexes, i)
		}
	}
	return entries, indexes, nil
}

func (c *memoryCollection[T]) Find(ctx context.Context, filter Filter, opts FindOptions) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.backend.mu.RLock()
	entries, _, err := c.matching(filter)
	c.backend.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(entries, func(i, j int) bool {
			for _, f := range opts.Sort {
				a, _ := lookupPath(entries[i].doc, f.Field)
				b, _ := lookupPath(entries[j].doc, f.Field)
				cmp := compareValues(a, b)
				if cmp == 0 {
					continue
				}
				if f.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(entries)) {
			entries = nil
		} else {
			entries = entries[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(entries)) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var doc T
		if err := decodeInto(e.raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *memoryCollection[T]) FindOne(ctx context.Context, filter Filter) (T, error) {
	var zero T
	docs, err := c.Find(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, ErrNotFound
	}
	return docs[0], nil
}

func (c *memoryCollection[T]) Insert(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if id, err := bson.Raw(raw).LookupErr("_id"); err == nil {
		for _, existing := range c.backend.collections[c.name] {
			if other, err := existing.LookupErr("_id"); err == nil && other.Equal(id) {
				return fmt.Errorf("insert %s: %w", c.name, ErrDuplicate)
			}
		}
	}
	c.backend.collections[c.name] = append(c.backend.collections[c.name], raw)
	return nil
}

func (c *memoryCollection[T]) Replace(ctx context.Context, filter Filter, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}

	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	_, indexes, err := c.matching(filter)
	if err != nil {
		return err
	}
	if len(indexes) == 0 {
		return ErrNotFound
	}
	c.backend.collections[c.name][indexes[0]] = raw
	return nil
}

func (c *memoryCollection[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	_, indexes, err := c.matching(filter)
	if err != nil {
		return 0, err
	}
	if len(indexes) == 0 {
		return 0, nil
	}

	drop := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		drop[idx] = struct{}{}
	}
	docs := c.backend.collections[c.name]
	kept := make([]bson.Raw, 0, len(docs)-len(indexes))
	for i, raw := range docs {
		if _, ok := drop[i]; !ok {
			kept = append(kept, raw)
		}
	}
	c.backend.collections[c.name] = kept
	return int64(len(indexes)), nil
}

func (c *memoryCollection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	entries, _, err := c.matching(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

func decodeInto(raw bson.Raw, out any) error {
	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(raw))
	if err != nil {
		return err
	}
	dec.DefaultDocumentM()
	return dec.Decode(out)
}

func decodeMap(raw bson.Raw) (bson.M, error) {
	var doc bson.M
	if err := decodeInto(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matches(doc bson.M, filter Filter) bool {
	for path, want := range filter {
		got, ok := lookupPath(doc, path)
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func lookupPath(doc bson.M, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case bson.M:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

func valuesEqual(got, want any) bool {
	if want == nil {
		return got == nil
	}
	if g, ok := toFloat(got); ok {
		if w, ok := toFloat(want); ok {
			return g == w
		}
		return false
	}
	switch w := want.(type) {
	case time.Time:
		if g, ok := got.(primitive.DateTime); ok {
			return g.Time().Equal(w.Truncate(time.Millisecond))
		}
		return false
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	}
	if ws, ok := asString(want); ok {
		gs, ok := got.(string)
		return ok && gs == ws
	}
	return reflect.DeepEqual(got, want)
}

// compareValues orders two decoded BSON values. Missing values sort first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return compareOrdered(af, bf)
		}
	}
	if at, ok := a.(primitive.DateTime); ok {
		if bt, ok := b.(primitive.DateTime); ok {
			return compareOrdered(int64(at), int64(bt))
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func compareOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}
