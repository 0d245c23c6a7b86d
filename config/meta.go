package config

import (
	"log/slog"
	"maps"
	"slices"
)

// Meta holds the metadata attached to a node. The zero value is ready to
// use. Key order is not significant.
type Meta struct {
	m map[string]any
}

func (m *Meta) Get(key string) (any, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m *Meta) Set(key string, v any) {
	if m.m == nil {
		m.m = make(map[string]any)
	}
	m.m[key] = v
}

// Remove deletes key. Removing an absent key logs a warning and reports
// false.
func (m *Meta) Remove(key string) bool {
	if _, ok := m.m[key]; !ok {
		slog.Warn("metadata key not present, nothing to remove", "key", key)
		return false
	}
	delete(m.m, key)
	return true
}

// Keys returns the metadata keys in sorted order.
func (m *Meta) Keys() []string {
	return slices.Sorted(maps.Keys(m.m))
}

func (m *Meta) Len() int { return len(m.m) }

// CopyFrom copies every entry of o into m, replacing entries with the
// same key.
func (m *Meta) CopyFrom(o *Meta) {
	if o == nil || len(o.m) == 0 {
		return
	}
	if m.m == nil {
		m.m = make(map[string]any, len(o.m))
	}
	maps.Copy(m.m, o.m)
}
