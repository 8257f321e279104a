package graph

// Memo caches resolved field values of a single node.
type Memo struct {
	cache map[string]any
}

// NewMemo returns an empty Memo.
func NewMemo() *Memo {
	return &Memo{cache: make(map[string]any)}
}

// Get returns the cached value for field, computing and caching it with fn on
// the first call. Errors are returned without being cached.
func (m *Memo) Get(field string, fn func() (any, error)) (any, error) {
	if v, ok := m.cache[field]; ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	m.cache[field] = v
	return v, nil
}

// Cached reports whether field has a cached value, nil included.
func (m *Memo) Cached(field string) bool {
	_, ok := m.cache[field]
	return ok
}

// Clear drops the cached value of field so the next Get recomputes it.
func (m *Memo) Clear(field string) {
	delete(m.cache, field)
}
