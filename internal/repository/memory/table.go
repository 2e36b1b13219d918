// Package memory holds the volatile repositories used when no database is
// configured. Every repository guards its rows with its own lock and hands out
// copies, so callers never share state with the store.
package memory

import (
	"database/sql"
	"sort"
	"sync"
)

type table[T any] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	setID  func(*T, int64)
}

func newTable[T any](setID func(*T, int64)) *table[T] {
	return &table[T]{rows: make(map[int64]T), nextID: 1, setID: setID}
}

// insert assigns the next id to row and stores it.
func (t *table[T]) insert(row *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.setID(row, id)
	t.rows[id] = *row
}

func (t *table[T]) get(id int64) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (t *table[T]) replace(id int64, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return sql.ErrNoRows
	}
	t.rows[id] = row
	return nil
}

func (t *table[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table[T]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// filter returns matching rows ordered by id. A nil keep matches everything.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	ids := make([]int64, 0, len(t.rows))
	for id, row := range t.rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	t.mu.RUnlock()
	return out
}

// first returns the lowest-id row matching keep.
func (t *table[T]) first(keep func(T) bool) (*T, bool) {
	rows := t.filter(keep)
	if len(rows) == 0 {
		return nil, false
	}
	return &rows[0], true
}

func (t *table[T]) countWhere(keep func(T) bool) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, row := range t.rows {
		if keep(row) {
			n++
		}
	}
	return n
}
