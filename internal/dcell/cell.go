// Package dcell contains a shared mutable cell.
//
// Several otherwise independent drift values need to observe
// one evolving piece of state (a family's hot flag, a join window's
// open flag) without any one of them owning it.
// They each hold the same *Cell.
package dcell

import "sync"

// Cell is a value guarded for concurrent access.
// The zero value holds the zero value of T and is ready to use.
type Cell[T any] struct {
	mu sync.RWMutex
	v  T
}

// New returns a cell holding v.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Store replaces the current value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Swap replaces the current value and returns the previous one.
func (c *Cell[T]) Swap(v T) (old T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, c.v = c.v, v
	return old
}

// Update sets the value to f(current) and returns the new value.
// f runs with the cell locked, so it must not touch c.
func (c *Cell[T]) Update(f func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = f(c.v)
	return c.v
}
