// Package symbols provides generic tracking of named bindings of a source,
// like variables holding peripheral instances or literal values.
package symbols

import (
	"slices"

	"github.com/retroenv/retrogolib/set"
)

// Table provides generic symbol tracking by name.
// T is the type of the bound item (e.g., a peripheral binding or a value).
type Table[T any] struct {
	items map[string]T
	order []string
	used  set.Set[string]
}

// New creates a new symbol table.
func New[T any]() *Table[T] {
	return &Table[T]{
		items: make(map[string]T),
		used:  set.New[string](),
	}
}

// Get returns the item bound to the given name.
func (m *Table[T]) Get(name string) (T, bool) {
	item, ok := m.items[name]
	return item, ok
}

// Set binds the item to the given name. A rebinding replaces the item but
// keeps the position of the first binding.
func (m *Table[T]) Set(name string, item T) {
	if _, ok := m.items[name]; !ok {
		m.order = append(m.order, name)
	}
	m.items[name] = item
}

// Delete removes the binding of the given name.
func (m *Table[T]) Delete(name string) {
	if _, ok := m.items[name]; !ok {
		return
	}
	delete(m.items, name)
	m.order = slices.DeleteFunc(m.order, func(s string) bool {
		return s == name
	})
}

// MarkUsed marks a name as used.
func (m *Table[T]) MarkUsed(name string) {
	m.used.Add(name)
}

// Unused returns the bound names that were never marked as used, in order of
// their first binding.
func (m *Table[T]) Unused() []string {
	var names []string
	for _, name := range m.order {
		if !m.used.Contains(name) {
			names = append(names, name)
		}
	}
	return names
}
