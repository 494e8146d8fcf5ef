// Package objectlist provides an owning, index-addressable sequence of objects.
//
// Every stored element holds one strong reference. Get hands out an extra
// reference the caller must release; Remove and RemoveLast transfer the list's
// reference to the caller.
package objectlist

import (
	"errors"
	"fmt"
	"sort"

	"github.com/comalice/ravecore/internal/object"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNilValue        = errors.New("nil value")
)

// List is an ordered sequence of owned object references.
type List struct {
	object.Header
	items []object.Instance
}

// Type is the List descriptor. Lists are cloneable when all elements are.
var Type = &object.Descriptor{
	Name:     "objectlist.List",
	New:      func() object.Instance { return &List{} },
	Destruct: func(v object.Instance) { v.(*List).Clear() },
	Copy: func(dst, src object.Instance) error {
		to, from := dst.(*List), src.(*List)
		to.items = make([]object.Instance, 0, len(from.items))
		for i, item := range from.items {
			c, err := object.Clone(item)
			if err != nil {
				to.Clear()
				return fmt.Errorf("element %d: %w", i, err)
			}
			to.items = append(to.items, c)
		}
		return nil
	},
}

// New creates an empty list.
func New() (*List, error) {
	return object.CreateAs[*List](Type)
}

// Insert places v at index, retaining it. An index below zero or at or past
// the end appends.
func (l *List) Insert(index int, v object.Instance) error {
	if object.IsNil(v) {
		return ErrNilValue
	}
	object.Retain(v)
	if index < 0 || index >= len(l.items) {
		l.items = append(l.items, v)
		return nil
	}
	l.items = append(l.items, nil)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = v
	return nil
}

// Add appends v, retaining it.
func (l *List) Add(v object.Instance) error {
	return l.Insert(-1, v)
}

// Get returns a new strong reference to the element at index.
func (l *List) Get(index int) (object.Instance, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	return object.Retain(l.items[index]), nil
}

// Remove takes the element at index out of the list. The caller owns the
// returned reference.
func (l *List) Remove(index int) (object.Instance, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	v := l.items[index]
	copy(l.items[index:], l.items[index+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return v, nil
}

// RemoveLast takes the last element out of the list.
func (l *List) RemoveLast() (object.Instance, error) {
	return l.Remove(len(l.items) - 1)
}

// Size returns the number of elements.
func (l *List) Size() int {
	return len(l.items)
}

// Clear releases every element.
func (l *List) Clear() {
	for i, v := range l.items {
		object.Release(v)
		l.items[i] = nil
	}
	l.items = l.items[:0]
}

// IndexOf returns the position of v by identity, or -1.
func (l *List) IndexOf(v object.Instance) int {
	for i, item := range l.items {
		if item == v {
			return i
		}
	}
	return -1
}

// Find returns a new strong reference to the first element matching pred.
func (l *List) Find(pred func(object.Instance) bool) (object.Instance, bool) {
	for _, item := range l.items {
		if pred(item) {
			return object.Retain(item), true
		}
	}
	return nil, false
}

// Sort orders the elements in place. The sort is stable.
func (l *List) Sort(less func(a, b object.Instance) bool) {
	sort.SliceStable(l.items, func(i, j int) bool {
		return less(l.items[i], l.items[j])
	})
}

func (l *List) check(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, index, len(l.items))
	}
	return nil
}
