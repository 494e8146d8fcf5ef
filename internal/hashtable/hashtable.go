// Package hashtable provides an owning string-keyed table of objects.
//
// Keys are unique. Each entry holds one strong reference to its value. Buckets
// are singly linked chains selected by a polynomial string hash; the bucket
// array doubles whenever the load factor passes 3/4.
package hashtable

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/comalice/ravecore/internal/object"
	"github.com/comalice/ravecore/internal/objectlist"
)

var (
	ErrInvalidKey = errors.New("invalid key")
	ErrNilValue   = errors.New("nil value")
)

// DefaultBuckets is the initial bucket count.
const DefaultBuckets = 16

// ClonePolicy decides what cloning a table does with values that are not cloneable.
type ClonePolicy int

const (
	// CloneStrict fails the clone on the first non-cloneable value.
	CloneStrict ClonePolicy = iota
	// CloneSkipUncloneable omits non-cloneable values and logs a warning.
	CloneSkipUncloneable
)

func (p ClonePolicy) String() string {
	switch p {
	case CloneStrict:
		return "strict"
	case CloneSkipUncloneable:
		return "skip-uncloneable"
	default:
		return fmt.Sprintf("ClonePolicy(%d)", int(p))
	}
}

type node struct {
	key   string
	value object.Instance
	next  *node
}

// Table is a string-keyed table of owned objects.
type Table struct {
	object.Header
	buckets []*node
	size    int
	policy  ClonePolicy
	logger  *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithBuckets sets the initial bucket count. Values below 1 are ignored.
func WithBuckets(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.buckets = make([]*node, n)
		}
	}
}

// WithClonePolicy sets how Clone treats non-cloneable values.
func WithClonePolicy(p ClonePolicy) Option {
	return func(t *Table) {
		t.policy = p
	}
}

// WithLogger sets the logger used for policy warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Type is the Table descriptor.
var Type = &object.Descriptor{
	Name: "hashtable.Table",
	New:  func() object.Instance { return &Table{} },
	Construct: func(v object.Instance) error {
		t := v.(*Table)
		t.buckets = make([]*node, DefaultBuckets)
		t.logger = discard
		return nil
	},
	Destruct: func(v object.Instance) { v.(*Table).Clear() },
	Copy: func(dst, src object.Instance) error {
		to, from := dst.(*Table), src.(*Table)
		to.buckets = make([]*node, len(from.buckets))
		to.policy = from.policy
		to.logger = from.logger
		for _, head := range from.buckets {
			for n := head; n != nil; n = n.next {
				if !object.Cloneable(n.value) {
					if from.policy == CloneSkipUncloneable {
						from.logger.Warn("omitting non-cloneable value from table clone",
							"key", n.key, "type", object.TypeOf(n.value).String())
						continue
					}
					to.Clear()
					return fmt.Errorf("key %q: %w", n.key, object.ErrNotCloneable)
				}
				c, err := object.Clone(n.value)
				if err != nil {
					to.Clear()
					return fmt.Errorf("key %q: %w", n.key, err)
				}
				to.insert(n.key, c)
			}
		}
		return nil
	},
}

// New creates an empty table.
func New(opts ...Option) (*Table, error) {
	t, err := object.CreateAs[*Table](Type)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// hash is the polynomial string hash h = h*31 + c over the key bytes.
func hash(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return h
}

func (t *Table) bucket(key string) int {
	return int(hash(key) % uint32(len(t.buckets)))
}

func (t *Table) find(key string) *node {
	for n := t.buckets[t.bucket(key)]; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

// insert adds a node for a key known to be absent, taking over the reference.
func (t *Table) insert(key string, v object.Instance) {
	if t.size+1 > len(t.buckets)*3/4 {
		t.grow()
	}
	b := t.bucket(key)
	t.buckets[b] = &node{key: key, value: v, next: t.buckets[b]}
	t.size++
}

func (t *Table) grow() {
	old := t.buckets
	t.buckets = make([]*node, len(old)*2)
	for _, head := range old {
		for n := head; n != nil; {
			next := n.next
			b := t.bucket(n.key)
			n.next = t.buckets[b]
			t.buckets[b] = n
			n = next
		}
	}
}

// Put stores v under key, retaining it. An existing value is released.
func (t *Table) Put(key string, v object.Instance) error {
	if key == "" {
		return ErrInvalidKey
	}
	if object.IsNil(v) {
		return fmt.Errorf("key %q: %w", key, ErrNilValue)
	}
	object.Retain(v)
	if n := t.find(key); n != nil {
		old := n.value
		n.value = v
		object.Release(old)
		return nil
	}
	t.insert(key, v)
	return nil
}

// Get returns a new strong reference to the value under key.
func (t *Table) Get(key string) (object.Instance, bool) {
	n := t.find(key)
	if n == nil {
		return nil, false
	}
	return object.Retain(n.value), true
}

// Exists reports whether key is present.
func (t *Table) Exists(key string) bool {
	return t.find(key) != nil
}

// Remove takes the value under key out of the table. The caller owns the
// returned reference.
func (t *Table) Remove(key string) (object.Instance, bool) {
	b := t.bucket(key)
	var prev *node
	for n := t.buckets[b]; n != nil; prev, n = n, n.next {
		if n.key != key {
			continue
		}
		if prev == nil {
			t.buckets[b] = n.next
		} else {
			prev.next = n.next
		}
		t.size--
		return n.value, true
	}
	return nil, false
}

// Clear releases every value.
func (t *Table) Clear() {
	for i, head := range t.buckets {
		for n := head; n != nil; n = n.next {
			object.Release(n.value)
		}
		t.buckets[i] = nil
	}
	t.size = 0
}

// Size returns the number of keys.
func (t *Table) Size() int {
	return t.size
}

// Keys returns a snapshot of the keys in unspecified order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.size)
	t.Range(func(key string, _ object.Instance) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns a new list holding a reference to every value.
// The caller owns the list.
func (t *Table) Values() (*objectlist.List, error) {
	l, err := objectlist.New()
	if err != nil {
		return nil, err
	}
	t.Range(func(_ string, v object.Instance) bool {
		err = l.Add(v)
		return err == nil
	})
	if err != nil {
		object.Release(l)
		return nil, err
	}
	return l, nil
}

// Range calls fn for every entry until fn returns false. The value passed to fn
// is borrowed; retain it to keep it. fn must not modify the table.
func (t *Table) Range(fn func(key string, v object.Instance) bool) {
	for _, head := range t.buckets {
		for n := head; n != nil; n = n.next {
			if !fn(n.key, n.value) {
				return
			}
		}
	}
}

// Buckets returns the current bucket count.
func (t *Table) Buckets() int {
	return len(t.buckets)
}
