// Package testutil provides object types for exercising the runtime and the
// containers in tests: a counting stub whose lifecycle calls are observable, an
// opaque non-cloneable type, and a type whose constructor always fails.
package testutil

import (
	"errors"
	"fmt"

	"github.com/comalice/ravecore/internal/object"
)

// Counter records lifecycle calls of every instance of one stub type.
type Counter struct {
	Constructed int
	Destroyed   int
	Copied      int
}

// Stub is a composite test object. Child is an owned, cloneable member and
// Shared is an owned but non-cloneable member that clones share by retaining.
type Stub struct {
	object.Header
	Value  int
	Child  *Stub
	Shared *Opaque
}

// NewStubType returns a descriptor for Stub that counts into c.
// When cloneable is false the descriptor has no copy constructor.
func NewStubType(name string, c *Counter, cloneable bool) *object.Descriptor {
	d := &object.Descriptor{
		Name: name,
		New:  func() object.Instance { return &Stub{} },
		Construct: func(object.Instance) error {
			c.Constructed++
			return nil
		},
		Destruct: func(v object.Instance) {
			s := v.(*Stub)
			c.Destroyed++
			if s.Child != nil {
				object.Release(s.Child)
			}
			if s.Shared != nil {
				object.Release(s.Shared)
			}
			s.Child, s.Shared = nil, nil
		},
	}
	if cloneable {
		d.Copy = func(dst, src object.Instance) error {
			to, from := dst.(*Stub), src.(*Stub)
			to.Value = from.Value
			if from.Child != nil {
				child, err := object.CloneAs(from.Child)
				if err != nil {
					return err
				}
				to.Child = child
			}
			if from.Shared != nil {
				to.Shared = object.RetainAs(from.Shared)
			}
			c.Copied++
			return nil
		}
	}
	return d
}

// NewStub creates a stub of type d carrying value.
func NewStub(d *object.Descriptor, value int) (*Stub, error) {
	s, err := object.CreateAs[*Stub](d)
	if err != nil {
		return nil, err
	}
	s.Value = value
	return s, nil
}

// MustStub is NewStub that panics on error.
func MustStub(d *object.Descriptor, value int) *Stub {
	s, err := NewStub(d, value)
	if err != nil {
		panic(fmt.Sprintf("create stub: %v", err))
	}
	return s
}

// Opaque is a non-cloneable object.
type Opaque struct {
	object.Header
	Label string
}

var OpaqueType = &object.Descriptor{
	Name: "testutil.Opaque",
	New:  func() object.Instance { return &Opaque{} },
}

// NewOpaque creates an Opaque labelled label.
func NewOpaque(label string) *Opaque {
	o, err := object.CreateAs[*Opaque](OpaqueType)
	if err != nil {
		panic(err)
	}
	o.Label = label
	return o
}

var ErrBroken = errors.New("broken constructor")

// BrokenType is a type whose constructor always fails.
var BrokenType = &object.Descriptor{
	Name:      "testutil.Broken",
	New:       func() object.Instance { return &Opaque{} },
	Construct: func(object.Instance) error { return ErrBroken },
}
