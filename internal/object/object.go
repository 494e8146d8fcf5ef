package object

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrInvalidDescriptor = errors.New("invalid type descriptor")
	ErrConstruct         = errors.New("constructor failed")
	ErrNotCloneable      = errors.New("type is not cloneable")
	ErrCopy              = errors.New("copy constructor failed")

	// Fatal tier: raised through panic, never returned.
	ErrRefCountUnderflow = errors.New("reference count underflow")
	ErrDestroyed         = errors.New("use of destroyed object")
	ErrAlreadyBound      = errors.New("binding slot already set")
)

// Header is the common prefix of every object. Embed it by value:
//
//	type Volume struct {
//		object.Header
//		...
//	}
type Header struct {
	refs      int
	desc      *Descriptor
	binding   any
	destroyed bool
}

func (h *Header) header() *Header { return h }

// Instance is any value whose type embeds Header.
type Instance interface {
	header() *Header
}

// Create allocates and constructs a new instance of d with a reference count of 1.
func Create(d *Descriptor) (Instance, error) {
	v, err := allocate(d)
	if err != nil {
		return nil, err
	}
	if d.Construct != nil {
		if err := d.Construct(v); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", d.Name, ErrConstruct, err)
		}
	}
	trackCreated(d)
	return v, nil
}

// CreateAs is Create with the result asserted to T.
func CreateAs[T Instance](d *Descriptor) (T, error) {
	var zero T
	v, err := Create(d)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s: %w: New returned %T", d.Name, ErrInvalidDescriptor, v)
	}
	return t, nil
}

func allocate(d *Descriptor) (Instance, error) {
	if d == nil || d.New == nil {
		return nil, fmt.Errorf("%v: %w", d, ErrInvalidDescriptor)
	}
	v := d.New()
	if IsNil(v) {
		return nil, fmt.Errorf("%s: %w: New returned nil", d.Name, ErrInvalidDescriptor)
	}
	h := v.header()
	h.refs = 1
	h.desc = d
	h.binding = nil
	h.destroyed = false
	return v, nil
}

// IsNil reports whether v is nil or a typed nil pointer.
func IsNil(v Instance) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Retain adds a strong reference and returns v. A nil v is returned unchanged.
func Retain(v Instance) Instance {
	if IsNil(v) {
		return v
	}
	h := v.header()
	if h.destroyed {
		panic(fmt.Errorf("retain %s: %w", h.desc, ErrDestroyed))
	}
	h.refs++
	return v
}

// RetainAs is Retain preserving the static type of v.
func RetainAs[T Instance](v T) T {
	Retain(v)
	return v
}

// Release drops a strong reference. The last release runs the destructor.
// Releasing a destroyed object panics. A nil v, typed or not, is ignored.
func Release(v Instance) {
	if IsNil(v) {
		return
	}
	h := v.header()
	if h.destroyed || h.refs <= 0 {
		panic(fmt.Errorf("release %s: %w", h.desc, ErrRefCountUnderflow))
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	h.destroyed = true
	if h.desc.Destruct != nil {
		h.desc.Destruct(v)
	}
	h.binding = nil
	trackDestroyed(h.desc)
}

// Clone returns a new instance copied from v through its type's copy constructor.
func Clone(v Instance) (Instance, error) {
	if IsNil(v) {
		return nil, fmt.Errorf("clone nil: %w", ErrInvalidDescriptor)
	}
	h := v.header()
	if h.destroyed {
		panic(fmt.Errorf("clone %s: %w", h.desc, ErrDestroyed))
	}
	d := h.desc
	if !d.Cloneable() {
		return nil, fmt.Errorf("%s: %w", d, ErrNotCloneable)
	}
	dst, err := allocate(d)
	if err != nil {
		return nil, err
	}
	if err := d.Copy(dst, v); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", d.Name, ErrCopy, err)
	}
	trackCreated(d)
	return dst, nil
}

// CloneAs is Clone preserving the static type of v.
func CloneAs[T Instance](v T) (T, error) {
	var zero T
	c, err := Clone(v)
	if err != nil {
		return zero, err
	}
	return c.(T), nil
}

// Cloneable reports whether v's type has a copy constructor.
func Cloneable(v Instance) bool {
	return !IsNil(v) && v.header().desc.Cloneable()
}

// Bind attaches host-side data to v. Binding an already bound object panics.
func Bind(v Instance, data any) {
	h := v.header()
	if h.binding != nil {
		panic(fmt.Errorf("bind %s: %w", h.desc, ErrAlreadyBound))
	}
	h.binding = data
}

// Unbind clears the binding slot when it currently holds data.
// data must be comparable; pointers are the usual choice.
func Unbind(v Instance, data any) {
	h := v.header()
	if h.binding == data {
		h.binding = nil
	}
}

// Binding returns the bound data, or nil.
func Binding(v Instance) any {
	return v.header().binding
}

// RefCount returns the number of strong references held on v.
func RefCount(v Instance) int {
	if IsNil(v) {
		return 0
	}
	return v.header().refs
}

// Destroyed reports whether v has been released to zero.
func Destroyed(v Instance) bool {
	return v.header().destroyed
}

// TypeOf returns the descriptor v was created with.
func TypeOf(v Instance) *Descriptor {
	if IsNil(v) {
		return nil
	}
	return v.header().desc
}

// IsType reports whether v was created from d.
func IsType(v Instance, d *Descriptor) bool {
	return !IsNil(v) && v.header().desc == d
}
