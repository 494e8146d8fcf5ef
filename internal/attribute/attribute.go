// Package attribute provides the named, typed value stored in attribute tables.
//
// An Attribute holds exactly one shape at a time: a long, a double, a string,
// a long array or a double array. Names follow the ODIM group/name convention,
// for example "how/rpm" or "what/prodpar".
package attribute

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/ravecore/internal/object"
)

var (
	ErrInvalidName = errors.New("invalid attribute name")
	ErrWrongFormat = errors.New("wrong attribute format")
	ErrNotArray    = errors.New("attribute is not an array")
)

// Attribute is a named value of one Format.
type Attribute struct {
	object.Header
	name   string
	format Format
	l      int64
	d      float64
	s      string
	la     []int64
	da     []float64
}

// Type is the Attribute descriptor.
var Type = &object.Descriptor{
	Name: "attribute.Attribute",
	New:  func() object.Instance { return &Attribute{} },
	Copy: func(dst, src object.Instance) error {
		to, from := dst.(*Attribute), src.(*Attribute)
		to.name = from.name
		to.format = from.format
		to.l, to.d, to.s = from.l, from.d, from.s
		to.la = append([]int64(nil), from.la...)
		to.da = append([]float64(nil), from.da...)
		return nil
	},
}

// New creates an attribute named name with no value.
func New(name string) (*Attribute, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	a, err := object.CreateAs[*Attribute](Type)
	if err != nil {
		return nil, err
	}
	a.name = name
	return a, nil
}

// NewLong creates a long attribute.
func NewLong(name string, v int64) (*Attribute, error) {
	a, err := New(name)
	if err != nil {
		return nil, err
	}
	a.SetLong(v)
	return a, nil
}

// NewDouble creates a double attribute.
func NewDouble(name string, v float64) (*Attribute, error) {
	a, err := New(name)
	if err != nil {
		return nil, err
	}
	a.SetDouble(v)
	return a, nil
}

// NewString creates a string attribute.
func NewString(name, v string) (*Attribute, error) {
	a, err := New(name)
	if err != nil {
		return nil, err
	}
	a.SetString(v)
	return a, nil
}

// NewLongArray creates a long array attribute holding a copy of v.
func NewLongArray(name string, v []int64) (*Attribute, error) {
	a, err := New(name)
	if err != nil {
		return nil, err
	}
	a.SetLongArray(v)
	return a, nil
}

// NewDoubleArray creates a double array attribute holding a copy of v.
func NewDoubleArray(name string, v []float64) (*Attribute, error) {
	a, err := New(name)
	if err != nil {
		return nil, err
	}
	a.SetDoubleArray(v)
	return a, nil
}

func (a *Attribute) Name() string   { return a.name }
func (a *Attribute) Format() Format { return a.format }

// SetName renames the attribute.
func (a *Attribute) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	a.name = name
	return nil
}

// GroupAndName splits the name at its last '/': "how/rpm" gives ("how", "rpm").
func (a *Attribute) GroupAndName() (group, name string, err error) {
	i := strings.LastIndexByte(a.name, '/')
	if i <= 0 || i == len(a.name)-1 {
		return "", "", fmt.Errorf("%w: %q has no group", ErrInvalidName, a.name)
	}
	return a.name[:i], a.name[i+1:], nil
}

func (a *Attribute) reset(f Format) {
	a.format = f
	a.l, a.d, a.s = 0, 0, ""
	a.la, a.da = nil, nil
}

func (a *Attribute) SetLong(v int64) {
	a.reset(Long)
	a.l = v
}

func (a *Attribute) SetDouble(v float64) {
	a.reset(Double)
	a.d = v
}

func (a *Attribute) SetString(v string) {
	a.reset(String)
	a.s = v
}

func (a *Attribute) SetLongArray(v []int64) {
	a.reset(LongArray)
	a.la = append(make([]int64, 0, len(v)), v...)
}

func (a *Attribute) SetDoubleArray(v []float64) {
	a.reset(DoubleArray)
	a.da = append(make([]float64, 0, len(v)), v...)
}

func (a *Attribute) wrong(want Format) error {
	return fmt.Errorf("%w: %s is %s, not %s", ErrWrongFormat, a.name, a.format, want)
}

func (a *Attribute) Long() (int64, error) {
	if a.format != Long {
		return 0, a.wrong(Long)
	}
	return a.l, nil
}

func (a *Attribute) Double() (float64, error) {
	if a.format != Double {
		return 0, a.wrong(Double)
	}
	return a.d, nil
}

// Str returns the string value.
func (a *Attribute) Str() (string, error) {
	if a.format != String {
		return "", a.wrong(String)
	}
	return a.s, nil
}

// LongArray returns a copy of the long array.
func (a *Attribute) LongArray() ([]int64, error) {
	if a.format != LongArray {
		return nil, a.wrong(LongArray)
	}
	return append([]int64(nil), a.la...), nil
}

// DoubleArray returns a copy of the double array.
func (a *Attribute) DoubleArray() ([]float64, error) {
	if a.format != DoubleArray {
		return nil, a.wrong(DoubleArray)
	}
	return append([]float64(nil), a.da...), nil
}

// Len returns the element count of an array attribute, 1 for a scalar and 0
// when undefined.
func (a *Attribute) Len() int {
	switch a.format {
	case LongArray:
		return len(a.la)
	case DoubleArray:
		return len(a.da)
	case Undefined:
		return 0
	default:
		return 1
	}
}

// Shift rotates an array attribute by n positions. Element i moves to
// (i+n) mod len; negative n rotates the other way.
func (a *Attribute) Shift(n int) error {
	switch a.format {
	case LongArray:
		rotate(a.la, n)
	case DoubleArray:
		rotate(a.da, n)
	default:
		return fmt.Errorf("%w: %s is %s", ErrNotArray, a.name, a.format)
	}
	return nil
}

func rotate[T any](s []T, n int) {
	size := len(s)
	if size == 0 {
		return
	}
	n %= size
	if n < 0 {
		n += size
	}
	if n == 0 {
		return
	}
	out := make([]T, size)
	for i, v := range s {
		out[(i+n)%size] = v
	}
	copy(s, out)
}

func (a *Attribute) String() string {
	switch a.format {
	case Long:
		return fmt.Sprintf("%s=%d", a.name, a.l)
	case Double:
		return fmt.Sprintf("%s=%g", a.name, a.d)
	case String:
		return fmt.Sprintf("%s=%q", a.name, a.s)
	case LongArray:
		return fmt.Sprintf("%s=%v", a.name, a.la)
	case DoubleArray:
		return fmt.Sprintf("%s=%v", a.name, a.da)
	default:
		return a.name + "=<undefined>"
	}
}
