package attribute

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/object"
)

// Document is the serialisable form of an attribute. Value holds int64,
// float64, string, []int64 or []float64 matching Format.
//
// When decoding, a missing format is inferred from the value: integers give
// long, other numbers give double, and a sequence is a long array only if every
// element is an integer.
type Document struct {
	Name   string `json:"name" yaml:"name"`
	Format Format `json:"format" yaml:"format"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Document returns the serialisable form of a.
func (a *Attribute) Document() Document {
	doc := Document{Name: a.name, Format: a.format}
	switch a.format {
	case Long:
		doc.Value = a.l
	case Double:
		doc.Value = a.d
	case String:
		doc.Value = a.s
	case LongArray:
		doc.Value = append(make([]int64, 0, len(a.la)), a.la...)
	case DoubleArray:
		doc.Value = append(make([]float64, 0, len(a.da)), a.da...)
	}
	return doc
}

// FromDocument creates an attribute from its serialised form.
func FromDocument(doc Document) (*Attribute, error) {
	a, err := New(doc.Name)
	if err != nil {
		return nil, err
	}
	if err := a.setValue(doc.Format, doc.Value); err != nil {
		object.Release(a)
		return nil, err
	}
	return a, nil
}

func (a *Attribute) setValue(f Format, v any) error {
	switch f {
	case Undefined:
		a.reset(Undefined)
	case Long:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("%w: %s: long value is %T", ErrWrongFormat, a.name, v)
		}
		a.SetLong(n)
	case Double:
		switch n := v.(type) {
		case float64:
			a.SetDouble(n)
		case int64:
			a.SetDouble(float64(n))
		default:
			return fmt.Errorf("%w: %s: double value is %T", ErrWrongFormat, a.name, v)
		}
	case String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s: string value is %T", ErrWrongFormat, a.name, v)
		}
		a.SetString(s)
	case LongArray:
		s, ok := v.([]int64)
		if !ok {
			return fmt.Errorf("%w: %s: long array value is %T", ErrWrongFormat, a.name, v)
		}
		a.SetLongArray(s)
	case DoubleArray:
		switch s := v.(type) {
		case []float64:
			a.SetDoubleArray(s)
		case []int64:
			d := make([]float64, len(s))
			for i, n := range s {
				d[i] = float64(n)
			}
			a.SetDoubleArray(d)
		default:
			return fmt.Errorf("%w: %s: double array value is %T", ErrWrongFormat, a.name, v)
		}
	default:
		return fmt.Errorf("%w: %s: %s", ErrWrongFormat, a.name, f)
	}
	return nil
}

func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name   string    `yaml:"name"`
		Format *Format   `yaml:"format"`
		Value  yaml.Node `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	d.Name = raw.Name
	if raw.Value.Kind == 0 {
		d.Format, d.Value = zeroValue(raw.Format)
		return nil
	}
	f := inferYAML(&raw.Value)
	if raw.Format != nil {
		f = *raw.Format
	}
	d.Format = f

	var err error
	switch f {
	case Undefined:
		d.Value = nil
	case Long:
		var v int64
		err = raw.Value.Decode(&v)
		d.Value = v
	case Double:
		var v float64
		err = raw.Value.Decode(&v)
		d.Value = v
	case String:
		var v string
		err = raw.Value.Decode(&v)
		d.Value = v
	case LongArray:
		var v []int64
		err = raw.Value.Decode(&v)
		d.Value = v
	case DoubleArray:
		var v []float64
		err = raw.Value.Decode(&v)
		d.Value = v
	}
	if err != nil {
		return fmt.Errorf("attribute %s: %w", d.Name, err)
	}
	return nil
}

// zeroValue is the value of a document whose value was omitted.
func zeroValue(f *Format) (Format, any) {
	if f == nil {
		return Undefined, nil
	}
	switch *f {
	case Long:
		return Long, int64(0)
	case Double:
		return Double, float64(0)
	case String:
		return String, ""
	case LongArray:
		return LongArray, []int64{}
	case DoubleArray:
		return DoubleArray, []float64{}
	}
	return Undefined, nil
}

func inferYAML(n *yaml.Node) Format {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int":
			return Long
		case "!!float":
			return Double
		default:
			return String
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.ShortTag() != "!!int" {
				return DoubleArray
			}
		}
		if len(n.Content) == 0 {
			return DoubleArray
		}
		return LongArray
	}
	return Undefined
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name   string          `json:"name"`
		Format *Format         `json:"format"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Name = raw.Name
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		d.Format, d.Value = zeroValue(raw.Format)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Value))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("attribute %s: %w", d.Name, err)
	}
	f := inferJSON(generic)
	if raw.Format != nil {
		f = *raw.Format
	}
	d.Format = f

	var err error
	switch f {
	case Undefined:
		d.Value = nil
	case Long:
		var v int64
		err = json.Unmarshal(raw.Value, &v)
		d.Value = v
	case Double:
		var v float64
		err = json.Unmarshal(raw.Value, &v)
		d.Value = v
	case String:
		var v string
		err = json.Unmarshal(raw.Value, &v)
		d.Value = v
	case LongArray:
		var v []int64
		err = json.Unmarshal(raw.Value, &v)
		d.Value = v
	case DoubleArray:
		var v []float64
		err = json.Unmarshal(raw.Value, &v)
		d.Value = v
	}
	if err != nil {
		return fmt.Errorf("attribute %s: %w", d.Name, err)
	}
	return nil
}

func isJSONInt(n json.Number) bool {
	return !strings.ContainsAny(string(n), ".eE")
}

func inferJSON(v any) Format {
	switch x := v.(type) {
	case json.Number:
		if isJSONInt(x) {
			return Long
		}
		return Double
	case string:
		return String
	case []any:
		if len(x) == 0 {
			return DoubleArray
		}
		for _, e := range x {
			n, ok := e.(json.Number)
			if !ok || !isJSONInt(n) {
				return DoubleArray
			}
		}
		return LongArray
	}
	return Undefined
}
