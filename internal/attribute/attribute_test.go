package attribute

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/object"
)

func TestNew_InvalidName(t *testing.T) {
	for _, name := range []string{"", "   "} {
		if _, err := New(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("New(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestAccessors(t *testing.T) {
	l, _ := NewLong("how/count", 3)
	d, _ := NewDouble("how/rpm", 12.5)
	s, _ := NewString("how/task", "se.smhi.test")
	la, _ := NewLongArray("how/ids", []int64{1, 2})
	da, _ := NewDoubleArray("how/startazT", []float64{0.5, 1.5})
	for _, a := range []*Attribute{l, d, s, la, da} {
		defer object.Release(a)
	}

	if v, err := l.Long(); err != nil || v != 3 {
		t.Errorf("Long = %d, %v", v, err)
	}
	if v, err := d.Double(); err != nil || v != 12.5 {
		t.Errorf("Double = %g, %v", v, err)
	}
	if v, err := s.Str(); err != nil || v != "se.smhi.test" {
		t.Errorf("Str = %q, %v", v, err)
	}
	if v, err := la.LongArray(); err != nil || !reflect.DeepEqual(v, []int64{1, 2}) {
		t.Errorf("LongArray = %v, %v", v, err)
	}
	if v, err := da.DoubleArray(); err != nil || !reflect.DeepEqual(v, []float64{0.5, 1.5}) {
		t.Errorf("DoubleArray = %v, %v", v, err)
	}

	if _, err := d.Long(); !errors.Is(err, ErrWrongFormat) {
		t.Errorf("Long on double: %v", err)
	}
	if _, err := l.DoubleArray(); !errors.Is(err, ErrWrongFormat) {
		t.Errorf("DoubleArray on long: %v", err)
	}

	arr, _ := da.DoubleArray()
	arr[0] = 99
	if again, _ := da.DoubleArray(); again[0] != 0.5 {
		t.Error("DoubleArray must return a copy")
	}
	if da.Len() != 2 || d.Len() != 1 {
		t.Errorf("Len = %d/%d", da.Len(), d.Len())
	}
}

func TestSetterChangesFormat(t *testing.T) {
	a, _ := New("how/x")
	defer object.Release(a)
	if a.Format() != Undefined || a.Len() != 0 {
		t.Fatalf("new attribute format = %s", a.Format())
	}
	a.SetDoubleArray([]float64{1})
	a.SetLong(5)
	if a.Format() != Long {
		t.Errorf("format = %s, want long", a.Format())
	}
	if _, err := a.DoubleArray(); !errors.Is(err, ErrWrongFormat) {
		t.Error("old array should be gone")
	}
}

func TestGroupAndName(t *testing.T) {
	tests := []struct {
		name      string
		group     string
		attr      string
		wantError bool
	}{
		{"how/rpm", "how", "rpm", false},
		{"dataset1/data1/what/gain", "dataset1/data1/what", "gain", false},
		{"rpm", "", "", true},
		{"/rpm", "", "", true},
		{"how/", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := New(tt.name)
			defer object.Release(a)
			g, n, err := a.GroupAndName()
			if tt.wantError {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("err = %v, want ErrInvalidName", err)
				}
				return
			}
			if err != nil || g != tt.group || n != tt.attr {
				t.Errorf("GroupAndName = %q, %q, %v", g, n, err)
			}
		})
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		n    int
		want []int64
	}{
		{0, []int64{1, 2, 3, 4}},
		{1, []int64{4, 1, 2, 3}},
		{-1, []int64{2, 3, 4, 1}},
		{5, []int64{4, 1, 2, 3}},
		{-6, []int64{3, 4, 1, 2}},
	}
	for _, tt := range tests {
		a, _ := NewLongArray("how/ids", []int64{1, 2, 3, 4})
		if err := a.Shift(tt.n); err != nil {
			t.Fatalf("Shift(%d): %v", tt.n, err)
		}
		got, _ := a.LongArray()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Shift(%d) = %v, want %v", tt.n, got, tt.want)
		}
		object.Release(a)
	}
}

func TestShift_Idempotence(t *testing.T) {
	orig := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}
	for n := -15; n <= 15; n++ {
		a, _ := NewDoubleArray("how/startazA", orig)
		if err := a.Shift(n); err != nil {
			t.Fatal(err)
		}
		if err := a.Shift(-n); err != nil {
			t.Fatal(err)
		}
		got, _ := a.DoubleArray()
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("Shift(%d) then Shift(%d) = %v", n, -n, got)
		}
		object.Release(a)
	}
}

func TestShift_Scalar(t *testing.T) {
	a, _ := NewDouble("how/rpm", 1)
	defer object.Release(a)
	if err := a.Shift(1); !errors.Is(err, ErrNotArray) {
		t.Errorf("err = %v, want ErrNotArray", err)
	}
}

func TestClone_DeepCopiesArrays(t *testing.T) {
	a, _ := NewDoubleArray("how/startazT", []float64{1, 2, 3})
	defer object.Release(a)
	c, err := object.CloneAs(a)
	if err != nil {
		t.Fatal(err)
	}
	defer object.Release(c)

	if err := c.Shift(1); err != nil {
		t.Fatal(err)
	}
	orig, _ := a.DoubleArray()
	if !reflect.DeepEqual(orig, []float64{1, 2, 3}) {
		t.Errorf("shifting the clone changed the original: %v", orig)
	}
	if c.Name() != a.Name() || c.Format() != a.Format() {
		t.Error("clone should keep name and format")
	}
}

func TestDocument_YAML(t *testing.T) {
	src := `
- name: how/rpm
  value: 12.5
- name: how/count
  value: 3
- name: how/task
  value: se.smhi.test
- name: how/ids
  value: [1, 2, 3]
- name: how/startazT
  value: [0.5, 1]
- name: how/gain
  format: double
  value: 2
- name: how/empty
  format: long_array
`
	var docs []Document
	if err := yaml.Unmarshal([]byte(src), &docs); err != nil {
		t.Fatal(err)
	}
	want := []Document{
		{"how/rpm", Double, 12.5},
		{"how/count", Long, int64(3)},
		{"how/task", String, "se.smhi.test"},
		{"how/ids", LongArray, []int64{1, 2, 3}},
		{"how/startazT", DoubleArray, []float64{0.5, 1}},
		{"how/gain", Double, float64(2)},
		{"how/empty", LongArray, []int64{}},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Fatalf("decoded = %#v\nwant %#v", docs, want)
	}

	for _, doc := range docs {
		a, err := FromDocument(doc)
		if err != nil {
			t.Fatalf("FromDocument(%s): %v", doc.Name, err)
		}
		out, err := yaml.Marshal(a.Document())
		if err != nil {
			t.Fatal(err)
		}
		var back Document
		if err := yaml.Unmarshal(out, &back); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(back, doc) {
			t.Errorf("yaml round trip of %s = %#v, want %#v", doc.Name, back, doc)
		}
		object.Release(a)
	}
}

func TestDocument_JSON(t *testing.T) {
	src := `[{"name":"how/rpm","value":12.5},{"name":"how/ids","value":[1,2]},{"name":"how/wavelength","format":"double","value":5}]`
	var docs []Document
	if err := json.Unmarshal([]byte(src), &docs); err != nil {
		t.Fatal(err)
	}
	want := []Document{
		{"how/rpm", Double, 12.5},
		{"how/ids", LongArray, []int64{1, 2}},
		{"how/wavelength", Double, float64(5)},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Fatalf("decoded = %#v, want %#v", docs, want)
	}

	a, _ := NewDoubleArray("how/empty", nil)
	defer object.Release(a)
	out, err := json.Marshal(a.Document())
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.Format != DoubleArray {
		t.Errorf("empty array lost its format: %s", out)
	}
}

func TestFromDocument_WrongValue(t *testing.T) {
	tr, err := object.EnableTracking(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	defer object.DisableTracking()

	_, err = FromDocument(Document{Name: "how/x", Format: Long, Value: "nope"})
	if !errors.Is(err, ErrWrongFormat) {
		t.Errorf("err = %v, want ErrWrongFormat", err)
	}
	if leaks := tr.Leaks(); len(leaks) != 0 {
		t.Errorf("failed decode leaked %v", leaks)
	}
}

func TestFormat_Text(t *testing.T) {
	for f := Undefined; f <= DoubleArray; f++ {
		b, _ := f.MarshalText()
		var back Format
		if err := back.UnmarshalText(b); err != nil || back != f {
			t.Errorf("format %s round trip = %s, %v", f, back, err)
		}
	}
	if !LongArray.IsArray() || Double.IsArray() {
		t.Error("IsArray mismatch")
	}
}
