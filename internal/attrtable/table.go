// Package attrtable provides a revision-aware attribute store.
//
// Attributes are always stored in canonical form: the naming and units used
// internally regardless of which revision wrote them. AddVersion translates an
// incoming attribute into canonical form and GetVersion translates it back out
// for the requested revision. Translation never changes what is stored.
package attrtable

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/comalice/ravecore/internal/attribute"
	"github.com/comalice/ravecore/internal/hashtable"
	"github.com/comalice/ravecore/internal/object"
	"github.com/comalice/ravecore/internal/objectlist"
)

var (
	ErrNotFound            = errors.New("attribute not found")
	ErrNilAttribute        = errors.New("nil attribute")
	ErrUnsupportedRevision = errors.New("unsupported revision")
	ErrShapeMismatch       = errors.New("attribute shape does not match translation rule")
	ErrUnrepresentable     = errors.New("value has no representation in target unit")
)

// Table stores attributes keyed by canonical name.
type Table struct {
	object.Header
	attrs    *hashtable.Table
	revision Revision
	strict   bool
	logger   *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithRevision sets the default query revision.
func WithRevision(r Revision) Option {
	return func(t *Table) {
		t.revision = r
	}
}

// WithStrictShapes makes a shape mismatch against a translation rule an error
// instead of an untranslated pass-through.
func WithStrictShapes(strict bool) Option {
	return func(t *Table) {
		t.strict = strict
	}
}

// WithLogger sets the logger for translation diagnostics.
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
	Name: "attrtable.Table",
	New:  func() object.Instance { return &Table{} },
	Construct: func(v object.Instance) error {
		t := v.(*Table)
		attrs, err := hashtable.New()
		if err != nil {
			return err
		}
		t.attrs = attrs
		t.revision = RevisionLatest
		t.logger = discard
		return nil
	},
	Destruct: func(v object.Instance) {
		t := v.(*Table)
		object.Release(t.attrs)
		t.attrs = nil
	},
	Copy: func(dst, src object.Instance) error {
		to, from := dst.(*Table), src.(*Table)
		attrs, err := object.CloneAs(from.attrs)
		if err != nil {
			return err
		}
		to.attrs = attrs
		to.revision = from.revision
		to.strict = from.strict
		to.logger = from.logger
		return nil
	},
}

// New creates an empty table queried at RevisionLatest unless configured otherwise.
func New(opts ...Option) (*Table, error) {
	t, err := object.CreateAs[*Table](Type)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := checkRevision(t.revision); err != nil {
		object.Release(t)
		return nil, err
	}
	return t, nil
}

func checkRevision(r Revision) error {
	if r < RevisionMinTable || r > RevisionLatest {
		return fmt.Errorf("%w: %s (need %s..%s)", ErrUnsupportedRevision, r, RevisionMinTable, RevisionLatest)
	}
	return nil
}

// SetRevision sets the default query revision used by Add and Get.
func (t *Table) SetRevision(r Revision) error {
	if err := checkRevision(r); err != nil {
		return err
	}
	t.revision = r
	return nil
}

// Revision returns the default query revision.
func (t *Table) Revision() Revision {
	return t.revision
}

// Add stores attr as written at the table's revision.
func (t *Table) Add(attr *attribute.Attribute) error {
	return t.AddVersion(attr, t.revision)
}

// AddVersion stores attr as written at rev, translating it to canonical form.
func (t *Table) AddVersion(attr *attribute.Attribute, rev Revision) error {
	stored, err := t.add(attr, rev)
	if stored != nil {
		object.Release(stored)
	}
	return err
}

// AddVersionTranslated is AddVersion that also returns a copy of the
// canonical attribute when a translation rule fired, or nil when attr was
// stored as given. The caller owns the returned attribute.
func (t *Table) AddVersionTranslated(attr *attribute.Attribute, rev Revision) (*attribute.Attribute, error) {
	stored, err := t.add(attr, rev)
	if stored == nil || err != nil {
		if stored != nil {
			object.Release(stored)
		}
		return nil, err
	}
	defer object.Release(stored)
	return object.CloneAs(stored)
}

// add stores attr and returns the translated attribute it created, if any.
func (t *Table) add(attr *attribute.Attribute, rev Revision) (*attribute.Attribute, error) {
	if attr == nil {
		return nil, ErrNilAttribute
	}
	r := byExternal(attr.Name(), rev)
	if r == nil {
		return nil, t.put(attr.Name(), attr, rev)
	}
	if attr.Format() != r.format {
		if err := t.mismatch(r, attr, rev); err != nil {
			return nil, err
		}
		return nil, t.put(attr.Name(), attr, rev)
	}
	canon, err := convert(attr, r.canonical, r.format, r.forward)
	if err != nil {
		return nil, err
	}
	if err := t.put(canon.Name(), canon, rev); err != nil {
		object.Release(canon)
		return nil, err
	}
	return canon, nil
}

// put stores attr under name. Replacing an attribute of another shape is
// logged; this happens when a legacy scalar and a newer array share a
// canonical name, as melting_layer_top does below 2.4.
func (t *Table) put(name string, attr *attribute.Attribute, rev Revision) error {
	if old, ok := t.lookup(name); ok {
		if old.Format() != attr.Format() {
			t.logger.Debug("replacing attribute of a different shape",
				"name", name, "stored", old.Format().String(),
				"format", attr.Format().String(), "revision", rev.String())
		}
		object.Release(old)
	}
	return t.attrs.Put(name, attr)
}

func (t *Table) mismatch(r *rule, attr *attribute.Attribute, rev Revision) error {
	if t.strict {
		return fmt.Errorf("%w: %s is %s, rule expects %s", ErrShapeMismatch, attr.Name(), attr.Format(), r.format)
	}
	t.logger.Debug("attribute not translated: shape mismatch",
		"name", attr.Name(), "format", attr.Format().String(),
		"expected", r.format.String(), "revision", rev.String())
	return nil
}

// Get returns name as presented at the table's revision.
func (t *Table) Get(name string) (*attribute.Attribute, error) {
	return t.GetVersion(name, t.revision)
}

// GetVersion returns name as presented at rev. A translated attribute is a
// new instance; an untranslated one is the stored instance. Either way the
// caller owns one reference.
func (t *Table) GetVersion(name string, rev Revision) (*attribute.Attribute, error) {
	if r := byExternal(name, rev); r != nil {
		if canon, ok := t.lookup(r.canonical); ok {
			defer object.Release(canon)
			if canon.Format() == r.format {
				return convert(canon, name, r.format, r.inverse)
			}
			if err := t.mismatch(r, canon, rev); err != nil {
				return nil, err
			}
		}
	}
	if a, ok := t.lookup(name); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (t *Table) lookup(name string) (*attribute.Attribute, bool) {
	v, ok := t.attrs.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*attribute.Attribute), true
}

// GetDouble returns the double value of name at the table's revision.
func (t *Table) GetDouble(name string) (float64, error) {
	a, err := t.Get(name)
	if err != nil {
		return 0, err
	}
	defer object.Release(a)
	return a.Double()
}

// GetLong returns the long value of name at the table's revision.
func (t *Table) GetLong(name string) (int64, error) {
	a, err := t.Get(name)
	if err != nil {
		return 0, err
	}
	defer object.Release(a)
	return a.Long()
}

// GetString returns the string value of name at the table's revision.
func (t *Table) GetString(name string) (string, error) {
	a, err := t.Get(name)
	if err != nil {
		return "", err
	}
	defer object.Release(a)
	return a.Str()
}

// Shift rotates the stored array attribute name by n positions.
func (t *Table) Shift(name string, n int) error {
	a, ok := t.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	defer object.Release(a)
	return a.Shift(n)
}

// ShiftIfExists is Shift that succeeds without effect when name is absent.
func (t *Table) ShiftIfExists(name string, n int) error {
	if !t.attrs.Exists(name) {
		return nil
	}
	return t.Shift(name, n)
}

// Size returns the number of stored attributes.
func (t *Table) Size() int {
	return t.attrs.Size()
}

// Has reports whether name is stored under its canonical name.
func (t *Table) Has(name string) bool {
	return t.attrs.Exists(name)
}

// Remove deletes the stored attribute name.
func (t *Table) Remove(name string) bool {
	v, ok := t.attrs.Remove(name)
	if ok {
		object.Release(v)
	}
	return ok
}

// Clear removes every attribute.
func (t *Table) Clear() {
	t.attrs.Clear()
}

// Names returns the stored canonical names, sorted.
func (t *Table) Names() []string {
	names := t.attrs.Keys()
	sort.Strings(names)
	return names
}

// NamesVersion returns the stored names as they are spelled at rev, sorted.
// A stored name that no rule presents at rev is kept as is, and a
// translated name never displaces it.
func (t *Table) NamesVersion(rev Revision) []string {
	views := t.present(rev)
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.name
	}
	return names
}

// view is a stored attribute as presented at a revision. r is nil when the
// value is presented unconverted.
type view struct {
	key  string
	name string
	attr *attribute.Attribute
	r    *rule
}

// present maps every stored attribute to its name at rev, sorted by that
// name. Presented names are unique: a translation that would collide with a
// name already in use falls back to the stored name.
func (t *Table) present(rev Revision) []view {
	views := make([]view, 0, t.attrs.Size())
	t.attrs.Range(func(key string, v object.Instance) bool {
		a := v.(*attribute.Attribute)
		vw := view{key: key, name: key, attr: a}
		if r := byCanonical(key, rev); r != nil && r.format == a.Format() {
			vw.name, vw.r = r.external, r
		}
		views = append(views, vw)
		return true
	})

	for changed := true; changed; {
		changed = false
		kept := make(map[string]bool, len(views))
		for _, vw := range views {
			if vw.name == vw.key {
				kept[vw.name] = true
			}
		}
		for i := range views {
			vw := &views[i]
			if vw.name == vw.key || !kept[vw.name] {
				continue
			}
			t.logger.Debug("attribute not translated: name in use",
				"name", vw.key, "external", vw.name, "revision", rev.String())
			vw.name, vw.r = vw.key, nil
			changed = true
		}
	}

	sort.Slice(views, func(i, j int) bool { return views[i].name < views[j].name })
	return views
}

// Values returns a list referencing every stored attribute. The caller owns
// the list.
func (t *Table) Values() (*objectlist.List, error) {
	return t.attrs.Values()
}

// ValuesVersion returns every stored attribute as presented at rev, in the
// order of NamesVersion. The caller owns the list.
func (t *Table) ValuesVersion(rev Revision) (*objectlist.List, error) {
	l, err := objectlist.New()
	if err != nil {
		return nil, err
	}
	for _, vw := range t.present(rev) {
		a := vw.attr
		if vw.r != nil {
			if a, err = convert(vw.attr, vw.name, vw.r.format, vw.r.inverse); err != nil {
				object.Release(l)
				return nil, fmt.Errorf("%s at %s: %w", vw.name, rev, err)
			}
		} else {
			object.Retain(a)
		}
		err = l.Add(a)
		object.Release(a)
		if err != nil {
			object.Release(l)
			return nil, err
		}
	}
	return l, nil
}
