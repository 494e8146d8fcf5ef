package attrtable

import (
	"fmt"

	"github.com/comalice/ravecore/internal/attribute"
	"github.com/comalice/ravecore/internal/object"
)

// Snapshot is the serialisable content of a Table. Attributes are in
// canonical form unless produced by SnapshotVersion.
type Snapshot struct {
	Revision   Revision             `json:"revision" yaml:"revision"`
	Attributes []attribute.Document `json:"attributes" yaml:"attributes"`
}

// Snapshot returns the stored attributes in canonical form, sorted by name.
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{Revision: t.revision}
	for _, name := range t.Names() {
		a, ok := t.lookup(name)
		if !ok {
			continue
		}
		s.Attributes = append(s.Attributes, a.Document())
		object.Release(a)
	}
	return s
}

// SnapshotVersion returns the attributes as presented at rev.
func (t *Table) SnapshotVersion(rev Revision) (Snapshot, error) {
	l, err := t.ValuesVersion(rev)
	if err != nil {
		return Snapshot{}, err
	}
	defer object.Release(l)

	s := Snapshot{Revision: rev}
	for i := 0; i < l.Size(); i++ {
		v, err := l.Get(i)
		if err != nil {
			return Snapshot{}, err
		}
		s.Attributes = append(s.Attributes, v.(*attribute.Attribute).Document())
		object.Release(v)
	}
	return s, nil
}

// Restore replaces the table contents with a canonical snapshot. No
// translation is applied.
func (t *Table) Restore(s Snapshot) error {
	if err := checkRevision(s.Revision); err != nil {
		return err
	}
	attrs := make([]*attribute.Attribute, 0, len(s.Attributes))
	release := func() {
		for _, a := range attrs {
			object.Release(a)
		}
	}
	for _, doc := range s.Attributes {
		a, err := attribute.FromDocument(doc)
		if err != nil {
			release()
			return fmt.Errorf("restore: %w", err)
		}
		attrs = append(attrs, a)
	}
	defer release()

	t.attrs.Clear()
	for _, a := range attrs {
		if err := t.attrs.Put(a.Name(), a); err != nil {
			return fmt.Errorf("restore %s: %w", a.Name(), err)
		}
	}
	t.revision = s.Revision
	return nil
}

// Import adds every document of s as written at s.Revision, translating to
// canonical form. Use it for attribute sets read at an external revision.
func (t *Table) Import(s Snapshot) error {
	for _, doc := range s.Attributes {
		a, err := attribute.FromDocument(doc)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		err = t.AddVersion(a, s.Revision)
		object.Release(a)
		if err != nil {
			return fmt.Errorf("import %s: %w", doc.Name, err)
		}
	}
	return nil
}
