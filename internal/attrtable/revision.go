package attrtable

import (
	"fmt"
	"strings"
)

// Revision is a version of the ODIM interchange specification. Revisions are
// totally ordered and compared numerically.
type Revision int

const (
	RevisionUndefined Revision = iota - 1
	Revision2_0
	Revision2_1
	Revision2_2
	Revision2_3
	Revision2_4

	// RevisionLatest is the revision attributes are stored in.
	RevisionLatest = Revision2_4

	// RevisionMinTable is the oldest revision a table can be queried at by default.
	RevisionMinTable = Revision2_2

	// RevisionUnitChange is the first revision using SI units for the
	// gated rules: metres, seconds, hertz, dBm and dB/m.
	RevisionUnitChange = Revision2_4
)

var revisionNames = map[Revision]string{
	RevisionUndefined: "undefined",
	Revision2_0:       "2.0",
	Revision2_1:       "2.1",
	Revision2_2:       "2.2",
	Revision2_3:       "2.3",
	Revision2_4:       "2.4",
}

func (r Revision) String() string {
	if s, ok := revisionNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Revision(%d)", int(r))
}

// Valid reports whether r is a defined revision.
func (r Revision) Valid() bool {
	return r >= Revision2_0 && r <= RevisionLatest
}

// ParseRevision accepts "2.4", "V2_4", "H5rad 2.4" and "ODIM_H5/V2_4" forms.
func ParseRevision(s string) (Revision, error) {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "undefined") || v == "" {
		return RevisionUndefined, nil
	}
	switch {
	case strings.HasPrefix(v, "ODIM_H5/"):
		v = strings.TrimPrefix(v, "ODIM_H5/")
	case strings.HasPrefix(v, "H5rad "):
		v = strings.TrimPrefix(v, "H5rad ")
	}
	v = strings.TrimPrefix(strings.TrimPrefix(v, "V"), "v")
	v = strings.ReplaceAll(v, "_", ".")
	for r, name := range revisionNames {
		if r != RevisionUndefined && name == v {
			return r, nil
		}
	}
	return RevisionUndefined, fmt.Errorf("unknown revision %q", s)
}

func (r Revision) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Revision) UnmarshalText(b []byte) error {
	v, err := ParseRevision(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
