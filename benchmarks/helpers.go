// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/attribute"
	"github.com/comalice/ravecore/internal/attrtable"
	"github.com/comalice/ravecore/internal/object"
)

// ruleNames are external names that have a translation rule at 2.4.
var ruleNames = []string{
	"how/antspeed", "how/gasattn", "how/minrange", "how/maxrange",
	"how/nomTXpower", "how/peakpwr", "how/pulsewidth", "how/RXbandwidth",
}

// GenDocuments creates n double attributes. Every fourth one is subject to a
// translation rule; the rest are stored verbatim.
func GenDocuments(n int) []attribute.Document {
	if n < 1 {
		n = 1
	}
	docs := make([]attribute.Document, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("how/extra%d", i)
		if i%4 == 0 && i/4 < len(ruleNames) {
			name = ruleNames[i/4]
		}
		docs = append(docs, attribute.Document{Name: name, Format: attribute.Double, Value: float64(i + 1)})
	}
	return docs
}

// GenTable creates a table holding GenDocuments(n) imported at rev.
// The caller owns the table.
func GenTable(n int, rev attrtable.Revision) *attrtable.Table {
	t, err := attrtable.New(attrtable.WithRevision(rev))
	if err != nil {
		panic(err)
	}
	if err := t.Import(attrtable.Snapshot{Revision: rev, Attributes: GenDocuments(n)}); err != nil {
		object.Release(t)
		panic(err)
	}
	return t
}

// GenSnapshotYAML generates YAML bytes for a table snapshot of n attributes.
func GenSnapshotYAML(n int) []byte {
	t := GenTable(n, attrtable.RevisionLatest)
	defer object.Release(t)
	data, err := yaml.Marshal(t.Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}
