// Package benchmarks provides memory footprint and throughput benchmarks.
package benchmarks

import (
	"fmt"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/ravecore/internal/attrtable"
	"github.com/comalice/ravecore/internal/hashtable"
	"github.com/comalice/ravecore/internal/object"
)

func BenchmarkMemoryTable(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("attrs=%d", n), func(b *testing.B) {
			numTables := 100
			var before runtime.MemStats
			runtime.ReadMemStats(&before)
			tables := make([]*attrtable.Table, numTables)
			for i := 0; i < numTables; i++ {
				tables[i] = GenTable(n, attrtable.RevisionLatest)
			}
			runtime.GC()
			var after runtime.MemStats
			runtime.ReadMemStats(&after)
			for _, t := range tables {
				object.Release(t)
			}
			bytesPerTable := (after.TotalAlloc - before.TotalAlloc) / uint64(numTables)
			b.ReportMetric(float64(bytesPerTable)/1024, "KB/table")
			b.ReportMetric(float64(bytesPerTable)/float64(n), "B/attr")
		})
	}
}

func BenchmarkHashTablePutGet(b *testing.B) {
	for _, n := range []int{16, 256, 4096} {
		b.Run(fmt.Sprintf("keys=%d", n), func(b *testing.B) {
			tbl := GenTable(n, attrtable.RevisionLatest)
			defer object.Release(tbl)
			values, err := tbl.Values()
			if err != nil {
				b.Fatal(err)
			}
			defer object.Release(values)
			keys := make([]string, n)
			for i := range keys {
				keys[i] = fmt.Sprintf("k%d", i)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				h, err := hashtable.New()
				if err != nil {
					b.Fatal(err)
				}
				for j, k := range keys {
					v, err := values.Get(j % values.Size())
					if err != nil {
						b.Fatal(err)
					}
					if err := h.Put(k, v); err != nil {
						b.Fatal(err)
					}
					object.Release(v)
				}
				for _, k := range keys {
					if v, ok := h.Get(k); ok {
						object.Release(v)
					}
				}
				object.Release(h)
			}
		})
	}
}

func BenchmarkAddVersion(b *testing.B) {
	for _, rev := range []attrtable.Revision{attrtable.Revision2_3, attrtable.Revision2_4} {
		b.Run("rev="+rev.String(), func(b *testing.B) {
			snap := attrtable.Snapshot{Revision: rev, Attributes: GenDocuments(64)}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				t, err := attrtable.New()
				if err != nil {
					b.Fatal(err)
				}
				if err := t.Import(snap); err != nil {
					b.Fatal(err)
				}
				object.Release(t)
			}
		})
	}
}

func BenchmarkGetVersion(b *testing.B) {
	t := GenTable(64, attrtable.RevisionLatest)
	defer object.Release(t)
	names := t.NamesVersion(attrtable.Revision2_4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a, err := t.GetVersion(names[i%len(names)], attrtable.Revision2_4)
		if err != nil {
			b.Fatal(err)
		}
		object.Release(a)
	}
}

func BenchmarkSnapshotYAML(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("attrs=%d", n), func(b *testing.B) {
			data := GenSnapshotYAML(n)
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var s attrtable.Snapshot
				if err := yaml.Unmarshal(data, &s); err != nil {
					b.Fatal(err)
				}
				t, err := attrtable.New()
				if err != nil {
					b.Fatal(err)
				}
				if err := t.Restore(s); err != nil {
					b.Fatal(err)
				}
				object.Release(t)
			}
		})
	}
}
