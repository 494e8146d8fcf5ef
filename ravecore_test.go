package ravecore_test

import (
	"errors"
	"testing"

	"github.com/comalice/ravecore"
)

func TestFacade_TableLifecycle(t *testing.T) {
	tbl, err := ravecore.NewTable(ravecore.WithRevision(ravecore.Revision2_3))
	if err != nil {
		t.Fatal(err)
	}
	defer ravecore.Release(tbl)

	a, err := ravecore.NewDouble("how/antspeed", 18)
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Add(a); err != nil {
		t.Fatal(err)
	}
	ravecore.Release(a)

	rpm, err := tbl.GetDouble("how/rpm")
	if err != nil || rpm != 3 {
		t.Errorf("how/rpm = %v, %v; want 3", rpm, err)
	}

	cp, err := ravecore.Clone(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if ravecore.RefCount(cp) != 1 {
		t.Errorf("clone refcount = %d, want 1", ravecore.RefCount(cp))
	}
	ravecore.Release(cp)

	if _, err := tbl.Get("how/missing"); !errors.Is(err, ravecore.ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestFacade_Containers(t *testing.T) {
	h, err := ravecore.NewHashTable(ravecore.WithClonePolicy(ravecore.CloneStrict))
	if err != nil {
		t.Fatal(err)
	}
	defer ravecore.Release(h)
	l, err := ravecore.NewList()
	if err != nil {
		t.Fatal(err)
	}
	defer ravecore.Release(l)

	s, err := ravecore.NewString("what/source", "WMO:02954")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Put(s.Name(), s); err != nil {
		t.Fatal(err)
	}
	if err := l.Add(s); err != nil {
		t.Fatal(err)
	}
	if got := ravecore.RefCount(s); got != 3 {
		t.Errorf("refcount = %d, want 3", got)
	}
	ravecore.Release(s)
}

func TestFacade_ParseRevision(t *testing.T) {
	r, err := ravecore.ParseRevision("ODIM_H5/V2_2")
	if err != nil || r != ravecore.RevisionMinTable {
		t.Errorf("ParseRevision = %s, %v", r, err)
	}
	if _, err := ravecore.NewTable(ravecore.WithRevision(ravecore.Revision2_1)); !errors.Is(err, ravecore.ErrUnsupportedRevision) {
		t.Errorf("NewTable(2.1) = %v, want ErrUnsupportedRevision", err)
	}
}
