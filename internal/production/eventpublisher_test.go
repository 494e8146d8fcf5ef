package production

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/ravecore/internal/attrtable"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan SavedTable, 10)
	p := NewChannelPublisher(ch)

	ev := SavedTable{ID: "scan-1", Revision: attrtable.Revision2_4, Attributes: 3}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got != ev {
			t.Errorf("got %+v, want %+v", got, ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("no notification delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan SavedTable, 1)
	p := NewChannelPublisher(ch)
	ch <- SavedTable{ID: "first"}

	if err := p.Publish(context.Background(), SavedTable{ID: "dropped"}); err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if got := <-ch; got.ID != "first" {
		t.Errorf("buffered notification = %q, want first", got.ID)
	}
}

func TestChannelPublisher_Close(t *testing.T) {
	ch := make(chan SavedTable, 1)
	p := NewChannelPublisher(ch)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after Close")
	}
}

func TestPersister_PublishesSaves(t *testing.T) {
	ch := make(chan SavedTable, 4)
	p, err := NewYAMLPersister(t.TempDir(), WithPublisher(NewChannelPublisher(ch)))
	if err != nil {
		t.Fatal(err)
	}
	tbl := sampleTable(t)
	if err := p.Save(context.Background(), "scan-2", tbl); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-ch:
		if got.ID != "scan-2" || got.Attributes != tbl.Size() || got.Revision != attrtable.Revision2_3 {
			t.Errorf("unexpected notification %+v", got)
		}
	default:
		t.Fatal("save was not published")
	}
}
