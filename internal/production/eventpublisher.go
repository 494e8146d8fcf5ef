package production

import (
	"context"

	"github.com/comalice/ravecore/internal/attrtable"
)

// SavedTable describes a table written by a persister.
type SavedTable struct {
	ID         string
	Path       string
	Revision   attrtable.Revision
	Attributes int
}

// ChannelPublisher forwards save notifications to a Go channel.
// Publish never blocks; notifications are dropped when the channel is full.
type ChannelPublisher struct {
	ch chan<- SavedTable
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- SavedTable) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, ev SavedTable) error {
	select {
	case p.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
