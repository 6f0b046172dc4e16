package tasks

import (
	"github.com/charmbracelet/log"
)

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// ChannelNotifier delivers notices on a buffered channel.
type ChannelNotifier struct {
	ch chan Notice
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan Notice, buffer)}
}

// Notify sends n without blocking; it is dropped when the buffer is full.
func (c *ChannelNotifier) Notify(n Notice) {
	sendNotice(c.ch, n)
}

// C returns the receive side.
func (c *ChannelNotifier) C() <-chan Notice {
	return c.ch
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

// Notify logs n at a level matching its severity.
func (l LogNotifier) Notify(n Notice) {
	kv := []any{"kind", n.Kind}
	if n.Err != nil {
		kv = append(kv, "err", n.Err)
	}
	switch n.Level {
	case LevelError:
		l.Logger.Error(n.Message, kv...)
	case LevelWarning:
		l.Logger.Warn(n.Message, kv...)
	default:
		l.Logger.Info(n.Message, kv...)
	}
}

// Notifiers fans a notice out to several notifiers.
type Notifiers []Notifier

// Notify forwards n to every notifier.
func (ns Notifiers) Notify(n Notice) {
	for _, nf := range ns {
		if nf != nil {
			nf.Notify(n)
		}
	}
}

// sendNotice sends a notice through the channel without blocking.
func sendNotice(ch chan<- Notice, n Notice) {
	if ch == nil {
		return
	}
	select {
	case ch <- n:
	default:
	}
}

func notify(nf Notifier, n Notice) {
	if nf != nil {
		nf.Notify(n)
	}
}
