package livesync

import (
	"context"
	"log/slog"
)

// Publisher forwards an invalidation to peer instances.
type Publisher interface {
	Publish(ctx context.Context, topic string) error
}

// Notifier turns write notifications into hub invalidations.
type Notifier struct {
	hub  *Hub
	peer Publisher
}

// NewNotifier creates a notifier. peer may be nil for a single instance.
func NewNotifier(hub *Hub, peer Publisher) *Notifier {
	return &Notifier{hub: hub, peer: peer}
}

// SessionsChanged invalidates the session list.
func (n *Notifier) SessionsChanged(ctx context.Context) {
	n.changed(ctx, TopicSessions)
}

// MarksChanged invalidates one session's marks.
func (n *Notifier) MarksChanged(ctx context.Context, sessionID string) {
	n.changed(ctx, MarksTopic(sessionID))
}

// RosterChanged reloads every open marks view after cadets were added, edited or removed.
func (n *Notifier) RosterChanged(ctx context.Context) {
	n.changed(ctx, TopicAllMarks)
}

func (n *Notifier) changed(ctx context.Context, topic string) {
	n.hub.Invalidate(ctx, topic)
	if n.peer == nil {
		return
	}
	if err := n.peer.Publish(context.WithoutCancel(ctx), topic); err != nil {
		slog.Warn("live_event", "event", "peer_publish_failed", "topic", topic, "error", err)
	}
}
