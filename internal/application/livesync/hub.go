// Package livesync fans authoritative snapshots out to live subscribers.
//
// Each topic caches its latest encoded snapshot. The first subscriber loads it,
// later subscribers receive the cached copy, and Invalidate reloads once per write
// for everyone. A subscriber mailbox holds one snapshot: a newer one replaces an
// unread older one, so slow readers skip intermediate states and never see stale ones.
package livesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cadetportal/internal/metrics"
)

// Topic names
const (
	TopicSessions    = "sessions"
	marksTopicPrefix = "marks:"
	reloadTimeout    = 5 * time.Second
)

// TopicAllMarks is an invalidation-only name that reloads every open marks topic.
// It cannot be subscribed to.
const TopicAllMarks = marksTopicPrefix + "*"

var (
	ErrUnknownTopic = errors.New("unknown live topic")
	ErrHubClosed    = errors.New("live hub is closed")
	// ErrTopicGone marks a load failure meaning the topic's subject no longer exists.
	// Invalidate ends such a topic and its subscribers see Gone.
	ErrTopicGone = errors.New("live topic is gone")
)

// MarksTopic names the topic carrying one session's marks.
func MarksTopic(sessionID string) string { return marksTopicPrefix + sessionID }

// Sources load snapshot values for each topic family.
type Sources struct {
	Sessions func(ctx context.Context) (any, error)
	Marks    func(ctx context.Context, sessionID string) (any, error)
}

func (s Sources) loader(name string) (func(context.Context) (any, error), bool) {
	switch {
	case name == TopicSessions && s.Sessions != nil:
		return s.Sessions, true
	case strings.HasPrefix(name, marksTopicPrefix) && s.Marks != nil:
		id := strings.TrimPrefix(name, marksTopicPrefix)
		if id == "" || name == TopicAllMarks {
			return nil, false
		}
		return func(ctx context.Context) (any, error) { return s.Marks(ctx, id) }, true
	}
	return nil, false
}

type topic struct {
	name string
	load func(context.Context) (any, error)

	// reload serializes loads and fan-out so deliveries stay ordered.
	reload  sync.Mutex
	last    []byte
	retired bool
	subs    map[*Subscription]struct{}
}

// Hub multiplexes snapshot subscriptions by topic.
type Hub struct {
	sources Sources

	mu     sync.Mutex
	topics map[string]*topic
	closed bool
}

// NewHub creates a hub backed by sources.
func NewHub(sources Sources) *Hub {
	return &Hub{sources: sources, topics: make(map[string]*topic)}
}

// Subscribe registers a subscriber on name and delivers the current snapshot.
// PRE: name is TopicSessions or a MarksTopic
// POST: the returned subscription has the current snapshot pending; Close releases it
func (h *Hub) Subscribe(ctx context.Context, name string) (*Subscription, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	t, ok := h.topics[name]
	if !ok {
		load, known := h.sources.loader(name)
		if !known {
			h.mu.Unlock()
			return nil, ErrUnknownTopic
		}
		t = &topic{name: name, load: load, subs: make(map[*Subscription]struct{})}
		h.topics[name] = t
		metrics.LiveTopics.Inc()
	}
	sub := &Subscription{hub: h, topic: t, ch: make(chan []byte, 1)}
	t.subs[sub] = struct{}{}
	h.mu.Unlock()
	metrics.LiveSubscribers.Inc()

	t.reload.Lock()
	defer t.reload.Unlock()
	if t.retired {
		sub.Close()
		return nil, ErrTopicGone
	}
	if t.last == nil {
		data, err := encode(ctx, t.load)
		if err != nil {
			sub.Close()
			return nil, err
		}
		t.last = data
	}
	sub.offer(t.last)
	return sub, nil
}

// Invalidate reloads name and pushes the snapshot to its subscribers.
// A topic nobody watches is skipped. Identical snapshots are not re-sent.
// TopicAllMarks reloads every open marks topic.
func (h *Hub) Invalidate(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
	defer cancel()

	if name == TopicAllMarks {
		for _, t := range h.openTopics(marksTopicPrefix) {
			h.reload(ctx, t)
		}
		return
	}

	h.mu.Lock()
	t, ok := h.topics[name]
	h.mu.Unlock()
	if ok {
		h.reload(ctx, t)
	}
}

func (h *Hub) openTopics(prefix string) []*topic {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*topic
	for name, t := range h.topics {
		if strings.HasPrefix(name, prefix) {
			out = append(out, t)
		}
	}
	return out
}

func (h *Hub) reload(ctx context.Context, t *topic) {
	t.reload.Lock()
	defer t.reload.Unlock()
	data, err := encode(ctx, t.load)
	if errors.Is(err, ErrTopicGone) {
		t.retired = true
		h.retire(t)
		return
	}
	if err != nil {
		slog.Warn("live_event", "event", "reload_failed", "topic", t.name, "error", err)
		return
	}
	if bytes.Equal(data, t.last) {
		return
	}
	t.last = data

	h.mu.Lock()
	subs := make([]*Subscription, 0, len(t.subs))
	for s := range t.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.offer(data)
	}
}

// Topics returns the number of topics with at least one subscriber.
func (h *Hub) Topics() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var subs []*Subscription
	for _, t := range h.topics {
		for s := range t.subs {
			subs = append(subs, s)
		}
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}

// retire drops t and ends its subscriptions as gone.
// PRE: t.reload is held
func (h *Hub) retire(t *topic) {
	h.mu.Lock()
	if h.topics[t.name] == t {
		delete(h.topics, t.name)
		metrics.LiveTopics.Dec()
	}
	subs := make([]*Subscription, 0, len(t.subs))
	for s := range t.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	slog.Info("live_event", "event", "topic_gone", "topic", t.name, "subscribers", len(subs))
	for _, s := range subs {
		s.end(true)
	}
}

func (h *Hub) release(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := s.topic
	if _, ok := t.subs[s]; !ok {
		return
	}
	delete(t.subs, s)
	metrics.LiveSubscribers.Dec()
	if len(t.subs) == 0 && h.topics[t.name] == t {
		delete(h.topics, t.name)
		metrics.LiveTopics.Dec()
	}
}

func encode(ctx context.Context, load func(context.Context) (any, error)) ([]byte, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Subscription receives JSON snapshots on C until closed.
type Subscription struct {
	hub   *Hub
	topic *topic

	mu     sync.Mutex
	ch     chan []byte
	closed bool
	gone   bool
}

// C delivers snapshots. It is closed when the subscription ends.
func (s *Subscription) C() <-chan []byte { return s.ch }

// Topic returns the subscribed topic name.
func (s *Subscription) Topic() string { return s.topic.name }

// offer replaces any unread snapshot with data.
func (s *Subscription) offer(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- data
}

// Gone reports whether the subscription ended because its subject was deleted.
// It is meaningful once C is closed.
func (s *Subscription) Gone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gone
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() { s.end(false) }

func (s *Subscription) end(gone bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gone = gone
	if gone {
		// An unread snapshot of a deleted subject is stale.
		select {
		case <-s.ch:
		default:
		}
	}
	close(s.ch)
	s.mu.Unlock()
	s.hub.release(s)
}
