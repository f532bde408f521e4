package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cadetportal/internal/adapters/http/middleware"
	"cadetportal/internal/application/livesync"
)

// handleLiveSessions handles GET /api/live/sessions
func (s *Server) handleLiveSessions(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	s.stream(w, r, sess, livesync.TopicSessions)
}

// handleLiveMarks handles GET /api/live/sessions/{id}/marks
func (s *Server) handleLiveMarks(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	s.stream(w, r, sess, livesync.MarksTopic(r.PathValue("id")))
}

// stream relays topic snapshots as server-sent events until the client leaves
// or the hub closes. Each snapshot is one "snapshot" event; idle periods carry
// a comment heartbeat. A deleted subject ends the stream with a "deleted" event.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, sess middleware.Session, topic string) {
	sub, err := s.opts.Hub.Subscribe(r.Context(), topic)
	if errors.Is(err, livesync.ErrHubClosed) {
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	slog.Debug("live_event", "event", "stream_opened", "topic", topic, "account_id", sess.AccountID)
	defer slog.Debug("live_event", "event", "stream_closed", "topic", topic, "account_id", sess.AccountID)

	heartbeat := time.NewTicker(s.opts.Heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-sub.C():
			if !ok {
				if sub.Gone() {
					_, _ = fmt.Fprintf(w, "event: deleted\ndata: {\"topic\":%q}\n\n", topic)
					_ = rc.Flush()
				}
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
