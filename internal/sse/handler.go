package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const writeTimeout = 60 * time.Second

// Handler serves GET /api/v1/events. The query parameters session_id and
// conversation_id narrow the stream. A Last-Event-ID header (or the
// last_event_id parameter, for clients that cannot set headers) replays
// buffered events the client missed.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

func subscriptionFrom(r *http.Request) Subscription {
	q := r.URL.Query()
	last := r.Header.Get("Last-Event-ID")
	if last == "" {
		last = q.Get("last_event_id")
	}
	lastID, _ := strconv.ParseUint(last, 10, 64)

	return Subscription{
		SessionID:      q.Get("session_id"),
		ConversationID: q.Get("conversation_id"),
		LastEventID:    lastID,
	}
}

// ServeHTTP streams events until the client goes away or the manager closes it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("Streaming unsupported by response writer", "error", err)
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(subscriptionFrom(r))
	if err != nil {
		h.logger.Error("Failed to register SSE client", "error", err)
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With("client_id", client.ID)

	hello := map[string]string{"client_id": client.ID}
	if err := h.write(w, rc, 0, "connected", hello); err != nil {
		log.Debug("Client left before the first frame", "error", err)
		return
	}

	for {
		select {
		case e, ok := <-client.EventChan:
			if !ok {
				return
			}
			if err := h.write(w, rc, e.ID, string(e.Type), e); err != nil {
				log.Debug("Client left mid-stream", "error", err)
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// write sends one frame. An id line is only written for numbered events so
// heartbeats do not move the client's Last-Event-ID.
func (h *Handler) write(w http.ResponseWriter, rc *http.ResponseController, id uint64, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Debug("Write deadline not set", "error", err)
	}

	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return rc.Flush()
}
