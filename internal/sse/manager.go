package sse

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disanlib/reader-server/internal/id"
)

const (
	eventQueueSize    = 1000
	clientBufferSize  = 100
	replayHistorySize = 256
	heartbeatInterval = 30 * time.Second
)

// Subscription narrows what a client receives. Empty scope fields match
// everything. LastEventID asks for a replay of buffered events after it.
type Subscription struct {
	SessionID      string
	ConversationID string
	LastEventID    uint64
}

func (s Subscription) matches(e Event) bool {
	if e.SessionID != "" && s.SessionID != "" && e.SessionID != s.SessionID {
		return false
	}
	if e.ConversationID != "" && s.ConversationID != "" && e.ConversationID != s.ConversationID {
		return false
	}
	return true
}

// Client is one connected event stream.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	Sub         Subscription
}

// Manager fans events out to connected clients and keeps a short history so
// a reader that reconnects mid-session can catch up on page turns it missed.
type Manager struct {
	logger *slog.Logger
	events chan Event
	seq    atomic.Uint64

	mu      sync.Mutex
	clients map[string]*Client
	history []Event // ring, oldest first once full

	closeMu sync.RWMutex
	closed  bool
	running sync.WaitGroup
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		events:  make(chan Event, eventQueueSize),
		clients: make(map[string]*Client),
		history: make([]Event, 0, replayHistorySize),
	}
}

// Start runs the broadcast loop until ctx is done. Run it in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.running.Add(1)
	defer m.running.Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	m.logger.Info("SSE manager started")
	for {
		select {
		case e, ok := <-m.events:
			if !ok {
				return
			}
			m.broadcast(e)
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is already queued, and
// closes every client.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.events)
	m.closeMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for e := range m.events {
			m.broadcast(e)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out, queued events dropped")
	}

	m.running.Wait()
	m.closeAllClients()
	m.logger.Info("SSE manager stopped")
	return nil
}

// Emit queues an event. It implements store.EventEmitter and never blocks.
func (m *Manager) Emit(event any) {
	e, ok := event.(Event)
	if !ok {
		m.logger.Error("Ignoring non-SSE event", "event", event)
		return
	}

	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return
	}

	e.ID = m.seq.Add(1)
	select {
	case m.events <- e:
	default:
		m.logger.Error("SSE queue full, dropping event", "event_type", e.Type, "event_id", e.ID)
	}
}

func (m *Manager) broadcast(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Type != EventHeartbeat {
		m.remember(e)
	}

	dropped := 0
	for _, c := range m.clients {
		if !c.Sub.matches(e) {
			continue
		}
		if !offer(c, e) {
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Warn("Slow SSE clients missed an event", "event_type", e.Type, "clients", dropped)
	}
}

// offer delivers without blocking; slow clients lose events rather than
// stall every other stream.
func offer(c *Client, e Event) bool {
	select {
	case c.EventChan <- e:
		return true
	default:
		return false
	}
}

func (m *Manager) remember(e Event) {
	if len(m.history) == replayHistorySize {
		copy(m.history, m.history[1:])
		m.history = m.history[:replayHistorySize-1]
	}
	m.history = append(m.history, e)
}

// Connect registers a client. Buffered events newer than sub.LastEventID
// that match the subscription are queued on the client before anything live.
func (m *Manager) Connect(sub Subscription) (*Client, error) {
	clientID, err := id.Generate(id.PrefixClient)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		Sub:         sub,
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	replayed := 0
	if sub.LastEventID > 0 {
		for _, e := range m.history {
			if e.ID > sub.LastEventID && sub.matches(e) && offer(c, e) {
				replayed++
			}
		}
	}
	m.clients[c.ID] = c
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Debug("SSE client connected",
		"client_id", c.ID,
		"session_id", sub.SessionID,
		"conversation_id", sub.ConversationID,
		"replayed", replayed,
		"clients", total)
	return c, nil
}

// Disconnect removes a client and closes its channels. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
		closeClient(c)
	}
	m.mu.Unlock()

	if ok {
		m.logger.Debug("SSE client disconnected", "client_id", clientID, "duration", time.Since(c.ConnectedAt))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, c := range m.clients {
		closeClient(c)
		delete(m.clients, key)
	}
}

func closeClient(c *Client) {
	close(c.Done)
	close(c.EventChan)
}
