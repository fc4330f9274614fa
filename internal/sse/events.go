// Package sse streams reader, preference, library, and chat events to clients
// over Server-Sent Events.
package sse

import "time"

// EventType represents the type of SSE Event.
type EventType string

// Event types.
const (
	EventHeartbeat EventType = "heartbeat"

	EventPageTurned     EventType = "reader.page_turned"
	EventChapterChanged EventType = "reader.chapter_changed"
	EventRepaginated    EventType = "reader.repaginated"
	EventSessionClosed  EventType = "reader.session_closed"

	EventPreferencesUpdated EventType = "preferences.updated"

	EventLibraryReloaded EventType = "library.reloaded"

	EventChatMessage EventType = "chat.message"
)

// Event is a single server-sent event. SessionID and ConversationID scope it;
// empty means every client receives it. ID is assigned by Manager.Emit and is
// zero for heartbeats.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	ID             uint64    `json:"id,omitempty"`
	Data           any       `json:"data"`
	Type           EventType `json:"type"`
	SessionID      string    `json:"session_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
}

// PositionData is the payload of page and chapter events.
type PositionData struct {
	BookID          string `json:"book_id"`
	Direction       string `json:"direction"`
	ChapterIndex    int    `json:"chapter_index"`
	PageIndex       int    `json:"page_index"`
	GlobalPage      int    `json:"global_page"`
	TotalPages      int    `json:"total_pages"`
	ProgressPercent int    `json:"progress_percent"`
}

// RepaginatedData is the payload of reader.repaginated.
type RepaginatedData struct {
	BookID     string `json:"book_id"`
	FontSize   int    `json:"font_size"`
	TotalPages int    `json:"total_pages"`
}

// PreferencesData is the payload of preferences.updated.
type PreferencesData struct {
	Theme    string `json:"theme"`
	FontSize int    `json:"font_size"`
}

// LibraryReloadedData is the payload of library.reloaded.
type LibraryReloadedData struct {
	BookCount int      `json:"book_count"`
	Errors    []string `json:"errors,omitempty"`
}

// ChatMessageData is the payload of chat.message.
type ChatMessageData struct {
	MessageID string `json:"message_id"`
	Role      string `json:"role"`
	Source    string `json:"source"`
	Text      string `json:"text"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, nil)
}

// NewPageTurnedEvent reports a page turn in a reading session.
func NewPageTurnedEvent(sessionID string, data PositionData) Event {
	e := newEvent(EventPageTurned, data)
	e.SessionID = sessionID
	return e
}

// NewChapterChangedEvent reports that a session moved to another chapter.
func NewChapterChangedEvent(sessionID string, data PositionData) Event {
	e := newEvent(EventChapterChanged, data)
	e.SessionID = sessionID
	return e
}

// NewRepaginatedEvent reports that a session re-flowed for a new font size.
func NewRepaginatedEvent(sessionID string, data RepaginatedData) Event {
	e := newEvent(EventRepaginated, data)
	e.SessionID = sessionID
	return e
}

// NewSessionClosedEvent reports that a session ended.
func NewSessionClosedEvent(sessionID, bookID string) Event {
	e := newEvent(EventSessionClosed, map[string]string{"book_id": bookID})
	e.SessionID = sessionID
	return e
}

// NewPreferencesUpdatedEvent is broadcast to every client.
func NewPreferencesUpdatedEvent(data PreferencesData) Event {
	return newEvent(EventPreferencesUpdated, data)
}

// NewLibraryReloadedEvent is broadcast to every client.
func NewLibraryReloadedEvent(data LibraryReloadedData) Event {
	return newEvent(EventLibraryReloaded, data)
}

// NewChatMessageEvent reports a stored chat message.
func NewChatMessageEvent(conversationID string, data ChatMessageData) Event {
	e := newEvent(EventChatMessage, data)
	e.ConversationID = conversationID
	return e
}
