// Package events carries the lifecycle events of the investigation graph
// between services and instances.
package events

import "time"

// Lifecycle event types.
const (
	InvestigationCreated = "INVESTIGATION_CREATED"
	InvestigationCloned  = "INVESTIGATION_CLONED"
	InvestigationSaved   = "INVESTIGATION_SAVED"
	InvestigationRemoved = "INVESTIGATION_REMOVED"
	InvestigationClosed  = "INVESTIGATION_CLOSED"
	PivotSearched        = "PIVOT_SEARCHED"
	GraphUploaded        = "GRAPH_UPLOADED"
)

type Event interface {
	EventType() string
	// Payload always holds the originating "session_id".
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// GraphEvent is the one Event implementation; publishers and subscribers
// exchange it as is.
type GraphEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// NewGraphEvent stamps an event with the session it happened in. data is
// copied.
func NewGraphEvent(eventType, sessionID string, data map[string]interface{}) GraphEvent {
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["session_id"] = sessionID
	return GraphEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}

func (e GraphEvent) EventType() string               { return e.Type }
func (e GraphEvent) Payload() map[string]interface{} { return e.Data }
func (e GraphEvent) Timestamp() time.Time            { return e.OccurredAt }

// SessionID returns the session the event originated from, or "".
func (e GraphEvent) SessionID() string {
	id, _ := e.Data["session_id"].(string)
	return id
}
