package publishers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents a harvested Bitbucket payload published downstream.
type Event struct {
	ID          string          `json:"id"`
	QueryID     string          `json:"query_id"`
	Endpoint    string          `json:"endpoint"`
	Digest      string          `json:"digest"`
	Payload     json.RawMessage `json:"payload"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given query result. A body that is not
// valid JSON is carried as a JSON string.
func NewEvent(queryID, endpoint, digest string, body []byte) Event {
	payload := json.RawMessage(body)
	if len(body) == 0 || !json.Valid(body) {
		quoted, _ := json.Marshal(string(body))
		payload = quoted
	}
	return Event{
		ID:          uuid.NewString(),
		QueryID:     queryID,
		Endpoint:    endpoint,
		Digest:      digest,
		Payload:     payload,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by queue and topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"query_id": e.QueryID,
		"endpoint": e.Endpoint,
	}
}
