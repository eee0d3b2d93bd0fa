package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the envelope layout emitted by every questboard service.
const SchemaVersion = 1

var ErrMalformedEnvelope = errors.New("malformed event envelope")

// Envelope wraps every event that crosses the outbox. Field names are part
// of the wire format and must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// New builds a current-version envelope keyed by partitionKeyPath and
// carrying data encoded as JSON.
func New(eventID string, eventType string, source string, partitionKeyPath string, partitionKey string, occurredAt time.Time, data any) (Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    source,
		TraceID:          eventID,
		SchemaVersion:    SchemaVersion,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}

func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return fmt.Errorf("%w: missing event_id", ErrMalformedEnvelope)
	case strings.TrimSpace(e.EventType) == "":
		return fmt.Errorf("%w: missing event_type", ErrMalformedEnvelope)
	case e.SchemaVersion != SchemaVersion:
		return fmt.Errorf("%w: unsupported schema_version %d", ErrMalformedEnvelope, e.SchemaVersion)
	}
	return nil
}

// DecodeData unmarshals the payload into target after validating the envelope.
func (e Envelope) DecodeData(target any) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: empty data", ErrMalformedEnvelope)
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return nil
}
