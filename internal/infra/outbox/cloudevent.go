package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	appoutbox "iasrentals/internal/app/outbox"
)

const (
	cloudEventsVersion     = "1.0"
	cloudEventsContentType = "application/cloudevents+json"
	typeSuffix             = ".v1"
)

var ErrMalformedEvent = errors.New("outbox: malformed cloud event")

type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	TraceParent     string          `json:"traceparent,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// EncodeCloudEvent wraps a record in a structured-mode CloudEvent. The
// record id becomes the event id so consumers can deduplicate redeliveries.
func EncodeCloudEvent(rec appoutbox.EventRecord, source string) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, ErrMalformedEvent
	}
	evt := cloudEvent{
		SpecVersion:     cloudEventsVersion,
		ID:              rec.ID,
		Type:            rec.Name + typeSuffix,
		Source:          source,
		Subject:         rec.Aggregate,
		Time:            rec.OccurredAt.UTC(),
		DataContentType: "application/json",
		TraceParent:     rec.Headers["traceparent"],
		Data:            rec.Payload,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": cloudEventsContentType}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// DecodeCloudEvent restores the record carried by a CloudEvent.
func DecodeCloudEvent(payload []byte) (appoutbox.EventRecord, error) {
	var evt cloudEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return appoutbox.EventRecord{}, err
	}
	if evt.ID == "" || evt.Type == "" || len(evt.Data) == 0 {
		return appoutbox.EventRecord{}, ErrMalformedEvent
	}
	rec := appoutbox.EventRecord{
		ID:         evt.ID,
		Name:       strings.TrimSuffix(evt.Type, typeSuffix),
		Payload:    []byte(evt.Data),
		OccurredAt: evt.Time,
		Aggregate:  evt.Subject,
		Headers:    map[string]string{},
	}
	if evt.TraceParent != "" {
		rec.Headers["traceparent"] = evt.TraceParent
	}
	return rec, nil
}

// TopicFor maps an event name such as "visit.scheduled" to
// "<prefix>visit.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events" + typeSuffix
}

// Topics lists the distinct topics for the given event names.
func Topics(prefix string, names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		topic := TopicFor(prefix, n)
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}
