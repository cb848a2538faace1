package backends

import (
	"context"
	"fmt"
)

// CalendarBackend serves gcal.batch_create with best-effort batch
// semantics: it creates what it can and returns the subset that failed, so
// callers can retry just those.
type CalendarBackend struct{}

func (b *CalendarBackend) Tools() []string {
	return []string{"gcal.batch_create"}
}

func (b *CalendarBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	if method != "batch_create" {
		return nil, unknownMethod("gcal", method)
	}

	events := eventList(payload["events"])

	createdIDs := make([]string, 0, len(events))
	failed := make([]map[string]any, 0)
	for i, event := range events {
		start, _ := event["start"].(string)
		if start == "" {
			bad := make(map[string]any, len(event)+1)
			for k, v := range event {
				bad[k] = v
			}
			bad["error"] = "missing start time"
			failed = append(failed, bad)
			continue
		}
		createdIDs = append(createdIDs, fmt.Sprintf("evt_mock_%03d", i))
	}

	return mockResponse(map[string]any{
		"created":   len(createdIDs),
		"event_ids": createdIDs,
		"failed":    failed,
	}), nil
}

// eventList accepts both []any (JSON-decoded) and []map[string]any
// (in-process callers).
func eventList(v any) []map[string]any {
	if typed, ok := v.([]map[string]any); ok {
		return typed
	}
	raw, _ := v.([]any)
	events := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			events = append(events, m)
		}
	}
	return events
}
