package session

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Parse decodes a session payload. Two shapes are accepted: a session object
// ({"session_id": ..., "task": ..., "events": [...]}) or a bare JSON array
// of events. Anything else is corrupt input and fails fast; per-event
// missing fields are tolerated and defaulted downstream.
func Parse(payload []byte) (*Session, error) {
	trimmed := firstNonSpace(payload)
	switch trimmed {
	case '[':
		var events []InteractionEvent
		if err := json.Unmarshal(payload, &events); err != nil {
			return nil, fmt.Errorf("session: decode event array: %w", err)
		}
		return &Session{Events: events}, nil
	case '{':
		var s Session
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("session: decode session object: %w", err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("session: payload is not a JSON object or array")
	}
}

// SortEvents stable-sorts events by ascending timestamp in place. All
// downstream components assume this order; nothing re-sorts mid-pipeline.
func SortEvents(events []InteractionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}
