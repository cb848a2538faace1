package agent

import "strings"

type IntentType string

const (
	IntentGeneral  IntentType = "general"
	IntentFlight   IntentType = "flight"
	IntentHotel    IntentType = "hotel"
	IntentDining   IntentType = "dining"
	IntentPlanning IntentType = "planning"
	IntentBooking  IntentType = "booking"
	IntentExport   IntentType = "export"
)

// Intent is a coarse label for what the turn was about, derived after the
// fact. Gateways use it for routing and analytics only; it never feeds
// back into the loop.
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
}

// classifyIntent labels the turn from what actually happened (the tools
// called), falling back to keywords in the user's message.
func classifyIntent(message string, traces []ToolTrace) Intent {
	for _, t := range traces {
		switch {
		case t.Tool == "itinerary.execute":
			return Intent{Type: IntentBooking, Confidence: 0.9}
		case strings.HasPrefix(t.Tool, "gcal."):
			return Intent{Type: IntentExport, Confidence: 0.9}
		case strings.HasPrefix(t.Tool, "itinerary."):
			return Intent{Type: IntentPlanning, Confidence: 0.8}
		case strings.HasPrefix(t.Tool, "flight."):
			return Intent{Type: IntentFlight, Confidence: 0.8}
		case strings.HasPrefix(t.Tool, "hotel."):
			return Intent{Type: IntentHotel, Confidence: 0.8}
		case strings.HasPrefix(t.Tool, "dining."):
			return Intent{Type: IntentDining, Confidence: 0.8}
		}
	}

	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "flight", "fly", "plane"):
		return Intent{Type: IntentFlight, Confidence: 0.5}
	case containsAny(lower, "hotel", "stay", "accommodation"):
		return Intent{Type: IntentHotel, Confidence: 0.5}
	case containsAny(lower, "restaurant", "dinner", "lunch", "eat"):
		return Intent{Type: IntentDining, Confidence: 0.5}
	case containsAny(lower, "calendar", "export"):
		return Intent{Type: IntentExport, Confidence: 0.5}
	case containsAny(lower, "trip", "itinerary", "plan"):
		return Intent{Type: IntentPlanning, Confidence: 0.5}
	}
	return Intent{Type: IntentGeneral, Confidence: 0.3}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
