package plan

import (
	"log"
	"strings"
)

// StepType is the closed set of step kinds. Each type maps to exactly one
// agent; an agent maps to zero or more tool names.
type StepType string

const (
	TypeFlight        StepType = "flight"
	TypeHotel         StepType = "hotel"
	TypeRestaurant    StepType = "restaurant"
	TypeActivity      StepType = "activity"
	TypeTransport     StepType = "transport"
	TypeCalendarEvent StepType = "calendar_event"
	TypeRideHail      StepType = "ride_hail"
	TypeFoodDelivery  StepType = "food_delivery"
)

// typeToAgent is total over the closed type set.
var typeToAgent = map[StepType]string{
	TypeFlight:        "flight_agent",
	TypeHotel:         "hotel_agent",
	TypeRestaurant:    "dining_agent",
	TypeActivity:      "places_agent",
	TypeTransport:     "directions_agent",
	TypeCalendarEvent: "gcal_agent",
	TypeRideHail:      "ride_agent",
	TypeFoodDelivery:  "delivery_agent",
}

// AgentTools maps an agent to the tools it may call. Empty lists are
// legitimate: those agents exist in the model but have no backend yet, and
// their steps are skipped at dispatch time.
var AgentTools = map[string][]string{
	"flight_agent":     {"flight.search_offers", "flight.book_order"},
	"hotel_agent":      {"hotel.search", "hotel.book"},
	"dining_agent":     {"dining.search", "dining.reserve"},
	"places_agent":     {"places.search", "places.details"},
	"directions_agent": {"directions.route", "directions.eta"},
	"gcal_agent":       {"gcal.batch_create"},
	"ride_agent":       {},
	"delivery_agent":   {},
}

// AgentFor returns the agent responsible for a step type.
func AgentFor(t StepType) string {
	if a, ok := typeToAgent[t]; ok {
		return a
	}
	return typeToAgent[TypeActivity]
}

// synonyms folds the loose vocabulary an LLM produces into the closed type
// set. Keys are lower-case.
var synonyms = map[string]StepType{
	"flight":         TypeFlight,
	"flights":        TypeFlight,
	"fly":            TypeFlight,
	"hotel":          TypeHotel,
	"lodging":        TypeHotel,
	"accommodation":  TypeHotel,
	"stay":           TypeHotel,
	"restaurant":     TypeRestaurant,
	"dining":         TypeRestaurant,
	"meal":           TypeRestaurant,
	"breakfast":      TypeRestaurant,
	"brunch":         TypeRestaurant,
	"lunch":          TypeRestaurant,
	"dinner":         TypeRestaurant,
	"activity":       TypeActivity,
	"museum":         TypeActivity,
	"tour":           TypeActivity,
	"sightseeing":    TypeActivity,
	"attraction":     TypeActivity,
	"transport":      TypeTransport,
	"transit":        TypeTransport,
	"drive":          TypeTransport,
	"directions":     TypeTransport,
	"calendar_event": TypeCalendarEvent,
	"calendar":       TypeCalendarEvent,
	"event":          TypeCalendarEvent,
	"ride_hail":      TypeRideHail,
	"taxi":           TypeRideHail,
	"uber":           TypeRideHail,
	"rideshare":      TypeRideHail,
	"food_delivery":  TypeFoodDelivery,
	"delivery":       TypeFoodDelivery,
	"takeout":        TypeFoodDelivery,
}

// ParseStepType resolves an arbitrary input string to a StepType. The
// function is total: unrecognized values fall back to activity with a
// logged warning rather than failing, because a misfiled step is more
// useful than a rejected plan.
func ParseStepType(raw string) StepType {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if t, ok := synonyms[key]; ok {
		return t
	}
	log.Printf("Warning: unknown step type %q, defaulting to activity", raw)
	return TypeActivity
}
