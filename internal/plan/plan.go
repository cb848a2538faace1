package plan

import (
	"math"

	"github.com/google/uuid"
)

// Location pins a step to a place. Address and coordinates are optional;
// mock backends only ever need the name.
type Location struct {
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Step is one bookable/searchable unit of a plan (a flight, hotel, dinner, etc.).
type Step struct {
	ID             string         `json:"id"`
	Order          int            `json:"order"`
	Type           StepType       `json:"type"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Date           string         `json:"date"`                 // YYYY-MM-DD
	StartTime      string         `json:"start_time,omitempty"` // HH:MM (24h)
	EndTime        string         `json:"end_time,omitempty"`   // HH:MM (24h)
	Location       *Location      `json:"location,omitempty"`
	Agent          string         `json:"agent"`
	ActionPayload  map[string]any `json:"action_payload,omitempty"`
	EstimatedPrice float64        `json:"estimated_price_usd"` // 0 = free
	Status         StepStatus     `json:"status"`
	Result         map[string]any `json:"result,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// Plan is a complete travel itinerary with ordered steps.
type Plan struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id,omitempty"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Title          string  `json:"title"`
	Destination    string  `json:"destination"`
	StartDate      string  `json:"start_date"` // YYYY-MM-DD
	EndDate        string  `json:"end_date"`   // YYYY-MM-DD
	Status         Status  `json:"status"`
	Steps          []Step  `json:"steps"`
	EstimatedTotal float64 `json:"estimated_total_usd"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// NewStep returns a Step with a fresh id, pending status, and its agent
// derived from the type.
func NewStep(order int, t StepType, title string) Step {
	return Step{
		ID:     uuid.NewString(),
		Order:  order,
		Type:   t,
		Title:  title,
		Agent:  AgentFor(t),
		Status: StepPending,
	}
}

// New returns a draft Plan with a fresh id.
func New(title, destination, startDate, endDate string) *Plan {
	return &Plan{
		ID:          uuid.NewString(),
		Title:       title,
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      StatusDraft,
	}
}

// RecalculateTotal recomputes the cached estimated total from the steps.
// The total is a projection, never an input; callers must invoke this after
// every step mutation.
func (p *Plan) RecalculateTotal() {
	var sum float64
	for i := range p.Steps {
		sum += p.Steps[i].EstimatedPrice
	}
	p.EstimatedTotal = math.Round(sum*100) / 100
}

// AllStepsTerminal reports whether every step has reached a terminal status.
// A plan with no steps is trivially terminal.
func (p *Plan) AllStepsTerminal() bool {
	for i := range p.Steps {
		if !p.Steps[i].Status.Terminal() {
			return false
		}
	}
	return true
}
