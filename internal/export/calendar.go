// Package export fans a plan's steps out to calendar events through the
// gcal tool, retrying only the events the backend reports as failed.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tripsmith/tripsmith/internal/plan"
)

// ErrNotConnected means the calendar backend reported the user has no
// connected calendar. There is nothing to retry in that case.
var ErrNotConnected = errors.New("calendar not connected")

// DefaultRetryLimit is the number of additional batch attempts after the
// first call.
const DefaultRetryLimit = 2

// Emoji prefixes by step type for nicer calendar event titles.
var stepEmoji = map[plan.StepType]string{
	plan.TypeFlight:        "✈️",
	plan.TypeHotel:         "🏨",
	plan.TypeRestaurant:    "🍽️",
	plan.TypeActivity:      "🎯",
	plan.TypeTransport:     "🚗",
	plan.TypeCalendarEvent: "📅",
	plan.TypeRideHail:      "🚕",
	plan.TypeFoodDelivery:  "🍔",
}

// ToolCaller is the slice of the tool router the exporter needs.
type ToolCaller interface {
	Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error)
}

// Result summarizes one export run.
type Result struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

type Exporter struct {
	Router     ToolCaller
	RetryLimit int
}

func New(router ToolCaller, retryLimit int) *Exporter {
	if retryLimit < 0 {
		retryLimit = DefaultRetryLimit
	}
	return &Exporter{Router: router, RetryLimit: retryLimit}
}

// ExportCompleted creates one calendar event per step of the plan. The
// whole batch goes out in one gcal.batch_create call; events the backend
// reports as failed are retried, and only that subset, up to RetryLimit
// more attempts. A backend-level "not connected" error short-circuits with no
// retries.
func (e *Exporter) ExportCompleted(ctx context.Context, userID string, p *plan.Plan) (Result, error) {
	if len(p.Steps) == 0 {
		return Result{}, nil
	}

	events := make([]map[string]any, 0, len(p.Steps))
	for i := range p.Steps {
		events = append(events, stepToEvent(&p.Steps[i]))
	}
	log.Printf("Exporting %d plan steps to calendar for user %s", len(events), userID)

	created := 0
	failed := events

	for attempt := 0; attempt <= e.RetryLimit && len(failed) > 0; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying %d failed calendar events (attempt %d/%d)",
				len(failed), attempt, e.RetryLimit)
		}
		result, err := e.Router.Call(ctx, "gcal.batch_create", map[string]any{
			"user_id": userID,
			"events":  failed,
		})
		if err != nil {
			return Result{Created: created, Failed: len(failed)},
				fmt.Errorf("calendar export for plan %s: %w", p.ID, err)
		}
		if msg, ok := result["error"].(string); ok && msg != "" {
			// Backend-level refusal (user has not connected a calendar):
			// retrying the same batch cannot help.
			log.Printf("Calendar export skipped: %s", msg)
			return Result{Created: created, Failed: len(failed)},
				fmt.Errorf("%w: %s", ErrNotConnected, msg)
		}

		created += intFrom(result["created"])
		failed = failedEvents(result["failed"])
	}

	if len(failed) > 0 {
		log.Printf("%d events failed to export after %d retries", len(failed), e.RetryLimit)
	}
	log.Printf("Calendar export complete: %d created, %d failed for plan %q", created, len(failed), p.Title)
	return Result{Created: created, Failed: len(failed)}, nil
}

// stepToEvent converts one step into a calendar event payload.
func stepToEvent(step *plan.Step) map[string]any {
	emoji, ok := stepEmoji[step.Type]
	if !ok {
		emoji = "•"
	}

	var descParts []string
	if step.Description != "" {
		descParts = append(descParts, step.Description)
	}
	descParts = append(descParts, fmt.Sprintf("Type: %s", step.Type))
	if step.EstimatedPrice > 0 {
		descParts = append(descParts, fmt.Sprintf("Est. price: $%.0f", step.EstimatedPrice))
	}
	if step.Agent != "" {
		descParts = append(descParts, fmt.Sprintf("Agent: %s", step.Agent))
	}
	if step.Notes != "" {
		descParts = append(descParts, fmt.Sprintf("Notes: %s", step.Notes))
	}

	startTime := step.StartTime
	if startTime == "" {
		startTime = "09:00"
	}
	endTime := step.EndTime
	if endTime == "" {
		endTime = "10:00"
	}

	location := ""
	if step.Location != nil {
		location = step.Location.Address
		if location == "" {
			location = step.Location.Name
		}
	}

	return map[string]any{
		"summary":     fmt.Sprintf("%s %s", emoji, step.Title),
		"description": strings.Join(descParts, "\n"),
		"start":       fmt.Sprintf("%sT%s:00", step.Date, startTime),
		"end":         fmt.Sprintf("%sT%s:00", step.Date, endTime),
		"location":    location,
	}
}

func intFrom(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func failedEvents(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		// Fakes and in-process backends may hand the slice back untyped.
		if typed, ok := v.([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
