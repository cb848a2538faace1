// Package dispatch maps plan steps to tool calls and runs them through the
// tool router, one step at a time.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tripsmith/tripsmith/internal/plan"
)

// ErrUnsupportedStepType means a step type has tools registered but no
// payload template. That is a programmer error, not a runtime condition:
// adding a type to the agent map requires adding its template here.
var ErrUnsupportedStepType = errors.New("no tool mapping for step type")

// ToolCaller is the slice of the tool router the dispatcher needs.
type ToolCaller interface {
	Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error)
}

type Dispatcher struct {
	Router ToolCaller
}

func New(router ToolCaller) *Dispatcher {
	return &Dispatcher{Router: router}
}

// DispatchStep executes one step by calling the appropriate tool.
//
// Steps whose agent has no registered tools are skipped with an
// explanatory result, without touching the router. Otherwise the step goes
// searching, the tool is called once, and the step ends found (with the
// tool, data, and latency in its result) or failed (with the error).
func (d *Dispatcher) DispatchStep(ctx context.Context, step plan.Step) plan.Step {
	agent := step.Agent
	if agent == "" {
		agent = plan.AgentFor(step.Type)
	}
	tools := plan.AgentTools[agent]

	if len(tools) == 0 {
		log.Printf("No tools registered for agent %s (step: %s)", agent, step.Title)
		step.Status = plan.StepSkipped
		step.Result = map[string]any{
			"message": fmt.Sprintf("Agent %q has no tools configured yet.", agent),
		}
		return step
	}

	step.Status = plan.StepSearching
	log.Printf("Dispatching step %q -> agent=%s", step.Title, agent)

	toolName, payload, err := buildToolCall(step)
	if err != nil {
		step.Status = plan.StepFailed
		step.Result = map[string]any{"error": err.Error()}
		return step
	}

	start := time.Now()
	result, err := d.Router.Call(ctx, toolName, payload)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		step.Status = plan.StepFailed
		step.Result = map[string]any{"error": err.Error()}
		log.Printf("Step %q failed: %v", step.Title, err)
		return step
	}

	step.Status = plan.StepFound
	step.Result = map[string]any{
		"tool":       toolName,
		"data":       result,
		"latency_ms": latency,
	}
	log.Printf("Step %q completed: tool=%s, latency=%dms", step.Title, toolName, latency)
	return step
}

// DispatchAll executes steps strictly in order, one at a time. Sequential
// because a later step's search parameters may depend on an earlier step's
// outcome (a dining search anchored to the hotel's resolved location).
// Steps already booked or skipped pass through unchanged; one step's
// failure never aborts the rest.
func (d *Dispatcher) DispatchAll(ctx context.Context, steps []plan.Step) []plan.Step {
	results := make([]plan.Step, 0, len(steps))
	for _, step := range steps {
		if step.Status == plan.StepBooked || step.Status == plan.StepSkipped {
			results = append(results, step)
			continue
		}
		results = append(results, d.DispatchStep(ctx, step))
	}
	return results
}

// searchTools maps each step type to its primary search tool.
var searchTools = map[plan.StepType]string{
	plan.TypeFlight:        "flight.search_offers",
	plan.TypeHotel:         "hotel.search",
	plan.TypeRestaurant:    "dining.search",
	plan.TypeActivity:      "places.search",
	plan.TypeTransport:     "directions.route",
	plan.TypeCalendarEvent: "gcal.batch_create",
}

// buildToolCall derives the tool name and payload for a step. An explicit
// action payload takes precedence; otherwise a default payload is
// synthesized from the step's fields using a fixed per-type template.
func buildToolCall(step plan.Step) (string, map[string]any, error) {
	toolName, ok := searchTools[step.Type]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedStepType, step.Type)
	}

	if len(step.ActionPayload) > 0 {
		return toolName, step.ActionPayload, nil
	}

	locationName := ""
	if step.Location != nil {
		locationName = step.Location.Name
	}

	switch step.Type {
	case plan.TypeFlight:
		return toolName, map[string]any{
			"origin":         "",
			"destination":    locationName,
			"departure_date": step.Date,
			"passengers":     1,
		}, nil

	case plan.TypeHotel:
		return toolName, map[string]any{
			"location":  locationName,
			"check_in":  step.Date,
			"check_out": step.Date,
			"guests":    1,
		}, nil

	case plan.TypeRestaurant:
		startTime := step.StartTime
		if startTime == "" {
			startTime = "19:00"
		}
		return toolName, map[string]any{
			"location":   locationName,
			"cuisine":    "",
			"party_size": 1,
			"date_time":  fmt.Sprintf("%sT%s", step.Date, startTime),
		}, nil

	case plan.TypeActivity:
		return toolName, map[string]any{
			"query":    step.Title,
			"location": locationName,
		}, nil

	case plan.TypeTransport:
		return toolName, map[string]any{
			"origin":      "",
			"destination": locationName,
			"mode":        "driving",
		}, nil

	case plan.TypeCalendarEvent:
		startTime := step.StartTime
		if startTime == "" {
			startTime = "09:00"
		}
		endTime := step.EndTime
		if endTime == "" {
			endTime = "10:00"
		}
		address := ""
		if step.Location != nil {
			address = step.Location.Address
		}
		return toolName, map[string]any{
			"events": []map[string]any{{
				"summary":     step.Title,
				"description": step.Description,
				"start":       fmt.Sprintf("%sT%s:00", step.Date, startTime),
				"end":         fmt.Sprintf("%sT%s:00", step.Date, endTime),
				"location":    address,
			}},
		}, nil
	}

	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedStepType, step.Type)
}
