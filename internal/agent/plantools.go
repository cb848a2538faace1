package agent

import (
	"context"
	"fmt"

	"github.com/tripsmith/tripsmith/internal/plan"
)

// handlePlanTool runs the itinerary.* tools in-process. Domain errors
// (unknown plan, bad state) come back as structured results so the model
// can react; the error return is reserved for storage failures.
func (o *Orchestrator) handlePlanTool(ctx context.Context, userID, conversationID, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "itinerary.generate":
		return o.generatePlan(userID, conversationID, args)
	case "itinerary.update_step":
		return o.updatePlanStep(userID, args)
	case "itinerary.add_step":
		return o.addPlanStep(userID, args)
	case "itinerary.remove_step":
		return o.removePlanStep(userID, args)
	case "itinerary.execute":
		return o.executePlan(ctx, userID, args)
	}
	return toolError(fmt.Sprintf("Unknown itinerary tool %q", name)), nil
}

func (o *Orchestrator) generatePlan(userID, conversationID string, args map[string]any) (map[string]any, error) {
	p := plan.New(strArg(args, "title"), strArg(args, "destination"), strArg(args, "start_date"), strArg(args, "end_date"))
	p.UserID = userID
	p.ConversationID = conversationID

	rawSteps, _ := args["steps"].([]any)
	for i, raw := range rawSteps {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p.Steps = append(p.Steps, stepFromArgs(i+1, m, p.StartDate))
	}
	p.RecalculateTotal()

	if err := o.Store.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	if o.Logger != nil {
		o.Logger.LogPlan(p.ID, string(p.Status), p.EstimatedTotal, len(p.Steps))
	}

	return map[string]any{
		"status":              "created",
		"itinerary_id":        p.ID,
		"title":               p.Title,
		"destination":         p.Destination,
		"estimated_total_usd": p.EstimatedTotal,
		"step_count":          len(p.Steps),
		"steps":               stepSummaries(p.Steps),
	}, nil
}

func (o *Orchestrator) updatePlanStep(userID string, args map[string]any) (map[string]any, error) {
	planID := strArg(args, "itinerary_id")
	stepID := strArg(args, "step_id")
	updates, _ := args["updates"].(map[string]any)
	if len(updates) == 0 {
		return toolError("No updates given"), nil
	}

	ok, err := o.Store.UpdateStep(userID, planID, stepID, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return toolError("Step not found"), nil
	}

	p, err := o.Store.Get(userID, planID)
	if err != nil || p == nil {
		return map[string]any{"status": "updated", "itinerary_id": planID, "step_id": stepID}, nil
	}
	return map[string]any{
		"status":              "updated",
		"itinerary_id":        planID,
		"step_id":             stepID,
		"estimated_total_usd": p.EstimatedTotal,
	}, nil
}

func (o *Orchestrator) addPlanStep(userID string, args map[string]any) (map[string]any, error) {
	planID := strArg(args, "itinerary_id")
	m, _ := args["step"].(map[string]any)
	if m == nil {
		return toolError("No step given"), nil
	}

	p, err := o.Store.Get(userID, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return toolError("Itinerary not found"), nil
	}

	st := stepFromArgs(len(p.Steps)+1, m, p.StartDate)
	if _, err := o.Store.AddStep(userID, planID, &st); err != nil {
		return nil, err
	}
	if o.Logger != nil {
		o.Logger.LogStep(planID, st.ID, st.Title, string(st.Status))
	}

	p, err = o.Store.Get(userID, planID)
	if err != nil || p == nil {
		return map[string]any{"status": "added", "itinerary_id": planID, "step_id": st.ID}, nil
	}
	return map[string]any{
		"status":              "added",
		"itinerary_id":        planID,
		"step_id":             st.ID,
		"step_count":          len(p.Steps),
		"estimated_total_usd": p.EstimatedTotal,
	}, nil
}

func (o *Orchestrator) removePlanStep(userID string, args map[string]any) (map[string]any, error) {
	planID := strArg(args, "itinerary_id")
	stepID := strArg(args, "step_id")

	ok, err := o.Store.RemoveStep(userID, planID, stepID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return toolError("Step not found"), nil
	}

	p, err := o.Store.Get(userID, planID)
	if err != nil || p == nil {
		return map[string]any{"status": "removed", "itinerary_id": planID, "step_id": stepID}, nil
	}
	return map[string]any{
		"status":              "removed",
		"itinerary_id":        planID,
		"step_id":             stepID,
		"step_count":          len(p.Steps),
		"estimated_total_usd": p.EstimatedTotal,
	}, nil
}

// executePlan dispatches every step of a plan to its agent. Concurrent
// execute calls on the same plan are serialized, and a plan already past
// draft/confirmed refuses to run again.
func (o *Orchestrator) executePlan(ctx context.Context, userID string, args map[string]any) (map[string]any, error) {
	planID := strArg(args, "itinerary_id")
	unlock := o.planLocks.Lock(planID)
	defer unlock()

	p, err := o.Store.Get(userID, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return toolError("Itinerary not found"), nil
	}
	if !p.Status.CanTransition(plan.StatusExecuting) {
		return toolError(fmt.Sprintf("Itinerary is %s and cannot be executed", p.Status)), nil
	}

	if err := o.Store.SetStatus(planID, plan.StatusExecuting); err != nil {
		return nil, err
	}

	p.Steps = o.Dispatcher.DispatchAll(ctx, p.Steps)
	for i := range p.Steps {
		st := &p.Steps[i]
		if err := o.Store.SetStepResult(planID, st.ID, st.Status, st.Result); err != nil {
			return nil, err
		}
		if o.Logger != nil {
			o.Logger.LogStep(planID, st.ID, st.Title, string(st.Status))
		}
	}

	status := plan.StatusExecuting
	result := map[string]any{
		"itinerary_id": planID,
		"steps":        executionSummaries(p.Steps),
	}

	if p.AllStepsTerminal() {
		status = plan.StatusCompleted
		if err := o.Store.SetStatus(planID, status); err != nil {
			return nil, err
		}
		if o.AutoExport && o.Exporter != nil {
			res, err := o.Exporter.ExportCompleted(ctx, userID, p)
			if err != nil {
				result["export_error"] = err.Error()
			} else {
				result["export"] = res
			}
			if o.Logger != nil {
				o.Logger.LogExport(planID, res.Created, res.Failed)
			}
		}
	}
	result["status"] = string(status)
	if o.Logger != nil {
		o.Logger.LogPlan(planID, string(status), p.EstimatedTotal, len(p.Steps))
	}
	return result, nil
}

// stepFromArgs builds a step from the model's arguments. A step with no
// date inherits defaultDate (the trip's start date) so downstream
// timestamp templates stay well-formed.
func stepFromArgs(order int, m map[string]any, defaultDate string) plan.Step {
	st := plan.NewStep(order, plan.ParseStepType(strArg(m, "type")), strArg(m, "title"))
	st.Description = strArg(m, "description")
	st.Date = strArg(m, "date")
	if st.Date == "" {
		st.Date = defaultDate
	}
	st.StartTime = strArg(m, "start_time")
	st.EndTime = strArg(m, "end_time")
	st.Notes = strArg(m, "notes")
	st.EstimatedPrice = floatArg(m, "estimated_price_usd")
	if loc, ok := m["location"].(map[string]any); ok {
		st.Location = &plan.Location{
			Name:    strArg(loc, "name"),
			Address: strArg(loc, "address"),
		}
	}
	if payload, ok := m["action_payload"].(map[string]any); ok {
		st.ActionPayload = payload
	}
	return st
}

func stepSummaries(steps []plan.Step) []map[string]any {
	out := make([]map[string]any, 0, len(steps))
	for i := range steps {
		st := &steps[i]
		out = append(out, map[string]any{
			"step_id":             st.ID,
			"order":               st.Order,
			"type":                string(st.Type),
			"title":               st.Title,
			"estimated_price_usd": st.EstimatedPrice,
		})
	}
	return out
}

func executionSummaries(steps []plan.Step) []map[string]any {
	out := make([]map[string]any, 0, len(steps))
	for i := range steps {
		st := &steps[i]
		out = append(out, map[string]any{
			"step_id": st.ID,
			"title":   st.Title,
			"type":    string(st.Type),
			"status":  string(st.Status),
		})
	}
	return out
}

func toolError(msg string) map[string]any {
	return map[string]any{"status": "error", "message": msg}
}

func strArg(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func floatArg(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
