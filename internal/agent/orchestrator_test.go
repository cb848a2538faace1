package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/tripsmith/tripsmith/internal/backends"
	"github.com/tripsmith/tripsmith/internal/plan"
	"github.com/tripsmith/tripsmith/internal/store"
	"github.com/tripsmith/tripsmith/internal/toolrouter"
	"github.com/tripsmith/tripsmith/pkg/config"
)

// scriptedModel replays a fixed sequence of choices and records whether
// each round offered tools.
type scriptedModel struct {
	script       []*llms.ContentChoice
	calls        int
	toolsOffered []bool
	err          error
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.toolsOffered = append(m.toolsOffered, len(opts.Tools) > 0)

	if m.err != nil {
		return nil, m.err
	}
	choice := m.script[len(m.script)-1]
	if m.calls < len(m.script) {
		choice = m.script[m.calls]
	}
	m.calls++
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func textChoice(text string) *llms.ContentChoice {
	return &llms.ContentChoice{Content: text}
}

func toolChoice(id, name, args string) *llms.ContentChoice {
	return &llms.ContentChoice{
		ToolCalls: []llms.ToolCall{{
			ID:           id,
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func newTestOrchestrator(t *testing.T, model llms.Model) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	router := toolrouter.New(config.ModeMock, backends.MockRegistry(), nil, nil)
	return New(model, router, st, NewPromptManager(""), nil), st
}

func TestChatPlainAnswer(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("Where would you like to go?")}}
	o, st := newTestOrchestrator(t, model)

	reply, err := o.Chat(context.Background(), "u1", "", "I want to plan a trip")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Text != "Where would you like to go?" {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if reply.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}
	if reply.Intent.Type != IntentPlanning {
		t.Errorf("intent = %s, want planning", reply.Intent.Type)
	}

	history, err := st.GetHistory(reply.ConversationID, 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history has %d messages, want 2", len(history))
	}
}

func TestChatRoundBudget(t *testing.T) {
	// The model never answers in text; every round asks for another search.
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("call_1", "places.search", `{"query":"museum","location":"NYC"}`),
	}}
	o, _ := newTestOrchestrator(t, model)

	reply, err := o.Chat(context.Background(), "u1", "conv-budget", "plan everything")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Text != budgetReply {
		t.Errorf("reply = %q, want the budget fallback", reply.Text)
	}
	if model.calls != DefaultMaxRounds {
		t.Errorf("model called %d times, want %d", model.calls, DefaultMaxRounds)
	}
	// The last two rounds must run without tools.
	want := []bool{true, true, true, false, false}
	for i, offered := range model.toolsOffered {
		if offered != want[i] {
			t.Errorf("round %d tools offered = %v, want %v", i+1, offered, want[i])
		}
	}
	if len(reply.Traces) != DefaultMaxRounds {
		t.Errorf("got %d traces, want %d", len(reply.Traces), DefaultMaxRounds)
	}
}

func TestChatGenerateItinerary(t *testing.T) {
	genArgs := `{
		"title": "Weekend in New York",
		"destination": "New York",
		"start_date": "2026-09-12",
		"end_date": "2026-09-13",
		"steps": [
			{"type": "dinner", "title": "Dinner at Le Bernardin", "date": "2026-09-12", "start_time": "19:00", "estimated_price_usd": 40,
			 "location": {"name": "Le Bernardin"}},
			{"type": "activity", "title": "Visit the Met", "date": "2026-09-13", "estimated_price_usd": 20}
		]
	}`
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("call_1", "itinerary.generate", genArgs),
		textChoice("Your weekend is planned: dinner and the Met, about $60 total."),
	}}
	o, st := newTestOrchestrator(t, model)

	reply, err := o.Chat(context.Background(), "u1", "conv-gen", "dinner friday, museum saturday")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(reply.Text, "planned") {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if len(reply.Traces) != 1 || reply.Traces[0].Tool != "itinerary.generate" || !reply.Traces[0].OK {
		t.Fatalf("unexpected traces %+v", reply.Traces)
	}

	plans, err := st.ListByUser("u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(plans))
	}
	p, err := st.Get("u1", plans[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Status != plan.StatusDraft {
		t.Errorf("status = %s, want draft", p.Status)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(p.Steps))
	}
	if p.Steps[0].Type != plan.TypeRestaurant {
		t.Errorf("step 1 type = %s, want restaurant", p.Steps[0].Type)
	}
	if p.Steps[1].Type != plan.TypeActivity {
		t.Errorf("step 2 type = %s, want activity", p.Steps[1].Type)
	}
	if p.EstimatedTotal != 60 {
		t.Errorf("estimated total = %v, want 60", p.EstimatedTotal)
	}
}

func TestGenerateDefaultsStepDateToTripStart(t *testing.T) {
	genArgs := `{
		"title": "Quick Trip",
		"destination": "Boston",
		"start_date": "2026-10-01",
		"end_date": "2026-10-02",
		"steps": [
			{"type": "activity", "title": "Freedom Trail"},
			{"type": "activity", "title": "Aquarium", "date": "2026-10-02"}
		]
	}`
	model := &scriptedModel{script: []*llms.ContentChoice{
		toolChoice("call_1", "itinerary.generate", genArgs),
		textChoice("Trip planned."),
	}}
	o, st := newTestOrchestrator(t, model)

	if _, err := o.Chat(context.Background(), "u1", "conv-date", "plan boston"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	plans, err := st.ListByUser("u1")
	if err != nil || len(plans) != 1 {
		t.Fatalf("plans = %v, err = %v", plans, err)
	}
	p, err := st.Get("u1", plans[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Steps[0].Date != "2026-10-01" {
		t.Errorf("dateless step date = %q, want the trip start date", p.Steps[0].Date)
	}
	if p.Steps[1].Date != "2026-10-02" {
		t.Errorf("dated step date = %q, want its own date kept", p.Steps[1].Date)
	}
}

func TestChatModelErrorGivesPoliteReply(t *testing.T) {
	model := &scriptedModel{err: context.DeadlineExceeded}
	o, _ := newTestOrchestrator(t, model)

	reply, err := o.Chat(context.Background(), "u1", "conv-err", "hello")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply.Text != errorReply {
		t.Errorf("reply = %q, want the polite error reply", reply.Text)
	}
}

func TestContextInjectionOnce(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("Sure.")}}
	o, st := newTestOrchestrator(t, model)

	p := plan.New("Tokyo Trip", "Tokyo", "2026-10-01", "2026-10-07")
	p.UserID = "u1"
	st0 := plan.NewStep(1, plan.TypeHotel, "Stay in Shinjuku")
	st0.EstimatedPrice = 300
	p.Steps = append(p.Steps, st0)
	if err := st.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reply, err := o.Chat(context.Background(), "u1", "conv-inject", "move my hotel")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	history, err := st.GetHistory(reply.ConversationID, 20)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	// injected pair + user turn + reply
	if len(history) != 4 {
		t.Fatalf("history has %d messages, want 4", len(history))
	}
	first := history[0]
	text, _ := first.Parts[0].(llms.TextContent)
	if !strings.Contains(text.Text, "Tokyo Trip") {
		t.Errorf("first message does not carry the open itinerary: %q", text.Text)
	}

	if _, err := o.Chat(context.Background(), "u1", "conv-inject", "thanks"); err != nil {
		t.Fatalf("second Chat: %v", err)
	}
	history, _ = st.GetHistory("conv-inject", 20)
	if len(history) != 6 {
		t.Errorf("history has %d messages after second turn, want 6 (no re-injection)", len(history))
	}
}

func TestExecutePlanDispatchesSteps(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("ok")}}
	o, st := newTestOrchestrator(t, model)

	p := plan.New("NYC Food Tour", "New York", "2026-09-12", "2026-09-12")
	p.UserID = "u1"
	dinner := plan.NewStep(1, plan.TypeRestaurant, "Dinner at Peter Luger")
	dinner.Date = "2026-09-12"
	dinner.Location = &plan.Location{Name: "Peter Luger"}
	walk := plan.NewStep(2, plan.TypeActivity, "High Line walk")
	walk.Location = &plan.Location{Name: "High Line"}
	p.Steps = append(p.Steps, dinner, walk)
	if err := st.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := o.handlePlanTool(context.Background(), "u1", "conv-exec", "itinerary.execute",
		map[string]any{"itinerary_id": p.ID})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// Both steps end found, which is terminal, so the plan completes.
	if result["status"] != "completed" {
		t.Errorf("status = %v, want completed", result["status"])
	}

	got, err := st.Get("u1", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != plan.StatusCompleted {
		t.Errorf("plan status = %s, want completed", got.Status)
	}
	for _, s := range got.Steps {
		if s.Status != plan.StepFound {
			t.Errorf("step %q status = %s, want found", s.Title, s.Status)
		}
		if s.Result == nil {
			t.Errorf("step %q has no result", s.Title)
		}
	}

	// A completed plan refuses a second run.
	result, err = o.handlePlanTool(context.Background(), "u1", "conv-exec", "itinerary.execute",
		map[string]any{"itinerary_id": p.ID})
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if result["status"] != "error" {
		t.Errorf("second execute status = %v, want error", result["status"])
	}
}

func TestExecutePlanWithToollessAgentCompletes(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("ok")}}
	o, st := newTestOrchestrator(t, model)

	p := plan.New("Quick hop", "New York", "2026-09-12", "2026-09-12")
	p.UserID = "u1"
	cab := plan.NewStep(1, plan.TypeRideHail, "Cab to JFK")
	p.Steps = append(p.Steps, cab)
	if err := st.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := o.handlePlanTool(context.Background(), "u1", "conv-skip", "itinerary.execute",
		map[string]any{"itinerary_id": p.ID})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result["status"] != "completed" {
		t.Errorf("status = %v, want completed", result["status"])
	}

	got, _ := st.Get("u1", p.ID)
	if got.Status != plan.StatusCompleted {
		t.Errorf("plan status = %s, want completed", got.Status)
	}
	if got.Steps[0].Status != plan.StepSkipped {
		t.Errorf("step status = %s, want skipped", got.Steps[0].Status)
	}
	if got.Steps[0].Result == nil {
		t.Error("skipped step should carry an explanatory result")
	}
}

func TestUpdateStepRecalculatesTotal(t *testing.T) {
	model := &scriptedModel{script: []*llms.ContentChoice{textChoice("ok")}}
	o, st := newTestOrchestrator(t, model)

	p := plan.New("Budget Trip", "Boston", "2026-11-01", "2026-11-02")
	p.UserID = "u1"
	s1 := plan.NewStep(1, plan.TypeHotel, "Cheap hotel")
	s1.EstimatedPrice = 100
	p.Steps = append(p.Steps, s1)
	if err := st.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := o.handlePlanTool(context.Background(), "u1", "c", "itinerary.update_step",
		map[string]any{
			"itinerary_id": p.ID,
			"step_id":      p.Steps[0].ID,
			"updates":      map[string]any{"estimated_price_usd": 150.0},
		})
	if err != nil {
		t.Fatalf("update_step: %v", err)
	}
	if result["status"] != "updated" {
		t.Fatalf("status = %v, want updated", result["status"])
	}
	if result["estimated_total_usd"] != 150.0 {
		t.Errorf("total = %v, want 150", result["estimated_total_usd"])
	}

	result, err = o.handlePlanTool(context.Background(), "u1", "c", "itinerary.update_step",
		map[string]any{
			"itinerary_id": p.ID,
			"step_id":      "missing",
			"updates":      map[string]any{"title": "x"},
		})
	if err != nil {
		t.Fatalf("update_step missing: %v", err)
	}
	if result["status"] != "error" {
		t.Errorf("status = %v, want error for unknown step", result["status"])
	}
}
