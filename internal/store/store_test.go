package store

import (
	"path/filepath"
	"testing"

	"github.com/tripsmith/tripsmith/internal/plan"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan(userID string) *plan.Plan {
	p := plan.New("Weekend in New York", "New York", "2026-09-12", "2026-09-13")
	p.UserID = userID

	dinner := plan.NewStep(1, plan.TypeRestaurant, "Dinner at Le Bernardin")
	dinner.Date = "2026-09-12"
	dinner.StartTime = "19:00"
	dinner.EstimatedPrice = 40
	dinner.Location = &plan.Location{Name: "Le Bernardin"}

	museum := plan.NewStep(2, plan.TypeActivity, "Visit the Met")
	museum.Date = "2026-09-13"
	museum.EstimatedPrice = 20

	p.Steps = append(p.Steps, dinner, museum)
	return p
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("u1", p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an existing plan")
	}
	if got.Title != p.Title || got.Destination != p.Destination {
		t.Errorf("got %q in %q", got.Title, got.Destination)
	}
	if got.Status != plan.StatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(got.Steps))
	}
	if got.Steps[0].Title != "Dinner at Le Bernardin" || got.Steps[1].Title != "Visit the Met" {
		t.Errorf("steps out of order: %q, %q", got.Steps[0].Title, got.Steps[1].Title)
	}
	if got.Steps[0].Location == nil || got.Steps[0].Location.Name != "Le Bernardin" {
		t.Errorf("location did not round-trip: %+v", got.Steps[0].Location)
	}
	if got.EstimatedTotal != 60 {
		t.Errorf("estimated total = %v, want 60", got.EstimatedTotal)
	}
}

func TestGetMissingAndWrongUser(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("u1", "no-such-plan")
	if err != nil || got != nil {
		t.Errorf("missing plan: got %v, %v; want nil, nil", got, err)
	}
	got, err = s.Get("someone-else", p.ID)
	if err != nil || got != nil {
		t.Errorf("wrong user: got %v, %v; want nil, nil", got, err)
	}
}

func TestUpdateStepRefreshesTotal(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := s.UpdateStep("u1", p.ID, p.Steps[0].ID, map[string]any{
		"estimated_price_usd": 55.5,
		"start_time":          "20:00",
	})
	if err != nil {
		t.Fatalf("UpdateStep: %v", err)
	}
	if !ok {
		t.Fatal("UpdateStep reported no match")
	}

	got, _ := s.Get("u1", p.ID)
	if got.Steps[0].StartTime != "20:00" {
		t.Errorf("start_time = %q", got.Steps[0].StartTime)
	}
	if got.EstimatedTotal != 75.5 {
		t.Errorf("estimated total = %v, want 75.5", got.EstimatedTotal)
	}

	ok, err = s.UpdateStep("u1", p.ID, "missing-step", map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("UpdateStep missing: %v", err)
	}
	if ok {
		t.Error("UpdateStep matched a step that does not exist")
	}
}

func TestUpdateStepTypeReassignsAgent(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := s.UpdateStep("u1", p.ID, p.Steps[1].ID, map[string]any{"type": "hotel"}); err != nil {
		t.Fatalf("UpdateStep: %v", err)
	}
	got, _ := s.Get("u1", p.ID)
	if got.Steps[1].Type != plan.TypeHotel {
		t.Errorf("type = %s, want hotel", got.Steps[1].Type)
	}
	if got.Steps[1].Agent != "hotel_agent" {
		t.Errorf("agent = %s, want hotel_agent", got.Steps[1].Agent)
	}
}

func TestAddAndRemoveStep(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	extra := plan.NewStep(3, plan.TypeTransport, "Taxi back")
	extra.EstimatedPrice = 30
	ok, err := s.AddStep("u1", p.ID, &extra)
	if err != nil || !ok {
		t.Fatalf("AddStep: ok=%v err=%v", ok, err)
	}

	got, _ := s.Get("u1", p.ID)
	if len(got.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(got.Steps))
	}
	if got.EstimatedTotal != 90 {
		t.Errorf("estimated total = %v, want 90", got.EstimatedTotal)
	}

	ok, err = s.RemoveStep("u1", p.ID, extra.ID)
	if err != nil || !ok {
		t.Fatalf("RemoveStep: ok=%v err=%v", ok, err)
	}
	got, _ = s.Get("u1", p.ID)
	if len(got.Steps) != 2 || got.EstimatedTotal != 60 {
		t.Errorf("after remove: %d steps, total %v", len(got.Steps), got.EstimatedTotal)
	}

	ok, _ = s.RemoveStep("u1", p.ID, "missing")
	if ok {
		t.Error("RemoveStep matched a step that does not exist")
	}
}

func TestStepOrderTieBreakIsStable(t *testing.T) {
	s := newTestStore(t)
	p := plan.New("Same-order plan", "Boston", "2026-11-01", "2026-11-01")
	p.UserID = "u1"
	first := plan.NewStep(1, plan.TypeActivity, "First inserted")
	second := plan.NewStep(1, plan.TypeActivity, "Second inserted")
	p.Steps = append(p.Steps, first, second)
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := s.Get("u1", p.ID)
	if got.Steps[0].Title != "First inserted" || got.Steps[1].Title != "Second inserted" {
		t.Errorf("tie-break not by insertion: %q, %q", got.Steps[0].Title, got.Steps[1].Title)
	}
}

func TestListByUser(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(samplePlan("u1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(samplePlan("u1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(samplePlan("u2")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	plans, err := s.ListByUser("u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(plans) != 2 {
		t.Errorf("got %d plans for u1, want 2", len(plans))
	}
}

func TestSetStatusAndStepResult(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan("u1")
	if err := s.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetStatus(p.ID, plan.StatusExecuting); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetStepResult(p.ID, p.Steps[0].ID, plan.StepFound, map[string]any{"tool": "dining.search"}); err != nil {
		t.Fatalf("SetStepResult: %v", err)
	}

	got, _ := s.Get("u1", p.ID)
	if got.Status != plan.StatusExecuting {
		t.Errorf("status = %s, want executing", got.Status)
	}
	if got.Steps[0].Status != plan.StepFound {
		t.Errorf("step status = %s, want found", got.Steps[0].Status)
	}
	if got.Steps[0].Result["tool"] != "dining.search" {
		t.Errorf("step result = %v", got.Steps[0].Result)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)

	has, err := s.HasMessages("c1")
	if err != nil {
		t.Fatalf("HasMessages: %v", err)
	}
	if has {
		t.Error("fresh conversation reports messages")
	}

	msgs := []struct{ role, content string }{
		{"human", "plan me a weekend"},
		{"ai", "[Called: itinerary.generate]"},
		{"human", "Tool results:\nitinerary.generate -> {...}"},
		{"ai", "Done, here is your plan."},
	}
	for _, m := range msgs {
		if err := s.AddMessage("c1", m.role, m.content); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	history, err := s.GetHistory("c1", 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("got %d messages, want 4", len(history))
	}

	// Chronological order, alternating roles.
	if history[0].Role != "human" || history[3].Role != "ai" {
		t.Errorf("roles out of order: %s ... %s", history[0].Role, history[3].Role)
	}

	// The limit keeps the most recent messages.
	limited, err := s.GetHistory("c1", 2)
	if err != nil {
		t.Fatalf("GetHistory limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d messages, want 2", len(limited))
	}
	if limited[1].Role != "ai" {
		t.Errorf("last limited message role = %s, want ai", limited[1].Role)
	}
}
