package plan

import "testing"

func TestParseStepType(t *testing.T) {
	cases := map[string]StepType{
		"dinner":         TypeRestaurant,
		"LUNCH":          TypeRestaurant,
		"museum":         TypeActivity,
		"flight":         TypeFlight,
		"ride-hail":      TypeRideHail,
		"Calendar Event": TypeCalendarEvent,
		"pony ride":      TypeActivity, // unknown falls back
		"":               TypeActivity,
	}
	for in, want := range cases {
		if got := ParseStepType(in); got != want {
			t.Errorf("ParseStepType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestAgentForIsTotal(t *testing.T) {
	types := []StepType{
		TypeFlight, TypeHotel, TypeRestaurant, TypeActivity,
		TypeTransport, TypeCalendarEvent, TypeRideHail, TypeFoodDelivery,
	}
	for _, st := range types {
		if AgentFor(st) == "" {
			t.Errorf("no agent for type %s", st)
		}
	}
}

func TestRecalculateTotal(t *testing.T) {
	p := New("Trip", "Pittsburgh", "2026-02-08", "2026-02-10")
	s1 := NewStep(1, TypeRestaurant, "Dinner")
	s1.EstimatedPrice = 40
	s2 := NewStep(2, TypeActivity, "Museum")
	s2.EstimatedPrice = 20.005
	p.Steps = []Step{s1, s2}

	p.RecalculateTotal()
	if p.EstimatedTotal != 60.01 {
		t.Errorf("EstimatedTotal = %v, want 60.01", p.EstimatedTotal)
	}

	p.Steps = p.Steps[:1]
	p.RecalculateTotal()
	if p.EstimatedTotal != 40 {
		t.Errorf("EstimatedTotal after removal = %v, want 40", p.EstimatedTotal)
	}
}

func TestStepStatusMachine(t *testing.T) {
	if !StepPending.CanTransition(StepSearching) {
		t.Error("pending -> searching should be allowed")
	}
	if !StepPending.CanTransition(StepSkipped) {
		t.Error("pending -> skipped should be allowed")
	}
	if !StepSearching.CanTransition(StepFailed) {
		t.Error("searching -> failed should be allowed")
	}
	if !StepFound.CanTransition(StepBooked) {
		t.Error("found -> booked should be allowed")
	}
	for _, terminal := range []StepStatus{StepBooked, StepFailed, StepSkipped} {
		for _, to := range []StepStatus{StepPending, StepSearching, StepFound} {
			if terminal.CanTransition(to) {
				t.Errorf("%s -> %s should be rejected", terminal, to)
			}
		}
	}
}

func TestPlanStatusMachine(t *testing.T) {
	if !StatusDraft.CanTransition(StatusExecuting) {
		t.Error("draft -> executing should be allowed")
	}
	if !StatusExecuting.CanTransition(StatusCompleted) {
		t.Error("executing -> completed should be allowed")
	}
	if !StatusConfirmed.CanTransition(StatusCancelled) {
		t.Error("confirmed -> cancelled should be allowed")
	}
	if StatusCompleted.CanTransition(StatusCancelled) {
		t.Error("completed is terminal")
	}
	if StatusDraft.CanTransition(StatusCompleted) {
		t.Error("draft -> completed should be rejected")
	}
}

func TestAllStepsTerminal(t *testing.T) {
	p := New("t", "d", "", "")
	if !p.AllStepsTerminal() {
		t.Error("empty plan should be trivially terminal")
	}
	s := NewStep(1, TypeHotel, "Stay")
	p.Steps = append(p.Steps, s)
	if p.AllStepsTerminal() {
		t.Error("pending step should not count as terminal")
	}
	p.Steps[0].Status = StepSkipped
	if !p.AllStepsTerminal() {
		t.Error("skipped step is terminal")
	}
}
