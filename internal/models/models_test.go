package models

import "testing"

func TestIsValidPillar(t *testing.T) {
	for _, p := range AllPillars {
		if !IsValidPillar(p) {
			t.Errorf("canonical pillar %q rejected", p)
		}
	}
	for _, p := range []Pillar{"", "hydration", "Optimal_Nutrition"} {
		if IsValidPillar(p) {
			t.Errorf("invalid pillar %q accepted", p)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	order := []NudgePriority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() <= order[i].Rank() {
			t.Errorf("%s should outrank %s", order[i-1], order[i])
		}
	}
	if NudgePriority("whenever").Rank() >= PriorityLow.Rank() {
		t.Error("unknown priority should rank below low")
	}
}

func TestSpecialistFor(t *testing.T) {
	team := CoachTeam{
		PrimaryCoach: "coach-primary",
		Specialists: map[Pillar]string{
			PillarRestorativeSleep: "coach-sleep",
			PillarConnectedness:    "",
		},
	}
	if got := team.SpecialistFor(PillarRestorativeSleep); got != "coach-sleep" {
		t.Errorf("expected specialist, got %q", got)
	}
	if got := team.SpecialistFor(PillarOptimalNutrition); got != "coach-primary" {
		t.Errorf("expected primary fallback for unassigned pillar, got %q", got)
	}
	if got := team.SpecialistFor(PillarConnectedness); got != "coach-primary" {
		t.Errorf("expected primary fallback for empty assignment, got %q", got)
	}
}

func TestActivePhase(t *testing.T) {
	plan := CarePlan{Phases: []CarePlanPhase{{Name: "A"}, {Name: "B"}}}

	if got := plan.ActivePhase(); got == nil || got.Name != "A" {
		t.Errorf("expected phase A, got %+v", got)
	}
	plan.CurrentPhase = 1
	if got := plan.ActivePhase(); got == nil || got.Name != "B" {
		t.Errorf("expected phase B, got %+v", got)
	}

	// Out-of-range indexes clamp instead of panicking.
	plan.CurrentPhase = 99
	if got := plan.ActivePhase(); got == nil || got.Name != "B" {
		t.Errorf("expected clamp to last phase, got %+v", got)
	}
	plan.CurrentPhase = -1
	if got := plan.ActivePhase(); got == nil || got.Name != "A" {
		t.Errorf("expected clamp to first phase, got %+v", got)
	}

	empty := CarePlan{}
	if empty.ActivePhase() != nil {
		t.Error("expected nil for a plan without phases")
	}
}

func TestCreatePlanRequestValidate(t *testing.T) {
	req := CreatePlanRequest{User: User{ID: "user-1"}}
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req.User.ID = ""
	if err := req.Validate(); err != ErrEmptyUserID {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}

	req.User.ID = "user-1"
	req.SelectedPillars = []Pillar{PillarRestorativeSleep, "hydration"}
	if err := req.Validate(); err != ErrInvalidPillar {
		t.Errorf("expected ErrInvalidPillar, got %v", err)
	}
}

func TestProgressUpdateRequestValidate(t *testing.T) {
	cases := []struct {
		goalID   string
		progress int
		want     error
	}{
		{"g1", 0, nil},
		{"g1", 100, nil},
		{"", 50, ErrEmptyGoalID},
		{"g1", -1, ErrProgressOutOfRange},
		{"g1", 101, ErrProgressOutOfRange},
	}
	for _, tc := range cases {
		req := ProgressUpdateRequest{GoalID: tc.goalID, Progress: tc.progress}
		if err := req.Validate(); err != tc.want {
			t.Errorf("Validate(%q, %d) = %v, want %v", tc.goalID, tc.progress, err, tc.want)
		}
	}
}

func TestLogActivityRequestValidate(t *testing.T) {
	req := LogActivityRequest{Activity: ActivityLog{UserID: "user-1", Type: "mood"}}
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	req.Activity.UserID = ""
	if err := req.Validate(); err != ErrEmptyUserID {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}
