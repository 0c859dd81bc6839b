package careplan

import (
	"reflect"
	"testing"
	"time"

	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/util"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func testUser() models.User {
	return models.User{ID: "user-1", Name: "Jordan", CommunicationStyle: models.StyleEncouraging, Timezone: "UTC"}
}

func testTeam() models.CoachTeam {
	return models.CoachTeam{
		PrimaryCoach: "coach-primary",
		Specialists: map[models.Pillar]string{
			models.PillarOptimalNutrition: "coach-nutrition",
			models.PillarPhysicalActivity: "coach-activity",
		},
	}
}

func newTestGenerator() *Generator {
	return NewGenerator(catalog.Default(), util.SequentialIDSource("id"))
}

func TestCreateCarePlan_AllPillars(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	if len(plan.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(plan.Phases))
	}
	for i, phase := range plan.Phases {
		if len(phase.Goals) != 6 {
			t.Errorf("phase %d: expected 6 goals, got %d", i, len(phase.Goals))
		}
		if len(phase.Milestones) != 1 {
			t.Errorf("phase %d: expected 1 milestone, got %d", i, len(phase.Milestones))
		}
		if len(phase.Requirements) != 6 {
			t.Errorf("phase %d: expected 6 activity requirements, got %d", i, len(phase.Requirements))
		}
	}
	if plan.CurrentPhase != 0 {
		t.Errorf("expected currentPhase 0, got %d", plan.CurrentPhase)
	}
	if len(plan.Pillars) != 6 {
		t.Errorf("expected all 6 pillars in scope, got %d", len(plan.Pillars))
	}
}

func TestCreateCarePlan_PhaseDurations(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	wantWeeks := []int{2, 4, 8, 12}
	wantNames := []string{"Assessment", "Initiation", "Optimization", "Maintenance"}
	for i, phase := range plan.Phases {
		if phase.DurationWeeks != wantWeeks[i] {
			t.Errorf("phase %d: expected %d weeks, got %d", i, wantWeeks[i], phase.DurationWeeks)
		}
		if phase.Name != wantNames[i] {
			t.Errorf("phase %d: expected name %q, got %q", i, wantNames[i], phase.Name)
		}
	}

	// Milestone target dates accumulate: 2, 6, 14, 26 weeks out.
	cumulative := []int{2, 6, 14, 26}
	for i, phase := range plan.Phases {
		want := testNow.Add(time.Duration(cumulative[i]) * 7 * 24 * time.Hour)
		if !phase.Milestones[0].TargetDate.Equal(want) {
			t.Errorf("phase %d: expected milestone target %v, got %v", i, want, phase.Milestones[0].TargetDate)
		}
	}
}

func TestCreateCarePlan_SelectedPillars(t *testing.T) {
	selected := []models.Pillar{models.PillarRestorativeSleep, models.PillarStressManagement}
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), selected, testNow)

	if !reflect.DeepEqual(plan.Pillars, selected) {
		t.Errorf("expected pillars %v, got %v", selected, plan.Pillars)
	}
	for i, phase := range plan.Phases {
		if len(phase.Goals) != 2 {
			t.Errorf("phase %d: expected 2 goals, got %d", i, len(phase.Goals))
		}
	}
}

func TestCreateCarePlan_InvalidPillarsDropped(t *testing.T) {
	selected := []models.Pillar{models.PillarRestorativeSleep, "hydration", models.PillarRestorativeSleep}
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), selected, testNow)

	want := []models.Pillar{models.PillarRestorativeSleep}
	if !reflect.DeepEqual(plan.Pillars, want) {
		t.Errorf("expected pillars %v, got %v", want, plan.Pillars)
	}
}

func TestCreateCarePlan_StandardTriggers(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	if len(plan.EscalationTriggers) != 3 {
		t.Fatalf("expected 3 standard triggers, got %d", len(plan.EscalationTriggers))
	}
	byType := make(map[models.TriggerType]models.EscalationTrigger)
	for _, trig := range plan.EscalationTriggers {
		if !trig.IsActive {
			t.Errorf("trigger %s: expected isActive=true", trig.Type)
		}
		if len(trig.TargetCaregivers) != 0 {
			t.Errorf("trigger %s: expected empty targetCaregivers", trig.Type)
		}
		byType[trig.Type] = trig
	}

	if trig := byType[models.TriggerNoEngagement]; trig.Conditions.Severity != models.SeverityMedium || trig.Conditions.TimeWindow != "72 hours" {
		t.Errorf("no_engagement trigger misconfigured: %+v", trig.Conditions)
	}
	if trig := byType[models.TriggerMissedGoals]; trig.Conditions.Severity != models.SeverityHigh || trig.Conditions.Threshold != 3 {
		t.Errorf("missed_goals trigger misconfigured: %+v", trig.Conditions)
	}
	if trig := byType[models.TriggerHealthDecline]; trig.Conditions.Severity != models.SeverityCritical || trig.Conditions.Threshold != 2 {
		t.Errorf("health_decline trigger misconfigured: %+v", trig.Conditions)
	}
}

func TestCreateCarePlan_ToneMapping(t *testing.T) {
	cases := []struct {
		style models.CommunicationStyle
		want  models.NudgeTone
	}{
		{models.StyleGentle, models.ToneGentle},
		{models.StyleEncouraging, models.ToneMotivational},
		{models.StyleDirect, models.ToneDirect},
		{models.StyleSupportive, models.ToneScientific},
		{"shouty", models.ToneMotivational}, // unknown style defaults
	}
	for _, tc := range cases {
		user := testUser()
		user.CommunicationStyle = tc.style
		plan := newTestGenerator().CreateCarePlan(user, testTeam(), nil, testNow)
		got := plan.Phases[0].Goals[0].NudgeTone
		if got != tc.want {
			t.Errorf("style %q: expected tone %q, got %q", tc.style, tc.want, got)
		}
	}
}

func TestCreateCarePlan_CoachAssignment(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	for _, goal := range plan.Phases[0].Goals {
		want := "coach-primary"
		switch goal.Category {
		case models.PillarOptimalNutrition:
			want = "coach-nutrition"
		case models.PillarPhysicalActivity:
			want = "coach-activity"
		}
		if goal.AssignedCoach != want {
			t.Errorf("goal %s: expected coach %q, got %q", goal.Category, want, goal.AssignedCoach)
		}
	}
}

func TestCreateCarePlan_RequirementFrequencies(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	for _, req := range plan.Phases[0].Requirements {
		if req.Frequency != "weekly" {
			t.Errorf("assessment requirement for %s: expected weekly, got %q", req.Pillar, req.Frequency)
		}
	}
	for i := 1; i < len(plan.Phases); i++ {
		for _, req := range plan.Phases[i].Requirements {
			if req.Frequency != "daily" {
				t.Errorf("phase %d requirement for %s: expected daily, got %q", i, req.Pillar, req.Frequency)
			}
		}
	}
}

func TestCreateCarePlan_ReviewAndTimestamps(t *testing.T) {
	plan := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)

	if !plan.CreatedAt.Equal(testNow) || !plan.UpdatedAt.Equal(testNow) {
		t.Errorf("expected creation timestamps at %v, got created=%v updated=%v", testNow, plan.CreatedAt, plan.UpdatedAt)
	}
	wantReview := testNow.Add(30 * 24 * time.Hour)
	if !plan.NextReview.Equal(wantReview) {
		t.Errorf("expected nextReview %v, got %v", wantReview, plan.NextReview)
	}
}

func TestCreateCarePlan_Deterministic(t *testing.T) {
	a := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)
	b := newTestGenerator().CreateCarePlan(testUser(), testTeam(), nil, testNow)
	if !reflect.DeepEqual(a, b) {
		t.Error("two generations with identical inputs differ")
	}
}
