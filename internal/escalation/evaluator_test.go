package escalation

import (
	"strings"
	"testing"
	"time"

	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/util"
)

var evalNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(catalog.Default(), util.SequentialIDSource("alert"))
}

func evalUser() models.User {
	return models.User{ID: "user-1", Name: "Jordan", Timezone: "UTC"}
}

func caregiver(id string, rel models.Relationship, level models.EscalationLevel) models.Caregiver {
	return models.Caregiver{
		ID:              id,
		Name:            "CG " + id,
		Relationship:    rel,
		EscalationLevel: level,
		IsActive:        true,
		Permissions:     models.CaregiverPermissions{ReceiveAlerts: true},
	}
}

// planWith wraps triggers in a minimal plan.
func planWith(triggers ...models.EscalationTrigger) models.CarePlan {
	return models.CarePlan{
		ID:                 "plan-1",
		UserID:             "user-1",
		Phases:             []models.CarePlanPhase{{Name: "Initiation"}},
		EscalationTriggers: triggers,
	}
}

func noEngagementTrigger(severity models.Severity) models.EscalationTrigger {
	return models.EscalationTrigger{
		ID:   "trig-ne",
		Type: models.TriggerNoEngagement,
		Conditions: models.TriggerConditions{
			TimeWindow: "72 hours",
			Severity:   severity,
		},
		EscalationMessage: "{userName} hasn't logged anything in 3 days.",
		IsActive:          true,
	}
}

func TestEvaluate_SilentUserNotifiesSecondaryTier(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityMedium))
	roster := []models.Caregiver{
		caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary),
		caregiver("cg-doc", models.RelationshipPhysician, models.LevelPrimary),
	}

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, roster, evalNow)

	if len(result.TriggeredEscalations) != 1 {
		t.Fatalf("expected 1 triggered escalation, got %d", len(result.TriggeredEscalations))
	}
	esc := result.TriggeredEscalations[0]
	if esc.Type != models.TriggerNoEngagement || esc.Severity != models.SeverityMedium {
		t.Errorf("unexpected escalation: %+v", esc)
	}
	if esc.Unmet {
		t.Error("escalation marked unmet despite an eligible caregiver")
	}
	// Medium severity routes to the secondary tier: the friend qualifies,
	// the physician's role is not in that tier.
	if len(result.UrgentAlerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(result.UrgentAlerts))
	}
	alert := result.UrgentAlerts[0]
	if alert.CaregiverID != "cg-friend" {
		t.Errorf("expected the friend to be alerted, got %s", alert.CaregiverID)
	}
	if alert.Type != models.UpdateConcern {
		t.Errorf("expected concern type for medium severity, got %s", alert.Type)
	}
	if strings.Contains(alert.Title, "URGENT") {
		t.Errorf("non-critical alert carries the urgent title: %q", alert.Title)
	}
	if !strings.Contains(alert.Message, "Jordan hasn't logged anything") {
		t.Errorf("placeholder not expanded in %q", alert.Message)
	}
}

func TestEvaluate_InactiveTriggerSkipped(t *testing.T) {
	trigger := noEngagementTrigger(models.SeverityMedium)
	trigger.IsActive = false
	plan := planWith(trigger)

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, []models.Caregiver{
		caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary),
	}, evalNow)

	if len(result.TriggeredEscalations) != 0 || len(result.UrgentAlerts) != 0 {
		t.Errorf("inactive trigger produced output: %+v", result)
	}
}

func TestEvaluate_QuietHoursSuppressNonCritical(t *testing.T) {
	trigger := noEngagementTrigger(models.SeverityMedium)
	plan := planWith(trigger)
	cg := caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary)
	cg.Preferences.QuietHours = &models.QuietHours{Start: "22:00", End: "07:00"}

	// 23:00: inside quiet hours, nothing goes out and the firing is unmet.
	night := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, []models.Caregiver{cg}, night)
	if len(result.UrgentAlerts) != 0 {
		t.Errorf("alert delivered during quiet hours")
	}
	if len(result.TriggeredEscalations) != 1 || !result.TriggeredEscalations[0].Unmet {
		t.Error("suppressed firing should still be reported as unmet")
	}

	// Noon: delivered normally.
	planB := planWith(trigger)
	result = newTestEvaluator().Evaluate(&planB, evalUser(), nil, []models.Caregiver{cg}, evalNow)
	if len(result.UrgentAlerts) != 1 {
		t.Errorf("expected delivery outside quiet hours, got %d alerts", len(result.UrgentAlerts))
	}
}

func TestEvaluate_CriticalBypassesQuietHoursForEmergencyTier(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityCritical))
	doctor := caregiver("cg-doc", models.RelationshipPhysician, models.LevelEmergency)
	doctor.Preferences.QuietHours = &models.QuietHours{Start: "22:00", End: "07:00"}
	family := caregiver("cg-family", models.RelationshipFamily, models.LevelPrimary)

	night := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, []models.Caregiver{doctor, family}, night)

	// Critical reaches emergency-level caregivers regardless of quiet
	// hours; the primary-level family member is not in that set.
	if len(result.UrgentAlerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.UrgentAlerts))
	}
	alert := result.UrgentAlerts[0]
	if alert.CaregiverID != "cg-doc" {
		t.Errorf("expected the emergency-level physician, got %s", alert.CaregiverID)
	}
	if !strings.Contains(alert.Title, "URGENT") {
		t.Errorf("critical alert missing urgent title: %q", alert.Title)
	}
	if alert.Type != models.UpdateAlert {
		t.Errorf("expected alert type for critical severity, got %s", alert.Type)
	}
}

func TestEvaluate_ReceiveAlertsPermissionRequired(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityMedium))
	cg := caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary)
	cg.Permissions.ReceiveAlerts = false

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, []models.Caregiver{cg}, evalNow)
	if len(result.UrgentAlerts) != 0 {
		t.Error("caregiver without the alerts permission was notified")
	}
}

func TestEvaluate_InactiveCaregiverSkipped(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityMedium))
	cg := caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary)
	cg.IsActive = false

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, []models.Caregiver{cg}, evalNow)
	if len(result.UrgentAlerts) != 0 {
		t.Error("inactive caregiver was notified")
	}
}

func TestEvaluate_ExplicitTargetsWin(t *testing.T) {
	trigger := noEngagementTrigger(models.SeverityMedium)
	trigger.TargetCaregivers = []string{"cg-doc"}
	plan := planWith(trigger)
	roster := []models.Caregiver{
		caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary),
		caregiver("cg-doc", models.RelationshipPhysician, models.LevelPrimary),
	}

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, roster, evalNow)

	// The explicit list bypasses tier routing entirely.
	if len(result.UrgentAlerts) != 1 || result.UrgentAlerts[0].CaregiverID != "cg-doc" {
		t.Errorf("explicit target list not honored: %+v", result.UrgentAlerts)
	}
}

func TestEvaluate_QuietHoursUseUserTimezone(t *testing.T) {
	trigger := noEngagementTrigger(models.SeverityMedium)
	plan := planWith(trigger)
	user := evalUser()
	user.Timezone = "America/New_York"
	cg := caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary)
	cg.Preferences.QuietHours = &models.QuietHours{Start: "22:00", End: "07:00"}

	// 03:00 UTC is 23:00 in New York during June: suppressed.
	utcNight := time.Date(2025, 6, 3, 3, 0, 0, 0, time.UTC)
	result := newTestEvaluator().Evaluate(&plan, user, nil, []models.Caregiver{cg}, utcNight)
	if len(result.UrgentAlerts) != 0 {
		t.Error("quiet hours not evaluated on the household's local clock")
	}
}

func TestEvaluate_UnmetTriggerStillReported(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityMedium))

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, nil, evalNow)

	if len(result.TriggeredEscalations) != 1 {
		t.Fatalf("expected the firing to be reported, got %d", len(result.TriggeredEscalations))
	}
	if !result.TriggeredEscalations[0].Unmet {
		t.Error("firing with an empty roster not flagged unmet")
	}
	if len(result.UrgentAlerts) != 0 {
		t.Errorf("alerts produced with no caregivers: %d", len(result.UrgentAlerts))
	}
	if len(result.RecommendedActions) == 0 {
		t.Error("recommended actions missing for an unmet firing")
	}
}

func TestEvaluate_RecommendedActionsDeduped(t *testing.T) {
	// Two triggers of the same type produce the action list only once.
	t1 := noEngagementTrigger(models.SeverityMedium)
	t2 := noEngagementTrigger(models.SeverityMedium)
	t2.ID = "trig-ne-2"
	plan := planWith(t1, t2)

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, nil, evalNow)

	want := catalog.Default().ActionsFor(models.TriggerNoEngagement)
	if len(result.RecommendedActions) != len(want) {
		t.Errorf("expected %d deduped actions, got %d", len(want), len(result.RecommendedActions))
	}
}

func TestEvaluate_RoleTailoredGuidance(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityHigh))
	roster := []models.Caregiver{
		caregiver("cg-doc", models.RelationshipPhysician, models.LevelPrimary),
		caregiver("cg-family", models.RelationshipFamily, models.LevelPrimary),
	}

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, roster, evalNow)

	if len(result.UrgentAlerts) != 2 {
		t.Fatalf("expected 2 alerts for the primary tier, got %d", len(result.UrgentAlerts))
	}
	byCaregiver := make(map[string]models.CaregiverUpdate)
	for _, a := range result.UrgentAlerts {
		byCaregiver[a.CaregiverID] = a
	}
	if !strings.Contains(byCaregiver["cg-doc"].Message, "clinical follow-up") {
		t.Errorf("clinical guidance missing: %q", byCaregiver["cg-doc"].Message)
	}
	if !strings.Contains(byCaregiver["cg-family"].Message, "call or visit") {
		t.Errorf("family guidance missing: %q", byCaregiver["cg-family"].Message)
	}
}

func TestEvaluate_EmergencyPatternEndToEnd(t *testing.T) {
	trigger := models.EscalationTrigger{
		ID:         "trig-em",
		Type:       models.TriggerEmergencyPattern,
		Conditions: models.TriggerConditions{Severity: models.SeverityCritical},
		IsActive:   true,
	}
	plan := planWith(trigger)
	doctor := caregiver("cg-doc", models.RelationshipPhysician, models.LevelEmergency)
	recent := []models.ActivityLog{{
		ID:          "a1",
		Type:        "mood",
		Description: "feeling suicidal tonight",
		Timestamp:   evalNow.Add(-time.Hour),
	}}

	result := newTestEvaluator().Evaluate(&plan, evalUser(), recent, []models.Caregiver{doctor}, evalNow)

	if len(result.UrgentAlerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.UrgentAlerts))
	}
	if !strings.Contains(result.UrgentAlerts[0].Title, "Emergency indicators detected") {
		t.Errorf("unexpected title %q", result.UrgentAlerts[0].Title)
	}
	found := false
	for _, action := range result.RecommendedActions {
		if strings.Contains(action, "crisis hotline") {
			found = true
		}
	}
	if !found {
		t.Error("emergency actions missing the crisis-hotline step")
	}
}

func TestEvaluate_AlertDataCarriesTriggerProvenance(t *testing.T) {
	plan := planWith(noEngagementTrigger(models.SeverityMedium))
	roster := []models.Caregiver{caregiver("cg-friend", models.RelationshipFriend, models.LevelSecondary)}

	result := newTestEvaluator().Evaluate(&plan, evalUser(), nil, roster, evalNow)

	alert := result.UrgentAlerts[0]
	if alert.Data.TriggerID != "trig-ne" || alert.Data.TriggerType != models.TriggerNoEngagement || alert.Data.Severity != models.SeverityMedium {
		t.Errorf("alert provenance incomplete: %+v", alert.Data)
	}
	if alert.UserID != "user-1" || alert.IsRead {
		t.Errorf("alert header fields wrong: %+v", alert)
	}
	if !alert.CreatedAt.Equal(evalNow) {
		t.Errorf("expected createdAt %v, got %v", evalNow, alert.CreatedAt)
	}
}
