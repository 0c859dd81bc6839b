package escalation

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/util"
)

// severityTier maps trigger severity to the escalation hierarchy tier that
// should be notified.
var severityTier = map[models.Severity]models.EscalationLevel{
	models.SeverityCritical: models.LevelEmergency,
	models.SeverityHigh:     models.LevelPrimary,
	models.SeverityMedium:   models.LevelSecondary,
	models.SeverityLow:      models.LevelSecondary,
}

// tierRoles is the allowed relationship set per hierarchy tier.
var tierRoles = map[models.EscalationLevel][]models.Relationship{
	models.LevelEmergency: {
		models.RelationshipPhysician,
		models.RelationshipHealthcareProvider,
		models.RelationshipNurse,
		models.RelationshipFamily,
	},
	models.LevelPrimary: {
		models.RelationshipFamily,
		models.RelationshipPhysician,
		models.RelationshipHealthcareProvider,
		models.RelationshipNurse,
	},
	models.LevelSecondary: {
		models.RelationshipFamily,
		models.RelationshipFriend,
		models.RelationshipCoach,
		models.RelationshipOther,
	},
}

// triggerHeadline is the neutral per-type alert headline.
var triggerHeadline = map[models.TriggerType]string{
	models.TriggerNoEngagement:     "No recent engagement",
	models.TriggerMissedGoals:      "Care plan goals falling behind",
	models.TriggerHealthDecline:    "Possible health decline",
	models.TriggerEmergencyPattern: "Emergency indicators detected",
	models.TriggerUserRequest:      "User requested contact",
}

// Evaluator runs escalation passes over a plan, activity log, and caregiver
// roster. Pure given now; the caller serializes passes per plan.
type Evaluator struct {
	catalog *catalog.Catalog
	newID   util.IDSource
}

// NewEvaluator creates an escalation Evaluator.
func NewEvaluator(cat *catalog.Catalog, ids util.IDSource) *Evaluator {
	return &Evaluator{catalog: cat, newID: ids}
}

// Evaluate checks every active trigger on the plan, resolves target
// caregivers for those that fire, and synthesizes one alert per
// (trigger, caregiver) pair. A trigger that fires with no eligible
// caregivers is still reported, flagged unmet, for the admin surface.
func (e *Evaluator) Evaluate(plan *models.CarePlan, user models.User, recent []models.ActivityLog, caregivers []models.Caregiver, now time.Time) models.EscalationResult {
	result := models.EscalationResult{}
	seenActions := make(map[string]bool)

	for _, trigger := range plan.EscalationTriggers {
		if !trigger.IsActive {
			continue
		}
		if !e.triggerFires(trigger, plan, recent, now) {
			continue
		}
		slog.Info("Evaluator.Evaluate: trigger fired",
			"plan_id", plan.ID, "trigger_id", trigger.ID, "type", trigger.Type, "severity", trigger.Conditions.Severity)

		targets := e.resolveCaregivers(trigger, caregivers, user, now)
		escalation := models.TriggeredEscalation{
			TriggerID: trigger.ID,
			Type:      trigger.Type,
			Severity:  trigger.Conditions.Severity,
			Unmet:     len(targets) == 0,
		}
		for _, cg := range targets {
			escalation.CaregiverIDs = append(escalation.CaregiverIDs, cg.ID)
			result.UrgentAlerts = append(result.UrgentAlerts, e.buildAlert(trigger, cg, user, now))
		}
		if escalation.Unmet {
			slog.Warn("Evaluator.Evaluate: trigger fired with no eligible caregivers",
				"plan_id", plan.ID, "trigger_id", trigger.ID, "type", trigger.Type)
		}
		result.TriggeredEscalations = append(result.TriggeredEscalations, escalation)

		for _, action := range e.catalog.ActionsFor(trigger.Type) {
			if !seenActions[action] {
				seenActions[action] = true
				result.RecommendedActions = append(result.RecommendedActions, action)
			}
		}
	}
	return result
}

// resolveCaregivers picks the caregivers a fired trigger should reach. An
// explicit target list wins; otherwise the trigger's severity selects a
// hierarchy tier and each caregiver is checked for role membership and
// contact policy.
func (e *Evaluator) resolveCaregivers(trigger models.EscalationTrigger, caregivers []models.Caregiver, user models.User, now time.Time) []models.Caregiver {
	if len(trigger.TargetCaregivers) > 0 {
		wanted := make(map[string]bool, len(trigger.TargetCaregivers))
		for _, id := range trigger.TargetCaregivers {
			wanted[id] = true
		}
		var out []models.Caregiver
		for _, cg := range caregivers {
			if wanted[cg.ID] {
				out = append(out, cg)
			}
		}
		return out
	}

	severity := trigger.Conditions.Severity
	tier := severityTier[severity]
	if tier == "" {
		tier = models.LevelSecondary
	}
	localMinutes := localClockMinutes(user, now)

	var out []models.Caregiver
	for _, cg := range caregivers {
		if !cg.IsActive || !roleInTier(cg.Relationship, tier) {
			continue
		}
		if !e.caregiverEligible(cg, severity, localMinutes) {
			continue
		}
		out = append(out, cg)
	}
	return out
}

// caregiverEligible applies the per-caregiver contact policy. Critical
// severity bypasses quiet hours but only ever reaches emergency-level
// caregivers; everything else defers to the quiet-hours window.
func (e *Evaluator) caregiverEligible(cg models.Caregiver, severity models.Severity, localMinutes int) bool {
	if !cg.Permissions.ReceiveAlerts {
		return false
	}
	if severity == models.SeverityCritical {
		return cg.EscalationLevel == models.LevelEmergency
	}
	if inQuietHours(cg.Preferences.QuietHours, localMinutes) {
		slog.Debug("Evaluator: caregiver in quiet hours, suppressing", "caregiver_id", cg.ID, "severity", severity)
		return false
	}
	return true
}

// buildAlert synthesizes the caregiver update for one (trigger, caregiver)
// pair, with role-tailored guidance in the message body.
func (e *Evaluator) buildAlert(trigger models.EscalationTrigger, cg models.Caregiver, user models.User, now time.Time) models.CaregiverUpdate {
	severity := trigger.Conditions.Severity
	headline := triggerHeadline[trigger.Type]
	if headline == "" {
		headline = "Care plan notification"
	}

	title := fmt.Sprintf("Care update: %s", headline)
	if severity == models.SeverityCritical {
		title = fmt.Sprintf("🚨 URGENT: %s", headline)
	}

	base := strings.ReplaceAll(trigger.EscalationMessage, "{userName}", user.Name)
	if base == "" {
		base = fmt.Sprintf("%s for %s.", headline, user.Name)
	}

	var guidance string
	switch cg.Relationship {
	case models.RelationshipPhysician, models.RelationshipHealthcareProvider, models.RelationshipNurse:
		guidance = "Please review their recent activity trends and consider clinical follow-up."
	case models.RelationshipFamily:
		guidance = "A call or visit from you could make a real difference right now."
	case models.RelationshipFriend:
		guidance = "Reaching out with a friendly message may help them re-engage."
	default:
		guidance = "Please check in with them when you can."
	}

	return models.CaregiverUpdate{
		ID:          e.newID(),
		UserID:      user.ID,
		CaregiverID: cg.ID,
		Type:        alertType(severity),
		Title:       title,
		Message:     base + " " + guidance,
		Data: models.UpdateData{
			TriggerID:   trigger.ID,
			TriggerType: trigger.Type,
			Severity:    severity,
		},
		IsRead:    false,
		CreatedAt: now,
	}
}

// alertType maps trigger severity to the caregiver-update type.
func alertType(severity models.Severity) models.UpdateType {
	switch severity {
	case models.SeverityCritical, models.SeverityLow:
		return models.UpdateAlert
	default:
		return models.UpdateConcern
	}
}

// roleInTier reports whether a relationship belongs to a hierarchy tier's
// allowed role set.
func roleInTier(rel models.Relationship, tier models.EscalationLevel) bool {
	for _, r := range tierRoles[tier] {
		if r == rel {
			return true
		}
	}
	return false
}

// localClockMinutes converts the evaluation time to the user household's
// local wall clock, in minutes since midnight. An unknown timezone falls
// back to the evaluation time's own location.
func localClockMinutes(user models.User, now time.Time) int {
	local := now
	if user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			local = now.In(loc)
		}
	}
	return local.Hour()*60 + local.Minute()
}
