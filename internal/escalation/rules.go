// Package escalation evaluates configured escalation triggers against plan
// and activity state and routes caregiver alerts by severity.
package escalation

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BTreeMap/CarePath/internal/models"
)

// Defaults applied when a trigger's conditions are absent or malformed.
const (
	// DefaultTimeWindow is the fallback for unparseable time-window strings.
	DefaultTimeWindow = 72 * time.Hour
	// DefaultMissedGoalsThreshold is the stalled-goal count that fires
	// missed_goals when no threshold is configured.
	DefaultMissedGoalsThreshold = 3
	// DefaultHealthDeclineThreshold is the concerning-entry count that
	// fires health_decline when no threshold is configured.
	DefaultHealthDeclineThreshold = 2
	// missedGoalProgressBelow marks an active goal as stalled for the
	// missed_goals rule.
	missedGoalProgressBelow = 20
)

// triggerFires evaluates one trigger's type-specific predicate.
func (e *Evaluator) triggerFires(trigger models.EscalationTrigger, plan *models.CarePlan, recent []models.ActivityLog, now time.Time) bool {
	switch trigger.Type {
	case models.TriggerNoEngagement:
		return noEngagement(trigger, recent, now)
	case models.TriggerMissedGoals:
		return missedGoals(trigger, plan)
	case models.TriggerHealthDecline:
		return healthDecline(trigger, recent, now)
	case models.TriggerEmergencyPattern:
		return anyDescriptionContains(recent, e.catalog.EmergencyKeywords())
	case models.TriggerUserRequest:
		return anyDescriptionContains(recent, e.catalog.RequestKeywords())
	default:
		slog.Warn("Evaluator: unknown trigger type, skipping", "trigger_id", trigger.ID, "type", trigger.Type)
		return false
	}
}

// noEngagement fires when no activity entry falls inside the trigger's
// trailing time window.
func noEngagement(trigger models.EscalationTrigger, recent []models.ActivityLog, now time.Time) bool {
	cutoff := now.Add(-parseTimeWindow(trigger.Conditions.TimeWindow))
	for _, a := range recent {
		if a.Timestamp.After(cutoff) {
			return false
		}
	}
	return true
}

// missedGoals fires when enough current-phase goals are both active and
// stalled below the progress floor.
func missedGoals(trigger models.EscalationTrigger, plan *models.CarePlan) bool {
	phase := plan.ActivePhase()
	if phase == nil {
		return false
	}
	threshold := trigger.Conditions.Threshold
	if threshold <= 0 {
		threshold = DefaultMissedGoalsThreshold
	}
	stalled := 0
	for _, g := range phase.Goals {
		if g.Status == models.GoalStatusActive && g.Progress < missedGoalProgressBelow {
			stalled++
		}
	}
	return stalled >= threshold
}

// healthDecline fires when the window contains enough concerning entries:
// low mood ratings, short sleep, or zero-minute exercise logs.
func healthDecline(trigger models.EscalationTrigger, recent []models.ActivityLog, now time.Time) bool {
	threshold := trigger.Conditions.Threshold
	if threshold <= 0 {
		threshold = DefaultHealthDeclineThreshold
	}
	cutoff := now.Add(-parseTimeWindow(trigger.Conditions.TimeWindow))
	concerning := 0
	for _, a := range recent {
		if !a.Timestamp.After(cutoff) {
			continue
		}
		switch a.Type {
		case "mood":
			if a.Value < 3 {
				concerning++
			}
		case "sleep":
			if a.Value < 6 {
				concerning++
			}
		case "exercise":
			if a.Value == 0 {
				concerning++
			}
		}
	}
	return concerning >= threshold
}

// anyDescriptionContains reports whether any activity description contains
// one of the keywords, case-insensitively.
func anyDescriptionContains(recent []models.ActivityLog, keywords []string) bool {
	for _, a := range recent {
		desc := strings.ToLower(a.Description)
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
	}
	return false
}

// parseTimeWindow parses "<integer> <unit>" where unit is hour(s), day(s),
// or week(s). Anything unrecognized falls back to DefaultTimeWindow.
func parseTimeWindow(s string) time.Duration {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return DefaultTimeWindow
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return DefaultTimeWindow
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "hour":
		return time.Duration(n) * time.Hour
	case "day":
		return time.Duration(n) * 24 * time.Hour
	case "week":
		return time.Duration(n) * 7 * 24 * time.Hour
	default:
		return DefaultTimeWindow
	}
}

// inQuietHours reports whether the clock time (minutes since midnight)
// falls inside the window. A start later than the end means the window
// wraps past midnight.
func inQuietHours(qh *models.QuietHours, minutes int) bool {
	if qh == nil {
		return false
	}
	start, okStart := parseClockMinutes(qh.Start)
	end, okEnd := parseClockMinutes(qh.End)
	if !okStart || !okEnd || start == end {
		return false
	}
	if start < end {
		return minutes >= start && minutes < end
	}
	return minutes >= start || minutes < end
}

// parseClockMinutes parses "HH:MM" into minutes since midnight.
func parseClockMinutes(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
