// Package nudge generates proactive, ranked nudges from care-plan state and
// recent activity history.
package nudge

import (
	"time"

	"github.com/BTreeMap/CarePath/internal/models"
)

// Activity-pattern analysis windows.
const (
	patternWindowDays = 7  // trailing window for missed-day and pillar counts
	streakScanDays    = 30 // how far back a streak is scanned
	lowActivityCount  = 2  // fewer matching entries than this marks a pillar low
)

// ActivityPattern summarizes recent engagement.
type ActivityPattern struct {
	MissedDays         int
	StreakDays         int
	LowActivityPillars []models.Pillar
}

// AnalyzeActivity computes engagement features over the trailing week:
// days with zero activity, the consecutive-day streak ending today, and
// pillars with too few matching log entries. Pillars with no direct
// log-type mapping count as low unless explicitly logged under their
// category.
func AnalyzeActivity(recent []models.ActivityLog, now time.Time) ActivityPattern {
	loc := now.Location()
	byDay := make(map[string]int, len(recent))
	for _, a := range recent {
		byDay[dayKey(a.Timestamp, loc)]++
	}

	var pattern ActivityPattern
	for i := 0; i < patternWindowDays; i++ {
		day := dayKey(now.AddDate(0, 0, -i), loc)
		if byDay[day] == 0 {
			pattern.MissedDays++
		}
	}

	for i := 0; i < streakScanDays; i++ {
		day := dayKey(now.AddDate(0, 0, -i), loc)
		if byDay[day] == 0 {
			break
		}
		pattern.StreakDays++
	}

	windowStart := now.AddDate(0, 0, -patternWindowDays)
	counts := make(map[models.Pillar]int, len(models.AllPillars))
	for _, a := range recent {
		if !a.Timestamp.After(windowStart) {
			continue
		}
		if pillar, ok := pillarForActivity(a); ok {
			counts[pillar]++
		}
	}
	for _, p := range models.AllPillars {
		if counts[p] < lowActivityCount {
			pattern.LowActivityPillars = append(pattern.LowActivityPillars, p)
		}
	}
	return pattern
}

// pillarForActivity maps an activity-log entry to the pillar it evidences.
func pillarForActivity(a models.ActivityLog) (models.Pillar, bool) {
	if a.Category == "stress" {
		return models.PillarStressManagement, true
	}
	switch a.Type {
	case "nutrition":
		return models.PillarOptimalNutrition, true
	case "exercise":
		return models.PillarPhysicalActivity, true
	case "mood":
		return models.PillarStressManagement, true
	case "sleep":
		return models.PillarRestorativeSleep, true
	case "connection":
		return models.PillarConnectedness, true
	case "substance":
		return models.PillarSubstanceAvoidance, true
	default:
		return "", false
	}
}

// dayKey buckets a timestamp by calendar day in the given location.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
