package nudge

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/util"
)

const (
	// MaxNudgesPerCycle caps the output of one generation pass.
	MaxNudgesPerCycle = 5
	// timedNudgeTolerance is how close the evaluation time must be to a
	// timed template's preferred time for the template to fire.
	timedNudgeTolerance = 15 * time.Minute

	// Goal-progress thresholds.
	stalledProgressBelow   = 30
	veryLowProgressBelow   = 10
	stalledAfterDays       = 3
	nearCompletionAt       = 80
	reengageAfterMissed    = 2
	urgentReengageAtMissed = 4
	celebrateStreakAt      = 7
)

// Engine generates nudges from plan state and activity history. It holds
// only the injected catalog and ID source; every pass is pure given now.
type Engine struct {
	catalog *catalog.Catalog
	newID   util.IDSource
}

// NewEngine creates a nudge Engine.
func NewEngine(cat *catalog.Catalog, ids util.IDSource) *Engine {
	return &Engine{catalog: cat, newID: ids}
}

// GenerateNudges produces the ranked, deduplicated nudge set for one user:
// time-based templates near their preferred time, goal-progress prompts for
// the current phase, pattern-based re-engagement and streak nudges, and
// milestone celebrations. Output is capped at MaxNudgesPerCycle and is
// deterministic for identical inputs.
func (e *Engine) GenerateNudges(user models.User, plan *models.CarePlan, team models.CoachTeam, recent []models.ActivityLog, now time.Time) []models.Nudge {
	pattern := AnalyzeActivity(recent, now)
	slog.Debug("Engine.GenerateNudges: analyzed activity",
		"user_id", user.ID, "missed_days", pattern.MissedDays, "streak_days", pattern.StreakDays, "low_pillars", len(pattern.LowActivityPillars))

	var nudges []models.Nudge
	nudges = append(nudges, e.timeBasedNudges(user, team, now)...)
	nudges = append(nudges, e.goalProgressNudges(user, plan, now)...)
	nudges = append(nudges, e.patternNudges(user, team, pattern, now)...)
	nudges = append(nudges, e.celebrationNudges(user, plan, team, now)...)

	nudges = dedupe(nudges)
	sort.SliceStable(nudges, func(i, j int) bool {
		return nudges[i].Priority.Rank() > nudges[j].Priority.Rank()
	})
	if len(nudges) > MaxNudgesPerCycle {
		nudges = nudges[:MaxNudgesPerCycle]
	}
	slog.Debug("Engine.GenerateNudges: selection complete", "user_id", user.ID, "count", len(nudges))
	return nudges
}

// timeBasedNudges fires every catalog template whose preferred time is
// within tolerance of now in the user's local time.
func (e *Engine) timeBasedNudges(user models.User, team models.CoachTeam, now time.Time) []models.Nudge {
	local := now
	if user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			local = now.In(loc)
		} else {
			slog.Warn("Engine.timeBasedNudges: unknown timezone, using evaluation time as-is", "timezone", user.Timezone, "error", err)
		}
	}
	nowMinutes := local.Hour()*60 + local.Minute()

	var out []models.Nudge
	for _, tpl := range e.catalog.TimedNudges() {
		target, ok := parseClock(tpl.PreferredTime)
		if !ok {
			continue
		}
		if absInt(nowMinutes-target) > int(timedNudgeTolerance.Minutes()) {
			continue
		}
		coach := team.PrimaryCoach
		if tpl.Pillar != "" {
			coach = team.SpecialistFor(tpl.Pillar)
		}
		out = append(out, models.Nudge{
			ID:      e.newID(),
			Type:    tpl.Type,
			Title:   tpl.Title,
			Message: personalize(tpl.Message, user),
			Trigger: models.NudgeTrigger{
				Kind:      "time_based",
				Condition: fmt.Sprintf("%s at %s (%s)", tpl.Name, tpl.PreferredTime, tpl.Recurrence),
			},
			Timing: models.NudgeTiming{
				PreferredTime:     tpl.PreferredTime,
				Timezone:          user.Timezone,
				RespectQuietHours: true,
				MaxPerDay:         tpl.MaxPerDay,
			},
			Priority:      tpl.Priority,
			Pillar:        tpl.Pillar,
			AssignedCoach: coach,
			IsActive:      true,
			CreatedAt:     now,
		})
	}
	return out
}

// goalProgressNudges emits encouragement for stalled goals and goals close
// to completion in the current phase.
func (e *Engine) goalProgressNudges(user models.User, plan *models.CarePlan, now time.Time) []models.Nudge {
	phase := plan.ActivePhase()
	if phase == nil {
		return nil
	}
	var out []models.Nudge
	for _, goal := range phase.Goals {
		switch {
		case goal.Progress < stalledProgressBelow && daysSince(goal.UpdatedAt, now) > stalledAfterDays:
			priority := models.PriorityMedium
			if goal.Progress < veryLowProgressBelow {
				priority = models.PriorityHigh
			}
			out = append(out, models.Nudge{
				ID:      e.newID(),
				Type:    models.NudgeEncouragement,
				Title:   fmt.Sprintf("Let's get back to \"%s\"", goal.Title),
				Message: fmt.Sprintf("%s, your goal \"%s\" is at %d%% and hasn't moved in a few days. A small step today keeps it alive.", displayName(user), goal.Title, goal.Progress),
				Trigger: models.NudgeTrigger{
					Kind:      "goal_progress",
					Condition: fmt.Sprintf("goal %s stalled at %d%%", goal.ID, goal.Progress),
				},
				Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: true, MaxPerDay: 1},
				Priority:      priority,
				Pillar:        goal.Category,
				AssignedCoach: goal.AssignedCoach,
				IsActive:      true,
				CreatedAt:     now,
			})
		case goal.Progress >= nearCompletionAt && goal.Progress < 100:
			out = append(out, models.Nudge{
				ID:      e.newID(),
				Type:    models.NudgeEncouragement,
				Title:   fmt.Sprintf("Almost there: \"%s\"", goal.Title),
				Message: fmt.Sprintf("%s, you're %d%% of the way on \"%s\" — just %d%% to go!", displayName(user), goal.Progress, goal.Title, 100-goal.Progress),
				Trigger: models.NudgeTrigger{
					Kind:      "goal_progress",
					Condition: fmt.Sprintf("goal %s near completion at %d%%", goal.ID, goal.Progress),
				},
				Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: true, MaxPerDay: 1},
				Priority:      models.PriorityHigh,
				Pillar:        goal.Category,
				AssignedCoach: goal.AssignedCoach,
				IsActive:      true,
				CreatedAt:     now,
			})
		}
	}
	return out
}

// patternNudges reacts to engagement patterns: missed days, streaks, and
// neglected pillars.
func (e *Engine) patternNudges(user models.User, team models.CoachTeam, pattern ActivityPattern, now time.Time) []models.Nudge {
	var out []models.Nudge

	if pattern.MissedDays >= reengageAfterMissed {
		priority := models.PriorityMedium
		if pattern.MissedDays >= urgentReengageAtMissed {
			priority = models.PriorityHigh
		}
		out = append(out, models.Nudge{
			ID:      e.newID(),
			Type:    models.NudgeCarePlanCheck,
			Title:   "We miss you!",
			Message: fmt.Sprintf("%s, it's been quiet for %d of the last 7 days. Even one small log entry keeps your plan on track.", displayName(user), pattern.MissedDays),
			Trigger: models.NudgeTrigger{
				Kind:      "pattern",
				Condition: fmt.Sprintf("%d missed days in trailing week", pattern.MissedDays),
			},
			Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: true, MaxPerDay: 1},
			Priority:      priority,
			AssignedCoach: team.PrimaryCoach,
			IsActive:      true,
			CreatedAt:     now,
		})
	}

	if pattern.StreakDays >= celebrateStreakAt {
		out = append(out, models.Nudge{
			ID:      e.newID(),
			Type:    models.NudgeGamification,
			Title:   fmt.Sprintf("%d-day streak!", pattern.StreakDays),
			Message: fmt.Sprintf("%s, you've logged activity %d days in a row. Keep the chain going!", displayName(user), pattern.StreakDays),
			Trigger: models.NudgeTrigger{
				Kind:      "pattern",
				Condition: fmt.Sprintf("streak of %d days", pattern.StreakDays),
			},
			Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: true, MaxPerDay: 1},
			Priority:      models.PriorityLow,
			AssignedCoach: team.PrimaryCoach,
			IsActive:      true,
			CreatedAt:     now,
		})
	}

	for _, pillar := range pattern.LowActivityPillars {
		out = append(out, models.Nudge{
			ID:      e.newID(),
			Type:    models.NudgeEducation,
			Title:   fmt.Sprintf("Spotlight on %s", pillarLabel(pillar)),
			Message: fmt.Sprintf("%s, your %s pillar has seen little activity this week. Your coach has ideas to make it easier.", displayName(user), pillarLabel(pillar)),
			Trigger: models.NudgeTrigger{
				Kind:      "pattern",
				Condition: fmt.Sprintf("low activity for pillar %s", pillar),
			},
			Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: true, MaxPerDay: 1},
			Priority:      models.PriorityMedium,
			Pillar:        pillar,
			AssignedCoach: team.SpecialistFor(pillar),
			IsActive:      true,
			CreatedAt:     now,
		})
	}
	return out
}

// celebrationNudges covers milestones achieved without a recorded
// celebration message (e.g. achieved by an external plan edit). These are
// exempt from quiet-hours suppression.
func (e *Engine) celebrationNudges(user models.User, plan *models.CarePlan, team models.CoachTeam, now time.Time) []models.Nudge {
	phase := plan.ActivePhase()
	if phase == nil {
		return nil
	}
	var out []models.Nudge
	for _, m := range phase.Milestones {
		if !m.IsAchieved || m.CelebrationMessage != "" {
			continue
		}
		out = append(out, models.Nudge{
			ID:      e.newID(),
			Type:    models.NudgeMilestoneCelebration,
			Title:   fmt.Sprintf("Milestone reached: %s", m.Title),
			Message: fmt.Sprintf("Amazing work, %s! You achieved \"%s\". Take a moment to celebrate.", displayName(user), m.Title),
			Trigger: models.NudgeTrigger{
				Kind:      "milestone",
				Condition: fmt.Sprintf("milestone %s achieved", m.ID),
			},
			Timing:        models.NudgeTiming{Timezone: user.Timezone, RespectQuietHours: false, MaxPerDay: 1},
			Priority:      models.PriorityHigh,
			AssignedCoach: team.PrimaryCoach,
			IsActive:      true,
			CreatedAt:     now,
		})
	}
	return out
}

// dedupe drops later nudges that repeat an earlier (title, type) pair.
func dedupe(nudges []models.Nudge) []models.Nudge {
	seen := make(map[string]bool, len(nudges))
	out := nudges[:0]
	for _, n := range nudges {
		key := n.Title + "\x00" + string(n.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func personalize(message string, user models.User) string {
	return strings.ReplaceAll(message, "{userName}", displayName(user))
}

func displayName(user models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return "there"
}

func pillarLabel(p models.Pillar) string {
	return strings.ReplaceAll(string(p), "_", " ")
}

func daysSince(t, now time.Time) int {
	if t.After(now) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
