package careplan

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BTreeMap/CarePath/internal/models"
)

// Thresholds for milestone achievement and phase advancement.
const (
	// MilestoneMeanProgress is the mean goal progress at which a phase
	// milestone is marked achieved.
	MilestoneMeanProgress = 80.0
	// PhaseAdvanceCompletionRatio is the fraction of completed goals
	// required (together with all milestones achieved) to advance a phase.
	PhaseAdvanceCompletionRatio = 0.8
)

// ApplyProgress stores newProgress on the goal with the given id in the
// plan's current phase, then recomputes milestone achievement and the
// phase-advancement gate for that phase.
//
// Semantics:
//   - Goal lookup is scoped to the current phase only; an unknown goalID is
//     a no-op (the plan is returned unchanged except for nothing at all).
//   - The stored value is not clamped; callers validate range. Status flips
//     to completed iff newProgress >= 100, and completion never reverts.
//   - Milestone achievement is one-way: once achieved, later updates never
//     clear it.
//   - At most one phase advance per call, never past the last phase.
//
// The plan is mutated in place and also returned for call chaining.
func ApplyProgress(plan *models.CarePlan, goalID string, newProgress int, now time.Time) *models.CarePlan {
	phase := plan.ActivePhase()
	if phase == nil {
		slog.Error("ApplyProgress: plan has no phases", "plan_id", plan.ID)
		return plan
	}

	goal := findGoal(phase, goalID)
	if goal == nil {
		// Goals outside the current phase are not addressable here.
		slog.Debug("ApplyProgress: goal not in current phase, ignoring", "plan_id", plan.ID, "goal_id", goalID, "phase", phase.Name)
		return plan
	}

	goal.Progress = newProgress
	goal.UpdatedAt = now
	if newProgress >= 100 && goal.Status != models.GoalStatusCompleted {
		goal.Status = models.GoalStatusCompleted
		slog.Info("ApplyProgress: goal completed", "plan_id", plan.ID, "goal_id", goalID, "title", goal.Title)
	}

	recomputeMilestones(phase, now)

	if shouldAdvancePhase(phase) && plan.CurrentPhase < len(plan.Phases)-1 {
		plan.CurrentPhase++
		slog.Info("ApplyProgress: advanced to next phase", "plan_id", plan.ID, "phase_index", plan.CurrentPhase, "phase", plan.Phases[plan.CurrentPhase].Name)
	}

	plan.UpdatedAt = now
	return plan
}

// findGoal returns a pointer to the goal with the given id within the
// phase, or nil.
func findGoal(phase *models.CarePlanPhase, goalID string) *models.HealthGoal {
	for i := range phase.Goals {
		if phase.Goals[i].ID == goalID {
			return &phase.Goals[i]
		}
	}
	return nil
}

// recomputeMilestones marks any unachieved milestone in the phase achieved
// when the mean progress across the phase's goals reaches the threshold.
func recomputeMilestones(phase *models.CarePlanPhase, now time.Time) {
	if len(phase.Goals) == 0 {
		return
	}
	mean := meanProgress(phase.Goals)
	if mean < MilestoneMeanProgress {
		return
	}
	for i := range phase.Milestones {
		m := &phase.Milestones[i]
		if m.IsAchieved {
			continue
		}
		achieved := now
		m.IsAchieved = true
		m.AchievedDate = &achieved
		m.CelebrationMessage = fmt.Sprintf("Congratulations! You reached \"%s\".", m.Title)
		slog.Info("ApplyProgress: milestone achieved", "milestone_id", m.ID, "title", m.Title, "mean_progress", mean)
	}
}

// shouldAdvancePhase reports whether the phase satisfies the advancement
// gate: every milestone achieved and at least 80% of goals completed.
func shouldAdvancePhase(phase *models.CarePlanPhase) bool {
	if len(phase.Goals) == 0 || len(phase.Milestones) == 0 {
		return false
	}
	for _, m := range phase.Milestones {
		if !m.IsAchieved {
			return false
		}
	}
	completed := 0
	for _, g := range phase.Goals {
		if g.Status == models.GoalStatusCompleted {
			completed++
		}
	}
	return float64(completed)/float64(len(phase.Goals)) >= PhaseAdvanceCompletionRatio
}

// meanProgress returns the arithmetic mean progress of the goals.
func meanProgress(goals []models.HealthGoal) float64 {
	total := 0
	for _, g := range goals {
		total += g.Progress
	}
	return float64(total) / float64(len(goals))
}
