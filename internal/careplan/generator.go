// Package careplan builds phased care plans and applies progress,
// milestone, and phase-advancement rules to them.
package careplan

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/util"
)

// Default trigger parameters for the three standard escalation rules
// attached to every generated plan.
const (
	DefaultNoEngagementWindow  = "72 hours"
	DefaultMissedGoalsWindow   = "1 week"
	DefaultHealthDeclineWindow = "1 week"
	DefaultMissedGoalsCount    = 3
	DefaultHealthDeclineCount  = 2
)

// nextReviewInterval is how far out the first plan review is scheduled.
const nextReviewInterval = 30 * 24 * time.Hour

// Generator builds care plans from the injected catalog. It holds no
// mutable state and is safe for concurrent use across users.
type Generator struct {
	catalog *catalog.Catalog
	newID   util.IDSource
}

// NewGenerator creates a Generator with the given catalog and ID source.
func NewGenerator(cat *catalog.Catalog, ids util.IDSource) *Generator {
	return &Generator{catalog: cat, newID: ids}
}

// CreateCarePlan builds a four-phase care plan for the user across the
// selected pillars. An empty pillar selection means all six pillars.
// The function is pure given now: no I/O, no ambient clock reads.
func (g *Generator) CreateCarePlan(user models.User, team models.CoachTeam, selected []models.Pillar, now time.Time) models.CarePlan {
	pillars := normalizePillars(selected)
	tone := g.catalog.ToneFor(user.CommunicationStyle)
	slog.Debug("Generator.CreateCarePlan: building plan", "user_id", user.ID, "pillars", len(pillars), "tone", tone)

	phases := make([]models.CarePlanPhase, 0, len(g.catalog.Phases()))
	cumulativeWeeks := 0
	for _, def := range g.catalog.Phases() {
		cumulativeWeeks += def.DurationWeeks
		phases = append(phases, g.buildPhase(def, pillars, team, tone, now, cumulativeWeeks))
	}

	title := "Lifestyle Care Plan"
	if user.Name != "" {
		title = fmt.Sprintf("%s's Lifestyle Care Plan", user.Name)
	}

	plan := models.CarePlan{
		ID:           g.newID(),
		UserID:       user.ID,
		Title:        title,
		Description:  "A phased plan across your selected lifestyle pillars, progressing from assessment through long-term maintenance.",
		Pillars:      pillars,
		Phases:       phases,
		CurrentPhase: 0,
		AssignedTeam: team,
		EscalationTriggers: []models.EscalationTrigger{
			{
				ID:   g.newID(),
				Type: models.TriggerNoEngagement,
				Conditions: models.TriggerConditions{
					TimeWindow: DefaultNoEngagementWindow,
					Severity:   models.SeverityMedium,
				},
				TargetCaregivers:  []string{},
				EscalationMessage: "{userName} has not logged any activity recently and may need a check-in.",
				IsActive:          true,
			},
			{
				ID:   g.newID(),
				Type: models.TriggerMissedGoals,
				Conditions: models.TriggerConditions{
					Threshold:  DefaultMissedGoalsCount,
					TimeWindow: DefaultMissedGoalsWindow,
					Severity:   models.SeverityHigh,
				},
				TargetCaregivers:  []string{},
				EscalationMessage: "{userName} is falling behind on several care-plan goals.",
				IsActive:          true,
			},
			{
				ID:   g.newID(),
				Type: models.TriggerHealthDecline,
				Conditions: models.TriggerConditions{
					Threshold:  DefaultHealthDeclineCount,
					TimeWindow: DefaultHealthDeclineWindow,
					Severity:   models.SeverityCritical,
				},
				TargetCaregivers:  []string{},
				EscalationMessage: "Recent activity logs for {userName} show possible health decline.",
				IsActive:          true,
			},
		},
		Protocols:  []string{"lifestyle-medicine-core", "smart-goal-progression"},
		CreatedAt:  now,
		UpdatedAt:  now,
		NextReview: now.Add(nextReviewInterval),
	}
	slog.Info("Generator.CreateCarePlan: plan created", "plan_id", plan.ID, "user_id", user.ID, "phases", len(plan.Phases))
	return plan
}

// buildPhase instantiates one phase: one goal per pillar with a matching
// template, one activity requirement per pillar, and a single phase
// milestone dated at the end of the cumulative phase timeline.
func (g *Generator) buildPhase(def catalog.PhaseDef, pillars []models.Pillar, team models.CoachTeam, tone models.NudgeTone, now time.Time, cumulativeWeeks int) models.CarePlanPhase {
	phase := models.CarePlanPhase{
		ID:            g.newID(),
		Name:          def.Name,
		Description:   def.Description,
		DurationWeeks: def.DurationWeeks,
		Goals:         make([]models.HealthGoal, 0, len(pillars)),
		Requirements:  make([]models.ActivityRequirement, 0, len(pillars)),
	}

	for _, pillar := range pillars {
		tpl, ok := g.catalog.GoalTemplateFor(pillar, def.Key)
		if !ok {
			// No template for this pillar/phase: the pillar simply
			// contributes no goal here.
			slog.Debug("Generator.buildPhase: no goal template", "pillar", pillar, "phase", def.Key)
		} else {
			phase.Goals = append(phase.Goals, models.HealthGoal{
				ID:            g.newID(),
				Title:         tpl.Title,
				Description:   tpl.Description,
				Category:      pillar,
				Target:        tpl.Target,
				Timeline:      tpl.Timeline,
				Progress:      0,
				Status:        models.GoalStatusActive,
				AssignedCoach: team.SpecialistFor(pillar),
				NudgeTone:     tone,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		phase.Requirements = append(phase.Requirements, models.ActivityRequirement{
			Pillar:    pillar,
			Frequency: def.ReqFrequency,
			Target:    def.ReqTarget,
		})
	}

	phase.Milestones = []models.CarePlanMilestone{
		{
			ID:          g.newID(),
			Title:       fmt.Sprintf("%s phase objective achieved", def.Name),
			Description: fmt.Sprintf("Complete the goals of the %s phase across your pillars.", def.Name),
			TargetDate:  now.Add(time.Duration(cumulativeWeeks) * 7 * 24 * time.Hour),
			IsAchieved:  false,
		},
	}
	return phase
}

// normalizePillars returns the pillar scope for a plan: the valid entries of
// the selection in their given order, or all six pillars when the selection
// is empty. Invalid identifiers are dropped rather than rejected.
func normalizePillars(selected []models.Pillar) []models.Pillar {
	if len(selected) == 0 {
		out := make([]models.Pillar, len(models.AllPillars))
		copy(out, models.AllPillars)
		return out
	}
	out := make([]models.Pillar, 0, len(selected))
	seen := make(map[models.Pillar]bool, len(selected))
	for _, p := range selected {
		if !models.IsValidPillar(p) {
			slog.Warn("Generator: dropping invalid pillar from selection", "pillar", p)
			continue
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
