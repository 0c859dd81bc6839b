// Package models defines the core data structures for CarePath.
//
// It includes the care-plan aggregate (phases, goals, milestones, escalation
// triggers) plus the enumerated vocabularies shared across modules.
package models

import (
	"errors"
	"time"
)

// Pillar identifies one of the six lifestyle-medicine focus areas.
type Pillar string

const (
	PillarOptimalNutrition   Pillar = "optimal_nutrition"
	PillarPhysicalActivity   Pillar = "physical_activity"
	PillarStressManagement   Pillar = "stress_management"
	PillarRestorativeSleep   Pillar = "restorative_sleep"
	PillarConnectedness      Pillar = "connectedness"
	PillarSubstanceAvoidance Pillar = "substance_avoidance"
)

// AllPillars is the canonical iteration order for pillar-keyed work.
// Engines must range over this slice, never over a map, so output order is
// deterministic.
var AllPillars = []Pillar{
	PillarOptimalNutrition,
	PillarPhysicalActivity,
	PillarStressManagement,
	PillarRestorativeSleep,
	PillarConnectedness,
	PillarSubstanceAvoidance,
}

// IsValidPillar checks if the given pillar is one of the six known pillars.
func IsValidPillar(p Pillar) bool {
	switch p {
	case PillarOptimalNutrition, PillarPhysicalActivity, PillarStressManagement,
		PillarRestorativeSleep, PillarConnectedness, PillarSubstanceAvoidance:
		return true
	default:
		return false
	}
}

// GoalStatus is the lifecycle state of a HealthGoal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusArchived  GoalStatus = "archived"
)

// TriggerType enumerates the escalation rule families.
type TriggerType string

const (
	TriggerMissedGoals      TriggerType = "missed_goals"
	TriggerHealthDecline    TriggerType = "health_decline"
	TriggerNoEngagement     TriggerType = "no_engagement"
	TriggerEmergencyPattern TriggerType = "emergency_pattern"
	TriggerUserRequest      TriggerType = "user_request"
)

// Severity grades an escalation trigger.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NudgeTone is the voice a goal's nudges are written in, derived from the
// user's communication-style preference at plan generation time.
type NudgeTone string

const (
	ToneGentle       NudgeTone = "gentle"
	ToneMotivational NudgeTone = "motivational"
	ToneDirect       NudgeTone = "direct"
	ToneScientific   NudgeTone = "scientific"
)

// Error variables for request validation and engine boundaries.
var (
	ErrEmptyUserID        = errors.New("user id cannot be empty")
	ErrInvalidPillar      = errors.New("invalid pillar identifier")
	ErrEmptyGoalID        = errors.New("goal id cannot be empty")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
	ErrPlanNotFound       = errors.New("care plan not found")
	ErrUserNotFound       = errors.New("user profile not found")
	ErrEmptyPhases        = errors.New("care plan must contain at least one phase")
)

// HealthGoal is one pillar-scoped goal inside a care-plan phase.
// Progress runs 0-100; status flips to completed when progress reaches 100
// and never reverts (completion is a ratchet).
type HealthGoal struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      Pillar     `json:"category"`
	Target        string     `json:"target"`   // free-text success condition
	Timeline      string     `json:"timeline"` // textual duration, e.g. "2 weeks"
	Progress      int        `json:"progress"`
	Status        GoalStatus `json:"status"`
	AssignedCoach string     `json:"assignedCoach"`
	NudgeTone     NudgeTone  `json:"nudgeTone"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CarePlanMilestone marks a phase objective. Achievement is one-way:
// isAchieved flips false→true once, achievedDate and celebrationMessage are
// stamped at that moment and never rewritten.
type CarePlanMilestone struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	TargetDate         time.Time  `json:"targetDate"`
	IsAchieved         bool       `json:"isAchieved"`
	AchievedDate       *time.Time `json:"achievedDate,omitempty"`
	CelebrationMessage string     `json:"celebrationMessage,omitempty"`
}

// ActivityRequirement is a declarative expectation attached to a phase.
// It is consumed descriptively by the nudge and escalation engines, never
// enforced as a hard failure.
type ActivityRequirement struct {
	Pillar    Pillar `json:"pillar"`
	Frequency string `json:"frequency"` // "daily" or "weekly"
	Target    int    `json:"target"`
}

// CarePlanPhase is one of the four fixed care-plan stages. Goal and
// milestone lists are mutated in place as progress comes in; the phase
// itself is created once at plan-generation time.
type CarePlanPhase struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	DurationWeeks int                   `json:"durationWeeks"`
	Goals         []HealthGoal          `json:"goals"`
	Milestones    []CarePlanMilestone   `json:"milestones"`
	Requirements  []ActivityRequirement `json:"activityRequirements"`
}

// TriggerConditions parameterizes an escalation trigger.
type TriggerConditions struct {
	Threshold  int      `json:"threshold"`
	TimeWindow string   `json:"timeWindow"` // "<n> hours|days|weeks"
	Severity   Severity `json:"severity"`
}

// EscalationTrigger is a named rule that, when its predicate holds against
// plan/activity state, requests caregiver notification. Triggers may be
// toggled inactive but are never deleted.
type EscalationTrigger struct {
	ID                string            `json:"id"`
	Type              TriggerType       `json:"type"`
	Conditions        TriggerConditions `json:"conditions"`
	TargetCaregivers  []string          `json:"targetCaregivers"` // empty = resolve by hierarchy
	EscalationMessage string            `json:"escalationMessage"`
	IsActive          bool              `json:"isActive"`
}

// CoachTeam assigns a primary coach plus one specialist per pillar.
// Coach ids are opaque; CarePath never calls into any coach service.
type CoachTeam struct {
	PrimaryCoach string            `json:"primaryCoach"`
	Specialists  map[Pillar]string `json:"specialists"`
}

// SpecialistFor returns the specialist coach for a pillar, falling back to
// the primary coach when no specialist is assigned.
func (t CoachTeam) SpecialistFor(p Pillar) string {
	if id, ok := t.Specialists[p]; ok && id != "" {
		return id
	}
	return t.PrimaryCoach
}

// CarePlan is the root aggregate: exactly four phases in fixed order
// (assessment, initiation, optimization, maintenance). CurrentPhase is a
// monotonically non-decreasing index into Phases and never skips a phase.
type CarePlan struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Pillars            []Pillar            `json:"pillars"`
	Phases             []CarePlanPhase     `json:"phases"`
	CurrentPhase       int                 `json:"currentPhase"`
	AssignedTeam       CoachTeam           `json:"assignedTeam"`
	EscalationTriggers []EscalationTrigger `json:"escalationTriggers"`
	Protocols          []string            `json:"protocols"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	NextReview         time.Time           `json:"nextReview"`
}

// ActivePhase returns the phase at CurrentPhase. Plans built by the
// generator always have four phases; an out-of-range index is clamped
// rather than panicking.
func (p *CarePlan) ActivePhase() *CarePlanPhase {
	if len(p.Phases) == 0 {
		return nil
	}
	idx := p.CurrentPhase
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.Phases) {
		idx = len(p.Phases) - 1
	}
	return &p.Phases[idx]
}
