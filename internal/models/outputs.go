// Package models defines the transient outputs the engines emit: nudges for
// the end user and caregiver updates for the notification layer.
package models

import "time"

// NudgeType classifies a nudge for the delivery layer.
type NudgeType string

const (
	NudgeReminder             NudgeType = "reminder"
	NudgeEncouragement        NudgeType = "encouragement"
	NudgeSocialProof          NudgeType = "social_proof"
	NudgeGamification         NudgeType = "gamification"
	NudgeEducation            NudgeType = "education"
	NudgeCarePlanCheck        NudgeType = "care_plan_check"
	NudgeMilestoneCelebration NudgeType = "milestone_celebration"
)

// NudgePriority orders nudges for final selection.
type NudgePriority string

const (
	PriorityLow    NudgePriority = "low"
	PriorityMedium NudgePriority = "medium"
	PriorityHigh   NudgePriority = "high"
	PriorityUrgent NudgePriority = "urgent"
)

// priorityRank maps priorities to sortable weights, highest first.
var priorityRank = map[NudgePriority]int{
	PriorityUrgent: 3,
	PriorityHigh:   2,
	PriorityMedium: 1,
	PriorityLow:    0,
}

// Rank returns the sortable weight of a priority (urgent highest).
// Unknown priorities rank below low.
func (p NudgePriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// NudgeTrigger describes what condition produced a nudge.
type NudgeTrigger struct {
	Kind      string `json:"kind"` // time_based, goal_progress, pattern, milestone
	Condition string `json:"condition"`
}

// NudgeTiming tells the delivery layer when and how often a nudge may go out.
type NudgeTiming struct {
	PreferredTime     string `json:"preferredTime,omitempty"` // "HH:MM" local
	Timezone          string `json:"timezone,omitempty"`
	RespectQuietHours bool   `json:"respectQuietHours"`
	MaxPerDay         int    `json:"maxPerDay"`
}

// Nudge is a short, timed suggestion surfaced to the end user. Nudges are
// generated per evaluation cycle and never persisted by the engines.
type Nudge struct {
	ID            string        `json:"id"`
	Type          NudgeType     `json:"type"`
	Title         string        `json:"title"`
	Message       string        `json:"message"`
	Trigger       NudgeTrigger  `json:"trigger"`
	Timing        NudgeTiming   `json:"timing"`
	Priority      NudgePriority `json:"priority"`
	Pillar        Pillar        `json:"pillar,omitempty"`
	AssignedCoach string        `json:"assignedCoach"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// UpdateType classifies a caregiver update.
type UpdateType string

const (
	UpdateProgress      UpdateType = "progress"
	UpdateMilestone     UpdateType = "milestone"
	UpdateConcern       UpdateType = "concern"
	UpdateCelebration   UpdateType = "celebration"
	UpdateAlert         UpdateType = "alert"
	UpdateEncouragement UpdateType = "encouragement"
)

// UpdateData carries the trigger provenance of an alert so the notification
// layer and admin dashboards can group by rule.
type UpdateData struct {
	TriggerID   string      `json:"triggerId"`
	TriggerType TriggerType `json:"triggerType"`
	Severity    Severity    `json:"severity"`
}

// CaregiverUpdate is one alert addressed to one caregiver.
type CaregiverUpdate struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CaregiverID string     `json:"caregiverId"`
	Type        UpdateType `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Data        UpdateData `json:"data"`
	IsRead      bool       `json:"isRead"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TriggeredEscalation records that one trigger fired, which caregivers were
// resolved for it, and whether it went unmet (fired with no eligible
// caregivers; surfaced for the admin layer, not an error).
type TriggeredEscalation struct {
	TriggerID    string      `json:"triggerId"`
	Type         TriggerType `json:"type"`
	Severity     Severity    `json:"severity"`
	CaregiverIDs []string    `json:"caregiverIds"`
	Unmet        bool        `json:"unmet"`
}

// EscalationResult is the full output of one escalation evaluation pass.
type EscalationResult struct {
	TriggeredEscalations []TriggeredEscalation `json:"triggeredEscalations"`
	UrgentAlerts         []CaregiverUpdate     `json:"urgentAlerts"`
	RecommendedActions   []string              `json:"recommendedActions"`
}
