// Package catalog holds the static lifestyle-medicine content CarePath's
// engines are parameterized with: phase definitions, pillar goal templates,
// tone mappings, timed nudge templates, escalation keyword lists, and
// per-trigger recommended actions.
//
// A Catalog is read-only after construction and is injected into the
// engines explicitly; there are no package-level mutable registries.
package catalog

import (
	"github.com/BTreeMap/CarePath/internal/models"
)

// PhaseKey names one of the four fixed care-plan phases.
type PhaseKey string

const (
	PhaseAssessment   PhaseKey = "assessment"
	PhaseInitiation   PhaseKey = "initiation"
	PhaseOptimization PhaseKey = "optimization"
	PhaseMaintenance  PhaseKey = "maintenance"
)

// PhaseDef describes one care-plan phase and its activity expectations.
type PhaseDef struct {
	Key           PhaseKey
	Name          string
	Description   string
	DurationWeeks int
	ReqFrequency  string // activity requirement cadence for this phase
	ReqTarget     int    // nominal numeric target per cadence period
}

// GoalTemplate is the fixed text for one pillar x phase goal.
type GoalTemplate struct {
	Title       string
	Description string
	Target      string
	Timeline    string
}

// TimedNudge is one row of the fixed time-based nudge table. A template
// fires when the evaluation time is within the firing tolerance of
// PreferredTime. Pillar may be empty, meaning the nudge is voiced by the
// primary coach.
type TimedNudge struct {
	Name          string
	Type          models.NudgeType
	Pillar        models.Pillar
	Title         string
	Message       string // may contain {userName}
	PreferredTime string // "HH:MM"
	Recurrence    string // daily, weekly, as_needed
	Priority      models.NudgePriority
	MaxPerDay     int
}

// Catalog bundles all static content. Construct with Default and treat as
// immutable.
type Catalog struct {
	phases            []PhaseDef
	goals             map[models.Pillar]map[PhaseKey]GoalTemplate
	tones             map[models.CommunicationStyle]models.NudgeTone
	timedNudges       []TimedNudge
	emergencyKeywords []string
	requestKeywords   []string
	actions           map[models.TriggerType][]string
	genericActions    []string
}

// Phases returns the four phase definitions in plan order.
func (c *Catalog) Phases() []PhaseDef {
	return c.phases
}

// GoalTemplateFor looks up the goal template for a pillar and phase. The
// second return is false when no template exists for the combination; the
// generator then simply emits no goal for that pillar in that phase.
func (c *Catalog) GoalTemplateFor(p models.Pillar, phase PhaseKey) (GoalTemplate, bool) {
	byPhase, ok := c.goals[p]
	if !ok {
		return GoalTemplate{}, false
	}
	tpl, ok := byPhase[phase]
	return tpl, ok
}

// ToneFor maps a user's communication style to the nudge tone used when
// instantiating that user's goals. Unknown styles fall back to motivational.
func (c *Catalog) ToneFor(style models.CommunicationStyle) models.NudgeTone {
	if tone, ok := c.tones[style]; ok {
		return tone
	}
	return models.ToneMotivational
}

// TimedNudges returns the fixed time-based nudge template table.
func (c *Catalog) TimedNudges() []TimedNudge {
	return c.timedNudges
}

// EmergencyKeywords returns the substrings that mark an activity description
// as an emergency pattern.
func (c *Catalog) EmergencyKeywords() []string {
	return c.emergencyKeywords
}

// RequestKeywords returns the substrings that mark an activity description
// as an explicit escalation request.
func (c *Catalog) RequestKeywords() []string {
	return c.requestKeywords
}

// ActionsFor returns the recommended-action list for a trigger type.
// Unknown types get the generic fallback list.
func (c *Catalog) ActionsFor(t models.TriggerType) []string {
	if a, ok := c.actions[t]; ok {
		return a
	}
	return c.genericActions
}

// Default builds the standard CarePath catalog.
func Default() *Catalog {
	return &Catalog{
		phases:            defaultPhases,
		goals:             defaultGoalTemplates,
		tones:             defaultTones,
		timedNudges:       defaultTimedNudges,
		emergencyKeywords: defaultEmergencyKeywords,
		requestKeywords:   defaultRequestKeywords,
		actions:           defaultActions,
		genericActions:    defaultGenericActions,
	}
}

var defaultPhases = []PhaseDef{
	{
		Key:           PhaseAssessment,
		Name:          "Assessment",
		Description:   "Establish baselines and understand current habits across each pillar.",
		DurationWeeks: 2,
		ReqFrequency:  "weekly",
		ReqTarget:     3,
	},
	{
		Key:           PhaseInitiation,
		Name:          "Initiation",
		Description:   "Start small, consistent changes in daily routine.",
		DurationWeeks: 4,
		ReqFrequency:  "daily",
		ReqTarget:     1,
	},
	{
		Key:           PhaseOptimization,
		Name:          "Optimization",
		Description:   "Deepen and refine habits, working toward personal targets.",
		DurationWeeks: 8,
		ReqFrequency:  "daily",
		ReqTarget:     1,
	},
	{
		Key:           PhaseMaintenance,
		Name:          "Maintenance",
		Description:   "Sustain gains and build resilience against relapse.",
		DurationWeeks: 12,
		ReqFrequency:  "daily",
		ReqTarget:     1,
	},
}

var defaultTones = map[models.CommunicationStyle]models.NudgeTone{
	models.StyleGentle:      models.ToneGentle,
	models.StyleEncouraging: models.ToneMotivational,
	models.StyleDirect:      models.ToneDirect,
	models.StyleSupportive:  models.ToneScientific,
}

// defaultGoalTemplates is the fixed 6x4 pillar-by-phase goal table.
var defaultGoalTemplates = map[models.Pillar]map[PhaseKey]GoalTemplate{
	models.PillarOptimalNutrition: {
		PhaseAssessment: {
			Title:       "Map your current eating patterns",
			Description: "Keep a simple food log to understand what, when, and why you eat.",
			Target:      "Log meals on at least 5 days",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Add one vegetable serving daily",
			Description: "Build the habit of including vegetables at one meal every day.",
			Target:      "One added serving per day on most days",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Shift toward a whole-food plate",
			Description: "Make half of most plates vegetables, fruits, and whole grains.",
			Target:      "Half-plate standard at 2 meals per day",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Keep your nutrition rhythm",
			Description: "Maintain your eating pattern and plan around disruptions like travel.",
			Target:      "Hold your pattern through at least one disruption",
			Timeline:    "12 weeks",
		},
	},
	models.PillarPhysicalActivity: {
		PhaseAssessment: {
			Title:       "Measure your movement baseline",
			Description: "Track daily steps or active minutes to see where you start.",
			Target:      "Record activity on at least 5 days",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Take a 10-minute daily walk",
			Description: "Anchor a short walk to an existing routine, same time each day.",
			Target:      "10 minutes of walking on most days",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Reach 150 active minutes weekly",
			Description: "Grow toward the weekly aerobic guideline, adding strength twice a week.",
			Target:      "150 minutes per week plus 2 strength sessions",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Protect your training habit",
			Description: "Keep your weekly volume and have a fallback for low-energy days.",
			Target:      "No more than one missed week per month",
			Timeline:    "12 weeks",
		},
	},
	models.PillarStressManagement: {
		PhaseAssessment: {
			Title:       "Identify your stress signals",
			Description: "Note daily stress levels and what situations drive them.",
			Target:      "Rate stress on at least 5 days",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Practice 5 minutes of breathing",
			Description: "Use a short daily breathing or grounding exercise.",
			Target:      "5 minutes of practice on most days",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Build a full relaxation routine",
			Description: "Extend practice to 15 minutes and apply techniques in stressful moments.",
			Target:      "15 minutes daily plus one in-the-moment use per week",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Keep stress skills sharp",
			Description: "Maintain your routine and review triggers monthly.",
			Target:      "Sustained daily practice with monthly review",
			Timeline:    "12 weeks",
		},
	},
	models.PillarRestorativeSleep: {
		PhaseAssessment: {
			Title:       "Chart your sleep habits",
			Description: "Record bed time, wake time, and how rested you feel.",
			Target:      "Log sleep on at least 5 nights",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Set a consistent wake time",
			Description: "Wake at the same time every day, including weekends.",
			Target:      "Wake time within 30 minutes on most days",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Build a wind-down routine",
			Description: "Create a 30-minute screen-free wind-down and target 7-9 hours in bed.",
			Target:      "Wind-down routine 5 nights per week",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Defend your sleep window",
			Description: "Keep your schedule steady and recover quickly after off nights.",
			Target:      "Average 7+ hours with a stable schedule",
			Timeline:    "12 weeks",
		},
	},
	models.PillarConnectedness: {
		PhaseAssessment: {
			Title:       "Map your support network",
			Description: "List the people you connect with and how often you reach them.",
			Target:      "Complete a connection inventory",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Reach out once a week",
			Description: "Make one meaningful contact per week with someone who matters to you.",
			Target:      "One real conversation per week",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Deepen two key relationships",
			Description: "Schedule regular shared time with the people closest to you.",
			Target:      "Two recurring connection commitments",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Stay connected by default",
			Description: "Keep your connection rhythm and notice early signs of withdrawal.",
			Target:      "Sustained weekly contact across your network",
			Timeline:    "12 weeks",
		},
	},
	models.PillarSubstanceAvoidance: {
		PhaseAssessment: {
			Title:       "Take an honest usage inventory",
			Description: "Track alcohol, nicotine, or other substance use and its contexts.",
			Target:      "Complete a 2-week usage log",
			Timeline:    "2 weeks",
		},
		PhaseInitiation: {
			Title:       "Set and hold a reduction limit",
			Description: "Pick a concrete weekly limit and identify your highest-risk situations.",
			Target:      "Stay within your limit each week",
			Timeline:    "4 weeks",
		},
		PhaseOptimization: {
			Title:       "Replace the habit loop",
			Description: "Substitute alternative routines in your trigger situations.",
			Target:      "An alternative response for each major trigger",
			Timeline:    "8 weeks",
		},
		PhaseMaintenance: {
			Title:       "Maintain your boundaries",
			Description: "Hold your limits and have a plan for lapses.",
			Target:      "Sustained limits with a written lapse plan",
			Timeline:    "12 weeks",
		},
	},
}

var defaultTimedNudges = []TimedNudge{
	{
		Name:          "morning_checkin",
		Type:          models.NudgeCarePlanCheck,
		Title:         "Morning check-in",
		Message:       "Good morning {userName}! What's one thing you'll do for your health today?",
		PreferredTime: "09:00",
		Recurrence:    "daily",
		Priority:      models.PriorityMedium,
		MaxPerDay:     1,
	},
	{
		Name:          "hydration_reminder",
		Type:          models.NudgeReminder,
		Pillar:        models.PillarOptimalNutrition,
		Title:         "Hydration break",
		Message:       "{userName}, a glass of water now keeps your energy steady through the morning.",
		PreferredTime: "10:30",
		Recurrence:    "daily",
		Priority:      models.PriorityLow,
		MaxPerDay:     2,
	},
	{
		Name:          "midday_movement",
		Type:          models.NudgeReminder,
		Pillar:        models.PillarPhysicalActivity,
		Title:         "Midday movement",
		Message:       "Time to stretch your legs, {userName} — even 5 minutes counts.",
		PreferredTime: "12:30",
		Recurrence:    "daily",
		Priority:      models.PriorityMedium,
		MaxPerDay:     1,
	},
	{
		Name:          "afternoon_reset",
		Type:          models.NudgeReminder,
		Pillar:        models.PillarStressManagement,
		Title:         "Afternoon reset",
		Message:       "{userName}, take three slow breaths before your next task.",
		PreferredTime: "15:00",
		Recurrence:    "daily",
		Priority:      models.PriorityLow,
		MaxPerDay:     1,
	},
	{
		Name:          "connection_prompt",
		Type:          models.NudgeReminder,
		Pillar:        models.PillarConnectedness,
		Title:         "Reach out",
		Message:       "{userName}, who haven't you talked to in a while? A quick message counts.",
		PreferredTime: "18:00",
		Recurrence:    "weekly",
		Priority:      models.PriorityLow,
		MaxPerDay:     1,
	},
	{
		Name:          "winddown_reminder",
		Type:          models.NudgeReminder,
		Pillar:        models.PillarRestorativeSleep,
		Title:         "Wind-down time",
		Message:       "Screens off soon, {userName} — your wind-down routine starts in 30 minutes.",
		PreferredTime: "21:00",
		Recurrence:    "daily",
		Priority:      models.PriorityMedium,
		MaxPerDay:     1,
	},
}

var defaultEmergencyKeywords = []string{
	"emergency",
	"suicide",
	"suicidal",
	"chest pain",
	"can't breathe",
	"cannot breathe",
	"overdose",
	"severe pain",
}

var defaultRequestKeywords = []string{
	"contact my doctor",
	"call my doctor",
	"emergency contact",
	"contact my caregiver",
	"need help now",
}

var defaultActions = map[models.TriggerType][]string{
	models.TriggerNoEngagement: {
		"Reach out to the user through their preferred channel",
		"Review recent nudge delivery for failures",
		"Offer to simplify or pause current goals",
		"Schedule a check-in call within 48 hours",
	},
	models.TriggerMissedGoals: {
		"Review goal difficulty with the user",
		"Break stalled goals into smaller steps",
		"Confirm the assigned coach is a good fit",
		"Consider extending the current phase timeline",
	},
	models.TriggerHealthDecline: {
		"Encourage the user to contact their physician",
		"Share recent mood, sleep, and activity trends with the care team",
		"Increase check-in frequency for the next two weeks",
		"Verify medication or treatment adherence where applicable",
	},
	models.TriggerEmergencyPattern: {
		"Contact emergency-level caregivers immediately",
		"Provide crisis hotline information to the user",
		"Do not rely on automated follow-up; require human confirmation",
		"Document the triggering activity entries for the care team",
	},
	models.TriggerUserRequest: {
		"Honor the request promptly and confirm receipt to the user",
		"Route the request to the named contact",
		"Log the request for the care team",
		"Follow up with the user within 24 hours",
	},
}

var defaultGenericActions = []string{
	"Notify the care team for manual review",
	"Check in with the user through their preferred channel",
	"Document the event for follow-up",
}
