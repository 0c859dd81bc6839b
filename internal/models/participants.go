// Package models defines data structures for the external collaborators the
// engines consume: users, activity logs, and the caregiver directory.
package models

import "time"

// CommunicationStyle is the user's stated preference for how coaching
// messages should be phrased.
type CommunicationStyle string

const (
	StyleGentle      CommunicationStyle = "gentle"
	StyleEncouraging CommunicationStyle = "encouraging"
	StyleDirect      CommunicationStyle = "direct"
	StyleSupportive  CommunicationStyle = "supportive"
)

// User is the slice of the profile the engines need. CarePath never owns
// profile data; this record arrives from the profile provider.
type User struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	CommunicationStyle CommunicationStyle `json:"communicationStyle"`
	Timezone           string             `json:"timezone"` // IANA name, e.g. "America/New_York"
	QuietHours         *QuietHours        `json:"quietHours,omitempty"`
}

// ActivityLog is a read-only record of one logged user activity.
// Value semantics depend on Type: mood is a 1-5 rating, sleep is hours,
// exercise is minutes.
type ActivityLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"` // nutrition, exercise, mood, sleep, connection, substance
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Timestamp   time.Time `json:"timestamp"`
	Tags        []string  `json:"tags,omitempty"`
}

// Relationship describes how a caregiver is related to the user.
type Relationship string

const (
	RelationshipFamily             Relationship = "family"
	RelationshipFriend             Relationship = "friend"
	RelationshipHealthcareProvider Relationship = "healthcare_provider"
	RelationshipPhysician          Relationship = "physician"
	RelationshipNurse              Relationship = "nurse"
	RelationshipCoach              Relationship = "coach"
	RelationshipOther              Relationship = "other"
)

// EscalationLevel places a caregiver in the escalation hierarchy.
type EscalationLevel string

const (
	LevelPrimary   EscalationLevel = "primary"
	LevelSecondary EscalationLevel = "secondary"
	LevelEmergency EscalationLevel = "emergency"
)

// QuietHours is a daily do-not-disturb window in "HH:MM" local time.
// Start may be later than End, meaning the window wraps past midnight
// (e.g. 22:00-07:00).
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CaregiverPermissions gates what a caregiver may see and receive.
type CaregiverPermissions struct {
	ReceiveAlerts bool `json:"receiveAlerts"`
	ViewProgress  bool `json:"viewProgress"`
}

// CommunicationPreferences holds a caregiver's contact policy.
type CommunicationPreferences struct {
	QuietHours       *QuietHours `json:"quietHours,omitempty"`
	PreferredChannel string      `json:"preferredChannel,omitempty"` // sms, email, push
}

// Caregiver is one entry in the user's caregiver directory.
type Caregiver struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Phone           string                   `json:"phone,omitempty"`
	Relationship    Relationship             `json:"relationship"`
	EscalationLevel EscalationLevel          `json:"escalationLevel"`
	IsActive        bool                     `json:"isActive"`
	Permissions     CaregiverPermissions     `json:"permissions"`
	Preferences     CommunicationPreferences `json:"communicationPreferences"`
}
