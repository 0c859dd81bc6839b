// Package models defines request payloads and the JSON envelope for the
// CarePath HTTP API.
package models

// CreatePlanRequest asks the generator to build and persist a care plan.
type CreatePlanRequest struct {
	User            User      `json:"user"`
	CoachTeam       CoachTeam `json:"coachTeam"`
	SelectedPillars []Pillar  `json:"selectedPillars,omitempty"` // empty = all six
}

// Validate checks the request before it reaches the generator.
func (r *CreatePlanRequest) Validate() error {
	if r.User.ID == "" {
		return ErrEmptyUserID
	}
	for _, p := range r.SelectedPillars {
		if !IsValidPillar(p) {
			return ErrInvalidPillar
		}
	}
	return nil
}

// ProgressUpdateRequest applies a progress value to one goal in the plan's
// current phase.
type ProgressUpdateRequest struct {
	GoalID   string `json:"goalId"`
	Progress int    `json:"progress"`
}

// Validate enforces the 0-100 progress range at the API boundary; the
// tracker itself stores whatever it is given.
func (r *ProgressUpdateRequest) Validate() error {
	if r.GoalID == "" {
		return ErrEmptyGoalID
	}
	if r.Progress < 0 || r.Progress > 100 {
		return ErrProgressOutOfRange
	}
	return nil
}

// LogActivityRequest appends one activity record for a user.
type LogActivityRequest struct {
	Activity ActivityLog `json:"activity"`
}

// Validate checks the embedded activity record.
func (r *LogActivityRequest) Validate() error {
	if r.Activity.UserID == "" {
		return ErrEmptyUserID
	}
	return nil
}

// EvaluateRequest carries the user context for a nudge or escalation pass.
type EvaluateRequest struct {
	User      User      `json:"user"`
	CoachTeam CoachTeam `json:"coachTeam"`
}

// APIStatus represents the status field of an API response.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse is the uniform JSON envelope returned by every endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success wraps result data in an ok envelope.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage wraps result data in an ok envelope with a message.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error builds an error envelope with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
