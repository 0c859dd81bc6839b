// Package api implements the periodic evaluation pass and the shared
// evaluation-context plumbing used by the on-demand endpoints.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/CarePath/internal/messaging"
	"github.com/BTreeMap/CarePath/internal/models"
)

// evaluationContext is everything an engine pass needs for one user.
type evaluationContext struct {
	user       models.User
	plan       models.CarePlan
	team       models.CoachTeam
	recent     []models.ActivityLog
	caregivers []models.Caregiver
}

// loadEvaluationContext assembles the engine inputs for a user. Request
// overrides win; otherwise the cached profile and the plan's assigned team
// are used. Writes the HTTP error response itself on failure.
func (s *Server) loadEvaluationContext(w http.ResponseWriter, userID string, req models.EvaluateRequest) (evaluationContext, bool) {
	var ctx evaluationContext

	plan, err := s.store.GetPlan(userID)
	if errors.Is(err, models.ErrPlanNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Care plan not found"))
		return ctx, false
	}
	if err != nil {
		slog.Error("Server.loadEvaluationContext: failed to load plan", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load care plan"))
		return ctx, false
	}
	ctx.plan = plan

	ctx.user = req.User
	if ctx.user.ID == "" {
		cached, err := s.store.GetUser(userID)
		if err != nil {
			// Missing profile is not fatal; engines degrade to a bare id.
			slog.Debug("Server.loadEvaluationContext: no cached profile", "user_id", userID)
			cached = models.User{ID: userID}
		}
		ctx.user = cached
	}

	ctx.team = req.CoachTeam
	if ctx.team.PrimaryCoach == "" && len(ctx.team.Specialists) == 0 {
		ctx.team = plan.AssignedTeam
	}

	since := s.now().Add(-evaluationActivityWindow)
	recent, err := s.store.RecentActivity(userID, since)
	if err != nil {
		slog.Error("Server.loadEvaluationContext: failed to load activity", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load activity history"))
		return ctx, false
	}
	ctx.recent = recent

	caregivers, err := s.store.GetCaregivers(userID)
	if err != nil {
		slog.Error("Server.loadEvaluationContext: failed to load caregivers", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load caregivers"))
		return ctx, false
	}
	ctx.caregivers = caregivers
	return ctx, true
}

// recordAndDispatchAlerts persists every produced alert and sends it over
// the messaging service when the target caregiver has a reachable number.
// Delivery failures are logged, never surfaced to the evaluation result.
func (s *Server) recordAndDispatchAlerts(ctx context.Context, result models.EscalationResult, caregivers []models.Caregiver) {
	byID := make(map[string]models.Caregiver, len(caregivers))
	for _, cg := range caregivers {
		byID[cg.ID] = cg
	}

	for _, alert := range result.UrgentAlerts {
		if err := s.store.AddCaregiverUpdate(alert); err != nil {
			slog.Error("Server.recordAndDispatchAlerts: failed to record alert", "error", err, "alert_id", alert.ID)
		}

		cg, ok := byID[alert.CaregiverID]
		if !ok || cg.Phone == "" {
			slog.Debug("Server.recordAndDispatchAlerts: no reachable number, alert recorded only", "caregiver_id", alert.CaregiverID)
			continue
		}
		to, err := s.msgService.ValidateAndCanonicalizeRecipient(cg.Phone)
		if err != nil {
			slog.Warn("Server.recordAndDispatchAlerts: invalid caregiver number", "error", err, "caregiver_id", cg.ID)
			continue
		}
		if err := s.msgService.SendMessage(ctx, to, messaging.FormatCaregiverUpdate(alert)); err != nil {
			slog.Error("Server.recordAndDispatchAlerts: delivery failed", "error", err, "caregiver_id", cg.ID)
			continue
		}
		slog.Info("Server.recordAndDispatchAlerts: alert delivered", "caregiver_id", cg.ID, "type", alert.Type, "severity", alert.Data.Severity)
	}
}

// runEvaluationPass re-evaluates nudges and escalations for every stored
// plan. Invoked by the cron scheduler; per-user work is serialized through
// the same locks the HTTP handlers take.
func (s *Server) runEvaluationPass() {
	userIDs, err := s.store.ListPlanUserIDs()
	if err != nil {
		slog.Error("Server.runEvaluationPass: failed to list plans", "error", err)
		return
	}
	slog.Info("Server.runEvaluationPass: starting", "users", len(userIDs))
	for _, userID := range userIDs {
		s.evaluateUser(userID)
	}
}

// evaluateUser runs one user's nudge and escalation pass.
func (s *Server) evaluateUser(userID string) {
	unlock := s.lockUser(userID)
	defer unlock()

	plan, err := s.store.GetPlan(userID)
	if err != nil {
		slog.Error("Server.evaluateUser: failed to load plan", "error", err, "user_id", userID)
		return
	}
	user, err := s.store.GetUser(userID)
	if err != nil {
		user = models.User{ID: userID}
	}
	now := s.now()
	recent, err := s.store.RecentActivity(userID, now.Add(-evaluationActivityWindow))
	if err != nil {
		slog.Error("Server.evaluateUser: failed to load activity", "error", err, "user_id", userID)
		return
	}
	caregivers, err := s.store.GetCaregivers(userID)
	if err != nil {
		slog.Error("Server.evaluateUser: failed to load caregivers", "error", err, "user_id", userID)
		return
	}

	nudges := s.nudgeEngine.GenerateNudges(user, &plan, plan.AssignedTeam, recent, now)
	if len(nudges) > 0 {
		// Nudges are surfaced to the in-app/push layer; the pass just
		// records how much pressure the plan is generating.
		slog.Info("Server.evaluateUser: nudges generated", "user_id", userID, "count", len(nudges), "top_priority", nudges[0].Priority)
	}

	result := s.escalations.Evaluate(&plan, user, recent, caregivers, now)
	if len(result.TriggeredEscalations) > 0 {
		slog.Warn("Server.evaluateUser: escalations triggered", "user_id", userID, "count", len(result.TriggeredEscalations))
	}
	s.recordAndDispatchAlerts(context.Background(), result, caregivers)
}
