// Package api provides HTTP handlers for CarePath endpoints.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/CarePath/internal/careplan"
	"github.com/BTreeMap/CarePath/internal/models"
)

func (s *Server) createPlanHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req models.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createPlanHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.createPlanHandler: validation failed", "error", err, "user_id", req.User.ID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	now := s.now()
	plan := s.generator.CreateCarePlan(req.User, req.CoachTeam, req.SelectedPillars, now)

	unlock := s.lockUser(req.User.ID)
	defer unlock()
	if err := s.store.SavePlan(plan); err != nil {
		slog.Error("Server.createPlanHandler: failed to save plan", "error", err, "user_id", req.User.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save care plan"))
		return
	}
	if err := s.store.SaveUser(req.User); err != nil {
		slog.Error("Server.createPlanHandler: failed to cache profile", "error", err, "user_id", req.User.ID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save user profile"))
		return
	}
	slog.Info("Server.createPlanHandler: plan created", "user_id", req.User.ID, "plan_id", plan.ID)
	writeJSONResponse(w, http.StatusCreated, models.Success(plan))
}

func (s *Server) getPlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	plan, err := s.store.GetPlan(userID)
	if errors.Is(err, models.ErrPlanNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Care plan not found"))
		return
	}
	if err != nil {
		slog.Error("Server.getPlanHandler: failed to load plan", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load care plan"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(plan))
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	userID := r.PathValue("userID")
	var req models.ProgressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.progressHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.progressHandler: validation failed", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	unlock := s.lockUser(userID)
	defer unlock()
	plan, err := s.store.GetPlan(userID)
	if errors.Is(err, models.ErrPlanNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Care plan not found"))
		return
	}
	if err != nil {
		slog.Error("Server.progressHandler: failed to load plan", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load care plan"))
		return
	}

	careplan.ApplyProgress(&plan, req.GoalID, req.Progress, s.now())
	if err := s.store.SavePlan(plan); err != nil {
		slog.Error("Server.progressHandler: failed to save plan", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save care plan"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(plan))
}

func (s *Server) activityHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req models.LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.activityHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	activity := req.Activity
	if activity.ID == "" {
		activity.ID = s.newActivityID()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = s.now()
	}
	if err := s.store.AddActivity(activity); err != nil {
		slog.Error("Server.activityHandler: failed to record activity", "error", err, "user_id", activity.UserID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to record activity"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(activity))
}

func (s *Server) setCaregiversHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	userID := r.PathValue("userID")
	var roster []models.Caregiver
	if err := json.NewDecoder(r.Body).Decode(&roster); err != nil {
		slog.Warn("Server.setCaregiversHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.store.SetCaregivers(userID, roster); err != nil {
		slog.Error("Server.setCaregiversHandler: failed to save roster", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save caregivers"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Caregivers updated", nil))
}

func (s *Server) getCaregiversHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	roster, err := s.store.GetCaregivers(userID)
	if err != nil {
		slog.Error("Server.getCaregiversHandler: failed to load roster", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load caregivers"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(roster))
}

func (s *Server) nudgesHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	userID := r.PathValue("userID")
	req, ok := s.decodeEvaluateRequest(w, r)
	if !ok {
		return
	}

	unlock := s.lockUser(userID)
	defer unlock()
	ctx, ok := s.loadEvaluationContext(w, userID, req)
	if !ok {
		return
	}

	nudges := s.nudgeEngine.GenerateNudges(ctx.user, &ctx.plan, ctx.team, ctx.recent, s.now())
	writeJSONResponse(w, http.StatusOK, models.Success(nudges))
}

func (s *Server) escalationsHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	userID := r.PathValue("userID")
	req, ok := s.decodeEvaluateRequest(w, r)
	if !ok {
		return
	}

	unlock := s.lockUser(userID)
	defer unlock()
	ctx, ok := s.loadEvaluationContext(w, userID, req)
	if !ok {
		return
	}

	result := s.escalations.Evaluate(&ctx.plan, ctx.user, ctx.recent, ctx.caregivers, s.now())
	s.recordAndDispatchAlerts(r.Context(), result, ctx.caregivers)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

func (s *Server) updatesHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	updates, err := s.store.CaregiverUpdates(userID)
	if err != nil {
		slog.Error("Server.updatesHandler: failed to load updates", "error", err, "user_id", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load caregiver updates"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(updates))
}

// decodeEvaluateRequest reads an optional EvaluateRequest body. An empty
// body is fine; the evaluation context then falls back to cached state.
func (s *Server) decodeEvaluateRequest(w http.ResponseWriter, r *http.Request) (models.EvaluateRequest, bool) {
	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		slog.Warn("Server.decodeEvaluateRequest: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return req, false
	}
	return req, true
}
