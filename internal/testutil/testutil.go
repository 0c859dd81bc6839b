// Package testutil provides common test utilities and helpers for CarePath tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BTreeMap/CarePath/internal/api"
	"github.com/BTreeMap/CarePath/internal/careplan"
	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/messaging"
	"github.com/BTreeMap/CarePath/internal/models"
	"github.com/BTreeMap/CarePath/internal/scheduler"
	"github.com/BTreeMap/CarePath/internal/store"
	"github.com/BTreeMap/CarePath/internal/util"
)

// FixedNow is a Monday noon UTC reference time used across tests so engine
// output is reproducible.
func FixedNow() time.Time {
	return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
}

// TestUser returns a standard user fixture.
func TestUser() models.User {
	return models.User{
		ID:                 "user-1",
		Name:               "Jordan",
		CommunicationStyle: models.StyleEncouraging,
		Timezone:           "UTC",
	}
}

// TestTeam returns a coach team with a distinct specialist per pillar.
func TestTeam() models.CoachTeam {
	return models.CoachTeam{
		PrimaryCoach: "coach-primary",
		Specialists: map[models.Pillar]string{
			models.PillarOptimalNutrition:   "coach-nutrition",
			models.PillarPhysicalActivity:   "coach-activity",
			models.PillarStressManagement:   "coach-stress",
			models.PillarRestorativeSleep:   "coach-sleep",
			models.PillarConnectedness:      "coach-connection",
			models.PillarSubstanceAvoidance: "coach-substance",
		},
	}
}

// NewTestPlan generates a full six-pillar plan with sequential ids at
// FixedNow.
func NewTestPlan() models.CarePlan {
	gen := careplan.NewGenerator(catalog.Default(), util.SequentialIDSource("id"))
	return gen.CreateCarePlan(TestUser(), TestTeam(), nil, FixedNow())
}

// FamilyCaregiver returns an active family caregiver with alert permission
// and no quiet hours.
func FamilyCaregiver() models.Caregiver {
	return models.Caregiver{
		ID:              "cg-family",
		Name:            "Sam",
		Phone:           "+15550001111",
		Relationship:    models.RelationshipFamily,
		EscalationLevel: models.LevelPrimary,
		IsActive:        true,
		Permissions:     models.CaregiverPermissions{ReceiveAlerts: true, ViewProgress: true},
	}
}

// NewTestServer creates an API server over in-memory dependencies, pinned
// to FixedNow. The mock messaging service is returned for send assertions.
func NewTestServer() (*api.Server, *store.InMemoryStore, *messaging.MockService) {
	st := store.NewInMemoryStore()
	msg := messaging.NewMockService()
	sched := scheduler.NewScheduler()
	srv := api.NewServer(st, msg, sched, catalog.Default(), FixedNow)
	return srv, st, msg
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes a JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}
	return response
}

// CreateHTTPRequest creates an HTTP request with an optional JSON body.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	return req
}
