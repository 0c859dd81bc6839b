package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/BTreeMap/CarePath/internal/models"
)

var storeNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func TestInMemoryStore_PlanRoundtrip(t *testing.T) {
	st := NewInMemoryStore()

	if _, err := st.GetPlan("user-1"); !errors.Is(err, models.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}

	plan := models.CarePlan{ID: "plan-1", UserID: "user-1", Title: "Jordan's Lifestyle Care Plan", CurrentPhase: 1}
	if err := st.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	got, err := st.GetPlan("user-1")
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if !reflect.DeepEqual(got, plan) {
		t.Errorf("roundtrip mismatch: got %+v", got)
	}

	// Save replaces.
	plan.CurrentPhase = 2
	if err := st.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan replace: %v", err)
	}
	got, _ = st.GetPlan("user-1")
	if got.CurrentPhase != 2 {
		t.Errorf("expected replaced plan, got phase %d", got.CurrentPhase)
	}
}

func TestInMemoryStore_ListPlanUserIDsSorted(t *testing.T) {
	st := NewInMemoryStore()
	for _, id := range []string{"charlie", "alice", "bob"} {
		if err := st.SavePlan(models.CarePlan{ID: "plan-" + id, UserID: id}); err != nil {
			t.Fatalf("SavePlan(%s): %v", id, err)
		}
	}
	ids, err := st.ListPlanUserIDs()
	if err != nil {
		t.Fatalf("ListPlanUserIDs: %v", err)
	}
	want := []string{"alice", "bob", "charlie"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected sorted ids %v, got %v", want, ids)
	}
}

func TestInMemoryStore_UserRoundtrip(t *testing.T) {
	st := NewInMemoryStore()

	if _, err := st.GetUser("user-1"); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	user := models.User{ID: "user-1", Name: "Jordan", Timezone: "UTC"}
	if err := st.SaveUser(user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, err := st.GetUser("user-1")
	if err != nil || !reflect.DeepEqual(got, user) {
		t.Errorf("roundtrip mismatch: %+v, err=%v", got, err)
	}
}

func TestInMemoryStore_RecentActivity(t *testing.T) {
	st := NewInMemoryStore()
	entries := []models.ActivityLog{
		{ID: "a1", UserID: "user-1", Type: "mood", Timestamp: storeNow.Add(-48 * time.Hour)},
		{ID: "a2", UserID: "user-1", Type: "sleep", Timestamp: storeNow.Add(-2 * time.Hour)},
		{ID: "a3", UserID: "user-1", Type: "exercise", Timestamp: storeNow.Add(-24 * time.Hour)},
		{ID: "a4", UserID: "user-2", Type: "mood", Timestamp: storeNow.Add(-time.Hour)},
	}
	for _, a := range entries {
		if err := st.AddActivity(a); err != nil {
			t.Fatalf("AddActivity(%s): %v", a.ID, err)
		}
	}

	got, err := st.RecentActivity("user-1", storeNow.Add(-36*time.Hour))
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	// a1 is outside the window, a4 belongs to another user; oldest first.
	if len(got) != 2 || got[0].ID != "a3" || got[1].ID != "a2" {
		t.Errorf("unexpected result: %+v", got)
	}

	// The cutoff is exclusive.
	got, _ = st.RecentActivity("user-1", storeNow.Add(-24*time.Hour))
	if len(got) != 1 || got[0].ID != "a2" {
		t.Errorf("expected only a2 past an exact-cutoff boundary, got %+v", got)
	}
}

func TestInMemoryStore_CaregiverRoster(t *testing.T) {
	st := NewInMemoryStore()

	empty, err := st.GetCaregivers("user-1")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty roster, got %+v, err=%v", empty, err)
	}

	roster := []models.Caregiver{
		{ID: "cg-1", Name: "Sam", Relationship: models.RelationshipFamily, IsActive: true},
		{ID: "cg-2", Name: "Dr. Lee", Relationship: models.RelationshipPhysician, IsActive: true},
	}
	if err := st.SetCaregivers("user-1", roster); err != nil {
		t.Fatalf("SetCaregivers: %v", err)
	}
	got, err := st.GetCaregivers("user-1")
	if err != nil {
		t.Fatalf("GetCaregivers: %v", err)
	}
	if !reflect.DeepEqual(got, roster) {
		t.Errorf("roster mismatch: %+v", got)
	}

	// The returned slice is a copy; mutating it must not leak back.
	got[0].Name = "changed"
	again, _ := st.GetCaregivers("user-1")
	if again[0].Name != "Sam" {
		t.Error("stored roster aliased by the returned slice")
	}

	// Set replaces the whole roster.
	if err := st.SetCaregivers("user-1", roster[:1]); err != nil {
		t.Fatalf("SetCaregivers replace: %v", err)
	}
	again, _ = st.GetCaregivers("user-1")
	if len(again) != 1 {
		t.Errorf("expected replaced roster of 1, got %d", len(again))
	}
}

func TestInMemoryStore_CaregiverUpdates(t *testing.T) {
	st := NewInMemoryStore()

	first := models.CaregiverUpdate{ID: "u1", UserID: "user-1", CaregiverID: "cg-1", Type: models.UpdateConcern, CreatedAt: storeNow}
	second := models.CaregiverUpdate{ID: "u2", UserID: "user-1", CaregiverID: "cg-2", Type: models.UpdateAlert, CreatedAt: storeNow.Add(time.Hour)}
	for _, u := range []models.CaregiverUpdate{first, second} {
		if err := st.AddCaregiverUpdate(u); err != nil {
			t.Fatalf("AddCaregiverUpdate(%s): %v", u.ID, err)
		}
	}

	got, err := st.CaregiverUpdates("user-1")
	if err != nil {
		t.Fatalf("CaregiverUpdates: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u1" || got[1].ID != "u2" {
		t.Errorf("expected insertion order, got %+v", got)
	}

	other, _ := st.CaregiverUpdates("user-2")
	if len(other) != 0 {
		t.Errorf("updates leaked across users: %+v", other)
	}
}
