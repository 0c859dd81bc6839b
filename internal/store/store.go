// Package store provides storage backends for CarePath.
//
// Care plans and caregiver rosters are stored as JSON documents keyed by
// user; activity logs and caregiver updates are appended as rows. Backends:
// in-memory (tests), SQLite, and PostgreSQL.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/BTreeMap/CarePath/internal/models"
)

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the database connection string (file path for SQLite,
// connection URL for Postgres).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// Store is the persistence boundary used by the API and scheduler layers.
// The engines themselves never touch it.
type Store interface {
	// SavePlan inserts or replaces the user's care plan.
	SavePlan(plan models.CarePlan) error
	// GetPlan fetches a user's plan; returns models.ErrPlanNotFound when absent.
	GetPlan(userID string) (models.CarePlan, error)
	// ListPlanUserIDs returns the users with stored plans, sorted.
	ListPlanUserIDs() ([]string, error)

	// SaveUser caches the user profile captured at plan creation so
	// periodic evaluation passes can run without the profile provider.
	SaveUser(user models.User) error
	// GetUser returns a cached profile; models.ErrUserNotFound when absent.
	GetUser(userID string) (models.User, error)

	// AddActivity appends one activity-log record.
	AddActivity(a models.ActivityLog) error
	// RecentActivity returns a user's activity with timestamps after since,
	// ordered oldest first.
	RecentActivity(userID string, since time.Time) ([]models.ActivityLog, error)

	// SetCaregivers replaces the user's caregiver roster.
	SetCaregivers(userID string, caregivers []models.Caregiver) error
	// GetCaregivers returns the user's caregiver roster (empty when unset).
	GetCaregivers(userID string) ([]models.Caregiver, error)

	// AddCaregiverUpdate records one delivered (or attempted) alert.
	AddCaregiverUpdate(u models.CaregiverUpdate) error
	// CaregiverUpdates returns all recorded alerts for a user, oldest first.
	CaregiverUpdates(userID string) ([]models.CaregiverUpdate, error)

	// Close releases backend resources.
	Close() error
}

// InMemoryStore is a mutex-guarded Store for tests and ephemeral runs.
type InMemoryStore struct {
	mu         sync.RWMutex
	plans      map[string]models.CarePlan
	users      map[string]models.User
	activity   map[string][]models.ActivityLog
	caregivers map[string][]models.Caregiver
	updates    map[string][]models.CaregiverUpdate
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		plans:      make(map[string]models.CarePlan),
		users:      make(map[string]models.User),
		activity:   make(map[string][]models.ActivityLog),
		caregivers: make(map[string][]models.Caregiver),
		updates:    make(map[string][]models.CaregiverUpdate),
	}
}

func (s *InMemoryStore) SaveUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) GetUser(userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

func (s *InMemoryStore) SavePlan(plan models.CarePlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.UserID] = plan
	return nil
}

func (s *InMemoryStore) GetPlan(userID string) (models.CarePlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[userID]
	if !ok {
		return models.CarePlan{}, models.ErrPlanNotFound
	}
	return plan, nil
}

func (s *InMemoryStore) ListPlanUserIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryStore) AddActivity(a models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity[a.UserID] = append(s.activity[a.UserID], a)
	return nil
}

func (s *InMemoryStore) RecentActivity(userID string, since time.Time) ([]models.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ActivityLog
	for _, a := range s.activity[userID] {
		if a.Timestamp.After(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *InMemoryStore) SetCaregivers(userID string, caregivers []models.Caregiver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster := make([]models.Caregiver, len(caregivers))
	copy(roster, caregivers)
	s.caregivers[userID] = roster
	return nil
}

func (s *InMemoryStore) GetCaregivers(userID string) ([]models.Caregiver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster := make([]models.Caregiver, len(s.caregivers[userID]))
	copy(roster, s.caregivers[userID])
	return roster, nil
}

func (s *InMemoryStore) AddCaregiverUpdate(u models.CaregiverUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[u.UserID] = append(s.updates[u.UserID], u)
	return nil
}

func (s *InMemoryStore) CaregiverUpdates(userID string) ([]models.CaregiverUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CaregiverUpdate, len(s.updates[userID]))
	copy(out, s.updates[userID])
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
