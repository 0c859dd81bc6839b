// Package store provides storage backends for CarePath.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/BTreeMap/CarePath/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists CarePath state in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store. The DSN is a file path; the
// containing directory is created if missing and migrations are applied.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SavePlan(plan models.CarePlan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan for %s: %w", plan.UserID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO care_plans (user_id, plan_json, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET plan_json = excluded.plan_json, updated_at = excluded.updated_at`,
		plan.UserID, string(doc), plan.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SavePlan failed", "error", err, "user_id", plan.UserID)
		return fmt.Errorf("failed to save plan for %s: %w", plan.UserID, err)
	}
	slog.Debug("SQLiteStore SavePlan succeeded", "user_id", plan.UserID, "plan_id", plan.ID)
	return nil
}

func (s *SQLiteStore) GetPlan(userID string) (models.CarePlan, error) {
	var doc string
	err := s.db.QueryRow(`SELECT plan_json FROM care_plans WHERE user_id = ?`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.CarePlan{}, models.ErrPlanNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetPlan failed", "error", err, "user_id", userID)
		return models.CarePlan{}, fmt.Errorf("failed to query plan for %s: %w", userID, err)
	}
	var plan models.CarePlan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return models.CarePlan{}, fmt.Errorf("failed to unmarshal plan for %s: %w", userID, err)
	}
	return plan, nil
}

func (s *SQLiteStore) SaveUser(user models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile for %s: %w", user.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO user_profiles (user_id, profile_json) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET profile_json = excluded.profile_json`,
		user.ID, string(doc))
	if err != nil {
		slog.Error("SQLiteStore SaveUser failed", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to save profile for %s: %w", user.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(userID string) (models.User, error) {
	var doc string
	err := s.db.QueryRow(`SELECT profile_json FROM user_profiles WHERE user_id = ?`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query profile for %s: %w", userID, err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return models.User{}, fmt.Errorf("failed to unmarshal profile for %s: %w", userID, err)
	}
	return user, nil
}

func (s *SQLiteStore) ListPlanUserIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM care_plans ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan users: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plan user row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) AddActivity(a models.ActivityLog) error {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal activity tags: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO activity_logs (id, user_id, type, category, description, value, timestamp, tags_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Type, a.Category, a.Description, a.Value, a.Timestamp, string(tags))
	if err != nil {
		slog.Error("SQLiteStore AddActivity failed", "error", err, "user_id", a.UserID)
		return fmt.Errorf("failed to insert activity for %s: %w", a.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) RecentActivity(userID string, since time.Time) ([]models.ActivityLog, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, type, category, description, value, timestamp, tags_json
		 FROM activity_logs WHERE user_id = ? AND timestamp > ? ORDER BY timestamp`,
		userID, since)
	if err != nil {
		slog.Error("SQLiteStore RecentActivity query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query activity for %s: %w", userID, err)
	}
	defer rows.Close()
	return scanActivityRows(rows)
}

func (s *SQLiteStore) SetCaregivers(userID string, caregivers []models.Caregiver) error {
	doc, err := json.Marshal(caregivers)
	if err != nil {
		return fmt.Errorf("failed to marshal caregiver roster: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO caregiver_rosters (user_id, roster_json) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET roster_json = excluded.roster_json`,
		userID, string(doc))
	if err != nil {
		slog.Error("SQLiteStore SetCaregivers failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to save caregiver roster for %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) GetCaregivers(userID string) ([]models.Caregiver, error) {
	var doc string
	err := s.db.QueryRow(`SELECT roster_json FROM caregiver_rosters WHERE user_id = ?`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query caregiver roster for %s: %w", userID, err)
	}
	var roster []models.Caregiver
	if err := json.Unmarshal([]byte(doc), &roster); err != nil {
		return nil, fmt.Errorf("failed to unmarshal caregiver roster for %s: %w", userID, err)
	}
	return roster, nil
}

func (s *SQLiteStore) AddCaregiverUpdate(u models.CaregiverUpdate) error {
	data, err := json.Marshal(u.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal caregiver update data: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO caregiver_updates (id, user_id, caregiver_id, type, title, message, data_json, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.CaregiverID, string(u.Type), u.Title, u.Message, string(data), u.IsRead, u.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddCaregiverUpdate failed", "error", err, "user_id", u.UserID)
		return fmt.Errorf("failed to insert caregiver update for %s: %w", u.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) CaregiverUpdates(userID string) ([]models.CaregiverUpdate, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, caregiver_id, type, title, message, data_json, is_read, created_at
		 FROM caregiver_updates WHERE user_id = ? ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query caregiver updates for %s: %w", userID, err)
	}
	defer rows.Close()
	return scanUpdateRows(rows)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
