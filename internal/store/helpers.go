package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/BTreeMap/CarePath/internal/models"
)

// scanActivityRows drains an activity-log result set. Shared by the SQLite
// and Postgres backends, whose row shapes are identical.
func scanActivityRows(rows *sql.Rows) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	for rows.Next() {
		var a models.ActivityLog
		var category, description, tagsJSON sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &category, &description, &a.Value, &a.Timestamp, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan activity row failed: %w", err)
		}
		a.Category = category.String
		a.Description = description.String
		if tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &a.Tags); err != nil {
				return nil, fmt.Errorf("decode activity tags failed: %w", err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// scanUpdateRows drains a caregiver-update result set.
func scanUpdateRows(rows *sql.Rows) ([]models.CaregiverUpdate, error) {
	var out []models.CaregiverUpdate
	for rows.Next() {
		var u models.CaregiverUpdate
		var typ string
		var dataJSON sql.NullString
		if err := rows.Scan(&u.ID, &u.UserID, &u.CaregiverID, &typ, &u.Title, &u.Message, &dataJSON, &u.IsRead, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan caregiver update row failed: %w", err)
		}
		u.Type = models.UpdateType(typ)
		if dataJSON.String != "" {
			if err := json.Unmarshal([]byte(dataJSON.String), &u.Data); err != nil {
				return nil, fmt.Errorf("decode caregiver update data failed: %w", err)
			}
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
