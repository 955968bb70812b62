package repositories

import (
	"database/sql"
	"strings"
	"time"

	"github.com/alimgiray/better-github/internal/models"
)

// UserSettingsRepository stores per-user preferences, one row per user
type UserSettingsRepository struct {
	db *sql.DB
}

func NewUserSettingsRepository(db *sql.DB) *UserSettingsRepository {
	return &UserSettingsRepository{db: db}
}

// GetOrCreate returns the settings row of a user, inserting defaults first when missing
func (r *UserSettingsRepository) GetOrCreate(userID string) (*models.UserSettings, error) {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO user_settings (user_id, updated_at) VALUES (?, ?)`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}
	return r.get(userID)
}

func (r *UserSettingsRepository) get(userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, display_name, theme, ghost_model, use_own_api_key, openrouter_api_key, updated_at
		FROM user_settings WHERE user_id = ?
	`

	settings := &models.UserSettings{}
	var displayName, apiKey sql.NullString
	err := r.db.QueryRow(query, userID).Scan(
		&settings.UserID,
		&displayName,
		&settings.Theme,
		&settings.GhostModel,
		&settings.UseOwnAPIKey,
		&apiKey,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		settings.DisplayName = &displayName.String
	}
	if apiKey.Valid {
		settings.OpenRouterAPIKey = &apiKey.String
	}
	return settings, nil
}

// Update applies the non-nil fields of update and always bumps updated_at
func (r *UserSettingsRepository) Update(userID string, update *models.SettingsUpdate) (*models.UserSettings, error) {
	if _, err := r.GetOrCreate(userID); err != nil {
		return nil, err
	}

	var sets []string
	var args []interface{}
	if update.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *update.DisplayName)
	}
	if update.Theme != nil {
		sets = append(sets, "theme = ?")
		args = append(args, *update.Theme)
	}
	if update.GhostModel != nil {
		sets = append(sets, "ghost_model = ?")
		args = append(args, *update.GhostModel)
	}
	if update.UseOwnAPIKey != nil {
		sets = append(sets, "use_own_api_key = ?")
		args = append(args, *update.UseOwnAPIKey)
	}
	if update.OpenRouterAPIKey != nil {
		sets = append(sets, "openrouter_api_key = ?")
		if *update.OpenRouterAPIKey == "" {
			args = append(args, nil)
		} else {
			args = append(args, *update.OpenRouterAPIKey)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)

	query := `UPDATE user_settings SET ` + strings.Join(sets, ", ") + ` WHERE user_id = ?`
	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, err
	}
	return r.get(userID)
}

// Delete removes the settings row of a user
func (r *UserSettingsRepository) Delete(userID string) error {
	_, err := r.db.Exec(`DELETE FROM user_settings WHERE user_id = ?`, userID)
	return err
}
