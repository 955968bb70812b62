package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
)

// UserSettingsService validates and stores per-user preferences
type UserSettingsService struct {
	settingsRepo *repositories.UserSettingsRepository
}

func NewUserSettingsService(settingsRepo *repositories.UserSettingsRepository) *UserSettingsService {
	return &UserSettingsService{settingsRepo: settingsRepo}
}

// SettingsResponse is the client view of the settings, with the API key masked
type SettingsResponse struct {
	*models.UserSettings
	HasAPIKey    bool   `json:"has_api_key"`
	MaskedAPIKey string `json:"openrouter_api_key_masked"`
}

func newSettingsResponse(settings *models.UserSettings) *SettingsResponse {
	masked := settings.MaskedAPIKey()
	return &SettingsResponse{
		UserSettings: settings,
		HasAPIKey:    masked != "",
		MaskedAPIKey: masked,
	}
}

// Get returns the user's settings, creating the default row on first access
func (s *UserSettingsService) Get(userID string) (*SettingsResponse, error) {
	settings, err := s.settingsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return newSettingsResponse(settings), nil
}

// Update validates and applies a partial update
func (s *UserSettingsService) Update(userID string, update *models.SettingsUpdate) (*SettingsResponse, error) {
	if err := validateSettingsUpdate(update); err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.Update(userID, update)
	if err != nil {
		return nil, err
	}
	return newSettingsResponse(settings), nil
}

// Delete resets the user's settings to defaults
func (s *UserSettingsService) Delete(userID string) error {
	return s.settingsRepo.Delete(userID)
}

func validateSettingsUpdate(update *models.SettingsUpdate) error {
	if update == nil || update.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidSettings)
	}

	if update.Theme != nil {
		valid := false
		for _, theme := range models.Themes {
			if *update.Theme == theme {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: theme must be one of %s", ErrInvalidSettings, strings.Join(models.Themes, ", "))
		}
	}

	if update.GhostModel != nil {
		model := strings.TrimSpace(*update.GhostModel)
		if model == "" {
			return fmt.Errorf("%w: ghost model cannot be empty", ErrInvalidSettings)
		}
		update.GhostModel = &model
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if len(name) > 100 {
			return fmt.Errorf("%w: display name is too long", ErrInvalidSettings)
		}
		update.DisplayName = &name
	}

	if update.OpenRouterAPIKey != nil {
		key := strings.TrimSpace(*update.OpenRouterAPIKey)
		update.OpenRouterAPIKey = &key
	}

	return nil
}
