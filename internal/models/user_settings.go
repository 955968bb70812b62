package models

import "time"

const (
	DefaultTheme      = "system"
	DefaultGhostModel = "moonshotai/kimi-k2.5"
)

// Themes lists the accepted theme values
var Themes = []string{"system", "light", "dark"}

// UserSettings holds per-user preferences
type UserSettings struct {
	UserID           string    `json:"user_id"`
	DisplayName      *string   `json:"display_name"`
	Theme            string    `json:"theme"`
	GhostModel       string    `json:"ghost_model"`
	UseOwnAPIKey     bool      `json:"use_own_api_key"`
	OpenRouterAPIKey *string   `json:"-"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SettingsUpdate is a partial update; nil fields are left untouched
type SettingsUpdate struct {
	DisplayName      *string `json:"display_name"`
	Theme            *string `json:"theme"`
	GhostModel       *string `json:"ghost_model"`
	UseOwnAPIKey     *bool   `json:"use_own_api_key"`
	OpenRouterAPIKey *string `json:"openrouter_api_key"`
}

// IsEmpty reports whether the update changes nothing
func (u *SettingsUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.Theme == nil && u.GhostModel == nil &&
		u.UseOwnAPIKey == nil && u.OpenRouterAPIKey == nil
}

// MaskedAPIKey returns the OpenRouter key with its middle hidden, or "" when unset
func (s *UserSettings) MaskedAPIKey() string {
	if s.OpenRouterAPIKey == nil || *s.OpenRouterAPIKey == "" {
		return ""
	}
	key := *s.OpenRouterAPIKey
	if len(key) < 12 {
		return "****"
	}
	return key[:6] + "****" + key[len(key)-4:]
}
