package entities

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

// Setting is a runtime key/value option that admins edit without a restart.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	SettingKeySignupEnabled     = "signup_enabled"
	SettingKeyFeaturedPostID    = "featured_post_id"
	SettingKeyMaintenanceBanner = "maintenance_banner"
)

const maxBannerRunes = 500

type SettingKind string

const (
	SettingKindBool   SettingKind = "bool"
	SettingKindID     SettingKind = "id"
	SettingKindString SettingKind = "string"
)

// SettingDefinition describes one editable key. Empty values are allowed
// for every key and mean "use the default".
type SettingDefinition struct {
	Key      string
	Kind     SettingKind
	MaxRunes int
}

var settingDefinitions = []SettingDefinition{
	{Key: SettingKeySignupEnabled, Kind: SettingKindBool},
	{Key: SettingKeyFeaturedPostID, Kind: SettingKindID},
	{Key: SettingKeyMaintenanceBanner, Kind: SettingKindString, MaxRunes: maxBannerRunes},
}

// KnownSettingKeys lists the keys accepted by the admin settings endpoint.
var KnownSettingKeys = func() []string {
	keys := make([]string, len(settingDefinitions))
	for i, d := range settingDefinitions {
		keys[i] = d.Key
	}
	return keys
}()

// LookupSetting returns the definition for key.
func LookupSetting(key string) (SettingDefinition, bool) {
	for _, d := range settingDefinitions {
		if d.Key == key {
			return d, true
		}
	}
	return SettingDefinition{}, false
}

// Validate returns a user-facing message when value does not fit the kind,
// or "" when it does.
func (d SettingDefinition) Validate(value string) string {
	if value == "" {
		return ""
	}
	switch d.Kind {
	case SettingKindBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return "must be true or false"
		}
	case SettingKindID:
		if id, err := strconv.ParseUint(value, 10, 32); err != nil || id == 0 {
			return "must be a positive id"
		}
	case SettingKindString:
		if d.MaxRunes > 0 && utf8.RuneCountInString(value) > d.MaxRunes {
			return fmt.Sprintf("must be at most %d characters", d.MaxRunes)
		}
	}
	return ""
}
