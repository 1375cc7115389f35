package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

type SettingsController struct {
	store   SettingsStore
	auditor Auditor
	errors  *apperr.Handler
}

func NewSettingsController(store SettingsStore, auditor Auditor, errs *apperr.Handler) *SettingsController {
	return &SettingsController{store: store, auditor: auditor, errors: errs}
}

type settingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// GetSettings returns every known setting. Unset keys are reported empty.
func (sc *SettingsController) GetSettings(c *gin.Context) {
	all, err := sc.store.All()
	if err != nil {
		sc.errors.Respond(c, err, "get_settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": knownSettings(all)})
}

// UpdateSettings writes the given keys in one transaction. Unknown keys
// reject the whole request.
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := bindJSON(c, &req); err != nil {
		sc.errors.Respond(c, err, "update_settings")
		return
	}
	if len(req.Settings) == 0 {
		sc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"settings": "is required"}), "update_settings")
		return
	}

	values := make(map[string]string, len(req.Settings))
	details := map[string]string{}
	for key, value := range req.Settings {
		value = strings.TrimSpace(value)
		if msg := validateSetting(key, value); msg != "" {
			details[key] = msg
			continue
		}
		values[key] = value
	}
	if len(details) > 0 {
		sc.errors.Respond(c, apperr.Validation("invalid input", details), "update_settings")
		return
	}

	if err := sc.store.SetMany(values); err != nil {
		sc.errors.Respond(c, err, "update_settings")
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	recordAction(sc.auditor, c, audit.Action{
		EventType:   entities.AuditEventSettings,
		Action:      "settings_update",
		Description: "Updated " + strings.Join(keys, ", "),
		Metadata:    map[string]any{"keys": keys},
	})

	all, err := sc.store.All()
	if err != nil {
		sc.errors.Respond(c, err, "get_settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": knownSettings(all)})
}

func knownSettings(all map[string]string) map[string]string {
	out := make(map[string]string, len(entities.KnownSettingKeys))
	for _, key := range entities.KnownSettingKeys {
		out[key] = all[key]
	}
	return out
}

func validateSetting(key, value string) string {
	def, ok := entities.LookupSetting(key)
	if !ok {
		return "unknown setting"
	}
	return def.Validate(value)
}
