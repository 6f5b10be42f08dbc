package controllers

import (
	"net/http"

	"github.com/phantomlabs/phantom-backend/api/responses"
	"github.com/phantomlabs/phantom-backend/api/validators"
	"github.com/phantomlabs/phantom-backend/internal/settings"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

type updateSettingsRequest struct {
	MonitorDelayMS      int     `json:"monitor_delay_ms" validate:"required,min=100"`
	RetryDelayMS        int     `json:"retry_delay_ms" validate:"required,min=100"`
	AutoTasksEnabled    bool    `json:"auto_tasks_enabled"`
	MinConfidence       float64 `json:"min_confidence" validate:"min=0,max=1"`
	MinPriority         string  `json:"min_priority" validate:"required"`
	WebhookURL          *string `json:"webhook_url"`
	WebhookOnNewProduct bool    `json:"webhook_on_new_product"`
	WebhookOnRestock    bool    `json:"webhook_on_restock"`

	MaxConcurrentCheckouts int     `json:"max_concurrent_checkouts" validate:"required,min=1,max=50"`
	TwoCaptchaKey          *string `json:"two_captcha_key"`
	CapMonsterKey          *string `json:"cap_monster_key"`
	TLSSpoof               bool    `json:"tls_spoof"`
	FingerprintRotation    bool    `json:"fingerprint_rotation"`
}

// SettingsGet returns the operator settings row.
func SettingsGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings.FromModel(setting))
	}
}

// SettingsUpdate replaces the operator settings row wholesale.
func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var body updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), settings.UpdateParams{
			MonitorDelayMS:      body.MonitorDelayMS,
			RetryDelayMS:        body.RetryDelayMS,
			AutoTasksEnabled:    body.AutoTasksEnabled,
			MinConfidence:       body.MinConfidence,
			MinPriority:         body.MinPriority,
			WebhookURL:          body.WebhookURL,
			WebhookOnNewProduct: body.WebhookOnNewProduct,
			WebhookOnRestock:    body.WebhookOnRestock,

			MaxConcurrentCheckouts: body.MaxConcurrentCheckouts,
			TwoCaptchaKey:          body.TwoCaptchaKey,
			CapMonsterKey:          body.CapMonsterKey,
			TLSSpoof:               body.TLSSpoof,
			FingerprintRotation:    body.FingerprintRotation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings.FromModel(updated))
	}
}
