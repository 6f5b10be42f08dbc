package settings

import (
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
)

// DTO is the transport shape of the settings row.
type DTO struct {
	MonitorDelayMS      int     `json:"monitor_delay_ms"`
	RetryDelayMS        int     `json:"retry_delay_ms"`
	AutoTasksEnabled    bool    `json:"auto_tasks_enabled"`
	MinConfidence       float64 `json:"min_confidence"`
	MinPriority         string  `json:"min_priority"`
	WebhookURL          *string `json:"webhook_url,omitempty"`
	WebhookOnNewProduct bool    `json:"webhook_on_new_product"`
	WebhookOnRestock    bool    `json:"webhook_on_restock"`

	MaxConcurrentCheckouts int     `json:"max_concurrent_checkouts"`
	TwoCaptchaKey          *string `json:"two_captcha_key,omitempty"`
	CapMonsterKey          *string `json:"cap_monster_key,omitempty"`
	TLSSpoof               bool    `json:"tls_spoof"`
	FingerprintRotation    bool    `json:"fingerprint_rotation"`

	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(s *models.Setting) *DTO {
	if s == nil {
		return nil
	}
	return &DTO{
		MonitorDelayMS:      s.MonitorDelayMS,
		RetryDelayMS:        s.RetryDelayMS,
		AutoTasksEnabled:    s.AutoTasksEnabled,
		MinConfidence:       s.MinConfidence,
		MinPriority:         s.MinPriority,
		WebhookURL:          s.WebhookURL,
		WebhookOnNewProduct: s.WebhookOnNewProduct,
		WebhookOnRestock:    s.WebhookOnRestock,

		MaxConcurrentCheckouts: s.MaxConcurrentCheckouts,
		TwoCaptchaKey:          s.TwoCaptchaKey,
		CapMonsterKey:          s.CapMonsterKey,
		TLSSpoof:               s.TLSSpoof,
		FingerprintRotation:    s.FingerprintRotation,

		UpdatedAt: s.UpdatedAt,
	}
}
