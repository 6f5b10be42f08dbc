package models

import (
	"time"
)

// Setting stores the single row of operator-tunable dashboard settings.
type Setting struct {
	ID                  int     `gorm:"column:id;primaryKey"`
	MonitorDelayMS      int     `gorm:"column:monitor_delay_ms;not null;default:3000"`
	RetryDelayMS        int     `gorm:"column:retry_delay_ms;not null;default:3000"`
	AutoTasksEnabled    bool    `gorm:"column:auto_tasks_enabled;not null;default:false"`
	MinConfidence       float64 `gorm:"column:min_confidence;not null;default:0.7"`
	MinPriority         string  `gorm:"column:min_priority;not null;default:medium"`
	WebhookURL          *string `gorm:"column:webhook_url;type:text"`
	WebhookOnNewProduct bool    `gorm:"column:webhook_on_new_product;not null;default:true"`
	WebhookOnRestock    bool    `gorm:"column:webhook_on_restock;not null;default:true"`

	MaxConcurrentCheckouts int     `gorm:"column:max_concurrent_checkouts;not null;default:3"`
	TwoCaptchaKey          *string `gorm:"column:two_captcha_key;type:text"`
	CapMonsterKey          *string `gorm:"column:cap_monster_key;type:text"`
	TLSSpoof               bool    `gorm:"column:tls_spoof;not null;default:true"`
	FingerprintRotation    bool    `gorm:"column:fingerprint_rotation;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
