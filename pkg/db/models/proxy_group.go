package models

import (
	"time"

	"github.com/google/uuid"
)

// ProxyGroup is a named pool of proxies the monitors rotate through.
type ProxyGroup struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:uniq_proxy_groups_name"`
	Proxies   []string  `gorm:"column:proxies;serializer:json;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
