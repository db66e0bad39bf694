package models

import "time"

// GuildFeatureOverride is an explicit per-guild decision for a feature.
// When present it wins over rollouts and defaults.
type GuildFeatureOverride struct {
	GuildID     int64     `gorm:"primaryKey;autoIncrement:false" json:"guild_id"`
	FeatureName string    `gorm:"primaryKey;size:50" json:"feature_name"`
	Enabled     bool      `gorm:"not null" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FeatureSetting replaces a feature's built-in default. No row means the
// registry default applies.
type FeatureSetting struct {
	FeatureName string    `gorm:"primaryKey;size:50" json:"feature_name"`
	Enabled     bool      `gorm:"not null" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
