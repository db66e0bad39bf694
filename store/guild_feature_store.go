package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guildgate/models"
	"guildgate/registry"
)

// GuildFeatureStore persists per-guild overrides and per-feature defaults.
type GuildFeatureStore struct {
	db       *gorm.DB
	features *registry.Registry
}

func NewGuildFeatureStore(db *gorm.DB, features *registry.Registry) *GuildFeatureStore {
	return &GuildFeatureStore{db: db, features: features}
}

// SetOverride upserts the explicit decision for (guildID, name).
func (s *GuildFeatureStore) SetOverride(ctx context.Context, guildID int64, name string, enabled bool) error {
	if _, err := s.features.Get(name); err != nil {
		return err
	}
	row := models.GuildFeatureOverride{GuildID: guildID, FeatureName: name, Enabled: enabled}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "feature_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set override %d/%s: %w", guildID, name, err)
	}
	return nil
}

// ClearOverride removes the override if there is one.
func (s *GuildFeatureStore) ClearOverride(ctx context.Context, guildID int64, name string) error {
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND feature_name = ?", guildID, name).
		Delete(&models.GuildFeatureOverride{}).Error
	if err != nil {
		return fmt.Errorf("clear override %d/%s: %w", guildID, name, err)
	}
	return nil
}

// GetOverride returns the explicit decision and whether one exists.
func (s *GuildFeatureStore) GetOverride(ctx context.Context, guildID int64, name string) (bool, bool, error) {
	var rows []models.GuildFeatureOverride
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND feature_name = ?", guildID, name).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return false, false, fmt.Errorf("get override %d/%s: %w", guildID, name, err)
	}
	if len(rows) == 0 {
		return false, false, nil
	}
	return rows[0].Enabled, true, nil
}

func (s *GuildFeatureStore) ListForGuild(ctx context.Context, guildID int64) (map[string]bool, error) {
	var rows []models.GuildFeatureOverride
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list overrides for %d: %w", guildID, err)
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.FeatureName] = row.Enabled
	}
	return out, nil
}

// SetDefault replaces the built-in default of a feature. A nil value
// restores the registry default.
func (s *GuildFeatureStore) SetDefault(ctx context.Context, name string, enabled *bool) error {
	if _, err := s.features.Get(name); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if enabled == nil {
		if err := db.Where("feature_name = ?", name).Delete(&models.FeatureSetting{}).Error; err != nil {
			return fmt.Errorf("reset default %s: %w", name, err)
		}
		return nil
	}
	row := models.FeatureSetting{FeatureName: name, Enabled: *enabled}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feature_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set default %s: %w", name, err)
	}
	return nil
}

// GetDefault returns the persisted default, or nil when none is set.
func (s *GuildFeatureStore) GetDefault(ctx context.Context, name string) (*bool, error) {
	var rows []models.FeatureSetting
	if err := s.db.WithContext(ctx).Where("feature_name = ?", name).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get default %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	enabled := rows[0].Enabled
	return &enabled, nil
}

func (s *GuildFeatureStore) ListDefaults(ctx context.Context) (map[string]bool, error) {
	var rows []models.FeatureSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list defaults: %w", err)
	}
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[row.FeatureName] = row.Enabled
	}
	return out, nil
}
