package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"guildgate/models"
)

// RolloutStore persists rollouts. Every write is conditional on the row
// version the caller read, so a stale writer gets ErrConcurrentModification
// instead of silently overwriting.
type RolloutStore struct {
	db *gorm.DB
}

func NewRolloutStore(db *gorm.DB) *RolloutStore {
	return &RolloutStore{db: db}
}

// InTx runs fn against a store bound to a single database transaction.
func (s *RolloutStore) InTx(ctx context.Context, fn func(tx *RolloutStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RolloutStore{db: tx})
	})
}

func (s *RolloutStore) Create(ctx context.Context, r *models.Rollout) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Rollout{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("check rollout %s: %w", r.Name, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrRolloutExists, r.Name)
	}
	if err := db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrRolloutExists, r.Name)
		}
		return fmt.Errorf("create rollout %s: %w", r.Name, err)
	}
	return nil
}

func (s *RolloutStore) FindByName(ctx context.Context, name string) (*models.Rollout, error) {
	var rows []models.Rollout
	if err := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find rollout %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRolloutNotFound, name)
	}
	return &rows[0], nil
}

// List returns all rollouts ordered by name.
func (s *RolloutStore) List(ctx context.Context) ([]models.Rollout, error) {
	var rows []models.Rollout
	if err := s.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rollouts: %w", err)
	}
	return rows, nil
}

func (s *RolloutStore) ListByStatus(ctx context.Context, statuses ...models.RolloutStatus) ([]models.Rollout, error) {
	var rows []models.Rollout
	if err := s.db.WithContext(ctx).Where("status IN ?", statuses).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rollouts by status: %w", err)
	}
	return rows, nil
}

// FindTargeting returns the rollouts linked to feature whose status is one
// of statuses, most recently updated first.
func (s *RolloutStore) FindTargeting(ctx context.Context, feature string, statuses ...models.RolloutStatus) ([]models.Rollout, error) {
	var rows []models.Rollout
	err := s.db.WithContext(ctx).
		Where("feature_name = ? AND status IN ?", feature, statuses).
		Order("updated_at desc").Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find rollouts targeting %s: %w", feature, err)
	}
	return rows, nil
}

// Save writes every mutable column of r in one statement, provided the row
// still carries the version r was read at. On success r.Version is bumped.
func (s *RolloutStore) Save(ctx context.Context, r *models.Rollout) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Rollout{}).
		Where("id = ? AND version = ?", r.ID, r.Version).
		Updates(map[string]interface{}{
			"feature_name":    r.FeatureName,
			"percent_goal":    r.PercentGoal,
			"current_percent": r.CurrentPercent,
			"status":          r.Status,
			"start_time":      r.StartTime,
			"end_time":        r.EndTime,
			"anchor_time":     r.AnchorTime,
			"anchor_percent":  r.AnchorPercent,
			"last_ticked_at":  r.LastTickedAt,
			"version":         r.Version + 1,
			"updated_at":      now,
		})
	if res.Error != nil {
		return fmt.Errorf("save rollout %s: %w", r.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrConcurrentModification, r.Name)
	}
	r.Version++
	r.UpdatedAt = now
	return nil
}

func (s *RolloutStore) Delete(ctx context.Context, r *models.Rollout) error {
	res := s.db.WithContext(ctx).Where("id = ? AND version = ?", r.ID, r.Version).Delete(&models.Rollout{})
	if res.Error != nil {
		return fmt.Errorf("delete rollout %s: %w", r.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrConcurrentModification, r.Name)
	}
	return nil
}
