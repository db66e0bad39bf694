package models

import "time"

type RolloutStatus string

const (
	RolloutPending   RolloutStatus = "pending"
	RolloutActive    RolloutStatus = "active"
	RolloutStopped   RolloutStatus = "stopped"
	RolloutCompleted RolloutStatus = "completed"
)

// Rollout gradually enables its linked feature for a growing share of guilds.
type Rollout struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Name           string        `gorm:"uniqueIndex;size:100;not null" json:"name"`
	FeatureName    *string       `gorm:"size:50;index" json:"feature_name"`
	PercentGoal    int           `gorm:"not null" json:"percent_goal"`
	CurrentPercent int           `gorm:"not null;default:0" json:"current_percent"`
	Status         RolloutStatus `gorm:"size:16;not null;index" json:"status"`
	StartTime      *time.Time    `json:"start_time"`
	EndTime        *time.Time    `json:"end_time"`

	// AnchorTime and AnchorPercent are the origin of the linear schedule,
	// reset by every start and by modify while active.
	AnchorTime    *time.Time `json:"anchor_time"`
	AnchorPercent int        `gorm:"not null;default:0" json:"anchor_percent"`
	LastTickedAt  *time.Time `json:"last_ticked_at"`

	// Version is bumped on every write; updates are conditional on it.
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Live reports whether the rollout still blocks other rollouts from
// targeting its feature.
func (r *Rollout) Live() bool {
	return r.Status == RolloutPending || r.Status == RolloutActive
}
