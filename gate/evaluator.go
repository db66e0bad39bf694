// Package gate answers whether a feature is enabled for a guild.
package gate

import (
	"context"

	"guildgate/models"
	"guildgate/registry"
	"guildgate/rollout"
)

// Source names the layer that decided a gate.
type Source string

const (
	SourceOverride Source = "override"
	SourceRollout  Source = "rollout"
	SourceSetting  Source = "setting"
	SourceDefault  Source = "default"
)

// OverrideReader is the read side of the guild feature store.
type OverrideReader interface {
	GetOverride(ctx context.Context, guildID int64, name string) (bool, bool, error)
	GetDefault(ctx context.Context, name string) (*bool, error)
}

type RolloutReader interface {
	FindTargeting(ctx context.Context, feature string, statuses ...models.RolloutStatus) ([]models.Rollout, error)
}

// Decision explains a gate result.
type Decision struct {
	Feature string `json:"feature"`
	GuildID int64  `json:"guild_id"`
	Enabled bool   `json:"enabled"`
	Source  Source `json:"source"`
	Rollout string `json:"rollout,omitempty"`
}

// Evaluator reads straight from the stores on every call.
type Evaluator struct {
	features  *registry.Registry
	overrides OverrideReader
	rollouts  RolloutReader
}

func NewEvaluator(features *registry.Registry, overrides OverrideReader, rollouts RolloutReader) *Evaluator {
	return &Evaluator{features: features, overrides: overrides, rollouts: rollouts}
}

func (e *Evaluator) IsEnabled(ctx context.Context, guildID int64, name string) (bool, error) {
	d, err := e.Evaluate(ctx, guildID, name)
	if err != nil {
		return false, err
	}
	return d.Enabled, nil
}

// Evaluate resolves the gate: guild override, then the linked rollout,
// then the feature default.
func (e *Evaluator) Evaluate(ctx context.Context, guildID int64, name string) (Decision, error) {
	feature, err := e.features.Get(name)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Feature: name, GuildID: guildID}

	enabled, ok, err := e.overrides.GetOverride(ctx, guildID, name)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		d.Enabled, d.Source = enabled, SourceOverride
		return d, nil
	}

	linked, err := e.rollouts.FindTargeting(ctx, name, models.RolloutActive, models.RolloutCompleted)
	if err != nil {
		return Decision{}, err
	}
	if r := pickRollout(linked); r != nil {
		d.Enabled, d.Source, d.Rollout = rollout.IsGuildIncluded(r, guildID), SourceRollout, r.Name
		return d, nil
	}

	setting, err := e.overrides.GetDefault(ctx, name)
	if err != nil {
		return Decision{}, err
	}
	if setting != nil {
		d.Enabled, d.Source = *setting, SourceSetting
		return d, nil
	}
	d.Enabled, d.Source = feature.EnabledByDefault, SourceDefault
	return d, nil
}

// pickRollout prefers the active rollout; otherwise the most recently
// updated completed one. rollouts arrive newest first.
func pickRollout(rollouts []models.Rollout) *models.Rollout {
	for i := range rollouts {
		if rollouts[i].Status == models.RolloutActive {
			return &rollouts[i]
		}
	}
	if len(rollouts) > 0 {
		return &rollouts[0]
	}
	return nil
}
