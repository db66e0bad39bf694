package rollout

import (
	"errors"

	"guildgate/store"
)

var (
	ErrUnknownRollout         = store.ErrRolloutNotFound
	ErrDuplicateRollout       = store.ErrRolloutExists
	ErrConcurrentModification = store.ErrConcurrentModification

	ErrFeatureAlreadyLinked = errors.New("feature is already targeted by another active rollout")
	ErrInvalidPercent       = errors.New("invalid percent")
	ErrInvalidState         = errors.New("invalid rollout state")
	ErrInvalidTime          = errors.New("invalid time")
	ErrInvalidName          = errors.New("invalid rollout name")
)
