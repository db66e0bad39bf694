package store

import "errors"

var (
	ErrRolloutNotFound        = errors.New("rollout not found")
	ErrRolloutExists          = errors.New("rollout already exists")
	ErrConcurrentModification = errors.New("rollout was modified concurrently")
)
