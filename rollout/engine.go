package rollout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"guildgate/models"
	"guildgate/registry"
	"guildgate/store"
)

// Clock returns the current time.
type Clock func() time.Time

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

// WithCompletionWindow makes Tick jump straight to the goal once the
// deadline is closer than d.
func WithCompletionWindow(d time.Duration) Option {
	return func(e *Engine) { e.completionWindow = d }
}

// Engine owns the rollout state machine.
type Engine struct {
	rollouts         *store.RolloutStore
	features         *registry.Registry
	now              Clock
	completionWindow time.Duration

	// linkMu serialises the operations that check "one live rollout per
	// feature" before writing.
	linkMu sync.Mutex
}

func NewEngine(rollouts *store.RolloutStore, features *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		rollouts: rollouts,
		features: features,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) clock() time.Time {
	return e.now().UTC()
}

func validPercent(p int) bool {
	return p >= 0 && p <= 100
}

// Create adds a pending rollout at 0%.
func (e *Engine) Create(ctx context.Context, name string, percentGoal int) (*models.Rollout, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !validPercent(percentGoal) {
		return nil, fmt.Errorf("%w: goal %d must be within 0 to 100", ErrInvalidPercent, percentGoal)
	}
	r := &models.Rollout{
		Name:        name,
		PercentGoal: percentGoal,
		Status:      models.RolloutPending,
	}
	if err := e.rollouts.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Engine) Get(ctx context.Context, name string) (*models.Rollout, error) {
	return e.rollouts.FindByName(ctx, name)
}

// List returns every rollout sorted by name.
func (e *Engine) List(ctx context.Context) ([]models.Rollout, error) {
	return e.rollouts.List(ctx)
}

// Link points the rollout at feature.
func (e *Engine) Link(ctx context.Context, name, feature string) (*models.Rollout, error) {
	if _, err := e.features.Get(feature); err != nil {
		return nil, err
	}

	e.linkMu.Lock()
	defer e.linkMu.Unlock()

	var out *models.Rollout
	err := e.rollouts.InTx(ctx, func(tx *store.RolloutStore) error {
		r, err := tx.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if err := ensureFeatureFree(ctx, tx, feature, r.ID); err != nil {
			return err
		}
		r.FeatureName = &feature
		if err := tx.Save(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unlink clears the rollout's feature. Unlinking an unlinked rollout is a no-op.
func (e *Engine) Unlink(ctx context.Context, name string) (*models.Rollout, error) {
	r, err := e.rollouts.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if r.FeatureName == nil {
		return r, nil
	}
	r.FeatureName = nil
	if err := e.rollouts.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Start schedules linear growth from the current percent now to the goal at endTime.
func (e *Engine) Start(ctx context.Context, name string, endTime time.Time) (*models.Rollout, error) {
	e.linkMu.Lock()
	defer e.linkMu.Unlock()

	var out *models.Rollout
	err := e.rollouts.InTx(ctx, func(tx *store.RolloutStore) error {
		r, err := tx.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if r.Status != models.RolloutPending && r.Status != models.RolloutStopped {
			return fmt.Errorf("%w: cannot start a %s rollout", ErrInvalidState, r.Status)
		}
		now := e.clock()
		end := endTime.UTC()
		if !end.After(now) {
			return fmt.Errorf("%w: end time %s is not in the future", ErrInvalidTime, end.Format(time.RFC3339))
		}
		if r.FeatureName != nil {
			if err := ensureFeatureFree(ctx, tx, *r.FeatureName, r.ID); err != nil {
				return err
			}
		}

		r.Status = models.RolloutActive
		if r.StartTime == nil {
			r.StartTime = &now
		}
		r.EndTime = &end
		r.AnchorTime = &now
		r.AnchorPercent = r.CurrentPercent
		if err := tx.Save(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stop freezes an active rollout at its current percent.
func (e *Engine) Stop(ctx context.Context, name string) (*models.Rollout, error) {
	r, err := e.rollouts.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if r.Status != models.RolloutActive {
		return nil, fmt.Errorf("%w: cannot stop a %s rollout", ErrInvalidState, r.Status)
	}
	r.Status = models.RolloutStopped
	if err := e.rollouts.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Modify changes the goal. An active rollout is re-anchored at now so the
// remaining growth is spread over the time left.
func (e *Engine) Modify(ctx context.Context, name string, percentGoal int) (*models.Rollout, error) {
	r, err := e.rollouts.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if r.Status == models.RolloutCompleted {
		return nil, fmt.Errorf("%w: rollout %s is completed", ErrInvalidState, r.Name)
	}
	if !validPercent(percentGoal) {
		return nil, fmt.Errorf("%w: goal %d must be within 0 to 100", ErrInvalidPercent, percentGoal)
	}
	if percentGoal < r.CurrentPercent {
		return nil, fmt.Errorf("%w: goal %d is below the current %d%%", ErrInvalidPercent, percentGoal, r.CurrentPercent)
	}

	r.PercentGoal = percentGoal
	if r.Status == models.RolloutActive {
		now := e.clock()
		r.AnchorTime = &now
		r.AnchorPercent = r.CurrentPercent
	}
	if err := e.rollouts.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the rollout permanently.
func (e *Engine) Delete(ctx context.Context, name string) error {
	r, err := e.rollouts.FindByName(ctx, name)
	if err != nil {
		return err
	}
	return e.rollouts.Delete(ctx, r)
}

// Tick advances every active rollout to where its schedule says it should
// be now and returns how many rollouts were written. Calling it again with
// the same clock writes nothing.
func (e *Engine) Tick(ctx context.Context) (int, error) {
	now := e.clock()
	active, err := e.rollouts.ListByStatus(ctx, models.RolloutActive)
	if err != nil {
		return 0, err
	}

	var (
		updated int
		errs    []error
	)
	for i := range active {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		r := &active[i]
		next := e.percentAt(r, now)
		done := next >= r.PercentGoal
		if next == r.CurrentPercent && !done {
			continue
		}
		r.CurrentPercent = next
		if done {
			r.Status = models.RolloutCompleted
		}
		r.LastTickedAt = &now
		if err := e.rollouts.Save(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("tick %s: %w", r.Name, err))
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

// percentAt interpolates the schedule at now, clamped to
// [CurrentPercent, PercentGoal].
func (e *Engine) percentAt(r *models.Rollout, now time.Time) int {
	if r.CurrentPercent >= r.PercentGoal {
		return r.PercentGoal
	}
	if r.AnchorTime == nil || r.EndTime == nil {
		return r.CurrentPercent
	}
	anchor, end := *r.AnchorTime, *r.EndTime
	if !now.Before(end) {
		return r.PercentGoal
	}
	if e.completionWindow > 0 && end.Sub(now) <= e.completionWindow {
		return r.PercentGoal
	}

	total := end.Sub(anchor).Seconds()
	elapsed := now.Sub(anchor).Seconds()
	if total <= 0 || elapsed <= 0 {
		return r.CurrentPercent
	}
	span := float64(r.PercentGoal - r.AnchorPercent)
	p := r.AnchorPercent + int(math.Floor(span*elapsed/total))
	if p < r.CurrentPercent {
		p = r.CurrentPercent
	}
	if p > r.PercentGoal {
		p = r.PercentGoal
	}
	return p
}

func ensureFeatureFree(ctx context.Context, tx *store.RolloutStore, feature string, self uint) error {
	live, err := tx.FindTargeting(ctx, feature, models.RolloutPending, models.RolloutActive)
	if err != nil {
		return err
	}
	for _, other := range live {
		if other.ID != self {
			return fmt.Errorf("%w: %s is targeted by %s", ErrFeatureAlreadyLinked, feature, other.Name)
		}
	}
	return nil
}
