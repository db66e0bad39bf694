package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"guildgate/middleware"
	"guildgate/models"
	"guildgate/rollout"
	"guildgate/utils"
	"guildgate/worker"
)

type RolloutController struct {
	engine *rollout.Engine
	worker *worker.RolloutWorker
	logger logrus.FieldLogger
}

func NewRolloutController(engine *rollout.Engine, w *worker.RolloutWorker, logger logrus.FieldLogger) *RolloutController {
	return &RolloutController{
		engine: engine,
		worker: w,
		logger: logger,
	}
}

type CreateRolloutRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	PercentGoal *int   `json:"percent_goal" validate:"required,min=0,max=100"`
}

type ModifyRolloutRequest struct {
	PercentGoal *int `json:"percent_goal" validate:"required,min=0,max=100"`
}

type StartRolloutRequest struct {
	EndTime time.Time `json:"end_time" validate:"required"`
}

type LinkRolloutRequest struct {
	Feature string `json:"feature" validate:"required,feature_name"`
}

// rolloutView is a rollout as shown by the view command.
type rolloutView struct {
	*models.Rollout
	TimeRemaining string `json:"time_remaining,omitempty"`
}

func (rc *RolloutController) view(r *models.Rollout) rolloutView {
	v := rolloutView{Rollout: r}
	if r.Status == models.RolloutActive && r.EndTime != nil {
		if left := time.Until(*r.EndTime); left > 0 {
			v.TimeRemaining = utils.FormatDuration(left)
		}
	}
	return v
}

func (rc *RolloutController) event(c *fiber.Ctx, eventType string, r *models.Rollout) {
	utils.LogEvent(rc.logger, eventType, map[string]interface{}{
		"rollout":         r.Name,
		"status":          string(r.Status),
		"current_percent": r.CurrentPercent,
		"percent_goal":    r.PercentGoal,
		"admin":           middleware.AdminSubject(c),
	})
}

func (rc *RolloutController) ListRollouts(c *fiber.Ctx) error {
	rollouts, err := rc.engine.List(c.UserContext())
	if err != nil {
		return respondError(c, rc.logger, "list_rollouts", err)
	}
	out := make([]rolloutView, 0, len(rollouts))
	for i := range rollouts {
		out = append(out, rc.view(&rollouts[i]))
	}
	return c.JSON(fiber.Map{"rollouts": out})
}

func (rc *RolloutController) GetRollout(c *fiber.Ctx) error {
	r, err := rc.engine.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, rc.logger, "get_rollout", err)
	}
	return c.JSON(rc.view(r))
}

func (rc *RolloutController) CreateRollout(c *fiber.Ctx) error {
	var req CreateRolloutRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := rc.engine.Create(c.UserContext(), req.Name, *req.PercentGoal)
	if err != nil {
		return respondError(c, rc.logger, "create_rollout", err)
	}
	rc.event(c, "rollout_created", r)
	return c.Status(fiber.StatusCreated).JSON(rc.view(r))
}

func (rc *RolloutController) ModifyRollout(c *fiber.Ctx) error {
	var req ModifyRolloutRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := rc.engine.Modify(c.UserContext(), c.Params("name"), *req.PercentGoal)
	if err != nil {
		return respondError(c, rc.logger, "modify_rollout", err)
	}
	rc.event(c, "rollout_modified", r)
	return c.JSON(rc.view(r))
}

func (rc *RolloutController) DeleteRollout(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := rc.engine.Delete(c.UserContext(), name); err != nil {
		return respondError(c, rc.logger, "delete_rollout", err)
	}
	utils.LogEvent(rc.logger, "rollout_deleted", map[string]interface{}{
		"rollout": name,
		"admin":   middleware.AdminSubject(c),
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (rc *RolloutController) StartRollout(c *fiber.Ctx) error {
	var req StartRolloutRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := rc.engine.Start(c.UserContext(), c.Params("name"), req.EndTime)
	if err != nil {
		return respondError(c, rc.logger, "start_rollout", err)
	}
	rc.event(c, "rollout_started", r)
	return c.JSON(rc.view(r))
}

func (rc *RolloutController) StopRollout(c *fiber.Ctx) error {
	r, err := rc.engine.Stop(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, rc.logger, "stop_rollout", err)
	}
	rc.event(c, "rollout_stopped", r)
	return c.JSON(rc.view(r))
}

func (rc *RolloutController) LinkRollout(c *fiber.Ctx) error {
	var req LinkRolloutRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := rc.engine.Link(c.UserContext(), c.Params("name"), req.Feature)
	if err != nil {
		return respondError(c, rc.logger, "link_rollout", err)
	}
	rc.event(c, "rollout_linked", r)
	return c.JSON(rc.view(r))
}

func (rc *RolloutController) UnlinkRollout(c *fiber.Ctx) error {
	r, err := rc.engine.Unlink(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, rc.logger, "unlink_rollout", err)
	}
	rc.event(c, "rollout_unlinked", r)
	return c.JSON(rc.view(r))
}

// Tick advances all active rollouts now instead of waiting for the worker.
func (rc *RolloutController) Tick(c *fiber.Ctx) error {
	ran, err := rc.worker.TickNow(c.UserContext())
	if err != nil {
		return respondError(c, rc.logger, "tick_rollouts", err)
	}
	if !ran {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a tick is already running"})
	}
	return c.JSON(fiber.Map{"ticked": true})
}
