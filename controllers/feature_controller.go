package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"guildgate/gate"
	"guildgate/middleware"
	"guildgate/registry"
	"guildgate/store"
	"guildgate/utils"
)

type FeatureController struct {
	features  *registry.Registry
	overrides *store.GuildFeatureStore
	gate      *gate.Evaluator
	logger    logrus.FieldLogger
}

func NewFeatureController(features *registry.Registry, overrides *store.GuildFeatureStore, evaluator *gate.Evaluator, logger logrus.FieldLogger) *FeatureController {
	return &FeatureController{
		features:  features,
		overrides: overrides,
		gate:      evaluator,
		logger:    logger,
	}
}

type featureView struct {
	registry.Feature
	// Status is "enabled" or "disabled" when an administrator replaced the
	// built-in default, else "default".
	Status string `json:"status"`
}

type SetDefaultRequest struct {
	Status string `json:"status" validate:"required,oneof=enabled disabled default"`
}

type SetOverrideRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ListFeatures returns every registered feature with its persisted status.
func (fc *FeatureController) ListFeatures(c *fiber.Ctx) error {
	settings, err := fc.overrides.ListDefaults(c.UserContext())
	if err != nil {
		return respondError(c, fc.logger, "list_features", err)
	}
	features := fc.features.List()
	out := make([]featureView, 0, len(features))
	for _, f := range features {
		view := featureView{Feature: f, Status: "default"}
		if enabled, ok := settings[f.Name]; ok {
			view.Status = statusString(enabled)
		}
		out = append(out, view)
	}
	return c.JSON(fiber.Map{"features": out})
}

// SetDefault enables, disables, or restores the default of a feature for every guild.
func (fc *FeatureController) SetDefault(c *fiber.Ctx) error {
	name := c.Params("name")
	var req SetDefaultRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var enabled *bool
	switch req.Status {
	case "enabled":
		enabled = utils.Pointer(true)
	case "disabled":
		enabled = utils.Pointer(false)
	}
	if err := fc.overrides.SetDefault(c.UserContext(), name, enabled); err != nil {
		return respondError(c, fc.logger, "set_feature_default", err)
	}
	utils.LogEvent(fc.logger, "feature_default_changed", map[string]interface{}{
		"feature": name,
		"status":  req.Status,
		"admin":   middleware.AdminSubject(c),
	})
	return c.JSON(fiber.Map{"feature": name, "status": req.Status})
}

// GuildFeatures lists the explicit overrides of a guild alongside the
// resolved state of every feature.
func (fc *FeatureController) GuildFeatures(c *fiber.Ctx) error {
	guildID, err := utils.ParseGuildID(c.Params("guild"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx := c.UserContext()
	overrides, err := fc.overrides.ListForGuild(ctx, guildID)
	if err != nil {
		return respondError(c, fc.logger, "list_guild_features", err)
	}
	decisions := make([]gate.Decision, 0)
	for _, f := range fc.features.List() {
		d, err := fc.gate.Evaluate(ctx, guildID, f.Name)
		if err != nil {
			return respondError(c, fc.logger, "list_guild_features", err)
		}
		decisions = append(decisions, d)
	}
	return c.JSON(fiber.Map{
		"guild_id":  guildID,
		"overrides": overrides,
		"features":  decisions,
	})
}

// Evaluate resolves one gate for a guild.
func (fc *FeatureController) Evaluate(c *fiber.Ctx) error {
	guildID, err := utils.ParseGuildID(c.Params("guild"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	d, err := fc.gate.Evaluate(c.UserContext(), guildID, c.Params("name"))
	if err != nil {
		return respondError(c, fc.logger, "evaluate_feature", err)
	}
	return c.JSON(d)
}

func (fc *FeatureController) SetOverride(c *fiber.Ctx) error {
	guildID, err := utils.ParseGuildID(c.Params("guild"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req SetOverrideRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	name := c.Params("name")
	if err := fc.overrides.SetOverride(c.UserContext(), guildID, name, *req.Enabled); err != nil {
		return respondError(c, fc.logger, "set_override", err)
	}
	utils.LogEvent(fc.logger, "guild_override_set", map[string]interface{}{
		"guild_id": guildID,
		"feature":  name,
		"enabled":  *req.Enabled,
		"admin":    middleware.AdminSubject(c),
	})
	return c.JSON(fiber.Map{"guild_id": guildID, "feature": name, "enabled": *req.Enabled})
}

func (fc *FeatureController) ClearOverride(c *fiber.Ctx) error {
	guildID, err := utils.ParseGuildID(c.Params("guild"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	name := c.Params("name")
	if _, err := fc.features.Get(name); err != nil {
		return respondError(c, fc.logger, "clear_override", err)
	}
	if err := fc.overrides.ClearOverride(c.UserContext(), guildID, name); err != nil {
		return respondError(c, fc.logger, "clear_override", err)
	}
	utils.LogEvent(fc.logger, "guild_override_cleared", map[string]interface{}{
		"guild_id": guildID,
		"feature":  name,
		"admin":    middleware.AdminSubject(c),
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func statusString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
