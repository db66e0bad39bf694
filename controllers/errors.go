package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"guildgate/registry"
	"guildgate/rollout"
	"guildgate/utils"
)

const (
	ErrInvalidRequestBody = "invalid request body"
	ErrInternal           = "internal server error"
)

// statusFor maps a domain error to an HTTP status. ok is false for errors
// that are not caller mistakes.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, registry.ErrUnknownFeature),
		errors.Is(err, rollout.ErrUnknownRollout):
		return fiber.StatusNotFound, true
	case errors.Is(err, rollout.ErrDuplicateRollout),
		errors.Is(err, rollout.ErrFeatureAlreadyLinked),
		errors.Is(err, rollout.ErrInvalidState),
		errors.Is(err, rollout.ErrConcurrentModification):
		return fiber.StatusConflict, true
	case errors.Is(err, rollout.ErrInvalidPercent),
		errors.Is(err, rollout.ErrInvalidTime),
		errors.Is(err, rollout.ErrInvalidName):
		return fiber.StatusBadRequest, true
	}
	return fiber.StatusInternalServerError, false
}

func respondError(c *fiber.Ctx, logger logrus.FieldLogger, operation string, err error) error {
	status, known := statusFor(err)
	if !known {
		utils.LogError(logger, operation, err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		return c.Status(status).JSON(fiber.Map{"error": ErrInternal})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// parseBody decodes and validates the request body into req. It writes
// nothing; callers answer a non-nil error with badRequest.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.New(ErrInvalidRequestBody)
	}
	return utils.ValidateStruct(req)
}
