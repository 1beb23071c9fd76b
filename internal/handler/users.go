package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tuncerburak97/iskele/internal/apierror"
	"github.com/tuncerburak97/iskele/internal/validate"
)

// cannedUser is what every user lookup returns until real persistence
// lands.
func cannedUser(id string) userResponse {
	return userResponse{
		ID:        id,
		Email:     "jane.doe@example.com",
		Name:      "Jane Doe",
		Role:      "user",
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (h *Handler) currentUser(c *fiber.Ctx) error {
	return c.JSON(cannedUser(uuid.New().String()))
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	users := []userResponse{
		cannedUser("7f9c24e5-2c31-4a3b-9a14-62303b2f1d01"),
		cannedUser("b0b2f7d8-41cc-4e57-8c3e-5b8a4d9e2f02"),
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := requireUserID(c)
	if err != nil {
		return err
	}
	return c.JSON(cannedUser(id))
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, err := requireUserID(c)
	if err != nil {
		return err
	}

	if err := validate.Body(c,
		validate.String("/email"),
		validate.String("/name"),
		validate.OneOf("/role", "user", "admin"),
	); err != nil {
		return err
	}

	return c.JSON(cannedUser(id))
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	if _, err := requireUserID(c); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func requireUserID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apierror.NewValidationError(apierror.Problem{
			Field:    "/id",
			Message:  "must be a valid UUID",
			Provided: id,
		})
	}
	return id, nil
}
