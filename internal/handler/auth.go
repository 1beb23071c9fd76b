package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tuncerburak97/iskele/internal/validate"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// newTokenResponse mints placeholder tokens. No signing or verification
// happens anywhere in the scaffold.
func newTokenResponse() tokenResponse {
	return tokenResponse{
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresIn:    3600,
	}
}

func (h *Handler) register(c *fiber.Ctx) error {
	if err := validate.Body(c,
		validate.Required("/email"),
		validate.String("/email"),
		validate.Required("/password"),
		validate.String("/password"),
		validate.MinLength("/password", 8),
		validate.Required("/name"),
		validate.String("/name"),
	); err != nil {
		return err
	}

	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	_ = json.Unmarshal(c.Body(), &req)

	user := userResponse{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": newTokenResponse(),
	})
}

// login always succeeds with a canned token pair; there are no stored
// credentials to check against.
func (h *Handler) login(c *fiber.Ctx) error {
	if err := validate.Body(c,
		validate.Required("/email"),
		validate.String("/email"),
		validate.Required("/password"),
		validate.String("/password"),
	); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": newTokenResponse()})
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	if err := validate.Body(c,
		validate.Required("/refreshToken"),
		validate.String("/refreshToken"),
	); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": newTokenResponse()})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out"})
}
