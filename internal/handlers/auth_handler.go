package handlers

import (
	"errors"
	"log"

	"coffeestock/internal/models"
	"coffeestock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	store *services.CredentialStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *services.CredentialStore) *AuthHandler {
	return &AuthHandler{
		store: store,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/status", h.HandleStatus)
}

// CredentialsRequest represents the request body for signup and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignup registers a new account. It does not log the user in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	result := h.store.CreateUser(c.UserContext(), req.Username, req.Password)
	if !result.Success {
		return c.Status(resultStatus(result)).JSON(result)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleLogin validates credentials and starts the device session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	result := h.store.ValidateCredentials(c.UserContext(), req.Username, req.Password)
	if !result.Success {
		return c.Status(resultStatus(result)).JSON(result)
	}

	resp := fiber.Map{
		"success":  true,
		"username": h.store.CurrentUser(),
	}
	if result.Error != "" {
		resp["warning"] = result.Error
	}
	return c.JSON(resp)
}

// HandleLogout ends the session. It always succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.store.Logout(c.UserContext())
	return c.JSON(models.Ok())
}

// HandleStatus reports the restored session state.
func (h *AuthHandler) HandleStatus(c *fiber.Ctx) error {
	loggedIn := h.store.CheckAuthStatus(c.UserContext())
	return c.JSON(fiber.Map{
		"isLoggedIn":  loggedIn,
		"currentUser": h.store.CurrentUser(),
	})
}

func resultStatus(result models.Result) int {
	switch {
	case errors.Is(result.Kind, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(result.Kind, services.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(result.Kind, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(result.Kind, services.ErrOperationTimedOut):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
