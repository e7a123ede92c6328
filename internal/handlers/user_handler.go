package handlers

import (
	"usersvc/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/users", h.HandleCreateUser)
	router.Get("/users", h.HandleGetUsers)
	router.Get("/users/:userId", h.HandleGetUserByID)
	router.Put("/users/:userId", h.HandleUpdateUser)
	router.Delete("/users/:userId", h.HandleDeleteUser)
}

// HandleCreateUser creates a user and echoes it back with the password masked.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	user, err := h.service.CreateUser(c.UserContext(), c.Body())
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}
	return respond(c, fiber.StatusCreated, "User created successfully!", user)
}

// HandleGetUsers lists all users in summary form.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch users")
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully!", users)
}

// HandleGetUserByID retrieves a single user by its userId.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	user, err := h.service.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	return respond(c, fiber.StatusOK, "User fetched successfully!", user)
}

// HandleUpdateUser replaces a user's profile with a validated document.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	user, err := h.service.UpdateUser(c.UserContext(), userID, c.Body())
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return respond(c, fiber.StatusOK, "User updated successfully!", user)
}

// HandleDeleteUser deletes a user and its orders.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	if err := h.service.DeleteUser(c.UserContext(), userID); err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	return respond(c, fiber.StatusOK, "User deleted successfully!", nil)
}
