package handlers

import (
	"errors"
	"strconv"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/core/services"
	"coop-backoffice/internal/pkg/pagination"
	"coop-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	userService   *services.UserService
	accessService *services.AccessService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, accessService *services.AccessService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		accessService: accessService,
	}
}

// SetRoleRequest represents role assignment request body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// List handles user listing
// @Summary List users
// @Description List users with pagination
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(responses, params, total))
}

// Get handles getting a single user
// @Summary Get user
// @Description Get a user by ID
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user.ToResponse())
}

// Update handles user profile updates
// @Summary Update user
// @Description Update a user's profile fields
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}

// Delete handles user deletion
// @Summary Delete user
// @Description Soft delete a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// SetRole handles role assignment. The permission flags follow the role.
// @Summary Assign role
// @Description Assign a role to a user and sync permissions
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "Role name"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/role [put]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Role == "" {
		return response.BadRequest(c, "Role is required")
	}

	user, err := h.userService.SetRole(c.Context(), uint(id), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrRoleNotFound):
			return response.NotFound(c, "Role not found")
		default:
			return response.InternalServerError(c, "Failed to assign role")
		}
	}

	return response.Success(c, "Role assigned successfully", user.ToResponse())
}

// ListRoles handles role listing
// @Summary List roles
// @Description List all roles ordered by priority
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /roles [get]
func (h *UserHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.userService.ListRoles(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}
	return response.Success(c, "Roles retrieved successfully", roles)
}

// GetAccess handles reading a user's permission flags
// @Summary Get user access
// @Description Get the fine-grained permission flags for a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/access [get]
func (h *UserHandler) GetAccess(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	access, err := h.accessService.GetByUserID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrAccessNotFound) {
			return response.NotFound(c, "Access not found")
		}
		return response.InternalServerError(c, "Failed to get access")
	}

	return response.Success(c, "Access retrieved successfully", access)
}

// UpdateAccess handles overriding a user's permission flags
// @Summary Update user access
// @Description Replace the fine-grained permission flags for a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body models.AccessFlags true "Permission flags"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/access [put]
func (h *UserHandler) UpdateAccess(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var flags models.AccessFlags
	if err := c.BodyParser(&flags); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	access, err := h.accessService.UpdateFlags(c.Context(), uint(id), flags)
	if err != nil {
		if errors.Is(err, services.ErrAccessNotFound) {
			return response.NotFound(c, "Access not found")
		}
		return response.InternalServerError(c, "Failed to update access")
	}

	return response.Success(c, "Access updated successfully", access)
}
