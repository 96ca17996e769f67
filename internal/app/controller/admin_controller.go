package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
)

// AdminController serves the admin portal: platform stats and user
// management. Store management reuses StoreController under admin-gated
// routes.
type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

type AdminCreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// Stats returns the platform dashboard counters
// GET /api/v1/admin/stats
func (ctrl *AdminController) Stats(c *gin.Context) {
	stats, err := ctrl.adminService.Stats()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateUser creates an account with any valid role
// POST /api/v1/admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name, email and password are required")
		return
	}

	user, err := ctrl.adminService.CreateUser(req.Name, req.Email, req.Password, req.Address, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "This email is already registered")
		case errors.Is(err, service.ErrWeakPassword):
			apperrors.BadRequest(c, apperrors.ValidationWeakPassword,
				"Password must be 8-16 characters with at least one uppercase letter and one special character")
		case errors.Is(err, service.ErrInvalidName):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name must be between 3 and 60 characters")
		case errors.Is(err, service.ErrInvalidAddress):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Address must be at most 400 characters")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid role")
		default:
			log.Error("Admin user creation failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    userPayload(user),
	})
}

// ListUsers lists non-admin users with rating activity, filterable and
// sortable
// GET /api/v1/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	filter := repository.UserFilter{
		Name:      c.Query("name"),
		Email:     c.Query("email"),
		Address:   c.Query("address"),
		Role:      c.Query("role"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	users, err := ctrl.adminService.ListUsers(filter)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// GetUser returns one user's details, including the average rating of
// their stores when they are a store owner
// GET /api/v1/admin/users/:id
func (ctrl *AdminController) GetUser(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid user ID")
		return
	}

	details, err := ctrl.adminService.GetUserDetails(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, details)
}
