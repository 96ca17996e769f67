package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
)

// OwnerController serves the store-owner portal: the owner's stores and
// their rating breakdowns.
type OwnerController struct {
	storeService service.StoreService
}

func NewOwnerController(storeService service.StoreService) *OwnerController {
	return &OwnerController{storeService: storeService}
}

// Dashboard returns the owner's stores with aggregates and rater lists.
// An optional ?store_id= scopes it to one store, which must belong to the
// caller.
// GET /api/v1/owner/dashboard
func (ctrl *OwnerController) Dashboard(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var storeID *uint
	if raw := c.Query("store_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid store ID")
			return
		}
		v := uint(id)
		storeID = &v
	}

	dashboard, err := ctrl.storeService.Dashboard(ownerID, storeID)
	if err != nil {
		if errors.Is(err, service.ErrNotStoreOwner) {
			apperrors.Forbidden(c, "This store does not belong to you")
			return
		}
		log.Error("Failed to build owner dashboard", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

type OwnerCreateStoreRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Address          string `json:"address"`
	Category         string `json:"category"`
	Phone            string `json:"phone"`
	Website          string `json:"website"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	ImageContentType string `json:"image_content_type"`
}

// CreateStore registers a store owned by the caller. Unlike the admin
// route there is no owner resolution: the authenticated account becomes
// the owner.
// POST /api/v1/owner/stores
func (ctrl *OwnerController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req OwnerCreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and email are required")
		return
	}

	store, _, err := ctrl.storeService.Create(c.Request.Context(), service.CreateStoreInput{
		Name:             req.Name,
		Email:            req.Email,
		Address:          req.Address,
		Category:         req.Category,
		Phone:            req.Phone,
		Website:          req.Website,
		Description:      req.Description,
		ImageData:        req.Image,
		ImageContentType: req.ImageContentType,
		OwnerID:          &ownerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreEmailExists):
			apperrors.BadRequest(c, apperrors.StoreEmailExists, "A store with this email already exists")
		case errors.Is(err, service.ErrImageTooLarge):
			apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge,
				apperrors.UploadPayloadTooLarge, "Image payload is too large")
		case errors.Is(err, service.ErrInvalidStoreInput):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and email are required")
		default:
			log.Error("Failed to create owner store", err, map[string]interface{}{
				"owner_id": ownerID,
				"name":     req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   store,
	})
}

// Stores lists the caller's stores with aggregates
// GET /api/v1/owner/stores
func (ctrl *OwnerController) Stores(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	stores, err := ctrl.storeService.StoresByOwner(ownerID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}
