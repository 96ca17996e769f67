package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

type CreateStoreRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Address          string `json:"address"`
	Category         string `json:"category"`
	Phone            string `json:"phone"`
	Website          string `json:"website"`
	Description      string `json:"description"`
	OwnerEmail       string `json:"owner_email"`
	OwnerName        string `json:"owner_name"`
	Image            string `json:"image"`
	ImageContentType string `json:"image_content_type"`
}

type UpdateStoreRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Category    *string `json:"category"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

// List returns stores with their rating aggregates. When the request
// carries a valid token, each store also includes the caller's own rating.
// GET /api/v1/stores
func (ctrl *StoreController) List(c *gin.Context) {
	filter := repository.StoreFilter{
		Name:       c.Query("name"),
		Address:    c.Query("address"),
		Category:   c.Query("category"),
		SearchTerm: c.Query("q"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	var viewerID *uint
	if id, ok := middleware.GetUserID(c); ok {
		viewerID = &id
	}

	stores, err := ctrl.storeService.List(filter, viewerID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// Get returns one store with its aggregate
// GET /api/v1/stores/:id
func (ctrl *StoreController) Get(c *gin.Context) {
	storeID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid store ID")
		return
	}

	var viewerID *uint
	if id, ok := middleware.GetUserID(c); ok {
		viewerID = &id
	}

	store, err := ctrl.storeService.Get(storeID, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": store})
}

// Top returns the highest-rated stores
// GET /api/v1/stores/top
func (ctrl *StoreController) Top(c *gin.Context) {
	opts := service.TopStoresOptions{}
	if v, err := strconv.Atoi(c.DefaultQuery("min_count", "0")); err == nil {
		opts.MinCount = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		opts.Limit = v
	}

	stores, err := ctrl.storeService.Top(opts)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores": stores,
		"count":  len(stores),
	})
}

// Suggest returns typeahead suggestions for the search box
// GET /api/v1/stores/search/suggest?q=...
func (ctrl *StoreController) Suggest(c *gin.Context) {
	suggestions, err := ctrl.storeService.Suggest(c.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrNoSuggestTerm) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Search term must be at least 2 characters")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Create registers a new store, admin only. A previously unknown owner
// email gets a provisioned account whose temporary password is included in
// the response, once.
// POST /api/v1/stores
func (ctrl *StoreController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name and email are required")
		return
	}

	store, provisioned, err := ctrl.storeService.Create(c.Request.Context(), service.CreateStoreInput{
		Name:             req.Name,
		Email:            req.Email,
		Address:          req.Address,
		Category:         req.Category,
		Phone:            req.Phone,
		Website:          req.Website,
		Description:      req.Description,
		OwnerEmail:       req.OwnerEmail,
		OwnerName:        req.OwnerName,
		ImageData:        req.Image,
		ImageContentType: req.ImageContentType,
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
			log.Error("Failed to create store", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create store")
		}
		return
	}

	response := gin.H{
		"message": "Store created successfully",
		"store":   store,
	}
	if provisioned != nil {
		response["owner"] = gin.H{
			"id":            provisioned.User.ID,
			"email":         provisioned.User.Email,
			"temp_password": provisioned.TempPassword,
		}
	}
	c.JSON(http.StatusCreated, response)
}

// Update modifies a store, admin only
// PUT /api/v1/stores/:id
func (ctrl *StoreController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	storeID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid store ID")
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid store input")
		return
	}

	store, err := ctrl.storeService.Update(storeID, service.UpdateStoreInput{
		Name:        req.Name,
		Address:     req.Address,
		Category:    req.Category,
		Phone:       req.Phone,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		log.Error("Failed to update store", err, map[string]interface{}{
			"store_id": storeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update store")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"store":   store,
	})
}

// Delete removes a store, admin only. Its ratings go with it.
// DELETE /api/v1/stores/:id
func (ctrl *StoreController) Delete(c *gin.Context) {
	storeID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid store ID")
		return
	}

	if err := ctrl.storeService.Delete(storeID); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}
