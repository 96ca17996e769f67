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

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

type SubmitRatingRequest struct {
	StoreID uint   `json:"store_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type UpdateRatingRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Submit creates or replaces the caller's rating for a store.
// Responds 201 when a new rating was created, 200 when an existing one
// was updated.
// POST /api/v1/ratings
func (ctrl *RatingController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "store_id and rating are required")
		return
	}

	rating, created, err := ctrl.ratingService.Submit(userID, req.StoreID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRatingValue):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
		case errors.Is(err, service.ErrDuplicateRating):
			apperrors.BadRequest(c, apperrors.RatingAlreadyExists, "You have already rated this store")
		default:
			log.Error("Failed to submit rating", err, map[string]interface{}{
				"user_id":  userID,
				"store_id": req.StoreID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit rating")
		}
		return
	}

	status := http.StatusOK
	message := "Rating updated"
	if created {
		status = http.StatusCreated
		message = "Rating created"
	}
	c.JSON(status, gin.H{
		"message": message,
		"rating":  rating,
	})
}

// Update modifies a rating by ID
// PUT /api/v1/ratings/:id
func (ctrl *RatingController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	ratingID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid rating ID")
		return
	}

	var req UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "rating is required")
		return
	}

	rating, err := ctrl.ratingService.Update(ratingID, userID, role, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
		case errors.Is(err, service.ErrInvalidRatingValue):
			apperrors.BadRequest(c, apperrors.RatingInvalidValue, "Rating must be an integer between 1 and 5")
		case errors.Is(err, service.ErrNotRatingOwner):
			apperrors.Forbidden(c, "You can only modify your own ratings")
		default:
			log.Error("Failed to update rating", err, map[string]interface{}{
				"rating_id": ratingID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating updated",
		"rating":  rating,
	})
}

// Delete removes a rating by ID
// DELETE /api/v1/ratings/:id
func (ctrl *RatingController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	ratingID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid rating ID")
		return
	}

	if err := ctrl.ratingService.Delete(ratingID, userID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			apperrors.NotFound(c, apperrors.RatingNotFound, "Rating not found")
		case errors.Is(err, service.ErrNotRatingOwner):
			apperrors.Forbidden(c, "You can only delete your own ratings")
		default:
			log.Error("Failed to delete rating", err, map[string]interface{}{
				"rating_id": ratingID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted"})
}

// ListForStore returns a store's ratings with its aggregate
// GET /api/v1/ratings/store/:storeId
func (ctrl *RatingController) ListForStore(c *gin.Context) {
	storeID, err := parseIDParam(c, "storeId")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid store ID")
		return
	}

	ratings, agg, err := ctrl.ratingService.ListForStore(storeID)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ratings":        ratings,
		"average_rating": agg.Average,
		"rating_count":   agg.Count,
	})
}

// UserStats summarizes the caller's rating activity
// GET /api/v1/ratings/user/stats
func (ctrl *RatingController) UserStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	summary, err := ctrl.ratingService.UserStats(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListAll returns every rating on the platform, for admins
// GET /api/v1/ratings
func (ctrl *RatingController) ListAll(c *gin.Context) {
	ratings, err := ctrl.ratingService.ListAll()
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ratings": ratings,
		"count":   len(ratings),
	})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id parameter")
	}
	return uint(id), nil
}
