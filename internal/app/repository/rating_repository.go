package repository

import (
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreAggregate is a store's rating summary, always computed from the
// ratings table at read time. Average is 0 when Count is 0.
type StoreAggregate struct {
	StoreID uint    `json:"store_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// UserRatingStats summarizes one user's rating activity. Commented counts
// the subset of ratings that carry a non-empty comment.
type UserRatingStats struct {
	Total        int64
	Commented    int64
	Average      float64
	FirstRatedAt *time.Time
	LastRatedAt  *time.Time
}

// PlatformStats is the platform-wide aggregate shown on the admin dashboard.
type PlatformStats struct {
	TotalUsers   int64   `json:"total_users"`
	TotalStores  int64   `json:"total_stores"`
	TotalRatings int64   `json:"total_ratings"`
	AvgRating    float64 `json:"avg_rating"`
}

type RatingRepository interface {
	Create(rating *model.Rating) error
	FindByID(id uint) (*model.Rating, error)
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	Update(rating *model.Rating) error
	Delete(id uint) error
	ListByStore(storeID uint) ([]model.Rating, error)
	ListByUser(userID uint) ([]model.Rating, error)
	ListAll() ([]model.Rating, error)
	AggregateForStore(storeID uint) (*StoreAggregate, error)
	AggregatesForStores(storeIDs []uint) (map[uint]StoreAggregate, error)
	UserRatingsForStores(userID uint, storeIDs []uint) (map[uint]model.Rating, error)
	UserStats(userID uint) (*UserRatingStats, error)
	CountAndAverage() (int64, float64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.Rating) error {
	if err := r.db.Create(rating).Error; err != nil {
		return err
	}

	logger.Debug("Rating created in database", map[string]interface{}{
		"rating_id": rating.ID,
		"user_id":   rating.UserID,
		"store_id":  rating.StoreID,
	})
	return nil
}

func (r *ratingRepository) FindByID(id uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.Preload("User").Preload("Store").First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) Update(rating *model.Rating) error {
	if err := r.db.Save(rating).Error; err != nil {
		logger.Error("Failed to update rating in database", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

// Delete removes the rating row permanently. Ratings are not soft deleted:
// a lingering soft-deleted row would trip the (user_id, store_id) unique
// index when the user rates the store again.
func (r *ratingRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&model.Rating{}, id).Error
}

func (r *ratingRepository) ListByStore(storeID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Preload("User").
		Where("store_id = ?", storeID).
		Order("updated_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) ListByUser(userID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Preload("Store").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) ListAll() ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Preload("User").Preload("Store").
		Order("updated_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) AggregateForStore(storeID uint) (*StoreAggregate, error) {
	agg := StoreAggregate{StoreID: storeID}
	err := r.db.Model(&model.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("store_id = ?", storeID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// AggregatesForStores computes averages for many stores in one GROUP BY
// query. Stores with no ratings are absent from the result map.
func (r *ratingRepository) AggregatesForStores(storeIDs []uint) (map[uint]StoreAggregate, error) {
	result := make(map[uint]StoreAggregate, len(storeIDs))
	if len(storeIDs) == 0 {
		return result, nil
	}

	var rows []StoreAggregate
	err := r.db.Model(&model.Rating{}).
		Select("store_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("store_id IN ?", storeIDs).
		Group("store_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.StoreID] = row
	}
	return result, nil
}

// UserRatingsForStores returns the rating (value and comment) the given
// user assigned to each of the given stores, keyed by store ID.
func (r *ratingRepository) UserRatingsForStores(userID uint, storeIDs []uint) (map[uint]model.Rating, error) {
	result := make(map[uint]model.Rating, len(storeIDs))
	if len(storeIDs) == 0 {
		return result, nil
	}

	var rows []model.Rating
	err := r.db.Select("store_id", "rating", "comment").
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.StoreID] = row
	}
	return result, nil
}

func (r *ratingRepository) UserStats(userID uint) (*UserRatingStats, error) {
	var stats UserRatingStats
	err := r.db.Model(&model.Rating{}).
		Select("COUNT(*) AS total, COUNT(CASE WHEN comment <> '' THEN 1 END) AS commented, COALESCE(AVG(rating), 0) AS average, MIN(created_at) AS first_rated_at, MAX(created_at) AS last_rated_at").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ratingRepository) CountAndAverage() (int64, float64, error) {
	var row struct {
		Count   int64
		Average float64
	}
	err := r.db.Model(&model.Rating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Average, nil
}
