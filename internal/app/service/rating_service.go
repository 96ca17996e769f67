package service

import (
	"errors"
	"math"
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound     = errors.New("rating not found")
	ErrInvalidRatingValue = errors.New("rating must be between 1 and 5")
	ErrStoreNotFound      = errors.New("store not found")
	ErrNotRatingOwner     = errors.New("only the rating's author or an admin can modify it")
	ErrDuplicateRating    = errors.New("user has already rated this store")
)

// UserRatingSummary is the payload behind GET /ratings/user/stats.
type UserRatingSummary struct {
	Total         int64          `json:"total"`
	Commented     int64          `json:"commented"`
	Average       float64        `json:"average"`
	FirstRatedAt  *time.Time     `json:"first_rated_at,omitempty"`
	LastRatedAt   *time.Time     `json:"last_rated_at,omitempty"`
	FavoriteStore *model.Store   `json:"favorite_store,omitempty"`
	Recent        []model.Rating `json:"recent"`
}

type RatingService interface {
	Submit(userID, storeID uint, value int, comment string) (*model.Rating, bool, error)
	Update(ratingID, actorID uint, actorRole model.UserRole, value int, comment string) (*model.Rating, error)
	Delete(ratingID, actorID uint, actorRole model.UserRole) error
	Get(ratingID uint) (*model.Rating, error)
	ListForStore(storeID uint) ([]model.Rating, *repository.StoreAggregate, error)
	ListAll() ([]model.Rating, error)
	UserStats(userID uint) (*UserRatingSummary, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, storeRepo repository.StoreRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
	}
}

// Submit records the user's rating for a store, updating the existing row
// when one exists. Returns true when a new rating was created.
//
// The check-then-write below is an optimization only: the unique index on
// (user_id, store_id) is what actually prevents duplicates. When two
// submissions race, the loser's insert fails on the index and is retried
// as an update against the winner's row.
func (s *ratingService) Submit(userID, storeID uint, value int, comment string) (*model.Rating, bool, error) {
	if value < model.MinRating || value > model.MaxRating {
		return nil, false, ErrInvalidRatingValue
	}
	if _, err := s.storeRepo.FindByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrStoreNotFound
		}
		return nil, false, err
	}

	existing, err := s.ratingRepo.FindByUserAndStore(userID, storeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if existing != nil {
		existing.Rating = value
		existing.Comment = comment
		if err := s.ratingRepo.Update(existing); err != nil {
			return nil, false, err
		}
		logger.Info("Rating updated", map[string]interface{}{
			"rating_id": existing.ID,
			"user_id":   userID,
			"store_id":  storeID,
			"value":     value,
		})
		return existing, false, nil
	}

	rating := &model.Rating{
		UserID:  userID,
		StoreID: storeID,
		Rating:  value,
		Comment: comment,
	}
	if err := s.ratingRepo.Create(rating); err != nil {
		if !apperrors.IsDuplicateKey(err) {
			return nil, false, err
		}
		// Lost a race against a concurrent first rating; take over its row.
		winner, findErr := s.ratingRepo.FindByUserAndStore(userID, storeID)
		if findErr != nil {
			return nil, false, ErrDuplicateRating
		}
		winner.Rating = value
		winner.Comment = comment
		if err := s.ratingRepo.Update(winner); err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}

	logger.Info("Rating created", map[string]interface{}{
		"rating_id": rating.ID,
		"user_id":   userID,
		"store_id":  storeID,
		"value":     value,
	})
	return rating, true, nil
}

// Update modifies an existing rating. Only the rating's author or an admin
// may do so.
func (s *ratingService) Update(ratingID, actorID uint, actorRole model.UserRole, value int, comment string) (*model.Rating, error) {
	if value < model.MinRating || value > model.MaxRating {
		return nil, ErrInvalidRatingValue
	}

	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	if rating.UserID != actorID && actorRole != model.RoleAdmin {
		return nil, ErrNotRatingOwner
	}

	rating.Rating = value
	rating.Comment = comment
	if err := s.ratingRepo.Update(rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) Delete(ratingID, actorID uint, actorRole model.UserRole) error {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		return err
	}
	if rating.UserID != actorID && actorRole != model.RoleAdmin {
		return ErrNotRatingOwner
	}

	if err := s.ratingRepo.Delete(ratingID); err != nil {
		return err
	}

	logger.Info("Rating deleted", map[string]interface{}{
		"rating_id": ratingID,
		"actor_id":  actorID,
	})
	return nil
}

func (s *ratingService) Get(ratingID uint) (*model.Rating, error) {
	rating, err := s.ratingRepo.FindByID(ratingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) ListForStore(storeID uint) ([]model.Rating, *repository.StoreAggregate, error) {
	if _, err := s.storeRepo.FindByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStoreNotFound
		}
		return nil, nil, err
	}

	ratings, err := s.ratingRepo.ListByStore(storeID)
	if err != nil {
		return nil, nil, err
	}
	agg, err := s.ratingRepo.AggregateForStore(storeID)
	if err != nil {
		return nil, nil, err
	}
	agg.Average = Round2(agg.Average)
	return ratings, agg, nil
}

func (s *ratingService) ListAll() ([]model.Rating, error) {
	return s.ratingRepo.ListAll()
}

// UserStats summarizes the user's rating activity. The favorite store is
// the one the user rated highest, ties broken by most recent rating.
func (s *ratingService) UserStats(userID uint) (*UserRatingSummary, error) {
	stats, err := s.ratingRepo.UserStats(userID)
	if err != nil {
		return nil, err
	}

	summary := &UserRatingSummary{
		Total:        stats.Total,
		Commented:    stats.Commented,
		Average:      Round2(stats.Average),
		FirstRatedAt: stats.FirstRatedAt,
		LastRatedAt:  stats.LastRatedAt,
		Recent:       []model.Rating{},
	}
	if stats.Total == 0 {
		return summary, nil
	}

	ratings, err := s.ratingRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	var favorite *model.Rating
	for i := range ratings {
		r := &ratings[i]
		if favorite == nil || r.Rating > favorite.Rating ||
			(r.Rating == favorite.Rating && r.UpdatedAt.After(favorite.UpdatedAt)) {
			favorite = r
		}
	}
	if favorite != nil && favorite.Store.ID != 0 {
		store := favorite.Store
		summary.FavoriteStore = &store
	}

	if len(ratings) > 5 {
		ratings = ratings[:5]
	}
	summary.Recent = ratings
	return summary, nil
}

// Round2 rounds to two decimal places for presentation. Internally
// averages stay full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
