package service

import (
	"errors"
	"strings"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

// UserDetails is the admin's view of one user. StoreRating is only set for
// store owners: the average rating across the stores they own.
type UserDetails struct {
	User        model.User `json:"user"`
	StoreRating *float64   `json:"store_rating,omitempty"`
}

type AdminService interface {
	Stats() (*repository.PlatformStats, error)
	CreateUser(name, email, password, address, role string) (*model.User, error)
	ListUsers(filter repository.UserFilter) ([]repository.UserWithStats, error)
	GetUserDetails(userID uint) (*UserDetails, error)
}

type adminService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// Stats computes the platform dashboard numbers at read time.
func (s *adminService) Stats() (*repository.PlatformStats, error) {
	users, err := s.userRepo.CountNonAdmin()
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	ratings, avg, err := s.ratingRepo.CountAndAverage()
	if err != nil {
		return nil, err
	}

	return &repository.PlatformStats{
		TotalUsers:   users,
		TotalStores:  stores,
		TotalRatings: ratings,
		AvgRating:    Round2(avg),
	}, nil
}

// CreateUser lets an admin create an account with any valid role, under
// the same validation rules as self-registration.
func (s *adminService) CreateUser(name, email, password, address, role string) (*model.User, error) {
	if role == "" {
		role = string(model.RoleUser)
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         model.UserRole(role),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("Admin created user", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
	return user, nil
}

func (s *adminService) ListUsers(filter repository.UserFilter) ([]repository.UserWithStats, error) {
	return s.userRepo.List(filter)
}

func (s *adminService) GetUserDetails(userID uint) (*UserDetails, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	details := &UserDetails{User: *user}
	if user.Role == model.RoleStoreOwner {
		stores, err := s.storeRepo.FindByOwner(user.ID)
		if err != nil {
			return nil, err
		}
		var sum float64
		var count int64
		for _, st := range stores {
			agg, err := s.ratingRepo.AggregateForStore(st.ID)
			if err != nil {
				return nil, err
			}
			sum += agg.Average * float64(agg.Count)
			count += agg.Count
		}
		rating := 0.0
		if count > 0 {
			rating = Round2(sum / float64(count))
		}
		details.StoreRating = &rating
	}
	return details, nil
}
