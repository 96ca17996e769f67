package repository

import (
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows admin user listings
type UserFilter struct {
	Name      string
	Email     string
	Address   string
	Role      string
	SortBy    string // name, email, role, created_at
	SortOrder string // asc, desc
}

// UserWithStats is a user row joined with rating activity, for the admin
// listing: how many ratings the user submitted, and the average rating of
// stores they own (meaningful for store owners only).
type UserWithStats struct {
	model.User
	RatingsCount int64   `json:"ratings_count"`
	StoreRating  float64 `json:"store_rating"`
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	Delete(id uint) error
	List(filter UserFilter) ([]UserWithStats, error)
	CountNonAdmin() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&model.User{}, id).Error
}

// List returns non-admin users filtered and joined with rating activity.
func (r *userRepository) List(filter UserFilter) ([]UserWithStats, error) {
	query := r.db.Model(&model.User{}).
		Select(`users.*,
			(SELECT COUNT(*) FROM ratings WHERE ratings.user_id = users.id) AS ratings_count,
			COALESCE((SELECT AVG(ratings.rating) FROM ratings
				JOIN stores ON stores.id = ratings.store_id
				WHERE stores.owner_id = users.id AND stores.deleted_at IS NULL), 0) AS store_rating`).
		Where("role != ?", model.RoleAdmin)

	if filter.Name != "" {
		query = query.Where("users.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Email != "" {
		query = query.Where("users.email LIKE ?", "%"+filter.Email+"%")
	}
	if filter.Address != "" {
		query = query.Where("users.address LIKE ?", "%"+filter.Address+"%")
	}
	if filter.Role != "" {
		query = query.Where("users.role = ?", filter.Role)
	}

	query = query.Order(userOrderClause(filter.SortBy, filter.SortOrder))

	var users []UserWithStats
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountNonAdmin() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("role != ?", model.RoleAdmin).Count(&count).Error
	return count, err
}

// userOrderClause whitelists sortable columns so user input never reaches
// the ORDER BY clause directly.
func userOrderClause(sortBy, sortOrder string) string {
	column := "users.name"
	switch sortBy {
	case "email":
		column = "users.email"
	case "role":
		column = "users.role"
	case "created_at":
		column = "users.created_at"
	}
	if sortOrder == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}
