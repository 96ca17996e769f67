package repository

import (
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

// StoreFilter narrows store listings. SearchTerm matches name OR address
// and takes precedence over the individual Name/Address filters.
type StoreFilter struct {
	Name       string
	Address    string
	Category   string
	SearchTerm string
	Email      string
	SortBy     string // name, created_at (rating sorts happen in the service)
	SortOrder  string // asc, desc
}

type StoreRepository interface {
	Create(store *model.Store) error
	BulkCreate(stores []model.Store, batchSize int) error
	FindByID(id uint) (*model.Store, error)
	FindByEmail(email string) (*model.Store, error)
	FindByOwner(ownerID uint) ([]model.Store, error)
	Update(store *model.Store) error
	Delete(id uint) error
	List(filter StoreFilter) ([]model.Store, error)
	Suggest(term string, limit int) ([]model.Store, error)
	Count() (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":  store.Name,
			"email": store.Email,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

// BulkCreate inserts stores in batches, for the xlsx import tool.
func (r *storeRepository) BulkCreate(stores []model.Store, batchSize int) error {
	if len(stores) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(stores, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create stores", err, map[string]interface{}{
			"count": len(stores),
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Preload("Owner").First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByEmail(email string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("email = ?", email).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByOwner(ownerID uint) ([]model.Store, error) {
	var stores []model.Store
	if err := r.db.Where("owner_id = ?", ownerID).Order("name ASC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) Update(store *model.Store) error {
	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
		})
		return err
	}
	return nil
}

func (r *storeRepository) Delete(id uint) error {
	return r.db.Delete(&model.Store{}, id).Error
}

func (r *storeRepository) List(filter StoreFilter) ([]model.Store, error) {
	query := r.db.Model(&model.Store{}).Preload("Owner")

	if filter.SearchTerm != "" {
		pattern := "%" + filter.SearchTerm + "%"
		query = query.Where("name LIKE ? OR address LIKE ?", pattern, pattern)
	} else {
		if filter.Name != "" {
			query = query.Where("name LIKE ?", "%"+filter.Name+"%")
		}
		if filter.Address != "" {
			query = query.Where("address LIKE ?", "%"+filter.Address+"%")
		}
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Email != "" {
		query = query.Where("email LIKE ?", "%"+filter.Email+"%")
	}

	query = query.Order(storeOrderClause(filter.SortBy, filter.SortOrder))

	var stores []model.Store
	if err := query.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Suggest returns a small result set for typeahead, matching the term as a
// substring of the store name or address.
func (r *storeRepository) Suggest(term string, limit int) ([]model.Store, error) {
	var stores []model.Store
	pattern := "%" + term + "%"
	err := r.db.Select("id", "name", "address", "category").
		Where("name LIKE ? OR address LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Store{}).Count(&count).Error
	return count, err
}

func storeOrderClause(sortBy, sortOrder string) string {
	column := "name"
	switch sortBy {
	case "created_at":
		column = "created_at"
	case "email":
		column = "email"
	}
	if sortOrder == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}
