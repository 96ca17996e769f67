package service

import (
	"testing"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdminServiceTest(t *testing.T) (AdminService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)
	return NewAdminService(userRepo, storeRepo, ratingRepo), testDB
}

func TestAdminService_Stats(t *testing.T) {
	svc, database := setupAdminServiceTest(t)

	t.Run("Empty platform", func(t *testing.T) {
		stats, err := svc.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalUsers)
		assert.Equal(t, int64(0), stats.TotalStores)
		assert.Equal(t, int64(0), stats.TotalRatings)
		assert.Equal(t, float64(0), stats.AvgRating)
	})

	t.Run("Counts reflect live data", func(t *testing.T) {
		user := createTestUser(t, database, "stat-user@example.com", model.RoleUser)
		createTestUser(t, database, "stat-admin@example.com", model.RoleAdmin)
		store := createTestStore(t, database, "stat-store@example.com")
		require.NoError(t, database.Create(&model.Rating{UserID: user.ID, StoreID: store.ID, Rating: 4}).Error)

		stats, err := svc.Stats()
		require.NoError(t, err)
		// Admin accounts are not counted as platform users
		assert.Equal(t, int64(1), stats.TotalUsers)
		assert.Equal(t, int64(1), stats.TotalStores)
		assert.Equal(t, int64(1), stats.TotalRatings)
		assert.InDelta(t, 4.0, stats.AvgRating, 0.0001)
	})
}

func TestAdminService_CreateUser(t *testing.T) {
	svc, _ := setupAdminServiceTest(t)

	t.Run("Admin role allowed", func(t *testing.T) {
		user, err := svc.CreateUser("Second Admin", "admin2@example.com", "Secret@123", "", "admin")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("Same validation as self registration", func(t *testing.T) {
		_, err := svc.CreateUser("ab", "x@example.com", "Secret@123", "", "user")
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = svc.CreateUser("Valid Name", "x@example.com", "weakpass", "", "user")
		assert.ErrorIs(t, err, ErrWeakPassword)

		_, err = svc.CreateUser("Valid Name", "admin2@example.com", "Secret@123", "", "user")
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAdminService_GetUserDetails(t *testing.T) {
	svc, database := setupAdminServiceTest(t)

	t.Run("Plain user has no store rating", func(t *testing.T) {
		user := createTestUser(t, database, "detail-user@example.com", model.RoleUser)

		details, err := svc.GetUserDetails(user.ID)
		require.NoError(t, err)
		assert.Nil(t, details.StoreRating)
	})

	t.Run("Owner gets average across owned stores", func(t *testing.T) {
		owner := createTestUser(t, database, "detail-owner@example.com", model.RoleStoreOwner)
		rater := createTestUser(t, database, "detail-rater@example.com", model.RoleUser)

		storeA := &model.Store{Name: "A", Email: "detail-a@example.com", OwnerID: &owner.ID}
		storeB := &model.Store{Name: "B", Email: "detail-b@example.com", OwnerID: &owner.ID}
		require.NoError(t, database.Create(storeA).Error)
		require.NoError(t, database.Create(storeB).Error)

		require.NoError(t, database.Create(&model.Rating{UserID: rater.ID, StoreID: storeA.ID, Rating: 5}).Error)
		require.NoError(t, database.Create(&model.Rating{UserID: rater.ID, StoreID: storeB.ID, Rating: 2}).Error)

		details, err := svc.GetUserDetails(owner.ID)
		require.NoError(t, err)
		require.NotNil(t, details.StoreRating)
		assert.InDelta(t, 3.5, *details.StoreRating, 0.0001)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := svc.GetUserDetails(99999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
