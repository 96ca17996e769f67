package repository

import (
	"testing"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStoreRepoTest(t *testing.T) (StoreRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewStoreRepository(testDB), testDB
}

func seedStores(t *testing.T, repo StoreRepository) {
	t.Helper()
	stores := []model.Store{
		{Name: "Corner Bakery", Email: "bakery@example.com", Address: "12 River Road", Category: "bakery"},
		{Name: "River Cafe", Email: "cafe@example.com", Address: "40 River Road", Category: "cafe"},
		{Name: "Hill Books", Email: "books@example.com", Address: "3 Hill Street", Category: "books"},
	}
	for i := range stores {
		require.NoError(t, repo.Create(&stores[i]))
	}
}

func TestStoreRepository_CreateAndFind(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)

	store := &model.Store{Name: "Test Store", Email: "test@example.com", Address: "Somewhere"}
	require.NoError(t, repo.Create(store))
	require.NotZero(t, store.ID)

	found, err := repo.FindByID(store.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Store", found.Name)

	byEmail, err := repo.FindByEmail("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, store.ID, byEmail.ID)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreRepository_DuplicateEmail(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)

	require.NoError(t, repo.Create(&model.Store{Name: "A", Email: "same@example.com"}))
	err := repo.Create(&model.Store{Name: "B", Email: "same@example.com"})
	assert.Error(t, err)
}

func TestStoreRepository_List(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)
	seedStores(t, repo)

	t.Run("No filter", func(t *testing.T) {
		stores, err := repo.List(StoreFilter{})
		require.NoError(t, err)
		assert.Len(t, stores, 3)
	})

	t.Run("Name filter", func(t *testing.T) {
		stores, err := repo.List(StoreFilter{Name: "River"})
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "River Cafe", stores[0].Name)
	})

	t.Run("Search term matches name or address", func(t *testing.T) {
		stores, err := repo.List(StoreFilter{SearchTerm: "River"})
		require.NoError(t, err)
		assert.Len(t, stores, 2)
	})

	t.Run("Category filter", func(t *testing.T) {
		stores, err := repo.List(StoreFilter{Category: "books"})
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "Hill Books", stores[0].Name)
	})

	t.Run("Sorted by name desc", func(t *testing.T) {
		stores, err := repo.List(StoreFilter{SortBy: "name", SortOrder: "desc"})
		require.NoError(t, err)
		require.Len(t, stores, 3)
		assert.Equal(t, "River Cafe", stores[0].Name)
	})
}

func TestStoreRepository_Suggest(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)
	seedStores(t, repo)

	suggestions, err := repo.Suggest("Riv", 8)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)

	suggestions, err = repo.Suggest("Riv", 1)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestStoreRepository_FindByOwner(t *testing.T) {
	repo, database := setupStoreRepoTest(t)

	owner := model.User{Name: "Owner User", Email: "owner@example.com", PasswordHash: "h", Role: model.RoleStoreOwner}
	require.NoError(t, database.Create(&owner).Error)

	require.NoError(t, repo.Create(&model.Store{Name: "Owned A", Email: "a@example.com", OwnerID: &owner.ID}))
	require.NoError(t, repo.Create(&model.Store{Name: "Owned B", Email: "b@example.com", OwnerID: &owner.ID}))
	require.NoError(t, repo.Create(&model.Store{Name: "Unowned", Email: "c@example.com"}))

	stores, err := repo.FindByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, stores, 2)
	assert.Equal(t, "Owned A", stores[0].Name)
}

func TestStoreRepository_SoftDelete(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)

	store := &model.Store{Name: "Short Lived", Email: "gone@example.com"}
	require.NoError(t, repo.Create(store))
	require.NoError(t, repo.Delete(store.ID))

	_, err := repo.FindByID(store.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStoreRepository_BulkCreate(t *testing.T) {
	repo, _ := setupStoreRepoTest(t)

	stores := []model.Store{
		{Name: "Bulk One", Email: "bulk1@example.com"},
		{Name: "Bulk Two", Email: "bulk2@example.com"},
	}
	require.NoError(t, repo.BulkCreate(stores, 100))
	require.NoError(t, repo.BulkCreate(nil, 100))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
