package repository

import (
	"testing"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/db"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRatingRepoTest(t *testing.T) (RatingRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewRatingRepository(testDB), testDB
}

func seedUserAndStore(t *testing.T, database *gorm.DB, emailSuffix string) (uint, uint) {
	t.Helper()

	user := model.User{
		Name:         "Rating Tester",
		Email:        "rater-" + emailSuffix + "@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, database.Create(&user).Error)

	store := model.Store{
		Name:  "Store " + emailSuffix,
		Email: "store-" + emailSuffix + "@example.com",
	}
	require.NoError(t, database.Create(&store).Error)

	return user.ID, store.ID
}

func TestRatingRepository_Create(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeID := seedUserAndStore(t, database, "create")

	rating := &model.Rating{UserID: userID, StoreID: storeID, Rating: 4, Comment: "good"}
	require.NoError(t, repo.Create(rating))
	assert.NotZero(t, rating.ID)
}

func TestRatingRepository_UniqueIndexBlocksSecondRating(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeID := seedUserAndStore(t, database, "unique")

	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeID, Rating: 5}))

	err := repo.Create(&model.Rating{UserID: userID, StoreID: storeID, Rating: 3})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateKey(err))

	// A different user may still rate the same store
	otherID, _ := seedUserAndStore(t, database, "unique-other")
	require.NoError(t, repo.Create(&model.Rating{UserID: otherID, StoreID: storeID, Rating: 2}))
}

func TestRatingRepository_FindByUserAndStore(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeID := seedUserAndStore(t, database, "find")

	_, err := repo.FindByUserAndStore(userID, storeID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeID, Rating: 3}))

	found, err := repo.FindByUserAndStore(userID, storeID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Rating)
}

func TestRatingRepository_DeleteIsHard(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeID := seedUserAndStore(t, database, "delete")

	rating := &model.Rating{UserID: userID, StoreID: storeID, Rating: 1}
	require.NoError(t, repo.Create(rating))
	require.NoError(t, repo.Delete(rating.ID))

	// The unique index must not block re-rating after deletion
	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeID, Rating: 5}))

	var count int64
	require.NoError(t, database.Model(&model.Rating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRatingRepository_AggregateForStore(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	_, storeID := seedUserAndStore(t, database, "agg-0")

	t.Run("No ratings", func(t *testing.T) {
		agg, err := repo.AggregateForStore(storeID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), agg.Count)
		assert.Equal(t, float64(0), agg.Average)
	})

	t.Run("With ratings", func(t *testing.T) {
		for i, value := range []int{5, 4, 3} {
			uid, _ := seedUserAndStore(t, database, "agg-"+string(rune('a'+i)))
			require.NoError(t, repo.Create(&model.Rating{UserID: uid, StoreID: storeID, Rating: value}))
		}

		agg, err := repo.AggregateForStore(storeID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), agg.Count)
		assert.InDelta(t, 4.0, agg.Average, 0.0001)
	})
}

func TestRatingRepository_AggregatesForStores(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeA := seedUserAndStore(t, database, "multi-a")
	_, storeB := seedUserAndStore(t, database, "multi-b")
	_, storeEmpty := seedUserAndStore(t, database, "multi-empty")

	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeA, Rating: 5}))
	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeB, Rating: 2}))

	aggs, err := repo.AggregatesForStores([]uint{storeA, storeB, storeEmpty})
	require.NoError(t, err)
	assert.Len(t, aggs, 2)
	assert.InDelta(t, 5.0, aggs[storeA].Average, 0.0001)
	assert.InDelta(t, 2.0, aggs[storeB].Average, 0.0001)

	// Unrated stores are simply absent
	_, ok := aggs[storeEmpty]
	assert.False(t, ok)

	empty, err := repo.AggregatesForStores(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRatingRepository_UserRatingsForStores(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeA := seedUserAndStore(t, database, "mine-a")
	otherID, storeB := seedUserAndStore(t, database, "mine-b")

	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeA, Rating: 4, Comment: "good"}))
	require.NoError(t, repo.Create(&model.Rating{UserID: otherID, StoreID: storeB, Rating: 1}))

	mine, err := repo.UserRatingsForStores(userID, []uint{storeA, storeB})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 4, mine[storeA].Rating)
	assert.Equal(t, "good", mine[storeA].Comment)
	_, rated := mine[storeB]
	assert.False(t, rated)
}

func TestRatingRepository_UserStats(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userID, storeA := seedUserAndStore(t, database, "stats-a")
	_, storeB := seedUserAndStore(t, database, "stats-b")

	stats, err := repo.UserStats(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)

	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeA, Rating: 5, Comment: "great"}))
	require.NoError(t, repo.Create(&model.Rating{UserID: userID, StoreID: storeB, Rating: 2}))

	stats, err = repo.UserStats(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Commented)
	assert.InDelta(t, 3.5, stats.Average, 0.0001)
	assert.NotNil(t, stats.FirstRatedAt)
	assert.NotNil(t, stats.LastRatedAt)
}

func TestRatingRepository_ListByStoreOrdering(t *testing.T) {
	repo, database := setupRatingRepoTest(t)
	userA, storeID := seedUserAndStore(t, database, "order-a")
	userB, _ := seedUserAndStore(t, database, "order-b")

	require.NoError(t, repo.Create(&model.Rating{UserID: userA, StoreID: storeID, Rating: 3}))
	require.NoError(t, repo.Create(&model.Rating{UserID: userB, StoreID: storeID, Rating: 5, Comment: "newest"}))

	ratings, err := repo.ListByStore(storeID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	// Newest first, with the rater preloaded
	assert.Equal(t, "newest", ratings[0].Comment)
	assert.NotEmpty(t, ratings[0].User.Email)
}
