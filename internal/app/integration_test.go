package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/controller"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/app/service"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/storerate/storerate-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	// Setup database
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	require.NoError(t, db.EnsureAdmin(testDB, "Admin", "admin@storerate.local", "Admin@1234"))

	// Setup repositories
	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	// Setup services
	authService := service.NewAuthService(userRepo, "test-secret", time.Hour)
	ratingService := service.NewRatingService(ratingRepo, storeRepo)
	storeService := service.NewStoreService(storeRepo, ratingRepo, userRepo, storage.NewNullUploader(),
		service.NewTempPasswordProvisioner(userRepo))
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)

	// Setup controllers
	authController := controller.NewAuthController(authService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	ownerController := controller.NewOwnerController(storeService)
	adminController := controller.NewAdminController(adminService)

	// Setup middleware and routes the way the server does
	authMiddleware := middleware.NewAuthMiddleware("test-secret", userRepo)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("", authMiddleware.OptionalAuthenticate(), storeController.List)
			stores.GET("/top", storeController.Top)
			stores.GET("/:id", authMiddleware.OptionalAuthenticate(), storeController.Get)
			stores.POST("",
				authMiddleware.Authenticate(),
				authMiddleware.RequireRole(model.RoleAdmin),
				storeController.Create)
		}

		ratings := v1.Group("/ratings")
		{
			ratings.GET("/store/:storeId", ratingController.ListForStore)
			ratings.POST("",
				authMiddleware.Authenticate(),
				authMiddleware.RequireRole(model.RoleUser, model.RoleAdmin),
				ratingController.Submit)
		}

		owner := v1.Group("/owner")
		owner.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin))
		{
			owner.GET("/dashboard", ownerController.Dashboard)
		}

		admin := v1.Group("/admin")
		admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/stats", adminController.Stats)
		}
	}

	return &TestServer{Router: router, DB: testDB}
}

func (s *TestServer) request(t *testing.T, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestServer) login(t *testing.T, email, password string) string {
	t.Helper()

	w := s.request(t, "POST", "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["token"].(string)
}

// Covers the main platform flow: the seeded admin creates a store with a
// provisioned owner, a user registers and rates it, the owner sees the
// rating on their dashboard, and the admin sees the platform totals.
func TestPlatformFlow(t *testing.T) {
	server := setupIntegrationTest(t)

	adminToken := server.login(t, "admin@storerate.local", "Admin@1234")

	// Admin creates a store with a brand-new owner account
	w := server.request(t, "POST", "/api/v1/stores", map[string]string{
		"name":        "Flow Bakery",
		"email":       "flow-bakery@example.com",
		"address":     "5 Flow Street",
		"owner_email": "flow-owner@example.com",
		"owner_name":  "Flow Owner",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	storeID := uint(created["store"].(map[string]interface{})["id"].(float64))
	ownerInfo := created["owner"].(map[string]interface{})
	tempPassword := ownerInfo["temp_password"].(string)
	require.NotEmpty(t, tempPassword)

	// A user registers and logs in
	w = server.request(t, "POST", "/api/v1/auth/register", map[string]string{
		"name":     "Flow Rater",
		"email":    "flow-rater@example.com",
		"password": "Secret@123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	raterToken := server.login(t, "flow-rater@example.com", "Secret@123")

	// The user rates the store
	w = server.request(t, "POST", "/api/v1/ratings", map[string]interface{}{
		"store_id": storeID,
		"rating":   5,
		"comment":  "outstanding",
	}, raterToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The store listing reflects the aggregate and the rater's own score
	w = server.request(t, "GET", "/api/v1/stores", nil, raterToken)
	require.Equal(t, http.StatusOK, w.Code)
	var listing map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	stores := listing["stores"].([]interface{})
	require.Len(t, stores, 1)
	entry := stores[0].(map[string]interface{})
	assert.Equal(t, float64(5), entry["average_rating"])
	assert.Equal(t, float64(1), entry["rating_count"])
	assert.Equal(t, float64(5), entry["user_rating"])

	// The provisioned owner logs in with the temp password and sees the rater
	ownerToken := server.login(t, "flow-owner@example.com", tempPassword)
	w = server.request(t, "GET", "/api/v1/owner/dashboard", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	ownerStores := dashboard["stores"].([]interface{})
	require.Len(t, ownerStores, 1)
	summary := ownerStores[0].(map[string]interface{})
	assert.Equal(t, float64(1), summary["rating_count"])

	// Any authenticated account can rate, the owner included
	w = server.request(t, "POST", "/api/v1/ratings", map[string]interface{}{
		"store_id": storeID,
		"rating":   4,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Admin stats count the rater and the owner but not the admin
	w = server.request(t, "GET", "/api/v1/admin/stats", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["total_users"])
	assert.Equal(t, float64(1), stats["total_stores"])
	assert.Equal(t, float64(2), stats["total_ratings"])
	assert.Equal(t, float64(4.5), stats["avg_rating"])

	// And the rater cannot reach admin endpoints
	w = server.request(t, "GET", "/api/v1/admin/stats", nil, raterToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

}
