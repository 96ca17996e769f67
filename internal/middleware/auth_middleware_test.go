package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const middlewareTestSecret = "middleware-test-secret"

func setupMiddlewareTest(t *testing.T) (*AuthMiddleware, repository.UserRepository, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthMiddleware(middlewareTestSecret, userRepo), userRepo, testDB
}

func createMiddlewareUser(t *testing.T, userRepo repository.UserRepository, role model.UserRole) (*model.User, string) {
	t.Helper()

	user := &model.User{
		Name:         "Middleware User",
		Email:        string(role) + "@example.com",
		PasswordHash: "h",
		Role:         role,
	}
	require.NoError(t, userRepo.Create(user))

	token, err := util.GenerateToken(user.ID, user.Email, string(user.Role), middlewareTestSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

func protectedRouter(m *AuthMiddleware, roles ...model.UserRole) *gin.Engine {
	router := gin.New()
	handlers := []gin.HandlerFunc{m.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"role": string(role)})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	m, userRepo, _ := setupMiddlewareTest(t)
	_, token := createMiddlewareUser(t, userRepo, model.RoleUser)
	router := protectedRouter(m)

	t.Run("Valid token", func(t *testing.T) {
		w := doRequest(router, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"user"`)
	})

	t.Run("Missing header", func(t *testing.T) {
		w := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired, err := util.GenerateToken(1, "x@example.com", "user", middlewareTestSecret, -time.Minute)
		require.NoError(t, err)
		w := doRequest(router, expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
	})

	t.Run("Token for a deleted account", func(t *testing.T) {
		ghost, err := util.GenerateToken(99999, "ghost@example.com", "user", middlewareTestSecret, time.Hour)
		require.NoError(t, err)
		w := doRequest(router, ghost)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthenticateUsesLiveRole(t *testing.T) {
	m, userRepo, _ := setupMiddlewareTest(t)
	user, token := createMiddlewareUser(t, userRepo, model.RoleUser)
	router := protectedRouter(m)

	// Demote/promote after the token was issued; the token still embeds "user"
	user.Role = model.RoleStoreOwner
	require.NoError(t, userRepo.Update(user))

	w := doRequest(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
	// The database role wins over the stale token claim
	assert.Contains(t, w.Body.String(), `"role":"store_owner"`)
}

func TestRequireRole(t *testing.T) {
	m, userRepo, _ := setupMiddlewareTest(t)
	_, userToken := createMiddlewareUser(t, userRepo, model.RoleUser)
	_, adminToken := createMiddlewareUser(t, userRepo, model.RoleAdmin)

	adminOnly := protectedRouter(m, model.RoleAdmin)

	t.Run("Role allowed", func(t *testing.T) {
		w := doRequest(adminOnly, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Role denied", func(t *testing.T) {
		w := doRequest(adminOnly, userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "AUTHZ_FORBIDDEN")
	})

	t.Run("Multiple roles", func(t *testing.T) {
		either := protectedRouter(m, model.RoleUser, model.RoleAdmin)
		assert.Equal(t, http.StatusOK, doRequest(either, userToken).Code)
		assert.Equal(t, http.StatusOK, doRequest(either, adminToken).Code)
	})
}

func TestOptionalAuthenticate(t *testing.T) {
	m, userRepo, _ := setupMiddlewareTest(t)
	_, token := createMiddlewareUser(t, userRepo, model.RoleUser)

	router := gin.New()
	router.GET("/open", m.OptionalAuthenticate(), func(c *gin.Context) {
		if id, ok := GetUserID(c); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})

	t.Run("With token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id"`)
	})

	t.Run("Without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymous"`)
	})

	t.Run("With garbage token still proceeds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymous"`)
	})
}
