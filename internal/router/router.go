package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/controller"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	storeController  *controller.StoreController
	ratingController *controller.RatingController
	ownerController  *controller.OwnerController
	adminController  *controller.AdminController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	ownerController *controller.OwnerController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		storeController:  storeController,
		ratingController: ratingController,
		ownerController:  ownerController,
		adminController:  adminController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "StoreRate API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.PUT("/update-password", r.authMiddleware.Authenticate(), r.authController.UpdatePassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("", r.authMiddleware.OptionalAuthenticate(), r.storeController.List)
			stores.GET("/top", r.storeController.Top)
			stores.GET("/search/suggest", r.storeController.Suggest)
			stores.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.storeController.Get)
			stores.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.storeController.Create)
			stores.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.storeController.Update)
			stores.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.storeController.Delete)
		}

		ratings := v1.Group("/ratings")
		{
			ratings.GET("/store/:storeId", r.ratingController.ListForStore)
			ratings.POST("", r.authMiddleware.Authenticate(), r.ratingController.Submit)
			ratings.PUT("/:id", r.authMiddleware.Authenticate(), r.ratingController.Update)
			ratings.DELETE("/:id", r.authMiddleware.Authenticate(), r.ratingController.Delete)
			ratings.GET("/user/stats", r.authMiddleware.Authenticate(), r.ratingController.UserStats)
			ratings.GET("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin),
				r.ratingController.ListAll)
		}

		owner := v1.Group("/owner")
		owner.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleStoreOwner, model.RoleAdmin))
		{
			owner.GET("/dashboard", r.ownerController.Dashboard)
			owner.GET("/stores", r.ownerController.Stores)
			owner.POST("/stores", r.ownerController.CreateStore)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/stats", r.adminController.Stats)
			admin.GET("/users", r.adminController.ListUsers)
			admin.POST("/users", r.adminController.CreateUser)
			admin.GET("/users/:id", r.adminController.GetUser)
			admin.GET("/stores", r.storeController.List)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
