package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assetstore-backend/internal/shared/middleware"
	"assetstore-backend/pkg/container"
)

// SetupRouter wires the HTTP surface. Three tiers: public browsing,
// authenticated endpoints, and the admin management surface.
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.ClientIPMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
	}

	setupAuthRoutes(v1, c)
	setupAssetRoutes(v1, c)
	setupAdminRoutes(v1, c)

	return router
}

// setupAuthRoutes - registration, login, tokens, verification
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
		auth.GET("/verify", c.UserHandler.VerifyEmail)
		auth.POST("/resend-verification", c.UserHandler.ResendVerification)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password", c.UserHandler.ResetPassword)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Me)
	}
}

// setupAssetRoutes - public catalog browsing and downloads
func setupAssetRoutes(v1 *gin.RouterGroup, c *container.Container) {
	assets := v1.Group("/assets")
	{
		assets.GET("", c.AssetHandler.ListPublished)
		assets.GET("/featured", c.AssetHandler.Featured)
		assets.GET("/:id", c.AssetHandler.GetPublished)

		// Anonymous downloads are allowed; a valid token attaches the
		// user to the download record.
		assets.GET("/:id/download",
			middleware.OptionalAuthMiddleware(c.JWTManager),
			c.DownloadHandler.Download,
		)
	}
}

// setupAdminRoutes - catalog management, stats, activity report
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/assets", c.AssetHandler.List)
		admin.POST("/assets", c.AssetHandler.Create)
		admin.PATCH("/assets/:id", c.AssetHandler.Update)
		admin.DELETE("/assets/:id", c.AssetHandler.Delete)
		admin.GET("/assets/stats", c.AssetHandler.Stats)
		admin.POST("/assets/refresh", c.AssetHandler.Refresh)

		admin.GET("/activity", c.DownloadHandler.Activity)
		admin.GET("/activity/export", c.DownloadHandler.ExportActivity)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		dbStatus := "up"
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}

		cacheStatus := "up"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "down"
		}

		ctx.JSON(status, gin.H{
			"status":         dbStatus,
			"cache":          cacheStatus,
			"catalog_loaded": c.Catalog.Loaded(),
			"version":        c.Config.App.Version,
		})
	}
}
