package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/config"
	"github.com/fiveamclub/fiveam/controllers"
	"github.com/fiveamclub/fiveam/middleware"
	"github.com/fiveamclub/fiveam/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	checkinController := controllers.NewCheckinController(db)
	settingsController := controllers.NewSettingsController(db)
	friendController := controllers.NewFriendController(db)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	rl := middleware.RateLimitMiddleware()

	authGroup := api.Group("/auth")
	authGroup.Use(rl)
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public endpoints
	api.GET("/stats", statsController.Site)
	api.GET("/config/app", configController.App)
	api.GET("/users/:username", authController.GetUserPublic)

	checkinGroup := api.Group("/checkins")
	checkinGroup.Use(middleware.AuthRequired())
	checkinGroup.POST("", rl, checkinController.Create)
	checkinGroup.GET("", checkinController.List)
	checkinGroup.GET("/calendar", checkinController.Calendar)
	checkinGroup.GET("/streak", checkinController.StreakInfo)

	settingsGroup := api.Group("/settings")
	settingsGroup.Use(middleware.AuthRequired())
	settingsGroup.GET("", settingsController.Get)
	settingsGroup.PUT("", settingsController.Update)
	settingsGroup.POST("/avatar", settingsController.UploadAvatar)

	friendGroup := api.Group("/friends")
	friendGroup.Use(middleware.AuthRequired())
	friendGroup.GET("", friendController.ListFriends)
	friendGroup.DELETE("/:id", friendController.DeleteFriend)
	friendGroup.POST("/requests", rl, friendController.SendRequest)
	friendGroup.GET("/requests", friendController.ListRequests)
	friendGroup.POST("/requests/:id/accept", friendController.Accept)
	friendGroup.POST("/requests/:id/reject", friendController.Reject)

	return r
}
