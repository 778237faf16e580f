package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/infra/config"
	"iasrentals/internal/infra/obs"
)

type ProfileHTTP interface {
	Get(c *gin.Context)
	Me(c *gin.Context)
	Update(c *gin.Context)
	ChangePassword(c *gin.Context)
	Deactivate(c *gin.Context)
}

type ListingHTTP interface {
	Search(c *gin.Context)
}

type PropertyHTTP interface {
	Get(c *gin.Context)
	ByOwner(c *gin.Context)
	Create(c *gin.Context)
	UploadImage(c *gin.Context)
}

type StatsHTTP interface {
	Platform(c *gin.Context)
}

type VisitHTTP interface {
	Available(c *gin.Context)
	Create(c *gin.Context)
	Mine(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
}

type ReviewHTTP interface {
	Create(c *gin.Context)
	ByOwner(c *gin.Context)
	ByProperty(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Profile        ProfileHTTP
	Listings       ListingHTTP
	Properties     PropertyHTTP
	Stats          StatsHTTP
	Visits         VisitHTTP
	Reviews        ReviewHTTP
	AuthMiddleware gin.HandlerFunc
}

// NewRouter builds the gin engine with every route whose handler is set.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	api.GET("/health", health.Health)
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
	}
	if h.Profile != nil {
		api.GET("/profile", h.Profile.Get)
		api.GET("/profile/me", h.Profile.Me)
		api.PUT("/profile", h.Profile.Update)
		api.POST("/profile/change-password", h.Profile.ChangePassword)
		api.POST("/profile/deactivate", h.Profile.Deactivate)
	}
	if h.Listings != nil {
		api.GET("/listings", h.Listings.Search)
	}
	if h.Properties != nil {
		api.POST("/properties", h.Properties.Create)
		api.GET("/properties/owner/:owner_id", h.Properties.ByOwner)
		api.GET("/properties/:id", h.Properties.Get)
		api.POST("/properties/:id/images", h.Properties.UploadImage)
	}
	if h.Stats != nil {
		api.GET("/stats", h.Stats.Platform)
	}
	if h.Visits != nil {
		api.GET("/visits/available/:property_id", h.Visits.Available)
		api.GET("/visits/my-visits", h.Visits.Mine)
		api.POST("/visits", h.Visits.Create)
		api.DELETE("/visits/:id", h.Visits.Cancel)
		api.POST("/visits/:id/complete", h.Visits.Complete)
	}
	if h.Reviews != nil {
		api.POST("/reviews", h.Reviews.Create)
		api.GET("/reviews/owner/:owner_id", h.Reviews.ByOwner)
		api.GET("/reviews/property/:property_id", h.Reviews.ByProperty)
	}
	return router
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
