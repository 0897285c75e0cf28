package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agreement-radar/api/handler"
	"agreement-radar/api/middleware"
	"agreement-radar/config"
)

// NewRouter builds the engine with CORS, logging and panic recovery and
// registers every route.
func NewRouter(h *handler.AgreementHandler, cfg config.HTTPConfig, environment string, log zerolog.Logger) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recover(log), middleware.BodyLimit(cfg.MaxUploadBytes))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handler.AgreementHandler) {
	r.GET("/healthz", h.Healthz)

	agreements := r.Group("/agreements")
	{
		agreements.GET("", h.List)
		agreements.POST("/upload", h.Upload)
		agreements.GET("/search", h.Search)
		agreements.GET("/export", h.Export)
		agreements.GET("/:id", h.Get)
		agreements.GET("/:id/file", h.Download)
	}
	r.GET("/key-dates", h.KeyDates)
}
