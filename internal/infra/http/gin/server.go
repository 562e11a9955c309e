package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentable/internal/infra/config"
	"rentable/internal/infra/obs"
)

type RentalHTTP interface {
	Request(c *gin.Context)
	Get(c *gin.Context)
	Decide(c *gin.Context)
	Terminate(c *gin.Context)
	Delete(c *gin.Context)
	Export(c *gin.Context)
}

type AvailabilityHTTP interface {
	FreeIntervals(c *gin.Context)
	UpdateBlocked(c *gin.Context)
}

type Handlers struct {
	Rental       RentalHTTP
	Availability AvailabilityHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-Actor-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	router.Use(ActorMiddleware())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/items/:id/free-intervals", h.Availability.FreeIntervals)
		api.PUT("/items/:id/blocked-dates", h.Availability.UpdateBlocked)
	}
	if h.Rental != nil {
		api.POST("/rentals/items/:id/request", h.Rental.Request)
		api.GET("/rentals/:id", h.Rental.Get)
		api.PATCH("/rentals/:id/decision", h.Rental.Decide)
		api.PUT("/rentals/:id/terminate", h.Rental.Terminate)
		api.DELETE("/rentals/:id", h.Rental.Delete)
		api.GET("/items/:id/rentals/export", h.Rental.Export)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
