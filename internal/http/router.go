package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/khazidhea/jua-warnings-api/internal/alert"
	"github.com/khazidhea/jua-warnings-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(holder *usecase.DatasetHolder, alerts *alert.Service, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware. No configured origins means allow all.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-User-Id")
	corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, "X-Dataset")
	router.Use(cors.New(corsConfig))

	// Name the dataset behind every response once one is loaded.
	router.Use(func(c *gin.Context) {
		if snap, err := holder.Current(); err == nil {
			c.Header("X-Dataset", snap.Name)
		}
		c.Next()
	})

	handler := NewHandler(holder, alerts)

	// API v1 routes.
	v1 := router.Group("/v1")

	forecast := v1.Group("/forecast")
	forecast.GET("", handler.GetForecast)
	forecast.POST("", handler.PostForecast)
	forecast.GET("/parameters", handler.GetParameters)

	warnings := v1.Group("/warnings")
	warnings.POST("", handler.CreateWarning)
	warnings.GET("", handler.ListWarnings)
	warnings.DELETE("/:id", handler.DeleteWarning)
	warnings.GET("/check", handler.CheckWarnings)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
