package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncview/internal/domain"
)

// SetupRouter creates and configures the Gin router. An empty
// allowedOrigins allows all origins.
func SetupRouter(ds domain.Dataset, allowedOrigins []string, log logrus.FieldLogger) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	handler := NewHandler(ds, log)

	// API v1 routes.
	v1 := router.Group("/v1")
	variables := v1.Group("/variables")
	variables.GET("", handler.ListVariables)
	variables.GET("/:name", handler.GetVariable)
	variables.GET("/:name/bounds/:coord", handler.GetBounds)
	v1.GET("/plot", handler.GetPlot)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
