package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mocworks/curricula-backend/internal/handlers"
)

type RouterConfig struct {
	ServiceName         string
	AllowOrigins        []string
	ScheduleHandler     *handlers.ScheduleHandler
	NotificationHandler *handlers.NotificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "curricula-backend"
	}
	router.Use(otelgin.Middleware(serviceName))

	// Cors
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/attempts/:id/schedule", cfg.ScheduleHandler.GetSchedule)
		api.POST("/attempts/:id/notifications", cfg.NotificationHandler.RunForAttempt)
		api.POST("/notifications/run", cfg.NotificationHandler.RunSweep)
	}

	return router
}
