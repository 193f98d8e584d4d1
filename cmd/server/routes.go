package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sagecampus/sage-assistant-go/internal/buildinfo"
	"github.com/sagecampus/sage-assistant-go/internal/config"
	"github.com/sagecampus/sage-assistant-go/internal/rag"
	"github.com/sagecampus/sage-assistant-go/internal/ratelimit"
	"github.com/sagecampus/sage-assistant-go/internal/storage"
)

// setupRoutes registers all HTTP routes.
func setupRoutes(router *gin.Engine, h *handlers, db *storage.DB, vectorDB *rag.VectorDB, limiter *ratelimit.PerClientLimiter, registry *prometheus.Registry, cfg *config.Config) {
	// Liveness probe
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Short()})
	})

	// Readiness probe with dependency detail
	router.GET("/ready", func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := db.Ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database not ready",
			})
			return
		}

		courses, _ := db.CountCourses(ctx)
		venues, _ := db.CountVenues(ctx)
		events, _ := db.CountEvents(ctx)

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"catalog": gin.H{
				"courses": courses,
				"venues":  venues,
				"events":  events,
			},
			"semantic_search": gin.H{
				"enabled":          vectorDB.IsEnabled(),
				"course_documents": vectorDB.Count(rag.CourseCollection),
			},
		})
	})

	// Prometheus metrics, behind basic auth when a password is configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	api := router.Group("/api")
	{
		// Completion-backed endpoints are rate limited per client IP.
		chatLimit := rateLimitMiddleware(limiter)
		api.POST("/chat", chatLimit, h.chat)
		api.POST("/chat/stream", chatLimit, h.chatStream)

		api.POST("/conversations", h.createConversation)
		api.GET("/conversations", h.listConversations)
		api.GET("/conversations/:id", h.getConversation)
		api.GET("/conversations/:id/messages", h.listMessages)
		api.GET("/conversations/:id/export", h.exportConversation)
		api.PATCH("/conversations/:id", h.updateConversation)
		api.DELETE("/conversations/:id", h.deleteConversation)
	}
}
