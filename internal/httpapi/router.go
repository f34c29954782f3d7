package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/metrics"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

// Pinger reports backing store health
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries the cross-cutting pieces of the router
type RouterConfig struct {
	Verifier identity.Verifier
	Metrics  *metrics.Metrics
	Health   Pinger
	// MCP, when set, is mounted at /mcp/stream behind the identity middleware.
	MCP    http.Handler
	Logger *logging.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log.Named("http")))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := cfg.Health.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := identity.Middleware(cfg.Verifier)

	if cfg.MCP != nil {
		r.Any("/mcp/stream", auth, gin.WrapH(cfg.MCP))
	}

	api := r.Group("/api/v1", auth)
	{
		iv := api.Group("/interviews")
		iv.POST("", h.createInterview)
		iv.GET("/:id", h.getInterview)
		iv.POST("/:id/accept", h.transition(h.interviews.Accept))
		iv.POST("/:id/reschedule", h.requestReschedule)
		iv.POST("/:id/reschedule/accept", h.transition(h.interviews.AcceptReschedule))
		iv.POST("/:id/reschedule/reject", h.rejectReschedule)
		iv.POST("/:id/start", h.transition(h.interviews.Start))
		iv.POST("/:id/complete", h.completeInterview)
		iv.POST("/:id/cancel", h.cancelInterview)
		iv.POST("/:id/questions", h.generateQuestions)
		iv.GET("/:id/questions", h.listQuestions)
		iv.POST("/:id/answers", h.submitAnswers)
		iv.POST("/:id/evaluate", h.evaluate)

		api.GET("/applications/:id", h.getApplication)
		api.GET("/applications/:id/quota", h.applicationQuota)

		api.GET("/companies/:id/settings", h.getSettings)
		api.PATCH("/companies/:id/settings", h.patchSettings)

		api.GET("/jobs/:id/scorecards.xlsx", h.scorecardsXLSX)
		api.POST("/jobs/:id/scorecards/sheet", h.scorecardsSheet)

		api.GET("/notifications", h.listNotifications)
		api.POST("/notifications/:id/read", h.markRead)
	}

	return r
}

func requestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http request", kv...)
		case status >= http.StatusBadRequest:
			log.Warn("http request", kv...)
		default:
			log.Debug("http request", kv...)
		}
	}
}
