package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/scuola-app/scuola-api/pkg/response"
)

// HealthHandler exposes the liveness banner and the readiness probe.
type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

// NewHealthHandler constructs a HealthHandler instance.
func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Banner answers the root liveness check.
func (h *HealthHandler) Banner(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"message": "scuola api is running"})
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports dependency readiness. The cache being down degrades features
// but does not fail readiness; the database being down does.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}

	cache := "ok"
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			cache = "unavailable"
		}
	}

	response.JSON(c, http.StatusOK, gin.H{"status": "ready", "cache": cache})
}
