package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/database"
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/queue"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	checkOK       = "ok"
	checkError    = "error"
	checkDisabled = "disabled"

	healthTimeout = 2 * time.Second
)

// HealthDependencies lists what the health check inspects. Nil members are
// reported as disabled.
type HealthDependencies struct {
	DB        *gorm.DB
	Redis     redis.UniversalClient
	Knowledge *knowledge.Base
	Queue     queue.Queue
}

type HealthHandler struct {
	deps   HealthDependencies
	logger *logger.Logger
}

func NewHealthHandler(deps HealthDependencies, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		deps:   deps,
		logger: logger,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := "ok"
	statusCode := http.StatusOK
	checks := gin.H{
		"database": checkDisabled,
		"redis":    checkDisabled,
	}

	if h.deps.DB != nil {
		checks["database"] = checkOK
		if err := database.HealthCheck(ctx, h.deps.DB); err != nil {
			h.logger.Errorw("Database health check failed", "error", err)
			checks["database"] = checkError
			status = "error"
			statusCode = http.StatusServiceUnavailable
		}
	}

	if h.deps.Redis != nil {
		checks["redis"] = checkOK
		if err := database.RedisHealthCheck(ctx, h.deps.Redis); err != nil {
			h.logger.Errorw("Redis health check failed", "error", err)
			checks["redis"] = checkError
			status = "error"
			statusCode = http.StatusServiceUnavailable
		}
	}

	entries := h.deps.Knowledge.Len()
	if entries == 0 && status == "ok" {
		// the bot still answers regions and the fallback text
		status = "degraded"
	}

	response := gin.H{
		"status":            status,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"service":           "botchopp",
		"knowledge_entries": entries,
		"checks":            checks,
	}

	if h.deps.Queue != nil {
		if depth, err := h.deps.Queue.Len(ctx); err == nil {
			response["queue_depth"] = depth
		}
	}

	c.JSON(statusCode, response)
}
