package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/society-committee-api/internal/errors"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report its availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	db          *gorm.DB
	redis       Pinger
}

// NewHealthHandler returns a new handler instance. redis may be nil when the
// number cache runs in memory.
func NewHealthHandler(serviceName string, db *gorm.DB, redis Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, db: db, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"service": h.serviceName,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	depStatus := gin.H{}
	ready := true

	if err := h.pingDatabase(ctx); err != nil {
		depStatus["database"] = err.Error()
		ready = false
	} else {
		depStatus["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	if ready {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ready",
			"dependencies": depStatus,
		})
		return
	}

	apierrors.RespondWithError(c, http.StatusServiceUnavailable, apierrors.NewAPIErrorWithDetails(
		apierrors.ErrCodeServiceUnavailable,
		"one or more dependencies unavailable",
		depStatus,
	))
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
