package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"slices"
	"sync"
	"time"

	"orderdesk/internal/repositories"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	DB *sql.DB

	mu     sync.RWMutex
	engine *gin.Engine
}

// SetRouter stores the active gin engine for /api/routes.
func (h *SystemHandler) SetRouter(r *gin.Engine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine = r
}

// GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Order Management API with Image Upload is running"})
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBCheck reports connectivity, which runtime tables are missing and the
// user count when the users table exists.
func (h *SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		RespondError(c, http.StatusInternalServerError, "Database not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	missing, err := repositories.MissingTables(ctx, h.DB, repositories.SchemaTables...)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "Database query failed", err)
		return
	}
	resp := gin.H{"message": "Database connection OK", "missing_tables": missing}
	if !slices.Contains(missing, "users") {
		var count int
		if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
			RespondError(c, http.StatusInternalServerError, "Database query failed", err)
			return
		}
		resp["users_in_db"] = count
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SystemHandler) Routes(c *gin.Context) {
	h.mu.RLock()
	r := h.engine
	h.mu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "Router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
