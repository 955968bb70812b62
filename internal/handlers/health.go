package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports whether the server and its database are reachable
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status, code = "database unavailable", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
