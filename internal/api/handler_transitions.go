package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetTransitions handles GET /api/transitions?limit=N, newest first.
func (h *Handler) GetTransitions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	transitions, err := h.store.RecentTransitions(c.Request.Context(), limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transitions"})
		return
	}

	c.JSON(http.StatusOK, transitions)
}
