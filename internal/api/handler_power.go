package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"receiver-power-backend/internal/power"
)

// powerStatusResponse is the API shape for a power state observation.
type powerStatusResponse struct {
	State        string `json:"state"`
	On           bool   `json:"on"`
	Transitional bool   `json:"transitional"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

func statusResponse(state power.State, err error) (int, powerStatusResponse) {
	resp := powerStatusResponse{
		State:        state.String(),
		On:           state.IsOn(),
		Transitional: state.IsTransitional(),
		OK:           err == nil,
	}
	if err != nil {
		resp.Error = err.Error()
		return http.StatusBadGateway, resp
	}
	return http.StatusOK, resp
}

// GetPower handles GET /api/power: a live, coalesced status query.
func (h *Handler) GetPower(c *gin.Context) {
	state, err := h.engine.QueryStatus(c.Request.Context())
	c.JSON(statusResponse(state, err))
}

// GetPowerStable handles GET /api/power/stable: a long poll that answers
// once the receiver has left any warming/cooling phase.
func (h *Handler) GetPowerStable(c *gin.Context) {
	state, err := h.engine.WaitForStable(c.Request.Context())
	c.JSON(statusResponse(state, err))
}

type powerCommandRequest struct {
	Wait bool `json:"wait"`
}

func bindPowerCommand(c *gin.Context) (powerCommandRequest, bool) {
	var req powerCommandRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return req, false
		}
	}
	return req, true
}

// PostPowerOn handles POST /api/power/on.
func (h *Handler) PostPowerOn(c *gin.Context) {
	req, ok := bindPowerCommand(c)
	if !ok {
		return
	}
	state, err := h.engine.PowerOn(c.Request.Context(), req.Wait)
	c.JSON(statusResponse(state, err))
}

// PostPowerOff handles POST /api/power/off.
func (h *Handler) PostPowerOff(c *gin.Context) {
	req, ok := bindPowerCommand(c)
	if !ok {
		return
	}
	state, err := h.engine.PowerOff(c.Request.Context(), req.Wait)
	c.JSON(statusResponse(state, err))
}

// GetHealthz handles GET /api/healthz by sending the bridge's null command.
func (h *Handler) GetHealthz(c *gin.Context) {
	if err := h.engine.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unreachable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": h.engine.Current().String()})
}
