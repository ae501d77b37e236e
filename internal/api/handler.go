package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"receiver-power-backend/internal/power"
	"receiver-power-backend/internal/store"
)

// Engine is the subset of the synchronization engine the API consumes.
type Engine interface {
	QueryStatus(ctx context.Context) (power.State, error)
	WaitForStable(ctx context.Context) (power.State, error)
	PowerOn(ctx context.Context, waitForFinal bool) (power.State, error)
	PowerOff(ctx context.Context, waitForFinal bool) (power.State, error)
	Ping(ctx context.Context) error
	Current() power.State
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  Engine
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(engine Engine, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		webpush: webpushOptions,
	}
}
