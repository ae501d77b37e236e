package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"receiver-power-backend/internal/model"
)

const defaultHistoryLimit = 50

// Store defines the persistence operations the service needs.
type Store interface {
	RecordTransition(ctx context.Context, t model.PowerTransition) error
	RecentTransitions(ctx context.Context, limit int) ([]model.PowerTransition, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for the handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// RecordTransition appends one raw-state change to the history log.
func (s *gormStore) RecordTransition(ctx context.Context, t model.PowerTransition) error {
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return fmt.Errorf("failed to record power transition %s -> %s: %w", t.Previous, t.Current, err)
	}
	return nil
}

// RecentTransitions returns the newest transitions first, at most limit of
// them (a non-positive limit falls back to the default).
func (s *gormStore) RecentTransitions(ctx context.Context, limit int) ([]model.PowerTransition, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var transitions []model.PowerTransition
	err := s.db.WithContext(ctx).
		Order("observed_at DESC").
		Limit(limit).
		Find(&transitions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list power transitions: %w", err)
	}
	return transitions, nil
}
