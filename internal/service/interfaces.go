package service

import (
	"context"

	"stressbox/internal/domain"
)

// VisitorService defines the interface for visitor tracking operations
type VisitorService interface {
	// RecordVisit creates or updates the record for fingerprint and bumps
	// the global counters
	RecordVisit(ctx context.Context, ip, fingerprint, userAgent, location string) error

	// GetStats returns the counters and the per-IP list, unsorted
	GetStats(ctx context.Context) (*domain.Stats, error)
}
