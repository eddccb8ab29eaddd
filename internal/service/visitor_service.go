package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"stressbox/internal/domain"
	"stressbox/internal/metrics"
	"stressbox/internal/store"
	"stressbox/pkg/logger"
)

// Store keys for visitor tracking
const (
	KeyVisitorPrefix = "visitor:"
	KeyTotalVisitors = "totalVisitors"
	KeyTotalVisits   = "totalVisits"
)

// VisitorKey returns the store key of a fingerprint's record
func VisitorKey(fingerprint string) string {
	return KeyVisitorPrefix + fingerprint
}

// Option configures a visitor service
type Option func(*visitorService)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *visitorService) {
		s.now = now
	}
}

// WithAtomicCounters toggles use of the store's atomic increment when it
// has one. When disabled, or unsupported, counters are read, incremented
// and written back, which can lose increments under concurrent requests.
func WithAtomicCounters(enabled bool) Option {
	return func(s *visitorService) {
		s.atomicCounters = enabled
	}
}

// visitorService tracks visitors directly against the store. It keeps no
// state between calls and takes no locks.
type visitorService struct {
	store          store.Store
	logger         *logger.Logger
	now            func() time.Time
	atomicCounters bool
}

// NewVisitorService creates a new visitor service. Pass store.NewNullStore()
// when persistence is not configured.
func NewVisitorService(st store.Store, logger *logger.Logger, opts ...Option) VisitorService {
	s := &visitorService{
		store:          st,
		logger:         logger,
		now:            time.Now,
		atomicCounters: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	_, canIncr := st.(store.Incrementer)
	logger.WithFields(map[string]interface{}{
		"store":           fmt.Sprintf("%T", st),
		"atomic_counters": s.atomicCounters && canIncr,
	}).Info("Initialized visitor service")

	return s
}

// RecordVisit upserts the visitor record and increments the counters
func (s *visitorService) RecordVisit(ctx context.Context, ip, fingerprint, userAgent, location string) error {
	// Nothing is persisted, so nothing is counted or logged either
	if _, ok := s.store.(*store.NullStore); ok {
		return nil
	}

	defer observe("record_visit", time.Now())

	if location == "" {
		location = domain.UnknownLocation
	}

	key := VisitorKey(fingerprint)
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load visitor record: %w", err)
	}

	now := s.now().UnixMilli()

	if !found {
		record := &domain.VisitorRecord{
			IP:         ip,
			UserAgent:  userAgent,
			Location:   location,
			FirstSeen:  now,
			VisitCount: 1,
		}
		if err := s.putRecord(ctx, key, record); err != nil {
			return err
		}
		if err := s.incrementCounter(ctx, KeyTotalVisitors); err != nil {
			return err
		}
		if err := s.incrementCounter(ctx, KeyTotalVisits); err != nil {
			return err
		}

		metrics.VisitsTracked.WithLabelValues(metrics.KindNew).Inc()
		s.logger.WithFields(map[string]interface{}{
			"ip":          ip,
			"fingerprint": fingerprint,
			"location":    location,
		}).Debug("New visitor recorded")
		return nil
	}

	var record domain.VisitorRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("corrupt visitor record %s: %w", fingerprint, err)
	}

	record.VisitCount++
	record.LastSeen = now
	// Backfill only; a known location is never replaced.
	if !record.HasKnownLocation() {
		record.Location = location
	}

	if err := s.putRecord(ctx, key, &record); err != nil {
		return err
	}
	if err := s.incrementCounter(ctx, KeyTotalVisits); err != nil {
		return err
	}

	metrics.VisitsTracked.WithLabelValues(metrics.KindReturning).Inc()
	s.logger.WithFields(map[string]interface{}{
		"fingerprint": fingerprint,
		"count":       record.VisitCount,
	}).Debug("Returning visitor recorded")
	return nil
}

// GetStats reads both counters and builds the per-IP list. When several
// fingerprints share an IP only the first one listed contributes, so the
// count shown for that IP is not the IP's total.
func (s *visitorService) GetStats(ctx context.Context) (*domain.Stats, error) {
	defer observe("get_stats", time.Now())

	visitors, err := s.readCounter(ctx, KeyTotalVisitors)
	if err != nil {
		return nil, err
	}
	visits, err := s.readCounter(ctx, KeyTotalVisits)
	if err != nil {
		return nil, err
	}

	keys, err := s.store.List(ctx, KeyVisitorPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitor records: %w", err)
	}

	stats := domain.EmptyStats()
	stats.Visitors = visitors
	stats.Visits = visits

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		raw, found, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		if !found {
			continue
		}

		var record domain.VisitorRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("corrupt visitor record %s: %w", key, err)
		}

		if _, dup := seen[record.IP]; dup {
			continue
		}
		seen[record.IP] = struct{}{}

		stats.IPs = append(stats.IPs, domain.IPStat{
			IP:       record.IP,
			Count:    record.VisitCount,
			Location: record.DisplayLocation(),
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"visitors": stats.Visitors,
		"visits":   stats.Visits,
		"records":  len(keys),
		"ips":      len(stats.IPs),
	}).Debug("Visitor stats aggregated")

	return stats, nil
}

func (s *visitorService) putRecord(ctx context.Context, key string, record *domain.VisitorRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode visitor record: %w", err)
	}
	if err := s.store.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save visitor record: %w", err)
	}
	return nil
}

func (s *visitorService) incrementCounter(ctx context.Context, key string) error {
	if inc, ok := s.store.(store.Incrementer); ok && s.atomicCounters {
		if _, err := inc.Incr(ctx, key); err != nil {
			return fmt.Errorf("failed to increment %s: %w", key, err)
		}
		return nil
	}

	n, err := s.readCounter(ctx, key)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, key, strconv.FormatInt(n+1, 10)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// readCounter returns 0 for a missing or unparseable counter
func (s *visitorService) readCounter(ctx context.Context, key string) (int64, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.WithField("key", key).Warn("Counter is not a number, treating as 0")
		return 0, nil
	}
	return n, nil
}

func observe(operation string, start time.Time) {
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
