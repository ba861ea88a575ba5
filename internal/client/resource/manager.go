// Package resource prefetches resources predicted for the current route
// while keeping the cache inside the storage budget.
package resource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/offsync/internal/client/network"
	"github.com/iudanet/offsync/internal/client/quota"
	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/models"
)

// QualityReader reports the current link quality
type QualityReader interface {
	Quality() network.Quality
}

// Report summarizes one navigation
type Report struct {
	Eviction *quota.EvictionReport
	Quality  network.Quality
	Fetched  int
	Cached   int
	Failed   int
	Skipped  bool
}

// Manager couples network quality, prediction, fetching and the quota manager
type Manager struct {
	network   QualityReader
	store     storage.Store
	quota     *quota.Manager
	predictor Predictor
	fetcher   Fetcher
	logger    *slog.Logger
}

// NewManager creates a resource manager
func NewManager(net QualityReader, store storage.Store, q *quota.Manager, predictor Predictor, fetcher Fetcher, logger *slog.Logger) *Manager {
	return &Manager{
		network:   net,
		store:     store,
		quota:     q,
		predictor: predictor,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// OnNavigation prefetches what the predictor expects after route. Nothing is
// fetched when the link is offline or poor.
func (m *Manager) OnNavigation(ctx context.Context, route string) (*Report, error) {
	report := &Report{Quality: m.network.Quality()}
	if report.Quality == network.QualityOffline || report.Quality == network.QualityPoor {
		m.logger.Debug("skipping prefetch due to network quality", "route", route, "quality", report.Quality)
		report.Skipped = true
		return report, nil
	}

	predictions := m.predictor.Predict(route)
	m.logger.Debug("predicted resources", "route", route, "resources", predictions)

	for _, res := range predictions {
		if err := m.prefetch(ctx, route, res, report); err != nil {
			return report, err
		}
	}

	if report.Fetched == 0 {
		return report, nil
	}

	eviction, err := m.quota.EnforceQuota(ctx)
	if err != nil {
		return report, err
	}
	report.Eviction = eviction
	return report, nil
}

// Cached returns the cached payload of a resource and refreshes its lastUsed
func (m *Manager) Cached(ctx context.Context, res string) ([]byte, error) {
	data, err := m.store.Get(ctx, quota.CachePrefix+res)
	if err != nil {
		return nil, err
	}
	if err := m.quota.Touch(ctx, res); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return data, nil
}

func (m *Manager) prefetch(ctx context.Context, route, res string, report *Report) error {
	_, err := m.store.Get(ctx, quota.CachePrefix+res)
	if err == nil {
		report.Cached++
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	data, err := m.fetcher.Fetch(ctx, res)
	if err != nil {
		m.logger.Warn("failed to prefetch resource", "resource", res, "error", err)
		report.Failed++
		return nil
	}

	if err := m.store.Put(ctx, quota.CachePrefix+res, data); err != nil {
		return err
	}
	err = m.quota.Track(ctx, models.ResourceMetadata{
		Key:       res,
		Priority:  models.PriorityBackground,
		SizeBytes: int64(len(data)),
		Tags:      []string{"prefetch", route},
	})
	if err != nil {
		return err
	}

	report.Fetched++
	m.logger.Debug("resource prefetched", "resource", res, "size", len(data))
	return nil
}
