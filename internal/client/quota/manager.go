// Package quota keeps the local cache within a byte budget without touching unsynced data.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/metrics"
	"github.com/iudanet/offsync/internal/models"
)

// Store prefixes
const (
	MetadataPrefix = "res:"
	CachePrefix    = "cache:"
)

// DataRemover deletes the payload of an evicted resource
type DataRemover interface {
	RemoveData(ctx context.Context, key string) error
}

// CacheRemover deletes the cached payload stored under CachePrefix
type CacheRemover struct {
	Store storage.Store
}

// RemoveData deletes cache:<key>
func (r CacheRemover) RemoveData(ctx context.Context, key string) error {
	return r.Store.Delete(ctx, CachePrefix+key)
}

// EvictionReport describes one enforcement pass
type EvictionReport struct {
	Evicted  []string // ключи удаленных ресурсов по порядку
	Usage    int64    // занятый объем после прохода
	Overflow int64    // превышение бюджета до прохода
	Freed    int64    // освобождено байт
	Residual int64    // превышение, которое не удалось устранить (soft budget breach)
}

// Manager tracks resource metadata and evicts the least valuable resources
// when the tracked size exceeds the budget
type Manager struct {
	store     storage.Store
	protected ProtectionChecker
	remover   DataRemover
	logger    *slog.Logger
	now       func() time.Time
	budget    int64
}

// NewManager creates a quota manager with a budget in bytes
func NewManager(store storage.Store, protected ProtectionChecker, remover DataRemover, budget int64, logger *slog.Logger) *Manager {
	return &Manager{
		store:     store,
		protected: protected,
		remover:   remover,
		logger:    logger,
		now:       time.Now,
		budget:    budget,
	}
}

// Budget returns the byte budget
func (m *Manager) Budget() int64 {
	return m.budget
}

// Track records or replaces the metadata of a resource
func (m *Manager) Track(ctx context.Context, meta models.ResourceMetadata) error {
	if meta.Key == "" {
		return fmt.Errorf("resource key cannot be empty")
	}
	if meta.SizeBytes < 0 {
		return fmt.Errorf("resource size cannot be negative")
	}
	if meta.Priority < models.PriorityCritical || meta.Priority > models.PriorityBackground {
		return fmt.Errorf("priority must be between %d and %d", models.PriorityCritical, models.PriorityBackground)
	}
	if meta.LastUsed.IsZero() {
		meta.LastUsed = m.now().UTC()
	}
	return m.save(ctx, &meta)
}

// Touch refreshes lastUsed of a tracked resource
func (m *Manager) Touch(ctx context.Context, key string) error {
	meta, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	meta.LastUsed = m.now().UTC()
	return m.save(ctx, meta)
}

// Untrack drops the metadata of a resource without deleting its data
func (m *Manager) Untrack(ctx context.Context, key string) error {
	return m.store.Delete(ctx, MetadataPrefix+key)
}

// Get returns the metadata of a tracked resource
func (m *Manager) Get(ctx context.Context, key string) (*models.ResourceMetadata, error) {
	data, err := m.store.Get(ctx, MetadataPrefix+key)
	if err != nil {
		return nil, err
	}

	var meta models.ResourceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource %s: %w", key, err)
	}
	return &meta, nil
}

// List returns the metadata of every tracked resource
func (m *Manager) List(ctx context.Context) ([]models.ResourceMetadata, error) {
	keys, err := m.store.List(ctx, MetadataPrefix)
	if err != nil {
		return nil, err
	}

	out := make([]models.ResourceMetadata, 0, len(keys))
	for _, k := range keys {
		meta, err := m.Get(ctx, strings.TrimPrefix(k, MetadataPrefix))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *meta)
	}
	return out, nil
}

// CurrentSize returns the total size of all tracked resources, protected ones included
func (m *Manager) CurrentSize(ctx context.Context) (int64, error) {
	all, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	return totalSize(all), nil
}

// GetEvictionCandidates returns unprotected resources sorted by priority
// ascending then lastUsed ascending, accumulated until their size reaches
// required. When the eligible set is too small the partial set is returned.
func (m *Manager) GetEvictionCandidates(ctx context.Context, required int64) ([]models.ResourceMetadata, error) {
	if required <= 0 {
		return nil, nil
	}

	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return m.candidates(ctx, all, required)
}

// EnforceQuota evicts resources until the tracked size fits the budget.
// Protected resources are never evicted; what cannot be freed is reported as Residual.
func (m *Manager) EnforceQuota(ctx context.Context) (*EvictionReport, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	total := totalSize(all)
	report := &EvictionReport{Usage: total}
	defer m.reportMetrics(report)

	if total <= m.budget {
		return report, nil
	}
	report.Overflow = total - m.budget

	candidates, err := m.candidates(ctx, all, report.Overflow)
	if err != nil {
		return nil, err
	}

	if err := m.evict(ctx, candidates, report); err != nil {
		return report, err
	}

	report.Usage = total - report.Freed
	report.Residual = max(0, report.Overflow-report.Freed)
	if report.Residual > 0 {
		m.logger.Warn("storage budget exceeded, remaining data is protected",
			"budget", m.budget,
			"usage", report.Usage,
			"residual", report.Residual,
		)
	}

	m.logger.Info("quota enforced",
		"overflow", report.Overflow,
		"freed", report.Freed,
		"evicted", len(report.Evicted),
	)
	return report, nil
}

// PurgeExpired evicts every unprotected resource whose expiry has passed
func (m *Manager) PurgeExpired(ctx context.Context) (*EvictionReport, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	expired := make([]models.ResourceMetadata, 0)
	for _, meta := range all {
		if meta.IsExpired(now) {
			expired = append(expired, meta)
		}
	}

	report := &EvictionReport{}
	if err := m.evict(ctx, expired, report); err != nil {
		return report, err
	}
	report.Usage = totalSize(all) - report.Freed
	return report, nil
}

func (m *Manager) candidates(ctx context.Context, all []models.ResourceMetadata, required int64) ([]models.ResourceMetadata, error) {
	eligible := make([]models.ResourceMetadata, 0, len(all))
	for _, meta := range all {
		protected, err := m.protected.IsProtected(ctx, meta.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to check protection of %s: %w", meta.Key, err)
		}
		if protected {
			m.logger.Debug("resource protected from eviction", "key", meta.Key)
			continue
		}
		eligible = append(eligible, meta)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.LastUsed.Equal(b.LastUsed) {
			return a.LastUsed.Before(b.LastUsed)
		}
		return a.Key < b.Key
	})

	var sum int64
	out := make([]models.ResourceMetadata, 0)
	for _, meta := range eligible {
		if sum >= required {
			break
		}
		out = append(out, meta)
		sum += meta.SizeBytes
	}
	return out, nil
}

// evict re-checks protection right before each deletion: a sync or a local
// write may have dirtied the key since candidates were chosen
func (m *Manager) evict(ctx context.Context, victims []models.ResourceMetadata, report *EvictionReport) error {
	for _, meta := range victims {
		protected, err := m.protected.IsProtected(ctx, meta.Key)
		if err != nil {
			return fmt.Errorf("failed to check protection of %s: %w", meta.Key, err)
		}
		if protected {
			m.logger.Debug("resource became protected, skipped", "key", meta.Key)
			continue
		}

		if err := m.remover.RemoveData(ctx, meta.Key); err != nil {
			return fmt.Errorf("failed to remove data of %s: %w", meta.Key, err)
		}
		if err := m.store.Delete(ctx, MetadataPrefix+meta.Key); err != nil {
			return fmt.Errorf("failed to remove metadata of %s: %w", meta.Key, err)
		}

		report.Evicted = append(report.Evicted, meta.Key)
		report.Freed += meta.SizeBytes
		m.logger.Debug("resource evicted",
			"key", meta.Key,
			"priority", meta.Priority,
			"size", meta.SizeBytes,
		)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, meta *models.ResourceMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal resource: %w", err)
	}
	return m.store.Put(ctx, MetadataPrefix+meta.Key, data)
}

func (m *Manager) reportMetrics(report *EvictionReport) {
	metrics.QuotaUsageBytes.Set(float64(report.Usage))
	metrics.QuotaEvictedBytes.Add(float64(report.Freed))
	metrics.QuotaResidualBytes.Set(float64(report.Residual))
}

func totalSize(all []models.ResourceMetadata) int64 {
	var total int64
	for _, meta := range all {
		total += meta.SizeBytes
	}
	return total
}
