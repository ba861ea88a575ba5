package models

import "time"

// Priority bounds for cached resources.
const (
	PriorityCritical   = 0
	PriorityBackground = 10
)

// ResourceMetadata describes one cached resource tracked by the quota manager.
// Lower Priority values are evicted first (see quota.Manager).
type ResourceMetadata struct {
	LastUsed  time.Time  `json:"last_used"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Key       string     `json:"key"`
	Tags      []string   `json:"tags,omitempty"`
	SizeBytes int64      `json:"size_bytes"`
	Priority  int        `json:"priority"`
}

// IsExpired reports whether the resource has an expiry in the past.
func (m *ResourceMetadata) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && !m.ExpiresAt.After(now)
}
