// Package network tracks connectivity and link quality.
package network

import (
	"log/slog"
	"sync"
)

// Mode is the connectivity status
type Mode string

const (
	ModeOnline  Mode = "ONLINE"
	ModeOffline Mode = "OFFLINE"
)

// Quality is the estimated link quality
type Quality string

const (
	QualityOffline   Quality = "OFFLINE"
	QualityPoor      Quality = "POOR"
	QualityModerate  Quality = "MODERATE"
	QualityGood      Quality = "GOOD"
	QualityExcellent Quality = "EXCELLENT"
)

// Monitor holds the current status and notifies listeners on mode transitions.
// The zero state is ONLINE with GOOD quality.
type Monitor struct {
	logger    *slog.Logger
	mode      Mode
	quality   Quality
	listeners []func(Mode)
	mu        sync.RWMutex
}

// NewMonitor creates a monitor in the ONLINE/GOOD state
func NewMonitor(logger *slog.Logger) *Monitor {
	return &Monitor{
		logger:  logger,
		mode:    ModeOnline,
		quality: QualityGood,
	}
}

// OnStatusChange registers fn to be called on every mode transition
func (m *Monitor) OnStatusChange(fn func(Mode)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Status returns the current mode
func (m *Monitor) Status() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Quality returns the current quality
func (m *Monitor) Quality() Quality {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.quality
}

// SetStatus updates mode and quality. Listeners run synchronously, outside
// the lock, only when the mode changes.
func (m *Monitor) SetStatus(mode Mode, quality Quality) {
	if mode == ModeOffline {
		quality = QualityOffline
	}

	m.mu.Lock()
	changed := m.mode != mode
	m.mode = mode
	m.quality = quality
	listeners := append([]func(Mode){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info("network status changed", "mode", mode, "quality", quality)
	for _, fn := range listeners {
		fn(mode)
	}
}
