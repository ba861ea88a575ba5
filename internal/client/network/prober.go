package network

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Latency thresholds used to grade a successful probe
const (
	ExcellentLatency = 100 * time.Millisecond
	GoodLatency      = 300 * time.Millisecond
	ModerateLatency  = time.Second
)

// QualityFromLatency grades a round trip time
func QualityFromLatency(rtt time.Duration) Quality {
	switch {
	case rtt < ExcellentLatency:
		return QualityExcellent
	case rtt < GoodLatency:
		return QualityGood
	case rtt < ModerateLatency:
		return QualityModerate
	default:
		return QualityPoor
	}
}

// Prober periodically requests a health URL and feeds the result into a Monitor
type Prober struct {
	client   *http.Client
	monitor  *Monitor
	logger   *slog.Logger
	url      string
	interval time.Duration
}

// NewProber creates a prober. timeout bounds a single probe.
func NewProber(url string, interval, timeout time.Duration, monitor *Monitor, logger *slog.Logger) *Prober {
	return &Prober{
		client:   &http.Client{Timeout: timeout},
		monitor:  monitor,
		logger:   logger,
		url:      url,
		interval: interval,
	}
}

// Probe performs one request and updates the monitor
func (p *Prober) Probe(ctx context.Context) Quality {
	start := time.Now()
	err := p.get(ctx)
	if err != nil {
		p.logger.Debug("network probe failed", "url", p.url, "error", err)
		p.monitor.SetStatus(ModeOffline, QualityOffline)
		return QualityOffline
	}

	q := QualityFromLatency(time.Since(start))
	p.monitor.SetStatus(ModeOnline, q)
	return q
}

// Run probes immediately and then every interval until ctx is done
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

func (p *Prober) get(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
