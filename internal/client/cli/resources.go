package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/offsync/internal/client/quota"
	"github.com/iudanet/offsync/internal/models"
)

func (c *Cli) runEvict(ctx context.Context, args []string) error {
	fs := c.flagSet("evict")
	expired := fs.Bool("expired", false, "Only evict expired resources")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	var (
		report *quota.EvictionReport
		err    error
	)
	if *expired {
		report, err = c.client.PurgeExpired(ctx)
	} else {
		report, err = c.client.EnforceQuota(ctx)
	}
	if err != nil {
		return fmt.Errorf("eviction failed: %w", err)
	}

	c.printEviction(report)
	return nil
}

func (c *Cli) runTrack(ctx context.Context, args []string) error {
	fs := c.flagSet("track")
	priority := fs.Int("priority", models.PriorityBackground, "Eviction priority, lower is evicted first")
	ttl := fs.Duration("ttl", 0, "Expire the resource after this duration")
	tags := fs.String("tags", "", "Comma separated tags")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("%w: offsync track [-priority N] [-ttl D] [-tags a,b] <key> <bytes>", ErrUsage)
	}
	size, err := strconv.ParseInt(rest[1], 10, 64)
	if err != nil || size < 0 {
		return fmt.Errorf("%w: size must be a non-negative integer", ErrUsage)
	}

	meta := models.ResourceMetadata{
		Key:       rest[0],
		SizeBytes: size,
		Priority:  *priority,
		LastUsed:  time.Now(),
	}
	if *ttl > 0 {
		expiresAt := meta.LastUsed.Add(*ttl)
		meta.ExpiresAt = &expiresAt
	}
	if *tags != "" {
		meta.Tags = strings.Split(*tags, ",")
	}

	if err := c.client.Track(ctx, meta); err != nil {
		return fmt.Errorf("failed to track resource: %w", err)
	}
	c.io.Printf("✓ Tracking %s (%s, priority %d)\n", meta.Key, formatBytes(size), meta.Priority)
	return nil
}

func (c *Cli) runPrefetch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: offsync prefetch <route>", ErrUsage)
	}

	report, err := c.client.RouteChanged(ctx, args[0])
	if err != nil {
		return fmt.Errorf("prefetch failed: %w", err)
	}

	if report.Skipped {
		c.io.Printf("Prefetch skipped: network quality is %s\n", report.Quality)
		return nil
	}
	c.io.Printf("Fetched: %d, already cached: %d, failed: %d\n", report.Fetched, report.Cached, report.Failed)
	if report.Eviction != nil && len(report.Eviction.Evicted) > 0 {
		c.printEviction(report.Eviction)
	}
	return nil
}

func (c *Cli) printEviction(report *quota.EvictionReport) {
	if len(report.Evicted) == 0 {
		c.io.Println("Nothing to evict.")
	} else {
		c.io.Printf("Evicted %d resource(s), freed %s:\n", len(report.Evicted), formatBytes(report.Freed))
		for _, key := range report.Evicted {
			c.io.Printf("  - %s\n", key)
		}
	}
	c.io.Printf("Usage: %s\n", formatBytes(report.Usage))
	if report.Residual > 0 {
		c.io.Printf("⚠️  %s over budget is held by unsynced data\n", formatBytes(report.Residual))
	}
}
