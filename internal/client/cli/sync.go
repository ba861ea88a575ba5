package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")

	result, err := c.client.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	return syncTmpl.Execute(c.io, result)
}

func (c *Cli) runStatus(ctx context.Context) error {
	mode, quality := c.client.Connectivity()

	c.io.Println("=== Status ===")
	c.io.Printf("Network:  %s (%s)\n", mode, quality)
	c.io.Printf("Engine:   %s\n", c.client.State())

	pending, err := c.client.QueueSize(ctx)
	if err != nil {
		return fmt.Errorf("failed to get queue size: %w", err)
	}
	if pending > 0 {
		c.io.Printf("Queue:    %d operation(s) waiting to be delivered\n", pending)
	} else {
		c.io.Println("Queue:    empty")
	}

	dead, err := c.client.DeadLetters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dead letters: %w", err)
	}
	if len(dead) > 0 {
		c.io.Printf("Dead:     %d operation(s), see 'offsync queue dead'\n", len(dead))
	}

	used, budget, err := c.client.Usage(ctx)
	if err != nil {
		return fmt.Errorf("failed to get storage usage: %w", err)
	}
	c.io.Printf("Storage:  %s of %s\n", formatBytes(used), formatBytes(budget))
	if used > budget {
		c.io.Println("⚠️  Storage budget exceeded by unsynced data. Run 'offsync sync' to free space.")
	}
	return nil
}

// formatBytes форматирует размер в человекочитаемом виде
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
