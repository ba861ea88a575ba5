package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (c *Cli) runQueue(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return c.listQueue(ctx)
	case "retry":
		if err := c.client.RetryHead(ctx); err != nil {
			return fmt.Errorf("failed to reset queue head: %w", err)
		}
		c.io.Println("✓ Queue head will be retried on the next sync")
		return nil
	case "drop":
		reason := strings.TrimSpace(strings.Join(args[1:], " "))
		if reason == "" {
			return fmt.Errorf("%w: offsync queue drop <reason>", ErrUsage)
		}
		dl, err := c.client.DeadLetterHead(ctx, reason)
		if err != nil {
			return fmt.Errorf("failed to dead-letter queue head: %w", err)
		}
		if dl == nil {
			c.io.Println("Queue is empty.")
			return nil
		}
		c.io.Printf("✓ Moved %s %s (%s) to dead letters\n", dl.Operation.Type, dl.Operation.Key, dl.Operation.ID)
		return nil
	case "dead":
		return c.listDeadLetters(ctx)
	default:
		return fmt.Errorf("%w: offsync queue [list|retry|drop <reason>|dead]", ErrUsage)
	}
}

func (c *Cli) listQueue(ctx context.Context) error {
	ops, err := c.client.PendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	if len(ops) == 0 {
		c.io.Println("Queue is empty.")
		return nil
	}

	for i, op := range ops {
		c.io.Printf("%d. %-6s %-32s retries=%d enqueued=%s\n",
			i+1, op.Type, op.Key, op.RetryCount, op.EnqueuedAt.Format(time.RFC3339))
	}
	return nil
}

func (c *Cli) listDeadLetters(ctx context.Context) error {
	dead, err := c.client.DeadLetters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dead letters: %w", err)
	}
	if len(dead) == 0 {
		c.io.Println("No dead letters.")
		return nil
	}

	for i, dl := range dead {
		c.io.Printf("%d. %-6s %-32s moved=%s reason=%q\n",
			i+1, dl.Operation.Type, dl.Operation.Key, dl.MovedAt.Format(time.RFC3339), dl.Reason)
	}
	return nil
}
