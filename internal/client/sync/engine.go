// Package sync drains the mutation queue and exchanges diff patches with the remote authority.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/offsync/internal/client/queue"
	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/metrics"
	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/pkg/api"
)

// State of the engine
type State int32

const (
	StateIdle State = iota
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSyncing:
		return "SYNCING"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// RetryStrategy bounds queue head delivery attempts
type RetryStrategy struct {
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxRetries    int
}

// Delay returns InitialDelay * BackoffFactor^retryCount
func (r RetryStrategy) Delay(retryCount int) time.Duration {
	d := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(retryCount))
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Config of the engine
type Config struct {
	ClientID   string
	SigningKey []byte
	Retry      RetryStrategy
}

// Result contains sync cycle results
type Result struct {
	Delivered int  // количество доставленных операций очереди
	Pushed    int  // количество отправленных патчей
	Pulled    int  // количество полученных патчей
	Applied   int  // количество примененных без конфликта
	Conflicts int  // количество разрешённых конфликтов
	Skipped   int  // количество пропущенных патчей (malformed)
	Stuck     bool // голова очереди исчерпала попытки
	Aborted   bool // обмен конвертами не состоялся
	Reentrant bool // синхронизация уже выполнялась, вызов проигнорирован
	Offline   bool // сеть недоступна, цикл не запускался
}

// Engine runs sync cycles. At most one cycle is in flight at a time.
type Engine struct {
	transport Transport
	queue     *queue.Queue
	protocol  *Protocol
	logger    *slog.Logger
	cfg       Config
	state     atomic.Int32
}

// NewEngine creates a new sync engine
func NewEngine(transport Transport, q *queue.Queue, protocol *Protocol, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		transport: transport,
		queue:     q,
		protocol:  protocol,
		logger:    logger,
		cfg:       cfg,
	}
}

// State returns the current engine state
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Sync runs one cycle: drain the queue, exchange envelopes, apply remote patches.
// A call made while a cycle is running returns immediately with Result.Reentrant set.
// Transport failures are logged and reported in the result; the only error
// returned is storage unavailability.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateSyncing)) {
		e.logger.Debug("sync already in progress, skipping")
		return &Result{Reentrant: true}, nil
	}
	defer e.state.Store(int32(StateIdle))

	start := time.Now()
	result := &Result{}

	err := e.run(ctx, result)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case result.Aborted:
		outcome = "aborted"
	case result.Stuck:
		outcome = "stuck"
	}
	metrics.SyncCycles.WithLabelValues(outcome).Inc()
	metrics.SyncDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		e.logger.Error("sync failed", "error", err)
		return result, err
	}

	e.logger.Info("Synchronization completed",
		"delivered", result.Delivered,
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"applied", result.Applied,
		"conflicts", result.Conflicts,
		"skipped", result.Skipped,
		"stuck", result.Stuck,
		"aborted", result.Aborted,
	)
	return result, nil
}

func (e *Engine) run(ctx context.Context, result *Result) error {
	// 1. Доставляем очередь
	if err := e.drain(ctx, result); err != nil {
		if errors.Is(err, ErrTransport) {
			result.Aborted = true
			return nil
		}
		return err
	}

	// 2. Собираем патчи грязных документов
	patches, err := e.protocol.PreparePatches(ctx)
	if err != nil {
		return err
	}

	env, err := e.protocol.BuildEnvelope(e.cfg.ClientID, patches, e.cfg.SigningKey)
	if err != nil {
		return err
	}
	result.Pushed = len(patches)

	resp, err := e.transport.SendSyncRequest(ctx, env)
	if err == nil {
		err = e.protocol.CheckEnvelope(resp, e.cfg.SigningKey)
	}
	if err != nil {
		e.logger.Warn("sync exchange failed, cycle aborted",
			"error", fmt.Errorf("%w: %w", ErrTransport, err),
			"pushed", len(patches),
		)
		result.Aborted = true
		return nil
	}

	// 3. Применяем ответные патчи
	sent := make(map[string]api.DiffPatch, len(patches))
	for _, dp := range patches {
		sent[dp.ID] = dp
	}

	result.Pulled = len(resp.Patches)
	for _, dp := range resp.Patches {
		if pushed, ok := sent[dp.ID]; ok {
			acked, err := e.protocol.AcknowledgePush(ctx, pushed, dp)
			if err != nil {
				return err
			}
			if acked {
				// локальная запись новее подтвержденной, уйдет следующим циклом
				result.Applied++
				metrics.PatchesApplied.WithLabelValues("acknowledged").Inc()
				continue
			}
		}
		if err := e.apply(ctx, dp, result); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) apply(ctx context.Context, dp api.DiffPatch, result *Result) error {
	_, err := e.protocol.ApplyPatch(ctx, dp)
	if err == nil {
		result.Applied++
		metrics.PatchesApplied.WithLabelValues("applied").Inc()
		return nil
	}

	if errors.Is(err, ErrVersionConflict) {
		e.logger.Debug("patch conflicts with local version", "key", dp.ID, "error", err)
		_, err = e.protocol.ResolveConflict(ctx, dp)
		if err == nil {
			result.Conflicts++
			metrics.PatchesApplied.WithLabelValues("conflict").Inc()
			return nil
		}
	}

	if errors.Is(err, storage.ErrUnavailable) {
		return err
	}

	e.logger.Warn("Failed to apply patch",
		"key", dp.ID,
		"base_version", dp.BaseVersion,
		"error", err,
	)
	result.Skipped++
	metrics.PatchesApplied.WithLabelValues("skipped").Inc()
	return nil
}

// drain delivers queued operations in FIFO order until the queue is empty or
// the head exhausts its retries
func (e *Engine) drain(ctx context.Context, result *Result) error {
	defer e.reportDepth(ctx)

	for {
		head, err := e.queue.Peek(ctx)
		if err != nil {
			return err
		}
		if head == nil {
			return nil
		}

		if head.RetryCount >= e.cfg.Retry.MaxRetries {
			e.logger.Warn("queue head exhausted retries, draining stopped",
				"id", head.ID,
				"key", head.Key,
				"retries", head.RetryCount,
			)
			result.Stuck = true
			return nil
		}

		err = e.deliver(ctx, head)
		switch {
		case err == nil:
		case errors.Is(err, ErrQueueStuck):
			e.logger.Warn("queue head exhausted retries, draining stopped",
				"id", head.ID,
				"key", head.Key,
				"error", err,
			)
			result.Stuck = true
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// хост отменил цикл во время ожидания, голова остается на месте
			return fmt.Errorf("%w: %w", ErrTransport, err)
		default:
			return err
		}

		if err := e.queue.Ack(ctx, head.ID); err != nil {
			if errors.Is(err, queue.ErrHeadChanged) {
				// голову убрал хост (dead letter), продолжаем со следующей
				e.logger.Debug("queue head changed during delivery", "id", head.ID)
				continue
			}
			return err
		}
		result.Delivered++
	}
}

// deliver sends head until acknowledged, persisting retryCount after every
// failure and waiting Retry.Delay(retryCount) between attempts
func (e *Engine) deliver(ctx context.Context, head *models.Operation) error {
	var storageErr error

	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		return e.cfg.Retry.Delay(head.RetryCount), false
	})

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := e.transport.DeliverOperation(ctx, *head)
		if err == nil {
			metrics.QueueDeliveries.WithLabelValues("ok").Inc()
			return nil
		}
		metrics.QueueDeliveries.WithLabelValues("failed").Inc()

		head.RetryCount++
		if uerr := e.queue.UpdateHead(ctx, head); uerr != nil && !errors.Is(uerr, queue.ErrHeadChanged) {
			storageErr = uerr
			return uerr
		}

		e.logger.Warn("failed to deliver operation",
			"id", head.ID,
			"key", head.Key,
			"retry", head.RetryCount,
			"error", err,
		)

		if head.RetryCount >= e.cfg.Retry.MaxRetries {
			return fmt.Errorf("%w: %w: %w", ErrQueueStuck, ErrDelivery, err)
		}
		return retry.RetryableError(fmt.Errorf("%w: %w", ErrDelivery, err))
	})

	if storageErr != nil {
		return storageErr
	}
	return err
}

func (e *Engine) reportDepth(ctx context.Context) {
	size, err := e.queue.Size(ctx)
	if err != nil {
		return
	}
	metrics.QueueDepth.Set(float64(size))
}
