// Package queue implements the durable FIFO of pending local mutations.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/offsync/internal/client/storage"
	"github.com/iudanet/offsync/internal/models"
)

// Store keys
const (
	PendingKey    = "queue:pending"
	DeadLetterKey = "queue:dead"
)

// ErrHeadChanged indicates that UpdateHead was called for an operation that is no longer the head
var ErrHeadChanged = errors.New("queue head changed")

// Queue is a FIFO of operations persisted as one JSON array.
// Every read-modify-write of the array holds mu.
type Queue struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// New creates a queue persisted in store
func New(store storage.Store, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue assigns an id and enqueue time to op and appends it.
// It returns only after the queue has been persisted; on error nothing was appended.
func (q *Queue) Enqueue(ctx context.Context, op models.Operation) (*models.Operation, error) {
	if err := op.Type.Validate(); err != nil {
		return nil, err
	}
	if op.Key == "" {
		return nil, fmt.Errorf("operation key cannot be empty")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return nil, err
	}

	op.ID = uuid.New().String()
	op.EnqueuedAt = q.now().UTC()
	op.RetryCount = 0
	if op.Payload != nil {
		op.Payload = append(json.RawMessage(nil), op.Payload...)
	}

	if err := q.save(ctx, PendingKey, append(ops, op)); err != nil {
		return nil, fmt.Errorf("failed to persist enqueue: %w", err)
	}

	q.logger.Debug("operation enqueued",
		"id", op.ID,
		"type", op.Type,
		"key", op.Key,
	)

	return &op, nil
}

// Peek returns the head or nil when the queue is empty
func (q *Queue) Peek(ctx context.Context) (*models.Operation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}

	head := ops[0]
	return &head, nil
}

// Dequeue removes and returns the head, or nil when the queue is empty
func (q *Queue) Dequeue(ctx context.Context) (*models.Operation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}

	head := ops[0]
	if err := q.save(ctx, PendingKey, ops[1:]); err != nil {
		return nil, fmt.Errorf("failed to persist dequeue: %w", err)
	}
	return &head, nil
}

// Ack removes the head if it is still the operation with the given id
func (q *Queue) Ack(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return err
	}
	if len(ops) == 0 || ops[0].ID != id {
		return ErrHeadChanged
	}

	if err := q.save(ctx, PendingKey, ops[1:]); err != nil {
		return fmt.Errorf("failed to persist ack: %w", err)
	}
	return nil
}

// Size returns the number of pending operations
func (q *Queue) Size(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return 0, err
	}
	return len(ops), nil
}

// List returns a copy of the pending operations in order
func (q *Queue) List(ctx context.Context) ([]models.Operation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx, PendingKey)
}

// UpdateHead persists the retry count of the head operation
func (q *Queue) UpdateHead(ctx context.Context, op *models.Operation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return err
	}
	if len(ops) == 0 || ops[0].ID != op.ID {
		return ErrHeadChanged
	}

	ops[0].RetryCount = op.RetryCount
	return q.save(ctx, PendingKey, ops)
}

// DeadLetter moves the head to the dead-letter list. Nil is returned when the queue is empty.
func (q *Queue) DeadLetter(ctx context.Context, reason string) (*models.DeadLetter, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}

	dead, err := q.loadDead(ctx)
	if err != nil {
		return nil, err
	}

	letter := models.DeadLetter{
		MovedAt:   q.now().UTC(),
		Reason:    reason,
		Operation: ops[0],
	}

	// Сначала пишем dead-letter: при сбое второй записи операция
	// окажется в обоих списках, но не потеряется
	if err := q.saveDead(ctx, append(dead, letter)); err != nil {
		return nil, fmt.Errorf("failed to persist dead letter: %w", err)
	}
	if err := q.save(ctx, PendingKey, ops[1:]); err != nil {
		return nil, fmt.Errorf("failed to persist dequeue: %w", err)
	}

	q.logger.Warn("operation moved to dead letters",
		"id", letter.Operation.ID,
		"key", letter.Operation.Key,
		"retries", letter.Operation.RetryCount,
		"reason", reason,
	)

	return &letter, nil
}

// DeadLetters returns operations moved out of the queue
func (q *Queue) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadDead(ctx)
}

// HasPendingKey reports whether an operation for key is still queued
func (q *Queue) HasPendingKey(ctx context.Context, key string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return false, err
	}
	for _, op := range ops {
		if op.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// PendingKeys returns the set of keys with queued operations
func (q *Queue) PendingKeys(ctx context.Context) (map[string]struct{}, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.load(ctx, PendingKey)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		keys[op.Key] = struct{}{}
	}
	return keys, nil
}

func (q *Queue) load(ctx context.Context, key string) ([]models.Operation, error) {
	data, err := q.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Operation{}, nil
	}
	if err != nil {
		return nil, err
	}

	var ops []models.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue: %w", err)
	}
	return ops, nil
}

func (q *Queue) save(ctx context.Context, key string, ops []models.Operation) error {
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}
	return q.store.Put(ctx, key, data)
}

func (q *Queue) loadDead(ctx context.Context) ([]models.DeadLetter, error) {
	data, err := q.store.Get(ctx, DeadLetterKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.DeadLetter{}, nil
	}
	if err != nil {
		return nil, err
	}

	var dead []models.DeadLetter
	if err := json.Unmarshal(data, &dead); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dead letters: %w", err)
	}
	return dead, nil
}

func (q *Queue) saveDead(ctx context.Context, dead []models.DeadLetter) error {
	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letters: %w", err)
	}
	return q.store.Put(ctx, DeadLetterKey, data)
}
