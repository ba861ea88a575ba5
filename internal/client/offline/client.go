// Package offline wires the offline-first core into a single client.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/iudanet/offsync/internal/client/docs"
	"github.com/iudanet/offsync/internal/client/network"
	"github.com/iudanet/offsync/internal/client/queue"
	"github.com/iudanet/offsync/internal/client/quota"
	"github.com/iudanet/offsync/internal/client/resource"
	"github.com/iudanet/offsync/internal/client/storage"
	clientsync "github.com/iudanet/offsync/internal/client/sync"
	"github.com/iudanet/offsync/internal/config"
	"github.com/iudanet/offsync/internal/conflict"
	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/internal/validation"
)

// Options carries the collaborators of a Client. Nil fields get defaults
// derived from the configuration.
type Options struct {
	Store     storage.Store
	Transport clientsync.Transport
	Monitor   *network.Monitor
	Resolver  conflict.Resolver
	Predictor resource.Predictor
	Fetcher   resource.Fetcher

	// Background starts the periodic sync loop and the network prober on Init
	Background bool
}

// Client is the offline-first facade used by hosts
type Client struct {
	cfg       *config.Config
	store     storage.Store
	transport clientsync.Transport
	monitor   *network.Monitor
	docs      *docs.Repository
	queue     *queue.Queue
	engine    *clientsync.Engine
	quota     *quota.Manager
	resources *resource.Manager
	logger    *slog.Logger

	background bool
	cancel     context.CancelFunc
	wg         gosync.WaitGroup
}

// New wires a client. Store and Transport are required.
func New(cfg *config.Config, opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Transport == nil {
		return nil, errors.New("transport is required")
	}

	if opts.Monitor == nil {
		opts.Monitor = network.NewMonitor(logger)
	}
	if opts.Resolver == nil {
		r, err := conflict.ByName(cfg.ConflictStrategy)
		if err != nil {
			return nil, err
		}
		opts.Resolver = r
	}
	if opts.Predictor == nil {
		opts.Predictor = resource.DefaultRoutes
		if len(cfg.Resources.Routes) > 0 {
			opts.Predictor = resource.StaticPredictor(cfg.Resources.Routes)
		}
	}
	if opts.Fetcher == nil {
		base := cfg.Resources.BaseURL
		if base == "" {
			base = cfg.Transport.ServerURL
		}
		f, err := resource.NewHTTPFetcher(base, cfg.Transport.Timeout(), 0)
		if err != nil {
			return nil, err
		}
		opts.Fetcher = f
	}

	repo := docs.New(opts.Store)
	q := queue.New(opts.Store, logger)

	c := &Client{
		cfg:        cfg,
		store:      opts.Store,
		transport:  opts.Transport,
		monitor:    opts.Monitor,
		docs:       repo,
		queue:      q,
		logger:     logger,
		background: opts.Background,
	}

	c.quota = quota.NewManager(
		opts.Store,
		quota.UnsyncedProtection{Docs: repo, Queue: q},
		evictionRemover{store: opts.Store, docs: repo},
		cfg.QuotaBytes(),
		logger,
	)

	protocol := clientsync.NewProtocol(repo, opts.Resolver, logger)
	c.engine = clientsync.NewEngine(opts.Transport, q, protocol, clientsync.Config{
		ClientID:   cfg.ClientID,
		SigningKey: []byte(cfg.Transport.SigningKey),
		Retry: clientsync.RetryStrategy{
			MaxRetries:    cfg.RetryStrategy.MaxRetries,
			InitialDelay:  cfg.RetryStrategy.InitialDelay(),
			BackoffFactor: cfg.RetryStrategy.BackoffFactor,
		},
	}, logger)

	c.resources = resource.NewManager(opts.Monitor, opts.Store, c.quota, opts.Predictor, opts.Fetcher, logger)

	return c, nil
}

// Init prepares the store and subscribes to network changes: going ONLINE
// triggers a sync. With Options.Background the periodic loop is started too.
func (c *Client) Init(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	bg, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.monitor.OnStatusChange(func(mode network.Mode) {
		if mode != network.ModeOnline {
			return
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if _, err := c.Sync(bg); err != nil {
				c.logger.Error("sync after reconnect failed", "error", err)
			}
		}()
	})

	if c.background {
		c.wg.Add(1)
		go c.loop(bg)

		if c.cfg.Network.ProbeURL != "" {
			prober := network.NewProber(c.cfg.Network.ProbeURL, c.cfg.Network.ProbeInterval(), c.cfg.Transport.Timeout(), c.monitor, c.logger)
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				prober.Run(bg)
			}()
		}
	}

	c.logger.Info("client initialized",
		"client_id", c.cfg.ClientID,
		"backend", c.cfg.Storage.Backend,
		"transport", c.cfg.Transport.Kind,
	)
	return nil
}

// Put writes value locally and enqueues the mutation
func (c *Client) Put(ctx context.Context, key, docType string, value json.RawMessage) (*models.Document, error) {
	if err := validation.ValidateKey(key); err != nil {
		return nil, err
	}

	prev, err := c.docs.Get(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	doc, err := c.docs.Write(ctx, key, docType, value)
	if err != nil {
		return nil, err
	}

	opType := models.OperationUpdate
	if prev == nil || prev.Deleted {
		opType = models.OperationCreate
	}
	if _, err := c.queue.Enqueue(ctx, models.Operation{Type: opType, Key: key, Payload: doc.Value}); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", opType, err)
	}

	if err := c.trackDocument(ctx, doc); err != nil {
		return nil, err
	}
	c.enforceAfterWrite(ctx)
	return doc, nil
}

// Get returns a live document; tombstones read as storage.ErrNotFound
func (c *Client) Get(ctx context.Context, key string) (*models.Document, error) {
	doc, err := c.docs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, storage.ErrNotFound
	}
	if err := c.quota.Touch(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document locally and enqueues the deletion
func (c *Client) Delete(ctx context.Context, key string) error {
	prev, err := c.docs.Get(ctx, key)
	if err != nil {
		return err
	}
	// повторное удаление не порождает операцию
	if prev.Deleted {
		return nil
	}

	doc, err := c.docs.Delete(ctx, key)
	if err != nil {
		return err
	}
	if _, err := c.queue.Enqueue(ctx, models.Operation{Type: models.OperationDelete, Key: key}); err != nil {
		return fmt.Errorf("failed to enqueue DELETE: %w", err)
	}
	return c.trackDocument(ctx, doc)
}

// List returns live documents ordered by key
func (c *Client) List(ctx context.Context) ([]*models.Document, error) {
	all, err := c.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, doc := range all {
		if !doc.Deleted {
			live = append(live, doc)
		}
	}
	return live, nil
}

// Sync runs one sync cycle unless the network is OFFLINE
func (c *Client) Sync(ctx context.Context) (*clientsync.Result, error) {
	if c.monitor.Status() == network.ModeOffline {
		c.logger.Info("offline, skipping sync")
		return &clientsync.Result{Offline: true}, nil
	}

	result, err := c.engine.Sync(ctx)
	if err != nil {
		return result, err
	}

	// После синхронизации документы могли стать чистыми и освободить место
	if !result.Reentrant && !result.Aborted {
		c.enforceAfterWrite(ctx)
	}
	return result, nil
}

// EnforceQuota runs one eviction pass
func (c *Client) EnforceQuota(ctx context.Context) (*quota.EvictionReport, error) {
	return c.quota.EnforceQuota(ctx)
}

// PurgeExpired evicts expired resources
func (c *Client) PurgeExpired(ctx context.Context) (*quota.EvictionReport, error) {
	return c.quota.PurgeExpired(ctx)
}

// Track records resource metadata for quota accounting
func (c *Client) Track(ctx context.Context, meta models.ResourceMetadata) error {
	return c.quota.Track(ctx, meta)
}

// Resources returns tracked resource metadata
func (c *Client) Resources(ctx context.Context) ([]models.ResourceMetadata, error) {
	return c.quota.List(ctx)
}

// Usage returns tracked bytes and the budget
func (c *Client) Usage(ctx context.Context) (used, budget int64, err error) {
	used, err = c.quota.CurrentSize(ctx)
	return used, c.quota.Budget(), err
}

// RouteChanged hints the resource manager about navigation
func (c *Client) RouteChanged(ctx context.Context, route string) (*resource.Report, error) {
	return c.resources.OnNavigation(ctx, route)
}

// Cached returns a prefetched resource
func (c *Client) Cached(ctx context.Context, res string) ([]byte, error) {
	return c.resources.Cached(ctx, res)
}

// QueueSize returns the number of pending operations
func (c *Client) QueueSize(ctx context.Context) (int, error) {
	return c.queue.Size(ctx)
}

// PendingOperations returns the queued operations in order
func (c *Client) PendingOperations(ctx context.Context) ([]models.Operation, error) {
	return c.queue.List(ctx)
}

// DeadLetterHead moves a stuck head out of the queue
func (c *Client) DeadLetterHead(ctx context.Context, reason string) (*models.DeadLetter, error) {
	return c.queue.DeadLetter(ctx, reason)
}

// RetryHead resets the retry counter of the head so the next cycle delivers it again
func (c *Client) RetryHead(ctx context.Context) error {
	head, err := c.queue.Peek(ctx)
	if err != nil || head == nil {
		return err
	}
	head.RetryCount = 0
	return c.queue.UpdateHead(ctx, head)
}

// DeadLetters returns operations moved out of the queue
func (c *Client) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	return c.queue.DeadLetters(ctx)
}

// Network returns the network monitor
func (c *Client) Network() *network.Monitor {
	return c.monitor
}

// Connectivity returns the current network mode and link quality
func (c *Client) Connectivity() (network.Mode, network.Quality) {
	return c.monitor.Status(), c.monitor.Quality()
}

// State returns the sync engine state
func (c *Client) State() clientsync.State {
	return c.engine.State()
}

// Close stops background work and closes the transport and the store
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	var errs []error
	if closer, ok := c.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close transport: %w", err))
		}
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Client) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.SyncInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Sync(ctx); err != nil {
				c.logger.Error("periodic sync failed", "error", err)
			}
		}
	}
}

func (c *Client) trackDocument(ctx context.Context, doc *models.Document) error {
	err := c.quota.Track(ctx, models.ResourceMetadata{
		Key:       doc.Key,
		Priority:  models.PriorityBackground,
		SizeBytes: int64(len(doc.Value)),
		Tags:      []string{doc.Type},
	})
	if err != nil {
		return fmt.Errorf("failed to track document: %w", err)
	}
	return nil
}

func (c *Client) enforceAfterWrite(ctx context.Context) {
	report, err := c.quota.EnforceQuota(ctx)
	if err != nil {
		c.logger.Warn("quota enforcement failed", "error", err)
		return
	}
	if len(report.Evicted) > 0 {
		c.logger.Debug("quota enforced after write", "evicted", report.Evicted, "freed", report.Freed)
	}
}

// evictionRemover deletes cached payloads and clean documents
type evictionRemover struct {
	store storage.Store
	docs  *docs.Repository
}

func (r evictionRemover) RemoveData(ctx context.Context, key string) error {
	if err := r.store.Delete(ctx, quota.CachePrefix+key); err != nil {
		return err
	}

	// грязный документ остается, проверка и удаление под одной блокировкой
	_, err := r.docs.RemoveIfClean(ctx, key)
	return err
}
