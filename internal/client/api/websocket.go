package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/pkg/api"
)

// WSClient передает конверты и операции через одно websocket соединение.
// Запросы выполняются последовательно: запись и чтение ответа под одним мьютексом.
type WSClient struct {
	dialer *websocket.Dialer
	conn   *websocket.Conn
	wsURL  string
	opts   ClientOptions
	mu     sync.Mutex
}

// NewWSClient создает websocket транспорт. serverURL может быть http(s) или ws(s).
func NewWSClient(serverURL string, opts ClientOptions) (*WSClient, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += api.PathWS

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &WSClient{
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.Timeout,
			Proxy:            http.ProxyFromEnvironment,
		},
		wsURL: u.String(),
		opts:  opts,
	}, nil
}

// SendSyncRequest отправляет конверт и ждет ответный конверт
func (c *WSClient) SendSyncRequest(ctx context.Context, env *api.SyncEnvelope) (*api.SyncEnvelope, error) {
	resp, err := c.roundTrip(ctx, api.WSMessage{Type: api.WSTypeSync, Envelope: env})
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	if resp.Envelope == nil {
		return nil, errors.New("sync request failed: response has no envelope")
	}
	return resp.Envelope, nil
}

// DeliverOperation доставляет одну операцию очереди
func (c *WSClient) DeliverOperation(ctx context.Context, op models.Operation) error {
	resp, err := c.roundTrip(ctx, api.WSMessage{
		Type: api.WSTypeOp,
		Deliver: &api.DeliverRequest{
			ClientID:  c.opts.ClientID,
			Operation: ToAPIOperation(op),
		},
	})
	if err != nil {
		return fmt.Errorf("deliver request failed: %w", err)
	}
	if resp.Ack == nil || resp.Ack.OperationID != op.ID {
		return fmt.Errorf("deliver request failed: operation %q not acknowledged", op.ID)
	}
	return nil
}

// Close закрывает соединение
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

func (c *WSClient) roundTrip(ctx context.Context, msg api.WSMessage) (*api.WSMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	msg.ID = uuid.New().String()
	if err := c.conn.WriteJSON(msg); err != nil {
		_ = c.dropLocked()
		return nil, fmt.Errorf("failed to write message: %w", err)
	}

	var resp api.WSMessage
	if err := c.conn.ReadJSON(&resp); err != nil {
		// После ошибки чтения поток рассинхронизирован, переподключаемся
		_ = c.dropLocked()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.ID != msg.ID {
		_ = c.dropLocked()
		return nil, fmt.Errorf("response id %q does not match request %q", resp.ID, msg.ID)
	}
	if resp.Type == api.WSTypeError {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *WSClient) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	header := http.Header{}
	if c.opts.AuthToken != "" {
		header.Set("Authorization", "Bearer "+c.opts.AuthToken)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to dial %s: status %d: %w", c.wsURL, resp.StatusCode, err)
		}
		return fmt.Errorf("failed to dial %s: %w", c.wsURL, err)
	}
	c.conn = conn
	return nil
}

func (c *WSClient) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
