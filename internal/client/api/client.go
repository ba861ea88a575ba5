package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/iudanet/offsync/internal/models"
	"github.com/iudanet/offsync/pkg/api"
)

// ClientOptions настройки HTTP клиента
type ClientOptions struct {
	AuthToken string        // bearer токен, пустой - без авторизации
	ClientID  string        // идентификатор клиента для доставки операций
	Timeout   time.Duration // 0 - 30 секунд
	Compress  bool          // сжимать тела запросов snappy
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	opts       ClientOptions
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SendSyncRequest отправляет конверт с локальными патчами и получает ответный
func (c *Client) SendSyncRequest(ctx context.Context, env *api.SyncEnvelope) (*api.SyncEnvelope, error) {
	var resp api.SyncEnvelope
	if err := c.doRequest(ctx, http.MethodPost, api.PathSync, env, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// DeliverOperation доставляет одну операцию очереди
func (c *Client) DeliverOperation(ctx context.Context, op models.Operation) error {
	req := api.DeliverRequest{
		ClientID:  c.opts.ClientID,
		Operation: ToAPIOperation(op),
	}

	var resp api.DeliverResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathOps, req, &resp); err != nil {
		return fmt.Errorf("deliver request failed: %w", err)
	}
	if resp.OperationID != op.ID {
		return fmt.Errorf("server acknowledged %q instead of %q", resp.OperationID, op.ID)
	}
	return nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, api.PathHealth, nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// ToAPIOperation конвертирует операцию очереди в API формат
func ToAPIOperation(op models.Operation) api.Operation {
	return api.Operation{
		EnqueuedAt: op.EnqueuedAt,
		ID:         op.ID,
		Type:       string(op.Type),
		Key:        op.Key,
		Payload:    op.Payload,
	}
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		if c.opts.Compress {
			jsonData = snappy.Encode(nil, jsonData)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.opts.Compress {
			req.Header.Set("Content-Encoding", api.EncodingSnappy)
		}
	}
	if c.opts.Compress {
		req.Header.Set("Accept-Encoding", api.EncodingSnappy)
	}
	if c.opts.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.Header.Get("Content-Encoding") == api.EncodingSnappy {
		respBody, err = snappy.Decode(nil, respBody)
		if err != nil {
			return fmt.Errorf("failed to decompress response: %w", err)
		}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
