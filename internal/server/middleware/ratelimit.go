package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/offsync/internal/server/handlers"
)

// RateLimiter ограничивает число запросов на ключ в фиксированном окне
type RateLimiter struct {
	buckets  map[string]*bucket
	logger   *slog.Logger
	now      func() time.Time
	cleanupC chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
	mu       sync.Mutex
}

// bucket хранит остаток запросов ключа в текущем окне
type bucket struct {
	windowStart time.Time
	tokens      int
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов в окне
// window - длина окна (например, 1 минута)
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		window:   window,
		logger:   logger,
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := rl.cleanupOldBuckets()
			if removed > 0 {
				rl.logger.Debug("rate limiter buckets cleaned", "removed", removed)
			}
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, окно которых закончилось больше окна назад
func (rl *RateLimiter) cleanupOldBuckets() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window*2 {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Stop останавливает cleanup goroutine; повторный вызов безопасен
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.cleanupC)
	})
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		b = &bucket{windowStart: now, tokens: rl.rate}
		rl.buckets[key] = b
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// RateLimitMiddleware создает middleware для ограничения частоты запросов
// rate - максимальное количество запросов
// window - временное окно (например, 1 минута)
// Аутентифицированные клиенты ограничиваются по client_id, остальные по IP.
// Возвращает middleware и функцию остановки фоновой очистки.
func RateLimitMiddleware(rate int, window time.Duration, logger *slog.Logger) (func(http.Handler) http.Handler, func()) {
	limiter := NewRateLimiter(rate, window, logger)

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"key", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
	return mw, limiter.Stop
}

func rateLimitKey(r *http.Request) string {
	if clientID, ok := handlers.GetClientID(r.Context()); ok {
		return "client:" + clientID
	}
	return "ip:" + getClientIP(r)
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	// Берем первый IP из списка (реальный клиент)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
