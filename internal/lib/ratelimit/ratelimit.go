// Package ratelimit ограничивает частоту запросов по политике и IP клиента.
//
// Счётчики хранятся в Redis (фиксированное окно INCR+EXPIRE), поэтому лимит общий
// для всех инстансов. Если Redis недоступен, используется локальный token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
)

// Rate лимит: не более Limit запросов за Period.
type Rate struct {
	Limit  int
	Period time.Duration
}

// DefaultRate используется, если строку лимита не удалось разобрать.
var DefaultRate = Rate{Limit: 20, Period: time.Minute}

var periods = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseRate разбирает строку вида "5/minute". Допустимые периоды:
// second, minute, hour, day. Некорректная строка даёт DefaultRate.
func ParseRate(s string) Rate {
	count, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return DefaultRate
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n <= 0 {
		return DefaultRate
	}
	d, ok := periods[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return DefaultRate
	}
	return Rate{Limit: n, Period: d}
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Period)
}

// maxLocalBuckets ограничивает память локального лимитера.
const maxLocalBuckets = 10_000

// Limiter проверяет лимиты. rdb может быть nil, тогда работает только локальный режим.
type Limiter struct {
	rdb *redis.Client
	log *slog.Logger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// New создаёт Limiter.
func New(rdb *redis.Client, log *slog.Logger) *Limiter {
	return &Limiter{
		rdb:   rdb,
		log:   log,
		local: make(map[string]*rate.Limiter),
	}
}

// Allow учитывает запрос и сообщает, укладывается ли он в лимит.
// При отказе возвращает время до сброса окна.
func (l *Limiter) Allow(ctx context.Context, policy string, r Rate, client string) (bool, time.Duration) {
	key := "ratelimit:" + policy + ":" + client
	if l.rdb != nil {
		allowed, retry, err := l.allowRedis(ctx, key, r)
		if err == nil {
			return allowed, retry
		}
		l.log.Warn("rate limit store unavailable, using local limiter",
			slog.String("policy", policy), sl.Err(err))
	}
	return l.allowLocal(key, r)
}

func (l *Limiter) allowRedis(ctx context.Context, key string, r Rate) (bool, time.Duration, error) {
	const op = "ratelimit.allowRedis"
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, r.Period).Err(); err != nil {
			return false, 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	if count <= int64(r.Limit) {
		return true, 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if ttl < 0 {
		// ключ остался без TTL после сбоя между INCR и EXPIRE
		_ = l.rdb.Expire(ctx, key, r.Period).Err()
		ttl = r.Period
	}
	return false, ttl, nil
}

func (l *Limiter) allowLocal(key string, r Rate) (bool, time.Duration) {
	l.mu.Lock()
	lim, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalBuckets {
			l.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(r.Period/time.Duration(r.Limit)), r.Limit)
		l.local[key] = lim
	}
	l.mu.Unlock()

	res := lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay
	}
	return true, 0
}

// ClientIP определяет IP клиента: первый адрес из X-Forwarded-For,
// затем X-Real-IP, затем адрес соединения.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
