package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"taskmanager/internal/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

const (
	requestIdHeader    = "X-Request-ID"
	maxRequestIdLength = 64
)

// RequestID берёт X-Request-ID клиента (не длиннее 64 символов) или генерирует новый
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" || len(id) > maxRequestIdLength {
			id = uuid.NewString()
		}

		w.Header().Set(requestIdHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIdKey, id)))
	})
}

// statusRecorder запоминает код ответа и число записанных байт
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
	sent    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.sent {
		return
	}
	sr.status, sr.sent = code, true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.WriteHeader(http.StatusOK)
	n, err := sr.ResponseWriter.Write(b)
	sr.written += n
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Logging пишет строку на входе и на выходе запроса. Уровень выходной строки зависит от статуса.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := GetRequestID(r.Context())

		logger.HttpRequestInfo(r, "HTTP_IN: Начало запроса",
			zap.String("request_id", requestId),
			zap.String("user_agent", r.UserAgent()),
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Log(levelForStatus(rec.status), "HTTP_OUT: Завершение запроса",
			zap.String("request_id", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes_written", rec.written),
			zap.Duration("ms", time.Since(start)),
		)
	})
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zap.ErrorLevel
	case status >= http.StatusBadRequest:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

// ipWindow - счётчик запросов клиента в текущем минутном окне
type ipWindow struct {
	hits    int
	resetAt time.Time
}

// rateLimiter считает запросы по IP фиксированными окнами
type rateLimiter struct {
	mtx       sync.Mutex
	limit     int
	window    time.Duration
	windows   map[string]*ipWindow
	nextSweep time.Time
}

func newRateLimiter(limit int, window time.Duration, now time.Time) *rateLimiter {
	return &rateLimiter{
		limit:     limit,
		window:    window,
		windows:   make(map[string]*ipWindow),
		nextSweep: now.Add(window),
	}
}

// allow регистрирует запрос и возвращает остаток и конец окна.
// При ok == false запрос сверх лимита и не засчитан.
func (l *rateLimiter) allow(ip string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if now.After(l.nextSweep) {
		l.sweep(now)
	}

	win, found := l.windows[ip]
	if !found || now.After(win.resetAt) {
		win = &ipWindow{resetAt: now.Add(l.window)}
		l.windows[ip] = win
	}
	if win.hits >= l.limit {
		return 0, win.resetAt, false
	}

	win.hits++
	return l.limit - win.hits, win.resetAt, true
}

// sweep удаляет окна, которые уже закончились. Вызывается под mtx.
func (l *rateLimiter) sweep(now time.Time) {
	for ip, win := range l.windows {
		if now.After(win.resetAt) {
			delete(l.windows, ip)
		}
	}
	l.nextSweep = now.Add(l.window)
}

// RateLimit ограничивает число запросов с одного IP в минуту
func RateLimit(rpm int) func(http.Handler) http.Handler {
	limiter := newRateLimiter(rpm, time.Minute, time.Now())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)
			now := time.Now()

			remaining, resetAt, ok := limiter.allow(ip, now)
			if !ok {
				logger.Warn("HTTP: Превышен лимит запросов",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", ip))

				w.Header().Set("Retry-After", strconv.Itoa(int(resetAt.Sub(now).Seconds())+1))
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders выставляет стандартные заголовки безопасности
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'self'; object-src 'none'")
		next.ServeHTTP(w, r)
	})
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type errorBody struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": errorBody{Message: message}})
}
