// gateway — REST-клиент бэкенда PriceTraq.
//
// Все операции — одиночные сетевые вызовы без автоматических ретраев и
// idempotency-ключей: каждый вызов инициируется пользователем и повторяется
// повторным нажатием. Таймаут транспорта один на всех (по умолчанию 30s).
//
// Сессия пишется только при полном успехе мутирующего вызова; отклонённый
// bearer (401 unauthenticated) немедленно очищает Session Store через
// интерфейс SessionSink.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/pkg/log"
)

// DefaultTimeout — общий таймаут исходящего вызова, если не задан конфигом.
const DefaultTimeout = 30 * time.Second

const minPasswordLen = 8

// SessionSink — то, что шлюз знает о Session Store.
// Реализуется session.Store; интерфейс объявлен на стороне потребителя.
type SessionSink interface {
	// Token возвращает bearer активной сессии ("" — сессии нет).
	Token() string
	// Set перезаписывает сессию после успешного auth-вызова.
	Set(token string, profile *models.Account) error
	// UpdateProfile обновляет кэшированный профиль, не трогая токен.
	UpdateProfile(profile *models.Account) error
	// Clear инвалидирует сессию (отклонённый bearer, удаление аккаунта).
	Clear() error
}

// Options — параметры сборки клиента.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// Client — HTTP-клиент бэкенда.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	sessions  SessionSink
	log       *slog.Logger
}

// New создаёт клиент бэкенда.
func New(sink SessionSink, opts Options) (*Client, error) {
	const op = "gateway.New"

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}

	if sink == nil {
		return nil, fmt.Errorf("%s: nil session sink", op)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: timeout},
		sessions:  sink,
		log:       logger,
	}, nil
}

// do выполняет один REST-вызов: сериализация, заголовки, маппинг ошибок.
//
// Поведение:
//   - генерирует X-Request-Id (uuid) и обогащает им логгер вызова;
//   - добавляет Authorization: Bearer <token>, если сессия есть;
//   - пишет одну финальную запись уровня Info: msg="http", status, dur;
//     payload и учётные данные в лог не попадают;
//   - статус >= 400 превращает в sentinel-ошибку пакета; отклонённый bearer
//     дополнительно очищает Session Store.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := fmt.Sprintf("gateway.%s %s", method, path)

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	rid := uuid.NewString()

	lg := log.From(ctx)
	if lg == slog.Default() {
		lg = c.log
	}
	ctx = log.WithRequestID(log.Into(ctx, lg), rid)
	lg = log.From(ctx).With(
		slog.String("method", method),
		slog.String("path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("X-Request-Id", rid)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		lg.Info("http",
			slog.String("status", "transport_error"),
			slog.Duration("dur", time.Since(start)),
		)

		return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	lg.Info("http",
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env) // пустое/битое тело — маппинг по статусу

		mapped, bearerRejected := mapAPIError(resp.StatusCode, env.Error)
		if bearerRejected {
			if cerr := c.sessions.Clear(); cerr != nil {
				lg.Warn("session_clear_failed", slog.String("err", cerr.Error()))
			}
		}

		return fmt.Errorf("%s: %w", op, mapped)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	return nil
}

// validateEmail проверяет базовый формат email и нормализует регистр.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(email), nil
}

// validatePassword — клиентская предпроверка: только минимальная длина.
// Полная политика сложности — на бэкенде.
func validatePassword(pw string) error {
	if len([]rune(pw)) < minPasswordLen {
		return ErrWeakPassword
	}

	return nil
}
