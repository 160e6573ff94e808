// linking — оркестратор сверки идентичностей аккаунта.
//
// Машина состояний поверх шлюза аутентификации:
//
//	initial → telegram-pending → {telegram-signup-needs-email | link-existing} → synced
//	initial → (email signup | email login) → synced
//
// Ключевая развилка merge-vs-create: email, введённый на шаге добавления,
// может принадлежать чужому аккаунту — тогда вместо AddEmail (создание
// нового credential) поток обязан уйти в LinkTelegram (слияние с
// существующим аккаунтом), иначе данные email-аккаунта будут потеряны.
//
// Конкурентная модель: в полёте не больше одного мутирующего идентичность
// вызова (ErrBusy), неудача не меняет состояние, поздний ответ после
// Logout отбрасывается.
package linking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/gateway"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/identity"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/pkg/redact"
)

// State — состояние машины линковки.
type State string

const (
	// StateInitial — до первой аутентификации (или после logout).
	StateInitial State = "initial"
	// StateTelegramPending — авто-аутентификация по initData в полёте.
	StateTelegramPending State = "telegram-pending"
	// StateNeedsEmail — telegram-only аккаунт ждёт email+пароль.
	StateNeedsEmail State = "telegram-signup-needs-email"
	// StateLinkExisting — введённый email занят; ждём пароль существующего аккаунта.
	StateLinkExisting State = "link-existing"
	// StateSynced — терминальное: аккаунт аутентифицирован, линковать нечего.
	StateSynced State = "synced"
)

var (
	// ErrBusy — мутирующий вызов уже в полёте; контрол сабмита выключен.
	ErrBusy = errors.New("identity call in flight")
	// ErrInvalidState — операция не разрешена из текущего состояния.
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// Gateway — операции шлюза, нужные оркестратору.
// Интерфейс объявлен на стороне потребителя; реализуется gateway.Client.
//
//go:generate mockgen -source=orchestrator.go -destination=mocks/mock_linking.go -package=mocks
type Gateway interface {
	AuthenticateWithTelegram(ctx context.Context, initData string) (*models.Account, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	AddEmail(ctx context.Context, email, password string) (*models.Account, error)
	LinkTelegram(ctx context.Context, email, password string) (*models.Account, error)
	SignUp(ctx context.Context, email, password, fullName string) (*models.Account, error)
	LogIn(ctx context.Context, email, password string) (*models.Account, error)
}

// Sessions — срез Session Store, нужный оркестратору.
type Sessions interface {
	AutoAuthDisabled() bool
	DisableAutoAuth() error
	Clear() error
}

// Orchestrator — единственный активный экземпляр машины на приложение.
type Orchestrator struct {
	gw       Gateway
	sessions Sessions
	log      *slog.Logger

	mu           sync.Mutex
	state        State
	pendingEmail string
	autoTried    bool
	busy         bool
	gen          uint64 // инкремент на Logout: поздние ответы отбрасываются
}

// New создаёт оркестратор в состоянии initial.
func New(gw Gateway, sessions Sessions, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		gw:       gw,
		sessions: sessions,
		log:      logger,
		state:    StateInitial,
	}
}

// State возвращает текущее состояние машины.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// PendingEmail — email, удержанный при переходе в link-existing.
func (o *Orchestrator) PendingEmail() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.pendingEmail
}

// Start — одноразовая авто-аутентификация по Telegram initData при монтировании.
//
// Повторные вызовы (ре-рендер) не порождают новых попыток. Отсутствие
// Telegram-контекста (пустой initData) и взведённое после logout подавление —
// ожидаемые условия, не ошибки: машина остаётся в initial без единого
// сетевого вызова.
func (o *Orchestrator) Start(ctx context.Context, initData string) (State, error) {
	const op = "linking.Start"

	o.mu.Lock()

	if o.autoTried || o.state != StateInitial {
		st := o.state
		o.mu.Unlock()
		return st, nil
	}
	o.autoTried = true

	if o.sessions.AutoAuthDisabled() {
		o.mu.Unlock()
		o.log.Debug("auto_auth_suppressed")
		return StateInitial, nil
	}

	if initData == "" {
		o.mu.Unlock()
		o.log.Debug("no_telegram_context")
		return StateInitial, nil
	}

	if o.busy {
		o.mu.Unlock()
		return StateInitial, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	o.busy = true
	o.state = StateTelegramPending
	gen := o.gen
	o.mu.Unlock()

	acc, err := o.gw.AuthenticateWithTelegram(ctx, initData)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false

	if gen != o.gen {
		// Машина была сброшена, пока ответ летел: не пишем ничего.
		return o.state, nil
	}

	if err != nil {
		o.state = StateInitial
		return o.state, fmt.Errorf("%s: %w", op, err)
	}

	if identity.LinkingRequirement(acc) == identity.RequirementEmail {
		o.state = StateNeedsEmail
	} else {
		o.state = StateSynced
	}

	o.log.Info("telegram_auth_ok", slog.String("state", string(o.state)))

	return o.state, nil
}

// SubmitEmail — шаг telegram-signup-needs-email: пользователь ввёл email+пароль.
//
// Сначала проба существования адреса. Занятый email — не тупик и не ошибка:
// машина уходит в link-existing, удержав введённый адрес, и НЕ вызывает
// AddEmail. Свободный email добавляется сразу.
//
// Гонка check-then-act: адрес мог быть занят между CheckEmailExists и
// AddEmail. Конфликт от самого AddEmail трактуется так же, как занятый
// адрес на пробе: переход в link-existing, не ошибка.
func (o *Orchestrator) SubmitEmail(ctx context.Context, email, password string) (State, error) {
	const op = "linking.SubmitEmail"

	gen, err := o.begin(StateNeedsEmail)
	if err != nil {
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	exists, err := o.gw.CheckEmailExists(ctx, email)
	if err != nil {
		o.finish(gen, func() {}) // состояние не тронуто
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		o.finish(gen, func() {
			o.state = StateLinkExisting
			o.pendingEmail = email
		})
		o.log.Info("email_taken_switch_to_link", slog.String("email", redact.Email(email)))

		return o.State(), nil
	}

	acc, err := o.gw.AddEmail(ctx, email, password)
	if err != nil {
		if errors.Is(err, gateway.ErrEmailTaken) {
			o.finish(gen, func() {
				o.state = StateLinkExisting
				o.pendingEmail = email
			})
			o.log.Info("email_taken_switch_to_link", slog.String("email", redact.Email(email)))

			return o.State(), nil
		}

		o.finish(gen, func() {})
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	o.finish(gen, func() {
		o.state = StateSynced
		o.pendingEmail = ""
	})
	o.log.Info("email_added", slog.String("account_id", acc.ID))

	return o.State(), nil
}

// SubmitLinkPassword — шаг link-existing: пароль существующего email-аккаунта.
// Неверный пароль оставляет машину в link-existing, сессия не тронута.
func (o *Orchestrator) SubmitLinkPassword(ctx context.Context, password string) (State, error) {
	const op = "linking.SubmitLinkPassword"

	gen, err := o.begin(StateLinkExisting)
	if err != nil {
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	acc, err := o.gw.LinkTelegram(ctx, o.PendingEmail(), password)
	if err != nil {
		o.finish(gen, func() {})
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	o.finish(gen, func() {
		o.state = StateSynced
		o.pendingEmail = ""
	})
	o.log.Info("telegram_linked", slog.String("account_id", acc.ID))

	return o.State(), nil
}

// UseDifferentEmail — альтернативный выход из link-existing:
// вернуться к вводу адреса с очищенными полями.
func (o *Orchestrator) UseDifferentEmail() (State, error) {
	const op = "linking.UseDifferentEmail"

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return o.state, fmt.Errorf("%s: %w", op, ErrBusy)
	}

	if o.state != StateLinkExisting {
		return o.state, fmt.Errorf("%s: %w", op, ErrInvalidState)
	}

	o.state = StateNeedsEmail
	o.pendingEmail = ""

	return o.state, nil
}

// SignUp — независимая от Telegram ветка регистрации по email.
func (o *Orchestrator) SignUp(ctx context.Context, email, password, fullName string) (State, error) {
	const op = "linking.SignUp"

	gen, err := o.begin(StateInitial)
	if err != nil {
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	if _, err := o.gw.SignUp(ctx, email, password, fullName); err != nil {
		o.finish(gen, func() {})
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	o.finish(gen, func() { o.state = StateSynced })

	return o.State(), nil
}

// LogIn — независимая от Telegram ветка входа по email.
func (o *Orchestrator) LogIn(ctx context.Context, email, password string) (State, error) {
	const op = "linking.LogIn"

	gen, err := o.begin(StateInitial)
	if err != nil {
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	if _, err := o.gw.LogIn(ctx, email, password); err != nil {
		o.finish(gen, func() {})
		return o.State(), fmt.Errorf("%s: %w", op, err)
	}

	o.finish(gen, func() { o.state = StateSynced })

	return o.State(), nil
}

// Logout сбрасывает машину в initial, чистит сессию и взводит одноразовое
// подавление автологина: немедленное переоткрытие приложения не должно
// молча залогинить пользователя обратно через Telegram.
func (o *Orchestrator) Logout() error {
	const op = "linking.Logout"

	o.mu.Lock()
	o.state = StateInitial
	o.pendingEmail = ""
	o.autoTried = false
	o.gen++ // поздние ответы в полёте будут отброшены
	o.mu.Unlock()

	if err := o.sessions.Clear(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := o.sessions.DisableAutoAuth(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// begin резервирует единственный слот мутирующего вызова из состояния want.
func (o *Orchestrator) begin(want State) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.busy {
		return 0, ErrBusy
	}

	if o.state != want {
		return 0, ErrInvalidState
	}

	o.busy = true

	return o.gen, nil
}

// finish снимает busy и применяет переход, если машина не была сброшена
// за время полёта ответа.
func (o *Orchestrator) finish(gen uint64, apply func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.busy = false

	if gen != o.gen {
		return
	}

	apply()
}
