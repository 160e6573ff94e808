// session — клиентская сессия: bearer-токен плюс кэшированный снимок аккаунта.
//
// Store держит ровно одну активную сессию или ни одной. Мутации выполняет
// только поток управления успешного вызова шлюза; Store защищён мьютексом и
// безопасен для конкурентного чтения.
//
// Персистентность (SQLite-файл устройства) подключается через интерфейс
// Persister; без него Store живёт в памяти процесса.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

// Session — эфемерное подтверждение аутентификации.
type Session struct {
	Token   string
	Profile *models.Account
}

// Persister — долговременное локальное хранилище состояния сессии.
//
// Контракт ключей: jwt_token, user (JSON-профиль), auto_auth_disabled.
type Persister interface {
	// SaveSession перезаписывает сохранённую сессию целиком.
	SaveSession(token string, profileJSON []byte) error
	// LoadSession возвращает сохранённую сессию; ok=false — сессии нет.
	LoadSession() (token string, profileJSON []byte, ok bool, err error)
	// ClearSession удаляет сохранённую сессию; отсутствие сессии — не ошибка.
	ClearSession() error
	// SaveProfile обновляет только ключ user, не трогая токен.
	SaveProfile(profileJSON []byte) error
	// DisableAutoAuth взводит one-shot флаг подавления автологина.
	DisableAutoAuth() error
	// ConsumeAutoAuthDisabled читает флаг и тут же сбрасывает его:
	// подавление действует ровно на один запуск после явного logout.
	ConsumeAutoAuthDisabled() (bool, error)
}

// Store — in-process хранилище сессии.
type Store struct {
	mu      sync.Mutex
	token   string
	profile *models.Account

	persist Persister // может быть nil

	// autoAuthDisabled — значение one-shot флага, снятое при Open.
	autoAuthDisabled bool
}

// New создаёт пустой Store без персистентности.
func New() *Store {
	return &Store{}
}

// Open создаёт Store поверх Persister и поднимает сохранённую сессию.
//
// Истёкший по exp токен при загрузке отбрасывается вместе с записью на диске.
// Флаг auto_auth_disabled потребляется здесь же (one-shot).
func Open(p Persister) (*Store, error) {
	const op = "session.Open"

	s := &Store{persist: p}
	if p == nil {
		return s, nil
	}

	disabled, err := p.ConsumeAutoAuthDisabled()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.autoAuthDisabled = disabled

	token, profileJSON, ok, err := p.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return s, nil
	}

	if tokenExpired(token) {
		if err := p.ClearSession(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return s, nil
	}

	var acc models.Account
	if err := json.Unmarshal(profileJSON, &acc); err != nil {
		// Повреждённый профиль лечим как отсутствие сессии.
		if cerr := p.ClearSession(); cerr != nil {
			return nil, fmt.Errorf("%s: %w", op, cerr)
		}

		return s, nil
	}

	s.token = token
	s.profile = &acc

	return s, nil
}

// Set перезаписывает активную сессию; последующие чтения видят её сразу.
func (s *Store) Set(token string, profile *models.Account) error {
	const op = "session.Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.profile = profile

	if s.persist == nil {
		return nil
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.persist.SaveSession(token, profileJSON); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Get возвращает активную сессию. Истёкший по exp токен считается
// отсутствующим: хранилище самоочищается.
func (s *Store) Get() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return Session{}, false
	}

	if tokenExpired(s.token) {
		s.clearLocked()
		return Session{}, false
	}

	return Session{Token: s.token, Profile: s.profile}, true
}

// Token возвращает bearer-токен активной сессии ("" — сессии нет).
func (s *Store) Token() string {
	sess, ok := s.Get()
	if !ok {
		return ""
	}

	return sess.Token
}

// Profile возвращает кэшированный снимок аккаунта (nil — сессии нет).
func (s *Store) Profile() *models.Account {
	sess, ok := s.Get()
	if !ok {
		return nil
	}

	return sess.Profile
}

// Clear удаляет токен и профиль. Идемпотентна: очистка пустого Store — no-op.
func (s *Store) Clear() error {
	const op = "session.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clearLocked(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) clearLocked() error {
	s.token = ""
	s.profile = nil

	if s.persist == nil {
		return nil
	}

	return s.persist.ClearSession()
}

// UpdateProfile заменяет кэшированный профиль, не трогая токен.
// Используется после мутирующих профиль вызовов, чтобы классификатор
// видел свежие флаги без повторного логина.
func (s *Store) UpdateProfile(profile *models.Account) error {
	const op = "session.UpdateProfile"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	s.profile = profile

	if s.persist == nil {
		return nil
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.persist.SaveProfile(profileJSON); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DisableAutoAuth взводит подавление автологина на следующий запуск.
// Вызывается при явном logout.
func (s *Store) DisableAutoAuth() error {
	const op = "session.DisableAutoAuth"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoAuthDisabled = true

	if s.persist == nil {
		return nil
	}

	if err := s.persist.DisableAutoAuth(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AutoAuthDisabled сообщает, подавлен ли автологин в этом запуске.
func (s *Store) AutoAuthDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.autoAuthDisabled
}

// ErrNoSession — операция требует активной сессии.
var ErrNoSession = errors.New("no active session")

// tokenExpired проверяет exp токена без проверки подписи: подпись — зона
// ответственности бэкенда, клиенту достаточно не предъявлять заведомо
// истёкший токен. Непарсимый или безэкспайрный токен истёкшим не считается.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
