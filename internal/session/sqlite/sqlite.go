// sqlite — персистентность сессии в локальном SQLite-файле устройства.
//
// Хранилище ключ-значение с тремя ключами: jwt_token, user, auto_auth_disabled.
// Токен запечатывается XChaCha20-Poly1305 (см. internal/session/seal);
// профиль и флаг хранятся открытым текстом — это display-данные.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/session"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/session/seal"
)

const (
	keyToken            = "jwt_token"
	keyProfile          = "user"
	keyAutoAuthDisabled = "auto_auth_disabled"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Persister реализует session.Persister поверх SQLite.
type Persister struct {
	db     *sql.DB
	sealer *seal.Sealer // может быть nil — тогда токен хранится как есть
}

var _ session.Persister = (*Persister)(nil)

// Open открывает (или создаёт) файл хранилища и применяет схему.
func Open(path string, sealer *seal.Sealer) (*Persister, error) {
	const op = "session.sqlite.Open"

	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: empty storage path", op)
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: schema: %w", op, err)
	}

	return &Persister{db: db, sealer: sealer}, nil
}

// Close закрывает файл хранилища.
func (p *Persister) Close() error {
	return p.db.Close()
}

// SaveSession перезаписывает jwt_token и user одной транзакцией.
func (p *Persister) SaveSession(token string, profileJSON []byte) error {
	const op = "session.sqlite.SaveSession"

	stored := token
	if p.sealer != nil {
		sealed, err := p.sealer.Seal(token)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		stored = sealed
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsert(tx, keyToken, stored); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := upsert(tx, keyProfile, string(profileJSON)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LoadSession читает сохранённую сессию.
//
// Повреждённый шифртекст токена (смена ключа, битый файл) трактуется как
// отсутствие сессии: запись вычищается, пользователь логинится заново.
func (p *Persister) LoadSession() (string, []byte, bool, error) {
	const op = "session.sqlite.LoadSession"

	stored, ok, err := p.get(keyToken)
	if err != nil {
		return "", nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return "", nil, false, nil
	}

	token := stored
	if p.sealer != nil {
		token, err = p.sealer.Open(stored)
		if err != nil {
			if errors.Is(err, seal.ErrCorrupted) {
				if cerr := p.ClearSession(); cerr != nil {
					return "", nil, false, fmt.Errorf("%s: %w", op, cerr)
				}

				return "", nil, false, nil
			}

			return "", nil, false, fmt.Errorf("%s: %w", op, err)
		}
	}

	profileJSON, ok, err := p.get(keyProfile)
	if err != nil {
		return "", nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return "", nil, false, nil
	}

	return token, []byte(profileJSON), true, nil
}

// ClearSession удаляет jwt_token и user; отсутствие записей — не ошибка.
func (p *Persister) ClearSession() error {
	const op = "session.sqlite.ClearSession"

	if _, err := p.db.Exec(
		`DELETE FROM session_kv WHERE key IN (?, ?);`, keyToken, keyProfile,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveProfile обновляет только ключ user.
func (p *Persister) SaveProfile(profileJSON []byte) error {
	const op = "session.sqlite.SaveProfile"

	if err := upsert(p.db, keyProfile, string(profileJSON)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DisableAutoAuth взводит one-shot флаг подавления автологина.
func (p *Persister) DisableAutoAuth() error {
	const op = "session.sqlite.DisableAutoAuth"

	if err := upsert(p.db, keyAutoAuthDisabled, "1"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeAutoAuthDisabled читает флаг и сбрасывает его в той же транзакции.
func (p *Persister) ConsumeAutoAuthDisabled() (bool, error) {
	const op = "session.sqlite.ConsumeAutoAuthDisabled"

	tx, err := p.db.Begin()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var value string
	err = tx.QueryRow(`SELECT value FROM session_kv WHERE key = ?;`, keyAutoAuthDisabled).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(`DELETE FROM session_kv WHERE key = ?;`, keyAutoAuthDisabled); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return value == "1", nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsert(e execer, key, value string) error {
	_, err := e.Exec(
		`INSERT INTO session_kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value;`,
		key, value,
	)

	return err
}

func (p *Persister) get(key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}
