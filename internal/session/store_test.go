package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

// fakePersister — in-memory реализация Persister для юнитов.
type fakePersister struct {
	token       string
	profileJSON []byte
	hasSession  bool
	autoFlag    bool

	saveCalls  int
	clearCalls int
}

func (f *fakePersister) SaveSession(token string, profileJSON []byte) error {
	f.token, f.profileJSON, f.hasSession = token, profileJSON, true
	f.saveCalls++
	return nil
}

func (f *fakePersister) LoadSession() (string, []byte, bool, error) {
	return f.token, f.profileJSON, f.hasSession, nil
}

func (f *fakePersister) ClearSession() error {
	f.token, f.profileJSON, f.hasSession = "", nil, false
	f.clearCalls++
	return nil
}

func (f *fakePersister) SaveProfile(profileJSON []byte) error {
	f.profileJSON = profileJSON
	return nil
}

func (f *fakePersister) DisableAutoAuth() error {
	f.autoFlag = true
	return nil
}

func (f *fakePersister) ConsumeAutoAuthDisabled() (bool, error) {
	v := f.autoFlag
	f.autoFlag = false
	return v, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("unit-secret"))
	require.NoError(t, err)
	return signed
}

func profile() *models.Account {
	return &models.Account{ID: "u-1", HasTelegram: true}
}

func TestStore_SetGetClear(t *testing.T) {
	t.Parallel()

	s := New()

	_, ok := s.Get()
	require.False(t, ok)

	tok := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, s.Set(tok, profile()))

	sess, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, tok, sess.Token)
	require.Equal(t, "u-1", sess.Profile.ID)
	require.Equal(t, tok, s.Token())

	require.NoError(t, s.Clear())
	_, ok = s.Get()
	require.False(t, ok)
	require.Empty(t, s.Token())

	// Повторная очистка пустого хранилища — no-op, не ошибка.
	require.NoError(t, s.Clear())
}

func TestStore_Set_OverwritesPrevious(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Set(signedToken(t, time.Now().Add(time.Hour)), profile()))

	second := signedToken(t, time.Now().Add(2*time.Hour))
	require.NoError(t, s.Set(second, &models.Account{ID: "u-2", HasEmail: true}))

	sess, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, second, sess.Token)
	require.Equal(t, "u-2", sess.Profile.ID)
}

func TestStore_Get_ExpiredTokenSelfClears(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Set(signedToken(t, time.Now().Add(-time.Minute)), profile()))

	_, ok := s.Get()
	require.False(t, ok)

	// Самоочистка: повторное чтение тоже пусто.
	_, ok = s.Get()
	require.False(t, ok)
}

func TestStore_Get_OpaqueTokenNotExpired(t *testing.T) {
	t.Parallel()

	// Непарсимый (opaque) токен не считаем истёкшим — решает бэкенд.
	s := New()
	require.NoError(t, s.Set("opaque-bearer-token", profile()))

	sess, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, "opaque-bearer-token", sess.Token)
}

func TestStore_UpdateProfile(t *testing.T) {
	t.Parallel()

	s := New()
	tok := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, s.Set(tok, profile()))

	fresh := &models.Account{ID: "u-1", HasTelegram: true, HasEmail: true}
	require.NoError(t, s.UpdateProfile(fresh))

	sess, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, tok, sess.Token) // токен не тронут
	require.True(t, sess.Profile.HasEmail)
}

func TestStore_UpdateProfile_NoSession(t *testing.T) {
	t.Parallel()

	s := New()
	require.ErrorIs(t, s.UpdateProfile(profile()), ErrNoSession)
}

func TestOpen_RestoresPersistedSession(t *testing.T) {
	t.Parallel()

	p := &fakePersister{}
	first, err := Open(p)
	require.NoError(t, err)

	tok := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, first.Set(tok, profile()))
	require.Equal(t, 1, p.saveCalls)

	second, err := Open(p)
	require.NoError(t, err)

	sess, ok := second.Get()
	require.True(t, ok)
	require.Equal(t, tok, sess.Token)
	require.Equal(t, "u-1", sess.Profile.ID)
}

func TestOpen_ExpiredPersistedToken_Dropped(t *testing.T) {
	t.Parallel()

	profileJSON, err := json.Marshal(profile())
	require.NoError(t, err)

	p := &fakePersister{
		token:       signedToken(t, time.Now().Add(-time.Hour)),
		profileJSON: profileJSON,
		hasSession:  true,
	}

	s, err := Open(p)
	require.NoError(t, err)

	_, ok := s.Get()
	require.False(t, ok)
	require.Equal(t, 1, p.clearCalls)
}

func TestOpen_CorruptedProfile_Dropped(t *testing.T) {
	t.Parallel()

	p := &fakePersister{
		token:       signedToken(t, time.Now().Add(time.Hour)),
		profileJSON: []byte("{broken"),
		hasSession:  true,
	}

	s, err := Open(p)
	require.NoError(t, err)

	_, ok := s.Get()
	require.False(t, ok)
	require.Equal(t, 1, p.clearCalls)
}

func TestAutoAuthDisabled_OneShot(t *testing.T) {
	t.Parallel()

	p := &fakePersister{}

	first, err := Open(p)
	require.NoError(t, err)
	require.False(t, first.AutoAuthDisabled())

	// Явный logout взводит флаг на следующий запуск.
	require.NoError(t, first.DisableAutoAuth())

	second, err := Open(p)
	require.NoError(t, err)
	require.True(t, second.AutoAuthDisabled())

	// Флаг потреблён: третий запуск снова с автологином.
	third, err := Open(p)
	require.NoError(t, err)
	require.False(t, third.AutoAuthDisabled())
}
