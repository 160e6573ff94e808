package linking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/gateway"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/linking/mocks"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

func newOrch(t *testing.T) (*Orchestrator, *mocks.MockGateway, *mocks.MockSessions, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	sess := mocks.NewMockSessions(ctrl)
	return New(gw, sess, nil), gw, sess, ctrl
}

func telegramOnly() *models.Account {
	return &models.Account{ID: "u-1", HasTelegram: true}
}

func fullySynced() *models.Account {
	return &models.Account{ID: "u-1", HasTelegram: true, HasEmail: true, Email: "a@x.com"}
}

func TestStart_NoInitData_StaysInitialSilently(t *testing.T) {
	t.Parallel()

	o, _, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)

	// Открытие вне Telegram — ожидаемое условие, не ошибка и ноль вызовов шлюза.
	st, err := o.Start(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, StateInitial, st)
}

func TestStart_TelegramOnly_GoesToNeedsEmail(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)

	st, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	require.Equal(t, StateNeedsEmail, st)
}

func TestStart_FullAccount_GoesStraightToSynced(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(fullySynced(), nil)

	st, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	require.Equal(t, StateSynced, st)
}

func TestStart_OneShot_NotRepeatedOnRerender(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	// Ровно один вызов шлюза на сколько угодно Start.
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil).Times(1)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	st, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	require.Equal(t, StateNeedsEmail, st)
}

func TestStart_Failure_BackToInitial(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "stale").Return(nil, errors.New("expired"))

	st, err := o.Start(context.Background(), "stale")
	require.Error(t, err)
	require.Equal(t, StateInitial, st)
	require.Equal(t, StateInitial, o.State())
}

// Свойство 5: свободный email добавляется ровно одним AddEmail, машина — в synced.
func TestSubmitEmail_FreshEmail_AddsAndSyncs(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)
	gw.EXPECT().CheckEmailExists(gomock.Any(), "new@x.com").Return(false, nil)
	gw.EXPECT().AddEmail(gomock.Any(), "new@x.com", "Secret123").
		Return(&models.Account{ID: "u-1", HasTelegram: true, HasEmail: true}, nil).
		Times(1)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	st, err := o.SubmitEmail(context.Background(), "new@x.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, StateSynced, st)
}

// Свойство 4/6: занятый email переводит в link-existing без попытки AddEmail.
func TestSubmitEmail_TakenEmail_SwitchesToLinkExisting(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)
	gw.EXPECT().CheckEmailExists(gomock.Any(), "existing@x.com").Return(true, nil)
	// AddEmail не ожидается вовсе: ctrl.Finish() упадёт при любом вызове.

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	st, err := o.SubmitEmail(context.Background(), "existing@x.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, StateLinkExisting, st)
	require.Equal(t, "existing@x.com", o.PendingEmail())
}

// Гонка check-then-act: проба сказала "свободен", но AddEmail упёрся в
// конфликт. Исход тот же, что у занятого адреса на пробе: link-existing.
func TestSubmitEmail_AddEmailConflict_SwitchesToLinkExisting(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)
	gw.EXPECT().CheckEmailExists(gomock.Any(), "raced@x.com").Return(false, nil)
	gw.EXPECT().AddEmail(gomock.Any(), "raced@x.com", "Secret123").
		Return(nil, gateway.ErrEmailTaken)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	st, err := o.SubmitEmail(context.Background(), "raced@x.com", "Secret123")
	require.NoError(t, err)
	require.Equal(t, StateLinkExisting, st)
	require.Equal(t, "raced@x.com", o.PendingEmail())

	// Из link-existing поток продолжается паролем существующего аккаунта.
	gw.EXPECT().LinkTelegram(gomock.Any(), "raced@x.com", "Correct123").
		Return(fullySynced(), nil)

	st, err = o.SubmitLinkPassword(context.Background(), "Correct123")
	require.NoError(t, err)
	require.Equal(t, StateSynced, st)
}

// Свойство 6: верный пароль мержит аккаунты, неверный оставляет link-existing.
func TestSubmitLinkPassword(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)
	gw.EXPECT().CheckEmailExists(gomock.Any(), "existing@x.com").Return(true, nil)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	_, err = o.SubmitEmail(context.Background(), "existing@x.com", "ignored-pass")
	require.NoError(t, err)

	// Неверный пароль: ошибка наружу, состояние и удержанный email целы.
	gw.EXPECT().LinkTelegram(gomock.Any(), "existing@x.com", "wrong").
		Return(nil, errors.New("invalid credentials"))

	st, err := o.SubmitLinkPassword(context.Background(), "wrong")
	require.Error(t, err)
	require.Equal(t, StateLinkExisting, st)
	require.Equal(t, "existing@x.com", o.PendingEmail())

	// Верный пароль: слияние и synced.
	gw.EXPECT().LinkTelegram(gomock.Any(), "existing@x.com", "correct").
		Return(fullySynced(), nil)

	st, err = o.SubmitLinkPassword(context.Background(), "correct")
	require.NoError(t, err)
	require.Equal(t, StateSynced, st)
	require.Empty(t, o.PendingEmail())
}

func TestUseDifferentEmail(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)
	gw.EXPECT().CheckEmailExists(gomock.Any(), "existing@x.com").Return(true, nil)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	_, err = o.SubmitEmail(context.Background(), "existing@x.com", "pw-ignored")
	require.NoError(t, err)

	st, err := o.UseDifferentEmail()
	require.NoError(t, err)
	require.Equal(t, StateNeedsEmail, st)
	require.Empty(t, o.PendingEmail())

	// Повторный вызов вне link-existing запрещён.
	_, err = o.UseDifferentEmail()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitEmail_WrongState(t *testing.T) {
	t.Parallel()

	o, _, _, ctrl := newOrch(t)
	defer ctrl.Finish()

	_, err := o.SubmitEmail(context.Background(), "a@x.com", "Secret123")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestEmailBranch_SignUpAndLogIn(t *testing.T) {
	t.Parallel()

	o, gw, _, ctrl := newOrch(t)
	defer ctrl.Finish()

	gw.EXPECT().SignUp(gomock.Any(), "a@x.com", "Secret123", "Alice").
		Return(&models.Account{ID: "u-2", HasEmail: true}, nil)

	st, err := o.SignUp(context.Background(), "a@x.com", "Secret123", "Alice")
	require.NoError(t, err)
	require.Equal(t, StateSynced, st)

	// Повторный вход из synced запрещён.
	_, err = o.LogIn(context.Background(), "a@x.com", "Secret123")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestLogIn_Failure_StaysInitial(t *testing.T) {
	t.Parallel()

	o, gw, _, ctrl := newOrch(t)
	defer ctrl.Finish()

	gw.EXPECT().LogIn(gomock.Any(), "a@x.com", "wrong-pass").
		Return(nil, errors.New("invalid credentials"))

	st, err := o.LogIn(context.Background(), "a@x.com", "wrong-pass")
	require.Error(t, err)
	require.Equal(t, StateInitial, st)
}

// Свойство 7: после logout переоткрытие не делает ни одного вызова шлюза.
func TestLogout_SuppressesAutoAuthOnce(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(fullySynced(), nil)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	require.Equal(t, StateSynced, o.State())

	sess.EXPECT().Clear().Return(nil)
	sess.EXPECT().DisableAutoAuth().Return(nil)
	require.NoError(t, o.Logout())
	require.Equal(t, StateInitial, o.State())

	// «Переоткрытие»: подавление взведено, шлюз не трогается.
	sess.EXPECT().AutoAuthDisabled().Return(true)

	st, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)
	require.Equal(t, StateInitial, st)
}

// §5: второй мутирующий вызов, пока первый в полёте, получает ErrBusy.
func TestBusy_SerializesIdentityCalls(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().CheckEmailExists(gomock.Any(), "slow@x.com").
		DoAndReturn(func(context.Context, string) (bool, error) {
			close(entered)
			<-release
			return false, nil
		})
	gw.EXPECT().AddEmail(gomock.Any(), "slow@x.com", "Secret123").
		Return(fullySynced(), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = o.SubmitEmail(context.Background(), "slow@x.com", "Secret123")
	}()

	<-entered

	_, err = o.SubmitEmail(context.Background(), "other@x.com", "Secret123")
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
	require.Equal(t, StateSynced, o.State())
}

// §5: ответ, прилетевший после сброса машины, отбрасывается.
func TestLateResponse_AfterLogout_Discarded(t *testing.T) {
	t.Parallel()

	o, gw, sess, ctrl := newOrch(t)
	defer ctrl.Finish()

	sess.EXPECT().AutoAuthDisabled().Return(false)
	gw.EXPECT().AuthenticateWithTelegram(gomock.Any(), "init-data").Return(telegramOnly(), nil)

	_, err := o.Start(context.Background(), "init-data")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().CheckEmailExists(gomock.Any(), "new@x.com").
		DoAndReturn(func(context.Context, string) (bool, error) {
			close(entered)
			<-release
			return false, nil
		})
	gw.EXPECT().AddEmail(gomock.Any(), "new@x.com", "Secret123").
		Return(fullySynced(), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.SubmitEmail(context.Background(), "new@x.com", "Secret123")
	}()

	<-entered

	sess.EXPECT().Clear().Return(nil)
	sess.EXPECT().DisableAutoAuth().Return(nil)
	require.NoError(t, o.Logout())

	close(release)
	<-done

	// Поздний успех не перезаписал сброс.
	require.Equal(t, StateInitial, o.State())
}
