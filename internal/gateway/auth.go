package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

// AuthenticateWithTelegram — бутстрап по подписанному Telegram initData.
//
// Уходит на перегруженный POST /auth/signup (форма payload отличает его от
// email-регистрации). Успех пишет сессию; для нового пользователя бэкенд
// создаёт telegram-only аккаунт, для существующего — возвращает его.
func (c *Client) AuthenticateWithTelegram(ctx context.Context, initData string) (*models.Account, error) {
	const op = "gateway.AuthenticateWithTelegram"

	if initData == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidInitData)
	}

	var out models.AuthResponse
	in := models.TelegramAuthRequest{TelegramInitData: initData}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Set(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.User, nil
}

// SignUp — регистрация нового email-аккаунта (ветка без Telegram).
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	const op = "gateway.SignUp"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out models.AuthResponse
	in := models.SignupRequest{Email: normEmail, Password: password, FullName: fullName}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Set(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.User, nil
}

// LogIn — вход по email+паролю.
//
// Непарсимый email схлопывается в ErrInvalidCredentials: форма логина не
// должна подсказывать, существует ли адрес.
func (c *Client) LogIn(ctx context.Context, email, password string) (*models.Account, error) {
	const op = "gateway.LogIn"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var out models.AuthResponse
	in := models.LoginRequest{Email: normEmail, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Set(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.User, nil
}

// CheckEmailExists — проба существования адреса перед AddEmail:
// решает, создаём новый credential или мержим с существующим аккаунтом.
func (c *Client) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	const op = "gateway.CheckEmailExists"

	normEmail, err := validateEmail(email)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var out models.CheckEmailResponse
	in := models.CheckEmailRequest{Email: normEmail}
	if err := c.do(ctx, http.MethodPost, "/auth/check-email", in, &out); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return out.Exists, nil
}

// AddEmail привязывает свежий, нигде не занятый email к telegram-only
// аккаунту текущей сессии. Направление противоположно LinkTelegram:
// если адрес оказался занят — вызывающий обязан уйти в LinkTelegram,
// иначе merge превратится в потерю данных.
func (c *Client) AddEmail(ctx context.Context, email, password string) (*models.Account, error) {
	const op = "gateway.AddEmail"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out models.AuthResponse
	in := models.AddEmailRequest{Email: normEmail, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/add-email", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Set(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.User, nil
}

// LinkTelegram привязывает текущую Telegram-идентичность к существующему
// email-аккаунту, аутентифицированному паролем. Успех возвращает слитый
// аккаунт и новую сессию; неверный пароль сессию не трогает.
func (c *Client) LinkTelegram(ctx context.Context, email, password string) (*models.Account, error) {
	const op = "gateway.LinkTelegram"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var out models.AuthResponse
	in := models.LinkTelegramRequest{Email: normEmail, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/link-telegram", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Set(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.User, nil
}

// Profile перечитывает текущий аккаунт и освежает кэш сессии,
// чтобы классификатор видел актуальные флаги линковки.
func (c *Client) Profile(ctx context.Context) (*models.Account, error) {
	const op = "gateway.Profile"

	var out models.ProfileEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.UpdateProfile(out.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Data, nil
}

// UpdateProfile — частичное обновление display-атрибутов аккаунта.
func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.Account, error) {
	const op = "gateway.UpdateProfile"

	var out models.ProfileEnvelope
	if err := c.do(ctx, http.MethodPatch, "/auth/profile", patch, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.UpdateProfile(out.Data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Data, nil
}

// ChangePassword меняет пароль; оба значения сверяются на сервере.
// Слишком короткий новый пароль отсекается до выхода в сеть.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	const op = "gateway.ChangePassword"

	if current == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validatePassword(next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	in := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := c.do(ctx, http.MethodPost, "/auth/change-password", in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteAccount удаляет аккаунт на бэкенде и инвалидирует сессию.
func (c *Client) DeleteAccount(ctx context.Context) error {
	const op = "gateway.DeleteAccount"

	if err := c.do(ctx, http.MethodPost, "/auth/delete-account", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.sessions.Clear(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
