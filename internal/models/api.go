// Входные/выходные модели REST-вызовов, зеркалят контракты бэкенда.
package models

// TelegramAuthRequest — бутстрап через подписанный Telegram initData.
// Уходит на POST /auth/signup (эндпойнт перегружен формой payload).
type TelegramAuthRequest struct {
	TelegramInitData string `json:"telegram_init_data"`
}

// SignupRequest — регистрация по email+паролю (тот же POST /auth/signup).
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

// AddEmailRequest — привязка нового email к telegram-only аккаунту.
type AddEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LinkTelegramRequest — привязка текущей Telegram-идентичности
// к уже существующему email-аккаунту (направление обратное AddEmail).
type LinkTelegramRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — единый успешный ответ всех мутирующих auth-вызовов.
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	User        *Account `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ProfilePatch — частичное обновление профиля (PATCH /auth/profile).
// nil-поле означает «не трогать».
type ProfilePatch struct {
	FullName *string `json:"full_name,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// ProfileEnvelope — конверт GET /auth/profile: {status, data}.
type ProfileEnvelope struct {
	Status string   `json:"status"`
	Data   *Account `json:"data"`
}

type AddProductRequest struct {
	URL         string  `json:"url"`
	TargetPrice float64 `json:"target_price,omitempty"`
}

type UpdateProductRequest struct {
	Active      *bool    `json:"active,omitempty"`
	TargetPrice *float64 `json:"target_price,omitempty"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
}

// OkResponse — подтверждение без полезной нагрузки (смена пароля, удаление).
type OkResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
