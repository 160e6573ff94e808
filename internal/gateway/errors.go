// Ошибки шлюза: стабильные sentinel-значения для errors.Is на границе
// оркестратора плюс маппинг конверта ошибок бэкенда в эти значения.
//
// Конверт ошибок бэкенда:
//
//	{"error": {"code": "<машиночитаемый код>", "message": "...", "product_id": "..."}}
//
// Маппинг ведётся в первую очередь по code и только потом по HTTP-статусу:
// один и тот же статус (401) несёт и доменные отказы (invalid_credentials),
// и отклонение bearer-токена, а реагировать на них нужно по-разному.
package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInitData — подписанный Telegram payload не прошёл проверку.
	// Бэкенд: 400 invalid_init_data.
	ErrInvalidInitData = errors.New("invalid telegram init data")

	// ErrExpiredInitData — auth_date в initData старше допустимого окна.
	// Бэкенд: 400 expired_init_data.
	ErrExpiredInitData = errors.New("telegram init data expired")

	// ErrMissingUserID — в initData нет идентификатора пользователя.
	// Бэкенд: 400 missing_user_id.
	ErrMissingUserID = errors.New("telegram user id missing")

	// ErrEmailTaken — email уже принадлежит другому аккаунту.
	// Не фатальна: ветка merge-vs-create в оркестраторе. Бэкенд: 409 email_taken.
	ErrEmailTaken = errors.New("email already taken")

	// ErrWeakPassword — пароль короче 8 символов; отсекается на клиенте
	// до выхода в сеть, серверный вариант маппится сюда же (400 weak_password).
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidEmail — email не парсится; отсекается на клиенте.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidCredentials — пара email/пароль неверна. Показывается
	// пользователю как есть, состояние сессии не трогается.
	// Бэкенд: 401 invalid_credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound — email-аккаунт для линковки не существует.
	// Бэкенд: 404 account_not_found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCurrentPassword — текущий пароль при смене не совпал.
	// Бэкенд: 400 invalid_current_password.
	ErrInvalidCurrentPassword = errors.New("current password is invalid")

	// ErrUnauthorized — bearer-токен отклонён; сессия инвалидирована
	// (Store очищен) и не переиспользуется. Бэкенд: 401 unauthenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyTracking — товар уже в вотчлисте. Не тупик: конфликт несёт
	// id существующей записи, если бэкенд его вернул. Бэкенд: 409 already_tracking.
	ErrAlreadyTracking = errors.New("product already tracked")

	// ErrLimitReached — лимит тарифа исчерпан; ловится и на клиенте
	// (current_count >= max_products) без выхода в сеть. Бэкенд: 409 limit_reached.
	ErrLimitReached = errors.New("product limit reached")

	// ErrInvalidArgument — запрос отвергнут валидацией (клиентской или серверной).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — сущность не существует (например, товар уже удалён).
	ErrNotFound = errors.New("not found")

	// ErrUnavailable — транспортная ошибка: бэкенд недоступен или таймаут.
	// Не ретраится автоматически; пользователь перезапускает действие сам.
	ErrUnavailable = errors.New("backend unavailable")
)

// AlreadyTrackingError — конфликт дубликата с указанием существующей записи.
//
// errors.Is(err, ErrAlreadyTracking) остаётся истинным; ProductID пуст,
// если бэкенд не сообщил id конфликтующего товара.
type AlreadyTrackingError struct {
	ProductID string
}

func (e *AlreadyTrackingError) Error() string {
	if e.ProductID == "" {
		return ErrAlreadyTracking.Error()
	}

	return fmt.Sprintf("%s (id=%s)", ErrAlreadyTracking.Error(), e.ProductID)
}

func (e *AlreadyTrackingError) Is(target error) bool {
	return target == ErrAlreadyTracking
}

// apiError — тело error-конверта бэкенда.
type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// mapAPIError переводит статус+код бэкенда в sentinel-ошибку пакета.
//
// Второй результат сообщает, отклонён ли сам bearer-токен: только в этом
// случае вызывающая сторона очищает Session Store (доменные отказы вроде
// invalid_credentials сессию не инвалидируют, даже если пришли с 401).
func mapAPIError(status int, e apiError) (error, bool) {
	switch e.Code {
	case "invalid_init_data":
		return ErrInvalidInitData, false
	case "expired_init_data":
		return ErrExpiredInitData, false
	case "missing_user_id":
		return ErrMissingUserID, false
	case "email_taken", "already_exists":
		return ErrEmailTaken, false
	case "weak_password":
		return ErrWeakPassword, false
	case "invalid_credentials":
		return ErrInvalidCredentials, false
	case "account_not_found":
		return ErrAccountNotFound, false
	case "invalid_current_password":
		return ErrInvalidCurrentPassword, false
	case "already_tracking":
		return &AlreadyTrackingError{ProductID: e.ProductID}, false
	case "limit_reached":
		return ErrLimitReached, false
	case "unauthenticated":
		return ErrUnauthorized, true
	}

	// Код неизвестен или отсутствует — маппим по HTTP-статусу.
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidArgument, false
	case http.StatusUnauthorized:
		return ErrUnauthorized, true
	case http.StatusNotFound:
		return ErrNotFound, false
	case http.StatusConflict:
		return ErrEmailTaken, false
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrUnavailable, false
	default:
		return fmt.Errorf("unexpected backend status %d", status), false
	}
}
