// identity — чистый классификатор состояния линковки аккаунта.
//
// Пакет не ходит в сеть и не держит состояния: все функции тотальны
// над четырьмя комбинациями флагов HasEmail/HasTelegram и никогда не паникуют.
// Гейтинг по факту аутентификации — забота вызывающей стороны.
package identity

import "github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"

// Requirement — что требуется аккаунту для полной синхронизации.
type Requirement string

const (
	// RequirementNone — линковать нечего (полная синхронизация либо нет аккаунта).
	RequirementNone Requirement = "none"
	// RequirementEmail — telegram-only аккаунту нужен email-пароль.
	RequirementEmail Requirement = "needs-email"
	// RequirementTelegram — email-only аккаунту нужна Telegram-идентичность.
	RequirementTelegram Requirement = "needs-telegram"
)

// IsFullySynced сообщает, привязаны ли оба типа учётных данных.
func IsFullySynced(a *models.Account) bool {
	return a != nil && a.HasEmail && a.HasTelegram
}

// IsTelegramOnly — только Telegram-идентичность, без пароля.
func IsTelegramOnly(a *models.Account) bool {
	return a != nil && a.HasTelegram && !a.HasEmail
}

// IsEmailOnly — только email-пароль, без Telegram.
func IsEmailOnly(a *models.Account) bool {
	return a != nil && a.HasEmail && !a.HasTelegram
}

// LinkingRequirement вычисляет требование линковки по флагам аккаунта.
//
// nil-аккаунт даёт RequirementNone («нечего линковать», а не ошибка).
// Комбинация без обоих флагов недостижима по инварианту модели данных,
// но на всякий случай тоже даёт RequirementNone.
func LinkingRequirement(a *models.Account) Requirement {
	switch {
	case a == nil:
		return RequirementNone
	case a.HasEmail && a.HasTelegram:
		return RequirementNone
	case a.HasTelegram:
		return RequirementEmail
	case a.HasEmail:
		return RequirementTelegram
	default:
		return RequirementNone
	}
}
