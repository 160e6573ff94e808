// redact — маскирование чувствительных значений в логах.
//
// Клиент оперирует паролями, bearer-токенами и подписанным Telegram initData;
// ни одно из этих значений не должно попадать в лог целиком.
package redact

import "strings"

// Email маскирует локальную часть адреса, домен оставляет читаемым.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }

// InitData — подписанный Telegram payload содержит user-данные и hash,
// в лог попадает только длина.
func InitData(s string) string {
	if s == "" {
		return ""
	}

	return "[REDACTED_INIT_DATA]"
}
