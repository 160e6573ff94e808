// models — модели данных клиента PriceTraq.
//
// Account и производные структуры зеркалят JSON-контракты бэкенда;
// клиент относится к ним как к read-only снимкам (владелец данных — бэкенд).
package models

import "time"

// Account — долговременная запись идентичности на бэкенде.
//
// Инвариант: у аккаунта всегда привязан хотя бы один тип учётных данных
// (HasEmail || HasTelegram). Состояние с обоими false недостижимо при
// корректном бэкенде, но клиентская логика обязана его переживать без паники.
type Account struct {
	ID               string `json:"id"`
	Email            string `json:"email,omitempty"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	PhotoURL         string `json:"photo_url,omitempty"`

	HasEmail    bool `json:"has_email"`
	HasTelegram bool `json:"has_telegram"`

	// Атрибуты тарифа; к логике линковки отношения не имеют.
	Plan         string `json:"plan,omitempty"`
	MaxProducts  int    `json:"max_products"`
	CurrentCount int    `json:"current_count"`
}

// Product — отслеживаемый товар из вотчлиста.
type Product struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	CurrentPrice float64   `json:"current_price"`
	TargetPrice  float64   `json:"target_price"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	CheckedAt    time.Time `json:"checked_at,omitzero"`
}

// Notification — уведомление о цене; клиент только отображает.
type Notification struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
