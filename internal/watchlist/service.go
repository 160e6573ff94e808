// watchlist — вотчлист с оптимистичными локальными правками.
//
// Дисциплина спекулятивного обновления выражена явно: правка применяется к
// локальному снимку, уходит запрос, при неудаче снимок откатывается к
// последнему подтверждённому состоянию. Никаких неявных "UI сам разберётся".
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/gateway"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

// ErrUnknownProduct — правка по id, которого нет в локальном снимке.
var ErrUnknownProduct = errors.New("product not in watchlist")

// Gateway — операции шлюза, нужные вотчлисту.
//
//go:generate mockgen -source=service.go -destination=mocks/mock_watchlist.go -package=mocks
type Gateway interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, rawURL string, targetPrice float64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProfileSource — доступ к кэшированному профилю для гейта лимита тарифа.
type ProfileSource interface {
	Profile() *models.Account
}

// Service держит последний подтверждённый снимок вотчлиста.
//
// Мьютекс удерживается на время сетевого вызова: правки сериализуются,
// что делает откат к подтверждённому снимку однозначным.
type Service struct {
	gw      Gateway
	profile ProfileSource

	mu    sync.Mutex
	items []models.Product
}

// New создаёт сервис с пустым снимком; первый Refresh наполняет его.
func New(gw Gateway, profile ProfileSource) *Service {
	return &Service{gw: gw, profile: profile}
}

// Items возвращает копию текущего снимка.
func (s *Service) Items() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, len(s.items))
	copy(out, s.items)

	return out
}

// Refresh перечитывает вотчлист с бэкенда; снимок заменяется целиком.
func (s *Service) Refresh(ctx context.Context) ([]models.Product, error) {
	const op = "watchlist.Refresh"

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.gw.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.items = items

	out := make([]models.Product, len(items))
	copy(out, items)

	return out, nil
}

// Add ставит товар на отслеживание.
//
// Лимит тарифа проверяется локально до выхода в сеть. Конфликт дубликата
// пробрасывается как есть: gateway.AlreadyTrackingError несёт id
// существующей записи, если бэкенд его вернул; клиент не восстанавливает
// id эвристиками по URL.
func (s *Service) Add(ctx context.Context, rawURL string, targetPrice float64) (*models.Product, error) {
	const op = "watchlist.Add"

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc := s.profile.Profile(); acc != nil && acc.MaxProducts > 0 {
		// Первичен серверный счётчик профиля: до первого Refresh локальный
		// снимок пуст и сам по себе лимит не поймает.
		used := acc.CurrentCount
		if len(s.items) > used {
			used = len(s.items)
		}

		if used >= acc.MaxProducts {
			return nil, fmt.Errorf("%s: %w", op, gateway.ErrLimitReached)
		}
	}

	p, err := s.gw.AddProduct(ctx, rawURL, targetPrice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.items = append(s.items, *p)

	return p, nil
}

// Remove снимает товар с отслеживания (оптимистично).
// ErrNotFound от бэкенда — запись уже удалена — считается успехом.
func (s *Service) Remove(ctx context.Context, id string) error {
	const op = "watchlist.Remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrUnknownProduct)
	}

	backup := s.snapshot()
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	if err := s.gw.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil
		}

		s.items = backup

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetActive переключает отслеживание (active/paused) оптимистично.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	const op = "watchlist.SetActive"

	patch := models.UpdateProductRequest{Active: &active}

	if err := s.applyOptimistic(ctx, id, patch, func(p *models.Product) {
		p.Active = active
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetTargetPrice применяет целевую цену оптимистично.
func (s *Service) SetTargetPrice(ctx context.Context, id string, price float64) error {
	const op = "watchlist.SetTargetPrice"

	if price < 0 {
		return fmt.Errorf("%s: %w", op, gateway.ErrInvalidArgument)
	}

	patch := models.UpdateProductRequest{TargetPrice: &price}

	if err := s.applyOptimistic(ctx, id, patch, func(p *models.Product) {
		p.TargetPrice = price
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// applyOptimistic — общий каркас спекулятивной правки: локальная мутация,
// запрос, при неудаче откат к подтверждённому снимку, при успехе замена
// записи серверной копией.
func (s *Service) applyOptimistic(ctx context.Context, id string, patch models.UpdateProductRequest, mutate func(*models.Product)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrUnknownProduct
	}

	backup := s.snapshot()
	mutate(&s.items[idx])

	updated, err := s.gw.UpdateProduct(ctx, id, patch)
	if err != nil {
		s.items = backup
		return err
	}

	s.items[idx] = *updated

	return nil
}

func (s *Service) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}

	return -1
}

func (s *Service) snapshot() []models.Product {
	out := make([]models.Product, len(s.items))
	copy(out, s.items)

	return out
}
