package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/models"
)

// ListProducts возвращает вотчлист текущего аккаунта.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "gateway.ListProducts"

	var out models.ProductListResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Products, nil
}

// AddProduct ставит товар на отслеживание.
//
// Дубликат приходит как AlreadyTrackingError с id существующей записи,
// если бэкенд его сообщил; клиент не восстанавливает id сам.
func (c *Client) AddProduct(ctx context.Context, rawURL string, targetPrice float64) (*models.Product, error) {
	const op = "gateway.AddProduct"

	if err := validateProductURL(rawURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if targetPrice < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Product
	in := models.AddProductRequest{URL: rawURL, TargetPrice: targetPrice}
	if err := c.do(ctx, http.MethodPost, "/products", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// UpdateProduct — частичное обновление записи (active и/или target_price).
func (c *Client) UpdateProduct(ctx context.Context, id string, patch models.UpdateProductRequest) (*models.Product, error) {
	const op = "gateway.UpdateProduct"

	if id == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	var out models.Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// DeleteProduct снимает товар с отслеживания.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "gateway.DeleteProduct"

	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListNotifications возвращает уведомления о ценах; клиент их только
// отображает, оценка алертов целиком на бэкенде.
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	const op = "gateway.ListNotifications"

	var out models.NotificationListResponse
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Notifications, nil
}

// validateProductURL — клиентская проверка формы URL до выхода в сеть.
func validateProductURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return ErrInvalidArgument
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidArgument
	}

	return nil
}
