package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"

	"github.com/google/uuid"
)

// OrderPublisher delivers an encoded order to the fulfilment side.
type OrderPublisher interface {
	Publish(ctx context.Context, messageId string, body []byte) error
}

// LogPublisher writes orders to the log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, messageId string, body []byte) error {
	logx.Info().Str("orderId", messageId).RawJSON("order", body).Msg("order received")
	return nil
}

type OrderService struct {
	cs        *CartService
	publisher OrderPublisher
	now       func() time.Time
}

func NewOrderService(cartService *CartService, publisher OrderPublisher) *OrderService {
	return &OrderService{
		cs:        cartService,
		publisher: publisher,
		now:       time.Now,
	}
}

// Checkout snapshots the cart into an order, publishes it and empties the
// cart. The cart is left intact when publishing fails.
func (ors *OrderService) Checkout(ctx context.Context, cartSessionId string, req models.CheckoutRequest) (entities.Order, error) {
	customer := entities.Customer{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Notes:   strings.TrimSpace(req.Notes),
	}
	if customer.Name == "" || customer.Phone == "" || customer.Address == "" {
		return entities.Order{}, fmt.Errorf("%w: name, phone and address are required", models.ErrBadRequest)
	}

	var order entities.Order
	err := ors.cs.Store(ctx, cartSessionId).Take(ctx, func(state entities.CartState) error {
		if len(state.Items) == 0 {
			return fmt.Errorf("%w: cart is empty", models.ErrBadRequest)
		}
		order = newOrder(customer, state, ors.now())
		body, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}
		if err := ors.publisher.Publish(ctx, order.Id, body); err != nil {
			logx.Error().Err(err).Str("orderId", order.Id).Msg("failed to publish order")
			return models.New(err, http.StatusServiceUnavailable, "order could not be placed, please retry")
		}
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	logx.Info().Str("orderId", order.Id).Str("cartSessionId", cartSessionId).
		Int("items", order.ItemCount).Str("total", order.Total.String()).Msg("order placed")
	return order, nil
}

func newOrder(customer entities.Customer, state entities.CartState, now time.Time) entities.Order {
	order := entities.Order{
		Id:        uuid.NewString(),
		Customer:  customer,
		Lines:     make([]entities.OrderLine, 0, len(state.Items)),
		Total:     state.Total,
		ItemCount: state.ItemCount,
		CreatedAt: now.UTC(),
	}
	for _, item := range state.Items {
		order.Lines = append(order.Lines, entities.OrderLine{
			ProductId: item.Product.Id,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			Subtotal:  item.Subtotal(),
		})
	}
	return order
}
