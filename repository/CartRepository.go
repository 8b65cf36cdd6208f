package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
)

type CartRepository interface {
	// LoadCart returns the persisted items of a cart session. A missing
	// record is an empty cart, not an error.
	LoadCart(ctx context.Context, cartSessionId string) ([]entities.CartItem, error)
	SaveCart(ctx context.Context, cartSessionId string, items []entities.CartItem) error
	DeleteCart(ctx context.Context, cartSessionId string) error
}

type CartRepo struct {
	records Records
	ttl     time.Duration
}

func NewCartRepository(records Records, ttl time.Duration) (*CartRepo, error) {
	if records == nil {
		return nil, errors.New("records must be non-nil")
	}
	return &CartRepo{records: records, ttl: ttl}, nil
}

func cartKey(cartSessionId string) string {
	return fmt.Sprintf("cart:%s:items", cartSessionId)
}

func (c *CartRepo) LoadCart(ctx context.Context, cartSessionId string) ([]entities.CartItem, error) {
	val, err := c.records.Get(ctx, cartKey(cartSessionId))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return []entities.CartItem{}, nil
		}
		return nil, err
	}
	return DecodeCartItems(val)
}

func (c *CartRepo) SaveCart(ctx context.Context, cartSessionId string, items []entities.CartItem) error {
	if items == nil {
		items = []entities.CartItem{}
	}
	jsonData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return c.records.Set(ctx, cartKey(cartSessionId), jsonData, c.ttl)
}

func (c *CartRepo) DeleteCart(ctx context.Context, cartSessionId string) error {
	return c.records.Delete(ctx, cartKey(cartSessionId))
}

// DecodeCartItems parses a persisted item list and rejects any list that
// breaks the cart invariants.
func DecodeCartItems(data []byte) ([]entities.CartItem, error) {
	var items []entities.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrCorruptRecord, err)
	}
	seen := make(map[string]struct{}, len(items))
	count := 0
	for i, item := range items {
		if item.Product.Id == "" {
			return nil, fmt.Errorf("%w: item %d has no product id", models.ErrCorruptRecord, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", models.ErrCorruptRecord, i, item.Quantity)
		}
		if count > math.MaxInt-item.Quantity {
			return nil, fmt.Errorf("%w: item count overflows", models.ErrCorruptRecord)
		}
		count += item.Quantity
		if _, dup := seen[item.Product.Id]; dup {
			return nil, fmt.Errorf("%w: product %s appears twice", models.ErrCorruptRecord, item.Product.Id)
		}
		seen[item.Product.Id] = struct{}{}
	}
	if items == nil {
		items = []entities.CartItem{}
	}
	return items, nil
}

var _ CartRepository = (*CartRepo)(nil)
