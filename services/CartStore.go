package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"
	"github.com/shopspring/decimal"
)

// CartStore owns the items of one cart session. Operations are serialized and
// never fail: bad input is a no-op and persistence is best-effort.
type CartStore struct {
	mu         sync.Mutex
	id         string
	items      []entities.CartItem
	repo       repository.CartRepository
	now        func() time.Time
	lastAccess time.Time
}

// RestoreCartStore builds the store for cartSessionId from its persisted
// record. A corrupt record is discarded; an unreadable one is ignored. Both
// start the store empty.
func RestoreCartStore(ctx context.Context, cartSessionId string, repo repository.CartRepository) *CartStore {
	s := &CartStore{
		id:    cartSessionId,
		items: ClearItems(),
		repo:  repo,
		now:   time.Now,
	}
	s.lastAccess = s.now()

	items, err := repo.LoadCart(ctx, cartSessionId)
	switch {
	case err == nil:
		s.items = items
	case errors.Is(err, models.ErrCorruptRecord):
		logx.Warn().Err(err).Str("cartSessionId", cartSessionId).Msg("discarding corrupt cart record")
		if err := repo.DeleteCart(ctx, cartSessionId); err != nil {
			logx.Error().Err(err).Str("cartSessionId", cartSessionId).Msg("failed to delete corrupt cart record")
		}
	default:
		logx.Error().Err(err).Str("cartSessionId", cartSessionId).Msg("failed to restore cart, starting empty")
	}
	return s
}

func (s *CartStore) Id() string {
	return s.id
}

func (s *CartStore) AddItem(ctx context.Context, product entities.Product, quantity int) entities.CartState {
	return s.apply(ctx, func(items []entities.CartItem) []entities.CartItem {
		return AddItem(items, product, quantity)
	})
}

func (s *CartStore) RemoveItem(ctx context.Context, productId string) entities.CartState {
	return s.apply(ctx, func(items []entities.CartItem) []entities.CartItem {
		return RemoveItem(items, productId)
	})
}

func (s *CartStore) UpdateQuantity(ctx context.Context, productId string, quantity int) entities.CartState {
	return s.apply(ctx, func(items []entities.CartItem) []entities.CartItem {
		return UpdateQuantity(items, productId, quantity)
	})
}

func (s *CartStore) ClearCart(ctx context.Context) entities.CartState {
	return s.apply(ctx, func([]entities.CartItem) []entities.CartItem {
		return ClearItems()
	})
}

// State returns the items with their derived total and count.
func (s *CartStore) State() entities.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = s.now()
	return entities.NewCartState(s.items)
}

func (s *CartStore) Items() []entities.CartItem {
	return s.State().Items
}

func (s *CartStore) Total() decimal.Decimal {
	return s.State().Total
}

func (s *CartStore) ItemCount() int {
	return s.State().ItemCount
}

// Take hands the current state to consume and empties the cart only if
// consume succeeds. The store stays locked meanwhile, so nothing added
// concurrently is lost.
func (s *CartStore) Take(ctx context.Context, consume func(entities.CartState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = s.now()

	if err := consume(entities.NewCartState(s.items)); err != nil {
		return err
	}
	s.items = ClearItems()
	if err := s.repo.SaveCart(ctx, s.id, s.items); err != nil {
		logx.Error().Err(err).Str("cartSessionId", s.id).Msg("failed to persist emptied cart")
	}
	return nil
}

func (s *CartStore) touch() {
	s.mu.Lock()
	s.lastAccess = s.now()
	s.mu.Unlock()
}

func (s *CartStore) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// apply runs a transition and mirrors the result. The write happens under the
// lock so the persisted record follows mutation order. A failed write leaves
// the in-memory items in place.
func (s *CartStore) apply(ctx context.Context, transition func([]entities.CartItem) []entities.CartItem) entities.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = transition(s.items)
	s.lastAccess = s.now()

	if err := s.repo.SaveCart(ctx, s.id, s.items); err != nil {
		logx.Error().Err(err).Str("cartSessionId", s.id).Int("items", len(s.items)).Msg("failed to persist cart")
	}
	return entities.NewCartState(s.items)
}
