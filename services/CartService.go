package services

import (
	"context"
	"sync"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"

	"github.com/google/uuid"
)

// CartService keeps one CartStore per cart session in memory, restoring it
// from the cart repository on first use.
type CartService struct {
	pr      repository.ProductRepository
	cr      repository.CartRepository
	idleTTL time.Duration

	mu     sync.Mutex
	stores map[string]*CartStore
}

func NewCartService(productRepo repository.ProductRepository, cartRepo repository.CartRepository, idleTTL time.Duration) *CartService {
	return &CartService{
		pr:      productRepo,
		cr:      cartRepo,
		idleTTL: idleTTL,
		stores:  make(map[string]*CartStore),
	}
}

func (cs *CartService) CreateCartSession() string {
	return uuid.NewString()
}

// Store returns the live store of a session. Restore I/O runs outside the
// registry lock; if two callers race, the first registered store wins. A
// cached store is marked accessed under the registry lock, so Sweep never
// evicts a store that was just handed out.
func (cs *CartService) Store(ctx context.Context, cartSessionId string) *CartStore {
	cs.mu.Lock()
	s, ok := cs.stores[cartSessionId]
	if ok {
		s.touch()
	}
	cs.mu.Unlock()
	if ok {
		return s
	}

	restored := RestoreCartStore(ctx, cartSessionId, cs.cr)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if s, ok := cs.stores[cartSessionId]; ok {
		s.touch()
		return s
	}
	cs.stores[cartSessionId] = restored
	return restored
}

// AddCartItem looks the product up in the catalog and adds it. Unknown and
// unavailable products are rejected here; the cart itself accepts anything.
func (cs *CartService) AddCartItem(ctx context.Context, cartSessionId string, req models.CartItemRequest) (entities.CartState, error) {
	p, ex, err := cs.pr.GetProductById(ctx, req.ProductId)
	if err != nil {
		return entities.CartState{}, err
	}
	if !ex {
		logx.Debug().Str("productId", req.ProductId).Msg("add to cart: product does not exist")
		return entities.CartState{}, models.ErrNotFound
	}
	if !p.InStock {
		logx.Debug().Str("productId", req.ProductId).Msg("add to cart: product out of stock")
		return entities.CartState{}, models.ErrNotAllowed
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return cs.Store(ctx, cartSessionId).AddItem(ctx, p, quantity), nil
}

func (cs *CartService) RemoveCartItem(ctx context.Context, cartSessionId, productId string) entities.CartState {
	return cs.Store(ctx, cartSessionId).RemoveItem(ctx, productId)
}

func (cs *CartService) UpdateQuantity(ctx context.Context, cartSessionId, productId string, quantity int) entities.CartState {
	return cs.Store(ctx, cartSessionId).UpdateQuantity(ctx, productId, quantity)
}

func (cs *CartService) ClearCart(ctx context.Context, cartSessionId string) entities.CartState {
	return cs.Store(ctx, cartSessionId).ClearCart(ctx)
}

func (cs *CartService) GetCart(ctx context.Context, cartSessionId string) entities.CartState {
	return cs.Store(ctx, cartSessionId).State()
}

// Sweep drops stores idle since before now minus the idle TTL. Their durable
// records are untouched and will be restored on the next request.
func (cs *CartService) Sweep(now time.Time) int {
	if cs.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-cs.idleTTL)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	evicted := 0
	for id, s := range cs.stores {
		if s.idleSince().Before(cutoff) {
			delete(cs.stores, id)
			evicted++
		}
	}
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (cs *CartService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := cs.Sweep(now); n > 0 {
				logx.Debug().Int("evicted", n).Msg("evicted idle cart stores")
			}
		}
	}
}
