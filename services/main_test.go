package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	logx.Init(logx.LoggerOpts{Environment: core.Testing})
	os.Exit(m.Run())
}

func product(id, price string) entities.Product {
	return entities.Product{
		Id:       id,
		Slug:     id,
		Name:     entities.Localized{En: "Product " + id, Ar: "منتج " + id},
		Price:    decimal.RequireFromString(price),
		Category: "gallons",
		InStock:  true,
	}
}

// failingRecords fails every call with err.
type failingRecords struct {
	err error
}

func (f failingRecords) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingRecords) Set(context.Context, string, []byte, time.Duration) error {
	return f.err
}
func (f failingRecords) Delete(context.Context, string) error { return f.err }

var errStorageDown = errors.New("storage down")

func memoryCartRepo(t *testing.T) (*repository.CartRepo, *repository.MemoryRecords) {
	t.Helper()
	records := repository.NewMemoryRecords()
	repo, err := repository.NewCartRepository(records, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return repo, records
}

func memorySessionRepo(t *testing.T) (*repository.AdminSessionRepo, *repository.MemoryRecords) {
	t.Helper()
	records := repository.NewMemoryRecords()
	repo, err := repository.NewAdminSessionRepository(records, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return repo, records
}

// fakeProducts is a map-backed ProductRepository.
type fakeProducts struct {
	mu    sync.Mutex
	prods map[string]entities.Product
	err   error
}

func newFakeProducts(prods ...entities.Product) *fakeProducts {
	f := &fakeProducts{prods: make(map[string]entities.Product)}
	for _, p := range prods {
		f.prods[p.Id] = p
	}
	return f
}

func (f *fakeProducts) Migrate(context.Context) error { return nil }

func (f *fakeProducts) List(_ context.Context, filter models.ProductFilter) ([]entities.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []entities.Product{}
	for _, p := range f.prods {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) GetProductById(_ context.Context, id string) (entities.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return entities.Product{}, false, f.err
	}
	p, ok := f.prods[id]
	return p, ok, nil
}

func (f *fakeProducts) GetProductBySlug(_ context.Context, slug string) (entities.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return entities.Product{}, false, f.err
	}
	for _, p := range f.prods {
		if p.Slug == slug {
			return p, true, nil
		}
	}
	return entities.Product{}, false, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, p entities.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prods[p.Id] = p
	return nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, p entities.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prods[p.Id]; !ok {
		return false, nil
	}
	f.prods[p.Id] = p
	return true, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prods[id]; !ok {
		return false, nil
	}
	delete(f.prods, id)
	return true, nil
}

func (f *fakeProducts) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prods), nil
}

var _ repository.ProductRepository = (*fakeProducts)(nil)
