package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"

	"github.com/google/uuid"
)

// LowStockThreshold is the stock quantity at or below which an in-stock
// product is reported on the dashboard.
const LowStockThreshold = 10

type ProductService struct {
	pr repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{pr: productRepo}
}

func (ps *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]entities.Product, error) {
	return ps.pr.List(ctx, filter)
}

// GetProduct resolves a product by slug, falling back to its id.
func (ps *ProductService) GetProduct(ctx context.Context, slugOrId string) (entities.Product, error) {
	p, ex, err := ps.pr.GetProductBySlug(ctx, slugOrId)
	if err != nil {
		return p, err
	}
	if !ex {
		p, ex, err = ps.pr.GetProductById(ctx, slugOrId)
		if err != nil {
			return p, err
		}
	}
	if !ex {
		return p, models.ErrNotFound
	}
	return p, nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}
	p = normalizeProduct(p)
	if err := ValidateProduct(p); err != nil {
		return p, err
	}
	if _, ex, err := ps.pr.GetProductById(ctx, p.Id); err != nil {
		return p, err
	} else if ex {
		return p, fmt.Errorf("%w: product %s already exists", models.ErrNotAllowed, p.Id)
	}
	if err := ps.ensureSlugFree(ctx, p); err != nil {
		return p, err
	}
	if err := ps.pr.CreateProduct(ctx, p); err != nil {
		return p, err
	}
	logx.Info().Str("productId", p.Id).Str("slug", p.Slug).Msg("product created")
	return p, nil
}

func (ps *ProductService) UpdateProduct(ctx context.Context, p entities.Product) (entities.Product, error) {
	p = normalizeProduct(p)
	if err := ValidateProduct(p); err != nil {
		return p, err
	}
	if _, ex, err := ps.pr.GetProductById(ctx, p.Id); err != nil {
		return p, err
	} else if !ex {
		return p, models.ErrNotFound
	}
	if err := ps.ensureSlugFree(ctx, p); err != nil {
		return p, err
	}
	if _, err := ps.pr.UpdateProduct(ctx, p); err != nil {
		return p, err
	}
	logx.Info().Str("productId", p.Id).Msg("product updated")
	return p, nil
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := ps.pr.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return models.ErrNotFound
	}
	logx.Info().Str("productId", id).Msg("product deleted")
	return nil
}

// Dashboard summarizes the catalog for the admin overview.
func (ps *ProductService) Dashboard(ctx context.Context) (entities.ProductStats, error) {
	prods, err := ps.pr.List(ctx, models.ProductFilter{})
	if err != nil {
		return entities.ProductStats{}, err
	}
	stats := entities.ProductStats{
		Total:      len(prods),
		LowStock:   []string{},
		Categories: make(map[string]int),
	}
	for _, p := range prods {
		stats.Categories[p.Category]++
		if !p.InStock {
			stats.OutOfStock++
			continue
		}
		stats.InStock++
		if p.StockQuantity <= LowStockThreshold {
			stats.LowStock = append(stats.LowStock, p.Id)
		}
	}
	sort.Strings(stats.LowStock)
	return stats, nil
}

// Categories lists the catalog categories in name order.
func (ps *ProductService) Categories(ctx context.Context) ([]entities.CategorySummary, error) {
	prods, err := ps.pr.List(ctx, models.ProductFilter{})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int)
	cats := []entities.CategorySummary{}
	for _, p := range prods {
		i, ok := byName[p.Category]
		if !ok {
			i = len(cats)
			cats = append(cats, entities.CategorySummary{Name: p.Category})
			byName[p.Category] = i
		}
		cats[i].Products++
		if p.InStock {
			cats[i].InStock++
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (ps *ProductService) ensureSlugFree(ctx context.Context, p entities.Product) error {
	other, ex, err := ps.pr.GetProductBySlug(ctx, p.Slug)
	if err != nil {
		return err
	}
	if ex && other.Id != p.Id {
		return fmt.Errorf("%w: slug %q is taken by %s", models.ErrNotAllowed, p.Slug, other.Id)
	}
	return nil
}

func normalizeProduct(p entities.Product) entities.Product {
	p.Name.En = strings.TrimSpace(p.Name.En)
	p.Name.Ar = strings.TrimSpace(p.Name.Ar)
	p.Category = strings.TrimSpace(p.Category)
	if p.Slug == "" {
		p.Slug = entities.Slugify(p.Name.En)
	} else {
		p.Slug = entities.Slugify(p.Slug)
	}
	if p.Slug == "" {
		p.Slug = p.Id
	}
	return p
}

// ValidateProduct enforces the catalog invariants.
func ValidateProduct(p entities.Product) error {
	switch {
	case p.Id == "":
		return fmt.Errorf("%w: id is required", models.ErrBadRequest)
	case p.Name.En == "" || p.Name.Ar == "":
		return fmt.Errorf("%w: name is required in both languages", models.ErrBadRequest)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", models.ErrBadRequest)
	case p.OriginalPrice.Valid && !p.OriginalPrice.Decimal.GreaterThan(p.Price):
		return fmt.Errorf("%w: original price must be greater than price", models.ErrBadRequest)
	case p.StockQuantity < 0:
		return fmt.Errorf("%w: stock quantity must not be negative", models.ErrBadRequest)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: rating must be between 0 and 5", models.ErrBadRequest)
	case p.ReviewCount < 0:
		return fmt.Errorf("%w: review count must not be negative", models.ErrBadRequest)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", models.ErrBadRequest)
	}
	return nil
}
