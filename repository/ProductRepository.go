package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
)

type ProductRepository interface {
	Migrate(ctx context.Context) error
	List(ctx context.Context, filter models.ProductFilter) ([]entities.Product, error)
	GetProductById(ctx context.Context, id string) (p entities.Product, exists bool, err error)
	GetProductBySlug(ctx context.Context, slug string) (p entities.Product, exists bool, err error)
	CreateProduct(ctx context.Context, p entities.Product) error
	UpdateProduct(ctx context.Context, p entities.Product) (updated bool, err error)
	DeleteProduct(ctx context.Context, id string) (deleted bool, err error)
	Count(ctx context.Context) (int, error)
}

type ProductRepo struct {
	db     *sql.DB
	driver string
}

func NewProductRepository(conn *sql.DB, driver string) (*ProductRepo, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return &ProductRepo{
		db:     conn,
		driver: driver,
	}, nil
}

const productColumns = `id, slug, name_en, name_ar, description_en, description_ar, price, original_price,
	images, category, in_stock, stock_quantity, features_en, features_ar, rating, review_count`

const createProductsTable = `CREATE TABLE IF NOT EXISTS products (
	id VARCHAR(64) PRIMARY KEY,
	slug VARCHAR(191) NOT NULL UNIQUE,
	name_en TEXT NOT NULL,
	name_ar TEXT NOT NULL,
	description_en TEXT NOT NULL,
	description_ar TEXT NOT NULL,
	price NUMERIC(12,2) NOT NULL,
	original_price NUMERIC(12,2) NULL,
	images TEXT NOT NULL,
	category VARCHAR(64) NOT NULL,
	in_stock BOOLEAN NOT NULL,
	stock_quantity INTEGER NOT NULL,
	features_en TEXT NOT NULL,
	features_ar TEXT NOT NULL,
	rating REAL NOT NULL,
	review_count INTEGER NOT NULL
)`

func (p *ProductRepo) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createProductsTable); err != nil {
		return models.WrapSQL(fmt.Errorf("create products table: %w", err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (prod entities.Product, err error) {
	var images, featuresEn, featuresAr string
	err = row.Scan(&prod.Id, &prod.Slug, &prod.Name.En, &prod.Name.Ar,
		&prod.Description.En, &prod.Description.Ar, &prod.Price, &prod.OriginalPrice,
		&images, &prod.Category, &prod.InStock, &prod.StockQuantity,
		&featuresEn, &featuresAr, &prod.Rating, &prod.ReviewCount)
	if err != nil {
		return
	}
	if err = json.Unmarshal([]byte(images), &prod.Images); err != nil {
		err = fmt.Errorf("decode images of %s: %w", prod.Id, err)
		return
	}
	if err = json.Unmarshal([]byte(featuresEn), &prod.Features.En); err != nil {
		err = fmt.Errorf("decode features_en of %s: %w", prod.Id, err)
		return
	}
	if err = json.Unmarshal([]byte(featuresAr), &prod.Features.Ar); err != nil {
		err = fmt.Errorf("decode features_ar of %s: %w", prod.Id, err)
	}
	return
}

func productArgs(prod entities.Product) ([]any, error) {
	images, err := json.Marshal(nonNil(prod.Images))
	if err != nil {
		return nil, err
	}
	featuresEn, err := json.Marshal(nonNil(prod.Features.En))
	if err != nil {
		return nil, err
	}
	featuresAr, err := json.Marshal(nonNil(prod.Features.Ar))
	if err != nil {
		return nil, err
	}
	return []any{prod.Slug, prod.Name.En, prod.Name.Ar, prod.Description.En, prod.Description.Ar,
		prod.Price, prod.OriginalPrice, string(images), prod.Category, prod.InStock, prod.StockQuantity,
		string(featuresEn), string(featuresAr), prod.Rating, prod.ReviewCount}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (p *ProductRepo) List(ctx context.Context, filter models.ProductFilter) (prods []entities.Product, err error) {
	query := "SELECT " + productColumns + " FROM products"
	var where []string
	var args []any
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.InStockOnly {
		where = append(where, "in_stock = ?")
		args = append(args, true)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY category, name_en"

	rows, err := p.db.QueryContext(ctx, rebind(p.driver, query), args...)
	if err != nil {
		return nil, models.WrapSQL(fmt.Errorf("list products: %w", err))
	}
	defer rows.Close()

	prods = []entities.Product{}
	for rows.Next() {
		prod, e := scanProduct(rows)
		if e != nil {
			return nil, models.WrapSQL(fmt.Errorf("scan product: %w", e))
		}
		prods = append(prods, prod)
	}
	if err = rows.Err(); err != nil {
		return nil, models.WrapSQL(err)
	}
	return prods, nil
}

func (p *ProductRepo) getOne(ctx context.Context, column, value string) (prod entities.Product, exists bool, err error) {
	row := p.db.QueryRowContext(ctx, rebind(p.driver, "SELECT "+productColumns+" FROM products WHERE "+column+" = ?"), value)
	prod, err = scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		err = models.WrapSQL(fmt.Errorf("get product by %s: %w", column, err))
		return
	}
	exists = true
	return
}

func (p *ProductRepo) GetProductById(ctx context.Context, id string) (entities.Product, bool, error) {
	return p.getOne(ctx, "id", id)
}

func (p *ProductRepo) GetProductBySlug(ctx context.Context, slug string) (entities.Product, bool, error) {
	return p.getOne(ctx, "slug", slug)
}

func (p *ProductRepo) CreateProduct(ctx context.Context, prod entities.Product) error {
	args, err := productArgs(prod)
	if err != nil {
		return models.WrapSQL(err)
	}
	args = append([]any{prod.Id}, args...)
	query := "INSERT INTO products (" + productColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if _, err = p.db.ExecContext(ctx, rebind(p.driver, query), args...); err != nil {
		return models.WrapSQL(fmt.Errorf("insert product %s: %w", prod.Id, err))
	}
	return nil
}

func (p *ProductRepo) UpdateProduct(ctx context.Context, prod entities.Product) (bool, error) {
	args, err := productArgs(prod)
	if err != nil {
		return false, models.WrapSQL(err)
	}
	args = append(args, prod.Id)
	query := `UPDATE products SET slug = ?, name_en = ?, name_ar = ?, description_en = ?, description_ar = ?,
		price = ?, original_price = ?, images = ?, category = ?, in_stock = ?, stock_quantity = ?,
		features_en = ?, features_ar = ?, rating = ?, review_count = ? WHERE id = ?`
	res, err := p.db.ExecContext(ctx, rebind(p.driver, query), args...)
	if err != nil {
		return false, models.WrapSQL(fmt.Errorf("update product %s: %w", prod.Id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.WrapSQL(err)
	}
	return n > 0, nil
}

func (p *ProductRepo) DeleteProduct(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, rebind(p.driver, "DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return false, models.WrapSQL(fmt.Errorf("delete product %s: %w", id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.WrapSQL(err)
	}
	return n > 0, nil
}

func (p *ProductRepo) Count(ctx context.Context) (n int, err error) {
	if err = p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		err = models.WrapSQL(fmt.Errorf("count products: %w", err))
	}
	return
}

var _ ProductRepository = (*ProductRepo)(nil)
