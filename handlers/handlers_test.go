package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"
	"github.com/Fomkes/uae-water-delivery1-sub001/services"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logx.Init(logx.LoggerOpts{Environment: core.Testing})
	os.Exit(m.Run())
}

type publishedOrders struct {
	mu  sync.Mutex
	ids []string
}

func (p *publishedOrders) Publish(_ context.Context, messageId string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, messageId)
	return nil
}

func (p *publishedOrders) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T) (*testClient, *publishedOrders) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	products, err := repository.NewProductRepository(db, "sqlite3")
	require.NoError(t, err)
	require.NoError(t, products.Migrate(ctx))
	require.NoError(t, repository.SeedProducts(ctx, products))

	records := repository.NewMemoryRecords()
	carts, err := repository.NewCartRepository(records, time.Hour)
	require.NoError(t, err)
	sessions, err := repository.NewAdminSessionRepository(records, time.Hour)
	require.NoError(t, err)
	auth, err := services.NewStaticCredentials("admin", "admin123", entities.AdminUser{Id: "admin-1", Role: entities.RoleSuperAdmin})
	require.NoError(t, err)

	pub := &publishedOrders{}
	cartService := services.NewCartService(products, carts, time.Hour)
	h := NewHandler(HandlerParams{
		CrtService: cartService,
		AdmService: services.NewAdminService(sessions, auth),
		PrdService: services.NewProductService(products),
		OrdService: services.NewOrderService(cartService, pub),
		CartTTL:    time.Hour,
		SessionTTL: time.Hour,
	})
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, srv: srv, client: &http.Client{Jar: jar}}, pub
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (c *testClient) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type cartResponse struct {
	Items []struct {
		Product  struct{ Id string }
		Quantity int
	}
	Total     string
	ItemCount int
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, nil))
}

func TestCartFlow(t *testing.T) {
	c, pub := newTestClient(t)

	var cart cartResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", nil, &cart))
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.ItemCount)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "water-gallon-5", "quantity": 2}, &cart))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "water-small-24", "quantity": 1}, &cart))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "water-gallon-5", "quantity": 1}, &cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "water-gallon-5", cart.Items[0].Product.Id)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.ItemCount)
	assert.Equal(t, "33.5", cart.Total)

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/cart/items/water-small-24", map[string]int{"quantity": 4}, &cart))
	assert.Equal(t, 7, cart.ItemCount)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/cart/items/water-small-24", nil, &cart))
	assert.Equal(t, 3, cart.ItemCount)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", nil, &cart))
	assert.Equal(t, 3, cart.ItemCount, "the session cookie keeps the cart")

	checkout := map[string]string{"name": "Mariam", "phone": "+971500000000", "address": "Al Barsha, Dubai"}
	var order entities.Order
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart/checkout", checkout, &order))
	assert.Equal(t, 3, order.ItemCount)
	assert.Equal(t, []string{order.Id}, pub.published())

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", nil, &cart))
	assert.Empty(t, cart.Items)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/cart/checkout", checkout, nil), "empty cart")
}

func TestCartRejectsUnknownAndUnavailableProducts(t *testing.T) {
	c, _ := newTestClient(t)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "nope", "quantity": 1}, nil))
	assert.Equal(t, http.StatusNotAcceptable, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "dispenser-hot-cold", "quantity": 1}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/cart/items", map[string]any{"quantity": 1}, nil))
}

func TestCartQuantityDoesNotWrap(t *testing.T) {
	c, _ := newTestClient(t)
	add := map[string]any{"product_id": "water-gallon-5", "quantity": math.MaxInt}

	var cart cartResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", add, &cart))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", add, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, math.MaxInt, cart.Items[0].Quantity)
	assert.Equal(t, math.MaxInt, cart.ItemCount)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/cart", nil, &cart))
	assert.Len(t, cart.Items, 1)
}

func TestClearCart(t *testing.T) {
	c, _ := newTestClient(t)
	var cart cartResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/cart/items", map[string]any{"product_id": "water-gallon-5", "quantity": 2}, &cart))
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/cart", nil, &cart))
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0", cart.Total)
}

func TestProducts(t *testing.T) {
	c, _ := newTestClient(t)

	var prods []entities.Product
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/products?in_stock=true", nil, &prods))
	for _, p := range prods {
		assert.True(t, p.InStock, p.Id)
	}
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/products?in_stock=maybe", nil, nil))

	var p entities.Product
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/products/5-gallon-water-bottle", nil, &p))
	assert.Equal(t, "water-gallon-5", p.Id)
	assert.Equal(t, "قارورة مياه 5 جالون", p.Name.Ar)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/products/unknown", nil, nil))

	var cats []entities.CategorySummary
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/categories", nil, &cats))
	assert.Len(t, cats, 3)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	c, _ := newTestClient(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/admin/me"},
		{http.MethodGet, "/admin/dashboard"},
		{http.MethodGet, "/admin/products"},
		{http.MethodPost, "/admin/products"},
		{http.MethodPut, "/admin/products/water-gallon-5"},
		{http.MethodDelete, "/admin/products/water-gallon-5"},
		{http.MethodPost, "/admin/password"},
	} {
		assert.Equal(t, http.StatusUnauthorized, c.do(r.method, r.path, nil, nil), "%s %s", r.method, r.path)
	}
}

func TestAdminFlow(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "bad"}, nil))

	var admin entities.AdminUser
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "admin123"}, &admin))
	assert.Equal(t, "admin", admin.Username)
	assert.False(t, admin.LastLogin.IsZero())

	var me entities.AdminUser
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/admin/me", nil, &me))
	assert.Equal(t, admin.Username, me.Username)

	var stats entities.ProductStats
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/admin/dashboard", nil, &stats))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.OutOfStock)

	newProduct := map[string]any{
		"name":          map[string]string{"en": "Mineral Water 1.5L", "ar": "مياه معدنية 1.5 لتر"},
		"price":         "15.00",
		"category":      "bottles",
		"inStock":       true,
		"stockQuantity": 40,
	}
	var created entities.Product
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/admin/products", newProduct, &created))
	assert.Equal(t, "mineral-water-1-5l", created.Slug)

	newProduct["originalPrice"] = "10.00"
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/admin/products/"+created.Id, newProduct, nil))

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/admin/products/"+created.Id, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/admin/products/"+created.Id, nil, nil))

	// static credentials cannot be rotated
	assert.Equal(t, http.StatusNotAcceptable, c.do(http.MethodPost, "/admin/password", map[string]string{"old_password": "admin123", "new_password": "something-longer"}, nil))

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/admin/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/admin/me", nil, nil))
}
