package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/services"

	"github.com/gorilla/mux"
)

const (
	cartCookie  = "cartSessionId"
	adminCookie = "adminSessionId"
)

type Handler struct {
	cs  *services.CartService
	as  *services.AdminService
	ps  *services.ProductService
	ors *services.OrderService

	cartTTL    time.Duration
	sessionTTL time.Duration
}

type HandlerParams struct {
	CrtService *services.CartService
	AdmService *services.AdminService
	PrdService *services.ProductService
	OrdService *services.OrderService

	// Cookie lifetimes; they should match the durable record TTLs.
	CartTTL    time.Duration
	SessionTTL time.Duration
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		cs:         params.CrtService,
		as:         params.AdmService,
		ps:         params.PrdService,
		ors:        params.OrdService,
		cartTTL:    params.CartTTL,
		sessionTTL: params.SessionTTL,
	}
}

// Router wires every route. Admin back-office routes sit behind
// AdminAuthMiddleware.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.ErrorHandleMiddleware)
	router.Use(h.LoggingMiddleware)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	router.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	router.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{slug}", h.GetProduct).Methods(http.MethodGet)

	router.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{productId}", h.UpdateCartItem).Methods(http.MethodPut)
	router.HandleFunc("/cart/items/{productId}", h.RemoveFromCart).Methods(http.MethodDelete)
	router.HandleFunc("/cart/checkout", h.Checkout).Methods(http.MethodPost)

	router.HandleFunc("/admin/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/admin/logout", h.Logout).Methods(http.MethodPost)

	subAdmin := router.NewRoute().Subrouter()
	subAdmin.Use(h.AdminAuthMiddleware)
	subAdmin.HandleFunc("/admin/me", h.Me).Methods(http.MethodGet)
	subAdmin.HandleFunc("/admin/password", h.ChangePassword).Methods(http.MethodPost)
	subAdmin.HandleFunc("/admin/dashboard", h.Dashboard).Methods(http.MethodGet)
	subAdmin.HandleFunc("/admin/products", h.AdminListProducts).Methods(http.MethodGet)
	subAdmin.HandleFunc("/admin/products", h.CreateProduct).Methods(http.MethodPost)
	subAdmin.HandleFunc("/admin/products/{id}", h.UpdateProduct).Methods(http.MethodPut)
	subAdmin.HandleFunc("/admin/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)

	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

// WriteErrorResponse maps err onto its HTTP status and writes a JSON body.
func WriteErrorResponse(w http.ResponseWriter, err error) {
	status := models.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: models.PublicMessage(err)})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logx.Debug().Err(err).Str("path", r.URL.Path).Msg("unmarshal request body")
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}
	return nil
}

func sessionCookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func setSessionCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
