package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

type stubCartService struct {
	cart      *domain.Cart
	carts     []domain.Cart
	created   bool
	removed   bool
	err       error
	lastID    string
	lastInput cartsvc.AddItemInput
	lastPID   int
}

func (s *stubCartService) CreateOrGet(_ context.Context, cartID string) (*domain.Cart, bool, error) {
	s.lastID = cartID
	return s.cart, s.created, s.err
}

func (s *stubCartService) Get(_ context.Context, cartID string) (*domain.Cart, error) {
	s.lastID = cartID
	return s.cart, s.err
}

func (s *stubCartService) List(context.Context) ([]domain.Cart, error) {
	return s.carts, s.err
}

func (s *stubCartService) AddItem(_ context.Context, cartID string, in cartsvc.AddItemInput) (*domain.Cart, error) {
	s.lastID = cartID
	s.lastInput = in
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, cartID string, productID int) (*domain.Cart, bool, error) {
	s.lastID = cartID
	s.lastPID = productID
	return s.cart, s.removed, s.err
}

func (s *stubCartService) Clear(_ context.Context, cartID string) (*domain.Cart, error) {
	s.lastID = cartID
	return s.cart, s.err
}

type stubCheckoutService struct {
	placement  *checkoutsvc.Placement
	orders     []domain.Order
	reconciled int
	err        error
	lastInput  checkoutsvc.PlaceOrderInput
}

func (s *stubCheckoutService) PlaceOrder(_ context.Context, in checkoutsvc.PlaceOrderInput) (*checkoutsvc.Placement, error) {
	s.lastInput = in
	return s.placement, s.err
}

func (s *stubCheckoutService) ListOrders(context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubCheckoutService) ReconcileUnclearedCarts(context.Context) (int, error) {
	return s.reconciled, s.err
}

type stubProductService struct {
	product    *domain.Product
	products   []domain.Product
	attributes []domain.AttributePrice
	err        error
	lastID     int
	lastInput  productsvc.UpsertInput
}

func (s *stubProductService) List(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, id int) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func (s *stubProductService) ListAttributePrices(_ context.Context, id int) ([]domain.AttributePrice, error) {
	s.lastID = id
	return s.attributes, s.err
}

func (s *stubProductService) Create(_ context.Context, in productsvc.UpsertInput) (*domain.Product, error) {
	s.lastInput = in
	return s.product, s.err
}

func (s *stubProductService) Update(_ context.Context, id int, in productsvc.UpsertInput) (*domain.Product, error) {
	s.lastID = id
	s.lastInput = in
	return s.product, s.err
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.CartSvc == nil {
		deps.CartSvc = &stubCartService{}
	}
	if deps.CheckoutSvc == nil {
		deps.CheckoutSvc = &stubCheckoutService{}
	}
	if deps.ProductSvc == nil {
		deps.ProductSvc = &stubProductService{}
	}
	router, err := buildRouter(nil, nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message     string          `json:"message"`
	Code        string          `json:"code"`
	Result      json.RawMessage `json:"result"`
	CartID      string          `json:"cartId"`
	CartCleared *bool           `json:"cartCleared"`
	Reconciled  int             `json:"reconciled"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	if _, err := buildRouter(nil, nil, Deps{}, nil); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := serve(router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestReadyz_NoDatabase(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := serve(router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := serve(router, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Code != codeNotFound {
		t.Fatalf("expected not_found code, got %q", env.Code)
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	router := newTestRouter(t, Deps{})
	req := httptest.NewRequest(http.MethodOptions, "/carts", nil)
	req.Header.Set("Origin", "http://shop.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestWriteError_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.Invalidf("bad"), http.StatusBadRequest, codeValidation},
		{"not found", domain.ErrCartNotFound, http.StatusNotFound, codeNotFound},
		{"store", errors.New("connection refused"), http.StatusInternalServerError, codeStore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, Deps{CartSvc: &stubCartService{err: tc.err}})
			rec := serve(router, http.MethodGet, "/carts/c1", "")
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			env := decode(t, rec)
			if env.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, env.Code)
			}
			if tc.status == http.StatusInternalServerError && strings.Contains(env.Message, "connection refused") {
				t.Fatalf("store error detail leaked: %q", env.Message)
			}
		})
	}
}
