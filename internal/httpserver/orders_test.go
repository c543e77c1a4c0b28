package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderBody = `{
	"shopperName": "Ada",
	"cartId": "c1",
	"items": [{"productId": 1, "title": "Cute Otter Amigurumi", "price": 28.5, "quantity": 2, "selectedAttribute": "Small"}],
	"totalQuantity": 2,
	"totalPrice": 57
}`

func placedOrder(cleared bool) *checkoutsvc.Placement {
	return &checkoutsvc.Placement{
		Order: &domain.Order{
			OrderNumber:   "0b7c6c36-2f0a-4f0e-9a43-0d0d4a1b3c55",
			ShopperName:   "Ada",
			CartID:        "c1",
			Items:         []domain.LineItem{{ProductID: 1, Price: 28.5, Quantity: 2}},
			TotalQuantity: 2,
			TotalPrice:    57,
			Status:        domain.OrderStatusPending,
			CartCleared:   cleared,
		},
		CartCleared: cleared,
	}
}

func TestPlaceOrder_Created(t *testing.T) {
	svc := &stubCheckoutService{placement: placedOrder(true)}
	router := newTestRouter(t, Deps{CheckoutSvc: svc})

	rec := serve(router, http.MethodPost, "/orders", orderBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.Equal(t, "Order placed and cart cleared successfully.", env.Message)
	require.NotNil(t, env.CartCleared)
	assert.True(t, *env.CartCleared)

	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Result, &order))
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	in := svc.lastInput
	assert.Equal(t, "Ada", in.ShopperName)
	assert.Equal(t, "c1", in.CartID)
	require.Len(t, in.Items, 1)
	assert.Equal(t, "Small", in.Items[0].SelectedAttribute)
	require.NotNil(t, in.TotalPrice)
	assert.Equal(t, 57.0, *in.TotalPrice)
}

func TestPlaceOrder_CartNotClearedWarns(t *testing.T) {
	router := newTestRouter(t, Deps{CheckoutSvc: &stubCheckoutService{placement: placedOrder(false)}})

	rec := serve(router, http.MethodPost, "/orders", orderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decode(t, rec)
	assert.Contains(t, env.Message, "contact support")
	require.NotNil(t, env.CartCleared)
	assert.False(t, *env.CartCleared)
}

func TestPlaceOrder_BadRequests(t *testing.T) {
	bodies := map[string]string{
		"missing shopper": `{"cartId":"c1","items":[{"productId":1,"price":1,"quantity":1}],"totalQuantity":1,"totalPrice":1}`,
		"empty items":     `{"shopperName":"Ada","cartId":"c1","items":[],"totalQuantity":1,"totalPrice":1}`,
		"bad item":        `{"shopperName":"Ada","cartId":"c1","items":[{"productId":1,"price":1,"quantity":0}],"totalQuantity":1,"totalPrice":1}`,
		"missing total":   `{"shopperName":"Ada","cartId":"c1","items":[{"productId":1,"price":1,"quantity":1}],"totalQuantity":1}`,
		"zero quantity":   `{"shopperName":"Ada","cartId":"c1","items":[{"productId":1,"price":1,"quantity":1}],"totalQuantity":0,"totalPrice":1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &stubCheckoutService{placement: placedOrder(true)}
			router := newTestRouter(t, Deps{CheckoutSvc: svc})

			rec := serve(router, http.MethodPost, "/orders", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, codeValidation, decode(t, rec).Code)
			assert.Empty(t, svc.lastInput.CartID)
		})
	}
}

func TestPlaceOrder_ZeroTotalPriceIsPresent(t *testing.T) {
	svc := &stubCheckoutService{placement: placedOrder(true)}
	router := newTestRouter(t, Deps{CheckoutSvc: svc})

	body := `{"shopperName":"Ada","cartId":"c1","items":[{"productId":1,"price":0,"quantity":1}],"totalQuantity":1,"totalPrice":0}`
	rec := serve(router, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, svc.lastInput.TotalPrice)
	assert.Zero(t, *svc.lastInput.TotalPrice)
}

func TestPlaceOrder_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{domain.ErrCartNotFound, http.StatusNotFound},
		{errors.New("insert failed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router := newTestRouter(t, Deps{CheckoutSvc: &stubCheckoutService{err: tc.err}})
		rec := serve(router, http.MethodPost, "/orders", orderBody)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestAdminOrdersAndReconcile(t *testing.T) {
	svc := &stubCheckoutService{orders: []domain.Order{*placedOrder(true).Order}, reconciled: 3}
	router := newTestRouter(t, Deps{CheckoutSvc: svc})

	rec := serve(router, http.MethodGet, "/admin/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []domain.Order
	require.NoError(t, json.Unmarshal(decode(t, rec).Result, &orders))
	assert.Len(t, orders, 1)

	rec = serve(router, http.MethodPost, "/admin/orders/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode(t, rec).Reconciled)

	svc.err = errors.New("down")
	rec = serve(router, http.MethodPost, "/admin/orders/reconcile", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
