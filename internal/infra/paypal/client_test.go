//go:build unit

package paypal_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"coach-booking/internal/infra/paypal"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paypalServer struct {
	*httptest.Server
	tokenCalls atomic.Int32
	lastBody   atomic.Value
}

func newPayPalServer(t *testing.T, routes map[string]http.HandlerFunc) *paypalServer {
	t.Helper()
	s := &paypalServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	})
	for pattern, h := range routes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			body, _ := io.ReadAll(r.Body)
			s.lastBody.Store(string(body))
			h(w, r)
		})
	}
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newClient(url string) *paypal.Client {
	return paypal.NewClient(config.PayPalConfig{
		BaseURL:      url,
		ClientID:     "client",
		ClientSecret: "secret",
		ReturnURL:    "https://app.example.com/return",
		CancelURL:    "https://app.example.com/cancel",
		Timeout:      2 * time.Second,
	})
}

func TestClient_CreateOrder(t *testing.T) {
	srv := newPayPalServer(t, map[string]http.HandlerFunc{
		"POST /v2/checkout/orders": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"ORDER-1","status":"CREATED","links":[
				{"href":"https://api/self","rel":"self"},
				{"href":"https://paypal/approve?token=ORDER-1","rel":"approve"}]}`)
		},
	})
	client := newClient(srv.URL)

	order, err := client.CreateOrder(context.Background(), shared.OrderRequest{
		ReferenceID: "session-1",
		Amount:      decimal.RequireFromString("80.5"),
		Currency:    "USD",
		Description: "Intro call",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.ID)
	assert.Equal(t, "https://paypal/approve?token=ORDER-1", order.ApprovalURL)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(srv.lastBody.Load().(string)), &sent))
	assert.Equal(t, "CAPTURE", sent["intent"])
	unit := sent["purchase_units"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"currency_code": "USD", "value": "80.50"}, unit["amount"])

	_, err = client.CreateOrder(context.Background(), shared.OrderRequest{Amount: decimal.NewFromInt(1), Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.tokenCalls.Load(), "token should be cached between calls")
}

func TestClient_CreateOrderWithoutApprovalLink(t *testing.T) {
	srv := newPayPalServer(t, map[string]http.HandlerFunc{
		"POST /v2/checkout/orders": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"id":"ORDER-1","status":"CREATED","links":[]}`)
		},
	})

	_, err := newClient(srv.URL).CreateOrder(context.Background(), shared.OrderRequest{Amount: decimal.NewFromInt(1)})

	assert.True(t, errs.Is(err, paypal.ErrNoApprovalLink))
}

func TestClient_CaptureOrder(t *testing.T) {
	srv := newPayPalServer(t, map[string]http.HandlerFunc{
		"POST /v2/checkout/orders/{id}/capture": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":"`+r.PathValue("id")+`","status":"COMPLETED","purchase_units":[
				{"payments":{"captures":[{"id":"CAP-9","status":"COMPLETED",
					"amount":{"currency_code":"USD","value":"80.50"}}]}}]}`)
		},
	})

	capture, err := newClient(srv.URL).CaptureOrder(context.Background(), "ORDER-7")

	require.NoError(t, err)
	assert.Equal(t, "ORDER-7", capture.OrderID)
	assert.Equal(t, "CAP-9", capture.CaptureID)
	assert.Equal(t, "COMPLETED", capture.Status)
	assert.Equal(t, "USD", capture.Currency)
	assert.True(t, capture.Amount.Equal(decimal.RequireFromString("80.5")), "got %s", capture.Amount)
	assert.True(t, capture.Matches(decimal.RequireFromString("80.50"), "USD"))
	assert.False(t, capture.Matches(decimal.RequireFromString("1.00"), "USD"))
	assert.False(t, capture.Matches(decimal.RequireFromString("80.50"), "EUR"))
}

func TestClient_CaptureOrderWithMalformedAmount(t *testing.T) {
	srv := newPayPalServer(t, map[string]http.HandlerFunc{
		"POST /v2/checkout/orders/{id}/capture": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":"`+r.PathValue("id")+`","status":"COMPLETED","purchase_units":[
				{"payments":{"captures":[{"id":"CAP-9","status":"COMPLETED",
					"amount":{"currency_code":"USD","value":"eighty"}}]}}]}`)
		},
	})

	_, err := newClient(srv.URL).CaptureOrder(context.Background(), "ORDER-7")

	assert.True(t, errs.Is(err, paypal.ErrUnexpectedReply))
}

func TestClient_RefundCapture(t *testing.T) {
	srv := newPayPalServer(t, map[string]http.HandlerFunc{
		"POST /v2/payments/captures/{id}/refund": func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") != "CAP-9" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":"REF-1","status":"COMPLETED"}`)
		},
	})

	refund, err := newClient(srv.URL).RefundCapture(context.Background(), "CAP-9", decimal.RequireFromString("40"), "EUR")

	require.NoError(t, err)
	assert.True(t, refund.Accepted())
	assert.JSONEq(t, `{"amount":{"currency_code":"EUR","value":"40.00"}}`, srv.lastBody.Load().(string))
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-2xx reply", func(t *testing.T) {
		srv := newPayPalServer(t, map[string]http.HandlerFunc{
			"POST /v2/checkout/orders/{id}/capture": func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, `{"name":"UNPROCESSABLE_ENTITY"}`)
			},
		})

		_, err := newClient(srv.URL).CaptureOrder(context.Background(), "ORDER-1")

		require.Error(t, err)
		assert.True(t, errs.Is(err, paypal.ErrRequestFailed))
		assert.Contains(t, err.Error(), "422")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newPayPalServer(t, map[string]http.HandlerFunc{
			"POST /v2/checkout/orders/{id}/capture": func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `not json`)
			},
		})

		_, err := newClient(srv.URL).CaptureOrder(context.Background(), "ORDER-1")

		assert.True(t, errs.Is(err, paypal.ErrUnexpectedReply))
	})

	t.Run("bad credentials", func(t *testing.T) {
		srv := newPayPalServer(t, nil)
		client := paypal.NewClient(config.PayPalConfig{BaseURL: srv.URL, ClientID: "x", ClientSecret: "y", Timeout: time.Second})

		_, err := client.CaptureOrder(context.Background(), "ORDER-1")

		assert.True(t, errs.Is(err, paypal.ErrRequestFailed))
	})
}
