// Package paypal implements the payment gateway against the PayPal REST v2
// Orders API.
package paypal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"coach-booking/internal/pkg/config"
	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/shared"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"
	refundPath = "/v2/payments/captures/%s/refund"
)

var (
	ErrRequestFailed   = errs.New("paypal request failed")
	ErrUnexpectedReply = errs.New("paypal returned an unexpected response")
	ErrNoApprovalLink  = errs.New("paypal order has no approval link")
)

type Client struct {
	baseURL   string
	returnURL string
	cancelURL string
	http      *http.Client
}

// NewClient builds a gateway whose HTTP client fetches and caches an
// OAuth2 client-credentials token. Every call, including the token fetch,
// is bounded by cfg.Timeout.
func NewClient(cfg config.PayPalConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")

	tokenClient := &http.Client{Timeout: cfg.Timeout}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	httpClient := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, tokenClient))
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:   base,
		returnURL: cfg.ReturnURL,
		cancelURL: cfg.CancelURL,
		http:      httpClient,
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type refundRequest struct {
	Amount amount `json:"amount"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) CreateOrder(ctx context.Context, req shared.OrderRequest) (*shared.Order, error) {
	body := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: req.ReferenceID,
			Amount:      amount{CurrencyCode: req.Currency, Value: req.Amount.StringFixed(2)},
			Description: req.Description,
		}},
		ApplicationContext: applicationContext{ReturnURL: c.returnURL, CancelURL: c.cancelURL},
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, ordersPath, body, &resp); err != nil {
		return nil, err
	}

	approval := ""
	for _, l := range resp.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			approval = l.Href
			break
		}
	}
	if resp.ID == "" || approval == "" {
		return nil, errs.Wrap(ErrNoApprovalLink, "create order "+resp.ID)
	}

	slog.Info("paypal order created", "order_id", resp.ID, "status", resp.Status)
	return &shared.Order{ID: resp.ID, Status: resp.Status, ApprovalURL: approval}, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*shared.Capture, error) {
	var resp orderResponse
	path := ordersPath + "/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	capture := &shared.Capture{OrderID: resp.ID, Status: resp.Status}
	for _, pu := range resp.PurchaseUnits {
		if len(pu.Payments.Captures) == 0 {
			continue
		}
		c := pu.Payments.Captures[0]
		value, err := decimal.NewFromString(c.Amount.Value)
		if err != nil {
			return nil, errs.Mark(errs.Wrap(err, fmt.Sprintf("capture %s amount %q", c.ID, c.Amount.Value)), ErrUnexpectedReply)
		}
		capture.CaptureID = c.ID
		capture.Amount = value
		capture.Currency = c.Amount.CurrencyCode
		break
	}
	slog.Info("paypal order captured",
		"order_id", resp.ID,
		"status", resp.Status,
		"capture_id", capture.CaptureID,
		"amount", capture.Amount.String(),
		"currency", capture.Currency)
	return capture, nil
}

func (c *Client) RefundCapture(ctx context.Context, captureID string, value decimal.Decimal, currency string) (*shared.Refund, error) {
	body := refundRequest{Amount: amount{CurrencyCode: currency, Value: value.StringFixed(2)}}

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf(refundPath, url.PathEscape(captureID)), body, &resp); err != nil {
		return nil, err
	}
	slog.Info("paypal capture refunded", "capture_id", captureID, "refund_id", resp.ID, "status", resp.Status)
	return &shared.Refund{ID: resp.ID, Status: resp.Status}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errs.Wrap(err, "marshal paypal request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build paypal request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Mark(errs.Wrap(err, method+" "+path), ErrRequestFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Mark(errs.Wrap(err, "read paypal response"), ErrRequestFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("paypal request rejected",
			"method", method,
			"path", path,
			"status_code", resp.StatusCode,
			"debug_id", resp.Header.Get("Paypal-Debug-Id"))
		return errs.Mark(errs.New(fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(raw, 512))), ErrRequestFailed)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errs.Mark(errs.Wrap(err, "decode paypal response"), ErrUnexpectedReply)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
