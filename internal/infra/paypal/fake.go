package paypal

import (
	"context"
	"sync"

	"coach-booking/internal/pkg/errs"
	"coach-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrFakeFailure      = errs.New("fake gateway failure")
	ErrFakeUnknownOrder = errs.New("fake gateway: order not found")
)

// FakeGateway is an in-memory gateway for local runs and tests. Orders are
// approved immediately; failures can be injected per operation.
type FakeGateway struct {
	mu       sync.Mutex
	orders   map[string]shared.OrderRequest
	captures map[string]string
	refunds  map[string]decimal.Decimal

	FailCreate  bool
	FailCapture bool
	FailRefund  bool
	// CaptureStatus overrides the reported capture status when set.
	CaptureStatus string

	CreateCalls  int
	CaptureCalls int
	RefundCalls  int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		orders:   make(map[string]shared.OrderRequest),
		captures: make(map[string]string),
		refunds:  make(map[string]decimal.Decimal),
	}
}

// RegisterOrder adds an order that was opened outside this service, e.g. by
// a client talking to the gateway directly.
func (f *FakeGateway) RegisterOrder(orderID string, amount decimal.Decimal, currency string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[orderID] = shared.OrderRequest{Amount: amount, Currency: currency}
}

func (f *FakeGateway) CreateOrder(_ context.Context, req shared.OrderRequest) (*shared.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls++
	if f.FailCreate {
		return nil, ErrFakeFailure
	}
	id := "FAKE-" + uuid.NewString()
	f.orders[id] = req
	return &shared.Order{
		ID:          id,
		Status:      "CREATED",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + id,
	}, nil
}

func (f *FakeGateway) CaptureOrder(_ context.Context, orderID string) (*shared.Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CaptureCalls++
	if f.FailCapture {
		return nil, ErrFakeFailure
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, ErrFakeUnknownOrder
	}
	status := shared.GatewayStatusCompleted
	if f.CaptureStatus != "" {
		status = f.CaptureStatus
	}
	captureID, ok := f.captures[orderID]
	if !ok {
		captureID = "CAP-" + uuid.NewString()
		f.captures[orderID] = captureID
	}
	return &shared.Capture{
		OrderID:   orderID,
		CaptureID: captureID,
		Status:    status,
		Amount:    order.Amount,
		Currency:  order.Currency,
	}, nil
}

func (f *FakeGateway) RefundCapture(_ context.Context, captureID string, amount decimal.Decimal, _ string) (*shared.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RefundCalls++
	if f.FailRefund {
		return nil, ErrFakeFailure
	}
	f.refunds[captureID] = f.refunds[captureID].Add(amount)
	return &shared.Refund{ID: "REF-" + uuid.NewString(), Status: shared.GatewayStatusCompleted}, nil
}

func (f *FakeGateway) Calls() (create, capture, refund int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CreateCalls, f.CaptureCalls, f.RefundCalls
}

// Refunded returns the total refunded against a capture.
func (f *FakeGateway) Refunded(captureID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refunds[captureID]
}
