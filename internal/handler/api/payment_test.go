//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/domain/payment"
	"coach-booking/internal/domain/user"
	"coach-booking/internal/handler/api"
	resdto "coach-booking/internal/handler/dto/response"
	"coach-booking/internal/usecase/commands"
	"coach-booking/tests/common/httptest"
	commandsmock "coach-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
	actor        access.Actor
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	h := api.NewPaymentHandler(s.mockCommands)

	s.actor = access.NewActor(uuid.New(), user.RoleUser)
	auth := fakeAuth(s.actor)

	s.router.POST("/payments/orders", auth, h.CreateOrder)
	s.router.POST("/payments/orders/:orderId/capture", auth, h.CaptureOrder)
	s.router.PATCH("/payments/:id/status", auth, h.UpdateStatus)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestCreateOrder() {
	sessionID := uuid.New()
	result := &commands.OrderResult{
		OrderID:     "ORDER-1",
		ApprovalURL: "https://paypal.test/approve?token=ORDER-1",
		PaymentID:   uuid.New(),
	}

	s.Run("success: amount omitted charges the session price", func() {
		s.mockCommands.EXPECT().
			CreateOrder(gomock.Any(), s.actor, sessionID, decimal.Decimal{}).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/orders",
			map[string]any{"sessionId": sessionID}, "bearer-token")

		var body resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal("ORDER-1", body.OrderID)
		s.Equal(result.ApprovalURL, body.ApprovalURL)
		s.Equal(result.PaymentID, body.PaymentID)
	})

	s.Run("success: explicit amount is forwarded", func() {
		s.mockCommands.EXPECT().
			CreateOrder(gomock.Any(), s.actor, sessionID, decimal.RequireFromString("49.99")).
			Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/orders",
			map[string]any{"sessionId": sessionID, "amount": "49.99"}, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
	})

	s.Run("error: 400 without sessionId", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/orders",
			map[string]any{"amount": "10"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: use case errors map to their status", func() {
		cases := []struct {
			name string
			err  error
			code int
			msg  string
		}{
			{name: "amount mismatch", err: commands.ErrAmountMismatch, code: http.StatusBadRequest, msg: "Amount does not match"},
			{name: "not owner", err: commands.ErrSessionNotOwned, code: http.StatusBadRequest, msg: "does not belong to user"},
			{name: "gateway failure", err: commands.ErrOrderCreationFailed, code: http.StatusBadRequest, msg: "Failed to create payment order"},
			{name: "unknown session", err: commands.ErrSessionNotFound, code: http.StatusNotFound, msg: "Session not found"},
			{name: "order already open", err: commands.ErrPaymentInProgress, code: http.StatusConflict, msg: "Payment in progress"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/orders",
					map[string]any{"sessionId": sessionID}, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.code, tc.msg)
			})
		}
	})
}

func (s *PaymentHandlerTestSuite) TestCaptureOrder() {
	sessionID := uuid.New()
	url := "/payments/orders/ORDER-1/capture"

	s.Run("success", func() {
		s.mockCommands.EXPECT().
			CaptureOrder(gomock.Any(), s.actor, "ORDER-1", sessionID).
			Return(&commands.CaptureResult{
				OrderID:   "ORDER-1",
				CaptureID: "CAP-1",
				PaymentID: uuid.New(),
				SessionID: sessionID,
				Status:    "COMPLETED",
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"sessionId": sessionID}, "bearer-token")

		var body resdto.CaptureResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("CAP-1", body.CaptureID)
		s.Equal("COMPLETED", body.Status)
		s.False(body.AlreadyCaptured)
	})

	s.Run("success: repeated capture is flagged", func() {
		s.mockCommands.EXPECT().CaptureOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&commands.CaptureResult{OrderID: "ORDER-1", SessionID: sessionID, Status: "COMPLETED", AlreadyCaptured: true}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"sessionId": sessionID}, "bearer-token")

		var body resdto.CaptureResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.AlreadyCaptured)
	})

	s.Run("error: 409 while another capture holds the lock", func() {
		s.mockCommands.EXPECT().CaptureOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrCaptureInProgress).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"sessionId": sessionID}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Capture already in progress")
	})

	s.Run("error: 400 when the captured amount is off", func() {
		s.mockCommands.EXPECT().CaptureOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrCaptureAmountMismatch).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"sessionId": sessionID}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Captured amount does not match")
	})

	s.Run("error: 400 without sessionId", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})
}

func (s *PaymentHandlerTestSuite) TestUpdateStatus() {
	p := payment.ReconstructPayment(
		uuid.New(), uuid.New(), uuid.New(),
		decimal.RequireFromString("50"), "USD",
		payment.StatusRefunded, nil, nil,
		time.Now(), time.Now(),
	)
	url := "/payments/" + p.ID().String() + "/status"

	s.Run("success", func() {
		s.mockCommands.EXPECT().UpdatePaymentStatus(gomock.Any(), s.actor, p.ID(), "REFUNDED").Return(p, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "REFUNDED"}, "bearer-token")

		var body resdto.PaymentResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("REFUNDED", body.Status)
		s.Equal("USD", body.Currency)
	})

	s.Run("error: 400 on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/payments/nope/status", map[string]any{"status": "REFUNDED"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})

	s.Run("error: 404 for an unknown payment", func() {
		s.mockCommands.EXPECT().UpdatePaymentStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrPaymentNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "FAILED"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Payment not found")
	})
}
