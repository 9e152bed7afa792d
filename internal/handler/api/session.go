package api

import (
	"net/http"

	reqdto "coach-booking/internal/handler/dto/request"
	resdto "coach-booking/internal/handler/dto/response"
	"coach-booking/internal/handler/httperr"
	"coach-booking/internal/handler/middleware"
	"coach-booking/internal/usecase/commands"
	"coach-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	cmds commands.SessionCommands
	q    queries.SessionQueries
}

func NewSessionHandler(cmds commands.SessionCommands, q queries.SessionQueries) *SessionHandler {
	return &SessionHandler{cmds: cmds, q: q}
}

// @Summary Book session
// @Description Book a time slot for a booking type. Replays with the same Idempotency-Key return the first result.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Param request body reqdto.CreateSessionRequest true "Session request"
// @Success 201 {object} resdto.SessionResponse
// @Success 200 {object} resdto.SessionResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	key := uuid.Nil
	if raw := c.GetHeader(middleware.IdempotencyKeyHeader); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid idempotency key format", nil)
			return
		}
		key = parsed
	}

	var req reqdto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), actor, commands.CreateSessionInput{
		BookingTypeID: req.BookingTypeID,
		TimeSlotID:    req.TimeSlotID,
		DiscountCode:  req.GetDiscountCode(),
	}, key)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	resp, err := resdto.FromSessionView(result.Session)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
		c.Header(middleware.IdempotentReplayedHeader, "true")
	}
	c.JSON(status, resp)
}

// @Summary Get session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	view, err := h.q.FindOne(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respondSession(c, http.StatusOK, view)
}

// @Summary List sessions
// @Description Sessions visible to the caller, newest first.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param after query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var q reqdto.ListSessionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}

	var cursor *queries.Cursor
	if q.After != "" {
		cursor = &queries.Cursor{After: q.After}
	}
	items, next, err := h.q.List(c.Request.Context(), actor, cursor, q.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	resp, err := resdto.FromSessionList(items, next)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel session
// @Description Cancels the session, refunds a captured payment and frees the slot.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	view, err := h.cmds.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respondSession(c, http.StatusOK, view)
}

// @Summary Update session status
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body reqdto.UpdateSessionStatusRequest true "New status"
// @Success 200 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /sessions/{id}/status [patch]
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	var req reqdto.UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	view, err := h.cmds.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respondSession(c, http.StatusOK, view)
}

func respondSession(c *gin.Context, status int, view *queries.SessionView) {
	resp, err := resdto.FromSessionView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(status, resp)
}
