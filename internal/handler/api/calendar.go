package api

import (
	"net/http"

	reqdto "coach-booking/internal/handler/dto/request"
	resdto "coach-booking/internal/handler/dto/response"
	"coach-booking/internal/handler/httperr"
	"coach-booking/internal/handler/middleware"
	"coach-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	cmds commands.CalendarCommands
}

func NewCalendarHandler(cmds commands.CalendarCommands) *CalendarHandler {
	return &CalendarHandler{cmds: cmds}
}

// @Summary Create calendar event for a session
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateCalendarEventRequest true "Session"
// @Success 200 {object} resdto.CalendarEventResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /calendar/events [post]
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateCalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	summary, err := h.cmds.CreateEvent(c.Request.Context(), actor, req.SessionID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	resp, err := resdto.FromEventSummary(summary)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Delete calendar event
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} resdto.DeletedEventResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /calendar/events/{eventId} [delete]
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	deleted, err := h.cmds.DeleteEvent(c.Request.Context(), actor, c.Param("eventId"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDeletedEvent(deleted))
}
