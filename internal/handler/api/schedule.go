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

// ScheduleHandler serves what a coach offers: booking types and time slots.
type ScheduleHandler struct {
	slots commands.TimeSlotCommands
	types commands.BookingTypeCommands
}

func NewScheduleHandler(slots commands.TimeSlotCommands, types commands.BookingTypeCommands) *ScheduleHandler {
	return &ScheduleHandler{slots: slots, types: types}
}

// @Summary Create time slot
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateTimeSlotRequest true "Slot"
// @Success 201 {object} resdto.TimeSlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /time-slots [post]
func (h *ScheduleHandler) CreateTimeSlot(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	slot, err := h.slots.Create(c.Request.Context(), actor, commands.CreateTimeSlotInput{
		Start:       req.StartTime,
		DurationMin: req.DurationMin,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromTimeSlot(slot))
}

// @Summary List available time slots of a coach
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Coach ID"
// @Success 200 {array} resdto.TimeSlotResponse
// @Router /coaches/{id}/time-slots [get]
func (h *ScheduleHandler) ListTimeSlots(c *gin.Context) {
	coachID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	slots, err := h.slots.ListAvailable(c.Request.Context(), coachID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTimeSlots(slots))
}

// @Summary Delete time slot
// @Tags schedule
// @Security BearerAuth
// @Param id path string true "Slot ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /time-slots/{id} [delete]
func (h *ScheduleHandler) DeleteTimeSlot(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	if err := h.slots.Delete(c.Request.Context(), actor, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Create booking type
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingTypeRequest true "Booking type"
// @Success 201 {object} resdto.BookingTypeResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /booking-types [post]
func (h *ScheduleHandler) CreateBookingType(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateBookingTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	bt, err := h.types.Create(c.Request.Context(), actor, commands.CreateBookingTypeInput{
		Name:        req.Name,
		DurationMin: req.DurationMin,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromBookingType(bt))
}

// @Summary List active booking types of a coach
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param id path string true "Coach ID"
// @Success 200 {array} resdto.BookingTypeResponse
// @Router /coaches/{id}/booking-types [get]
func (h *ScheduleHandler) ListBookingTypes(c *gin.Context) {
	coachID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	bts, err := h.types.ListActive(c.Request.Context(), coachID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingTypes(bts))
}

// @Summary Deactivate booking type
// @Tags schedule
// @Security BearerAuth
// @Param id path string true "Booking type ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /booking-types/{id} [delete]
func (h *ScheduleHandler) DeactivateBookingType(c *gin.Context) {
	actor, id, ok := actorAndID(c, "id")
	if !ok {
		return
	}
	if err := h.types.Deactivate(c.Request.Context(), actor, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
