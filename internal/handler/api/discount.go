package api

import (
	"net/http"

	reqdto "coach-booking/internal/handler/dto/request"
	resdto "coach-booking/internal/handler/dto/response"
	"coach-booking/internal/handler/httperr"
	"coach-booking/internal/handler/middleware"
	"coach-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DiscountHandler struct {
	cmds commands.DiscountCommands
}

func NewDiscountHandler(cmds commands.DiscountCommands) *DiscountHandler {
	return &DiscountHandler{cmds: cmds}
}

// @Summary Create discount code
// @Tags discounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateDiscountRequest true "Discount"
// @Success 201 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /discounts [post]
func (h *DiscountHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	d, err := h.cmds.Create(c.Request.Context(), actor, commands.CreateDiscountInput{
		Code:     req.Code,
		Amount:   req.Amount,
		Expiry:   req.Expiry,
		MaxUsage: req.MaxUsage,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromDiscount(d))
}

// @Summary Validate discount code
// @Tags discounts
// @Produce json
// @Security BearerAuth
// @Param code query string true "Code"
// @Param coachId query string false "Coach the code must belong to"
// @Success 200 {object} resdto.DiscountValidationResponse
// @Failure 400 {object} httperr.Response
// @Router /discounts/validate [get]
func (h *DiscountHandler) Validate(c *gin.Context) {
	var q reqdto.ValidateDiscountQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	var coachID *uuid.UUID
	if q.CoachID != "" {
		id := uuid.MustParse(q.CoachID)
		coachID = &id
	}
	d, err := h.cmds.Validate(c.Request.Context(), q.Code, coachID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromValidDiscount(d))
}

// @Summary Update discount code
// @Tags discounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Code"
// @Param request body reqdto.UpdateDiscountRequest true "Changes"
// @Success 200 {object} resdto.DiscountResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /discounts/{code} [patch]
func (h *DiscountHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	d, err := h.cmds.Update(c.Request.Context(), actor, c.Param("code"), commands.UpdateDiscountInput{
		Amount:   req.Amount,
		Expiry:   req.Expiry,
		MaxUsage: req.MaxUsage,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDiscount(d))
}

// @Summary Deactivate discount code
// @Tags discounts
// @Security BearerAuth
// @Param code path string true "Code"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /discounts/{code} [delete]
func (h *DiscountHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), actor, c.Param("code")); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
