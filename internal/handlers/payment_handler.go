package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"settlement-service/internal/services"
	"settlement-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Settlement *services.SettlementService
	Commission *services.CommissionService
	Plans      *services.PlanService
}

func NewPaymentHandler(settlement *services.SettlementService, commission *services.CommissionService, plans *services.PlanService) *PaymentHandler {
	return &PaymentHandler{Settlement: settlement, Commission: commission, Plans: plans}
}

type CreatePaymentRequest struct {
	PayerId     string  `json:"payer_id" binding:"required"`
	PlanId      string  `json:"plan_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	ExternalRef string  `json:"external_ref" binding:"required"`
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	payment, err := h.Settlement.CreatePayment(services.CreatePaymentDTO{
		PayerId:     req.PayerId,
		PlanId:      req.PlanId,
		Amount:      req.Amount,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(payment, "Payment submitted"))
}

type DecisionRequest struct {
	Notes string `json:"notes"`
}

func (h *PaymentHandler) ApprovePayment(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	investment, err := h.Settlement.Approve(c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(investment, "Payment approved"))
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	payment, err := h.Settlement.Reject(c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(payment, "Payment rejected"))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.Settlement.GetPayment(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(payment, "Payment fetched"))
}

func (h *PaymentHandler) PendingPayments(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Settlement.PendingPayments(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) UserPayments(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Settlement.UserPayments(c.Param("userId"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PaymentAwards lists the commission awards, both schemes, produced by one
// payment.
func (h *PaymentHandler) PaymentAwards(c *gin.Context) {
	awards, err := h.Commission.AwardsForPayment(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(awards, "Awards fetched"))
}

func (h *PaymentHandler) ListPlans(c *gin.Context) {
	plans, err := h.Plans.ActivePlans()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(plans, "Plans fetched"))
}

func (h *PaymentHandler) GetPlan(c *gin.Context) {
	plan, err := h.Plans.GetPlan(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(plan, "Plan fetched"))
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return page, limit
}

// respondError maps service sentinel errors onto HTTP statuses. Expected
// outcomes (validation, already processed) are not server faults.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse(err.Error(), nil, http.StatusNotFound))
	case errors.Is(err, services.ErrNotPending), errors.Is(err, services.ErrEntryNotPending):
		c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error(), nil, http.StatusConflict))
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, common.NewErrorResponse(err.Error(), nil, http.StatusUnprocessableEntity))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error(), nil, http.StatusInternalServerError))
	}
}
