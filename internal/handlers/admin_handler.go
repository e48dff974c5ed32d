package handlers

import (
	"net/http"
	"time"

	"settlement-service/internal/services"
	"settlement-service/pkg/common"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes manual triggers for the accrual sweeps so operators
// can run them outside the cron cadence.
type AdminHandler struct {
	Accrual *services.AccrualService
}

func NewAdminHandler(accrual *services.AccrualService) *AdminHandler {
	return &AdminHandler{Accrual: accrual}
}

func (h *AdminHandler) RunInterestSweep(c *gin.Context) {
	processed, err := h.Accrual.RunInterestSweep(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"processed": processed}, "Interest sweep completed"))
}

func (h *AdminHandler) RunMaturitySweep(c *gin.Context) {
	completed, err := h.Accrual.RunMaturitySweep(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"completed": completed}, "Maturity sweep completed"))
}
