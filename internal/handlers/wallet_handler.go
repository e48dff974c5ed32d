package handlers

import (
	"net/http"

	"settlement-service/internal/services"
	"settlement-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	Ledger *services.LedgerService
}

func NewWalletHandler(ledger *services.LedgerService) *WalletHandler {
	return &WalletHandler{Ledger: ledger}
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.Param("userId")

	wallet, err := h.Ledger.GetWallet(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	page, limit := pageParams(c)
	history, err := h.Ledger.Transactions(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"wallet":       wallet,
		"transactions": history,
	}, "Wallet fetched"))
}

// ReconcileWallet is a maintenance operation: it recomputes the balance
// from completed history and reports any drift it corrected.
func (h *WalletHandler) ReconcileWallet(c *gin.Context) {
	result, err := h.Ledger.Reconcile(c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, "Wallet reconciled"))
}
