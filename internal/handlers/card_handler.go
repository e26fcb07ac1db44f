package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// CardHandler handles the credit card bucket.
type CardHandler struct {
	cardService services.CardServicer
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService services.CardServicer) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// SettleResponse reports how many card transactions were marked paid.
type SettleResponse struct {
	Settled int64 `json:"settled"`
}

// GetOpenBucket lists every pending card transaction
// @Summary     Open card bucket
// @Description Pending transactions of the card category across all months, with their total
// @Tags        card
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CardBucket "Open bucket"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /card [get]
func (h *CardHandler) GetOpenBucket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bucket, err := h.cardService.GetOpenBucket(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bucket)
}

// SettleBucket pays the card bill
// @Summary     Settle card bucket
// @Description Mark every pending card transaction as paid
// @Tags        card
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SettleResponse "Number of settled transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /card/settle [post]
func (h *CardHandler) SettleBucket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settled, err := h.cardService.SettleBucket(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SettleResponse{Settled: settled})
}
