package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// PiggyBankHandler handles piggy bank requests.
type PiggyBankHandler struct {
	piggyBankService services.PiggyBankServicer
}

// NewPiggyBankHandler creates a new PiggyBankHandler.
func NewPiggyBankHandler(piggyBankService services.PiggyBankServicer) *PiggyBankHandler {
	return &PiggyBankHandler{piggyBankService: piggyBankService}
}

// CreatePiggyBankRequest represents the payload for creating a piggy bank
type CreatePiggyBankRequest struct {
	Name   string          `json:"name" binding:"required,max=100"`
	Target decimal.Decimal `json:"target" binding:"gte=0" swaggertype:"string" example:"5000.00"`
	Color  string          `json:"color" binding:"max=50"`
}

// UpdatePiggyBankRequest represents the payload for updating a piggy bank
type UpdatePiggyBankRequest struct {
	Name   string          `json:"name" binding:"required,max=100"`
	Target decimal.Decimal `json:"target" binding:"gte=0" swaggertype:"string" example:"5000.00"`
}

// MovePiggyBankRequest represents a deposit or withdrawal
type MovePiggyBankRequest struct {
	Amount    decimal.Decimal      `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"100.00"`
	Direction models.MoveDirection `json:"direction" binding:"required,move_direction" enums:"deposit,withdraw"`
}

// ListPiggyBanks lists the caller's piggy banks
// @Summary     List piggy banks
// @Tags        piggy-banks
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.PiggyBank "Piggy banks, newest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /piggy-banks [get]
func (h *PiggyBankHandler) ListPiggyBanks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	banks, err := h.piggyBankService.ListPiggyBanks(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"piggy_banks": banks})
}

// CreatePiggyBank creates an empty piggy bank
// @Summary     Create a piggy bank
// @Tags        piggy-banks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePiggyBankRequest true "Piggy bank details"
// @Success     201 {object} models.PiggyBank "Piggy bank created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /piggy-banks [post]
func (h *PiggyBankHandler) CreatePiggyBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePiggyBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bank, err := h.piggyBankService.CreatePiggyBank(c.Request.Context(), userID, req.Name, req.Target, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"piggy_bank": bank})
}

// MovePiggyBank deposits into or withdraws from a piggy bank
// @Summary     Move money
// @Description Deposit from the main balance or withdraw back to it; each movement records a paid transaction
// @Tags        piggy-banks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Piggy bank ID"
// @Param       request body MovePiggyBankRequest true "Movement"
// @Success     200 {object} models.PiggyBank "Updated piggy bank"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Piggy bank not found"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /piggy-banks/{id}/move [post]
func (h *PiggyBankHandler) MovePiggyBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bankID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MovePiggyBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bank, err := h.piggyBankService.MovePiggyBank(c.Request.Context(), userID, bankID, req.Amount, req.Direction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"piggy_bank": bank})
}

// UpdatePiggyBank changes a piggy bank's name and target
// @Summary     Update a piggy bank
// @Tags        piggy-banks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Piggy bank ID"
// @Param       request body UpdatePiggyBankRequest true "Piggy bank details"
// @Success     200 {object} models.PiggyBank "Updated piggy bank"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Piggy bank not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /piggy-banks/{id} [put]
func (h *PiggyBankHandler) UpdatePiggyBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bankID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePiggyBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bank, err := h.piggyBankService.UpdatePiggyBank(c.Request.Context(), userID, bankID, req.Name, req.Target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"piggy_bank": bank})
}

// DeletePiggyBank removes a piggy bank, refunding its balance
// @Summary     Delete a piggy bank
// @Description Remaining balance is returned to the main ledger as a paid income
// @Tags        piggy-banks
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Piggy bank ID"
// @Success     200 {object} MessageResponse "Piggy bank deleted"
// @Failure     400 {object} ErrorResponse "Invalid piggy bank ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Piggy bank not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /piggy-banks/{id} [delete]
func (h *PiggyBankHandler) DeletePiggyBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bankID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.piggyBankService.DeletePiggyBank(c.Request.Context(), userID, bankID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Piggy bank deleted successfully"})
}
