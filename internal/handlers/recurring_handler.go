package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// RecurringHandler handles recurring rule requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	now              func() time.Time
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, now: time.Now}
}

// CreateRecurringRuleRequest represents the payload for creating a recurring rule.
// A nil parcel_limit repeats forever.
type CreateRecurringRuleRequest struct {
	Description string                 `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal        `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"99.90"`
	DayOfMonth  int                    `json:"day_of_month" binding:"required,min=1,max=31"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	CategoryID  *uint                  `json:"category_id"`
	ParcelLimit *int                   `json:"parcel_limit" binding:"omitempty,min=1"`
}

// ListRecurringRules lists the caller's rules
// @Summary     List recurring rules
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.RecurringRule "Rules ordered by day of month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-rules [get]
func (h *RecurringHandler) ListRecurringRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.recurringService.ListRecurringRules(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_rules": rules})
}

// CreateRecurringRule stores a new rule
// @Summary     Create a recurring rule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRuleRequest true "Rule details"
// @Success     201 {object} models.RecurringRule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-rules [post]
func (h *RecurringHandler) CreateRecurringRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	rule, err := h.recurringService.CreateRecurringRule(c.Request.Context(), userID, services.RecurringRuleInput{
		Description: req.Description,
		Amount:      req.Amount,
		DayOfMonth:  req.DayOfMonth,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		ParcelLimit: req.ParcelLimit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_rule": rule})
}

// DeleteRecurringRule removes a rule
// @Summary     Delete a recurring rule
// @Description Generated transactions are kept without the rule reference
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-rules/{id} [delete]
func (h *RecurringHandler) DeleteRecurringRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringRule(c.Request.Context(), userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring rule deleted successfully"})
}

// ProcessDueRules runs the recurring pass for the current month
// @Summary     Process recurring rules
// @Description Generate this month's pending transaction for every due rule
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ProcessReport "Pass report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-rules/process [post]
func (h *RecurringHandler) ProcessDueRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.recurringService.ProcessDueRules(c.Request.Context(), userID, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
