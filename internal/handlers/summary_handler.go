package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/leoomartinelli/painel-financeiro-martinelli/internal/errors"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// SummaryHandler serves the balance breakdowns.
type SummaryHandler struct {
	summaryService services.SummaryServicer
	now            func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, now: time.Now}
}

// AnnualResponse represents the paid totals of each month of a year.
type AnnualResponse struct {
	Year   int                      `json:"year"`
	Months []services.MonthlyTotals `json:"months"`
}

// GetSummary handles the monthly balance breakdown
// @Summary     Monthly summary
// @Description Realized and pending totals of a month plus the current and projected balance
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := parseMonthYear(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.GetSummary(c.Request.Context(), userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetAnnualSeries handles the twelve-month chart data
// @Summary     Annual series
// @Description Paid income and expense of every month of a year
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (default current)"
// @Success     200 {object} AnnualResponse "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary/annual [get]
func (h *SummaryHandler) GetAnnualSeries(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year := h.now().Year()
	if v := c.Query("year"); v != "" {
		y, convErr := strconv.Atoi(v)
		if convErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		year = y
	}

	months, err := h.summaryService.GetAnnualSeries(c.Request.Context(), userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnnualResponse{Year: year, Months: months})
}

// GetDashboard handles the overview page
// @Summary     Dashboard
// @Description Processes due recurring rules, then returns the summary, the month's transactions and the annual series
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month 1-12 (default current)"
// @Param       year  query int false "Year (default current)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *SummaryHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := parseMonthYear(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.summaryService.GetDashboard(c.Request.Context(), userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
