package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/middleware"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/pagination"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// --- mock user service ---

type mockUserService struct {
	createUserFn   func(email, password, name string) (*models.User, error)
	getUserByIDFn  func(id uint) (*models.User, error)
	attemptLoginFn func(email, password string) (*models.User, error)
	setShareLinkFn func(userID uint, link string) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, name string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, name)
	}
	return &models.User{Base: models.Base{ID: 1}, Email: email, Name: name}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, Email: "test@example.com"}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{Base: models.Base{ID: 1}, Email: email}, nil
}

func (m *mockUserService) SetShareLink(_ context.Context, userID uint, link string) (*models.User, error) {
	if m.setShareLinkFn != nil {
		return m.setShareLinkFn(userID, link)
	}
	return &models.User{Base: models.Base{ID: userID}, ShareLink: &link}, nil
}

func (m *mockUserService) ListActiveUserIDs(context.Context) ([]uint, error) {
	return nil, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

// --- mock transaction service ---

type mockTransactionService struct {
	createFn       func(userID uint, in services.TransactionInput) (*models.Transaction, error)
	updateFn       func(userID, transactionID uint, in services.TransactionInput) (*models.Transaction, error)
	deleteFn       func(userID, transactionID uint) error
	getByIDFn      func(userID, transactionID uint) (*models.Transaction, error)
	listFn         func(userID uint, filter services.TransactionFilter) ([]models.Transaction, error)
	listCategoryFn func(userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID uint, in services.TransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, transactionID uint, in services.TransactionInput) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, transactionID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, userID, transactionID uint) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ListTransactions(_ context.Context, userID uint, filter services.TransactionFilter) ([]models.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(userID, filter)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) ListCategoryTransactions(_ context.Context, userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.listCategoryFn != nil {
		return m.listCategoryFn(userID, categoryID, page)
	}
	page.Defaults()
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

// --- mock category service ---

type mockCategoryService struct {
	createFn func(userID uint, name string, categoryType models.CategoryType) (*models.Category, error)
	listFn   func(userID uint, categoryType *models.CategoryType) ([]models.Category, error)
	updateFn func(userID, categoryID uint, name string, categoryType models.CategoryType) (*models.Category, error)
	deleteFn func(userID, categoryID uint) error
}

func (m *mockCategoryService) CreateCategory(_ context.Context, userID uint, name string, categoryType models.CategoryType) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, categoryType)
	}
	return &models.Category{Name: name, Type: categoryType}, nil
}

func (m *mockCategoryService) ListCategories(_ context.Context, userID uint, categoryType *models.CategoryType) ([]models.Category, error) {
	if m.listFn != nil {
		return m.listFn(userID, categoryType)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, _, categoryID uint) (*models.Category, error) {
	return &models.Category{Base: models.Base{ID: categoryID}}, nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, categoryID uint, name string, categoryType models.CategoryType) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, categoryID, name, categoryType)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, Name: name, Type: categoryType}, nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, userID, categoryID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

// --- mock summary service ---

type mockSummaryService struct {
	getSummaryFn   func(userID uint, month, year int) (*services.Summary, error)
	getAnnualFn    func(userID uint, year int) ([]services.MonthlyTotals, error)
	getDashboardFn func(userID uint, month, year int) (*services.Dashboard, error)
}

func (m *mockSummaryService) GetSummary(_ context.Context, userID uint, month, year int) (*services.Summary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, month, year)
	}
	return &services.Summary{Month: month, Year: year}, nil
}

func (m *mockSummaryService) GetAnnualSeries(_ context.Context, userID uint, year int) ([]services.MonthlyTotals, error) {
	if m.getAnnualFn != nil {
		return m.getAnnualFn(userID, year)
	}
	return []services.MonthlyTotals{}, nil
}

func (m *mockSummaryService) OverallBalance(context.Context, uint) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockSummaryService) GetDashboard(_ context.Context, userID uint, month, year int) (*services.Dashboard, error) {
	if m.getDashboardFn != nil {
		return m.getDashboardFn(userID, month, year)
	}
	return &services.Dashboard{Summary: &services.Summary{Month: month, Year: year}}, nil
}

var _ services.SummaryServicer = (*mockSummaryService)(nil)

// --- mock card service ---

type mockCardService struct {
	getOpenBucketFn func(userID uint) (*services.CardBucket, error)
	settleBucketFn  func(userID uint) (int64, error)
}

func (m *mockCardService) GetOpenBucket(_ context.Context, userID uint) (*services.CardBucket, error) {
	if m.getOpenBucketFn != nil {
		return m.getOpenBucketFn(userID)
	}
	return &services.CardBucket{Items: []models.Transaction{}}, nil
}

func (m *mockCardService) SettleBucket(_ context.Context, userID uint) (int64, error) {
	if m.settleBucketFn != nil {
		return m.settleBucketFn(userID)
	}
	return 0, nil
}

var _ services.CardServicer = (*mockCardService)(nil)

// --- mock piggy bank service ---

type mockPiggyBankService struct {
	listFn   func(userID uint) ([]models.PiggyBank, error)
	createFn func(userID uint, name string, target decimal.Decimal, color string) (*models.PiggyBank, error)
	moveFn   func(userID, bankID uint, amount decimal.Decimal, direction models.MoveDirection) (*models.PiggyBank, error)
	updateFn func(userID, bankID uint, name string, target decimal.Decimal) (*models.PiggyBank, error)
	deleteFn func(userID, bankID uint) error
}

func (m *mockPiggyBankService) ListPiggyBanks(_ context.Context, userID uint) ([]models.PiggyBank, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return []models.PiggyBank{}, nil
}

func (m *mockPiggyBankService) CreatePiggyBank(_ context.Context, userID uint, name string, target decimal.Decimal, color string) (*models.PiggyBank, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, target, color)
	}
	return &models.PiggyBank{Name: name, Target: target}, nil
}

func (m *mockPiggyBankService) MovePiggyBank(_ context.Context, userID, bankID uint, amount decimal.Decimal, direction models.MoveDirection) (*models.PiggyBank, error) {
	if m.moveFn != nil {
		return m.moveFn(userID, bankID, amount, direction)
	}
	return &models.PiggyBank{Base: models.Base{ID: bankID}}, nil
}

func (m *mockPiggyBankService) UpdatePiggyBank(_ context.Context, userID, bankID uint, name string, target decimal.Decimal) (*models.PiggyBank, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, bankID, name, target)
	}
	return &models.PiggyBank{Base: models.Base{ID: bankID}, Name: name, Target: target}, nil
}

func (m *mockPiggyBankService) DeletePiggyBank(_ context.Context, userID, bankID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, bankID)
	}
	return nil
}

var _ services.PiggyBankServicer = (*mockPiggyBankService)(nil)

// --- mock recurring service ---

type mockRecurringService struct {
	listFn    func(userID uint) ([]models.RecurringRule, error)
	createFn  func(userID uint, in services.RecurringRuleInput) (*models.RecurringRule, error)
	deleteFn  func(userID, ruleID uint) error
	processFn func(userID uint, today time.Time) (*services.ProcessReport, error)
}

func (m *mockRecurringService) ListRecurringRules(_ context.Context, userID uint) ([]models.RecurringRule, error) {
	if m.listFn != nil {
		return m.listFn(userID)
	}
	return []models.RecurringRule{}, nil
}

func (m *mockRecurringService) CreateRecurringRule(_ context.Context, userID uint, in services.RecurringRuleInput) (*models.RecurringRule, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.RecurringRule{Description: in.Description}, nil
}

func (m *mockRecurringService) DeleteRecurringRule(_ context.Context, userID, ruleID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, ruleID)
	}
	return nil
}

func (m *mockRecurringService) ProcessDueRules(_ context.Context, userID uint, today time.Time) (*services.ProcessReport, error) {
	if m.processFn != nil {
		return m.processFn(userID, today)
	}
	return &services.ProcessReport{Failures: []services.RuleFailure{}}, nil
}

var _ services.RecurringServicer = (*mockRecurringService)(nil)

var errSecretDriver = errors.New("pq: relation \"transactions\" does not exist")
