package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/core/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/handlers"
	"github.com/dbbank/bank_backend/internal/platform/config"
	"github.com/dbbank/bank_backend/internal/repositories/memory"
	"github.com/dbbank/bank_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const adminKey = "test-admin-key"

// --- Mock SweepTrigger ---
type MockSweepTrigger struct {
	mock.Mock
}

func (m *MockSweepTrigger) RunNow(ctx context.Context, now time.Time, retryCeiling int) (domain.SweepSummary, domain.SweepSummary, error) {
	args := m.Called(ctx, now, retryCeiling)
	return args.Get(0).(domain.SweepSummary), args.Get(1).(domain.SweepSummary), args.Error(2)
}

var _ handlers.SweepTrigger = (*MockSweepTrigger)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	store   *memory.Store
	trigger *MockSweepTrigger
	cfg     *config.Config
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	hash, err := utils.HashPassword(adminKey)
	suite.Require().NoError(err)

	suite.cfg = config.Default()
	suite.cfg.JWTSecret = "test-secret-key-that-is-long-enough"
	suite.cfg.JWTIssuer = "bank-test"
	suite.cfg.AdminAPIKeyHash = hash
	suite.cfg.IsProduction = true

	suite.store = memory.NewStore()
	container := services.NewServiceContainer(suite.cfg, memory.NewRepositoryProvider(suite.store), nil)
	suite.trigger = new(MockSweepTrigger)

	suite.router = gin.New()
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, suite.cfg, container, suite.trigger))

	suite.seedAccount("100-1", 1, 500)
	suite.seedAccount("100-2", 2, 0)
}

func (suite *HandlerTestSuite) seedAccount(number string, owner int64, balance int64) {
	now := time.Now().UTC()
	suite.Require().NoError(suite.store.SaveAccount(context.Background(), domain.Account{
		AccountNumber: number,
		UserID:        owner,
		AccountType:   domain.AccountNormal,
		Balance:       decimal.NewFromInt(balance),
		AuditFields:   domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}))
}

func (suite *HandlerTestSuite) balance(number string) decimal.Decimal {
	acc, err := suite.store.FindAccountByNumber(context.Background(), number)
	suite.Require().NoError(err)
	return acc.Balance
}

// generateTestToken creates a signed JWT for userID.
func (suite *HandlerTestSuite) generateTestToken(userID int64) string {
	claims := jwt.RegisteredClaims{
		Issuer:    suite.cfg.JWTIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.cfg.JWTSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) asUser(userID int64, method, path string, body any) *httptest.ResponseRecorder {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	return suite.do(method, path, body, h)
}

func (suite *HandlerTestSuite) asAdmin(method, path string, body any) *httptest.ResponseRecorder {
	h := http.Header{}
	h.Set("x-api-key", adminKey)
	return suite.do(method, path, body, h)
}

func decodeBody[T any](suite *HandlerTestSuite, w *httptest.ResponseRecorder) T {
	var v T
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (suite *HandlerTestSuite) createDailySchedule(userID int64, from, to string, amount int64) dto.ScheduleResponse {
	w := suite.asUser(userID, http.MethodPost, "/api/v1/schedules", gin.H{
		"fromAccountNumber": from,
		"toAccountNumber":   to,
		"amount":            amount,
		"frequency":         "DAILY",
		"startDate":         time.Now().UTC().Format(dto.DateLayout),
		"memo":              "allowance",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[dto.ScheduleResponse](suite, w)
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestTransfer_RequiresToken() {
	w := suite.do(http.MethodPost, "/api/v1/transfers", gin.H{"fromAccountNumber": "100-1", "toAccountNumber": "100-2", "amount": 10}, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestTransfer_Success() {
	w := suite.asUser(1, http.MethodPost, "/api/v1/transfers", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-2",
		"amount":            "120.50",
		"memo":              "rent",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[dto.TransactionResponse](suite, w)
	suite.Equal(domain.TransactionTransfer, resp.Type)
	suite.True(resp.Amount.Equal(decimal.RequireFromString("120.50")))
	suite.True(suite.balance("100-1").Equal(decimal.RequireFromString("379.50")))
	suite.True(suite.balance("100-2").Equal(decimal.RequireFromString("120.50")))
}

func (suite *HandlerTestSuite) TestTransfer_InsufficientBalanceHasReason() {
	w := suite.asUser(1, http.MethodPost, "/api/v1/transfers", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-2",
		"amount":            900,
	})
	suite.Equal(http.StatusConflict, w.Code)
	body := decodeBody[map[string]string](suite, w)
	suite.Equal("INSUFFICIENT_BALANCE", body["reason"])
	suite.True(suite.balance("100-1").Equal(decimal.NewFromInt(500)))
}

func (suite *HandlerTestSuite) TestTransfer_SameAccountRejectedByBinding() {
	w := suite.asUser(1, http.MethodPost, "/api/v1/transfers", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-1",
		"amount":            10,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestWithdraw_ForeignAccountForbidden() {
	w := suite.asUser(2, http.MethodPost, "/api/v1/transfers/withdraw", gin.H{
		"fromAccountNumber": "100-1",
		"amount":            10,
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeposit_UnknownAccount() {
	w := suite.asUser(1, http.MethodPost, "/api/v1/transfers/deposit", gin.H{
		"toAccountNumber": "404-0",
		"amount":          10,
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDailyLimit_BlocksAndRaisesAlert() {
	w := suite.asAdmin(http.MethodPost, "/api/v1/admin/transfer-limits", gin.H{
		"accountNumber":       "100-1",
		"dailyLimit":          100,
		"perTransactionLimit": 0,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.asUser(1, http.MethodPost, "/api/v1/transfers", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-2",
		"amount":            150,
	})
	suite.Equal(http.StatusConflict, w.Code)
	body := decodeBody[map[string]string](suite, w)
	suite.Equal("DAILY_LIMIT_EXCEEDED", body["reason"])

	w = suite.asAdmin(http.MethodGet, "/api/v1/admin/accounts/100-1/alerts", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	alerts := decodeBody[[]domain.AbnTransfer](suite, w)
	suite.Require().Len(alerts, 1)
	suite.Equal(domain.RuleDailyTotalExceeded, alerts[0].RuleCode)
	suite.Nil(alerts[0].TransactionID)
}

func (suite *HandlerTestSuite) TestAdmin_RequiresKey() {
	w := suite.do(http.MethodGet, "/api/v1/admin/failure-reasons", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	h := http.Header{}
	h.Set("x-api-key", "wrong")
	w = suite.do(http.MethodGet, "/api/v1/admin/failure-reasons", nil, h)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.asAdmin(http.MethodGet, "/api/v1/admin/failure-reasons", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(decodeBody[[]domain.TransferFailureReason](suite, w), 4)
}

func (suite *HandlerTestSuite) TestAdmin_SweepPassesInstantAndCeiling() {
	now := time.Date(2024, 5, 16, 9, 30, 0, 0, time.UTC)
	sweep := domain.SweepSummary{Selected: 2, Succeeded: 1, Failed: 1}
	retry := domain.SweepSummary{Selected: 1, Skipped: 1}
	suite.trigger.On("RunNow", mock.Anything, mock.MatchedBy(now.Equal), 1).Return(sweep, retry, nil).Once()

	w := suite.asAdmin(http.MethodPost, "/api/v1/admin/sweep", gin.H{"now": now, "retryCeiling": 1})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[dto.SweepResponse](suite, w)
	suite.Equal(sweep, resp.Sweep)
	suite.Equal(retry, resp.Retry)
	suite.trigger.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestAdmin_SweepWithoutBodyKeepsStoredCeiling() {
	suite.trigger.On("RunNow", mock.Anything, mock.Anything, -1).
		Return(domain.SweepSummary{}, domain.SweepSummary{}, nil).Once()

	w := suite.asAdmin(http.MethodPost, "/api/v1/admin/sweep", nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.trigger.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateSchedule_InvalidRecurrenceRule() {
	w := suite.asUser(1, http.MethodPost, "/api/v1/schedules", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-2",
		"amount":            10,
		"frequency":         "CUSTOM",
		"recurrenceRule":    "FREQ=YEARLY",
		"startDate":         "2024-05-15",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateSchedule_DuplicatePairConflicts() {
	suite.createDailySchedule(1, "100-1", "100-2", 10)

	w := suite.asUser(1, http.MethodPost, "/api/v1/schedules", gin.H{
		"fromAccountNumber": "100-1",
		"toAccountNumber":   "100-2",
		"amount":            20,
		"frequency":         "WEEKLY",
		"startDate":         time.Now().UTC().Format(dto.DateLayout),
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestSchedule_Lifecycle() {
	created := suite.createDailySchedule(1, "100-1", "100-2", 25)
	base := fmt.Sprintf("/api/v1/schedules/%d", created.ScheduleID)
	suite.Equal(domain.ScheduleActive, created.Status)
	suite.NotNil(created.NextRunAt)

	w := suite.asUser(1, http.MethodPost, base+"/pause", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(domain.SchedulePaused, decodeBody[dto.ScheduleResponse](suite, w).Status)

	w = suite.asUser(1, http.MethodPost, base+"/run", nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.asUser(1, http.MethodPost, base+"/resume", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(domain.ScheduleActive, decodeBody[dto.ScheduleResponse](suite, w).Status)

	w = suite.asUser(1, http.MethodPost, base+"/run", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	run := decodeBody[dto.RunResponse](suite, w)
	suite.Equal(domain.RunSuccess, run.Result)
	suite.NotNil(run.TransactionID)
	suite.True(suite.balance("100-2").Equal(decimal.NewFromInt(25)))

	w = suite.asUser(1, http.MethodGet, base+"/runs", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Len(decodeBody[dto.ListRunsResponse](suite, w).Runs, 1)

	w = suite.asUser(1, http.MethodPost, base+"/cancel", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(domain.ScheduleCanceled, decodeBody[dto.ScheduleResponse](suite, w).Status)

	w = suite.asUser(1, http.MethodPost, base+"/cancel", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestSchedule_RunFailureIsRecorded() {
	created := suite.createDailySchedule(1, "100-1", "100-2", 900)
	base := fmt.Sprintf("/api/v1/schedules/%d", created.ScheduleID)

	w := suite.asUser(1, http.MethodPost, base+"/run", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	run := decodeBody[dto.RunResponse](suite, w)
	suite.Equal(domain.RunError, run.Result)
	suite.Require().NotNil(run.FailureReasonCode)
	suite.Equal(domain.FailureInsufficientFunds, *run.FailureReasonCode)
	suite.NotNil(run.NextRetryAt)

	w = suite.asUser(1, http.MethodGet, base+"/failures", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(decodeBody[[]dto.RunResponse](suite, w), 1)
}

func (suite *HandlerTestSuite) TestSchedule_ForeignUserForbidden() {
	created := suite.createDailySchedule(1, "100-1", "100-2", 10)
	base := fmt.Sprintf("/api/v1/schedules/%d", created.ScheduleID)

	suite.Equal(http.StatusForbidden, suite.asUser(2, http.MethodGet, base, nil).Code)
	suite.Equal(http.StatusForbidden, suite.asUser(2, http.MethodPost, base+"/pause", nil).Code)
	suite.Equal(http.StatusForbidden, suite.asUser(2, http.MethodGet, base+"/runs", nil).Code)
	suite.Equal(http.StatusForbidden, suite.asUser(2, http.MethodGet, "/api/v1/accounts/100-1/schedules", nil).Code)
}

func (suite *HandlerTestSuite) TestSchedule_BadIDAndMissing() {
	suite.Equal(http.StatusBadRequest, suite.asUser(1, http.MethodGet, "/api/v1/schedules/abc", nil).Code)
	suite.Equal(http.StatusNotFound, suite.asUser(1, http.MethodGet, "/api/v1/schedules/999", nil).Code)
}

func (suite *HandlerTestSuite) TestListSchedules_ByStatus() {
	created := suite.createDailySchedule(1, "100-1", "100-2", 10)
	suite.Require().Equal(http.StatusOK,
		suite.asUser(1, http.MethodPost, fmt.Sprintf("/api/v1/schedules/%d/pause", created.ScheduleID), nil).Code)

	w := suite.asUser(1, http.MethodGet, "/api/v1/schedules?status=PAUSED", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Len(decodeBody[dto.ListSchedulesResponse](suite, w).Schedules, 1)

	w = suite.asUser(1, http.MethodGet, "/api/v1/schedules?status=ACTIVE", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(decodeBody[dto.ListSchedulesResponse](suite, w).Schedules)

	suite.Equal(http.StatusBadRequest, suite.asUser(1, http.MethodGet, "/api/v1/schedules?status=BOGUS", nil).Code)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
