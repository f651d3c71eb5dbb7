package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
	"github.com/shenikar/occurrence_reporting_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerMocks struct {
	occurrences *mocks.MockOccurrenceService
	users       *mocks.MockUserService
	vehicles    *mocks.MockVehicleService
	audit       *mocks.MockAuditService
	stats       *mocks.MockStatisticsService
}

// newTestHandler builds a Handler with mocked services and a test router.
func newTestHandler(t *testing.T) (handlerMocks, *auth.TokenManager, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := handlerMocks{
		occurrences: mocks.NewMockOccurrenceService(ctrl),
		users:       mocks.NewMockUserService(ctrl),
		vehicles:    mocks.NewMockVehicleService(ctrl),
		audit:       mocks.NewMockAuditService(ctrl),
		stats:       mocks.NewMockStatisticsService(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Silence logs during tests

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewHandler(m.occurrences, m.users, m.vehicles, m.audit, m.stats, tokens, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return m, tokens, router
}

// makeRequest performs an HTTP request against the test router.
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, p auth.Principal) map[string]string {
	token, err := tokens.Issue(p)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminAuth(t *testing.T, tokens *auth.TokenManager) (auth.Principal, map[string]string) {
	p := auth.Principal{ID: uuid.New(), Role: models.RoleAdmin}
	return p, bearerFor(t, tokens, p)
}

func TestAuthMiddleware_MissingTokenRejected(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/occurrences", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedTokenRejected(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/occurrences", nil, map[string]string{"Authorization": "Bearer garbage"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthCheck_IsPublic(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Success(t *testing.T) {
	m, _, router := newTestHandler(t)

	user := &models.User{ID: uuid.New(), Email: "ana@example.com", Role: models.RoleOperator}
	m.users.EXPECT().
		Login(gomock.Any(), "ana@example.com", "secret123").
		Return("signed-token", user, nil).
		Times(1)

	body, _ := json.Marshal(LoginRequest{Email: "ana@example.com", Password: "secret123"})
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBuffer(body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "signed-token", resp.Data.Token)
}

func TestLogin_BadCredentialsForbidden(t *testing.T) {
	m, _, router := newTestHandler(t)

	m.users.EXPECT().
		Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil, fmt.Errorf("%w: invalid credentials", service.ErrPermissionDenied)).
		Times(1)

	body, _ := json.Marshal(LoginRequest{Email: "ana@example.com", Password: "wrong"})
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBuffer(body))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_InvalidBodyRejected(t *testing.T) {
	_, _, router := newTestHandler(t)

	body, _ := json.Marshal(LoginRequest{Email: "not-an-email", Password: "secret"})
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBuffer(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOccurrence_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	reqBody := CreateOccurrenceRequest{
		Type:           "fire",
		Municipality:   "Niteroi",
		Address:        "Rua A, 123",
		OccurrenceDate: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		ActivationDate: time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC),
		Description:    "kitchen fire",
	}

	created := &models.Occurrence{
		ID:           uuid.New(),
		Type:         models.TypeFire,
		Status:       models.StatusOpen,
		Municipality: "Niteroi",
		CreatedBy:    p.ID,
	}

	m.occurrences.EXPECT().
		Create(gomock.Any(), p, gomock.Any()).
		Return(created, nil).
		Times(1)

	body, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/occurrences", bytes.NewBuffer(body), headers)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    models.Occurrence `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.Data.ID)
}

func TestCreateOccurrence_UnknownTypeRejectedByValidator(t *testing.T) {
	_, tokens, router := newTestHandler(t)
	_, headers := adminAuth(t, tokens)

	reqBody := CreateOccurrenceRequest{
		Type:           "earthquake",
		Municipality:   "Niteroi",
		Address:        "Rua A, 123",
		OccurrenceDate: time.Now(),
		ActivationDate: time.Now(),
		Description:    "shaking",
	}

	body, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/occurrences", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOccurrences_ReturnsStatusCountsAndPagination(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	list := &models.OccurrenceList{
		Items:        []*models.Occurrence{{ID: uuid.New()}},
		StatusCounts: models.StatusCounts{Open: 7, Closed: 14, Total: 21},
		Page:         2,
		Limit:        10,
		Total:        21,
	}

	m.occurrences.EXPECT().
		List(gomock.Any(), p, gomock.Any()).
		Return(list, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences?page=2&limit=10", nil, headers)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success      bool                `json:"success"`
		StatusCounts models.StatusCounts `json:"statusCounts"`
		Pagination   PaginationMeta      `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 21, resp.StatusCounts.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.TotalPages, "21 items at 10 per page is 3 pages")
}

func TestListOccurrences_FilterIsPassedThrough(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	var seenFilter models.OccurrenceFilter
	m.occurrences.EXPECT().
		List(gomock.Any(), p, gomock.Any()).
		DoAndReturn(func(_ any, _ auth.Principal, filter models.OccurrenceFilter) (*models.OccurrenceList, error) {
			seenFilter = filter
			return &models.OccurrenceList{Page: 1, Limit: 20}, nil
		}).Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences?status=in-progress&municipality=Niteroi&endDate=2024-01-16", nil, headers)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seenFilter.Status)
	assert.Equal(t, models.StatusInProgress, *seenFilter.Status)
	assert.Equal(t, "Niteroi", seenFilter.Municipality)
	require.NotNil(t, seenFilter.EndDate)
	// A bare end date includes the whole day.
	assert.Equal(t, 23, seenFilter.EndDate.Hour())
}

func TestGetOccurrence_InvalidIDRejected(t *testing.T) {
	_, tokens, router := newTestHandler(t)
	_, headers := adminAuth(t, tokens)

	w := makeRequest(router, "GET", "/api/v1/occurrences/not-a-uuid", nil, headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOccurrence_NotFoundMapsTo404(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)
	id := uuid.New()

	m.occurrences.EXPECT().
		GetByID(gomock.Any(), p, id).
		Return(nil, fmt.Errorf("%w: occurrence %s", service.ErrNotFound, id)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences/"+id.String(), nil, headers)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOccurrence_ForeignRecordMapsTo403(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p := auth.Principal{ID: uuid.New(), Role: models.RoleOperator}
	headers := bearerFor(t, tokens, p)
	id := uuid.New()

	m.occurrences.EXPECT().
		GetByID(gomock.Any(), p, id).
		Return(nil, fmt.Errorf("%w: occurrence belongs to another user", service.ErrPermissionDenied)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences/"+id.String(), nil, headers)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChangeOccurrenceStatus_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)
	id := uuid.New()

	m.occurrences.EXPECT().
		ChangeStatus(gomock.Any(), p, id, models.StatusClosed, "resolved on site").
		Return(&models.Occurrence{ID: id, Status: models.StatusClosed}, nil).
		Times(1)

	body, _ := json.Marshal(ChangeStatusRequest{Status: "closed", Reason: "resolved on site"})
	w := makeRequest(router, "PATCH", "/api/v1/occurrences/"+id.String()+"/status", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangeOccurrenceStatus_UnknownStatusRejectedByValidator(t *testing.T) {
	_, tokens, router := newTestHandler(t)
	_, headers := adminAuth(t, tokens)

	body, _ := json.Marshal(ChangeStatusRequest{Status: "archived"})
	w := makeRequest(router, "PATCH", "/api/v1/occurrences/"+uuid.NewString()+"/status", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteOccurrence_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)
	id := uuid.New()

	m.occurrences.EXPECT().
		Delete(gomock.Any(), p, id).
		Return(nil).
		Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/occurrences/"+id.String(), nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOccurrenceStatistics_YearParamPassedThrough(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	_, headers := adminAuth(t, tokens)

	m.stats.EXPECT().
		OccurrenceStatistics(gomock.Any(), 2023).
		Return(&models.OccurrenceStatistics{Year: 2023}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences/statistics?year=2023", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportOccurrences_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	m.occurrences.EXPECT().
		Export(gomock.Any(), p, gomock.Any()).
		Return([]*models.Occurrence{{ID: uuid.New()}}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences/export", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUser_ConflictMapsTo409(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	m.users.EXPECT().
		Create(gomock.Any(), p, gomock.Any(), "secret123").
		Return(nil, fmt.Errorf("%w: email already registered", service.ErrConflict)).
		Times(1)

	body, _ := json.Marshal(CreateUserRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret123",
		Role:     "operator",
	})
	w := makeRequest(router, "POST", "/api/v1/users", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateUser_ShortPasswordRejectedByValidator(t *testing.T) {
	_, tokens, router := newTestHandler(t)
	_, headers := adminAuth(t, tokens)

	body, _ := json.Marshal(CreateUserRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "short",
		Role:     "operator",
	})
	w := makeRequest(router, "POST", "/api/v1/users", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser_InvariantViolationMapsTo400(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)
	id := uuid.New()

	m.users.EXPECT().
		Delete(gomock.Any(), p, id).
		Return(fmt.Errorf("%w: cannot delete the last admin account", service.ErrInvariantViolation)).
		Times(1)

	w := makeRequest(router, "DELETE", "/api/v1/users/"+id.String(), nil, headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInternalErrorIsGeneric(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)
	id := uuid.New()

	m.occurrences.EXPECT().
		GetByID(gomock.Any(), p, id).
		Return(nil, fmt.Errorf("%w: connection refused", service.ErrStorage)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/occurrences/"+id.String(), nil, headers)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message, "storage details must not leak to clients")
}

func TestCreateVehicle_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	created := &models.Vehicle{ID: uuid.New(), Plate: "ABC1234", Name: "Rescue 7", Active: true}
	m.vehicles.EXPECT().
		Create(gomock.Any(), p, gomock.Any()).
		Return(created, nil).
		Times(1)

	body, _ := json.Marshal(CreateVehicleRequest{Plate: "ABC1234", Name: "Rescue 7"})
	w := makeRequest(router, "POST", "/api/v1/vehicles", bytes.NewBuffer(body), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListAuditLogs_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	m.audit.EXPECT().
		List(gomock.Any(), p, gomock.Any()).
		Return([]*models.AuditLogEntry{{ID: uuid.New()}}, 1, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/audit/logs", nil, headers)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestUserActivity_DefaultsToCaller(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p := auth.Principal{ID: uuid.New(), Role: models.RoleOperator}
	headers := bearerFor(t, tokens, p)

	m.audit.EXPECT().
		UserActivity(gomock.Any(), p, p.ID, gomock.Any(), gomock.Any()).
		Return([]*models.AuditLogEntry{}, 0, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/audit/user-activity", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSystemActivity_DaysParamPassedThrough(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	p, headers := adminAuth(t, tokens)

	m.audit.EXPECT().
		SystemActivity(gomock.Any(), p, 30).
		Return(&models.SystemActivity{Days: 30}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/audit/system-activity?days=30", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
}
