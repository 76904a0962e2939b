package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockActivationService struct {
	mock.Mock
}

func (m *MockActivationService) Activate(ctx context.Context, userID, paymentRef string) (*model.ActivationResult, error) {
	args := m.Called(ctx, userID, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ActivationResult), args.Error(1)
}

func (m *MockActivationService) RecordFailure(ctx context.Context, userID, paymentRef string) error {
	args := m.Called(ctx, userID, paymentRef)
	return args.Error(0)
}

func newWebhookRouter(as *MockActivationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewPaymentRoutes(router.Group("/"), as, auth.NewServiceAuth("", ""))
	return router
}

func postWebhook(t *testing.T, router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(raw))
	router.ServeHTTP(w, req)
	return w
}

func TestHandleWebhook_SettledReportsAttachment(t *testing.T) {
	mockSvc := &MockActivationService{}
	router := newWebhookRouter(mockSvc)

	referredBy := "TALCCCCCC"
	mockSvc.On("Activate", mock.Anything, "N", "pay-1").Return(&model.ActivationResult{
		User: &model.User{
			ID:         "N",
			ReferredBy: &referredBy,
			Status:     model.StatusActive,
		},
		Attached: true,
	}, nil)

	w := postWebhook(t, router, map[string]interface{}{
		"user_id":     "N",
		"payment_ref": "pay-1",
		"outcome":     "settled",
		"amount":      50000,
		"currency":    "INR",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, false, resp["already_active"])
	assert.Equal(t, true, resp["attached"])
	assert.Equal(t, "active", resp["status"])
}

func TestHandleWebhook_ReplayedDeliveryKeepsAttachment(t *testing.T) {
	mockSvc := &MockActivationService{}
	router := newWebhookRouter(mockSvc)

	// The first delivery attached the user; the replay finds it active and
	// must still report that attachment, not the no-op it performed.
	referredBy := "TALCCCCCC"
	mockSvc.On("Activate", mock.Anything, "N", "pay-1").Return(&model.ActivationResult{
		User: &model.User{
			ID:         "N",
			ReferredBy: &referredBy,
			Status:     model.StatusActive,
		},
		AlreadyActive: true,
	}, nil)

	w := postWebhook(t, router, map[string]interface{}{
		"user_id":     "N",
		"payment_ref": "pay-1",
		"outcome":     "settled",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["already_active"])
	assert.Equal(t, true, resp["attached"])
}

func TestHandleWebhook_FailedOutcomeAcknowledged(t *testing.T) {
	mockSvc := &MockActivationService{}
	router := newWebhookRouter(mockSvc)

	mockSvc.On("RecordFailure", mock.Anything, "N", "pay-1").Return(nil)

	w := postWebhook(t, router, map[string]interface{}{
		"user_id":     "N",
		"payment_ref": "pay-1",
		"outcome":     "failed",
	})

	require.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertCalled(t, "RecordFailure", mock.Anything, "N", "pay-1")
	mockSvc.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_RejectsIncompleteEvent(t *testing.T) {
	mockSvc := &MockActivationService{}
	router := newWebhookRouter(mockSvc)

	w := postWebhook(t, router, map[string]interface{}{
		"outcome": "settled",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
}
