package plans

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/http/middlewarectx"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SubscribePage(ctx context.Context, userUID string) ([]*models.PlanChoice, error) {
	args := m.Called(ctx, userUID)
	p, _ := args.Get(0).([]*models.PlanChoice)
	return p, args.Error(1)
}

func TestPlansHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	plans := []*models.PlanChoice{
		{ID: 1, Code: models.PlanCodeStandard, Name: "Standard", Cost: 299, IsActive: true, Tier: models.TierStandard},
		{ID: 2, Code: models.PlanCodePremium, Name: "Premium", Cost: 999, IsActive: true, Tier: models.TierPremium},
	}

	t.Run("lists plans", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SubscribePage", mock.Anything, "u1").Return(plans, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/client/plans", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "u1"}))
		rr := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Data []models.PlanChoice `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "PR", resp.Data[1].Code)
	})

	t.Run("already subscribed", func(t *testing.T) {
		svc := new(MockService)
		svc.On("SubscribePage", mock.Anything, "u1").Return(nil, services.ErrAlreadySubscribed)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/client/plans", nil)
		req = req.WithContext(middlewarectx.WithSession(req.Context(), &models.Session{UserUID: "u1"}))
		rr := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"status":"Error","error":"user already has a subscription"}`, rr.Body.String())
	})
}
