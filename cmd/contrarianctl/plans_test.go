package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

type MockUpserter struct{ mock.Mock }

func (m *MockUpserter) UpsertPlan(ctx context.Context, p models.PlanChoice) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

type MockInvalidator struct{ mock.Mock }

func (m *MockInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func TestSeedPlans(t *testing.T) {
	ctx := context.Background()
	plans := []config.Plan{
		{Code: "ST", Name: "Standard", Cost: 299, IsActive: true},
		{Code: "PR", Name: "Premium", Cost: 999, IsActive: true, Premium: true, ExternalPlanID: "P-1"},
	}

	tests := []struct {
		name       string
		plans      []config.Plan
		setupMocks func(u *MockUpserter, i *MockInvalidator)
		want       int
		wantErr    bool
	}{
		{
			name:  "maps premium flag to tier and drops the cached list",
			plans: plans,
			setupMocks: func(u *MockUpserter, i *MockInvalidator) {
				u.On("UpsertPlan", ctx, mock.MatchedBy(func(p models.PlanChoice) bool {
					return p.Code == "ST" && p.Tier == models.TierStandard && p.Cost == 299
				})).Return(int64(1), nil)
				u.On("UpsertPlan", ctx, mock.MatchedBy(func(p models.PlanChoice) bool {
					return p.Code == "PR" && p.Tier == models.TierPremium && p.ExternalPlanID == "P-1"
				})).Return(int64(2), nil)
				i.On("Invalidate", ctx, []string{cache.PlansKey}).Return(nil)
			},
			want: 2,
		},
		{
			name:  "storage error stops seeding",
			plans: plans,
			setupMocks: func(u *MockUpserter, i *MockInvalidator) {
				u.On("UpsertPlan", ctx, mock.Anything).Return(int64(0), errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name:       "plan without code",
			plans:      []config.Plan{{Name: "Nameless"}},
			setupMocks: func(u *MockUpserter, i *MockInvalidator) {},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, i := new(MockUpserter), new(MockInvalidator)
			tt.setupMocks(u, i)

			n, err := seedPlans(ctx, u, i, tt.plans)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, n)
			}
			u.AssertExpectations(t)
			i.AssertExpectations(t)
		})
	}
}

func TestParseSteps(t *testing.T) {
	n, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)
	_, err = parseSteps([]string{"x"})
	assert.Error(t, err)
}

func TestRootCmd_RequiresConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	root := newRootCmd()
	root.SetArgs([]string{"sessions", "clear"})
	root.SetOut(new(nopWriter))
	root.SetErr(new(nopWriter))

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is not set")
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
