package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

func subscriptionRequest(t *testing.T, p *Pipeline, tc *TenantContext) *httptest.ResponseRecorder {
	t.Helper()

	handler := p.RequireSubscription()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	if tc != nil {
		req = req.WithContext(WithTenantContext(req.Context(), tc))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireSubscription(t *testing.T) {
	t.Run("active subscription with seats available", func(t *testing.T) {
		f := newTestPipeline(t)

		company := &models.Company{
			CompanyID:          uuid.Must(uuid.NewV7()),
			Name:               "Acme Learning",
			SubscriptionExpiry: time.Now().Add(30 * 24 * time.Hour),
		}
		require.NoError(t, f.companies.Create(context.Background(), company))

		org := &models.Organization{
			OrgID:     uuid.Must(uuid.NewV7()),
			TenantID:  "T2",
			IsActive:  true,
			CompanyID: &company.CompanyID,
			UserCount: 5,
			MaxUsers:  10,
		}

		rec := subscriptionRequest(t, f.pipeline, multiTenantContext(org, &models.User{}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired subscription", func(t *testing.T) {
		f := newTestPipeline(t)

		company := &models.Company{
			CompanyID:          uuid.Must(uuid.NewV7()),
			Name:               "Acme Learning",
			SubscriptionExpiry: time.Now().Add(-24 * time.Hour),
		}
		require.NoError(t, f.companies.Create(context.Background(), company))

		org := &models.Organization{
			OrgID:     uuid.Must(uuid.NewV7()),
			TenantID:  "T2",
			IsActive:  true,
			CompanyID: &company.CompanyID,
			UserCount: 5,
			MaxUsers:  10,
		}

		rec := subscriptionRequest(t, f.pipeline, multiTenantContext(org, &models.User{}))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "Subscription expired. Please renew your subscription to continue.", errorMessage(t, rec))
	})

	t.Run("seat limit reached", func(t *testing.T) {
		f := newTestPipeline(t)

		org := &models.Organization{
			OrgID:     uuid.Must(uuid.NewV7()),
			TenantID:  "T2",
			IsActive:  true,
			UserCount: 10,
			MaxUsers:  10,
		}

		rec := subscriptionRequest(t, f.pipeline, multiTenantContext(org, &models.User{}))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "User limit reached. Please upgrade your plan to add more users.", errorMessage(t, rec))
	})

	t.Run("no billing company still checks seats", func(t *testing.T) {
		f := newTestPipeline(t)

		org := &models.Organization{
			OrgID:     uuid.Must(uuid.NewV7()),
			TenantID:  "T2",
			IsActive:  true,
			UserCount: 3,
			MaxUsers:  10,
		}

		rec := subscriptionRequest(t, f.pipeline, multiTenantContext(org, &models.User{}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("legacy user skips the gate", func(t *testing.T) {
		f := newTestPipeline(t)

		legacy := &TenantContext{
			User:         &models.User{UserID: uuid.Must(uuid.NewV7())},
			IsLegacyUser: true,
		}

		rec := subscriptionRequest(t, f.pipeline, legacy)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("company lookup failure", func(t *testing.T) {
		f := newTestPipeline(t)

		companyID := uuid.Must(uuid.NewV7())
		org := &models.Organization{
			OrgID:     uuid.Must(uuid.NewV7()),
			TenantID:  "T2",
			IsActive:  true,
			CompanyID: &companyID,
			UserCount: 5,
			MaxUsers:  10,
		}

		pipeline := NewPipeline(Config{
			Secret:    testSecret,
			Users:     f.users,
			Companies: failingCompanyStore{},
		})

		rec := subscriptionRequest(t, pipeline, multiTenantContext(org, &models.User{}))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "Server error", errorMessage(t, rec))
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		f := newTestPipeline(t)

		rec := subscriptionRequest(t, f.pipeline, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type failingCompanyStore struct {
	store.CompanyStore
}

func (failingCompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	return nil, errors.New("connection reset")
}
