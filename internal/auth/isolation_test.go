package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mindleap/mindleap/internal/models"
)

func multiTenantContext(org *models.Organization, user *models.User) *TenantContext {
	return &TenantContext{
		User:          user,
		Organization:  org,
		TenantID:      org.TenantID,
		IsMultiTenant: true,
	}
}

func TestTenantScope_MergesQuery(t *testing.T) {
	f := newTestPipeline(t)

	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2", IsActive: true}
	tc := multiTenantContext(org, &models.User{UserID: uuid.Must(uuid.NewV7())})

	var gotQuery url.Values
	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress?gameId=memory-match-kids&tenantId=T9", nil)
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Client-supplied tenantId is overwritten, other params survive.
	require.Equal(t, "T2", gotQuery.Get("tenantId"))
	require.Equal(t, "memory-match-kids", gotQuery.Get("gameId"))
}

func TestTenantScope_StampsJSONBody(t *testing.T) {
	f := newTestPipeline(t)

	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2", IsActive: true}
	tc := multiTenantContext(org, &models.User{UserID: uuid.Must(uuid.NewV7())})

	var gotBody map[string]any
	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	payload := `{"gameId":"budget-builder-kids","score":80,"tenantId":"T9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress", bytes.NewBufferString(payload))
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "T2", gotBody["tenantId"], "client-supplied tenantId overwritten")
	require.Equal(t, org.OrgID.String(), gotBody["orgId"])
	require.Equal(t, "budget-builder-kids", gotBody["gameId"])
}

func TestTenantScope_LeavesNonJSONBodyAlone(t *testing.T) {
	f := newTestPipeline(t)

	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2", IsActive: true}
	tc := multiTenantContext(org, &models.User{UserID: uuid.Must(uuid.NewV7())})

	var gotBody []byte
	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress", bytes.NewBufferString("plain text"))
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "plain text", string(gotBody))
}

func TestTenantScope_LeavesNullJSONBodyAlone(t *testing.T) {
	f := newTestPipeline(t)

	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2", IsActive: true}
	tc := multiTenantContext(org, &models.User{UserID: uuid.Must(uuid.NewV7())})

	var gotBody []byte
	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	// A "null" body decodes without error but is not an object.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress", bytes.NewBufferString("null"))
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "null", string(gotBody))
}

func TestTenantScope_LegacyPassthrough(t *testing.T) {
	f := newTestPipeline(t)

	tc := &TenantContext{
		User:         &models.User{UserID: uuid.Must(uuid.NewV7())},
		IsLegacyUser: true,
	}

	var gotQuery url.Values
	var gotBody []byte
	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	payload := `{"gameId":"budget-builder-kids"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/progress?gameId=x", bytes.NewBufferString(payload))
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, gotQuery.Get("tenantId"))
	require.JSONEq(t, payload, string(gotBody))
}

func TestTenantScope_MissingTenantID(t *testing.T) {
	f := newTestPipeline(t)

	// A multi-tenant context without a tenant identifier must not reach
	// the handler.
	tc := &TenantContext{
		User:          &models.User{UserID: uuid.Must(uuid.NewV7())},
		IsMultiTenant: true,
	}

	handler := f.pipeline.TenantScope()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Tenant isolation required", errorMessage(t, rec))
}

func TestScopedQuery(t *testing.T) {
	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2"}

	t.Run("multi-tenant", func(t *testing.T) {
		ctx := WithTenantContext(t.Context(), multiTenantContext(org, &models.User{}))

		q := ScopedQuery(ctx, url.Values{"gameId": []string{"x"}})
		require.Equal(t, "T2", q.Get("tenantId"))
		require.Equal(t, "x", q.Get("gameId"))
	})

	t.Run("nil values", func(t *testing.T) {
		ctx := WithTenantContext(t.Context(), multiTenantContext(org, &models.User{}))

		q := ScopedQuery(ctx, nil)
		require.Equal(t, "T2", q.Get("tenantId"))
	})

	t.Run("legacy identity", func(t *testing.T) {
		ctx := WithTenantContext(t.Context(), &TenantContext{IsLegacyUser: true})

		q := ScopedQuery(ctx, url.Values{"gameId": []string{"x"}})
		require.Empty(t, q.Get("tenantId"))
	})
}

func TestStampDocument(t *testing.T) {
	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), TenantID: "T2"}

	t.Run("multi-tenant", func(t *testing.T) {
		ctx := WithTenantContext(t.Context(), multiTenantContext(org, &models.User{}))

		doc := StampDocument(ctx, map[string]any{"score": 80})
		require.Equal(t, "T2", doc["tenantId"])
		require.Equal(t, org.OrgID.String(), doc["orgId"])
		require.Equal(t, 80, doc["score"])
	})

	t.Run("legacy identity", func(t *testing.T) {
		ctx := WithTenantContext(t.Context(), &TenantContext{IsLegacyUser: true})

		doc := StampDocument(ctx, map[string]any{"score": 80})
		_, hasTenant := doc["tenantId"]
		require.False(t, hasTenant)
	})
}
