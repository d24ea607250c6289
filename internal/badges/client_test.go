package badges

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestClient_ListBadges(t *testing.T) {
	t.Run("fetches badge definitions", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "budget-builder-kids", r.URL.Query().Get("gameId"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]Badge{
				{ID: "first-budget", Name: "First Budget", GameID: "budget-builder-kids"},
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		badges, err := client.ListBadges(context.Background(), "budget-builder-kids")
		require.NoError(t, err)
		require.Len(t, badges, 1)
		require.Equal(t, "first-budget", badges[0].ID)
	})

	t.Run("caches responses the service marks cacheable", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "max-age=60")
			_ = json.NewEncoder(w).Encode([]Badge{{ID: "first-budget", Name: "First Budget"}})
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		_, err := client.ListBadges(context.Background(), "budget-builder-kids")
		require.NoError(t, err)
		_, err = client.ListBadges(context.Background(), "budget-builder-kids")
		require.NoError(t, err)

		require.Equal(t, int32(1), hits.Load())
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		_, err := client.ListBadges(context.Background(), "budget-builder-kids")
		require.Error(t, err)
	})
}

func TestClient_SubmitAward(t *testing.T) {
	award := Award{
		UserID:   uuid.Must(uuid.NewV7()),
		BadgeID:  "perfect-score",
		GameID:   "budget-builder-kids",
		Score:    100,
		TenantID: "T1",
	}

	t.Run("submits on first attempt", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/awards", r.URL.Path)

			var got Award
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			require.Equal(t, award.BadgeID, got.BadgeID)
			require.Equal(t, award.TenantID, got.TenantID)

			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		require.NoError(t, client.SubmitAward(context.Background(), award))
		require.Equal(t, int32(1), hits.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		require.NoError(t, client.SubmitAward(context.Background(), award))
		require.Equal(t, int32(3), hits.Load())
	})

	t.Run("gives up after max tries", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		require.Error(t, client.SubmitAward(context.Background(), award))
		require.Equal(t, int32(3), hits.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		require.Error(t, client.SubmitAward(context.Background(), award))
		require.Equal(t, int32(1), hits.Load())
	})
}
