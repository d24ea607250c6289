package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mindleap/mindleap/internal/auth"
	"github.com/mindleap/mindleap/internal/badges"
	"github.com/mindleap/mindleap/internal/catalog"
	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// progressFinder adapts the progress store to the resource gate's capability
// interface.
type progressFinder struct {
	progress store.ProgressStore
}

func (f progressFinder) FindResource(ctx context.Context, id uuid.UUID) (auth.Resource, error) {
	record, err := f.progress.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return nil, auth.ErrResourceNotFound
		}
		return nil, err
	}
	return record, nil
}

type progressResponse struct {
	RecordID    string `json:"recordId"`
	UserID      string `json:"userId"`
	GameID      string `json:"gameId"`
	Score       int    `json:"score"`
	CoinsEarned int    `json:"coinsEarned"`
	XPEarned    int    `json:"xpEarned"`
	CreatedAt   string `json:"createdAt"`
}

func toProgressResponse(r *models.ProgressRecord) progressResponse {
	return progressResponse{
		RecordID:    r.RecordID.String(),
		UserID:      r.UserID.String(),
		GameID:      r.GameID,
		Score:       r.Score,
		CoinsEarned: r.CoinsEarned,
		XPEarned:    r.XPEarned,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// handleListProgress lists progress records. The tenant filter comes from the
// query values the isolation middleware merged; the handler never adds it.
func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.ProgressFilter{
		TenantID: q.Get("tenantId"),
		GameID:   q.Get("gameId"),
	}

	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid limit"})
			return
		}
		filter.Limit = n
	}

	// Students only see their own records; staff roles see the whole tenant.
	tc := auth.TenantFromContext(ctx)
	if tc.User.Role == models.RoleStudent {
		userID := tc.User.UserID
		filter.UserID = &userID
	}

	records, err := s.progress.List(ctx, filter)
	if err != nil {
		auth.WriteError(w, err)
		return
	}

	result := make([]progressResponse, 0, len(records))
	for _, record := range records {
		result = append(result, toProgressResponse(record))
	}

	writeJSON(w, http.StatusOK, result)
}

type createProgressRequest struct {
	GameID      string `json:"gameId"`
	Score       int    `json:"score"`
	CoinsEarned int    `json:"coinsEarned"`
	XPEarned    int    `json:"xpEarned"`

	// Stamped by the isolation middleware for multi-tenant callers; any
	// values the client supplied are overwritten before the body reaches
	// this handler.
	TenantID string `json:"tenantId"`
	OrgID    string `json:"orgId"`
}

// handleCreateProgress records a completed game session. Tenant identifiers
// are read from the stamped body, so a client cannot write into another
// tenant regardless of what it sent.
func (s *Server) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tc := auth.TenantFromContext(ctx)

	var req createProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	game, ok := s.catalog.Get(req.GameID)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Unknown game"})
		return
	}
	if req.Score < 0 || req.Score > game.MaxScore {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid score"})
		return
	}

	record := &models.ProgressRecord{
		RecordID:    uuid.Must(uuid.NewV7()),
		UserID:      tc.User.UserID,
		GameID:      req.GameID,
		Score:       req.Score,
		CoinsEarned: req.CoinsEarned,
		XPEarned:    req.XPEarned,
		TenantID:    req.TenantID,
		CreatedAt:   time.Now(),
	}

	if req.OrgID != "" {
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
			return
		}
		record.OrgID = &orgID
	}

	if err := s.progress.Create(ctx, record); err != nil {
		auth.WriteError(w, err)
		return
	}

	s.submitPerfectScoreAward(record, game)

	writeJSON(w, http.StatusCreated, toProgressResponse(record))
}

// submitPerfectScoreAward notifies the badge service asynchronously. Award
// delivery is best effort; failures are logged and never fail the request.
func (s *Server) submitPerfectScoreAward(record *models.ProgressRecord, game catalog.Game) {
	if s.badges == nil || record.Score < game.MaxScore {
		return
	}

	award := badges.Award{
		UserID:   record.UserID,
		BadgeID:  "perfect-score",
		GameID:   record.GameID,
		Score:    record.Score,
		TenantID: record.TenantID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.badges.SubmitAward(ctx, award); err != nil {
			log.Warn().Err(err).Str("game_id", record.GameID).Msg("badge award failed")
		}
	}()
}

// handleGetProgress returns a single record. The resource gate already
// fetched it and proved tenant ownership.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if res := auth.ResourceFromContext(ctx); res != nil {
		record, ok := res.(*models.ProgressRecord)
		if ok {
			writeJSON(w, http.StatusOK, toProgressResponse(record))
			return
		}
	}

	// Legacy requests skip the gate, so fetch directly.
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		auth.WriteError(w, auth.NotFound("Resource not found"))
		return
	}

	record, err := s.progress.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			auth.WriteError(w, auth.NotFound("Resource not found"))
			return
		}
		auth.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressResponse(record))
}
