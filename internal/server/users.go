package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mindleap/mindleap/internal/auth"
	"github.com/mindleap/mindleap/internal/models"
)

type provisionUserRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`

	// Stamped by the isolation middleware for multi-tenant callers.
	TenantID string `json:"tenantId"`
	OrgID    string `json:"orgId"`
}

type provisionUserResponse struct {
	UserID string      `json:"userId"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// handleProvisionUser creates a user seat. The route is role-gated to admins
// and subscription-gated, so by the time this runs the organization is known
// to have a live subscription and seats available.
func (s *Server) handleProvisionUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tc := auth.TenantFromContext(ctx)

	var req provisionUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	if req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name and email are required"})
		return
	}

	switch req.Role {
	case models.RoleStudent, models.RoleParent, models.RoleTeacher, models.RoleSchoolAdmin:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid role"})
		return
	}

	now := time.Now()
	user := &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		TenantID:  req.TenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.OrgID != "" {
		orgID, err := uuid.Parse(req.OrgID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
			return
		}
		user.OrgID = &orgID
	}

	if err := s.users.Create(ctx, user); err != nil {
		auth.WriteError(w, err)
		return
	}

	if tc.IsMultiTenant {
		if err := s.orgs.IncrementUserCount(ctx, tc.Organization.OrgID, 1); err != nil {
			auth.WriteError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, provisionUserResponse{
		UserID: user.UserID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
}
