package badges

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog/log"
)

// Badge is one badge definition or award as returned by the badge service.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GameID      string `json:"gameId,omitempty"`
}

// Award is the payload posted when a user earns a badge.
type Award struct {
	UserID   uuid.UUID `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	GameID   string    `json:"gameId"`
	Score    int       `json:"score"`
	TenantID string    `json:"tenantId,omitempty"`
}

// Client talks to the external badge service. Badge definitions are
// cacheable (the service sets Cache-Control), so GETs go through an
// httpcache transport; award POSTs are retried with exponential backoff
// because the service is occasionally slow to scale up.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   uint
}

// NewClient creates a badge service client with in-memory response caching.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
			Timeout:   10 * time.Second,
		},
		maxTries: 3,
	}
}

// ListBadges fetches the badge definitions for a game.
func (c *Client) ListBadges(ctx context.Context, gameID string) ([]Badge, error) {
	url := fmt.Sprintf("%s/api/badges?gameId=%s", c.baseURL, gameID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("badge service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("badge service returned %d", resp.StatusCode)
	}

	var badges []Badge
	if err := json.NewDecoder(resp.Body).Decode(&badges); err != nil {
		return nil, fmt.Errorf("failed to decode badge list: %w", err)
	}

	return badges, nil
}

// SubmitAward posts a badge award, retrying transient failures.
func (c *Client) SubmitAward(ctx context.Context, award Award) error {
	payload, err := json.Marshal(award)
	if err != nil {
		return err
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/awards", bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode < 300:
			return struct{}{}, nil
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("badge service returned %d", resp.StatusCode)
		default:
			// Client errors won't improve with retries.
			return struct{}{}, backoff.Permanent(fmt.Errorf("badge service returned %d", resp.StatusCode))
		}
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return fmt.Errorf("failed to submit badge award: %w", err)
	}

	log.Debug().
		Str("user_id", award.UserID.String()).
		Str("badge_id", award.BadgeID).
		Msg("submitted badge award")

	return nil
}
