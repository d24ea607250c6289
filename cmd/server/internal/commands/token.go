package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mindleap/mindleap/internal/auth"
)

// TokenCmd mints a token signed with the server secret. Development helper;
// production tokens come from the login service.
type TokenCmd struct {
	JWTSecret string        `help:"HMAC secret to sign with" env:"MINDLEAP_JWT_SECRET" required:""`
	UserID    string        `help:"subject user ID" required:""`
	TTL       time.Duration `help:"token lifetime" default:"24h"`
}

func (c *TokenCmd) Run(globals *Globals) error {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	token, err := auth.IssueToken([]byte(c.JWTSecret), userID, c.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
