package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated user. The token is the server issued JWT; its
// claims are read without verification since only the server can check the
// signature.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

var ErrInvalidToken = errors.New("invalid session token")

// Expired reports whether the session has an expiry at or before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ParseSession reads the user id (sub, falling back to user_id) and expiry
// from an access token.
func ParseSession(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrInvalidToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	s := Session{Token: token}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		s.UserID = sub
	} else {
		switch v := claims["user_id"].(type) {
		case string:
			s.UserID = v
		case float64:
			s.UserID = strconv.FormatInt(int64(v), 10)
		}
	}
	if s.UserID == "" {
		return Session{}, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	return s, nil
}

// RequestOTP asks the server to send a one-time code to email.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	_, err := c.do(ctx, http.MethodPost, "/auth/otp/request", nil, map[string]string{"email": email})
	return err
}

type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// VerifyOTP exchanges the emailed code for a session and installs its
// token on the client.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return Session{}, errors.New("email and code are required")
	}

	const path = "/auth/otp/verify"
	raw, err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"email": email, "code": code})
	if err != nil {
		return Session{}, err
	}

	resp, err := decodeItem[tokenResponse](raw)
	if err != nil {
		return Session{}, decodeError(http.MethodPost, path, err)
	}
	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}

	session, err := ParseSession(token)
	if err != nil {
		return Session{}, decodeError(http.MethodPost, path, err)
	}
	if session.Email == "" {
		session.Email = email
	}

	c.SetToken(session.Token)
	c.logger.InfoContext(ctx, "Session established", "user_id", session.UserID, "expires_at", session.ExpiresAt)
	return session, nil
}
