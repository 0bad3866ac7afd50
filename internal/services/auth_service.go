package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finclient/internal/api"
	"finclient/internal/cache"
	flog "finclient/internal/log"
)

// SessionKey is the store key of the saved session.
const SessionKey = "session"

// AuthAPI is the OTP half of the API client.
type AuthAPI interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (api.Session, error)
	SetToken(token string)
}

// AuthService signs users in and out and persists the session between
// invocations.
type AuthService struct {
	api    AuthAPI
	store  cache.Store
	now    func() time.Time
	logger *slog.Logger
	// onLogout runs with the departing user's id, e.g. to drop cached data.
	onLogout []func(ctx context.Context, userID string) error
}

func NewAuthService(a AuthAPI, store cache.Store, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:    a,
		store:  store,
		now:    time.Now,
		logger: logger.With(flog.FieldComponent, flog.ComponentAuth),
	}
}

// OnLogout registers a hook run by Logout.
func (s *AuthService) OnLogout(fn func(ctx context.Context, userID string) error) {
	s.onLogout = append(s.onLogout, fn)
}

// RequestCode starts the OTP flow for email.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	if err := s.api.RequestOTP(ctx, email); err != nil {
		return fmt.Errorf("request otp: %w", err)
	}
	s.logger.InfoContext(ctx, "One-time code requested", "email", email)
	return nil
}

// Verify exchanges the code for a session and saves it.
func (s *AuthService) Verify(ctx context.Context, email, code string) (api.Session, error) {
	session, err := s.api.VerifyOTP(ctx, email, code)
	if err != nil {
		return api.Session{}, fmt.Errorf("verify otp: %w", err)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return api.Session{}, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Set(ctx, SessionKey, string(raw)); err != nil {
		return api.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "Signed in", flog.FieldUserID, session.UserID, flog.FieldOperation, flog.OpLogin)
	return session, nil
}

// Current loads the saved session and installs its token on the client.
// A missing, unreadable or expired session yields api.ErrNoSession.
func (s *AuthService) Current(ctx context.Context) (api.Session, error) {
	session, err := s.load(ctx)
	if err != nil {
		return api.Session{}, err
	}
	if session.Expired(s.now()) {
		s.logger.InfoContext(ctx, "Saved session expired", flog.FieldUserID, session.UserID)
		return api.Session{}, api.ErrNoSession
	}

	s.api.SetToken(session.Token)
	return session, nil
}

func (s *AuthService) load(ctx context.Context) (api.Session, error) {
	raw, ok, err := s.store.Get(ctx, SessionKey)
	if err != nil {
		return api.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return api.Session{}, api.ErrNoSession
	}

	var session api.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.Token == "" || session.UserID == "" {
		s.logger.WarnContext(ctx, "Ignoring unreadable saved session")
		return api.Session{}, api.ErrNoSession
	}
	return session, nil
}

// Logout forgets the saved session, expired or not, and runs the logout
// hooks. Logging out without a session is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.load(ctx)
	if err != nil && !errors.Is(err, api.ErrNoSession) {
		return err
	}

	var errs []error
	if err := s.store.Delete(ctx, SessionKey); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}
	s.api.SetToken("")

	if session.UserID != "" {
		for _, fn := range s.onLogout {
			if err := fn(ctx, session.UserID); err != nil {
				errs = append(errs, err)
			}
		}
		s.logger.InfoContext(ctx, "Signed out", flog.FieldUserID, session.UserID, flog.FieldOperation, flog.OpLogout)
	}
	return errors.Join(errs...)
}
