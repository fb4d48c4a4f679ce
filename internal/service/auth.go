package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/hash"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/tokens"
)

const AdminUsername = "admin"

type AuthService struct {
	Users         store.UserStore
	Sessions      store.SessionStore
	AccessSecret  []byte
	RefreshSecret []byte
	Now           func() time.Time
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Session      *models.Session
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) issue(sess *models.Session) (*LoginResult, error) {
	now := s.now()
	accessExp := now.Add(tokens.AccessTTL)
	refreshExp := now.Add(tokens.RefreshTTL)

	access, err := tokens.SignAccess(tokens.AccessClaims{
		SessionID: sess.ID.String(),
		Username:  sess.Username,
		Section:   sess.Section,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}, s.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}

	refresh, err := tokens.SignRefresh(tokens.RefreshClaims{
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID.String(),
			Subject:   sess.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Session:      sess,
	}, nil
}

// Login never says which half of the credentials was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		l.Warn("login_failed", "status", 401, "reason", "empty credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.Users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("login_failed", "status", 401, "reason", "unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot read users", "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Username:  user.Username,
		Section:   user.Section,
		CreatedAt: s.now().UTC(),
	}
	res, err := s.issue(sess)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	sess.RefreshHash = hash.Sha256Hex(res.RefreshToken)
	sess.ExpiresAt = res.RefreshExp.Unix()

	if err := s.Sessions.CreateSession(ctx, sess); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store session", "error", err)
		return nil, err
	}

	l.Info("login_successful", "section", user.Section)
	return res, nil
}

// Authenticate resolves an access token to its live session. The returned
// error wraps the jwt error too, so callers can tell an expired token apart.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Session, error) {
	claims, err := tokens.AccessClaimsFromToken(accessToken, s.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return s.liveSession(ctx, claims.SessionID)
}

func (s *AuthService) liveSession(ctx context.Context, rawID string) (*models.Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrInvalidSession)
	}
	sess, err := s.Sessions.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown session", ErrInvalidSession)
	}
	if err != nil {
		return nil, err
	}
	if !sess.Active(s.now()) {
		return nil, fmt.Errorf("%w: session ended", ErrInvalidSession)
	}
	return sess, nil
}

// Refresh swaps the refresh token for a new pair. A token that was already
// rotated no longer matches the stored hash and is refused.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	sess, err := s.liveSession(ctx, claims.ID)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, err
	}

	res, err := s.issue(sess)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	newHash := hash.Sha256Hex(res.RefreshToken)
	err = s.Sessions.RotateSession(ctx, sess.ID, hash.Sha256Hex(refreshToken), newHash, res.RefreshExp.Unix())
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token already used", "session_id", sess.ID)
		return nil, fmt.Errorf("%w: refresh token already used", ErrInvalidSession)
	}
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	sess.RefreshHash = newHash
	sess.ExpiresAt = res.RefreshExp.Unix()

	l.Info("refresh_successful", "session_id", sess.ID)
	return res, nil
}

func (s *AuthService) LogOut(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.Sessions.RevokeSession(ctx, sessionID); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "svc", "auth.logout", "status", 500, "error", err)
		return err
	}
	return nil
}

// LogOutToken revokes the session behind a refresh token. Expired tokens still
// name their session; an empty or forged token is a no-op.
func (s *AuthService) LogOutToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := tokens.RefreshClaimsAnyAge(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil
	}
	return s.LogOut(ctx, id)
}

// EnsureAdmin creates the bootstrap admin when missing. An existing admin is
// never touched.
func (s *AuthService) EnsureAdmin(ctx context.Context, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	_, err := s.Users.GetUserByUsername(ctx, AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		ID:           uuid.New(),
		Username:     AdminUsername,
		PasswordHash: pwHash,
		Section:      models.SectionAdmin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Users.CreateUser(ctx, admin); err != nil && !errors.Is(err, store.ErrConflict) {
		return err
	}
	l.Info("admin_created")
	return nil
}
