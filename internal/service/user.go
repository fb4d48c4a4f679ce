package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/hash"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

type UserService struct {
	Users  store.UserStore
	Events events.Publisher
}

func (s *UserService) Register(ctx context.Context, p Principal, req transport.RegisterUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register", "by", p.Username)

	if !p.IsAdmin() {
		l.Warn("register_user_failed", "status", 403, "reason", "admin only")
		return nil, fmt.Errorf("%w: only Admin can register users", ErrForbidden)
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Section = strings.TrimSpace(req.Section)
	if err := validateStruct(req); err != nil {
		l.Warn("register_user_failed", "status", 400, "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: pwHash,
		Section:      req.Section,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			l.Warn("register_user_failed", "status", 409, "reason", "user already exist", "username", req.Username)
			return nil, fmt.Errorf("%w: user %q already exists", ErrConflict, req.Username)
		}
		l.Error("register_user_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, user.ID.String(), events.UserRegistered, p.Username, user)
	l.Info("register_user_success", "username", user.Username, "section", user.Section)
	return user, nil
}

// List is open to Admin and Management.
func (s *UserService) List(ctx context.Context, p Principal) ([]models.User, error) {
	if !p.SeesAll() {
		return nil, fmt.Errorf("%w: only Admin or Management can list users", ErrForbidden)
	}
	return s.Users.ListUsers(ctx)
}
