package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/hash"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/repo"
)

func newAuth(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()
	r := newRepo(t)
	return &AuthService{
		Users:         r,
		Sessions:      r,
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	}, r
}

func TestEnsureAdmin_CreatesOnceAndNeverOverwrites(t *testing.T) {
	svc, r := newAuth(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "first"))
	require.NoError(t, svc.EnsureAdmin(ctx, "second"))

	u, err := r.GetUserByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	assert.Equal(t, models.SectionAdmin, u.Section)
	assert.True(t, hash.CheckPassword(u.PasswordHash, "first"))
	assert.False(t, hash.CheckPassword(u.PasswordHash, "second"))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "s3cret"))

	res, err := svc.Login(ctx, " admin ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, models.SectionAdmin, res.Session.Section)
	assert.Equal(t, hash.Sha256Hex(res.RefreshToken), res.Session.RefreshHash)

	sess, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)
	assert.Equal(t, "admin", sess.Username)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "s3cret"))

	tests := []struct {
		name, user, pass string
	}{
		{name: "wrong password", user: "admin", pass: "nope"},
		{name: "unknown user", user: "ghost", pass: "s3cret"},
		{name: "empty username", user: "", pass: "s3cret"},
		{name: "empty password", user: "admin", pass: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.user, tt.pass)
			require.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
		})
	}
}

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "s3cret"))

	first, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.Session.ID, second.Session.ID)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthenticate_ExpiredAccessTokenIsDistinguishable(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "s3cret"))

	svc.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	res, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	svc.Now = nil

	_, err = svc.Authenticate(ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	refreshed, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, refreshed.AccessToken)
	assert.NoError(t, err)
}

func TestLogOut(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "s3cret"))

	res, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.LogOutToken(ctx, res.RefreshToken))
	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.NoError(t, svc.LogOutToken(ctx, ""))
	assert.NoError(t, svc.LogOutToken(ctx, "garbage"))
	assert.NoError(t, svc.LogOut(ctx, uuid.New()))
}

func TestAuthenticate_RejectsForeignToken(t *testing.T) {
	svc, _ := newAuth(t)

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
