package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/karTik-kuMar04/Backend/internal/auth/dto"
	authErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
	"github.com/karTik-kuMar04/Backend/internal/auth/model"
	"github.com/karTik-kuMar04/Backend/internal/auth/token"
	"github.com/karTik-kuMar04/Backend/internal/config"
)

type userRepoStub struct {
	users map[uuid.UUID]*model.User
}

func (u *userRepoStub) CreateUser(ctx context.Context, m model.User) (uuid.UUID, error) {
	for _, v := range u.users {
		if v.Username == m.Username || v.Email == m.Email {
			return uuid.Nil, authErrors.ErrAlreadyExists
		}
	}
	u.users[m.ID] = &m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return *v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	for _, v := range u.users {
		if v.Username == username {
			return *v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	v, ok := u.users[id]
	if !ok {
		return model.User{}, authErrors.ErrNotFound
	}
	return *v, nil
}

func (u *userRepoStub) SetRefreshToken(ctx context.Context, id uuid.UUID, tok string) error {
	v, ok := u.users[id]
	if !ok {
		return authErrors.ErrNotFound
	}
	v.RefreshToken = &tok
	return nil
}

func (u *userRepoStub) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error {
	v, ok := u.users[id]
	if !ok || v.RefreshToken == nil || *v.RefreshToken != oldToken {
		return authErrors.ErrInvalidToken
	}
	v.RefreshToken = &newToken
	return nil
}

func (u *userRepoStub) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	if v, ok := u.users[id]; ok {
		v.RefreshToken = nil
	}
	return nil
}

func (u *userRepoStub) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := u.users[id]; !ok {
		return authErrors.ErrNotFound
	}
	delete(u.users, id)
	return nil
}

type mediaStub struct{ uploads int }

func (m *mediaStub) Upload(ctx context.Context, kind string, body io.Reader, contentType string) (string, error) {
	m.uploads++
	return "https://cdn.example/" + kind + "/" + uuid.NewString(), nil
}

func newSvc(t *testing.T) (AuthService, *userRepoStub) {
	t.Helper()
	ur := &userRepoStub{users: make(map[uuid.UUID]*model.User)}
	cfg := &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
		PasswordPepper:     "p",
	}
	util, err := token.NewTokenUtil(cfg)
	require.NoError(t, err)
	v := validator.New()
	require.NoError(t, v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool { return len(fl.Field().String()) >= 8 }))
	return NewAuthService(ur, util, &mediaStub{}, cfg, v), ur
}

func avatar() Upload {
	return Upload{Body: bytes.NewBufferString("png"), ContentType: "image/png"}
}

func register(t *testing.T, svc AuthService) model.PublicUser {
	t.Helper()
	user, err := svc.Register(context.Background(), dto.RegisterDTO{
		FullName: "Alice",
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret123",
	}, avatar(), nil)
	require.NoError(t, err)
	return user
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, ur := newSvc(t)
	ctx := context.Background()

	user := register(t, svc)
	require.Equal(t, "alice", user.Username)
	require.NotEmpty(t, user.AvatarURL)

	loggedIn, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, user.ID, loggedIn.ID)

	stored := ur.users[user.ID]
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, pair.RefreshToken, *stored.RefreshToken)
}

func TestAuthService_LoginByEmail(t *testing.T) {
	svc, _ := newSvc(t)
	register(t, svc)

	_, pair, err := svc.Login(context.Background(), dto.LoginDTO{Email: "A@X.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestAuthService_LoginMissingIdentifier(t *testing.T) {
	svc, _ := newSvc(t)
	_, _, err := svc.Login(context.Background(), dto.LoginDTO{Password: "secret123"})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc, _ := newSvc(t)
	_, _, err := svc.Login(context.Background(), dto.LoginDTO{Username: "ghost", Password: "secret123"})
	require.True(t, authErrors.IsNotFound(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)

	_, pair, err := svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "wrong1234"})
	require.True(t, authErrors.IsInvalidCredentials(err))
	require.Empty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
	// No mutation on a failed login.
	require.Nil(t, ur.users[user.ID].RefreshToken)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _ := newSvc(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		FullName: "Alice Again",
		Username: "alice",
		Email:    "other@x.com",
		Password: "secret123",
	}, avatar(), nil)
	require.True(t, authErrors.IsAlreadyExists(err))
}

func TestAuthService_RegisterMissingAvatar(t *testing.T) {
	svc, _ := newSvc(t)
	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		FullName: "Alice",
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret123",
	}, Upload{}, nil)
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestAuthService_RefreshRotatesOnce(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	require.Equal(t, rotated.RefreshToken, *ur.users[user.ID].RefreshToken)

	// Replaying the superseded token fails even though it has not expired.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsInvalidToken(err))

	// The rotated token still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_RefreshAfterLogout(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))
	require.Nil(t, ur.users[user.ID].RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsInvalidToken(err))

	// Logout twice is harmless.
	require.NoError(t, svc.Logout(ctx, user.ID))
}

func TestAuthService_RefreshGarbage(t *testing.T) {
	svc, _ := newSvc(t)
	for _, tok := range []string{"", "bad", "a.b.c"} {
		_, err := svc.Refresh(context.Background(), tok)
		require.True(t, authErrors.IsInvalidToken(err), "token %q", tok)
	}
}

func TestAuthService_RefreshDeletedUser(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, ur.DeleteUser(ctx, user.ID))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))
	require.NotContains(t, ur.users, user.ID)

	// The account is gone: credentials, access token and refresh token
	// all stop resolving.
	_, _, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.True(t, authErrors.IsNotFound(err))
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, authErrors.IsInvalidToken(err))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsInvalidToken(err))

	require.True(t, authErrors.IsNotFound(svc.DeleteAccount(ctx, user.ID)))
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, ur := newSvc(t)
	user := register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "bad")
	require.True(t, authErrors.IsInvalidToken(err))

	// Access token must not double as a refresh token.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.True(t, authErrors.IsInvalidToken(err))

	// A token for a deleted account no longer resolves.
	require.NoError(t, ur.DeleteUser(ctx, user.ID))
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	require.True(t, authErrors.IsInvalidToken(err))
}
