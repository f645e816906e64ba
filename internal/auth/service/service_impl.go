package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	validate "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/karTik-kuMar04/Backend/internal/auth/dto"
	customErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
	"github.com/karTik-kuMar04/Backend/internal/auth/model"
	"github.com/karTik-kuMar04/Backend/internal/auth/token"
	"github.com/karTik-kuMar04/Backend/internal/config"
	"github.com/karTik-kuMar04/Backend/internal/repo"
)

type authService struct {
	userRepo  repo.UserRepo
	tokenUtil token.TokenUtil
	media     MediaUploader
	cfg       *config.Config
	v         *validate.Validate
}

func (a *authService) Register(ctx context.Context, d dto.RegisterDTO, avatar Upload, coverImage *Upload) (model.PublicUser, error) {
	if err := a.v.Struct(d); err != nil {
		return model.PublicUser{}, customErrors.NewInvalidArgument(err.Error())
	}
	if avatar.Body == nil {
		return model.PublicUser{}, customErrors.NewInvalidArgument("avatar image is required")
	}

	username := strings.ToLower(d.Username)
	email := strings.ToLower(d.Email)

	if err := a.checkNotTaken(ctx, username, email); err != nil {
		return model.PublicUser{}, err
	}

	passwordHash, err := argon2id.CreateHash(d.Password+a.cfg.PasswordPepper, argon2id.DefaultParams)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}

	avatarURL, err := a.media.Upload(ctx, "avatars", avatar.Body, avatar.ContentType)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}

	var coverURL string
	if coverImage != nil && coverImage.Body != nil {
		coverURL, err = a.media.Upload(ctx, "covers", coverImage.Body, coverImage.ContentType)
		if err != nil {
			return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
		}
	}

	user := model.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         email,
		FullName:      d.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		PasswordHash:  passwordHash,
		CreatedAt:     time.Now(),
	}

	if _, err := a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.PublicUser{}, customErrors.ErrAlreadyExists
		}
		return model.PublicUser{}, customErrors.WrapInternal(err, "Register")
	}

	return user.Public(), nil
}

// checkNotTaken is the awaited existence check; the unique indexes on
// username and email backstop it inside CreateUser.
func (a *authService) checkNotTaken(ctx context.Context, username, email string) error {
	if _, err := a.userRepo.GetUserByUsername(ctx, username); err == nil {
		return customErrors.ErrAlreadyExists
	} else if !errors.Is(err, customErrors.ErrNotFound) {
		return customErrors.WrapInternal(err, "Register")
	}

	if _, err := a.userRepo.GetUserByEmail(ctx, email); err == nil {
		return customErrors.ErrAlreadyExists
	} else if !errors.Is(err, customErrors.ErrNotFound) {
		return customErrors.WrapInternal(err, "Register")
	}

	return nil
}

func (a *authService) Login(ctx context.Context, d dto.LoginDTO) (model.PublicUser, model.TokenPair, error) {
	if err := a.v.Struct(d); err != nil {
		return model.PublicUser{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.findByIdentifier(ctx, d)
	if err != nil {
		return model.PublicUser{}, model.TokenPair{}, err
	}

	ok, err := argon2id.ComparePasswordAndHash(d.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.PublicUser{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.PublicUser{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	pair, err := a.issuePair(ctx, user.ID)
	if err != nil {
		return model.PublicUser{}, model.TokenPair{}, err
	}

	return user.Public(), pair, nil
}

func (a *authService) findByIdentifier(ctx context.Context, d dto.LoginDTO) (model.User, error) {
	if d.Username != "" {
		user, err := a.userRepo.GetUserByUsername(ctx, strings.ToLower(d.Username))
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, customErrors.ErrNotFound) {
			return model.User{}, customErrors.WrapInternal(err, "Login")
		}
	}

	if d.Email != "" {
		user, err := a.userRepo.GetUserByEmail(ctx, strings.ToLower(d.Email))
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, customErrors.ErrNotFound) {
			return model.User{}, customErrors.WrapInternal(err, "Login")
		}
	}

	return model.User{}, customErrors.ErrNotFound
}

// issuePair signs both tokens and persists the refresh token with a
// single-field update; no other column is touched. Either everything
// succeeds or the caller gets no tokens.
func (a *authService) issuePair(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issuePair")
	}

	accessToken, atExp, err := a.tokenUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issuePair")
	}
	refreshToken, rtExp, err := a.tokenUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issuePair")
	}

	if err := a.userRepo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issuePair")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       user.ID,
	}, nil
}

func (a *authService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	claims, err := a.tokenUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// A cryptographically valid token that is not the stored one has been
	// superseded by a rotation or a logout: reject it.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	accessToken, atExp, err := a.tokenUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	newRefreshToken, rtExp, err := a.tokenUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	// Compare-and-swap: of two concurrent refreshes with the same token,
	// exactly one lands; the other comes back ErrInvalidToken.
	if err := a.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken); err != nil {
		if errors.Is(err, customErrors.ErrInvalidToken) {
			return model.TokenPair{}, customErrors.ErrInvalidToken
		}
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       user.ID,
	}, nil
}

func (a *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return nil
		}
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

// DeleteAccount removes the user record outright; outstanding access
// tokens die at the request gate once the id no longer resolves.
func (a *authService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := a.userRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return customErrors.ErrNotFound
		}
		return customErrors.WrapInternal(err, "DeleteAccount")
	}
	return nil
}

func (a *authService) Authenticate(ctx context.Context, accessToken string) (model.PublicUser, error) {
	claims, err := a.tokenUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.PublicUser{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.PublicUser{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.PublicUser{}, customErrors.ErrInvalidToken
	}

	return user.Public(), nil
}
