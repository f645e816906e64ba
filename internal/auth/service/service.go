package service

import (
	"context"
	"io"

	validate "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/karTik-kuMar04/Backend/internal/auth/dto"
	"github.com/karTik-kuMar04/Backend/internal/auth/model"
	"github.com/karTik-kuMar04/Backend/internal/auth/token"
	"github.com/karTik-kuMar04/Backend/internal/config"
	"github.com/karTik-kuMar04/Backend/internal/repo"
)

// Upload is one incoming image file.
type Upload struct {
	Body        io.Reader
	ContentType string
}

// MediaUploader stores an image and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, kind string, body io.Reader, contentType string) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, dto dto.RegisterDTO, avatar Upload, coverImage *Upload) (model.PublicUser, error)
	Login(ctx context.Context, dto dto.LoginDTO) (model.PublicUser, model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	Authenticate(ctx context.Context, accessToken string) (model.PublicUser, error)
}

func NewAuthService(userRepo repo.UserRepo, tokenUtil token.TokenUtil, media MediaUploader, cfg *config.Config, v *validate.Validate) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenUtil: tokenUtil,
		media:     media,
		cfg:       cfg,
		v:         v,
	}
}
