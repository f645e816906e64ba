package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/karTik-kuMar04/Backend/internal/auth/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// Used on login; touches no other column.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken swaps old for new only if old is still the stored
	// value. Returns ErrInvalidToken when the stored value no longer
	// matches, so a concurrent rotation loses cleanly.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error

	// ClearRefreshToken sets the stored token to NULL. Idempotent.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}
