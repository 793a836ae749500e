package port

import (
	"context"
	"errors"

	"github.com/example/inventory-api/internal/core/domain"
)

// ErrDuplicateUsername is returned by Create when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, nil when absent.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username, nil when absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
