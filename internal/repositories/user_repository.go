package repositories

import (
	"context"

	"usersvc/internal/models"
)

// UpdateFunc mutates the current stored user in place. Returning an error
// aborts the update without writing. It may be called more than once when a
// concurrent writer wins the race, so it must be safe to repeat.
type UpdateFunc func(current *models.User) error

// UserRepository defines the interface for user data access. Every operation is
// keyed by the business identifier userId.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context, projection models.Projection) ([]models.User, error)
	FindByUserID(ctx context.Context, userID int64, projection models.Projection) (*models.User, error)
	UpdateByUserID(ctx context.Context, userID int64, apply UpdateFunc, projection models.Projection) (*models.User, error)
	DeleteByUserID(ctx context.Context, userID int64) (*models.User, error)
	AppendOrder(ctx context.Context, userID int64, order models.Order) error
}
