package repositories

import (
	"context"
	"errors"
	"fmt"

	"usersvc/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bookkeepingColumns are loaded by every query.
var bookkeepingColumns = []string{"id", "version", "created_at", "updated_at"}

// userColumns maps projection fields to table columns.
var userColumns = map[string][]string{
	models.FieldUserID:   {"user_id"},
	models.FieldUsername: {"username"},
	models.FieldPassword: {"password"},
	models.FieldFullName: {"full_name_first_name", "full_name_last_name"},
	models.FieldAge:      {"age"},
	models.FieldEmail:    {"email"},
	models.FieldIsActive: {"is_active"},
	models.FieldHobbies:  {"hobbies"},
	models.FieldAddress:  {"address_street", "address_city", "address_country"},
	models.FieldOrders:   {"orders"},
}

func selectColumns(p models.Projection) []string {
	cols := append([]string(nil), bookkeepingColumns...)
	for _, f := range p.Selected() {
		cols = append(cols, userColumns[f]...)
	}
	return cols
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGORMUserRepository creates a new instance of GORMUserRepository. The
// connection must be opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
func NewGORMUserRepository(db *gorm.DB, logger *zap.Logger) *GORMUserRepository {
	return &GORMUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = 0
	user.Version = 1
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindAll retrieves all users from the database.
func (r *GORMUserRepository) FindAll(ctx context.Context, projection models.Projection) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Select(selectColumns(projection)).Order("id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// FindByUserID retrieves a single user by its userId from the database.
func (r *GORMUserRepository) FindByUserID(ctx context.Context, userID int64, projection models.Projection) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select(selectColumns(projection)).Where("user_id = ?", userID).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by userId %d: %w", userID, err)
	}
	return &user, nil
}

// UpdateByUserID performs an optimistic read-modify-write: the row is only
// rewritten if its version is still the one that was read.
func (r *GORMUserRepository) UpdateByUserID(ctx context.Context, userID int64, apply UpdateFunc, projection models.Projection) (*models.User, error) {
	db := r.db.WithContext(ctx)
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var current models.User
		if err := db.Where("user_id = ?", userID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load user %d for update: %w", userID, err)
		}

		next := current.Clone()
		if err := apply(&next); err != nil {
			return nil, err
		}
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1

		res := db.Model(&next).
			Where("version = ?", current.Version).
			Select("*").
			Omit("id", "created_at").
			Updates(&next)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, ErrDuplicateKey
			}
			return nil, fmt.Errorf("failed to update user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 1 {
			out := projection.Apply(next)
			return &out, nil
		}
		r.logger.Debug("version conflict on user update, retrying",
			zap.Int64("userId", userID),
			zap.Int64("version", current.Version),
			zap.Int("attempt", attempt))
	}
	return nil, ErrWriteConflict
}

// DeleteByUserID deletes a user by its userId and returns the removed record.
func (r *GORMUserRepository) DeleteByUserID(ctx context.Context, userID int64) (*models.User, error) {
	var deleted models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select(selectColumns(models.ProjectPublic)).Where("user_id = ?", userID).Take(&deleted).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", deleted.ID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return &deleted, nil
}

// AppendOrder adds order to the end of the user's order history in one
// versioned write.
func (r *GORMUserRepository) AppendOrder(ctx context.Context, userID int64, order models.Order) error {
	_, err := r.UpdateByUserID(ctx, userID, func(u *models.User) error {
		u.Orders = append(u.Orders, order)
		return nil
	}, models.ProjectOrders)
	return err
}
