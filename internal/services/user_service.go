package services

import (
	"context"
	"errors"
	"time"

	"usersvc/internal/models"
	"usersvc/internal/repositories"
	"usersvc/internal/security"
	"usersvc/internal/validation"

	"go.uber.org/zap"
)

// MaskedPassword replaces the password in the record echoed back on create.
const MaskedPassword = "********"

// maxPasswordAttempts bounds how often an update re-checks a password that a
// concurrent update replaced.
const maxPasswordAttempts = 3

var errPasswordChanged = errors.New("stored password changed during update")

// UserService handles business logic related to users.
type UserService struct {
	repo      repositories.UserRepository
	validator *validation.Validator
	hasher    security.Hasher
	publisher EventPublisher
	logger    *zap.Logger
	timeout   time.Duration
}

// NewUserService creates a new UserService. publisher may be nil, and a
// non-positive timeout leaves operations bounded only by the caller's context.
func NewUserService(
	repo repositories.UserRepository,
	validator *validation.Validator,
	hasher security.Hasher,
	publisher EventPublisher,
	logger *zap.Logger,
	timeout time.Duration,
) *UserService {
	return &UserService{
		repo:      repo,
		validator: validator,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *UserService) fail(op string, err error) error {
	serr := classify(op, err)
	if serr.Kind == KindInternal {
		s.logger.Error("user operation failed", zap.String("op", op), zap.Error(err))
	} else {
		s.logger.Debug("user operation rejected", zap.String("op", op), zap.Stringer("kind", serr.Kind), zap.Error(err))
	}
	return serr
}

// CreateUser validates body, hashes the password and stores the user. The
// stored record is returned with the password masked.
func (s *UserService) CreateUser(ctx context.Context, body []byte) (*models.UserView, error) {
	const op = "create user"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.validator.User(body)
	if err != nil {
		return nil, s.fail(op, err)
	}

	digest, err := s.hasher.Hash(ctx, user.Password)
	if err != nil {
		return nil, s.fail(op, err)
	}
	user.Password = digest

	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, s.fail(op, err)
	}

	view := models.ProjectPublic.View(user)
	publish(s.publisher, s.logger, EventUserCreated, user.UserID, view)

	masked := MaskedPassword
	view.Password = &masked
	return &view, nil
}

// GetAllUsers lists every user in summary form. Passwords are never loaded.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.UserView, error) {
	const op = "fetch users"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.repo.FindAll(ctx, models.ProjectSummary)
	if err != nil {
		return nil, s.fail(op, err)
	}
	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, models.ProjectSummary.View(u))
	}
	return views, nil
}

// GetUserByID returns a single user without the password.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*models.UserView, error) {
	const op = "fetch user"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.repo.FindByUserID(ctx, userID, models.ProjectPublic)
	if err != nil {
		return nil, s.fail(op, err)
	}
	view := models.ProjectPublic.View(*user)
	return &view, nil
}

// UpdateUser replaces the profile of a user with a fully validated document.
// The password is only rehashed when it does not match the stored digest.
// Orders are kept as stored.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, body []byte) (*models.UserView, error) {
	const op = "update user"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	incoming, err := s.validator.User(body)
	if err != nil {
		return nil, s.fail(op, err)
	}

	updated, err := s.replaceUser(ctx, userID, incoming)
	if err != nil {
		return nil, s.fail(op, err)
	}

	view := models.ProjectPublic.View(*updated)
	publish(s.publisher, s.logger, EventUserUpdated, updated.UserID, view)
	return &view, nil
}

// replaceUser writes incoming over the stored user. The password is checked
// and hashed before the store is touched; the write only goes through while
// the stored digest is still the one that was checked.
func (s *UserService) replaceUser(ctx context.Context, userID int64, incoming models.User) (*models.User, error) {
	var digest string
	for attempt := 1; attempt <= maxPasswordAttempts; attempt++ {
		current, err := s.repo.FindByUserID(ctx, userID, models.ProjectInternal)
		if err != nil {
			return nil, err
		}

		expected := current.Password
		password := expected
		if !s.hasher.Verify(incoming.Password, expected) {
			if digest == "" {
				if digest, err = s.hasher.Hash(ctx, incoming.Password); err != nil {
					return nil, err
				}
			}
			password = digest
		}

		updated, err := s.repo.UpdateByUserID(ctx, userID, func(u *models.User) error {
			if u.Password != expected {
				return errPasswordChanged
			}
			replaceProfile(u, incoming)
			u.Password = password
			return nil
		}, models.ProjectPublic)
		if errors.Is(err, errPasswordChanged) {
			s.logger.Debug("password changed during update, retrying",
				zap.Int64("userId", userID), zap.Int("attempt", attempt))
			continue
		}
		return updated, err
	}
	return nil, repositories.ErrWriteConflict
}

// replaceProfile copies the client-owned fields of src onto dst.
func replaceProfile(dst *models.User, src models.User) {
	dst.UserID = src.UserID
	dst.Username = src.Username
	dst.FullName = src.FullName
	dst.Age = src.Age
	dst.Email = src.Email
	dst.IsActive = src.IsActive
	dst.Hobbies = append([]string{}, src.Hobbies...)
	dst.Address = src.Address
}

// DeleteUser removes a user together with its orders.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	const op = "delete user"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return s.fail(op, err)
	}
	publish(s.publisher, s.logger, EventUserDeleted, userID, nil)
	return nil
}
