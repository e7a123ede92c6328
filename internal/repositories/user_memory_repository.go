package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"usersvc/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users     map[int64]models.User
	usernames map[string]int64
	nextID    uint
	mu        sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:     make(map[int64]models.User),
		usernames: make(map[string]int64),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; ok {
		return ErrDuplicateKey
	}
	if _, ok := r.usernames[user.Username]; ok {
		return ErrDuplicateKey
	}
	r.nextID++
	now := time.Now()
	user.ID = r.nextID
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.UserID] = user.Clone()
	r.usernames[user.Username] = user.UserID
	return nil
}

// FindAll returns all users ordered by insertion.
func (r *MemoryUserRepository) FindAll(ctx context.Context, projection models.Projection) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, projection.Apply(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// FindByUserID returns a user by its userId.
func (r *MemoryUserRepository) FindByUserID(ctx context.Context, userID int64, projection models.Projection) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := projection.Apply(u)
	return &out, nil
}

// UpdateByUserID runs apply against the stored user under the write lock.
func (r *MemoryUserRepository) UpdateByUserID(ctx context.Context, userID int64, apply UpdateFunc, projection models.Projection) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	next := current.Clone()
	if err := apply(&next); err != nil {
		return nil, err
	}
	if next.UserID != userID {
		if _, taken := r.users[next.UserID]; taken {
			return nil, ErrDuplicateKey
		}
	}
	if next.Username != current.Username {
		if _, taken := r.usernames[next.Username]; taken {
			return nil, ErrDuplicateKey
		}
	}

	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = time.Now()

	delete(r.users, userID)
	delete(r.usernames, current.Username)
	r.users[next.UserID] = next
	r.usernames[next.Username] = next.UserID

	out := projection.Apply(next)
	return &out, nil
}

// DeleteByUserID removes a user and returns what was stored.
func (r *MemoryUserRepository) DeleteByUserID(ctx context.Context, userID int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.users, userID)
	delete(r.usernames, u.Username)
	out := models.ProjectPublic.Apply(u)
	return &out, nil
}

// AppendOrder adds order to the end of the user's order history.
func (r *MemoryUserRepository) AppendOrder(ctx context.Context, userID int64, order models.Order) error {
	_, err := r.UpdateByUserID(ctx, userID, func(u *models.User) error {
		u.Orders = append(u.Orders, order)
		return nil
	}, models.ProjectOrders)
	return err
}
