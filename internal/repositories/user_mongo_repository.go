package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"usersvc/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UsersCollection is the collection holding one document per user.
const UsersCollection = "users"

const (
	defaultMongoWriteTimeout = 5 * time.Second
	defaultMongoReadTimeout  = 10 * time.Second
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database, logger *zap.Logger) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection(UsersCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the unique indexes on userId and username.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := ensureTimeout(ctx, defaultMongoWriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("userId_unique")},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// ensureTimeout applies d unless ctx already carries an earlier deadline.
func ensureTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// mongoProjection converts p into a server-side projection document.
func mongoProjection(p models.Projection) bson.M {
	proj := bson.M{"_id": 0}
	if len(p.Fields) == 0 {
		if !p.IncludePassword {
			proj[models.FieldPassword] = 0
		}
		return proj
	}
	for _, f := range p.Selected() {
		proj[f] = 1
	}
	proj["version"] = 1
	proj["createdAt"] = 1
	proj["updatedAt"] = 1
	return proj
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := ensureTimeout(ctx, defaultMongoWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	user.Version = 1
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindAll returns every user document.
func (r *MongoUserRepository) FindAll(ctx context.Context, projection models.Projection) ([]models.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultMongoReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(mongoProjection(projection)).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// FindByUserID returns the user document with the given userId.
func (r *MongoUserRepository) FindByUserID(ctx context.Context, userID int64, projection models.Projection) (*models.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultMongoReadTimeout)
	defer cancel()

	var user models.User
	opts := options.FindOne().SetProjection(mongoProjection(projection))
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by userId %d: %w", userID, err)
	}
	return &user, nil
}

// UpdateByUserID replaces the document only if its version is unchanged since it was read.
func (r *MongoUserRepository) UpdateByUserID(ctx context.Context, userID int64, apply UpdateFunc, projection models.Projection) (*models.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultMongoWriteTimeout)
	defer cancel()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var current models.User
		if err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to load user %d for update: %w", userID, err)
		}

		next := current.Clone()
		if err := apply(&next); err != nil {
			return nil, err
		}
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now().UTC()

		res, err := r.collection.ReplaceOne(ctx, bson.M{"userId": userID, "version": current.Version}, next)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicateKey
			}
			return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
		}
		if res.MatchedCount == 1 {
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

// DeleteByUserID removes the user document and returns it.
func (r *MongoUserRepository) DeleteByUserID(ctx context.Context, userID int64) (*models.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultMongoWriteTimeout)
	defer cancel()

	var deleted models.User
	opts := options.FindOneAndDelete().SetProjection(mongoProjection(models.ProjectPublic))
	err := r.collection.FindOneAndDelete(ctx, bson.M{"userId": userID}, opts).Decode(&deleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return &deleted, nil
}

// AppendOrder pushes order onto the user's orders array in a single atomic update.
// $push creates the array when the document has none.
func (r *MongoUserRepository) AppendOrder(ctx context.Context, userID int64, order models.Order) error {
	ctx, cancel := ensureTimeout(ctx, defaultMongoWriteTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"orders": order},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to append order for user %d: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
