package services

import (
	"context"
	"time"

	"usersvc/internal/models"
	"usersvc/internal/repositories"
	"usersvc/internal/validation"

	"go.uber.org/zap"
)

// OrderService handles business logic related to a user's orders.
type OrderService struct {
	repo      repositories.UserRepository
	validator *validation.Validator
	publisher EventPublisher
	logger    *zap.Logger
	timeout   time.Duration
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	repo repositories.UserRepository,
	validator *validation.Validator,
	publisher EventPublisher,
	logger *zap.Logger,
	timeout time.Duration,
) *OrderService {
	return &OrderService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

func (s *OrderService) fail(op string, err error) error {
	serr := classify(op, err)
	if serr.Kind == KindInternal {
		s.logger.Error("order operation failed", zap.String("op", op), zap.Error(err))
	}
	return serr
}

// AddOrder validates body and appends it to the user's orders.
func (s *OrderService) AddOrder(ctx context.Context, userID int64, body []byte) error {
	const op = "create order"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.validator.Order(body)
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.repo.AppendOrder(ctx, userID, order); err != nil {
		return s.fail(op, err)
	}
	publish(s.publisher, s.logger, EventOrderCreated, userID, order)
	return nil
}

// GetOrders returns the user's orders in insertion order, empty when there are none.
func (s *OrderService) GetOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	const op = "fetch orders"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.repo.FindByUserID(ctx, userID, models.ProjectOrders)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if user.Orders == nil {
		return []models.Order{}, nil
	}
	return user.Orders, nil
}

// CalculateTotalPrice sums price times quantity over the stored orders. The
// result has two decimals, or is models.TotalPriceNotApplicable without orders.
func (s *OrderService) CalculateTotalPrice(ctx context.Context, userID int64) (string, error) {
	const op = "calculate total price"
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.repo.FindByUserID(ctx, userID, models.ProjectOrders)
	if err != nil {
		return "", s.fail(op, err)
	}
	return models.FormatTotalPrice(user.Orders), nil
}
