package services

import (
	"usersvc/pkg/rabbitmq"

	"go.uber.org/zap"
)

// Event types published after a committed change.
const (
	EventUserCreated  = "user.created"
	EventUserUpdated  = "user.updated"
	EventUserDeleted  = "user.deleted"
	EventOrderCreated = "order.created"
)

// EventPublisher delivers domain events. rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(event rabbitmq.Event) error
}

// publish is best effort: the change is already committed, so a delivery
// failure is logged and never reported to the caller.
func publish(publisher EventPublisher, logger *zap.Logger, eventType string, userID int64, data any) {
	if publisher == nil {
		return
	}
	event := rabbitmq.NewEvent(eventType, userID, data)
	if err := publisher.Publish(event); err != nil {
		logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.Int64("userId", userID),
			zap.Error(err))
	}
}
