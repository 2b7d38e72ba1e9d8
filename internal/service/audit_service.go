package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/events"
)

// AuditService records identity lifecycle events as structured log
// entries. Handlers never fail the publishing operation.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to the full lifecycle.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventUserDeleted,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
		events.EventUserPasswordChanged,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.String("application", string(event.Application)),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
