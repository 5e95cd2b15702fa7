package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
	"github.com/abderrahmenzaway/wie-empower/internal/metrics"
	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
	"github.com/abderrahmenzaway/wie-empower/internal/storage"
)

// Service owns the notification center: creation, read state and removal.
type Service struct {
	store  storage.NotificationStore
	hub    *events.Hub
	logger *zap.SugaredLogger
}

func NewService(store storage.NotificationStore, hub *events.Hub, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, hub: hub, logger: logger}
}

// Create stores a notification and fans it out to the owning user.
func (s *Service) Create(ctx context.Context, userID, kind, message string, severity entities.Severity) (*entities.Notification, error) {
	if userID == "" {
		return nil, model.Invalidf("userId", "is required")
	}
	if message == "" {
		return nil, model.Invalidf("message", "is required")
	}
	if !severity.Valid() {
		return nil, model.Invalidf("severity", "unknown severity %q", severity)
	}

	n := &entities.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		IsRead:    false,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(kind).Inc()
	s.hub.Publish(events.Event{Type: events.NewNotification, UserID: userID, Payload: n})
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]entities.Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) (*entities.Notification, error) {
	return s.store.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.store.DeleteNotification(ctx, id, userID)
}

func (s *Service) DeleteAll(ctx context.Context, userID string) error {
	return s.store.DeleteAllNotifications(ctx, userID)
}
