package notifications

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service stores notifications and then publishes them.
type Service struct {
	repo     repositories.NotificationRepository
	notifier *Notifier
}

func NewService(repo repositories.NotificationRepository, notifier *Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Notify records that from did kind to recipient. Only the store write can fail the
// call; a failed publish is logged.
func (s *Service) Notify(ctx context.Context, from *models.User, to primitive.ObjectID, kind string) error {
	n := &models.Notification{From: from.ID, To: to, Type: kind}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}
	if err := s.notifier.Publish(ctx, models.NewNotificationView(*n, from)); err != nil {
		observability.Logger.WarnContext(ctx, "publish notification failed",
			"to", to.Hex(), "type", kind, "error", err)
	}
	return nil
}
