package service

import (
	"context"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/sirupsen/logrus"
)

// Notifier is the fire-and-forget notification sink. Delivery failures
// are logged and swallowed; they must never fail the workflow operation
// that triggered them.
type Notifier struct {
	repo   repository.NotificationRepository
	logger *logrus.Logger
}

// NewNotifier creates a Notifier over the notification log.
func NewNotifier(repo repository.NotificationRepository, logger *logrus.Logger) *Notifier {
	return &Notifier{repo: repo, logger: logger}
}

// NotifyReferee records a message addressed to one referee.
func (n *Notifier) NotifyReferee(ctx context.Context, message string, refereeID uint64) {
	err := n.repo.Create(ctx, &model.Notification{
		Message:   message,
		Recipient: model.RecipientReferee,
		RefereeID: &refereeID,
	})
	if err != nil {
		n.logger.WithError(err).WithField("referee_id", refereeID).
			Warn("dropping referee notification")
	}
}

// NotifyAdmins records a message on the admin broadcast feed.
func (n *Notifier) NotifyAdmins(ctx context.Context, message string) {
	err := n.repo.Create(ctx, &model.Notification{
		Message:   message,
		Recipient: model.RecipientAdmin,
	})
	if err != nil {
		n.logger.WithError(err).Warn("dropping admin notification")
	}
}

// AdminFeed returns the admin broadcast log, newest first.
func (n *Notifier) AdminFeed(ctx context.Context) ([]*model.Notification, error) {
	return n.repo.ListForAdmins(ctx)
}

// RefereeFeed returns one referee's notifications, newest first.
func (n *Notifier) RefereeFeed(ctx context.Context, refereeID uint64) ([]*model.Notification, error) {
	return n.repo.ListForReferee(ctx, refereeID)
}
