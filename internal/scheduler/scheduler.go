package scheduler

import (
	"context"

	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Start launches the background sweeps: promoting scheduled announcements
// whose publish date arrived, and purging expired notifications. Returns
// the cron instance so the caller can stop it on shutdown.
func Start(updates *services.UpdateService, notifs *services.NotificationService) *cron.Cron {
	c := cron.New()

	// Publish scheduled announcements
	c.AddFunc("@every 5m", func() {
		if err := updates.PublishDue(context.Background()); err != nil {
			logrus.WithError(err).Error("PublishDue sweep failed")
		}
	})

	// Purge expired notifications
	c.AddFunc("@hourly", func() {
		if err := notifs.PurgeExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("PurgeExpired sweep failed")
		}
	})

	c.Start()
	return c
}
