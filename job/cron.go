package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"agreement-radar/config"
	"agreement-radar/types"
)

// KeyDateLister is the slice of the repository the reminder scan reads.
type KeyDateLister interface {
	ListKeyDatesBetween(ctx context.Context, from, to types.Date) ([]types.UpcomingKeyDate, error)
}

// Notifier delivers one reminder. daysLeft is 0 on the day itself.
type Notifier interface {
	Notify(ctx context.Context, kd types.UpcomingKeyDate, daysLeft int) error
}

// LogNotifier writes reminders to the service log.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, kd types.UpcomingKeyDate, daysLeft int) error {
	n.Log.Info().
		Str("agreement_id", kd.AgreementID.String()).
		Str("vendor", kd.Vendor).
		Str("title", kd.Title).
		Str("kind", string(kd.Kind)).
		Str("occurs_on", kd.OccursOn.String()).
		Int("days_left", daysLeft).
		Msg(kd.Description)
	return nil
}

type Reminder struct {
	repo     KeyDateLister
	notifier Notifier
	horizon  int
	log      zerolog.Logger
}

func NewReminder(repo KeyDateLister, notifier Notifier, horizonDays int, log zerolog.Logger) *Reminder {
	return &Reminder{repo: repo, notifier: notifier, horizon: horizonDays, log: log}
}

// Run notifies every key date in [today, today+horizon] and returns how many
// reminders were delivered.
func (r *Reminder) Run(ctx context.Context, now time.Time) (int, error) {
	today := types.DateOf(now)
	rows, err := r.repo.ListKeyDatesBetween(ctx, today, today.AddDays(r.horizon))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, kd := range rows {
		daysLeft := int(kd.OccursOn.Sub(today.Time).Hours() / 24)
		if err := r.notifier.Notify(ctx, kd, daysLeft); err != nil {
			r.log.Warn().Err(err).Str("key_date_id", kd.ID.String()).Msg("reminder not delivered")
			continue
		}
		sent++
	}
	return sent, nil
}

// StartCronJob schedules the reminder scan; the returned cron must be stopped
// on shutdown.
func StartCronJob(cfg config.ReminderConfig, reminder *Reminder, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(cfg.Schedule, func() {
		sent, err := reminder.Run(context.Background(), time.Now())
		if err != nil {
			log.Error().Err(err).Msg("reminder scan failed")
			return
		}
		log.Info().Int("sent", sent).Int("horizon_days", cfg.HorizonDays).Msg("reminder scan finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
