package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/infrastructure/outbox"
	"github.com/gardenhub/backend/usecase"
)

// RelayHealth abstracts the connection monitor functionality.
type RelayHealth interface {
	IsOnline() bool
}

// MailSender delivers a single rendered message.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DispatcherConfig controls how frequently the outbox is drained.
type DispatcherConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// MailDispatcher tries immediate delivery and spools failures into the
// outbox, which a cron schedule drains in the background.
type MailDispatcher struct {
	store   *outbox.Store
	sender  MailSender
	monitor RelayHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     DispatcherConfig
}

func NewMailDispatcher(
	store *outbox.Store,
	sender MailSender,
	monitor RelayHealth,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *MailDispatcher {
	if cfg.Interval < time.Second {
		if cfg.Interval <= 0 {
			cfg.Interval = 30 * time.Second
		} else {
			// "@every 0s" is rejected by the scheduler.
			cfg.Interval = time.Second
		}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &MailDispatcher{
		store:   store,
		sender:  sender,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := d.Drain(ctx); err != nil {
			d.logger.Error("outbox drain failed", zap.Error(err))
		}
	}); err != nil {
		// Queued mail would otherwise sit in the outbox forever.
		d.logger.Fatal("outbox drain schedule rejected",
			zap.String("schedule", schedule), zap.Error(err))
	}

	return d
}

// Start launches the cron scheduler.
func (d *MailDispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("mail dispatcher started")
}

// Stop gracefully stops the scheduler.
func (d *MailDispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("mail dispatcher stopped")
}

// Send attempts immediate delivery and falls back to the outbox. A nil
// error means the mail is either delivered or durably queued.
func (d *MailDispatcher) Send(ctx context.Context, mail usecase.Mail) error {
	if d == nil || d.store == nil {
		return fmt.Errorf("mail dispatcher not configured")
	}

	if d.monitor == nil || d.monitor.IsOnline() {
		if err := d.sender.Send(ctx, mail.To, mail.Subject, mail.Body); err == nil {
			return nil
		} else {
			d.logger.Warn("immediate delivery failed, queueing",
				zap.String("to", mail.To),
				zap.Error(err))
		}
	}
	return d.store.Enqueue(outbox.Item{
		To:      mail.To,
		Subject: mail.Subject,
		Body:    mail.Body,
	})
}

// Drain delivers queued mails synchronously.
func (d *MailDispatcher) Drain(ctx context.Context) error {
	if d == nil || d.store == nil {
		return nil
	}
	if d.monitor != nil && !d.monitor.IsOnline() {
		d.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	items, err := d.store.GetBatch(d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := d.sender.Send(ctx, item.To, item.Subject, item.Body); err != nil {
			d.logger.Error("failed to deliver queued mail",
				zap.String("item_id", item.ID),
				zap.String("to", item.To),
				zap.Error(err))

			if item.Retries+1 >= d.cfg.MaxRetries {
				d.logger.Warn("dropping queued mail (max retries reached)", zap.String("item_id", item.ID))
				_ = d.store.Remove(item)
				continue
			}
			if err := d.store.Requeue(item); err != nil {
				d.logger.Error("failed to requeue mail", zap.Error(err))
			}
			continue
		}

		if err := d.store.Remove(item); err != nil {
			d.logger.Warn("failed to purge delivered mail", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of queued mails.
func (d *MailDispatcher) Size() int {
	if d == nil || d.store == nil {
		return 0
	}
	size, err := d.store.Size()
	if err != nil {
		return 0
	}
	return size
}

var _ usecase.Mailer = (*MailDispatcher)(nil)
