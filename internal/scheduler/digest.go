package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/balance-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestSource computes the per-customer max debt digest
type DigestSource interface {
	DebtDigest(ctx context.Context) ([]models.MaxDebtResult, error)
}

// DigestSender delivers a digest to its recipients
type DigestSender interface {
	SendDebtDigest(to []string, digest []models.MaxDebtResult, generatedAt time.Time) error
}

// DigestJob emails the debt digest on a cron schedule
type DigestJob struct {
	source     DigestSource
	sender     DigestSender
	recipients []string
	timeout    time.Duration
	log        *logrus.Logger
	now        func() time.Time
	cron       *cron.Cron
}

// NewDigestJob creates a digest job. timeout bounds a single run.
func NewDigestJob(source DigestSource, sender DigestSender, recipients []string, timeout time.Duration, log *logrus.Logger) *DigestJob {
	return &DigestJob{
		source:     source,
		sender:     sender,
		recipients: recipients,
		timeout:    timeout,
		log:        log,
		now:        time.Now,
	}
}

// Start schedules the job with a standard five-field cron spec
func (j *DigestJob) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := j.Run(context.Background()); err != nil {
			j.log.WithError(err).Error("Debt digest run failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	j.cron = c
	c.Start()
	j.log.WithField("schedule", spec).Info("Debt digest scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (j *DigestJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Run computes and sends one digest
func (j *DigestJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	j.log.Info("Starting debt digest")
	digest, err := j.source.DebtDigest(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute debt digest: %w", err)
	}
	if err := j.sender.SendDebtDigest(j.recipients, digest, j.now()); err != nil {
		return err
	}

	j.log.WithField("entries", len(digest)).Info("Debt digest delivered")
	return nil
}
