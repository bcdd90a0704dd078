package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
	"greek-row/chapterhouse/internal/providers"
)

const publishTimeout = 3 * time.Second

// DeliveryReport summarises one fan-out. Failed*UserIDs feed the retry job.
type DeliveryReport struct {
	Recipients         int
	EmailAttempted     int
	EmailFailed        int
	SMSAttempted       int
	SMSFailed          int
	FailedEmailUserIDs []string
	FailedSMSUserIDs   []string
	LastError          error
}

func (r DeliveryReport) Failed() bool {
	return len(r.FailedEmailUserIDs) > 0 || len(r.FailedSMSUserIDs) > 0
}

// NotificationService publishes notification jobs and performs their delivery
type NotificationService struct {
	queue          common.NotificationQueue
	profiles       *repositories.ProfileRepository
	email          providers.EmailProvider
	sms            providers.SMSProvider
	metrics        *metrics.MetricsRegistry
	smsConcurrency int
}

func NewNotificationService(
	queue common.NotificationQueue,
	profiles *repositories.ProfileRepository,
	email providers.EmailProvider,
	sms providers.SMSProvider,
	metricsReg *metrics.MetricsRegistry,
	smsConcurrency int,
) *NotificationService {
	if smsConcurrency < 1 {
		smsConcurrency = 1
	}
	return &NotificationService{
		queue:          queue,
		profiles:       profiles,
		email:          email,
		sms:            sms,
		metrics:        metricsReg,
		smsConcurrency: smsConcurrency,
	}
}

// Publish enqueues job. It never fails the caller: errors are logged and counted.
func (s *NotificationService) Publish(ctx context.Context, job *common.NotificationJob) {
	if job == nil || (!job.SendEmail && !job.SendSMS) {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.queue.Enqueue(pubCtx, job); err != nil {
		logging.FromContext(ctx).Errorw("Failed to publish notification",
			"job_id", job.ID, "kind", job.Kind, "chapter_id", job.ChapterID, "error", err)
		s.metrics.NotificationJob("publish_failed")
		return
	}
	s.metrics.NotificationJob("published")
}

// Deliver resolves recipients and sends both channels concurrently
func (s *NotificationService) Deliver(ctx context.Context, job *common.NotificationJob) DeliveryReport {
	var report DeliveryReport
	log := logging.FromContext(ctx).With("job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt)

	recipients, err := s.recipients(ctx, job)
	if err != nil {
		log.Errorw("Failed to resolve notification recipients", "error", err)
		report.LastError = err
		return report
	}
	report.Recipients = len(recipients)
	if len(recipients) == 0 {
		return report
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	if job.SendEmail {
		g.Go(func() error {
			attempted, failed, lastErr := s.deliverEmail(ctx, job, recipients)
			mu.Lock()
			report.EmailAttempted = attempted
			report.EmailFailed = len(failed)
			report.FailedEmailUserIDs = failed
			if lastErr != nil {
				report.LastError = lastErr
			}
			mu.Unlock()
			return nil
		})
	}

	if job.SendSMS {
		g.Go(func() error {
			attempted, failed, lastErr := s.deliverSMS(ctx, job, recipients)
			mu.Lock()
			report.SMSAttempted = attempted
			report.SMSFailed = len(failed)
			report.FailedSMSUserIDs = failed
			if lastErr != nil {
				report.LastError = lastErr
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	log.Infow("Notification delivered",
		"recipients", report.Recipients,
		"email_attempted", report.EmailAttempted,
		"email_failed", report.EmailFailed,
		"sms_attempted", report.SMSAttempted,
		"sms_failed", report.SMSFailed,
	)
	return report
}

func (s *NotificationService) recipients(ctx context.Context, job *common.NotificationJob) ([]gormModels.Profile, error) {
	if len(job.UserIDs) > 0 {
		return s.profiles.FindByIDs(ctx, job.UserIDs)
	}
	return s.profiles.FindRecipients(ctx, job.ChapterID, job.Roles)
}

// EmailRecipients keeps members whose preferences allow this kind of email
func (s *NotificationService) EmailRecipients(ctx context.Context, job *common.NotificationJob, members []gormModels.Profile) ([]gormModels.Profile, error) {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	prefs, err := s.profiles.GetPreferencesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]gormModels.Profile, 0, len(members))
	for _, m := range members {
		if m.Email == "" {
			continue
		}
		if prefs[m.ID].Allows(job.Kind) {
			out = append(out, m)
		}
	}
	return out, nil
}

// SMSRecipient pairs a member with their E.164 number
type SMSRecipient struct {
	UserID string
	Phone  string
}

// SMSRecipients keeps members with a phone, SMS consent, and a number that formats
func SMSRecipients(members []gormModels.Profile) []SMSRecipient {
	out := make([]SMSRecipient, 0, len(members))
	for _, m := range members {
		if m.Phone == nil || !m.SMSConsent {
			continue
		}
		phone, ok := common.FormatPhoneE164(*m.Phone)
		if !ok {
			continue
		}
		out = append(out, SMSRecipient{UserID: m.ID, Phone: phone})
	}
	return out
}

func (s *NotificationService) deliverEmail(ctx context.Context, job *common.NotificationJob, members []gormModels.Profile) (int, []string, error) {
	targets, err := s.EmailRecipients(ctx, job, members)
	if err != nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		return 0, ids, err
	}
	if len(targets) == 0 {
		return 0, nil, nil
	}

	msgs := make([]providers.EmailMessage, 0, len(targets))
	for _, t := range targets {
		msgs = append(msgs, providers.EmailMessage{
			To:      t.Email,
			ToName:  t.FullName,
			Subject: job.Subject,
			Text:    job.Body,
			HTML:    renderEmailHTML(job.Subject, job.Body),
		})
	}

	errs := s.email.SendBatch(ctx, msgs)

	var (
		failed  []string
		lastErr error
	)
	for i, t := range targets {
		if i < len(errs) && errs[i] != nil {
			failed = append(failed, t.ID)
			lastErr = errs[i]
		}
	}
	s.metrics.NotificationSent("email", "success", len(targets)-len(failed))
	s.metrics.NotificationSent("email", "failure", len(failed))
	if lastErr != nil {
		logging.FromContext(ctx).Warnw("Email delivery partially failed",
			"job_id", job.ID, "provider", s.email.Name(), "failed", len(failed), "error", lastErr)
	}
	return len(targets), failed, lastErr
}

func (s *NotificationService) deliverSMS(ctx context.Context, job *common.NotificationJob, members []gormModels.Profile) (int, []string, error) {
	targets := SMSRecipients(members)
	if len(targets) == 0 {
		return 0, nil, nil
	}

	body := job.SMSBody
	if body == "" {
		body = smsText(job.Subject, job.Body)
	}

	var (
		mu      sync.Mutex
		failed  []string
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.smsConcurrency)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if err := s.sms.Send(gctx, t.Phone, body); err != nil {
				mu.Lock()
				failed = append(failed, t.UserID)
				lastErr = err
				mu.Unlock()
			}
			// one failed number must not cancel the others
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.NotificationSent("sms", "success", len(targets)-len(failed))
	s.metrics.NotificationSent("sms", "failure", len(failed))
	if lastErr != nil {
		logging.FromContext(ctx).Warnw("SMS delivery partially failed",
			"job_id", job.ID, "provider", s.sms.Name(), "failed", len(failed), "error", lastErr)
	}
	return len(targets), failed, lastErr
}

// RetryJobs splits a partially failed job into one follow-up job per failed
// channel, addressed only to the users that failed on that channel.
func RetryJobs(job *common.NotificationJob, report DeliveryReport) []*common.NotificationJob {
	var out []*common.NotificationJob
	errText := ""
	if report.LastError != nil {
		errText = report.LastError.Error()
	}

	if len(report.FailedEmailUserIDs) > 0 {
		retry := *job
		retry.UserIDs = append([]string(nil), report.FailedEmailUserIDs...)
		retry.Roles = nil
		retry.SendEmail = true
		retry.SendSMS = false
		retry.Attempt = job.Attempt + 1
		retry.LastError = errText
		out = append(out, &retry)
	}
	if len(report.FailedSMSUserIDs) > 0 {
		retry := *job
		retry.UserIDs = append([]string(nil), report.FailedSMSUserIDs...)
		retry.Roles = nil
		retry.SendEmail = false
		retry.SendSMS = true
		retry.Attempt = job.Attempt + 1
		retry.LastError = errText
		out = append(out, &retry)
	}
	return out
}
