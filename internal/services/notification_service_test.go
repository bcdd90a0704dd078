package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

func TestNotificationService_DeliverEmailOnly(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Kappa Lambda")
	for i := 0; i < 6; i++ {
		seedProfile(t, orm, chapter.ID, fmt.Sprintf("Member %d", i), withPhone("555-010-000"+fmt.Sprint(i), true))
	}

	email, sms := &fakeEmail{}, &fakeSMS{}
	svc := NewNotificationService(common.NewLocalQueue(4), repositories.NewProfileRepository(orm), email, sms, nil, 2)

	job := common.NewNotificationJob(constants.NotifyAnnouncement, chapter.ID)
	job.Subject, job.Body = "Meeting", "Sunday"
	job.SendEmail = true

	report := svc.Deliver(ctx, job)
	assert.Equal(t, 6, report.Recipients)
	assert.Equal(t, 6, report.EmailAttempted)
	assert.Zero(t, report.SMSAttempted)
	assert.False(t, report.Failed())
	assert.Len(t, email.sent, 6)
	assert.Empty(t, sms.sent)
	assert.Contains(t, email.sent[0].HTML, "Sunday")
}

func TestNotificationService_PreferencesAndConsent(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	profiles := repositories.NewProfileRepository(orm)
	chapter := seedChapter(t, orm, "Kappa Lambda")

	optedOut := seedProfile(t, orm, chapter.ID, "Quiet One", withPhone("(555) 010-0001", true))
	seedProfile(t, orm, chapter.ID, "Loud One", withPhone("555.010.0002", true))
	seedProfile(t, orm, chapter.ID, "No Consent", withPhone("5550100003", false))
	seedProfile(t, orm, chapter.ID, "Bad Phone", withPhone("12345", true))
	seedProfile(t, orm, chapter.ID, "Old Timer", withRole(constants.RoleAlumni), withPhone("5550100005", true))

	prefs := gormModels.DefaultNotificationPreferences(optedOut.ID)
	prefs.AnnouncementNotifications = false
	require.NoError(t, profiles.SavePreferences(ctx, &prefs))

	email, sms := &fakeEmail{}, &fakeSMS{}
	svc := NewNotificationService(common.NewLocalQueue(4), profiles, email, sms, nil, 2)

	job := common.NewNotificationJob(constants.NotifyAnnouncement, chapter.ID)
	job.Roles = []constants.MemberRole{constants.RoleActiveMember}
	job.Subject, job.Body = "Formal", "Tickets"
	job.SendEmail, job.SendSMS = true, true

	report := svc.Deliver(ctx, job)
	assert.Equal(t, 4, report.Recipients, "role filter drops the alumnus")
	assert.Equal(t, 3, report.EmailAttempted, "opted-out member gets no email")
	assert.Equal(t, 2, report.SMSAttempted)
	assert.ElementsMatch(t, []string{"+15550100001", "+15550100002"}, sms.sent)

	// welcome mail ignores preferences
	welcome := common.NewNotificationJob(constants.NotifyWelcome, chapter.ID)
	welcome.UserIDs = []string{optedOut.ID}
	welcome.SendEmail = true
	report = svc.Deliver(ctx, welcome)
	assert.Equal(t, 1, report.EmailAttempted)
}

func TestNotificationService_PartialFailureRetry(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Kappa Lambda")
	bounced := seedProfile(t, orm, chapter.ID, "Bounced Mail", withPhone("5550100001", true))
	badSMS := seedProfile(t, orm, chapter.ID, "Bad Carrier", withPhone("5550100002", true))
	seedProfile(t, orm, chapter.ID, "Fine Member", withPhone("5550100003", true))

	email := &fakeEmail{failFor: map[string]bool{bounced.Email: true}}
	sms := &fakeSMS{failFor: map[string]bool{"+15550100002": true}}
	svc := NewNotificationService(common.NewLocalQueue(4), repositories.NewProfileRepository(orm), email, sms, nil, 1)

	job := common.NewNotificationJob(constants.NotifyAnnouncement, chapter.ID)
	job.Subject, job.Body = "Retreat", "Bring a sleeping bag"
	job.SendEmail, job.SendSMS = true, true

	report := svc.Deliver(ctx, job)
	require.True(t, report.Failed())
	assert.Equal(t, []string{bounced.ID}, report.FailedEmailUserIDs)
	assert.Equal(t, []string{badSMS.ID}, report.FailedSMSUserIDs)
	assert.Error(t, report.LastError)

	retries := RetryJobs(job, report)
	require.Len(t, retries, 2)

	assert.Equal(t, []string{bounced.ID}, retries[0].UserIDs)
	assert.True(t, retries[0].SendEmail)
	assert.False(t, retries[0].SendSMS)
	assert.Equal(t, 1, retries[0].Attempt)
	assert.NotEmpty(t, retries[0].LastError)

	assert.Equal(t, []string{badSMS.ID}, retries[1].UserIDs)
	assert.False(t, retries[1].SendEmail)
	assert.True(t, retries[1].SendSMS)

	// a retry only reaches the users that failed
	email.failFor = nil
	report = svc.Deliver(ctx, retries[0])
	assert.Equal(t, 1, report.Recipients)
	assert.False(t, report.Failed())

	assert.Empty(t, RetryJobs(job, DeliveryReport{}))
}

type failingQueue struct{ *common.LocalQueue }

func (failingQueue) Enqueue(context.Context, *common.NotificationJob) error {
	return errors.New("redis down")
}

func TestNotificationService_Publish(t *testing.T) {
	ctx := context.Background()
	queue := common.NewLocalQueue(4)
	svc := NewNotificationService(queue, nil, &fakeEmail{}, &fakeSMS{}, nil, 1)

	job := common.NewNotificationJob(constants.NotifyMessage, "chapter")
	job.SendEmail = true
	svc.Publish(ctx, job)

	silent := common.NewNotificationJob(constants.NotifyMessage, "chapter")
	svc.Publish(ctx, silent)

	got, _, err := queue.Dequeue(ctx, "test", 50*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	got, _, err = queue.Dequeue(ctx, "test", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got, "jobs with no channel are never enqueued")

	// publish failures are swallowed
	broken := NewNotificationService(failingQueue{queue}, nil, &fakeEmail{}, &fakeSMS{}, nil, 1)
	assert.NotPanics(t, func() { broken.Publish(ctx, job) })
}

func TestSMSText_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 313) + "é🎉 party"
	text := smsText("T", body)

	assert.True(t, utf8.ValidString(text))
	assert.LessOrEqual(t, len(text), smsMaxLength)
	assert.True(t, strings.HasSuffix(text, "a..."), "split rune is dropped, got %q", text[len(text)-8:])

	short := smsText("Formal", "Tickets  on\nsale")
	assert.Equal(t, "Formal: Tickets on sale", short)
}
