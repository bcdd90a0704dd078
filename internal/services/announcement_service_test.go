package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type announcementFixture struct {
	orm      *gorm.DB
	svc      *AnnouncementService
	notifier *recordingNotifier
	chapter  *gormModels.Chapter
	admin    *gormModels.Profile
	member   *gormModels.Profile
}

func newAnnouncementFixture(t *testing.T) *announcementFixture {
	t.Helper()
	orm := setupTestDB(t)
	sqlxDB, err := db.SqlxFromORM(orm)
	require.NoError(t, err)

	f := &announcementFixture{orm: orm, notifier: &recordingNotifier{}}
	f.svc = NewAnnouncementService(
		repositories.NewAnnouncementRepository(orm),
		repositories.NewAnnouncementFeedRepository(sqlxDB),
		repositories.NewProfileRepository(orm),
		f.notifier,
	)
	f.chapter = seedChapter(t, orm, "Theta Iota")
	f.admin = seedProfile(t, orm, f.chapter.ID, "Admin One", withRole(constants.RoleAdmin))
	f.member = seedProfile(t, orm, f.chapter.ID, "Plain Member")
	return f
}

func (f *announcementFixture) recipientCount(t *testing.T, announcementID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.orm.Model(&gormModels.AnnouncementRecipient{}).
		Where("announcement_id = ?", announcementID).Count(&n).Error)
	return n
}

func TestAnnouncementService_CreatePermissions(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	president := seedProfile(t, f.orm, f.chapter.ID, "Prez", withChapterRole(constants.ChapterRolePresident))
	req := dtos.CreateAnnouncementRequest{Title: "Chapter meeting", Content: "Sunday 7pm"}

	_, err := f.svc.Create(ctx, f.member, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))

	view, err := f.svc.Create(ctx, president, req)
	require.NoError(t, err)
	assert.Equal(t, "Prez", view.AuthorName)

	_, err = f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{Title: "  ", Content: "x"})
	requireInvalid(t, err, constants.MsgMissingFields)
}

func TestAnnouncementService_CreateImmediate(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	seedProfile(t, f.orm, f.chapter.ID, "Waiting Pledge", withStatus(constants.MemberStatusPendingApproval))
	other := seedChapter(t, f.orm, "Other House")
	seedProfile(t, f.orm, other.ID, "Outsider")

	view, err := f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{
		Title:   " Formal ",
		Content: "Tickets on sale",
		SendSMS: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Formal", view.Title)
	require.NotNil(t, view.SentAt)

	// admin and member only; pending and foreign profiles are excluded
	assert.Equal(t, int64(2), f.recipientCount(t, view.ID))

	jobs := f.notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.NotifyAnnouncement, jobs[0].Kind)
	assert.Equal(t, f.chapter.ID, jobs[0].ChapterID)
	assert.True(t, jobs[0].SendEmail, "email defaults to on")
	assert.True(t, jobs[0].SendSMS)
	assert.Contains(t, jobs[0].Body, "Posted by Admin One")
}

func TestAnnouncementService_ScheduledPublishesOnce(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	view, err := f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{
		Title:       "Rush week",
		Content:     "Starts Monday",
		SendEmail:   ptr(false),
		ScheduledAt: ptr(now.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Nil(t, view.SentAt)
	assert.Empty(t, f.notifier.Jobs())

	n, err := f.svc.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "not due yet")

	feed, err := f.svc.Feed(ctx, f.member, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, feed.Items, "unsent announcements stay out of the feed")

	now = now.Add(2 * time.Hour)
	n, err = f.svc.PublishDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.svc.PublishDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	jobs := f.notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].SendEmail)
	assert.Contains(t, jobs[0].Body, "Admin One")
}

func TestAnnouncementService_FeedAndRead(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{Title: "One", Content: "first"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{Title: "Two", Content: "second"})
	require.NoError(t, err)

	feed, err := f.svc.Feed(ctx, f.member, 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, int64(2), feed.Total)
	assert.Equal(t, int64(2), feed.Unread)

	require.NoError(t, f.svc.MarkRead(ctx, f.member, first.ID))
	require.NoError(t, f.svc.MarkRead(ctx, f.member, first.ID), "marking twice is harmless")

	feed, err = f.svc.Feed(ctx, f.member, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), feed.Unread)
	for _, item := range feed.Items {
		assert.Equal(t, item.ID == first.ID, item.IsRead, item.Title)
		assert.Equal(t, "Admin One", item.AuthorName)
	}

	err = f.svc.MarkRead(ctx, f.member, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAnnouncementService_DeleteScopedToChapter(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	other := seedChapter(t, f.orm, "Other House")
	otherAdmin := seedProfile(t, f.orm, other.ID, "Other Admin", withRole(constants.RoleAdmin))

	view, err := f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{Title: "Oops", Content: "typo"})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, otherAdmin, view.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, f.svc.Delete(ctx, f.admin, view.ID))
	assert.Zero(t, f.recipientCount(t, view.ID))

	feed, err := f.svc.Feed(ctx, f.member, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

func TestAnnouncementService_FanOutRespectsPreferences(t *testing.T) {
	f := newAnnouncementFixture(t)
	ctx := context.Background()
	profiles := repositories.NewProfileRepository(f.orm)

	members := []*gormModels.Profile{f.admin, f.member}
	for i := 0; i < 8; i++ {
		members = append(members, seedProfile(t, f.orm, f.chapter.ID, fmt.Sprintf("Brother %d", i)))
	}
	for i, m := range members {
		phone := fmt.Sprintf("555-020-%04d", i)
		require.NoError(t, f.orm.Model(m).Updates(map[string]interface{}{"phone": phone, "sms_consent": true}).Error)
	}
	for i, m := range members[6:] {
		prefs := gormModels.DefaultNotificationPreferences(m.ID)
		if i%2 == 0 {
			prefs.EmailEnabled = false
		} else {
			prefs.AnnouncementNotifications = false
		}
		require.NoError(t, profiles.SavePreferences(ctx, &prefs))
	}

	view, err := f.svc.Create(ctx, f.admin, dtos.CreateAnnouncementRequest{Title: "Philanthropy", Content: "Saturday 9am"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.recipientCount(t, view.ID))

	jobs := f.notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].SendSMS)

	email, sms := &fakeEmail{}, &fakeSMS{}
	notifications := NewNotificationService(common.NewLocalQueue(4), profiles, email, sms, nil, 2)
	report := notifications.Deliver(ctx, jobs[0])

	assert.Equal(t, 10, report.Recipients)
	assert.Equal(t, 6, report.EmailAttempted)
	assert.Len(t, email.sent, 6)
	assert.Zero(t, report.SMSAttempted)
	assert.Empty(t, sms.sent, "no sms without send_sms even with phone and consent")
}
