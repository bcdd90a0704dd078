package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const dueBatchSize = 50

type AnnouncementService struct {
	announcements *repositories.AnnouncementRepository
	feed          *repositories.AnnouncementFeedRepository
	profiles      *repositories.ProfileRepository
	notifier      Notifier
	now           func() time.Time
}

func NewAnnouncementService(
	announcements *repositories.AnnouncementRepository,
	feed *repositories.AnnouncementFeedRepository,
	profiles *repositories.ProfileRepository,
	notifier Notifier,
) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		feed:          feed,
		profiles:      profiles,
		notifier:      notifier,
		now:           time.Now,
	}
}

// Feed returns the caller's chapter announcements that have gone out, newest first
func (s *AnnouncementService) Feed(ctx context.Context, me *gormModels.Profile, page, limit int) (*dtos.AnnouncementFeed, error) {
	p, page, limit := Pagination(page, limit)

	rows, err := s.feed.Feed(ctx, me.ID, me.ChapterID, p)
	if err != nil {
		return nil, err
	}
	total, err := s.feed.Count(ctx, me.ChapterID)
	if err != nil {
		return nil, err
	}
	unread, err := s.feed.UnreadCount(ctx, me.ID)
	if err != nil {
		return nil, err
	}

	items := make([]dtos.AnnouncementView, 0, len(rows))
	for _, r := range rows {
		items = append(items, feedRowToView(r))
	}
	return &dtos.AnnouncementFeed{
		Paginated: dtos.Paginated[dtos.AnnouncementView]{
			Items: items,
			Total: total,
			Page:  page,
			Limit: limit,
		},
		Unread: unread,
	}, nil
}

// Create stores an announcement addressed to every active member of the
// author's chapter. Unscheduled announcements are sent immediately.
func (s *AnnouncementService) Create(ctx context.Context, author *gormModels.Profile, req dtos.CreateAnnouncementRequest) (*dtos.AnnouncementView, error) {
	if author.Role != constants.RoleAdmin && !author.IsExec() {
		return nil, forbidden(constants.MsgForbidden)
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, invalid(constants.MsgMissingFields)
	}

	now := s.now().UTC()
	a := &gormModels.Announcement{
		ChapterID: author.ChapterID,
		AuthorID:  author.ID,
		Title:     title,
		Content:   content,
		SendEmail: req.SendEmail == nil || *req.SendEmail,
		SendSMS:   req.SendSMS,
	}

	immediate := req.ScheduledAt == nil || !req.ScheduledAt.After(now)
	if immediate {
		a.SentAt = &now
	} else {
		at := req.ScheduledAt.UTC()
		a.ScheduledAt = &at
	}

	members, err := s.profiles.FindRecipients(ctx, author.ChapterID, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	if err := s.announcements.CreateWithRecipients(ctx, a, ids); err != nil {
		return nil, err
	}

	if immediate {
		s.notifier.Publish(ctx, AnnouncementJob(a, author.FullName))
	}

	logging.FromContext(ctx).Infow("Announcement created",
		"announcement_id", a.ID, "recipients", len(ids), "scheduled", !immediate)

	v := toAnnouncementView(a)
	v.AuthorName = author.FullName
	return &v, nil
}

func (s *AnnouncementService) MarkRead(ctx context.Context, me *gormModels.Profile, id string) error {
	if err := s.announcements.MarkRead(ctx, id, me.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Announcement not found")
		}
		return err
	}
	return nil
}

func (s *AnnouncementService) Delete(ctx context.Context, admin *gormModels.Profile, id string) error {
	if err := s.announcements.Delete(ctx, admin.ChapterID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Announcement not found")
		}
		return err
	}
	return nil
}

// PublishDue sends scheduled announcements whose time has come. Each one is
// claimed first so concurrent runners never send twice.
func (s *AnnouncementService) PublishDue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.announcements.ListDue(ctx, now, dueBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		a := &due[i]
		claimed, err := s.announcements.ClaimSend(ctx, a.ID, now)
		if err != nil {
			return sent, err
		}
		if !claimed {
			continue
		}
		a.SentAt = &now

		authorName := ""
		if author, err := s.profiles.GetByID(ctx, a.AuthorID); err == nil && author != nil {
			authorName = author.FullName
		}
		s.notifier.Publish(ctx, AnnouncementJob(a, authorName))
		sent++
	}
	return sent, nil
}
