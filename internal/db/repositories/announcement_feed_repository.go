package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"greek-row/chapterhouse/internal/constants"
)

// AnnouncementFeedRow is one line of a member's announcement feed
type AnnouncementFeedRow struct {
	ID         string     `db:"id"`
	ChapterID  string     `db:"chapter_id"`
	AuthorID   string     `db:"author_id"`
	AuthorName *string    `db:"author_name"`
	Title      string     `db:"title"`
	Content    string     `db:"content"`
	SendSMS    bool       `db:"send_sms"`
	SentAt     *time.Time `db:"sent_at"`
	CreatedAt  time.Time  `db:"created_at"`
	ReadAt     *time.Time `db:"read_at"`
	IsRead     bool       `db:"is_read"`
}

// AnnouncementFeedRepository runs the read-status join with sqlx
type AnnouncementFeedRepository struct {
	db *sqlx.DB
}

func NewAnnouncementFeedRepository(db *sqlx.DB) *AnnouncementFeedRepository {
	return &AnnouncementFeedRepository{db: db}
}

func (r *AnnouncementFeedRepository) Feed(ctx context.Context, userID, chapterID string, page Page) ([]AnnouncementFeedRow, error) {
	rows := []AnnouncementFeedRow{}
	query := r.db.Rebind(constants.AnnouncementFeed)
	if err := r.db.SelectContext(ctx, &rows, query, userID, chapterID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("failed to load announcement feed: %w", err)
	}
	return rows, nil
}

func (r *AnnouncementFeedRepository) Count(ctx context.Context, chapterID string) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(constants.AnnouncementFeedCount), chapterID); err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}
	return n, nil
}

func (r *AnnouncementFeedRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(constants.UnreadAnnouncementCount), userID); err != nil {
		return 0, fmt.Errorf("failed to count unread announcements: %w", err)
	}
	return n, nil
}

// Ping checks the sqlx pool
func (r *AnnouncementFeedRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
