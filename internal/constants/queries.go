package constants

// Announcement feed with per-user read status. Written with ? placeholders and
// rebound per driver by sqlx.
const (
	AnnouncementFeed = `
	SELECT a.id, a.chapter_id, a.author_id, a.title, a.content, a.send_sms,
	       a.sent_at, a.created_at,
	       p.full_name AS author_name,
	       r.read_at AS read_at,
	       CASE WHEN r.read_at IS NULL THEN 0 ELSE 1 END AS is_read
	FROM announcements a
	LEFT JOIN profiles p ON p.id = a.author_id
	LEFT JOIN announcement_recipients r ON r.announcement_id = a.id AND r.user_id = ?
	WHERE a.chapter_id = ? AND a.sent_at IS NOT NULL
	ORDER BY a.sent_at DESC, a.id DESC
	LIMIT ? OFFSET ?
	`

	AnnouncementFeedCount = `
	SELECT COUNT(*) FROM announcements WHERE chapter_id = ? AND sent_at IS NOT NULL
	`

	UnreadAnnouncementCount = `
	SELECT COUNT(*) FROM announcement_recipients r
	JOIN announcements a ON a.id = r.announcement_id
	WHERE r.user_id = ? AND r.read_at IS NULL AND a.sent_at IS NOT NULL
	`
)
