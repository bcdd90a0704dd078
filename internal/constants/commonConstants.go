package constants

type (
	APIStatus        string
	CachePrefix      string
	NotificationKind string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixFeatureFlags CachePrefix = "CHAPTER_FEATURES_"
	CachePrefixBranding     CachePrefix = "CHAPTER_BRANDING_"
	CachePrefixChapter      CachePrefix = "CHAPTER_"
)

const (
	NotifyAnnouncement       NotificationKind = "announcement"
	NotifyMessage            NotificationKind = "message"
	NotifyConnectionRequest  NotificationKind = "connection_request"
	NotifyConnectionAccepted NotificationKind = "connection_accepted"
	NotifyWelcome            NotificationKind = "welcome"
)

// Redis stream names for the outbound notification queue
const (
	NotificationStream     = "notifications:outbound"
	NotificationDeadLetter = "notifications:dead"
	NotificationGroup      = "notification-workers"
)

const SessionCookieName = "chapterhouse_session"

// Feature flag keys a chapter may toggle
var FeatureFlagKeys = []string{
	"recruitment",
	"alumni_network",
	"messaging",
	"announcements",
	"sms_notifications",
	"events",
}

// Branding keys a chapter may set
var BrandingKeys = []string{
	"primary_color",
	"secondary_color",
	"accent_color",
	"logo_url",
	"banner_url",
	"tagline",
}
