package api

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	"greek-row/chapterhouse/internal/providers"
	"greek-row/chapterhouse/internal/services"
)

type Repositories struct {
	Profiles         *repositories.ProfileRepository
	AuthUsers        *repositories.AuthUserRepository
	Invitations      *repositories.InvitationRepository
	Connections      *repositories.ConnectionRepository
	Messages         *repositories.MessageRepository
	Announcements    *repositories.AnnouncementRepository
	AnnouncementFeed *repositories.AnnouncementFeedRepository
	Recruits         *repositories.RecruitRepository
	Chapters         *repositories.ChapterRepository
}

type Services struct {
	Auth          *services.AuthService
	Profiles      *services.ProfileService
	Invitations   *services.InvitationService
	Notifications *services.NotificationService
	Announcements *services.AnnouncementService
	Connections   *services.ConnectionService
	Messages      *services.MessageService
	Recruitment   *services.RecruitmentService
	Chapters      *services.ChapterService

	Cache    common.CacheInterface
	Sessions common.SessionStore
	Queue    common.NotificationQueue
	Tokens   *auth.TokenIssuer
}

type Dependencies struct {
	Config   *config.Config
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	SQL      *sqlx.DB
	Redis    *redis.Client
}

// InitDependencies builds the providers named in cfg and wires everything else
func InitDependencies(cfg *config.Config, orm *gorm.DB, sqlDB *sqlx.DB, redisClient *redis.Client, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	email, err := providers.NewEmailProvider(cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("email provider: %w", err)
	}
	sms, err := providers.NewSMSProvider(cfg.SMS)
	if err != nil {
		return nil, fmt.Errorf("sms provider: %w", err)
	}
	return NewDependencies(cfg, orm, sqlDB, redisClient, metricsReg, email, sms), nil
}

// NewDependencies wires repositories and services. A nil redisClient selects
// the in-process cache, session store and notification queue.
func NewDependencies(
	cfg *config.Config,
	orm *gorm.DB,
	sqlDB *sqlx.DB,
	redisClient *redis.Client,
	metricsReg *metrics.MetricsRegistry,
	email providers.EmailProvider,
	sms providers.SMSProvider,
) *Dependencies {
	repos := &Repositories{
		Profiles:         repositories.NewProfileRepository(orm),
		AuthUsers:        repositories.NewAuthUserRepository(orm),
		Invitations:      repositories.NewInvitationRepository(orm),
		Connections:      repositories.NewConnectionRepository(orm),
		Messages:         repositories.NewMessageRepository(orm),
		Announcements:    repositories.NewAnnouncementRepository(orm),
		AnnouncementFeed: repositories.NewAnnouncementFeedRepository(sqlDB),
		Recruits:         repositories.NewRecruitRepository(orm),
		Chapters:         repositories.NewChapterRepository(orm),
	}

	var (
		cache    common.CacheInterface
		sessions common.SessionStore
		queue    common.NotificationQueue
	)
	if redisClient != nil {
		cache = common.NewRedisCacheService(redisClient)
		sessions = common.NewSessionService(redisClient, cfg.Auth.SessionTTL)
		queue = common.NewRedisQueueService(redisClient,
			constants.NotificationStream, constants.NotificationGroup, constants.NotificationDeadLetter)
		logging.Info("Using Redis for cache, sessions and notification queue")
	} else {
		cache = common.NewCacheService(10*time.Minute, 15*time.Minute)
		sessions = common.NewMemorySessionStore(cfg.Auth.SessionTTL)
		queue = common.NewLocalQueue(cfg.Notify.LocalBuffer)
		logging.Info("Redis not configured, using in-process cache, sessions and notification queue")
	}

	identity := auth.NewLocalIdentityProvider(repos.AuthUsers)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	notifications := services.NewNotificationService(queue, repos.Profiles, email, sms, metricsReg, cfg.SMS.MaxConcurrentSends)

	svcs := &Services{
		Auth:          services.NewAuthService(identity, tokens, sessions, repos.Profiles),
		Profiles:      services.NewProfileService(repos.Profiles),
		Invitations:   services.NewInvitationService(orm, identity, notifications, metricsReg, cfg.BaseURL),
		Notifications: notifications,
		Announcements: services.NewAnnouncementService(repos.Announcements, repos.AnnouncementFeed, repos.Profiles, notifications),
		Connections:   services.NewConnectionService(repos.Connections, repos.Profiles, notifications, cfg.BaseURL),
		Messages:      services.NewMessageService(repos.Messages, repos.Connections, repos.Profiles, notifications, cfg.BaseURL),
		Recruitment:   services.NewRecruitmentService(),
		Chapters:      services.NewChapterService(repos.Chapters, cache, metricsReg),
		Cache:         cache,
		Sessions:      sessions,
		Queue:         queue,
		Tokens:        tokens,
	}

	return &Dependencies{
		Config:   cfg,
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		SQL:      sqlDB,
		Redis:    redisClient,
	}
}
