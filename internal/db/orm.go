package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/logging"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// Models lists every table managed by AutoMigrate in sqlite mode.
var Models = []interface{}{
	&gormModels.Chapter{},
	&gormModels.ChapterBranding{},
	&gormModels.ChapterFeatureFlags{},
	&gormModels.AuthUser{},
	&gormModels.Profile{},
	&gormModels.AlumniProfile{},
	&gormModels.NotificationPreferences{},
	&gormModels.ProvisioningRecord{},
	&gormModels.Invitation{},
	&gormModels.InvitationUsage{},
	&gormModels.Connection{},
	&gormModels.Message{},
	&gormModels.Announcement{},
	&gormModels.AnnouncementRecipient{},
	&gormModels.Recruit{},
}

// InitORM opens gorm for the configured driver. Postgres schemas come from
// cmd/migrate; sqlite is auto-migrated.
func InitORM(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Driver {
	case "postgres":
		orm, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logging.Info("Connected to Postgres via GORM")
		return orm, nil
	case "sqlite":
		orm, err := gorm.Open(sqlite.Open(cfg.SQLitePath+"?_foreign_keys=on"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		if err := orm.AutoMigrate(Models...); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
		}
		logging.Info("Opened SQLite via GORM", "path", cfg.SQLitePath)
		return orm, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenSQLiteMemory returns a migrated, isolated in-memory database.
func OpenSQLiteMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	orm, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := orm.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return orm, nil
}
