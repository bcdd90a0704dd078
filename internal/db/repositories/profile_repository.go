package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// ProfileRepository handles profiles, alumni profiles and notification preferences
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy bound to tx
func (r *ProfileRepository) WithTx(tx *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// GetByID loads a profile with its alumni profile, or nil when missing
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*gormModels.Profile, error) {
	var p gormModels.Profile
	err := r.db.WithContext(ctx).
		Preload("AlumniProfile").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*gormModels.Profile, error) {
	var p gormModels.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

// GetInChapter returns the profile only when it belongs to chapterID
func (r *ProfileRepository) GetInChapter(ctx context.Context, chapterID, id string) (*gormModels.Profile, error) {
	var p gormModels.Profile
	err := r.db.WithContext(ctx).
		Preload("AlumniProfile").
		Where("id = ? AND chapter_id = ?", id, chapterID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *gormModels.Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update applies column updates and returns ErrNotFound when no row matched
func (r *ProfileRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&gormModels.Profile{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MemberFilter narrows the chapter directory
type MemberFilter struct {
	ChapterID string
	Roles     []constants.MemberRole
	Query     string
	Page
}

// ListMembers returns active members of a chapter ordered by name, plus the total
func (r *ProfileRepository) ListMembers(ctx context.Context, f MemberFilter) ([]gormModels.Profile, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&gormModels.Profile{}).
		Where("chapter_id = ? AND member_status = ?", f.ChapterID, constants.MemberStatusActive)

	if len(f.Roles) > 0 {
		q = q.Where("role IN ?", f.Roles)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(major, '')) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	var profiles []gormModels.Profile
	err := q.Order("full_name ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return profiles, total, nil
}

// AlumniFilter narrows the alumni directory
type AlumniFilter struct {
	ChapterID string
	Industry  string
	Location  string
	Query     string
	Page
}

func (r *ProfileRepository) ListAlumni(ctx context.Context, f AlumniFilter) ([]gormModels.Profile, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&gormModels.Profile{}).
		Joins("LEFT JOIN alumni_profiles ON alumni_profiles.user_id = profiles.id").
		Where("profiles.chapter_id = ? AND profiles.role = ? AND profiles.member_status = ?",
			f.ChapterID, constants.RoleAlumni, constants.MemberStatusActive)

	if f.Industry != "" {
		q = q.Where("LOWER(alumni_profiles.industry) = ?", strings.ToLower(f.Industry))
	}
	if f.Location != "" {
		q = q.Where("LOWER(alumni_profiles.location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(profiles.full_name) LIKE ? OR LOWER(COALESCE(alumni_profiles.company, '')) LIKE ? OR LOWER(COALESCE(alumni_profiles.job_title, '')) LIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alumni: %w", err)
	}

	var profiles []gormModels.Profile
	err := q.Preload("AlumniProfile").
		Order("profiles.full_name ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alumni: %w", err)
	}
	return profiles, total, nil
}

// FindRecipients returns active chapter members holding any of roles
func (r *ProfileRepository) FindRecipients(ctx context.Context, chapterID string, roles []constants.MemberRole) ([]gormModels.Profile, error) {
	q := r.db.WithContext(ctx).
		Where("chapter_id = ? AND member_status = ?", chapterID, constants.MemberStatusActive)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}

	var profiles []gormModels.Profile
	if err := q.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recipients: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) FindByIDs(ctx context.Context, ids []string) ([]gormModels.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []gormModels.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}
	return profiles, nil
}

// GetPreferences returns stored preferences, or all-enabled defaults when the user has no row
func (r *ProfileRepository) GetPreferences(ctx context.Context, userID string) (gormModels.NotificationPreferences, error) {
	prefs, err := r.GetPreferencesFor(ctx, []string{userID})
	if err != nil {
		return gormModels.NotificationPreferences{}, err
	}
	return prefs[userID], nil
}

// GetPreferencesFor returns one entry per requested user, defaults filled in
func (r *ProfileRepository) GetPreferencesFor(ctx context.Context, userIDs []string) (map[string]gormModels.NotificationPreferences, error) {
	out := make(map[string]gormModels.NotificationPreferences, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []gormModels.NotificationPreferences
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notification preferences: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = row
	}
	for _, id := range userIDs {
		if _, ok := out[id]; !ok {
			out[id] = gormModels.DefaultNotificationPreferences(id)
		}
	}
	return out, nil
}

func (r *ProfileRepository) SavePreferences(ctx context.Context, prefs *gormModels.NotificationPreferences) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to save notification preferences: %w", err)
	}
	return nil
}

func (r *ProfileRepository) SaveAlumniProfile(ctx context.Context, a *gormModels.AlumniProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(a).Error
	if err != nil {
		return fmt.Errorf("failed to save alumni profile: %w", err)
	}
	return nil
}
