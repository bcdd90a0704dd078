package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination turns 1-based page/limit query values into a clamped window
func Pagination(page, limit int) (repositories.Page, int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return repositories.Page{Limit: limit, Offset: (page - 1) * limit}, page, limit
}

// ValidGraduationYear accepts 1900 through ten years from now
func ValidGraduationYear(year int, now time.Time) bool {
	return year >= 1900 && year <= now.Year()+10
}

type ProfileService struct {
	profiles *repositories.ProfileRepository
	now      func() time.Time
}

func NewProfileService(profiles *repositories.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*dtos.ProfileView, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound(constants.MsgProfileNotFound)
	}
	prefs, err := s.profiles.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileView(p, &prefs), nil
}

// UpdateMe applies a self-service edit. Role, chapter and status are not editable here.
func (s *ProfileService) UpdateMe(ctx context.Context, me *gormModels.Profile, req dtos.UpdateProfileRequest) (*dtos.ProfileView, error) {
	updates := map[string]interface{}{}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, invalid("full_name cannot be empty")
		}
		updates["full_name"] = name
	}
	if req.Phone != nil {
		if strings.TrimSpace(*req.Phone) == "" {
			updates["phone"] = nil
		} else {
			phone, ok := common.NormalizeUSPhone(*req.Phone)
			if !ok {
				return nil, invalid(constants.MsgInvalidPhone)
			}
			updates["phone"] = phone
		}
	}
	if req.GraduationYear != nil {
		if !ValidGraduationYear(*req.GraduationYear, s.now()) {
			return nil, invalid(constants.MsgInvalidGradYear)
		}
		updates["graduation_year"] = *req.GraduationYear
	}
	if req.Major != nil {
		updates["major"] = strings.TrimSpace(*req.Major)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.SMSConsent != nil {
		updates["sms_consent"] = *req.SMSConsent
	}

	if err := s.profiles.Update(ctx, me.ID, updates); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(constants.MsgProfileNotFound)
		}
		return nil, err
	}

	if req.NotificationPreferences != nil {
		if err := s.savePreferences(ctx, me.ID, req.NotificationPreferences); err != nil {
			return nil, err
		}
	}

	if req.Alumni != nil {
		if me.Role != constants.RoleAlumni {
			return nil, invalid("Only alumni have an alumni profile")
		}
		if err := s.saveAlumni(ctx, me, req.Alumni); err != nil {
			return nil, err
		}
	}

	return s.Me(ctx, me.ID)
}

func (s *ProfileService) savePreferences(ctx context.Context, userID string, patch *dtos.NotificationPreferencesPatch) error {
	prefs, err := s.profiles.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	if patch.EmailEnabled != nil {
		prefs.EmailEnabled = *patch.EmailEnabled
	}
	if patch.AnnouncementNotifications != nil {
		prefs.AnnouncementNotifications = *patch.AnnouncementNotifications
	}
	if patch.MessageNotifications != nil {
		prefs.MessageNotifications = *patch.MessageNotifications
	}
	if patch.ConnectionNotifications != nil {
		prefs.ConnectionNotifications = *patch.ConnectionNotifications
	}
	return s.profiles.SavePreferences(ctx, &prefs)
}

func (s *ProfileService) saveAlumni(ctx context.Context, me *gormModels.Profile, patch *dtos.AlumniProfilePatch) error {
	a := gormModels.AlumniProfile{UserID: me.ID}
	if me.AlumniProfile != nil {
		a = *me.AlumniProfile
	}
	if patch.Industry != nil {
		a.Industry = patch.Industry
	}
	if patch.Company != nil {
		a.Company = patch.Company
	}
	if patch.JobTitle != nil {
		a.JobTitle = patch.JobTitle
	}
	if patch.Location != nil {
		a.Location = patch.Location
	}
	if patch.LinkedInURL != nil {
		a.LinkedInURL = patch.LinkedInURL
	}
	return s.profiles.SaveAlumniProfile(ctx, &a)
}

func (s *ProfileService) ListMembers(ctx context.Context, chapterID, role, query string, page, limit int) (*dtos.Paginated[dtos.MemberSummary], error) {
	window, page, limit := Pagination(page, limit)
	filter := repositories.MemberFilter{ChapterID: chapterID, Query: query, Page: window}
	if role != "" {
		r := constants.MemberRole(role)
		if !r.Valid() {
			return nil, invalidf("Invalid role %q", role)
		}
		filter.Roles = []constants.MemberRole{r}
	}

	profiles, total, err := s.profiles.ListMembers(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dtos.MemberSummary, 0, len(profiles))
	for i := range profiles {
		items = append(items, *toMemberSummary(&profiles[i]))
	}
	return &dtos.Paginated[dtos.MemberSummary]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ProfileService) ListAlumni(ctx context.Context, chapterID, industry, location, query string, page, limit int) (*dtos.Paginated[dtos.MemberSummary], error) {
	window, page, limit := Pagination(page, limit)
	profiles, total, err := s.profiles.ListAlumni(ctx, repositories.AlumniFilter{
		ChapterID: chapterID,
		Industry:  industry,
		Location:  location,
		Query:     query,
		Page:      window,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dtos.MemberSummary, 0, len(profiles))
	for i := range profiles {
		items = append(items, *toMemberSummary(&profiles[i]))
	}
	return &dtos.Paginated[dtos.MemberSummary]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// UpdateMember is the admin edit of another member in the admin's own chapter
func (s *ProfileService) UpdateMember(ctx context.Context, admin *gormModels.Profile, memberID string, req dtos.UpdateMemberRequest) (*dtos.ProfileView, error) {
	target, err := s.profiles.GetInChapter(ctx, admin.ChapterID, memberID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, notFound(constants.MsgProfileNotFound)
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		role := constants.MemberRole(*req.Role)
		if !role.Valid() {
			return nil, invalidf("Invalid role %q", *req.Role)
		}
		if target.ID == admin.ID && role != constants.RoleAdmin {
			return nil, invalid("Admins cannot remove their own admin role")
		}
		updates["role"] = role
	}
	if req.ChapterRole != nil {
		if cr := strings.TrimSpace(*req.ChapterRole); cr == "" {
			updates["chapter_role"] = nil
		} else {
			updates["chapter_role"] = cr
		}
	}
	if req.MemberStatus != nil {
		status := constants.MemberStatus(*req.MemberStatus)
		if !status.Valid() {
			return nil, invalidf("Invalid member_status %q", *req.MemberStatus)
		}
		updates["member_status"] = status
	}

	if err := s.profiles.Update(ctx, target.ID, updates); err != nil {
		return nil, err
	}

	updated, err := s.profiles.GetByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return toProfileView(updated, nil), nil
}
