package services

import (
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

func toAlumniView(a *gormModels.AlumniProfile) *dtos.AlumniProfileView {
	if a == nil {
		return nil
	}
	return &dtos.AlumniProfileView{
		Industry:    a.Industry,
		Company:     a.Company,
		JobTitle:    a.JobTitle,
		Location:    a.Location,
		LinkedInURL: a.LinkedInURL,
	}
}

func toProfileView(p *gormModels.Profile, prefs *gormModels.NotificationPreferences) *dtos.ProfileView {
	v := &dtos.ProfileView{
		ID:             p.ID,
		ChapterID:      p.ChapterID,
		Email:          p.Email,
		FullName:       p.FullName,
		Phone:          p.Phone,
		Role:           p.Role.String(),
		ChapterRole:    p.ChapterRole,
		MemberStatus:   string(p.MemberStatus),
		Major:          p.Major,
		GraduationYear: p.GraduationYear,
		Bio:            p.Bio,
		AvatarURL:      p.AvatarURL,
		SMSConsent:     p.SMSConsent,
		Alumni:         toAlumniView(p.AlumniProfile),
		CreatedAt:      p.CreatedAt,
	}
	if prefs != nil {
		v.Preferences = &dtos.NotificationPreferencesView{
			EmailEnabled:              prefs.EmailEnabled,
			AnnouncementNotifications: prefs.AnnouncementNotifications,
			MessageNotifications:      prefs.MessageNotifications,
			ConnectionNotifications:   prefs.ConnectionNotifications,
		}
	}
	return v
}

func toMemberSummary(p *gormModels.Profile) *dtos.MemberSummary {
	if p == nil {
		return nil
	}
	return &dtos.MemberSummary{
		ID:             p.ID,
		FullName:       p.FullName,
		Email:          p.Email,
		Role:           p.Role.String(),
		ChapterRole:    p.ChapterRole,
		Major:          p.Major,
		GraduationYear: p.GraduationYear,
		AvatarURL:      p.AvatarURL,
		Alumni:         toAlumniView(p.AlumniProfile),
	}
}

func toInvitationView(inv *gormModels.Invitation) dtos.InvitationView {
	allow := []string(inv.EmailDomainAllowlist)
	if allow == nil {
		allow = []string{}
	}
	return dtos.InvitationView{
		ID:                   inv.ID,
		ChapterID:            inv.ChapterID,
		InvitationType:       inv.InvitationType,
		ApprovalMode:         inv.ApprovalMode,
		EmailDomainAllowlist: allow,
		SingleUse:            inv.SingleUse,
		MaxUses:              inv.MaxUses,
		UsageCount:           inv.UsageCount,
		ExpiresAt:            inv.ExpiresAt,
		IsActive:             inv.IsActive,
		CreatedAt:            inv.CreatedAt,
	}
}

func toConnectionView(c *gormModels.Connection, viewerID string) dtos.ConnectionView {
	direction := "outgoing"
	if c.RecipientID == viewerID {
		direction = "incoming"
	}
	return dtos.ConnectionView{
		ID:          c.ID,
		RequesterID: c.RequesterID,
		RecipientID: c.RecipientID,
		Status:      string(c.Status),
		Message:     c.Message,
		Direction:   direction,
		OtherUser:   toMemberSummary(c.OtherParty(viewerID)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toMessageView(m *gormModels.Message) dtos.MessageView {
	return dtos.MessageView{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

func toRecruitView(r *gormModels.Recruit) dtos.RecruitView {
	return dtos.RecruitView{
		ID:             r.ID,
		ChapterID:      r.ChapterID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Instagram:      r.Instagram,
		Hometown:       r.Hometown,
		Major:          r.Major,
		GraduationYear: r.GraduationYear,
		GPA:            r.GPA,
		Stage:          string(r.Stage),
		Notes:          r.Notes,
		ReferredBy:     r.ReferredBy,
		AddedBy:        r.AddedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toAnnouncementView(a *gormModels.Announcement) dtos.AnnouncementView {
	return dtos.AnnouncementView{
		ID:          a.ID,
		ChapterID:   a.ChapterID,
		AuthorID:    a.AuthorID,
		Title:       a.Title,
		Content:     a.Content,
		SendSMS:     a.SendSMS,
		ScheduledAt: a.ScheduledAt,
		SentAt:      a.SentAt,
		CreatedAt:   a.CreatedAt,
	}
}

func feedRowToView(r repositories.AnnouncementFeedRow) dtos.AnnouncementView {
	v := dtos.AnnouncementView{
		ID:        r.ID,
		ChapterID: r.ChapterID,
		AuthorID:  r.AuthorID,
		Title:     r.Title,
		Content:   r.Content,
		SendSMS:   r.SendSMS,
		SentAt:    r.SentAt,
		CreatedAt: r.CreatedAt,
		IsRead:    r.IsRead,
	}
	if r.AuthorName != nil {
		v.AuthorName = *r.AuthorName
	}
	return v
}
