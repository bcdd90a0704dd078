package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
	"greek-row/chapterhouse/internal/providers"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	orm, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return orm
}

func seedChapter(t *testing.T, orm *gorm.DB, name string) *gormModels.Chapter {
	t.Helper()
	c := &gormModels.Chapter{
		Name:         name,
		Slug:         strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:8],
		Organization: "Sigma Test",
		School:       "State University",
		IsActive:     true,
	}
	require.NoError(t, orm.Create(c).Error)
	return c
}

type profileOpt func(*gormModels.Profile)

func withRole(r constants.MemberRole) profileOpt {
	return func(p *gormModels.Profile) { p.Role = r }
}

func withChapterRole(cr string) profileOpt {
	return func(p *gormModels.Profile) { p.ChapterRole = &cr }
}

func withStatus(s constants.MemberStatus) profileOpt {
	return func(p *gormModels.Profile) { p.MemberStatus = s }
}

func withPhone(phone string, consent bool) profileOpt {
	return func(p *gormModels.Profile) {
		p.Phone = &phone
		p.SMSConsent = consent
	}
}

func seedProfile(t *testing.T, orm *gorm.DB, chapterID, name string, opts ...profileOpt) *gormModels.Profile {
	t.Helper()
	p := &gormModels.Profile{
		ID:           uuid.NewString(),
		ChapterID:    chapterID,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.edu",
		FullName:     name,
		Role:         constants.RoleActiveMember,
		MemberStatus: constants.MemberStatusActive,
	}
	for _, o := range opts {
		o(p)
	}
	require.NoError(t, orm.Create(p).Error)
	return p
}

// recordingNotifier captures published jobs instead of enqueueing them
type recordingNotifier struct {
	mu   sync.Mutex
	jobs []*common.NotificationJob
}

func (r *recordingNotifier) Publish(_ context.Context, job *common.NotificationJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
}

func (r *recordingNotifier) Jobs() []*common.NotificationJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*common.NotificationJob(nil), r.jobs...)
}

// fakeEmail records every message and fails the addresses in failFor
type fakeEmail struct {
	mu      sync.Mutex
	sent    []providers.EmailMessage
	failFor map[string]bool
}

func (f *fakeEmail) Name() string { return "fake" }

func (f *fakeEmail) SendBatch(_ context.Context, msgs []providers.EmailMessage) []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := make([]error, len(msgs))
	for i, m := range msgs {
		if f.failFor[m.To] {
			errs[i] = errors.New("mailbox unavailable")
			continue
		}
		f.sent = append(f.sent, m)
	}
	return errs
}

type fakeSMS struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (f *fakeSMS) Name() string { return "fake" }

func (f *fakeSMS) Send(_ context.Context, to, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("undeliverable")
	}
	f.sent = append(f.sent, to)
	return nil
}

func ptr[T any](v T) *T { return &v }
