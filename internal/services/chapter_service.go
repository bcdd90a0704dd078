package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const chapterSettingsTTL = 5 * time.Minute

// Flags a chapter gets before an admin has saved anything
var defaultFeatureFlags = map[string]bool{
	"recruitment":       true,
	"alumni_network":    true,
	"messaging":         true,
	"announcements":     true,
	"sms_notifications": false,
	"events":            false,
}

var brandingColorKeys = map[string]bool{
	"primary_color":   true,
	"secondary_color": true,
	"accent_color":    true,
}

type ChapterService struct {
	chapters *repositories.ChapterRepository
	cache    common.CacheInterface
	metrics  *metrics.MetricsRegistry
}

func NewChapterService(chapters *repositories.ChapterRepository, cache common.CacheInterface, metricsReg *metrics.MetricsRegistry) *ChapterService {
	return &ChapterService{chapters: chapters, cache: cache, metrics: metricsReg}
}

func requireChapterMember(me *gormModels.Profile, chapterID string) error {
	if me.ChapterID != chapterID {
		return forbidden(constants.MsgWrongChapter)
	}
	return nil
}

func requireChapterAdmin(me *gormModels.Profile, chapterID string) error {
	if me.ChapterID != chapterID || me.Role != constants.RoleAdmin {
		return forbidden(constants.MsgWrongChapter)
	}
	return nil
}

func (s *ChapterService) Get(ctx context.Context, me *gormModels.Profile, chapterID string) (*dtos.ChapterView, error) {
	if err := requireChapterMember(me, chapterID); err != nil {
		return nil, err
	}

	c, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("Chapter not found")
	}

	counts, err := s.chapters.CountMembers(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	features, err := s.features(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	branding, err := s.branding(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	return &dtos.ChapterView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Organization: c.Organization,
		School:       c.School,
		MemberCounts: counts,
		Features:     features,
		Branding:     branding,
	}, nil
}

func (s *ChapterService) Features(ctx context.Context, me *gormModels.Profile, chapterID string) (map[string]bool, error) {
	if err := requireChapterMember(me, chapterID); err != nil {
		return nil, err
	}
	return s.features(ctx, chapterID)
}

// FeatureEnabled is used by route guards; lookup errors count as disabled
func (s *ChapterService) FeatureEnabled(ctx context.Context, chapterID, key string) bool {
	flags, err := s.features(ctx, chapterID)
	if err != nil {
		logging.FromContext(ctx).Warnw("Feature flag lookup failed", "chapter_id", chapterID, "error", err)
		return false
	}
	return flags[key]
}

func (s *ChapterService) features(ctx context.Context, chapterID string) (map[string]bool, error) {
	key := string(constants.CachePrefixFeatureFlags) + chapterID

	var cached map[string]bool
	if s.cache.GetInto(key, &cached) {
		s.metrics.CacheLookup(string(constants.CachePrefixFeatureFlags), true)
		return cached, nil
	}
	s.metrics.CacheLookup(string(constants.CachePrefixFeatureFlags), false)

	stored, err := s.chapters.GetFeatureFlags(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	flags := make(map[string]bool, len(defaultFeatureFlags))
	for k, v := range defaultFeatureFlags {
		flags[k] = v
	}
	for k, v := range stored {
		if _, known := defaultFeatureFlags[k]; known {
			flags[k] = v
		}
	}

	s.cache.Set(key, flags, chapterSettingsTTL)
	return flags, nil
}

// UpdateFeatures shallow-merges patch into the stored flags
func (s *ChapterService) UpdateFeatures(ctx context.Context, me *gormModels.Profile, chapterID string, patch map[string]bool) (map[string]bool, error) {
	if err := requireChapterAdmin(me, chapterID); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, invalid("No feature flags supplied")
	}
	for k := range patch {
		if !common.ContainsString(constants.FeatureFlagKeys, k) {
			return nil, invalidf("Unknown feature flag %q", k)
		}
	}

	stored, err := s.chapters.GetFeatureFlags(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		stored[k] = v
	}
	if err := s.chapters.SaveFeatureFlags(ctx, chapterID, stored); err != nil {
		return nil, err
	}

	s.cache.Delete(string(constants.CachePrefixFeatureFlags) + chapterID)
	logging.FromContext(ctx).Infow("Feature flags updated", "chapter_id", chapterID, "changed", len(patch))
	return s.features(ctx, chapterID)
}

func (s *ChapterService) Branding(ctx context.Context, me *gormModels.Profile, chapterID string) (map[string]string, error) {
	if err := requireChapterMember(me, chapterID); err != nil {
		return nil, err
	}
	return s.branding(ctx, chapterID)
}

func (s *ChapterService) branding(ctx context.Context, chapterID string) (map[string]string, error) {
	key := string(constants.CachePrefixBranding) + chapterID

	var cached map[string]string
	if s.cache.GetInto(key, &cached) {
		s.metrics.CacheLookup(string(constants.CachePrefixBranding), true)
		return cached, nil
	}
	s.metrics.CacheLookup(string(constants.CachePrefixBranding), false)

	settings, err := s.chapters.GetBranding(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, settings, chapterSettingsTTL)
	return settings, nil
}

func validateBrandingValue(key, value string) error {
	switch {
	case brandingColorKeys[key]:
		if err := common.Validator().Var(value, "hexcolor6"); err != nil {
			return invalidf("%s must be a #RRGGBB color", key)
		}
	case strings.HasSuffix(key, "_url"):
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalidf("%s must be an http(s) URL", key)
		}
	case key == "tagline":
		if len(value) > 200 {
			return invalid("tagline must be at most 200 characters")
		}
	}
	return nil
}

// UpdateBranding shallow-merges patch. An empty string clears a key.
func (s *ChapterService) UpdateBranding(ctx context.Context, me *gormModels.Profile, chapterID string, patch map[string]string) (map[string]string, error) {
	if err := requireChapterAdmin(me, chapterID); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, invalid("No branding settings supplied")
	}
	for k, v := range patch {
		if !common.ContainsString(constants.BrandingKeys, k) {
			return nil, invalidf("Unknown branding key %q", k)
		}
		if v == "" {
			continue
		}
		if err := validateBrandingValue(k, strings.TrimSpace(v)); err != nil {
			return nil, err
		}
	}

	stored, err := s.chapters.GetBranding(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		v = strings.TrimSpace(v)
		if v == "" {
			delete(stored, k)
			continue
		}
		if brandingColorKeys[k] {
			v = strings.ToUpper(v)
		}
		stored[k] = v
	}
	if err := s.chapters.SaveBranding(ctx, chapterID, stored); err != nil {
		return nil, err
	}

	s.cache.Delete(string(constants.CachePrefixBranding) + chapterID)
	return s.branding(ctx, chapterID)
}
