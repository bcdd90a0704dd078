package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

const (
	invitationTokenBytes = 32
	minPasswordLength    = 8
	compensationAttempts = 3
)

// Notifier is the publishing half of NotificationService
type Notifier interface {
	Publish(ctx context.Context, job *common.NotificationJob)
}

var (
	errUseNotClaimed = errors.New("invitation use not claimed")
	errAlreadyUsed   = errors.New("invitation already used by email")
)

type InvitationService struct {
	db           *gorm.DB
	invitations  *repositories.InvitationRepository
	profiles     *repositories.ProfileRepository
	provisioning *repositories.ProvisioningRepository
	identity     auth.IdentityProvider
	notifier     Notifier
	metrics      *metrics.MetricsRegistry
	baseURL      string
	now          func() time.Time
	retryDelay   time.Duration
}

func NewInvitationService(
	db *gorm.DB,
	identity auth.IdentityProvider,
	notifier Notifier,
	metricsReg *metrics.MetricsRegistry,
	baseURL string,
) *InvitationService {
	return &InvitationService{
		db:           db,
		invitations:  repositories.NewInvitationRepository(db),
		profiles:     repositories.NewProfileRepository(db),
		provisioning: repositories.NewProvisioningRepository(db),
		identity:     identity,
		notifier:     notifier,
		metrics:      metricsReg,
		baseURL:      strings.TrimRight(baseURL, "/"),
		now:          time.Now,
		retryDelay:   200 * time.Millisecond,
	}
}

// Create issues a new invitation for the admin's own chapter. The raw token
// is returned once and only its fingerprint is stored.
func (s *InvitationService) Create(ctx context.Context, admin *gormModels.Profile, req dtos.CreateInvitationRequest) (*dtos.CreatedInvitation, error) {
	if req.ChapterID != admin.ChapterID {
		return nil, forbidden(constants.MsgWrongChapter)
	}

	now := s.now().UTC()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, invalid("expires_at must be in the future")
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, invalid("max_uses must be at least 1")
	}

	invType := req.InvitationType
	if invType == "" {
		invType = constants.InvitationTypeActiveMember
	}
	if invType != constants.InvitationTypeActiveMember && invType != constants.InvitationTypeAlumni {
		return nil, invalidf("Invalid invitation_type %q", req.InvitationType)
	}
	mode := req.ApprovalMode
	if mode == "" {
		mode = constants.ApprovalModeAuto
	}
	if mode != constants.ApprovalModeAuto && mode != constants.ApprovalModeManual {
		return nil, invalidf("Invalid approval_mode %q", req.ApprovalMode)
	}

	token, err := auth.GenerateToken(invitationTokenBytes)
	if err != nil {
		return nil, err
	}

	inv := &gormModels.Invitation{
		ChapterID:            admin.ChapterID,
		TokenHash:            auth.FingerprintToken(token),
		InvitationType:       invType,
		ApprovalMode:         mode,
		EmailDomainAllowlist: normalizeDomains(req.EmailDomainAllowlist),
		SingleUse:            req.SingleUse,
		MaxUses:              req.MaxUses,
		IsActive:             true,
		CreatedBy:            admin.ID,
	}
	if req.ExpiresAt != nil {
		exp := req.ExpiresAt.UTC()
		inv.ExpiresAt = &exp
	}

	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infow("Invitation created",
		"invitation_id", inv.ID, "chapter_id", inv.ChapterID, "type", inv.InvitationType)

	return &dtos.CreatedInvitation{
		InvitationView: toInvitationView(inv),
		Token:          token,
		URL:            s.invitationURL(inv.InvitationType, token),
	}, nil
}

func (s *InvitationService) invitationURL(invType, token string) string {
	if invType == constants.InvitationTypeAlumni {
		return fmt.Sprintf("%s/alumni-join/%s", s.baseURL, token)
	}
	return fmt.Sprintf("%s/join/%s", s.baseURL, token)
}

func normalizeDomains(in []string) gormModels.StringList {
	out := make(gormModels.StringList, 0, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" && !common.ContainsString(out, d) {
			out = append(out, d)
		}
	}
	return out
}

func (s *InvitationService) List(ctx context.Context, chapterID string) ([]dtos.InvitationView, error) {
	invs, err := s.invitations.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.InvitationView, 0, len(invs))
	for i := range invs {
		out = append(out, toInvitationView(&invs[i]))
	}
	return out, nil
}

// Deactivate switches an invitation off; usage history is kept
func (s *InvitationService) Deactivate(ctx context.Context, chapterID, id string) error {
	if err := s.invitations.Deactivate(ctx, chapterID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Invitation not found")
		}
		return err
	}
	return nil
}

// liveness returns the client message for a dead invitation, or "" when usable
func (s *InvitationService) liveness(inv *gormModels.Invitation) string {
	switch {
	case !inv.IsActive:
		return constants.MsgInvitationInactive
	case inv.IsExpired(s.now()):
		return constants.MsgInvitationExpired
	case inv.IsExhausted():
		return constants.MsgInvitationLimit
	}
	return ""
}

// Validate reports whether token can still be redeemed, for the join page
func (s *InvitationService) Validate(ctx context.Context, token string) (*dtos.InvitationValidation, error) {
	inv, err := s.invitations.GetByTokenHash(ctx, auth.FingerprintToken(token))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &dtos.InvitationValidation{Valid: false, Reason: constants.MsgInvalidInvitation}, nil
	}

	out := &dtos.InvitationValidation{
		Valid:          true,
		ChapterID:      inv.ChapterID,
		InvitationType: inv.InvitationType,
	}
	if inv.Chapter != nil {
		out.ChapterName = inv.Chapter.Name
	}
	if reason := s.liveness(inv); reason != "" {
		out.Valid = false
		out.Reason = reason
	}
	return out, nil
}

func (s *InvitationService) validateJoinForm(req *dtos.AcceptInvitationRequest, invType string) error {
	req.Email = common.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return invalid(constants.MsgMissingFields)
	}
	if err := common.Validator().Var(req.Email, "email"); err != nil {
		return invalid("Invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return invalidf("Password must be at least %d characters", minPasswordLength)
	}
	if req.Phone != "" {
		phone, ok := common.NormalizeUSPhone(req.Phone)
		if !ok {
			return invalid(constants.MsgInvalidPhone)
		}
		req.Phone = phone
	}
	if req.GraduationYear != nil && !ValidGraduationYear(*req.GraduationYear, s.now()) {
		return invalid(constants.MsgInvalidGradYear)
	}
	if invType == constants.InvitationTypeAlumni && req.LinkedInURL != "" && !common.IsLinkedInURL(req.LinkedInURL) {
		return invalid("linkedin_url must be a linkedin.com URL")
	}
	return nil
}

// Accept redeems token for a new account. invType is the invitation type the
// calling route serves.
func (s *InvitationService) Accept(ctx context.Context, token string, req dtos.AcceptInvitationRequest, invType string) (*dtos.AcceptedInvitation, error) {
	result, err := s.accept(ctx, token, &req, invType)
	switch {
	case err == nil:
		s.metrics.InvitationRedemption("success")
	case errors.Is(err, ErrInvalid):
		s.metrics.InvitationRedemption("rejected")
	default:
		s.metrics.InvitationRedemption("error")
	}
	return result, err
}

func (s *InvitationService) accept(ctx context.Context, token string, req *dtos.AcceptInvitationRequest, invType string) (*dtos.AcceptedInvitation, error) {
	if strings.TrimSpace(token) == "" {
		return nil, invalid(constants.MsgInvalidInvitation)
	}
	if err := s.validateJoinForm(req, invType); err != nil {
		return nil, err
	}

	inv, err := s.invitations.GetByTokenHash(ctx, auth.FingerprintToken(token))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invalid(constants.MsgInvalidInvitation)
	}
	if reason := s.liveness(inv); reason != "" {
		return nil, invalid(reason)
	}
	if inv.InvitationType != invType {
		return nil, invalid(constants.MsgInvitationWrongType)
	}
	if !inv.AllowsEmail(req.Email) {
		return nil, invalid(constants.MsgEmailDomainNotAllowed)
	}

	used, err := s.invitations.HasUsage(ctx, inv.ID, req.Email)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, invalid(constants.MsgInvitationAlreadyUsed)
	}

	existing, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid(constants.MsgAccountExists)
	}

	profile, err := s.provision(ctx, inv, req)
	if err != nil {
		return nil, err
	}

	chapterName := ""
	if inv.Chapter != nil {
		chapterName = inv.Chapter.Name
	}
	s.notifier.Publish(ctx, WelcomeJob(profile, chapterName, s.baseURL))

	return &dtos.AcceptedInvitation{
		ID:           profile.ID,
		Email:        profile.Email,
		Role:         profile.Role.String(),
		ChapterID:    profile.ChapterID,
		MemberStatus: string(profile.MemberStatus),
	}, nil
}

// provision runs the account-creation saga: auth user, then profile rows and
// the usage claim in one transaction, compensating the auth user on failure.
func (s *InvitationService) provision(ctx context.Context, inv *gormModels.Invitation, req *dtos.AcceptInvitationRequest) (*gormModels.Profile, error) {
	log := logging.FromContext(ctx).With("invitation_id", inv.ID, "email", req.Email)

	rec := &gormModels.ProvisioningRecord{InvitationID: inv.ID, Email: req.Email}
	if err := s.provisioning.Create(ctx, rec); err != nil {
		return nil, err
	}

	user, err := s.identity.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensated, err.Error())
		if errors.Is(err, auth.ErrUserExists) {
			return nil, invalid(constants.MsgAccountExists)
		}
		log.Errorw("Identity provider failed to create user", "error", err)
		s.metrics.Provisioning("identity_failed")
		return nil, &ServiceError{Kind: fmt.Errorf("%w: %v", errProvisioning, err), Msg: constants.MsgProvisioningFailed}
	}
	if err := s.provisioning.SetAuthUser(ctx, rec.ID, user.ID); err != nil {
		log.Warnw("Failed to record auth user on provisioning record", "error", err)
	}

	profile := s.buildProfile(inv, user.ID, req)

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitations := s.invitations.WithTx(tx)
		profiles := s.profiles.WithTx(tx)

		claimed, err := invitations.ClaimUse(ctx, inv.ID, s.now().UTC())
		if err != nil {
			return err
		}
		if !claimed {
			return errUseNotClaimed
		}

		if err := profiles.Create(ctx, profile); err != nil {
			return err
		}
		if inv.InvitationType == constants.InvitationTypeAlumni {
			if err := profiles.SaveAlumniProfile(ctx, buildAlumniProfile(user.ID, req)); err != nil {
				return err
			}
		}

		used, err := invitations.HasUsage(ctx, inv.ID, req.Email)
		if err != nil {
			return err
		}
		if used {
			return errAlreadyUsed
		}
		return invitations.RecordUsage(ctx, &gormModels.InvitationUsage{
			InvitationID: inv.ID,
			Email:        req.Email,
			UserID:       user.ID,
			UsedAt:       s.now().UTC(),
		})
	})

	if txErr != nil {
		log.Warnw("Provisioning failed, compensating", "auth_user_id", user.ID, "error", txErr)
		s.compensate(ctx, rec.ID, user.ID, txErr)

		switch {
		case errors.Is(txErr, errUseNotClaimed):
			return nil, invalid(constants.MsgInvitationLimit)
		case errors.Is(txErr, errAlreadyUsed):
			return nil, invalid(constants.MsgInvitationAlreadyUsed)
		}
		return nil, &ServiceError{Kind: fmt.Errorf("%w: %v", errProvisioning, txErr), Msg: constants.MsgProvisioningFailed}
	}

	s.recordStatus(ctx, rec.ID, constants.ProvisioningCompleted, "")
	s.metrics.Provisioning("completed")
	log.Infow("Invitation redeemed", "user_id", user.ID, "role", profile.Role)
	return profile, nil
}

var errProvisioning = errors.New("provisioning failed")

// recordStatus moves a provisioning record and logs when the write is lost.
// A record left behind is picked up again by ReconcileProvisioning.
func (s *InvitationService) recordStatus(ctx context.Context, recordID, status, detail string) bool {
	if err := s.provisioning.SetStatus(ctx, recordID, status, detail); err != nil {
		logging.FromContext(ctx).Errorw("Failed to update provisioning record",
			"provisioning_id", recordID, "status", status, "error", err)
		s.metrics.Provisioning("record_write_failed")
		return false
	}
	return true
}

// compensate deletes the auth user with a few inline retries. A final failure
// is left as compensation_failed for the reconcile job.
func (s *InvitationService) compensate(ctx context.Context, recordID, authUserID string, cause error) {
	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		if err = s.identity.DeleteUser(ctx, authUserID); err == nil {
			s.recordStatus(ctx, recordID, constants.ProvisioningCompensated, cause.Error())
			s.metrics.Provisioning("compensated")
			return
		}
		time.Sleep(time.Duration(attempt) * s.retryDelay)
	}

	logging.FromContext(ctx).Errorw("Compensation failed, auth user left for reconcile",
		"provisioning_id", recordID, "auth_user_id", authUserID, "error", err)
	s.recordStatus(ctx, recordID, constants.ProvisioningCompensationFailed, err.Error())
	s.metrics.Provisioning("compensation_failed")
}

func (s *InvitationService) buildProfile(inv *gormModels.Invitation, userID string, req *dtos.AcceptInvitationRequest) *gormModels.Profile {
	role := constants.RoleActiveMember
	if inv.InvitationType == constants.InvitationTypeAlumni {
		role = constants.RoleAlumni
	}
	status := constants.MemberStatusActive
	if inv.ApprovalMode == constants.ApprovalModeManual {
		status = constants.MemberStatusPendingApproval
	}

	p := &gormModels.Profile{
		ID:             userID,
		ChapterID:      inv.ChapterID,
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           role,
		MemberStatus:   status,
		GraduationYear: req.GraduationYear,
		SMSConsent:     req.SMSConsent,
	}
	if req.Phone != "" {
		p.Phone = &req.Phone
	}
	if m := strings.TrimSpace(req.Major); m != "" {
		p.Major = &m
	}
	return p
}

func buildAlumniProfile(userID string, req *dtos.AcceptInvitationRequest) *gormModels.AlumniProfile {
	opt := func(s string) *string {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return &s
	}
	return &gormModels.AlumniProfile{
		UserID:         userID,
		Industry:       opt(req.Industry),
		Company:        opt(req.Company),
		JobTitle:       opt(req.JobTitle),
		Location:       opt(req.Location),
		LinkedInURL:    opt(req.LinkedInURL),
		GraduationYear: req.GraduationYear,
	}
}

// ReconcileProvisioning retries failed compensations and settles pending
// records abandoned for longer than staleAfter. Returns how many were settled.
func (s *InvitationService) ReconcileProvisioning(ctx context.Context, staleAfter time.Duration) (int, error) {
	settled := 0
	now := s.now()

	failed, err := s.provisioning.ListStale(ctx, constants.ProvisioningCompensationFailed, now, 100)
	if err != nil {
		return 0, err
	}
	for _, rec := range failed {
		if rec.AuthUserID == nil {
			if s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensated, "") {
				settled++
			}
			continue
		}
		if err := s.identity.DeleteUser(ctx, *rec.AuthUserID); err != nil {
			s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensationFailed, err.Error())
			continue
		}
		s.metrics.Provisioning("compensated")
		if s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensated, "") {
			settled++
		}
	}

	pending, err := s.provisioning.ListStale(ctx, constants.ProvisioningPending, now.Add(-staleAfter), 100)
	if err != nil {
		return settled, err
	}
	for _, rec := range pending {
		if rec.AuthUserID == nil {
			if s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensated, "abandoned before auth user creation") {
				settled++
			}
			continue
		}
		profile, err := s.profiles.GetByID(ctx, *rec.AuthUserID)
		if err != nil {
			return settled, err
		}
		if profile != nil {
			if s.recordStatus(ctx, rec.ID, constants.ProvisioningCompleted, "") {
				settled++
			}
			continue
		}
		if err := s.identity.DeleteUser(ctx, *rec.AuthUserID); err != nil {
			s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensationFailed, err.Error())
			continue
		}
		s.metrics.Provisioning("compensated")
		if s.recordStatus(ctx, rec.ID, constants.ProvisioningCompensated, "abandoned") {
			settled++
		}
	}
	return settled, nil
}
