package services

import (
	"context"
	"errors"
	"strings"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// CanManageRecruits is the recruitment gate: admins and exec chapter roles
func CanManageRecruits(p *gormModels.Profile) bool {
	return p != nil && (p.Role == constants.RoleAdmin || p.IsExec())
}

// RecruitmentService works on a chapter-scoped repository handed in by the
// request; it never chooses the chapter itself.
type RecruitmentService struct {
	transitions constants.Transitions[constants.RecruitStage]
}

func NewRecruitmentService() *RecruitmentService {
	return &RecruitmentService{transitions: constants.RecruitTransitions}
}

func parseStage(raw string) (constants.RecruitStage, error) {
	st := constants.RecruitStage(strings.TrimSpace(raw))
	if !st.Valid() {
		return "", invalid(constants.MsgInvalidStage)
	}
	return st, nil
}

func (s *RecruitmentService) List(ctx context.Context, scope *repositories.ChapterRecruits, stage, query string) (*dtos.RecruitList, error) {
	filter := repositories.RecruitFilter{Query: query}
	if stage != "" {
		st, err := parseStage(stage)
		if err != nil {
			return nil, err
		}
		filter.Stage = st
	}

	recs, err := scope.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := scope.CountByStage(ctx)
	if err != nil {
		return nil, err
	}

	out := &dtos.RecruitList{
		Recruits: make([]dtos.RecruitView, 0, len(recs)),
		Pipeline: make(map[string]int64, len(counts)),
	}
	for i := range recs {
		out.Recruits = append(out.Recruits, toRecruitView(&recs[i]))
	}
	for st, n := range counts {
		out.Pipeline[string(st)] = n
	}
	return out, nil
}

func (s *RecruitmentService) Get(ctx context.Context, scope *repositories.ChapterRecruits, id string) (*dtos.RecruitView, error) {
	rec, err := scope.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(constants.MsgRecruitNotFound)
	}
	v := toRecruitView(rec)
	return &v, nil
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func (s *RecruitmentService) Create(ctx context.Context, scope *repositories.ChapterRecruits, me *gormModels.Profile, req dtos.RecruitRequest) (*dtos.RecruitView, error) {
	if req.FullName == nil || strings.TrimSpace(*req.FullName) == "" {
		return nil, invalid(constants.MsgMissingFields)
	}

	stage := constants.StageNew
	if req.Stage != nil {
		st, err := parseStage(*req.Stage)
		if err != nil {
			return nil, err
		}
		stage = st
	}

	rec := &gormModels.Recruit{
		FullName:       strings.TrimSpace(*req.FullName),
		Email:          trimmedOrNil(req.Email),
		Phone:          trimmedOrNil(req.Phone),
		Instagram:      trimmedOrNil(req.Instagram),
		Hometown:       trimmedOrNil(req.Hometown),
		Major:          trimmedOrNil(req.Major),
		GraduationYear: req.GraduationYear,
		GPA:            req.GPA,
		Stage:          stage,
		Notes:          trimmedOrNil(req.Notes),
		ReferredBy:     trimmedOrNil(req.ReferredBy),
		AddedBy:        me.ID,
	}
	if err := scope.Create(ctx, rec); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infow("Recruit added", "recruit_id", rec.ID, "stage", rec.Stage)
	v := toRecruitView(rec)
	return &v, nil
}

// Update applies the fields present in req. A stage change must be allowed
// by the transition table.
func (s *RecruitmentService) Update(ctx context.Context, scope *repositories.ChapterRecruits, id string, req dtos.RecruitRequest) (*dtos.RecruitView, error) {
	rec, err := scope.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(constants.MsgRecruitNotFound)
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, invalid("full_name cannot be empty")
		}
		updates["full_name"] = name
	}
	if req.Stage != nil {
		st, err := parseStage(*req.Stage)
		if err != nil {
			return nil, err
		}
		if st != rec.Stage && !s.transitions.Allowed(rec.Stage, st) {
			return nil, invalidf("Cannot move recruit from %s to %s", rec.Stage, st)
		}
		updates["stage"] = st
	}

	optional := map[string]*string{
		"email":       req.Email,
		"phone":       req.Phone,
		"instagram":   req.Instagram,
		"hometown":    req.Hometown,
		"major":       req.Major,
		"notes":       req.Notes,
		"referred_by": req.ReferredBy,
	}
	for col, val := range optional {
		if val != nil {
			updates[col] = trimmedOrNil(val)
		}
	}
	if req.GraduationYear != nil {
		updates["graduation_year"] = *req.GraduationYear
	}
	if req.GPA != nil {
		updates["gpa"] = *req.GPA
	}

	if err := scope.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(constants.MsgRecruitNotFound)
		}
		return nil, err
	}
	return s.Get(ctx, scope, id)
}

func (s *RecruitmentService) Delete(ctx context.Context, scope *repositories.ChapterRecruits, id string) error {
	if err := scope.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(constants.MsgRecruitNotFound)
		}
		return err
	}
	return nil
}
