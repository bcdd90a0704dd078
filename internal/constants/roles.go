package constants

import (
	"database/sql/driver"
	"fmt"
)

// MemberRole mirrors the profiles.role column
type MemberRole string

const (
	RoleAdmin        MemberRole = "admin"
	RoleActiveMember MemberRole = "active_member"
	RoleAlumni       MemberRole = "alumni"
)

func (r MemberRole) String() string { return string(r) }

func (r MemberRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleActiveMember, RoleAlumni:
		return true
	}
	return false
}

// Scan implements the sql.Scanner interface
func (r *MemberRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = MemberRole(v)
	case []byte:
		*r = MemberRole(v)
	default:
		return fmt.Errorf("MemberRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r MemberRole) Value() (driver.Value, error) { return string(r), nil }

// MemberStatus is the soft lifecycle field on profiles. Rows are never hard-deleted.
type MemberStatus string

const (
	MemberStatusActive          MemberStatus = "active"
	MemberStatusPendingApproval MemberStatus = "pending_approval"
	MemberStatusInactive        MemberStatus = "inactive"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusPendingApproval, MemberStatusInactive:
		return true
	}
	return false
}

// Chapter roles with executive privileges (recruitment, announcements).
const (
	ChapterRolePresident        = "president"
	ChapterRoleVicePresident    = "vice_president"
	ChapterRoleRecruitmentChair = "recruitment_chair"
	ChapterRoleRushChair        = "rush_chair"
)

var execChapterRoles = map[string]bool{
	ChapterRolePresident:        true,
	ChapterRoleVicePresident:    true,
	ChapterRoleRecruitmentChair: true,
	ChapterRoleRushChair:        true,
}

func IsExecChapterRole(role string) bool {
	return execChapterRoles[role]
}
