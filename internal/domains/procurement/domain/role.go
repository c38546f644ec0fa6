package domain

import (
	"errors"
	"strings"
)

// Role identifies what an actor may do in the procurement flow.
type Role string

const (
	RoleStaff          Role = "STAFF"
	RoleLevel1Approver Role = "LEVEL_1_APPROVER"
	RoleLevel2Approver Role = "LEVEL_2_APPROVER"
	RoleFinance        Role = "FINANCE"
)

var ErrUnknownRole = errors.New("actor role is unknown")

// Actor is the caller on whose behalf an operation runs.
type Actor struct {
	ID   string
	Role Role
}

// ParseRole accepts the canonical upper-case names and the legacy lower-case
// spellings (approver_level_1, ...) still sent by older clients.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleStaff):
		return RoleStaff, nil
	case string(RoleLevel1Approver), "APPROVER_LEVEL_1":
		return RoleLevel1Approver, nil
	case string(RoleLevel2Approver), "APPROVER_LEVEL_2":
		return RoleLevel2Approver, nil
	case string(RoleFinance):
		return RoleFinance, nil
	default:
		return "", ErrUnknownRole
	}
}

// ApprovalLevel maps an approver role to the ledger slot it decides.
// The boolean is false for every role that never signs a slot.
func (r Role) ApprovalLevel() (Level, bool) {
	switch r {
	case RoleLevel1Approver:
		return LevelOne, true
	case RoleLevel2Approver:
		return LevelTwo, true
	case RoleStaff, RoleFinance:
		return "", false
	default:
		return "", false
	}
}

// IsApprover reports whether the role owns a ledger slot.
func (r Role) IsApprover() bool {
	_, ok := r.ApprovalLevel()
	return ok
}
