package domain

import (
	"fmt"
	"strings"
)

// Role is a platform role carried by a session
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHAdmin    Role = "hadmin"
	RoleHR        Role = "hr"
	RoleHM        Role = "hm"
	RoleCandidate Role = "candidate"
	// RoleSystem is used by background components acting on their own behalf.
	RoleSystem Role = "system"
)

// ParseRole accepts role names in any case ("HAdmin", "HR", "candidate")
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleHAdmin, RoleHR, RoleHM, RoleCandidate:
		return r, nil
	case "user":
		return RoleCandidate, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// Identity is a resolved session
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// SystemIdentity acts for background jobs and AI assessment
func SystemIdentity() Identity {
	return Identity{UID: "system", Role: RoleSystem}
}

// IsInterviewer reports whether the identity holds an interviewer-class role
func (id Identity) IsInterviewer() bool {
	switch id.Role {
	case RoleAdmin, RoleHAdmin, RoleHR, RoleHM:
		return true
	}
	return false
}

// IsCandidate reports whether the identity is a candidate
func (id Identity) IsCandidate() bool {
	return id.Role == RoleCandidate
}

// InCompany reports whether the identity may act on data of companyID.
// Platform admins and the system identity span all companies.
func (id Identity) InCompany(companyID string) bool {
	if id.Role == RoleAdmin || id.Role == RoleSystem {
		return true
	}
	return id.CompanyID != "" && id.CompanyID == companyID
}

// IsCandidateOf reports whether the identity is the candidate of iv
func (id Identity) IsCandidateOf(iv Interview) bool {
	if !id.IsCandidate() {
		return false
	}
	if id.Email != "" && strings.EqualFold(id.Email, iv.CandidateEmail) {
		return true
	}
	return id.UID != "" && id.UID == iv.CandidateID
}

// CanView reports whether the identity may read iv
func (id Identity) CanView(iv Interview) bool {
	if id.IsCandidate() {
		return id.IsCandidateOf(iv)
	}
	return id.InCompany(iv.CompanyID)
}
