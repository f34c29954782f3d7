// Package access holds the role to capability matrix shared by every
// lifecycle entry point.
package access

import (
	"fmt"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Capability is a single permission checked before a lifecycle operation
type Capability string

const (
	CreateInterview   Capability = "interview.create"
	ViewInterview     Capability = "interview.view"
	AcceptInterview   Capability = "interview.accept"
	RequestReschedule Capability = "interview.reschedule.request"
	DecideReschedule  Capability = "interview.reschedule.decide"
	StartInterview    Capability = "interview.start"
	CompleteInterview Capability = "interview.complete"
	CancelInterview   Capability = "interview.cancel"
	GenerateQuestions Capability = "interview.questions.generate"
	SubmitAnswers     Capability = "interview.answers.submit"
	EvaluateInterview Capability = "interview.evaluate"
	ViewApplication   Capability = "application.view"
	CheckQuota        Capability = "application.quota"
	ViewSettings      Capability = "settings.view"
	ManageSettings    Capability = "settings.manage"
	ExportScorecards  Capability = "scorecards.export"
	ReadNotifications Capability = "notifications.read"
	ImportRecords     Capability = "records.import"
)

// Matrix maps each role to the capabilities it holds
type Matrix map[domain.Role]map[Capability]bool

// Policy answers capability questions for identities
type Policy struct {
	matrix Matrix
}

// NewPolicy builds a policy from m; a nil m selects DefaultMatrix
func NewPolicy(m Matrix) Policy {
	if m == nil {
		m = DefaultMatrix()
	}
	return Policy{matrix: m}
}

// DefaultMatrix is the production permission layout
func DefaultMatrix() Matrix {
	staff := []Capability{
		CreateInterview, ViewInterview, RequestReschedule, DecideReschedule,
		StartInterview, CompleteInterview, CancelInterview, GenerateQuestions,
		EvaluateInterview, ViewApplication, CheckQuota, ViewSettings,
		ExportScorecards, ReadNotifications,
	}

	m := Matrix{
		domain.RoleAdmin:  grant(append(staff, ManageSettings, ImportRecords)...),
		domain.RoleHAdmin: grant(append(staff, ManageSettings, ImportRecords)...),
		domain.RoleHR:     grant(staff...),
		domain.RoleHM:     grant(staff...),
		domain.RoleCandidate: grant(
			ViewInterview, AcceptInterview, RequestReschedule, StartInterview,
			CancelInterview, GenerateQuestions, SubmitAnswers, ViewApplication,
			ReadNotifications,
		),
		domain.RoleSystem: grant(ViewInterview, CompleteInterview, ViewSettings, ReadNotifications),
	}

	return m
}

func grant(caps ...Capability) map[Capability]bool {
	out := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		out[c] = true
	}
	return out
}

// Allows reports whether role holds c
func (p Policy) Allows(role domain.Role, c Capability) bool {
	return p.matrix[role][c]
}

// Require returns ErrUnauthenticated for an empty identity and ErrForbidden
// when the identity's role lacks c.
func (p Policy) Require(who domain.Identity, c Capability) error {
	if who.UID == "" || who.Role == "" {
		return domain.ErrUnauthenticated
	}
	if !p.Allows(who.Role, c) {
		return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, who.Role, c)
	}
	return nil
}

// RequireCompany combines Require with a tenant scope check
func (p Policy) RequireCompany(who domain.Identity, c Capability, companyID string) error {
	if err := p.Require(who, c); err != nil {
		return err
	}
	if who.IsCandidate() {
		return nil
	}
	if !who.InCompany(companyID) {
		return fmt.Errorf("%w: company %s is outside the caller's scope", domain.ErrForbidden, companyID)
	}
	return nil
}
