// Package policy implements role-based access decisions for every resource in
// the system. Authorize is a pure, total function: it never errors and never
// touches storage, so callers can gate any operation with a single check.
package policy

import "clinicdesk/internal/model"

// Action identifies an operation gated by the access policy.
type Action string

const (
	ActionAppointmentRead  Action = "appointment:read"
	ActionAppointmentWrite Action = "appointment:write"
	ActionMessageRead      Action = "message:read"
	ActionMessageSend      Action = "message:send"
	ActionDocumentRead     Action = "document:read"
	ActionDocumentWrite    Action = "document:write"
)

// Authorize reports whether an actor with the given role may perform action on
// a resource owned by resourceOwnerID. Rules are evaluated in order, first
// match wins:
//
//  1. Admins are always allowed.
//  2. Clinicians are allowed every action above.
//  3. Patients are allowed only on resources they own, and never document
//     writes.
//
// Unknown roles and unknown actions are denied.
func Authorize(role string, action Action, actorID, resourceOwnerID uint) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleClinician:
		switch action {
		case ActionAppointmentRead, ActionAppointmentWrite,
			ActionMessageRead, ActionMessageSend,
			ActionDocumentRead, ActionDocumentWrite:
			return true
		}
		return false
	case model.RolePatient:
		if action == ActionDocumentWrite {
			return false
		}
		switch action {
		case ActionAppointmentRead, ActionAppointmentWrite,
			ActionMessageRead, ActionMessageSend,
			ActionDocumentRead:
			return actorID == resourceOwnerID
		}
		return false
	default:
		return false
	}
}
