package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinicdesk/internal/model"
)

var allActions = []Action{
	ActionAppointmentRead,
	ActionAppointmentWrite,
	ActionMessageRead,
	ActionMessageSend,
	ActionDocumentRead,
	ActionDocumentWrite,
}

func TestAuthorize_Admin(t *testing.T) {
	for _, action := range allActions {
		assert.True(t, Authorize(model.RoleAdmin, action, 1, 2), "admin must be allowed %s on any resource", action)
	}
}

func TestAuthorize_Clinician(t *testing.T) {
	for _, action := range allActions {
		assert.True(t, Authorize(model.RoleClinician, action, 1, 2), "clinician must be allowed %s", action)
	}
	assert.False(t, Authorize(model.RoleClinician, Action("unknown"), 1, 1))
}

func TestAuthorize_Patient(t *testing.T) {
	tests := []struct {
		name            string
		action          Action
		actorID         uint
		resourceOwnerID uint
		want            bool
	}{
		{"own appointment read", ActionAppointmentRead, 7, 7, true},
		{"own appointment write", ActionAppointmentWrite, 7, 7, true},
		{"other patient appointment", ActionAppointmentWrite, 7, 8, false},
		{"own conversation", ActionMessageRead, 7, 7, true},
		{"other conversation", ActionMessageRead, 7, 8, false},
		{"own message send", ActionMessageSend, 7, 7, true},
		{"own document read", ActionDocumentRead, 7, 7, true},
		{"other document read", ActionDocumentRead, 7, 8, false},
		{"document write even when own", ActionDocumentWrite, 7, 7, false},
		{"unknown action", Action("unknown"), 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(model.RolePatient, tt.action, tt.actorID, tt.resourceOwnerID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize_UnknownRole(t *testing.T) {
	for _, action := range allActions {
		assert.False(t, Authorize("", action, 1, 1))
		assert.False(t, Authorize("enfermeira", action, 1, 1))
	}
}
