package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
	"clinicdesk/internal/policy"
	"clinicdesk/internal/repository"
)

// Clinic opening window: hourly slots from 08:00 up to (not including) 18:00.
const (
	clinicOpeningHour = 8
	clinicClosingHour = 18
)

// Timestamp layouts accepted on the wire, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// AppointmentUpdate carries optional appointment mutations. ScheduledAt is the
// raw wire value; it is parsed only when the actor is allowed to move the slot.
type AppointmentUpdate struct {
	Status      *string
	Notes       *string
	ScheduledAt *string
}

// ScheduleService computes availability and manages the appointment lifecycle
// for the single clinician schedule.
type ScheduleService interface {
	AvailableSlots(ctx context.Context, date time.Time) ([]time.Time, error)
	Create(ctx context.Context, patient *model.User, scheduledAt, consultType, notes string) (*model.Appointment, error)
	List(ctx context.Context, actor *model.User) ([]model.Appointment, error)
	Update(ctx context.Context, actor *model.User, id uint, update AppointmentUpdate) (*model.Appointment, error)
	Cancel(ctx context.Context, actor *model.User, id uint) error
}

type scheduleService struct {
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
}

// NewScheduleService builds a ScheduleService.
func NewScheduleService(userRepo repository.UserRepository, appointmentRepo repository.AppointmentRepository) ScheduleService {
	return &scheduleService{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		now:             time.Now,
	}
}

// AvailableSlots returns the open hourly slots for a calendar date, ascending.
// A slot is open when no non-cancelled appointment occupies its exact
// timestamp and it is strictly after the current instant. An empty result is
// valid: the day may be fully booked or entirely in the past.
func (s *scheduleService) AvailableSlots(ctx context.Context, date time.Time) ([]time.Time, error) {
	clinician, err := s.userRepo.FindClinician(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("no clinician registered in the system")
		}
		return nil, errors.Internal("failed to resolve clinician")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	booked, err := s.appointmentRepo.ListByClinicianBetween(
		ctx,
		clinician.ID,
		dayStart,
		dayStart.AddDate(0, 0, 1),
		[]string{model.StatusScheduled, model.StatusConfirmed},
	)
	if err != nil {
		return nil, errors.Internal("failed to load appointments")
	}

	occupied := make(map[int64]bool, len(booked))
	for _, appointment := range booked {
		occupied[appointment.ScheduledAt.Unix()] = true
	}

	now := s.now()
	slots := make([]time.Time, 0, clinicClosingHour-clinicOpeningHour)
	for hour := clinicOpeningHour; hour < clinicClosingHour; hour++ {
		slot := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
		if occupied[slot.Unix()] || !slot.After(now) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Create books a new appointment for the requesting patient in status
// "agendado". The conflict check is an exact-timestamp match against the
// clinician's scheduled appointments; the fixed hourly grid makes interval
// overlap checks unnecessary. The check and the insert are two store calls
// with no transaction between them, a documented gap accepted for this
// low-volume schedule.
func (s *scheduleService) Create(ctx context.Context, patient *model.User, scheduledAt, consultType, notes string) (*model.Appointment, error) {
	if consultType == "" {
		return nil, errors.Validation("tipo_consulta is required")
	}

	at, err := parseTimestamp(scheduledAt)
	if err != nil {
		return nil, errors.Validation("invalid date/time format")
	}
	if !at.After(s.now()) {
		return nil, errors.Validation("appointment must be scheduled in the future")
	}

	clinician, err := s.userRepo.FindClinician(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("no clinician registered in the system")
		}
		return nil, errors.Internal("failed to resolve clinician")
	}

	if _, err := s.appointmentRepo.FindScheduledAt(ctx, clinician.ID, at); err == nil {
		return nil, errors.Conflict("time slot is not available")
	} else if err != gorm.ErrRecordNotFound {
		return nil, errors.Internal("failed to check availability")
	}

	appointment := &model.Appointment{
		PatientID:   patient.ID,
		ClinicianID: clinician.ID,
		ScheduledAt: at,
		Type:        consultType,
		Status:      model.StatusScheduled,
		Notes:       notes,
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, errors.Internal("failed to create appointment")
	}
	return appointment, nil
}

// List returns the actor's appointments: patients see their own, the
// clinician and admins see everything, newest first.
func (s *scheduleService) List(ctx context.Context, actor *model.User) ([]model.Appointment, error) {
	var (
		appointments []model.Appointment
		err          error
	)
	if actor.Role == model.RolePatient {
		appointments, err = s.appointmentRepo.ListByPatient(ctx, actor.ID)
	} else {
		appointments, err = s.appointmentRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, errors.Internal("failed to list appointments")
	}
	return appointments, nil
}

// Update applies status/notes changes from any authorized actor. Timestamp
// changes are accepted only from the clinician or an admin; a patient-supplied
// timestamp is silently ignored rather than rejected.
func (s *scheduleService) Update(ctx context.Context, actor *model.User, id uint, update AppointmentUpdate) (*model.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("appointment not found")
		}
		return nil, errors.Internal("failed to load appointment")
	}

	if !policy.Authorize(actor.Role, policy.ActionAppointmentWrite, actor.ID, appointment.PatientID) {
		return nil, errors.Forbidden("not allowed to modify this appointment")
	}

	if update.Status != nil {
		appointment.Status = *update.Status
	}
	if update.Notes != nil {
		appointment.Notes = *update.Notes
	}
	if update.ScheduledAt != nil && (actor.Role == model.RoleClinician || actor.Role == model.RoleAdmin) {
		at, err := parseTimestamp(*update.ScheduledAt)
		if err != nil {
			return nil, errors.Validation("invalid date/time format")
		}
		appointment.ScheduledAt = at
	}

	appointment.UpdatedAt = s.now()
	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, errors.Internal("failed to update appointment")
	}
	return appointment, nil
}

// Cancel marks the appointment cancelled without deleting the row. Cancelling
// an already-cancelled appointment succeeds and bumps updated_at again.
func (s *scheduleService) Cancel(ctx context.Context, actor *model.User, id uint) error {
	appointment, err := s.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("appointment not found")
		}
		return errors.Internal("failed to load appointment")
	}

	if !policy.Authorize(actor.Role, policy.ActionAppointmentWrite, actor.ID, appointment.PatientID) {
		return errors.Forbidden("not allowed to cancel this appointment")
	}

	appointment.Status = model.StatusCancelled
	appointment.UpdatedAt = s.now()
	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return errors.Internal("failed to cancel appointment")
	}
	return nil
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
