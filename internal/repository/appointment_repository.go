package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clinicdesk/internal/model"
)

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Update(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id uint) (*model.Appointment, error)
	// FindScheduledAt returns the clinician's appointment in status "agendado"
	// at the exact timestamp, or gorm.ErrRecordNotFound.
	FindScheduledAt(ctx context.Context, clinicianID uint, at time.Time) (*model.Appointment, error)
	// ListByClinicianBetween returns the clinician's appointments with
	// data_hora in [from, to) restricted to the given statuses.
	ListByClinicianBetween(ctx context.Context, clinicianID uint, from, to time.Time, statuses []string) ([]model.Appointment, error)
	ListByPatient(ctx context.Context, patientID uint) ([]model.Appointment, error)
	ListAll(ctx context.Context) ([]model.Appointment, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository builds a GORM-backed repository.
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindScheduledAt(ctx context.Context, clinicianID uint, at time.Time) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.WithContext(ctx).
		Where("medica_id = ? AND data_hora = ? AND status = ?", clinicianID, at, model.StatusScheduled).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByClinicianBetween(ctx context.Context, clinicianID uint, from, to time.Time, statuses []string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Where("medica_id = ? AND data_hora >= ? AND data_hora < ? AND status IN ?", clinicianID, from, to, statuses).
		Order("data_hora asc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uint) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", patientID).
		Order("data_hora desc").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := r.db.WithContext(ctx).Order("data_hora desc").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
