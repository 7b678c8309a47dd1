package model

import "time"

// Appointment statuses form a one-way lifecycle; cancellation is logical,
// the row is never deleted.
const (
	StatusScheduled = "agendado"
	StatusConfirmed = "confirmado"
	StatusCancelled = "cancelado"
	StatusCompleted = "realizado"
)

// Appointment types.
const (
	TypeFirstVisit  = "primeira_consulta"
	TypeFollowUp    = "retorno"
	TypeTeleConsult = "teleconsulta"
)

// Appointment is a single slot on the clinician's daily schedule.
// Invariant: no two non-cancelled appointments for the same clinician share
// the same exact timestamp.
type Appointment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PatientID   uint      `json:"paciente_id" gorm:"not null;index"`
	ClinicianID uint      `json:"medica_id" gorm:"column:medica_id;not null;index"`
	ScheduledAt time.Time `json:"data_hora" gorm:"column:data_hora;not null;index"`
	Type        string    `json:"tipo_consulta" gorm:"column:tipo_consulta;size:50;not null"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'agendado'"`
	Notes       string    `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
