package model

import "time"

// User roles. The system models exactly one clinician (medica) account.
const (
	RolePatient   = "paciente"
	RoleClinician = "medica"
	RoleAdmin     = "admin"
)

// User represents a patient, the clinician, or an administrator.
// JSON field names follow the public API contract.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string     `json:"role" gorm:"size:20;not null;default:'paciente'"`
	FullName     string     `json:"nome_completo" gorm:"size:200;not null"`
	Phone        string     `json:"telefone,omitempty" gorm:"size:20"`
	BirthDate    *time.Time `json:"data_nascimento,omitempty" gorm:"type:date"`
	CPF          string     `json:"cpf,omitempty" gorm:"size:14;index"`
	Address      string     `json:"endereco,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
