package model

import "time"

// Document associates an uploaded blob with a patient record. StoragePath is
// internal and never serialized.
type Document struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PatientID  uint      `json:"paciente_id" gorm:"not null;index"`
	FileName   string    `json:"nome_arquivo" gorm:"column:nome_arquivo;size:255;not null"`
	Category   string    `json:"tipo_documento" gorm:"column:tipo_documento;size:50;not null"`
	StoragePath string   `json:"-" gorm:"column:caminho_arquivo;size:500;not null"`
	SizeBytes  int64     `json:"tamanho_arquivo" gorm:"column:tamanho_arquivo;not null"`
	UploadedBy uint      `json:"uploaded_by" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
