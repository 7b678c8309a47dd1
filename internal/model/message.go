package model

import "time"

// Message is immutable except for the read flag, which only ever transitions
// false to true.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SenderID    uint      `json:"remetente_id" gorm:"column:remetente_id;not null;index"`
	RecipientID uint      `json:"destinatario_id" gorm:"column:destinatario_id;not null;index"`
	Body        string    `json:"conteudo" gorm:"column:conteudo;type:text;not null"`
	Read        bool      `json:"lida" gorm:"column:lida;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}
