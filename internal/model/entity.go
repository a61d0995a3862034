package model

import (
	"time"

	"gorm.io/datatypes"
)

// StatusReceived is the status every ticket starts with unless the caller supplies one.
const StatusReceived = "Recebido"

type Ticket struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Data      time.Time      `gorm:"type:timestamptz;not null;default:now()" json:"data"`
	Title     string         `gorm:"type:text;not null" json:"title"`
	Priority  string         `gorm:"type:text;not null" json:"priority"`
	Status    string         `gorm:"type:text;not null;default:'Recebido'" json:"status"`
	UserName  *string        `gorm:"type:text" json:"user_name"`
	Feedbacks datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"feedbacks"`
}

func (Ticket) TableName() string { return "tickets" }
