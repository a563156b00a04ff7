package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Access represents a physical vehicular entry/exit point (gate).
type Access struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null" binding:"required,max=100"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	Cameras   []Camera  `json:"-" gorm:"foreignKey:AccessID;references:ID"`
}

func (Access) TableName() string {
	return "accesses"
}

func (a *Access) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type AccessResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Access) ToResponse() AccessResponse {
	return AccessResponse{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}
