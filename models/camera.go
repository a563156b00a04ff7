package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Camera direction types.
const (
	CameraEntry = "ENTRY"
	CameraExit  = "EXIT"
	CameraBoth  = "BOTH"
)

// Camera maps an external LPR device name to a gate and a traffic direction.
// A BOTH camera needs the inbound event to carry its own direction signal.
type Camera struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DeviceName string `json:"device_name" gorm:"type:varchar(100);uniqueIndex;not null" binding:"required,max=100"`
	AccessID   string `json:"access_id" gorm:"type:varchar(36);not null;index" binding:"required"`
	Type       string `json:"type" gorm:"type:varchar(10);not null" binding:"required,oneof=ENTRY EXIT BOTH"`
	Access     Access `json:"-" gorm:"foreignKey:AccessID;references:ID"`
}

func (Camera) TableName() string {
	return "cameras"
}

func (c *Camera) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CameraResponse struct {
	ID         string `json:"id"`
	DeviceName string `json:"device_name"`
	AccessID   string `json:"access_id"`
	AccessName string `json:"access_name,omitempty"`
	Type       string `json:"type"`
}

func (c *Camera) ToResponse() CameraResponse {
	return CameraResponse{
		ID:         c.ID,
		DeviceName: c.DeviceName,
		AccessID:   c.AccessID,
		AccessName: c.Access.Name,
		Type:       c.Type,
	}
}
