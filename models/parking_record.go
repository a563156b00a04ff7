package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry types for a parking record.
const (
	EntryAutomatic = "AUTOMATIC" // subscriber, never billed per visit
	EntryManual    = "MANUAL"    // visitor, billable when charging is enabled
)

// ParkingRecord is one stay. A null ExitTime means the vehicle is currently
// parked; at most one open record may exist per spot at any moment.
type ParkingRecord struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	LicensePlate  string     `json:"license_plate" gorm:"type:varchar(20);not null;index"`
	EntryAccessID *string    `json:"entry_access_id" gorm:"type:varchar(36)"`
	ExitAccessID  *string    `json:"exit_access_id" gorm:"type:varchar(36)"`
	TowerID       string     `json:"tower_id" gorm:"type:varchar(20);not null;default:T1"`
	EntryTime     time.Time  `json:"entry_time" gorm:"not null;index"`
	ExitTime      *time.Time `json:"exit_time" gorm:"index"`
	SpotID        *int       `json:"spot_id" gorm:"index"`
	EntryType     string     `json:"entry_type" gorm:"type:varchar(10);not null"`
	Cost          *int       `json:"cost"`
}

func (ParkingRecord) TableName() string {
	return "parking_records"
}

func (r *ParkingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type ParkingRecordResponse struct {
	ID            string     `json:"id"`
	LicensePlate  string     `json:"license_plate"`
	EntryAccessID *string    `json:"entry_access_id"`
	ExitAccessID  *string    `json:"exit_access_id"`
	TowerID       string     `json:"tower_id"`
	EntryTime     time.Time  `json:"entry_time"`
	ExitTime      *time.Time `json:"exit_time"`
	SpotID        *int       `json:"spot_id"`
	EntryType     string     `json:"entry_type"`
	Cost          *int       `json:"cost"`
}

func (r *ParkingRecord) ToResponse() ParkingRecordResponse {
	return ParkingRecordResponse{
		ID:            r.ID,
		LicensePlate:  r.LicensePlate,
		EntryAccessID: r.EntryAccessID,
		ExitAccessID:  r.ExitAccessID,
		TowerID:       r.TowerID,
		EntryTime:     r.EntryTime,
		ExitTime:      r.ExitTime,
		SpotID:        r.SpotID,
		EntryType:     r.EntryType,
		Cost:          r.Cost,
	}
}
