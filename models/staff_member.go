package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffMember is a subscriber (abonado): a person with a recurring monthly
// assignment to a RESERVED spot, identified at the gate by license plate.
type StaffMember struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name           string       `json:"name" gorm:"type:varchar(100);not null" binding:"required,max=100"`
	Role           string       `json:"role" gorm:"type:varchar(50);not null"`
	LicensePlate   string       `json:"license_plate" gorm:"type:varchar(20);uniqueIndex;not null" binding:"required,max=20"`
	PhoneNumber    *string      `json:"phone_number" gorm:"type:varchar(30)"`
	AssignedSpotID *int         `json:"assigned_spot_id" gorm:"index"`
	VacationStart  *time.Time   `json:"vacation_start"`
	VacationEnd    *time.Time   `json:"vacation_end"`
	AssignedSpot   *ParkingSpot `json:"-" gorm:"foreignKey:AssignedSpotID;references:ID"`
}

func (StaffMember) TableName() string {
	return "staff_members"
}

func (s *StaffMember) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// OnVacationAt reports whether now falls inside the member's vacation
// window, both ends inclusive. Members without a window are never on
// vacation.
func (s *StaffMember) OnVacationAt(now time.Time) bool {
	if s.VacationStart == nil || s.VacationEnd == nil {
		return false
	}
	return !now.Before(*s.VacationStart) && !now.After(*s.VacationEnd)
}

type StaffMemberResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	LicensePlate   string     `json:"license_plate"`
	PhoneNumber    *string    `json:"phone_number"`
	AssignedSpotID *int       `json:"assigned_spot_id"`
	VacationStart  *time.Time `json:"vacation_start"`
	VacationEnd    *time.Time `json:"vacation_end"`
}

func (s *StaffMember) ToResponse() StaffMemberResponse {
	return StaffMemberResponse{
		ID:             s.ID,
		Name:           s.Name,
		Role:           s.Role,
		LicensePlate:   s.LicensePlate,
		PhoneNumber:    s.PhoneNumber,
		AssignedSpotID: s.AssignedSpotID,
		VacationStart:  s.VacationStart,
		VacationEnd:    s.VacationEnd,
	}
}
