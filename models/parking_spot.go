package models

// Parking spot types.
const (
	SpotGeneral  = "GENERAL"
	SpotReserved = "RESERVED"
)

// ParkingSpot is a single parking space. IsOccupied must always agree with
// the existence of an open ParkingRecord for the spot; both sides are
// written inside the same transaction (see services.OccupySpot / FreeSpot).
type ParkingSpot struct {
	ID            int     `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	Code          string  `json:"code" gorm:"type:varchar(20);not null" binding:"required,max=20"`
	AccessID      *string `json:"access_id" gorm:"type:varchar(36);index"`
	TowerID       string  `json:"tower_id" gorm:"type:varchar(20);not null;default:T1"`
	Type          string  `json:"type" gorm:"type:varchar(10);not null" binding:"required,oneof=GENERAL RESERVED"`
	IsOccupied    bool    `json:"is_occupied" gorm:"not null;default:false"`
	ReservedForID *string `json:"reserved_for_id" gorm:"type:varchar(36)"`
	MonthlyFee    *int    `json:"monthly_fee" binding:"omitempty,gte=0"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}

type ParkingSpotResponse struct {
	ID         int     `json:"id"`
	Code       string  `json:"code"`
	AccessID   *string `json:"access_id"`
	TowerID    string  `json:"tower_id"`
	Type       string  `json:"type"`
	IsOccupied bool    `json:"is_occupied"`
	MonthlyFee *int    `json:"monthly_fee"`
}

func (p *ParkingSpot) ToResponse() ParkingSpotResponse {
	return ParkingSpotResponse{
		ID:         p.ID,
		Code:       p.Code,
		AccessID:   p.AccessID,
		TowerID:    p.TowerID,
		Type:       p.Type,
		IsOccupied: p.IsOccupied,
		MonthlyFee: p.MonthlyFee,
	}
}
