package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"gorm.io/gorm"
)

var ErrSpotOccupiedToggle = errors.New("cannot change type of an occupied spot")

// SpotCounts summarizes the inventory of one tower.
type SpotCounts struct {
	Total    int    `json:"total"`
	General  int    `json:"general"`
	Reserved int    `json:"reserved"`
	TowerID  string `json:"tower_id"`
}

// SpotAssignment is the subscriber data attached to a RESERVED spot.
type SpotAssignment struct {
	Name          string     `json:"name" binding:"required"`
	Plate         string     `json:"plate" binding:"required"`
	Phone         string     `json:"phone"`
	VacationStart *time.Time `json:"vacation_start"`
	VacationEnd   *time.Time `json:"vacation_end"`
}

func spotCode(towerID string, n int) string {
	return fmt.Sprintf("%s-%02d", towerID, n)
}

// GetAllSpots lists every spot, optionally restricted to one gate (used for
// OPERATOR accounts bound to a single access).
func GetAllSpots(accessID string) ([]models.ParkingSpot, error) {
	query := database.DB.Order("id ASC")
	if accessID != "" {
		query = query.Where("access_id = ?", accessID)
	}
	var spots []models.ParkingSpot
	if err := query.Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch parking spots: %w", err)
	}
	return spots, nil
}

// GetSpotCounts counts a tower's inventory by type.
func GetSpotCounts(towerID string) (*SpotCounts, error) {
	var spots []models.ParkingSpot
	if err := database.DB.Where("tower_id = ?", towerID).Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch spots for tower %s: %w", towerID, err)
	}

	counts := &SpotCounts{TowerID: towerID, Total: len(spots)}
	for _, spot := range spots {
		if spot.Type == models.SpotGeneral {
			counts.General++
		} else {
			counts.Reserved++
		}
	}
	return counts, nil
}

// UpdateSpotCounts resizes a tower to the target spot count. Growth appends
// GENERAL spots; shrinking removes unoccupied spots from the high end only.
// Every remaining spot is then renumbered sequentially by ascending id so
// codes stay contiguous. Spot counts are small, so the full rewrite is fine.
func UpdateSpotCounts(totalCount int, towerID string) error {
	if totalCount < 0 {
		return fmt.Errorf("invalid spot count: %d", totalCount)
	}

	var spots []models.ParkingSpot
	if err := database.DB.Where("tower_id = ?", towerID).Order("id ASC").Find(&spots).Error; err != nil {
		return fmt.Errorf("failed to fetch spots for tower %s: %w", towerID, err)
	}
	currentCount := len(spots)

	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if totalCount > currentCount {
		for i := currentCount + 1; i <= totalCount; i++ {
			spot := models.ParkingSpot{
				Code:    spotCode(towerID, i),
				TowerID: towerID,
				Type:    models.SpotGeneral,
			}
			if err := tx.Create(&spot).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to create spot %s: %w", spot.Code, err)
			}
		}
	} else if totalCount < currentCount {
		// Remove from the end; occupied spots are never force-removed.
		for i := currentCount - 1; i >= totalCount; i-- {
			spot := spots[i]
			if spot.IsOccupied {
				continue
			}
			if err := tx.Model(&models.StaffMember{}).Where("assigned_spot_id = ?", spot.ID).Update("assigned_spot_id", nil).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to unassign staff from spot %d: %w", spot.ID, err)
			}
			if err := tx.Delete(&models.ParkingSpot{}, spot.ID).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to delete spot %d: %w", spot.ID, err)
			}
		}
	}

	// Renumber everything that remains so codes are always contiguous.
	var finalSpots []models.ParkingSpot
	if err := tx.Where("tower_id = ?", towerID).Order("id ASC").Find(&finalSpots).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to re-read spots for tower %s: %w", towerID, err)
	}
	for idx, spot := range finalSpots {
		code := spotCode(towerID, idx+1)
		if spot.Code == code {
			continue
		}
		if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spot.ID).Update("code", code).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to renumber spot %d: %w", spot.ID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit resize of tower %s: %w", towerID, err)
	}

	log.Printf("Resized tower %s from %d to %d spots (occupied spots preserved)", towerID, currentCount, len(finalSpots))
	return nil
}

// ToggleSpotType flips a spot between GENERAL and RESERVED. Blocked while
// the spot is occupied; flipping to GENERAL releases any assignment.
func ToggleSpotType(spotID int) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := database.DB.First(&spot, spotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to fetch spot %d: %w", spotID, err)
	}
	if spot.IsOccupied {
		return nil, ErrSpotOccupiedToggle
	}

	nextType := models.SpotReserved
	if spot.Type == models.SpotReserved {
		nextType = models.SpotGeneral
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spotID).Update("type", nextType).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update type of spot %d: %w", spotID, err)
	}
	if nextType == models.SpotGeneral {
		if err := tx.Model(&models.StaffMember{}).Where("assigned_spot_id = ?", spotID).Update("assigned_spot_id", nil).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to unassign staff from spot %d: %w", spotID, err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit type toggle of spot %d: %w", spotID, err)
	}

	spot.Type = nextType
	log.Printf("Toggled spot %s to %s", spot.Code, nextType)
	return &spot, nil
}

// UpdateSpotMonthlyFee sets the subscription fee of a spot.
func UpdateSpotMonthlyFee(spotID, fee int) error {
	if fee < 0 {
		return fmt.Errorf("monthly fee must not be negative: %d", fee)
	}
	result := database.DB.Model(&models.ParkingSpot{}).Where("id = ?", spotID).Update("monthly_fee", fee)
	if result.Error != nil {
		return fmt.Errorf("failed to update monthly fee of spot %d: %w", spotID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSpotNotFound
	}
	return nil
}

// UpdateSpotAssignment creates or updates the subscriber attached to a
// spot. At most one active subscriber per spot by convention.
func UpdateSpotAssignment(spotID int, data SpotAssignment) error {
	var spot models.ParkingSpot
	if err := database.DB.First(&spot, spotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpotNotFound
		}
		return fmt.Errorf("failed to fetch spot %d: %w", spotID, err)
	}

	var current models.StaffMember
	err := database.DB.Where("assigned_spot_id = ?", spotID).First(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up current assignment of spot %d: %w", spotID, err)
	}

	var phone *string
	if data.Phone != "" {
		phone = &data.Phone
	}

	if err == nil {
		updates := map[string]interface{}{
			"name":           data.Name,
			"license_plate":  data.Plate,
			"phone_number":   phone,
			"vacation_start": data.VacationStart,
			"vacation_end":   data.VacationEnd,
		}
		if err := database.DB.Model(&current).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update assignment of spot %d: %w", spotID, err)
		}
		log.Printf("Updated subscriber %s on spot %d", data.Name, spotID)
		return nil
	}

	staff := models.StaffMember{
		Name:           data.Name,
		Role:           "Abonado",
		LicensePlate:   data.Plate,
		PhoneNumber:    phone,
		AssignedSpotID: &spotID,
		VacationStart:  data.VacationStart,
		VacationEnd:    data.VacationEnd,
	}
	if err := database.DB.Create(&staff).Error; err != nil {
		return fmt.Errorf("failed to create subscriber for spot %d: %w", spotID, err)
	}
	log.Printf("Created subscriber %s on spot %d", data.Name, spotID)
	return nil
}

// RemoveSpotAssignment detaches any subscriber from the spot.
func RemoveSpotAssignment(spotID int) error {
	if err := database.DB.Model(&models.StaffMember{}).Where("assigned_spot_id = ?", spotID).Update("assigned_spot_id", nil).Error; err != nil {
		return fmt.Errorf("failed to remove assignment of spot %d: %w", spotID, err)
	}
	return nil
}
