package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Expected domain failures. Handlers translate these into non-500 JSON
// envelopes; anything else is an unexpected store failure.
var (
	ErrSpotNotFound = errors.New("parking spot not found")
	ErrSpotOccupied = errors.New("parking spot already occupied")
)

// AccessResult is the outcome of evaluating a vehicle at a gate.
type AccessResult struct {
	Allowed   bool                        `json:"allowed"`
	Message   string                      `json:"message"`
	Spot      *models.ParkingSpotResponse `json:"spot,omitempty"`
	Staff     *models.StaffMemberResponse `json:"staff,omitempty"`
	EntryType string                      `json:"entry_type"`
}

// FreeResult is the outcome of releasing a spot.
type FreeResult struct {
	Success         bool       `json:"success"`
	Cost            int        `json:"cost"`
	DurationSeconds int        `json:"duration_seconds"`
	EntryTime       *time.Time `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time"`
}

// ExitResult is the outcome of an exit-by-plate.
type ExitResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Cost            int    `json:"cost"`
	DurationSeconds int    `json:"duration_seconds"`
	SpotCode        string `json:"spot_code,omitempty"`
}

// ApplyChileanRounding rounds a raw amount to the nearest multiple of 10,
// half up: 121 -> 120, 125 -> 130, 126 -> 130.
func ApplyChileanRounding(amount float64) int {
	return int(math.Round(amount/10)) * 10
}

// lockForUpdate adds SELECT ... FOR UPDATE on engines that support it.
// The sqlite fallback relies on its single-writer transaction semantics.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ProcessVehicleEntry evaluates a plate at an entry gate. Subscribers with
// a free assigned spot get in automatically; everyone else needs the
// general-spot fallback (see webhook handler) or a guard.
func ProcessVehicleEntry(licensePlate, accessID string) (*AccessResult, error) {
	now := time.Now()

	var staff models.StaffMember
	err := database.DB.Where("license_plate = ?", licensePlate).First(&staff).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up staff by plate %s: %w", licensePlate, err)
		}
		return &AccessResult{
			Allowed:   false,
			Message:   "Vehículo Desconocido o Visita. Requiere Asignación Manual.",
			EntryType: models.EntryManual,
		}, nil
	}

	staffResp := staff.ToResponse()

	if staff.OnVacationAt(now) {
		return &AccessResult{
			Allowed:   false,
			Message:   fmt.Sprintf("Abonado %s está de vacaciones. Asignar como Visita.", staff.Name),
			Staff:     &staffResp,
			EntryType: models.EntryManual,
		}, nil
	}

	if staff.AssignedSpotID == nil {
		return &AccessResult{
			Allowed:   false,
			Message:   "Vehículo Desconocido o Visita. Requiere Asignación Manual.",
			Staff:     &staffResp,
			EntryType: models.EntryManual,
		}, nil
	}

	var spot models.ParkingSpot
	if err := database.DB.First(&spot, *staff.AssignedSpotID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch assigned spot %d: %w", *staff.AssignedSpotID, err)
	}

	if spot.ID == 0 || spot.IsOccupied {
		return &AccessResult{
			Allowed:   false,
			Message:   fmt.Sprintf("Hola %s. Tu sitio reservado parece estar ocupado (o ya ingresaste). Por favor contacta al guardia.", staff.Name),
			Staff:     &staffResp,
			EntryType: models.EntryManual,
		}, nil
	}

	if err := OccupySpot(spot.ID, licensePlate, models.EntryAutomatic, accessID); err != nil {
		if errors.Is(err, ErrSpotOccupied) {
			// Lost the race to another entry between the read and the lock.
			return &AccessResult{
				Allowed:   false,
				Message:   fmt.Sprintf("Hola %s. Tu sitio reservado parece estar ocupado (o ya ingresaste). Por favor contacta al guardia.", staff.Name),
				Staff:     &staffResp,
				EntryType: models.EntryManual,
			}, nil
		}
		return nil, err
	}

	spot.IsOccupied = true
	spotResp := spot.ToResponse()
	log.Printf("Automatic entry granted: plate=%s spot=%s access=%s", licensePlate, spot.Code, accessID)
	return &AccessResult{
		Allowed:   true,
		Message:   fmt.Sprintf("Bienvenido %s (Abonado). Acceso Automático a Sitio %s", staff.Name, spot.Code),
		Spot:      &spotResp,
		Staff:     &staffResp,
		EntryType: models.EntryAutomatic,
	}, nil
}

// GetAvailableGeneralSpots returns free spots usable by visitors, ordered
// by ascending id so the lowest-numbered spot fills first. RESERVED spots
// qualify only while their subscriber is on vacation. An empty accessID
// skips the gate filter.
func GetAvailableGeneralSpots(accessID string) ([]models.ParkingSpot, error) {
	now := time.Now()

	query := database.DB.Where("is_occupied = ?", false).Order("id ASC")
	if accessID != "" {
		query = query.Where("access_id = ?", accessID)
	}

	var emptySpots []models.ParkingSpot
	if err := query.Find(&emptySpots).Error; err != nil {
		return nil, fmt.Errorf("failed to query empty spots: %w", err)
	}

	var available []models.ParkingSpot
	for _, spot := range emptySpots {
		if spot.Type == models.SpotGeneral {
			available = append(available, spot)
			continue
		}
		var owner models.StaffMember
		err := database.DB.Where("assigned_spot_id = ?", spot.ID).First(&owner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to look up owner of spot %d: %w", spot.ID, err)
		}
		if owner.OnVacationAt(now) {
			available = append(available, spot)
		}
	}
	return available, nil
}

// OccupySpot marks a spot occupied and opens its parking record in a single
// transaction. The occupancy check is re-done under a row lock so two
// concurrent entries cannot share a spot.
func OccupySpot(spotID int, licensePlate, entryType, accessID string) error {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var spot models.ParkingSpot
	if err := lockForUpdate(tx).First(&spot, spotID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpotNotFound
		}
		return fmt.Errorf("failed to lock spot %d: %w", spotID, err)
	}

	if spot.IsOccupied {
		tx.Rollback()
		log.Printf("Spot %d is already occupied, aborting occupation for plate %s", spotID, licensePlate)
		return ErrSpotOccupied
	}

	if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spotID).Update("is_occupied", true).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to mark spot %d occupied: %w", spotID, err)
	}

	record := models.ParkingRecord{
		LicensePlate: licensePlate,
		SpotID:       &spotID,
		TowerID:      spot.TowerID,
		EntryType:    entryType,
		EntryTime:    time.Now(),
	}
	if accessID != "" {
		record.EntryAccessID = &accessID
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create parking record for spot %d: %w", spotID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit occupation of spot %d: %w", spotID, err)
	}

	log.Printf("Successfully occupied spot %d with plate %s (%s)", spotID, licensePlate, entryType)
	return nil
}

// FreeSpot releases a spot and closes its open record, billing MANUAL stays
// when charging is enabled. A spot with no open record is still marked free
// and yields a zero result.
func FreeSpot(spotID int) (*FreeResult, error) {
	exitTime := time.Now()
	pricePerMinute, err := GetPricePerMinute()
	if err != nil {
		return nil, err
	}
	chargingEnabled, err := IsChargingEnabled()
	if err != nil {
		return nil, err
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	result := &FreeResult{}

	var record models.ParkingRecord
	err = lockForUpdate(tx).
		Where("spot_id = ? AND exit_time IS NULL", spotID).
		First(&record).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, fmt.Errorf("failed to find open record for spot %d: %w", spotID, err)
	}

	if err == nil {
		duration := exitTime.Sub(record.EntryTime).Seconds()
		if duration < 0 {
			duration = 0
		}
		cost := 0
		if record.EntryType == models.EntryManual && chargingEnabled {
			raw := (duration / 60.0) * float64(pricePerMinute)
			cost = ApplyChileanRounding(raw)
		}

		updates := map[string]interface{}{"exit_time": exitTime}
		if cost > 0 {
			updates["cost"] = cost
		} else {
			updates["cost"] = nil
		}
		if err := tx.Model(&models.ParkingRecord{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to close record %s: %w", record.ID, err)
		}

		entryTime := record.EntryTime
		result.Success = true
		result.Cost = cost
		result.DurationSeconds = int(duration)
		result.EntryTime = &entryTime
		result.ExitTime = &exitTime
	}

	if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spotID).Update("is_occupied", false).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to mark spot %d free: %w", spotID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit release of spot %d: %w", spotID, err)
	}

	log.Printf("Freed spot %d: cost=%d duration=%ds", spotID, result.Cost, result.DurationSeconds)
	return result, nil
}

// ProcessVehicleExit finds the open record by plate, stamps the exit gate,
// frees the spot and reports the computed cost.
func ProcessVehicleExit(licensePlate, accessID string) (*ExitResult, error) {
	var record models.ParkingRecord
	err := database.DB.
		Where("license_plate = ? AND exit_time IS NULL", licensePlate).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ExitResult{
				Success: false,
				Message: fmt.Sprintf("Vehículo %s no encontrado en el estacionamiento.", licensePlate),
			}, nil
		}
		return nil, fmt.Errorf("failed to find open record for plate %s: %w", licensePlate, err)
	}
	if record.SpotID == nil {
		return &ExitResult{
			Success: false,
			Message: fmt.Sprintf("Vehículo %s no encontrado en el estacionamiento.", licensePlate),
		}, nil
	}

	if accessID != "" {
		if err := database.DB.Model(&models.ParkingRecord{}).Where("id = ?", record.ID).Update("exit_access_id", accessID).Error; err != nil {
			return nil, fmt.Errorf("failed to stamp exit access on record %s: %w", record.ID, err)
		}
	}

	freeResult, err := FreeSpot(*record.SpotID)
	if err != nil {
		return nil, err
	}

	var spot models.ParkingSpot
	if err := database.DB.First(&spot, *record.SpotID).Error; err != nil {
		return nil, fmt.Errorf("failed to re-read spot %d: %w", *record.SpotID, err)
	}

	log.Printf("Exit registered: plate=%s spot=%s cost=%d", licensePlate, spot.Code, freeResult.Cost)
	return &ExitResult{
		Success:         true,
		Message:         fmt.Sprintf("Salida Registrada: Patente %s liberó sitio %s.", licensePlate, spot.Code),
		Cost:            freeResult.Cost,
		DurationSeconds: freeResult.DurationSeconds,
		SpotCode:        spot.Code,
	}, nil
}

// SyncSpotOccupancy reconciles every spot's occupied flag with the
// existence of an open parking record for it. Run periodically from the
// cron scheduler so a crashed request can't leave a flag wedged.
func SyncSpotOccupancy() error {
	var spots []models.ParkingSpot
	if err := database.DB.Find(&spots).Error; err != nil {
		return fmt.Errorf("failed to fetch parking spots: %w", err)
	}

	fixed := 0
	for _, spot := range spots {
		var openCount int64
		if err := database.DB.Model(&models.ParkingRecord{}).
			Where("spot_id = ? AND exit_time IS NULL", spot.ID).
			Count(&openCount).Error; err != nil {
			log.Printf("Failed to count open records for spot %d: %v", spot.ID, err)
			continue
		}
		shouldBeOccupied := openCount > 0
		if spot.IsOccupied == shouldBeOccupied {
			continue
		}
		if err := database.DB.Model(&models.ParkingSpot{}).Where("id = ?", spot.ID).Update("is_occupied", shouldBeOccupied).Error; err != nil {
			log.Printf("Failed to sync occupancy for spot %d: %v", spot.ID, err)
			continue
		}
		log.Printf("Synced occupancy for spot %s: is_occupied=%v (open records: %d)", spot.Code, shouldBeOccupied, openCount)
		fixed++
	}

	if fixed > 0 {
		log.Printf("Occupancy sync corrected %d spots", fixed)
	}
	return nil
}
