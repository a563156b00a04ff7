package services

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"gorm.io/gorm/clause"
)

// SetupDatabase idempotently seeds the base data: gates, default settings,
// the super admin and an initial spot grid. Safe to call repeatedly.
func SetupDatabase() error {
	log.Println("Running database setup...")

	gates := []models.Access{
		{ID: "gate-a", Name: "Acceso Principal"},
		{ID: "gate-1", Name: "Puerta 1"},
		{ID: "gate-2", Name: "Puerta 2"},
		{ID: "gate-3", Name: "Puerta 3"},
	}
	for _, gate := range gates {
		if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&gate).Error; err != nil {
			return fmt.Errorf("failed to seed access %s: %w", gate.ID, err)
		}
	}

	defaults := []models.Setting{
		{Key: models.SettingPricePerMinute, Value: strconv.Itoa(DefaultPricePerMinute)},
		{Key: models.SettingChargingEnabled, Value: "true"},
		{Key: models.SettingCompanyName, Value: "Mi Estacionamiento"},
		{Key: models.SettingSystemName, Value: "Gestión de Estacionamientos"},
		{Key: models.SettingDescription, Value: "Sistema de Control de Acceso Vehicular"},
		{Key: models.SettingInstallDate, Value: strconv.FormatInt(time.Now().Unix(), 10)},
	}
	for _, setting := range defaults {
		if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", setting.Key, err)
		}
	}

	EnsureAdminExists()

	// Initial grid: 30 reserved + 50 general spots, only on a fresh store.
	var spotCount int64
	if err := database.DB.Model(&models.ParkingSpot{}).Count(&spotCount).Error; err != nil {
		return fmt.Errorf("failed to count spots: %w", err)
	}
	if spotCount == 0 {
		for i := 1; i <= 30; i++ {
			spot := models.ParkingSpot{Code: fmt.Sprintf("R-%02d", i), TowerID: "T1", Type: models.SpotReserved}
			if err := database.DB.Create(&spot).Error; err != nil {
				return fmt.Errorf("failed to seed spot %s: %w", spot.Code, err)
			}
		}
		for i := 31; i <= 80; i++ {
			spot := models.ParkingSpot{Code: fmt.Sprintf("G-%02d", i), TowerID: "T1", Type: models.SpotGeneral}
			if err := database.DB.Create(&spot).Error; err != nil {
				return fmt.Errorf("failed to seed spot %s: %w", spot.Code, err)
			}
		}
		log.Println("Seeded 80 parking spots")
	}

	log.Println("Database setup completed")
	return nil
}

// SimulateEntry fabricates a test plate and runs it through the entry
// workflow, for smoke-testing a deployment.
func SimulateEntry() (string, *AccessResult, error) {
	plate := fmt.Sprintf("TEST%03d", rand.Intn(1000))
	result, err := ProcessVehicleEntry(plate, "gate-a")
	if err != nil {
		return plate, nil, err
	}
	return plate, result, nil
}

// SimulateOneMonthData fabricates 30 days of historical records plus a
// partial current occupancy, so reports and the dashboard have something to
// show on a demo install.
func SimulateOneMonthData() (int, error) {
	log.Println("Starting simulation of 1 month data...")

	pricePerMinute, err := GetPricePerMinute()
	if err != nil {
		return 0, err
	}

	var spots []models.ParkingSpot
	if err := database.DB.Find(&spots).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch spots: %w", err)
	}
	if len(spots) == 0 {
		return 0, fmt.Errorf("no spots to simulate against, run setup first")
	}
	var staff []models.StaffMember
	if err := database.DB.Find(&staff).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch staff: %w", err)
	}

	now := time.Now()
	count := 0

	tx := database.DB.Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	letters := []rune("ABCDEFGH")
	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		entriesToday := 10 + rand.Intn(40)

		for j := 0; j < entriesToday; j++ {
			hour := 7 + rand.Intn(13)
			if i == 0 {
				currentHour := now.Hour()
				if currentHour > 7 {
					hour = 7 + rand.Intn(currentHour-7)
				} else if currentHour > 0 {
					hour = currentHour - 1
				} else {
					hour = 0
				}
			}
			entryTime := time.Date(day.Year(), day.Month(), day.Day(), hour, rand.Intn(60), 0, 0, now.Location())
			durationMins := 20 + rand.Intn(220)
			exitTime := entryTime.Add(time.Duration(durationMins) * time.Minute)
			if i == 0 && exitTime.After(now) {
				continue
			}

			record := models.ParkingRecord{
				EntryTime: entryTime,
				ExitTime:  &exitTime,
				TowerID:   "T1",
			}
			spotID := spots[rand.Intn(len(spots))].ID
			if len(staff) > 0 && rand.Float64() > 0.6 {
				member := staff[rand.Intn(len(staff))]
				record.LicensePlate = member.LicensePlate
				record.EntryType = models.EntryAutomatic
				if member.AssignedSpotID != nil {
					spotID = *member.AssignedSpotID
				}
			} else {
				record.LicensePlate = fmt.Sprintf("%c%c%c-%d",
					letters[rand.Intn(len(letters))], letters[rand.Intn(len(letters))], letters[rand.Intn(len(letters))],
					100+rand.Intn(900))
				record.EntryType = models.EntryManual
				cost := ApplyChileanRounding(float64(durationMins * pricePerMinute))
				record.Cost = &cost
			}
			record.SpotID = &spotID

			if err := tx.Create(&record).Error; err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("failed to insert simulated record: %w", err)
			}
			count++
		}
	}

	// Current state: occupy roughly 30% of free spots with open records.
	visitorLetters := []rune("JKLMNPQR")
	for _, spot := range spots {
		if spot.IsOccupied || rand.Float64() <= 0.7 {
			continue
		}
		entryTime := now.Add(-time.Duration(rand.Intn(5)) * time.Hour)

		record := models.ParkingRecord{
			EntryTime: entryTime,
			TowerID:   spot.TowerID,
			EntryType: models.EntryManual,
		}
		spotID := spot.ID
		record.SpotID = &spotID
		record.LicensePlate = fmt.Sprintf("%c%c%c-%d",
			visitorLetters[rand.Intn(len(visitorLetters))], visitorLetters[rand.Intn(len(visitorLetters))], visitorLetters[rand.Intn(len(visitorLetters))],
			100+rand.Intn(900))
		for _, member := range staff {
			if member.AssignedSpotID != nil && *member.AssignedSpotID == spot.ID && rand.Float64() > 0.4 {
				record.LicensePlate = member.LicensePlate
				record.EntryType = models.EntryAutomatic
				break
			}
		}

		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert simulated open record: %w", err)
		}
		if err := tx.Model(&models.ParkingSpot{}).Where("id = ?", spot.ID).Update("is_occupied", true).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to occupy simulated spot %d: %w", spot.ID, err)
		}
		count++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit simulation: %w", err)
	}

	log.Printf("Simulation inserted %d records", count)
	return count, nil
}

// ClearAllRecords wipes records and staff and resets every spot to a free
// GENERAL spot. Destructive, SUPER_ADMIN only.
func ClearAllRecords() error {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := tx.Where("1 = 1").Delete(&models.ParkingRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete parking records: %w", err)
	}
	if err := tx.Where("1 = 1").Delete(&models.StaffMember{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete staff members: %w", err)
	}
	if err := tx.Model(&models.ParkingSpot{}).Where("1 = 1").Updates(map[string]interface{}{
		"is_occupied":     false,
		"type":            models.SpotGeneral,
		"monthly_fee":     0,
		"reserved_for_id": nil,
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset spots: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	log.Println("Cleared all records, staff and spot state")
	return nil
}
