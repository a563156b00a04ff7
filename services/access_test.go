package services

import (
	"testing"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global connection at a fresh in-memory store for
// one test.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Access{},
		&models.Camera{},
		&models.ParkingSpot{},
		&models.StaffMember{},
		&models.ParkingRecord{},
		&models.Setting{},
		&models.User{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
}

func createSpot(t *testing.T, code, spotType string, occupied bool) *models.ParkingSpot {
	t.Helper()
	spot := &models.ParkingSpot{
		Code:       code,
		TowerID:    "T1",
		Type:       spotType,
		IsOccupied: occupied,
	}
	if err := database.DB.Create(spot).Error; err != nil {
		t.Fatalf("failed to create spot %s: %v", code, err)
	}
	return spot
}

func createStaff(t *testing.T, name, plate string, spotID *int) *models.StaffMember {
	t.Helper()
	staff := &models.StaffMember{
		Name:           name,
		Role:           "Abonado",
		LicensePlate:   plate,
		AssignedSpotID: spotID,
	}
	if err := database.DB.Create(staff).Error; err != nil {
		t.Fatalf("failed to create staff %s: %v", name, err)
	}
	return staff
}

func countOpenRecords(t *testing.T, spotID int) int64 {
	t.Helper()
	var count int64
	if err := database.DB.Model(&models.ParkingRecord{}).
		Where("spot_id = ? AND exit_time IS NULL", spotID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count open records: %v", err)
	}
	return count
}

func TestApplyChileanRounding(t *testing.T) {
	cases := []struct {
		amount float64
		want   int
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{121, 120},
		{124, 120},
		{125, 130},
		{126, 130},
		{130, 130},
		{1175, 1180},
		{999, 1000},
	}
	for _, tc := range cases {
		if got := ApplyChileanRounding(tc.amount); got != tc.want {
			t.Errorf("ApplyChileanRounding(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestOccupySpot(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotGeneral, false)

	if err := OccupySpot(spot.ID, "ABC123", models.EntryManual, ""); err != nil {
		t.Fatalf("OccupySpot failed: %v", err)
	}

	var updated models.ParkingSpot
	if err := database.DB.First(&updated, spot.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if !updated.IsOccupied {
		t.Error("spot should be marked occupied")
	}
	if got := countOpenRecords(t, spot.ID); got != 1 {
		t.Errorf("open records = %d, want 1", got)
	}
}

func TestOccupySpotAlreadyOccupied(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotGeneral, false)

	if err := OccupySpot(spot.ID, "ABC123", models.EntryManual, ""); err != nil {
		t.Fatalf("first OccupySpot failed: %v", err)
	}
	if err := OccupySpot(spot.ID, "XYZ789", models.EntryManual, ""); err != ErrSpotOccupied {
		t.Fatalf("second OccupySpot returned %v, want ErrSpotOccupied", err)
	}

	// The failed occupation must not leave a second open record behind.
	if got := countOpenRecords(t, spot.ID); got != 1 {
		t.Errorf("open records = %d, want 1", got)
	}
}

func TestOccupySpotNotFound(t *testing.T) {
	setupTestDB(t)
	if err := OccupySpot(999, "ABC123", models.EntryManual, ""); err != ErrSpotNotFound {
		t.Fatalf("OccupySpot returned %v, want ErrSpotNotFound", err)
	}
}

func TestFreeSpotWithoutOpenRecord(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotGeneral, true)

	result, err := FreeSpot(spot.ID)
	if err != nil {
		t.Fatalf("FreeSpot failed: %v", err)
	}
	if result.Success {
		t.Error("freeing a spot without a record should not report success")
	}
	if result.Cost != 0 || result.DurationSeconds != 0 {
		t.Errorf("cost=%d duration=%d, both should be zero", result.Cost, result.DurationSeconds)
	}

	var updated models.ParkingSpot
	if err := database.DB.First(&updated, spot.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if updated.IsOccupied {
		t.Error("spot should be freed even without an open record")
	}
}

func TestFreeSpotBillsManualStay(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotGeneral, true)

	entryTime := time.Now().Add(-5 * time.Minute)
	spotID := spot.ID
	record := models.ParkingRecord{
		LicensePlate: "ABC123",
		SpotID:       &spotID,
		TowerID:      "T1",
		EntryType:    models.EntryManual,
		EntryTime:    entryTime,
	}
	if err := database.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	result, err := FreeSpot(spot.ID)
	if err != nil {
		t.Fatalf("FreeSpot failed: %v", err)
	}
	if !result.Success {
		t.Fatal("FreeSpot should report success")
	}
	// 5 minutes at the default 25 CLP/min is 125 raw, rounded to 130.
	if result.Cost != 130 {
		t.Errorf("cost = %d, want 130", result.Cost)
	}
	if result.ExitTime.Before(*result.EntryTime) {
		t.Error("exit time must not precede entry time")
	}

	var closed models.ParkingRecord
	if err := database.DB.First(&closed, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("failed to re-read record: %v", err)
	}
	if closed.ExitTime == nil {
		t.Error("record should be closed")
	}
	if closed.Cost == nil || *closed.Cost != 130 {
		t.Errorf("stored cost = %v, want 130", closed.Cost)
	}
}

func TestFreeSpotAutomaticStayNeverBilled(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotReserved, true)

	spotID := spot.ID
	record := models.ParkingRecord{
		LicensePlate: "SUB001",
		SpotID:       &spotID,
		TowerID:      "T1",
		EntryType:    models.EntryAutomatic,
		EntryTime:    time.Now().Add(-3 * time.Hour),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	result, err := FreeSpot(spot.ID)
	if err != nil {
		t.Fatalf("FreeSpot failed: %v", err)
	}
	if result.Cost != 0 {
		t.Errorf("cost = %d, subscriber stays are never billed", result.Cost)
	}

	var closed models.ParkingRecord
	if err := database.DB.First(&closed, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("failed to re-read record: %v", err)
	}
	if closed.Cost != nil {
		t.Errorf("stored cost = %v, want nil", closed.Cost)
	}
}

func TestFreeSpotChargingDisabled(t *testing.T) {
	setupTestDB(t)
	if err := SetChargingEnabled(false); err != nil {
		t.Fatalf("failed to disable charging: %v", err)
	}
	spot := createSpot(t, "T1-01", models.SpotGeneral, true)

	spotID := spot.ID
	record := models.ParkingRecord{
		LicensePlate: "ABC123",
		SpotID:       &spotID,
		TowerID:      "T1",
		EntryType:    models.EntryManual,
		EntryTime:    time.Now().Add(-10 * time.Minute),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	result, err := FreeSpot(spot.ID)
	if err != nil {
		t.Fatalf("FreeSpot failed: %v", err)
	}
	if result.Cost != 0 {
		t.Errorf("cost = %d, want 0 with charging disabled", result.Cost)
	}
}

func TestProcessVehicleEntrySubscriber(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-05", models.SpotReserved, false)
	spotID := spot.ID
	createStaff(t, "Juan Pérez", "ABC123", &spotID)

	result, err := ProcessVehicleEntry("ABC123", "gate-a")
	if err != nil {
		t.Fatalf("ProcessVehicleEntry failed: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("subscriber entry should be allowed, got: %s", result.Message)
	}
	if result.EntryType != models.EntryAutomatic {
		t.Errorf("entry type = %s, want AUTOMATIC", result.EntryType)
	}
	if result.Spot == nil || result.Spot.Code != "T1-05" {
		t.Errorf("result spot = %+v, want T1-05", result.Spot)
	}

	var record models.ParkingRecord
	if err := database.DB.Where("license_plate = ? AND exit_time IS NULL", "ABC123").First(&record).Error; err != nil {
		t.Fatalf("expected an open record: %v", err)
	}
	if record.EntryType != models.EntryAutomatic {
		t.Errorf("record entry type = %s, want AUTOMATIC", record.EntryType)
	}
}

func TestProcessVehicleEntryUnknownPlate(t *testing.T) {
	setupTestDB(t)
	createSpot(t, "T1-01", models.SpotGeneral, false)

	result, err := ProcessVehicleEntry("ZZZ999", "gate-a")
	if err != nil {
		t.Fatalf("ProcessVehicleEntry failed: %v", err)
	}
	if result.Allowed {
		t.Error("unknown plate must not be allowed automatically")
	}
	if result.EntryType != models.EntryManual {
		t.Errorf("entry type = %s, want MANUAL", result.EntryType)
	}
}

func TestProcessVehicleEntrySubscriberOnVacation(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-05", models.SpotReserved, false)
	spotID := spot.ID
	staff := createStaff(t, "Ana Soto", "DEF456", &spotID)

	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(72 * time.Hour)
	if err := database.DB.Model(staff).Updates(map[string]interface{}{
		"vacation_start": start,
		"vacation_end":   end,
	}).Error; err != nil {
		t.Fatalf("failed to set vacation: %v", err)
	}

	result, err := ProcessVehicleEntry("DEF456", "gate-a")
	if err != nil {
		t.Fatalf("ProcessVehicleEntry failed: %v", err)
	}
	if result.Allowed {
		t.Error("subscriber on vacation must not get automatic access")
	}

	var updated models.ParkingSpot
	if err := database.DB.First(&updated, spot.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if updated.IsOccupied {
		t.Error("spot must stay free when entry is denied")
	}
}

func TestProcessVehicleEntryOccupiedAssignedSpot(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-05", models.SpotReserved, true)
	spotID := spot.ID
	createStaff(t, "Juan Pérez", "ABC123", &spotID)

	result, err := ProcessVehicleEntry("ABC123", "gate-a")
	if err != nil {
		t.Fatalf("ProcessVehicleEntry failed: %v", err)
	}
	if result.Allowed {
		t.Error("entry to an occupied assigned spot must be denied")
	}
	if got := countOpenRecords(t, spot.ID); got != 0 {
		t.Errorf("open records = %d, want 0", got)
	}
}

func TestGetAvailableGeneralSpots(t *testing.T) {
	setupTestDB(t)

	free := createSpot(t, "T1-01", models.SpotGeneral, false)
	createSpot(t, "T1-02", models.SpotGeneral, true)
	reservedActive := createSpot(t, "T1-03", models.SpotReserved, false)
	reservedVacation := createSpot(t, "T1-04", models.SpotReserved, false)

	activeID := reservedActive.ID
	createStaff(t, "Presente", "AAA111", &activeID)

	vacationID := reservedVacation.ID
	onVacation := createStaff(t, "Ausente", "BBB222", &vacationID)
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	if err := database.DB.Model(onVacation).Updates(map[string]interface{}{
		"vacation_start": start,
		"vacation_end":   end,
	}).Error; err != nil {
		t.Fatalf("failed to set vacation: %v", err)
	}

	available, err := GetAvailableGeneralSpots("")
	if err != nil {
		t.Fatalf("GetAvailableGeneralSpots failed: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("got %d available spots, want 2", len(available))
	}
	if available[0].ID != free.ID {
		t.Errorf("first available spot = %s, want %s (lowest id first)", available[0].Code, free.Code)
	}
	if available[1].ID != reservedVacation.ID {
		t.Errorf("second available spot = %s, want %s", available[1].Code, reservedVacation.Code)
	}
}

func TestProcessVehicleExit(t *testing.T) {
	setupTestDB(t)
	spot := createSpot(t, "T1-01", models.SpotGeneral, false)
	if err := OccupySpot(spot.ID, "ABC123", models.EntryManual, "gate-a"); err != nil {
		t.Fatalf("OccupySpot failed: %v", err)
	}

	result, err := ProcessVehicleExit("ABC123", "gate-1")
	if err != nil {
		t.Fatalf("ProcessVehicleExit failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("exit should succeed, got: %s", result.Message)
	}
	if result.SpotCode != "T1-01" {
		t.Errorf("spot code = %s, want T1-01", result.SpotCode)
	}

	var record models.ParkingRecord
	if err := database.DB.Where("license_plate = ?", "ABC123").First(&record).Error; err != nil {
		t.Fatalf("failed to re-read record: %v", err)
	}
	if record.ExitTime == nil {
		t.Fatal("record should be closed")
	}
	if record.ExitTime.Before(record.EntryTime) {
		t.Error("exit time must not precede entry time")
	}
	if record.ExitAccessID == nil || *record.ExitAccessID != "gate-1" {
		t.Errorf("exit access = %v, want gate-1", record.ExitAccessID)
	}

	var updated models.ParkingSpot
	if err := database.DB.First(&updated, spot.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if updated.IsOccupied {
		t.Error("spot should be free after exit")
	}
}

func TestProcessVehicleExitUnknownPlate(t *testing.T) {
	setupTestDB(t)

	result, err := ProcessVehicleExit("NOPE123", "gate-1")
	if err != nil {
		t.Fatalf("ProcessVehicleExit failed: %v", err)
	}
	if result.Success {
		t.Error("exit of a plate that never entered must not succeed")
	}
}

func TestSyncSpotOccupancy(t *testing.T) {
	setupTestDB(t)

	// Flag wedged on with no open record.
	stale := createSpot(t, "T1-01", models.SpotGeneral, true)
	// Flag wedged off despite an open record.
	missed := createSpot(t, "T1-02", models.SpotGeneral, false)
	missedID := missed.ID
	record := models.ParkingRecord{
		LicensePlate: "ABC123",
		SpotID:       &missedID,
		TowerID:      "T1",
		EntryType:    models.EntryManual,
		EntryTime:    time.Now(),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	if err := SyncSpotOccupancy(); err != nil {
		t.Fatalf("SyncSpotOccupancy failed: %v", err)
	}

	var s1, s2 models.ParkingSpot
	if err := database.DB.First(&s1, stale.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if err := database.DB.First(&s2, missed.ID).Error; err != nil {
		t.Fatalf("failed to re-read spot: %v", err)
	}
	if s1.IsOccupied {
		t.Error("spot without an open record should be freed")
	}
	if !s2.IsOccupied {
		t.Error("spot with an open record should be marked occupied")
	}
}
