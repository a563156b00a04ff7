package services

import (
	"testing"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
)

func TestMonthsInRange(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		days int
		want float64
	}{
		{"same day", 0, 1.0 / 30.0},
		{"half month", 15, 0.5},
		{"february", 28, 1.0},
		{"thirty days", 30, 1.0},
		{"long month boundary", 32, 1.0},
		{"two months", 60, 2.0},
	}
	for _, tc := range cases {
		end := base.AddDate(0, 0, tc.days)
		if tc.days == 0 {
			end = base.Add(23*time.Hour + 59*time.Minute)
		}
		got := monthsInRange(base, end)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: monthsInRange = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGetReportData(t *testing.T) {
	setupTestDB(t)

	reserved := createSpot(t, "T1-01", models.SpotReserved, false)
	fee := 50000
	if err := database.DB.Model(reserved).Update("monthly_fee", fee).Error; err != nil {
		t.Fatalf("failed to set monthly fee: %v", err)
	}
	reservedID := reserved.ID
	createStaff(t, "Juan Pérez", "SUB001", &reservedID)

	general := createSpot(t, "T1-02", models.SpotGeneral, false)

	now := time.Now()
	generalID := general.ID
	visitExit := now.AddDate(0, 0, -10).Add(90 * time.Minute)
	visitCost := 130
	visit := models.ParkingRecord{
		LicensePlate: "VIS001",
		SpotID:       &generalID,
		TowerID:      "T1",
		EntryType:    models.EntryManual,
		EntryTime:    now.AddDate(0, 0, -10),
		ExitTime:     &visitExit,
		Cost:         &visitCost,
	}
	if err := database.DB.Create(&visit).Error; err != nil {
		t.Fatalf("failed to create visit record: %v", err)
	}

	subscriber := models.ParkingRecord{
		LicensePlate: "SUB001",
		SpotID:       &reservedID,
		TowerID:      "T1",
		EntryType:    models.EntryAutomatic,
		EntryTime:    now.AddDate(0, 0, -5),
	}
	if err := database.DB.Create(&subscriber).Error; err != nil {
		t.Fatalf("failed to create subscriber record: %v", err)
	}

	// Out of range, must not be counted.
	old := models.ParkingRecord{
		LicensePlate: "OLD001",
		TowerID:      "T1",
		EntryType:    models.EntryManual,
		EntryTime:    now.AddDate(0, 0, -90),
	}
	if err := database.DB.Create(&old).Error; err != nil {
		t.Fatalf("failed to create old record: %v", err)
	}

	data, err := GetReportData(now.AddDate(0, 0, -30), now)
	if err != nil {
		t.Fatalf("GetReportData failed: %v", err)
	}

	if data.Summary.TotalEntries != 2 {
		t.Errorf("total entries = %d, want 2", data.Summary.TotalEntries)
	}
	if data.Summary.ManualEntries != 1 || data.Summary.SubscriberEntries != 1 {
		t.Errorf("entries = %d manual / %d subscriber, want 1 / 1",
			data.Summary.ManualEntries, data.Summary.SubscriberEntries)
	}
	if data.Summary.TimeRevenue != 130 {
		t.Errorf("time revenue = %d, want 130", data.Summary.TimeRevenue)
	}
	// One assigned subscriber at 50000/month over a 30 day range.
	if data.Summary.SubscriptionRevenue != 50000 {
		t.Errorf("subscription revenue = %d, want 50000", data.Summary.SubscriptionRevenue)
	}
	if data.Summary.TotalRevenue != 50130 {
		t.Errorf("total revenue = %d, want 50130", data.Summary.TotalRevenue)
	}

	if len(data.VisitsList) != 1 {
		t.Fatalf("visits list has %d entries, want 1", len(data.VisitsList))
	}
	if data.VisitsList[0].SpotCode != "T1-02" {
		t.Errorf("visit spot = %s, want T1-02", data.VisitsList[0].SpotCode)
	}

	if len(data.SubscribersList) != 1 {
		t.Fatalf("subscribers list has %d entries, want 1", len(data.SubscribersList))
	}
	sub := data.SubscribersList[0]
	if sub.SpotCode != "T1-01" || sub.Name == nil || *sub.Name != "Juan Pérez" {
		t.Errorf("subscriber entry = %+v, want Juan Pérez on T1-01", sub)
	}

	if len(data.HourlyTraffic) != 24 {
		t.Fatalf("hourly traffic has %d buckets, want 24", len(data.HourlyTraffic))
	}
	total := 0
	for _, h := range data.HourlyTraffic {
		total += h.Count
	}
	if total != 2 {
		t.Errorf("hourly traffic sums to %d, want 2", total)
	}

	if len(data.DailyRevenue) != 2 {
		t.Errorf("daily revenue has %d days, want 2", len(data.DailyRevenue))
	}
}

func TestGetReportDataEmptyRange(t *testing.T) {
	setupTestDB(t)

	data, err := GetReportData(time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("GetReportData failed: %v", err)
	}
	if data.Summary.TotalRevenue != 0 || data.Summary.TotalEntries != 0 {
		t.Errorf("summary = %+v, want all zero", data.Summary)
	}
	if data.Summary.AvgStaySeconds != 0 || data.Summary.AvgRevenuePerEntry != 0 {
		t.Errorf("averages should be zero on an empty range, got %+v", data.Summary)
	}
}
