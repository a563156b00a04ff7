package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
)

func TestPricePerMinuteDefaultAndUpdate(t *testing.T) {
	setupTestDB(t)

	price, err := GetPricePerMinute()
	if err != nil {
		t.Fatalf("GetPricePerMinute failed: %v", err)
	}
	if price != DefaultPricePerMinute {
		t.Errorf("default price = %d, want %d", price, DefaultPricePerMinute)
	}

	if err := SetPricePerMinute(40); err != nil {
		t.Fatalf("SetPricePerMinute failed: %v", err)
	}
	price, err = GetPricePerMinute()
	if err != nil {
		t.Fatalf("GetPricePerMinute failed: %v", err)
	}
	if price != 40 {
		t.Errorf("price = %d, want 40", price)
	}

	if err := SetPricePerMinute(-5); err == nil {
		t.Error("negative price should be rejected")
	}
}

func TestChargingEnabledDefaultsTrue(t *testing.T) {
	setupTestDB(t)

	enabled, err := IsChargingEnabled()
	if err != nil {
		t.Fatalf("IsChargingEnabled failed: %v", err)
	}
	if !enabled {
		t.Error("charging should default to enabled")
	}

	if err := SetChargingEnabled(false); err != nil {
		t.Fatalf("SetChargingEnabled failed: %v", err)
	}
	enabled, err = IsChargingEnabled()
	if err != nil {
		t.Fatalf("IsChargingEnabled failed: %v", err)
	}
	if enabled {
		t.Error("charging should be disabled after update")
	}
}

func TestBranding(t *testing.T) {
	setupTestDB(t)

	branding, err := GetBranding()
	if err != nil {
		t.Fatalf("GetBranding failed: %v", err)
	}
	if branding.CompanyName != "Mi Estacionamiento" {
		t.Errorf("default company name = %s", branding.CompanyName)
	}

	if err := UpdateBranding(Branding{CompanyName: "Edificio Central", LogoURL: "/logo.png"}); err != nil {
		t.Fatalf("UpdateBranding failed: %v", err)
	}
	branding, err = GetBranding()
	if err != nil {
		t.Fatalf("GetBranding failed: %v", err)
	}
	if branding.CompanyName != "Edificio Central" {
		t.Errorf("company name = %s, want Edificio Central", branding.CompanyName)
	}
	if branding.LogoURL != "/logo.png" {
		t.Errorf("logo url = %s, want /logo.png", branding.LogoURL)
	}
	// Untouched fields keep their defaults.
	if branding.SystemName != "Panel de Control de Estacionamientos" {
		t.Errorf("system name = %s, should keep its default", branding.SystemName)
	}

	if err := UpdateBranding(Branding{LogoURL: "javascript:alert(1)"}); err == nil {
		t.Error("non-URL logo value should be rejected")
	}
}

func TestTrialStatus(t *testing.T) {
	setupTestDB(t)

	// First call records the install date and starts the full window.
	status, err := GetTrialStatus()
	if err != nil {
		t.Fatalf("GetTrialStatus failed: %v", err)
	}
	if status.Expired {
		t.Error("a fresh install must not be expired")
	}
	if status.DaysLeft != TrialDays {
		t.Errorf("days left = %d, want %d", status.DaysLeft, TrialDays)
	}

	// Backdate the install past the window.
	old := time.Now().AddDate(0, 0, -(TrialDays + 5)).Unix()
	if err := setSetting(models.SettingInstallDate, strconv.FormatInt(old, 10)); err != nil {
		t.Fatalf("failed to backdate install: %v", err)
	}
	status, err = GetTrialStatus()
	if err != nil {
		t.Fatalf("GetTrialStatus failed: %v", err)
	}
	if !status.Expired {
		t.Error("trial should be expired after the window")
	}
	if status.DaysLeft != 0 {
		t.Errorf("days left = %d, want 0", status.DaysLeft)
	}
}
