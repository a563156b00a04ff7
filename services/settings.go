package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"gorm.io/gorm"
)

// Defaults applied when a settings row is missing.
const (
	DefaultPricePerMinute = 25 // CLP per minute
	TrialDays             = 15
)

// Branding is the typed view over the branding settings rows.
type Branding struct {
	CompanyName string `json:"company_name"`
	SystemName  string `json:"system_name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

// TrialStatus reports the remaining days of the install trial window.
type TrialStatus struct {
	Expired  bool `json:"expired"`
	DaysLeft int  `json:"days_left"`
}

func getSetting(key string) (string, bool, error) {
	var setting models.Setting
	err := database.DB.Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, true, nil
}

func setSetting(key, value string) error {
	var existing models.Setting
	err := database.DB.Where("`key` = ?", key).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		if err := database.DB.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
			return fmt.Errorf("failed to create setting %s: %w", key, err)
		}
		return nil
	}
	if err := database.DB.Model(&existing).Update("value", value).Error; err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}

// GetPricePerMinute returns the configured visitor price per minute.
func GetPricePerMinute() (int, error) {
	value, found, err := getSetting(models.SettingPricePerMinute)
	if err != nil {
		return 0, err
	}
	if !found {
		return DefaultPricePerMinute, nil
	}
	price, err := strconv.Atoi(value)
	if err != nil {
		return DefaultPricePerMinute, nil
	}
	return price, nil
}

func SetPricePerMinute(price int) error {
	if price < 0 {
		return fmt.Errorf("price_per_minute must not be negative: %d", price)
	}
	return setSetting(models.SettingPricePerMinute, strconv.Itoa(price))
}

// IsChargingEnabled reports whether visitor stays are billed. Defaults to
// enabled when the row is absent.
func IsChargingEnabled() (bool, error) {
	value, found, err := getSetting(models.SettingChargingEnabled)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return value == "true", nil
}

func SetChargingEnabled(enabled bool) error {
	return setSetting(models.SettingChargingEnabled, strconv.FormatBool(enabled))
}

// validLogoURL only accepts relative paths, http(s) URLs or image data URIs.
func validLogoURL(value string) bool {
	return strings.HasPrefix(value, "/") ||
		strings.HasPrefix(value, "http") ||
		strings.HasPrefix(value, "data:image")
}

// GetBranding returns the branding settings with explicit defaults.
func GetBranding() (*Branding, error) {
	branding := &Branding{
		CompanyName: "Mi Estacionamiento",
		SystemName:  "Panel de Control de Estacionamientos",
		Description: "Sistema de Gestión de Acceso Vehicular",
		LogoURL:     "/at-sit-logo.png",
	}

	var settings []models.Setting
	if err := database.DB.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	for _, s := range settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case models.SettingCompanyName:
			branding.CompanyName = s.Value
		case models.SettingSystemName:
			branding.SystemName = s.Value
		case models.SettingDescription:
			branding.Description = s.Value
		case models.SettingLogoURL:
			if validLogoURL(s.Value) {
				branding.LogoURL = s.Value
			}
		}
	}
	return branding, nil
}

// UpdateBranding persists the non-empty fields of the given branding.
func UpdateBranding(branding Branding) error {
	entries := map[string]string{
		models.SettingCompanyName: branding.CompanyName,
		models.SettingSystemName:  branding.SystemName,
		models.SettingDescription: branding.Description,
		models.SettingLogoURL:     branding.LogoURL,
	}
	for key, value := range entries {
		if value == "" {
			continue
		}
		if key == models.SettingLogoURL && !validLogoURL(value) {
			return fmt.Errorf("invalid logo_url: must be a relative path, http URL or data URI")
		}
		if err := setSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetTrialStatus returns the remaining trial days, recording the install
// timestamp on first call.
func GetTrialStatus() (*TrialStatus, error) {
	now := time.Now().Unix()

	value, found, err := getSetting(models.SettingInstallDate)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := setSetting(models.SettingInstallDate, strconv.FormatInt(now, 10)); err != nil {
			return nil, err
		}
		return &TrialStatus{Expired: false, DaysLeft: TrialDays}, nil
	}

	installDate, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid install_date setting %q: %w", value, err)
	}

	diffDays := int((now - installDate) / (24 * 3600))
	daysLeft := TrialDays - diffDays
	if daysLeft < 0 {
		daysLeft = 0
	}
	return &TrialStatus{Expired: diffDays >= TrialDays, DaysLeft: daysLeft}, nil
}

// IsOperatorOnly reports whether the instance runs in operator-only mode.
func IsOperatorOnly() bool {
	return os.Getenv("APP_MODE") == "OPERATOR"
}
