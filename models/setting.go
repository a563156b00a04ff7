package models

// Setting keys used by the typed accessors in services/settings.go.
const (
	SettingPricePerMinute  = "price_per_minute"
	SettingChargingEnabled = "charging_enabled"
	SettingCompanyName     = "company_name"
	SettingSystemName      = "system_name"
	SettingDescription     = "description"
	SettingLogoURL         = "logo_url"
	SettingInstallDate     = "install_date"
)

// Setting is one persisted key/value configuration row.
type Setting struct {
	ID    int    `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	Key   string `json:"key" gorm:"type:varchar(50);uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:varchar(500);not null"`
}

func (Setting) TableName() string {
	return "settings"
}
