package models

import "time"

const (
	MainSettingsID        = "main"
	DefaultHeroTitle      = "Free Fire LAN Tournament"
	DefaultHeroSubtitle   = "Uttarakhand & Delhi Edition"
	DefaultCountdownLabel = "Tournament starts in:"
)

// SiteSettings holds the editable copy of the home page. There is a single row with ID "main".
type SiteSettings struct {
	ID             string     `json:"id" gorm:"primaryKey;size:20"`
	HeroTitle      string     `json:"hero_title" gorm:"not null;size:200"`
	HeroSubtitle   string     `json:"hero_subtitle" gorm:"size:300"`
	EventDate      *time.Time `json:"event_date"`
	CountdownLabel string     `json:"countdown_label" gorm:"size:120"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (SiteSettings) TableName() string {
	return "site_settings"
}

// DefaultSiteSettings is what the home page shows before an admin edits anything
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:             MainSettingsID,
		HeroTitle:      DefaultHeroTitle,
		HeroSubtitle:   DefaultHeroSubtitle,
		CountdownLabel: DefaultCountdownLabel,
	}
}
