package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DaySchedule is one weekday's opening window, HH:MM 24-hour strings.
// Close earlier than open means an overnight window (e.g. 18:00-02:00).
type DaySchedule struct {
	IsOpen bool   `json:"is_open"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

// BusinessHoursConfig is the merchant's weekly schedule plus timezone.
// Days are keyed by lowercase weekday name ("monday" .. "sunday"); a
// missing day counts as closed. A nil config means always open.
type BusinessHoursConfig struct {
	Timezone string                 `json:"timezone"`
	Days     map[string]DaySchedule `json:"days"`
}

// Value implements driver.Valuer for jsonb storage
func (c *BusinessHoursConfig) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for jsonb storage
func (c *BusinessHoursConfig) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// Merchant is the read-only shop configuration consumed by the pipeline:
// personality and greeting feed the prompts, the channel token binds the
// inbound webhook, the hours config feeds the business-hours oracle.
type Merchant struct {
	ID                  string               `gorm:"primaryKey" json:"id"`
	Name                string               `gorm:"not null" json:"name"`
	ChannelToken        string               `gorm:"uniqueIndex;not null" json:"channel_token"`
	BotName             string               `gorm:"default:'Assistant'" json:"bot_name"`
	Personality         string               `gorm:"type:text" json:"personality"`
	BusinessDescription string               `gorm:"type:text" json:"business_description"`
	CustomGreeting      string               `gorm:"type:text" json:"custom_greeting"`
	NotificationEmail   string               `json:"notification_email"`
	Timezone            string               `gorm:"default:'UTC'" json:"timezone"`
	BusinessHours       *BusinessHoursConfig `gorm:"type:jsonb" json:"business_hours"`
	BotActive           bool                 `gorm:"default:true" json:"bot_active"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// TableName override for the merchants table
func (Merchant) TableName() string {
	return "merchants"
}
