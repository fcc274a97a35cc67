package automation

import "time"

// RuleRecord is an automation rule row. The trigger lives in trigger_event
// because TRIGGER is an SQL keyword.
type RuleRecord struct {
	ID        uint              `gorm:"primaryKey"`
	Name      string            `gorm:"size:120;not null"`
	Trigger   string            `gorm:"column:trigger_event;size:64;not null;index:idx_automation_rules_trigger_enabled"`
	Action    string            `gorm:"size:64;not null"`
	Config    map[string]string `gorm:"serializer:json;type:text"`
	Enabled   bool              `gorm:"not null;index:idx_automation_rules_trigger_enabled"`
	LastRunAt *time.Time
	RunCount  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName defines the table name for automation rules.
func (RuleRecord) TableName() string {
	return "automation_rules"
}
