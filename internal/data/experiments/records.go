package experiments

import "time"

// ExperimentRecord is an A/B test row.
type ExperimentRecord struct {
	ID                  uint    `gorm:"primaryKey"`
	Name                string  `gorm:"size:120;uniqueIndex:idx_experiments_name;not null"`
	Description         string  `gorm:"size:500"`
	Status              string  `gorm:"size:16;not null;index"`
	ConfidenceThreshold float64 `gorm:"not null"`
	MinSampleSize       int     `gorm:"not null"`
	Winner              string  `gorm:"size:64"`
	CompletedAt         *time.Time
	Variants            []VariantRecord `gorm:"foreignKey:ExperimentID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName defines the table name for experiments.
func (ExperimentRecord) TableName() string {
	return "experiments"
}

// VariantRecord is one experiment arm with its counters.
type VariantRecord struct {
	ID           uint   `gorm:"primaryKey"`
	ExperimentID uint   `gorm:"not null;uniqueIndex:idx_experiment_variants_name"`
	Name         string `gorm:"size:64;not null;uniqueIndex:idx_experiment_variants_name"`
	Position     int    `gorm:"not null;default:0"`
	Impressions  int64  `gorm:"not null;default:0"`
	Conversions  int64  `gorm:"not null;default:0"`
}

// TableName defines the table name for experiment variants.
func (VariantRecord) TableName() string {
	return "experiment_variants"
}
