package experiments

import "time"

// Status is the lifecycle state of an experiment.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusRunning || s == StatusCompleted
}

// Reasons reported when Analyze picks no winner.
const (
	ReasonInsufficientData        = "insufficient_data"
	ReasonNoSignificantDifference = "no_significant_difference"
)

const (
	DefaultConfidenceThreshold = 0.95
	DefaultMinSampleSize       = 100
)

// Experiment is an A/B test. Variants[0] is the control.
type Experiment struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description,omitempty"`
	Status              Status     `json:"status"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
	MinSampleSize       int        `json:"min_sample_size"`
	Winner              string     `json:"winner,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	Variants            []Variant  `json:"variants"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Variant is one arm of an experiment.
type Variant struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Impressions int64  `json:"impressions"`
	Conversions int64  `json:"conversions"`
}

// ExperimentInput creates an experiment. Zero thresholds take the defaults.
type ExperimentInput struct {
	Name                string   `json:"name" validate:"required,max=120"`
	Description         string   `json:"description,omitempty" validate:"max=500"`
	Variants            []string `json:"variants" validate:"required,min=2,max=10,dive,required,max=64"`
	ConfidenceThreshold float64  `json:"confidence_threshold,omitempty" validate:"gte=0,lt=1"`
	MinSampleSize       int      `json:"min_sample_size,omitempty" validate:"gte=0"`
}

// ExperimentPatch edits the descriptive fields of an experiment.
type ExperimentPatch struct {
	Name                *string  `json:"name,omitempty"`
	Description         *string  `json:"description,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	MinSampleSize       *int     `json:"min_sample_size,omitempty"`
}

// VariantResult is the analysis of one variant against the control.
type VariantResult struct {
	Name           string  `json:"name"`
	Control        bool    `json:"control"`
	Impressions    int64   `json:"impressions"`
	Conversions    int64   `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	// Lift is the relative change in conversion rate against the control.
	Lift       float64 `json:"lift"`
	ZScore     float64 `json:"z_score"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	ExperimentID        uint            `json:"experiment_id"`
	ConfidenceThreshold float64         `json:"confidence_threshold"`
	MinSampleSize       int             `json:"min_sample_size"`
	Variants            []VariantResult `json:"variants"`
	Winner              string          `json:"winner,omitempty"`
	Reason              string          `json:"reason,omitempty"`
}
