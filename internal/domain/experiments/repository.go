package experiments

import (
	"context"
	"time"
)

// Repository persists experiments and their variants. Getters return nil,
// nil when the experiment does not exist.
type Repository interface {
	ListExperiments(ctx context.Context, status Status) ([]Experiment, error)
	GetExperiment(ctx context.Context, id uint) (*Experiment, error)
	// CreateExperiment stores the experiment and its variants together.
	CreateExperiment(ctx context.Context, experiment *Experiment) error
	UpdateExperiment(ctx context.Context, experiment *Experiment) error
	DeleteExperiment(ctx context.Context, id uint) error
	// IncrementImpressions and IncrementConversions report false when the
	// variant does not belong to the experiment.
	IncrementImpressions(ctx context.Context, experimentID uint, variant string) (bool, error)
	IncrementConversions(ctx context.Context, experimentID uint, variant string) (bool, error)
	Complete(ctx context.Context, id uint, winner string, at time.Time) error
}
