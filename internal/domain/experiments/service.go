package experiments

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// Service runs A/B tests.
type Service struct {
	repo     Repository
	reporter *log.Reporter
	now      func() time.Time
}

// NewService constructs a Service. now may be nil.
func NewService(repo Repository, reporter *log.Reporter, now func() time.Time) (*Service, error) {
	if repo == nil {
		return nil, eris.New("experiment repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, reporter: reporter, now: now}, nil
}

// List returns experiments, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]Experiment, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("status %q is invalid", status)
	}
	items, err := s.repo.ListExperiments(ctx, status)
	if err != nil {
		s.reporter.Error(nil, err, "listing experiments")
		return nil, eris.Wrap(err, "listing experiments")
	}
	return items, nil
}

// Get returns the experiment with id and its variants.
func (s *Service) Get(ctx context.Context, id uint) (*Experiment, error) {
	experiment, err := s.repo.GetExperiment(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"experiment_id": id}, err, "fetching experiment")
		return nil, eris.Wrapf(err, "fetching experiment %d", id)
	}
	if experiment == nil {
		return nil, apperr.NotFound("experiment %d not found", id)
	}
	return experiment, nil
}

// Create validates input and starts a running experiment. The first variant
// is the control.
func (s *Service) Create(ctx context.Context, input ExperimentInput) (*Experiment, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	for i := range input.Variants {
		input.Variants[i] = strings.TrimSpace(input.Variants[i])
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(input.Variants))
	variants := make([]Variant, 0, len(input.Variants))
	for i, name := range input.Variants {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, apperr.Invalid("variant %q is listed twice", name)
		}
		seen[key] = struct{}{}
		variants = append(variants, Variant{Name: name, Position: i})
	}

	experiment := &Experiment{
		Name:                input.Name,
		Description:         input.Description,
		Status:              StatusRunning,
		ConfidenceThreshold: input.ConfidenceThreshold,
		MinSampleSize:       input.MinSampleSize,
		Variants:            variants,
	}
	if experiment.ConfidenceThreshold == 0 {
		experiment.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if experiment.MinSampleSize == 0 {
		experiment.MinSampleSize = DefaultMinSampleSize
	}

	if err := s.repo.CreateExperiment(ctx, experiment); err != nil {
		return nil, err
	}
	return experiment, nil
}

// Update edits a running experiment.
func (s *Service) Update(ctx context.Context, id uint, patch ExperimentPatch) (*Experiment, error) {
	experiment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if experiment.Status == StatusCompleted {
		return nil, apperr.Conflict("experiment %d is completed", id)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Invalid("name is required")
		}
		experiment.Name = name
	}
	if patch.Description != nil {
		experiment.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ConfidenceThreshold != nil {
		if *patch.ConfidenceThreshold <= 0 || *patch.ConfidenceThreshold >= 1 {
			return nil, apperr.Invalid("confidence_threshold must be between 0 and 1")
		}
		experiment.ConfidenceThreshold = *patch.ConfidenceThreshold
	}
	if patch.MinSampleSize != nil {
		if *patch.MinSampleSize <= 0 {
			return nil, apperr.Invalid("min_sample_size must be positive")
		}
		experiment.MinSampleSize = *patch.MinSampleSize
	}

	if err := s.repo.UpdateExperiment(ctx, experiment); err != nil {
		return nil, err
	}
	return experiment, nil
}

// Delete removes an experiment and its variants.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.DeleteExperiment(ctx, id)
}

// Assign picks a variant for visitorID. The same visitor always lands in the
// same variant; the assignment counts as an impression.
func (s *Service) Assign(ctx context.Context, id uint, visitorID string) (*Variant, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, apperr.Invalid("visitor_id is required")
	}

	experiment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if experiment.Status != StatusRunning {
		return nil, apperr.Conflict("experiment %d is not running", id)
	}
	if len(experiment.Variants) == 0 {
		return nil, apperr.Conflict("experiment %d has no variants", id)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(experiment.Name + ":" + visitorID))
	variant := experiment.Variants[int(h.Sum32()%uint32(len(experiment.Variants)))]

	if err := s.record(ctx, experiment, variant.Name, s.repo.IncrementImpressions, "impression"); err != nil {
		return nil, err
	}
	variant.Impressions++
	return &variant, nil
}

// RecordImpression counts a view of variant.
func (s *Service) RecordImpression(ctx context.Context, id uint, variant string) error {
	experiment, err := s.running(ctx, id)
	if err != nil {
		return err
	}
	return s.record(ctx, experiment, variant, s.repo.IncrementImpressions, "impression")
}

// RecordConversion counts a conversion for variant.
func (s *Service) RecordConversion(ctx context.Context, id uint, variant string) error {
	experiment, err := s.running(ctx, id)
	if err != nil {
		return err
	}
	return s.record(ctx, experiment, variant, s.repo.IncrementConversions, "conversion")
}

func (s *Service) running(ctx context.Context, id uint) (*Experiment, error) {
	experiment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if experiment.Status != StatusRunning {
		return nil, apperr.Conflict("experiment %d is not running", id)
	}
	return experiment, nil
}

func (s *Service) record(ctx context.Context, experiment *Experiment, variant string, increment func(context.Context, uint, string) (bool, error), what string) error {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return apperr.Invalid("variant is required")
	}

	ok, err := increment(ctx, experiment.ID, variant)
	if err != nil {
		s.reporter.Error(logrus.Fields{"experiment_id": experiment.ID, "variant": variant}, err, "recording "+what)
		return eris.Wrapf(err, "recording %s", what)
	}
	if !ok {
		return apperr.NotFound("variant %q not found in experiment %d", variant, experiment.ID)
	}
	return nil
}

// Analyze returns the current statistics and winner, if any.
func (s *Service) Analyze(ctx context.Context, id uint) (*Analysis, error) {
	experiment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	analysis := Analyze(*experiment)
	return &analysis, nil
}

// Complete stops the experiment and stores its winner. An explicit winner
// overrides the analysis; otherwise the analysis must have found one.
func (s *Service) Complete(ctx context.Context, id uint, winner string) (*Experiment, error) {
	experiment, err := s.running(ctx, id)
	if err != nil {
		return nil, err
	}

	winner = strings.TrimSpace(winner)
	if winner == "" {
		analysis := Analyze(*experiment)
		if analysis.Winner == "" {
			return nil, apperr.Conflict("experiment %d has no winner yet (%s)", id, analysis.Reason)
		}
		winner = analysis.Winner
	} else if !hasVariant(experiment, winner) {
		return nil, apperr.Invalid("variant %q not found in experiment %d", winner, id)
	}

	at := s.now().UTC()
	if err := s.repo.Complete(ctx, id, winner, at); err != nil {
		s.reporter.Error(logrus.Fields{"experiment_id": id}, err, "completing experiment")
		return nil, err
	}
	experiment.Status = StatusCompleted
	experiment.Winner = winner
	experiment.CompletedAt = &at
	return experiment, nil
}

func hasVariant(experiment *Experiment, name string) bool {
	for _, variant := range experiment.Variants {
		if variant.Name == name {
			return true
		}
	}
	return false
}
