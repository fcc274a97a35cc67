package experiments_test

import (
	"context"
	"testing"
	"time"

	"eduvista/site/internal/data/dbtest"
	experimentdata "eduvista/site/internal/data/experiments"
	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/experiments"
)

func setup(t *testing.T) *experiments.Service {
	t.Helper()

	db := dbtest.Open(t, &experimentdata.ExperimentRecord{}, &experimentdata.VariantRecord{})
	repo, err := experimentdata.NewRepository(db, nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	service, err := experiments.NewService(repo, nil, func() time.Time {
		return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service
}

func TestCreateValidatesVariants(t *testing.T) {
	t.Parallel()

	service := setup(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, experiments.ExperimentInput{Name: "hero", Variants: []string{"only"}}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for a single variant, got %v", err)
	}
	if _, err := service.Create(ctx, experiments.ExperimentInput{Name: "hero", Variants: []string{"a", "A"}}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for duplicate variants, got %v", err)
	}

	created, err := service.Create(ctx, experiments.ExperimentInput{Name: "hero", Variants: []string{"control", "bold"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ConfidenceThreshold != experiments.DefaultConfidenceThreshold || created.MinSampleSize != experiments.DefaultMinSampleSize {
		t.Fatalf("expected defaults, got %+v", created)
	}
	if len(created.Variants) != 2 || created.Variants[0].Name != "control" {
		t.Fatalf("unexpected variants %+v", created.Variants)
	}

	if _, err := service.Create(ctx, experiments.ExperimentInput{Name: "hero", Variants: []string{"x", "y"}}); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
}

func TestRecordAndComplete(t *testing.T) {
	t.Parallel()

	service := setup(t)
	ctx := context.Background()

	created, err := service.Create(ctx, experiments.ExperimentInput{Name: "pricing", Variants: []string{"control", "annual"}, MinSampleSize: 3})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := service.RecordImpression(ctx, created.ID, "control"); err != nil {
			t.Fatalf("RecordImpression returned error: %v", err)
		}
		if err := service.RecordImpression(ctx, created.ID, "annual"); err != nil {
			t.Fatalf("RecordImpression returned error: %v", err)
		}
	}
	if err := service.RecordConversion(ctx, created.ID, "annual"); err != nil {
		t.Fatalf("RecordConversion returned error: %v", err)
	}
	if err := service.RecordConversion(ctx, created.ID, "missing"); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown variant, got %v", err)
	}

	analysis, err := service.Analyze(ctx, created.ID)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if analysis.Variants[1].Impressions != 3 || analysis.Variants[1].Conversions != 1 {
		t.Fatalf("unexpected counters %+v", analysis.Variants[1])
	}
	if analysis.Winner != "" || analysis.Reason != experiments.ReasonNoSignificantDifference {
		t.Fatalf("expected no winner with tiny samples, got %+v", analysis)
	}

	if _, err := service.Complete(ctx, created.ID, ""); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict without a winner, got %v", err)
	}
	if _, err := service.Complete(ctx, created.ID, "nope"); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for unknown winner, got %v", err)
	}

	completed, err := service.Complete(ctx, created.ID, "annual")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completed.Status != experiments.StatusCompleted || completed.Winner != "annual" || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed experiment %+v", completed)
	}

	if err := service.RecordImpression(ctx, created.ID, "control"); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict recording on a completed experiment, got %v", err)
	}
	stored, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Winner != "annual" || stored.Status != experiments.StatusCompleted {
		t.Fatalf("expected completion to persist, got %+v", stored)
	}
}

func TestAssignIsSticky(t *testing.T) {
	t.Parallel()

	service := setup(t)
	ctx := context.Background()

	created, err := service.Create(ctx, experiments.ExperimentInput{Name: "cta", Variants: []string{"blue", "green", "orange"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := service.Assign(ctx, created.ID, "visitor-123")
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	second, err := service.Assign(ctx, created.ID, "visitor-123")
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if first.Name != second.Name {
		t.Fatalf("expected sticky assignment, got %q then %q", first.Name, second.Name)
	}

	stored, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	var total int64
	for _, variant := range stored.Variants {
		total += variant.Impressions
	}
	if total != 2 {
		t.Fatalf("expected two impressions, got %d", total)
	}

	if _, err := service.Assign(ctx, created.ID, " "); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid without visitor id, got %v", err)
	}
}

func TestDeleteRemovesVariants(t *testing.T) {
	t.Parallel()

	service := setup(t)
	ctx := context.Background()

	created, err := service.Create(ctx, experiments.ExperimentInput{Name: "gone", Variants: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := service.Get(ctx, created.ID); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := service.Delete(ctx, created.ID); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}
