package experiments

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eduvista/site/internal/data/crud"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/experiments"
)

// Repository persists experiments using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed experiment repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

func preloadVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// ListExperiments returns experiments newest first with their variants.
func (r *Repository) ListExperiments(ctx context.Context, status domain.Status) ([]domain.Experiment, error) {
	query := r.db.WithContext(ctx).Preload("Variants", preloadVariants).Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []ExperimentRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing experiments")
		return nil, eris.Wrap(err, "listing experiments")
	}

	items := make([]domain.Experiment, 0, len(records))
	for i := range records {
		items = append(items, toDomainExperiment(&records[i]))
	}
	return items, nil
}

// GetExperiment returns the experiment with id or nil.
func (r *Repository) GetExperiment(ctx context.Context, id uint) (*domain.Experiment, error) {
	record, err := crud.Find[ExperimentRecord](ctx, r.db.Preload("Variants", preloadVariants), id)
	if err != nil {
		r.logError(logrus.Fields{"experiment_id": id}, err, "fetching experiment")
		return nil, eris.Wrapf(err, "fetching experiment %d", id)
	}
	if record == nil {
		return nil, nil
	}
	experiment := toDomainExperiment(record)
	return &experiment, nil
}

// CreateExperiment inserts the experiment and its variants in one statement batch.
func (r *Repository) CreateExperiment(ctx context.Context, experiment *domain.Experiment) error {
	record := fromDomainExperiment(experiment)
	for _, variant := range experiment.Variants {
		record.Variants = append(record.Variants, VariantRecord{
			Name:        variant.Name,
			Position:    variant.Position,
			Impressions: variant.Impressions,
			Conversions: variant.Conversions,
		})
	}

	if err := crud.Insert(ctx, r.db, record, "experiment"); err != nil {
		r.logError(logrus.Fields{"name": experiment.Name}, err, "creating experiment")
		return err
	}
	*experiment = toDomainExperiment(record)
	return nil
}

// UpdateExperiment persists the experiment columns. Variants are untouched.
func (r *Repository) UpdateExperiment(ctx context.Context, experiment *domain.Experiment) error {
	record := fromDomainExperiment(experiment)
	if err := crud.Save(ctx, r.db.Omit(clause.Associations), record, "experiment"); err != nil {
		r.logError(logrus.Fields{"experiment_id": experiment.ID}, err, "updating experiment")
		return err
	}
	experiment.UpdatedAt = record.UpdatedAt.UTC()
	return nil
}

// DeleteExperiment removes the experiment and its variants.
func (r *Repository) DeleteExperiment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("experiment_id = ?", id).Delete(&VariantRecord{}).Error; err != nil {
			r.logError(logrus.Fields{"experiment_id": id}, err, "deleting experiment variants")
			return eris.Wrapf(err, "deleting variants of experiment %d", id)
		}
		return crud.Remove[ExperimentRecord](ctx, tx, id, "experiment")
	})
}

// IncrementImpressions adds one impression to the variant.
func (r *Repository) IncrementImpressions(ctx context.Context, experimentID uint, variant string) (bool, error) {
	return r.increment(ctx, experimentID, variant, "impressions")
}

// IncrementConversions adds one conversion to the variant.
func (r *Repository) IncrementConversions(ctx context.Context, experimentID uint, variant string) (bool, error) {
	return r.increment(ctx, experimentID, variant, "conversions")
}

func (r *Repository) increment(ctx context.Context, experimentID uint, variant, column string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&VariantRecord{}).
		Where("experiment_id = ? AND name = ?", experimentID, variant).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		r.logError(logrus.Fields{"experiment_id": experimentID, "variant": variant}, result.Error, "incrementing "+column)
		return false, eris.Wrapf(result.Error, "incrementing %s", column)
	}
	return result.RowsAffected == 1, nil
}

// Complete marks a running experiment completed with winner.
func (r *Repository) Complete(ctx context.Context, id uint, winner string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&ExperimentRecord{}).
		Where("id = ? AND status = ?", id, string(domain.StatusRunning)).
		Updates(map[string]any{
			"status":       string(domain.StatusCompleted),
			"winner":       winner,
			"completed_at": at.UTC(),
		})
	if result.Error != nil {
		r.logError(logrus.Fields{"experiment_id": id}, result.Error, "completing experiment")
		return eris.Wrapf(result.Error, "completing experiment %d", id)
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("experiment %d is not running", id)
	}
	return nil
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func toDomainExperiment(record *ExperimentRecord) domain.Experiment {
	variants := make([]domain.Variant, 0, len(record.Variants))
	for _, variant := range record.Variants {
		variants = append(variants, domain.Variant{
			ID:          variant.ID,
			Name:        variant.Name,
			Position:    variant.Position,
			Impressions: variant.Impressions,
			Conversions: variant.Conversions,
		})
	}

	var completedAt *time.Time
	if record.CompletedAt != nil {
		value := record.CompletedAt.UTC()
		completedAt = &value
	}

	return domain.Experiment{
		ID:                  record.ID,
		Name:                record.Name,
		Description:         record.Description,
		Status:              domain.Status(record.Status),
		ConfidenceThreshold: record.ConfidenceThreshold,
		MinSampleSize:       record.MinSampleSize,
		Winner:              record.Winner,
		CompletedAt:         completedAt,
		Variants:            variants,
		CreatedAt:           record.CreatedAt.UTC(),
		UpdatedAt:           record.UpdatedAt.UTC(),
	}
}

func fromDomainExperiment(experiment *domain.Experiment) *ExperimentRecord {
	return &ExperimentRecord{
		ID:                  experiment.ID,
		Name:                experiment.Name,
		Description:         experiment.Description,
		Status:              string(experiment.Status),
		ConfidenceThreshold: experiment.ConfidenceThreshold,
		MinSampleSize:       experiment.MinSampleSize,
		Winner:              experiment.Winner,
		CompletedAt:         experiment.CompletedAt,
		CreatedAt:           experiment.CreatedAt,
		UpdatedAt:           experiment.UpdatedAt,
	}
}
