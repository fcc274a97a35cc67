package automation

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/events"
)

// Repository persists automation rules using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed automation repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListRules returns rules ordered by id.
func (r *Repository) ListRules(ctx context.Context, trigger events.Trigger) ([]domain.Rule, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if trigger != "" {
		query = query.Where("trigger_event = ?", string(trigger))
	}

	var records []RuleRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(logrus.Fields{"trigger": trigger}, err, "listing automation rules")
		return nil, eris.Wrap(err, "listing automation rules")
	}
	return toDomainRules(records), nil
}

// EnabledRules returns the enabled rules for trigger ordered by id.
func (r *Repository) EnabledRules(ctx context.Context, trigger events.Trigger) ([]domain.Rule, error) {
	var records []RuleRecord
	err := r.db.WithContext(ctx).
		Where("trigger_event = ? AND enabled = ?", string(trigger), true).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		r.logError(logrus.Fields{"trigger": trigger}, err, "loading enabled automation rules")
		return nil, eris.Wrap(err, "loading enabled automation rules")
	}
	return toDomainRules(records), nil
}

// GetRule returns the rule with id or nil.
func (r *Repository) GetRule(ctx context.Context, id uint) (*domain.Rule, error) {
	record, err := crud.Find[RuleRecord](ctx, r.db, id)
	if err != nil {
		r.logError(logrus.Fields{"rule_id": id}, err, "fetching automation rule")
		return nil, eris.Wrapf(err, "fetching automation rule %d", id)
	}
	if record == nil {
		return nil, nil
	}
	rule := toDomainRule(record)
	return &rule, nil
}

// CreateRule stores a new rule.
func (r *Repository) CreateRule(ctx context.Context, rule *domain.Rule) error {
	record := fromDomainRule(rule)
	if err := crud.Insert(ctx, r.db, record, "automation rule"); err != nil {
		r.logError(nil, err, "creating automation rule")
		return err
	}
	*rule = toDomainRule(record)
	return nil
}

// UpdateRule persists every column of rule.
func (r *Repository) UpdateRule(ctx context.Context, rule *domain.Rule) error {
	record := fromDomainRule(rule)
	if err := crud.Save(ctx, r.db, record, "automation rule"); err != nil {
		r.logError(logrus.Fields{"rule_id": rule.ID}, err, "updating automation rule")
		return err
	}
	rule.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteRule removes a rule.
func (r *Repository) DeleteRule(ctx context.Context, id uint) error {
	return crud.Remove[RuleRecord](ctx, r.db, id, "automation rule")
}

// RecordRun increments run_count in SQL so concurrent dispatches do not lose updates.
func (r *Repository) RecordRun(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&RuleRecord{}).Where("id = ?", id).Updates(map[string]any{
		"last_run_at": at.UTC(),
		"run_count":   gorm.Expr("run_count + ?", 1),
	})
	if result.Error != nil {
		r.logError(logrus.Fields{"rule_id": id}, result.Error, "recording automation run")
		return eris.Wrapf(result.Error, "recording run for automation rule %d", id)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("automation rule %d not found", id)
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

func toDomainRules(records []RuleRecord) []domain.Rule {
	rules := make([]domain.Rule, 0, len(records))
	for i := range records {
		rules = append(rules, toDomainRule(&records[i]))
	}
	return rules
}

func toDomainRule(record *RuleRecord) domain.Rule {
	config := record.Config
	if config == nil {
		config = map[string]string{}
	}

	var lastRun *time.Time
	if record.LastRunAt != nil {
		value := record.LastRunAt.UTC()
		lastRun = &value
	}

	return domain.Rule{
		ID:        record.ID,
		Name:      record.Name,
		Trigger:   events.Trigger(record.Trigger),
		Action:    domain.Action(record.Action),
		Config:    config,
		Enabled:   record.Enabled,
		LastRunAt: lastRun,
		RunCount:  record.RunCount,
		CreatedAt: record.CreatedAt.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	}
}

func fromDomainRule(rule *domain.Rule) *RuleRecord {
	return &RuleRecord{
		ID:        rule.ID,
		Name:      rule.Name,
		Trigger:   string(rule.Trigger),
		Action:    string(rule.Action),
		Config:    rule.Config,
		Enabled:   rule.Enabled,
		LastRunAt: rule.LastRunAt,
		RunCount:  rule.RunCount,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}
