// Package crud holds the Gorm plumbing shared by every repository.
package crud

import (
	"context"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"eduvista/site/internal/data/database"
	"eduvista/site/internal/domain/apperr"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Find loads the first record matching conds. It returns nil, nil when nothing matches.
func Find[T any](ctx context.Context, db *gorm.DB, conds ...any) (*T, error) {
	var record T
	if err := db.WithContext(ctx).First(&record, conds...).Error; err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Insert creates record, translating unique violations into apperr.ErrConflict.
func Insert(ctx context.Context, db *gorm.DB, record any, entity string) error {
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("%s already exists", entity)
		}
		return eris.Wrapf(err, "creating %s", entity)
	}
	return nil
}

// Save updates every column of record, translating unique violations into apperr.ErrConflict.
func Save(ctx context.Context, db *gorm.DB, record any, entity string) error {
	if err := db.WithContext(ctx).Save(record).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("%s already exists", entity)
		}
		return eris.Wrapf(err, "updating %s", entity)
	}
	return nil
}

// Remove hard-deletes the record with id and reports apperr.ErrNotFound when nothing was deleted.
func Remove[T any](ctx context.Context, db *gorm.DB, id uint, entity string) error {
	result := db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return eris.Wrapf(result.Error, "deleting %s %d", entity, id)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("%s %d not found", entity, id)
	}
	return nil
}

// Paginate clamps limit and offset and applies them to the query.
func Paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// Count returns the number of T rows matching the optional where clause.
func Count[T any](ctx context.Context, db *gorm.DB, query any, args ...any) (int64, error) {
	var count int64
	q := db.WithContext(ctx).Model(new(T))
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, eris.Wrap(err, "counting rows")
	}
	return count, nil
}
