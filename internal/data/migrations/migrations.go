package migrations

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	auditdata "eduvista/site/internal/data/audit"
	authdata "eduvista/site/internal/data/auth"
	automationdata "eduvista/site/internal/data/automation"
	blogdata "eduvista/site/internal/data/blog"
	contactdata "eduvista/site/internal/data/contact"
	contentdata "eduvista/site/internal/data/content"
	experimentsdata "eduvista/site/internal/data/experiments"
	newsletterdata "eduvista/site/internal/data/newsletter"
	socialdata "eduvista/site/internal/data/social"
)

// Models lists every table in dependency order: referenced tables first.
func Models() []any {
	return []any{
		&contentdata.PageRecord{},
		&contentdata.SectionRecord{},
		&contentdata.TestimonialRecord{},
		&blogdata.AuthorRecord{},
		&blogdata.CategoryRecord{},
		&blogdata.PostRecord{},
		&newsletterdata.SubscriberRecord{},
		&newsletterdata.CampaignRecord{},
		&socialdata.PostRecord{},
		&contactdata.SubmissionRecord{},
		&automationdata.RuleRecord{},
		&auditdata.EntryRecord{},
		&authdata.UserRecord{},
		&experimentsdata.ExperimentRecord{},
		&experimentsdata.VariantRecord{},
	}
}

// Migrate applies the site schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("schema migration failed")
		}
		return eris.Wrap(err, "auto migrating schema")
	}

	if logger != nil {
		logger.WithFields(logFields).WithField("tables", len(Models())).Info("schema migration complete")
	}

	return nil
}
