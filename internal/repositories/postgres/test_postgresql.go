package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/cache"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestPostgreSQL struct {
	db     *gorm.DB
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

// NewTestPostgreSQL reads tests with their questions. A nil cache disables
// caching.
func NewTestPostgreSQL(db *gorm.DB, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) repositories.TestRepository {
	return &TestPostgreSQL{
		db:     db,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
	}
}

func (t *TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	return cache.CacheOrLoad(ctx, t.cache, t.logger, testCacheKey(id), t.ttl, func() (*models.Test, error) {
		var test models.Test
		err := t.db.WithContext(ctx).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
			}).
			Preload("Questions.Question").
			First(&test, id).Error
		if err != nil {
			return nil, translate(err, "get test")
		}
		return &test, nil
	})
}

func testCacheKey(id uint) string {
	return fmt.Sprintf("test:%d", id)
}
