package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
)

type catalogService struct {
	tests  repositories.TestRepository
	logger *slog.Logger
}

func NewCatalogService(tests repositories.TestRepository, logger *slog.Logger) CatalogService {
	return &catalogService{
		tests:  tests,
		logger: logger,
	}
}

func (s *catalogService) GetTest(ctx context.Context, testID uint) (*models.Test, error) {
	test, err := s.tests.GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if len(test.Questions) == 0 {
		s.logger.Warn("Test has no questions", "test_id", testID)
		return nil, NewBusinessRuleError("test_has_questions", "test has no questions", map[string]interface{}{
			"test_id": testID,
		})
	}
	return test, nil
}

func (s *catalogService) GetPublicTest(ctx context.Context, testID uint) (*models.PublicTest, error) {
	test, err := s.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	pub := test.Public(nil)
	return &pub, nil
}

// QuestionOrder shuffles with a seed derived from the attempt so a resumed
// attempt sees the same order.
func (s *catalogService) QuestionOrder(test *models.Test, seed int64) []uint {
	order := test.QuestionIDs()
	if !test.RandomizeQuestions {
		return order
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func attemptSeed(testID, studentID uint, attemptNumber int) int64 {
	return int64(testID)<<32 ^ int64(studentID)<<8 ^ int64(attemptNumber)
}
