package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SAP-F-2025/attempt-service/internal/cache"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories/memory"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
	"gorm.io/gorm"
)

// loadSeedTests reads a JSON array of tests with their questions. Each test
// is normalized and validated before anything is stored.
func loadSeedTests(path string, v *validator.Validator) ([]models.Test, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var tests []models.Test
	if err := json.Unmarshal(raw, &tests); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	seen := make(map[uint]bool, len(tests))
	for i := range tests {
		test := &tests[i]
		if test.ID == 0 {
			return nil, fmt.Errorf("seed test %d: id is required", i)
		}
		if seen[test.ID] {
			return nil, fmt.Errorf("seed test %d: duplicate id %d", i, test.ID)
		}
		seen[test.ID] = true

		for j := range test.Questions {
			tq := &test.Questions[j]
			tq.TestID = test.ID
			if tq.QuestionID == 0 {
				tq.QuestionID = tq.Question.ID
			}
			if tq.Question.ID == 0 {
				tq.Question.ID = tq.QuestionID
			}
			if tq.Order == 0 {
				tq.Order = j + 1
			}
		}
		if test.TotalMarks == 0 {
			test.TotalMarks = test.ComputeTotalMarks()
		}

		if err := v.Validate(test); err != nil {
			return nil, fmt.Errorf("seed test %d (%q): %w", test.ID, test.Title, err)
		}
	}
	return tests, nil
}

func seedMemory(store *memory.TestStore) func([]models.Test) error {
	return func(tests []models.Test) error {
		for _, test := range tests {
			store.PutTest(test)
		}
		return nil
	}
}

// seedPostgres upserts tests with their questions and drops cached copies.
func seedPostgres(db *gorm.DB, c cache.CacheService) func([]models.Test) error {
	return func(tests []models.Test) error {
		return db.Transaction(func(tx *gorm.DB) error {
			tx = tx.Session(&gorm.Session{FullSaveAssociations: true})
			for i := range tests {
				if err := tx.Save(&tests[i]).Error; err != nil {
					return fmt.Errorf("test %d: %w", tests[i].ID, err)
				}
			}
			return c.DeletePattern(context.Background(), "test:*")
		})
	}
}
