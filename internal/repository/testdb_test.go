package repository

import (
	"testing"

	"gorm.io/gorm"

	"tradejournal-billing/internal/testutil"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}
