package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEventRepository_Claim(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := repo.Claim(ctx, "evt_1", "customer.subscription.updated")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("redelivery is a duplicate, not an error", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := repo.Claim(ctx, "evt_1", "customer.subscription.updated")
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("release allows a new claim", func(t *testing.T) {
		require.NoError(t, repo.Release(ctx, "evt_1"))
		ok, err := repo.Claim(ctx, "evt_1", "customer.subscription.updated")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("recent lists markers", func(t *testing.T) {
		_, err := repo.Claim(ctx, "evt_2", "invoice.paid")
		require.NoError(t, err)
		events, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}

func TestEventRepository_ConcurrentClaims(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	const deliveries = 16
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(ctx, "evt_concurrent", "customer.subscription.updated")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestEventRepository_Claim_Postgres(t *testing.T) {
	insert := regexp.QuoteMeta(`INSERT INTO "processed_events"`)

	t.Run("unique violation is a duplicate", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(insert).WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

		ok, err := NewEventRepository(db).Claim(context.Background(), "evt_dup", "invoice.paid")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other failures surface", func(t *testing.T) {
		db, mock := newMockGorm(t)
		mock.ExpectExec(insert).WillReturnError(errors.New("connection reset"))

		ok, err := NewEventRepository(db).Claim(context.Background(), "evt_err", "invoice.paid")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
