package sequence

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Counter{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestNext_Sequential(t *testing.T) {
	a := New(setupDB(t))
	ctx := context.Background()
	for want := int64(1); want <= 5; want++ {
		got, err := a.Next(ctx, "categoryId")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	other, err := a.Next(ctx, "subCategoryId_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "counters are independent")
}

func TestNext_ConcurrentDistinct(t *testing.T) {
	db := setupDB(t)
	a := New(db)
	const n = 50
	var (
		mu   sync.Mutex
		got  []int64
		wg   sync.WaitGroup
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.Next(context.Background(), "negotiation")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			got = append(got, v)
		}()
	}
	wg.Wait()
	require.Empty(t, errs)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i+1), v)
	}

	var c models.Counter
	require.NoError(t, db.First(&c, "sequence_name = ?", "negotiation").Error)
	assert.Equal(t, int64(n), c.SequenceValue)
}

func TestNext_RollsBackWithTx(t *testing.T) {
	db := setupDB(t)
	a := New(db)
	ctx := context.Background()
	_, err := a.Next(ctx, "categoryId")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.Transaction(func(tx *gorm.DB) error {
		v, err := a.WithTx(tx).Next(ctx, "categoryId")
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := a.Next(ctx, "categoryId")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v, "rolled back allocation must be reissued")
}

func TestNext_EmptyName(t *testing.T) {
	a := New(setupDB(t))
	_, err := a.Next(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrAllocation)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestNext_PostgresUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO counters (sequence_name, sequence_value, updated_at)`)).
		WithArgs("categoryId").
		WillReturnRows(sqlmock.NewRows([]string{"sequence_value"}).AddRow(7))

	v, err := New(db).Next(context.Background(), "categoryId")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNext_StorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	cause := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO counters`)).
		WithArgs("categoryId").
		WillReturnError(cause)

	_, err := New(db).Next(context.Background(), "categoryId")
	assert.ErrorIs(t, err, apperr.ErrAllocation)
	assert.ErrorIs(t, err, cause)
}
