package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// queryRecorder captures every SQL statement gorm builds so tests can
// assert on the generated query without a live database.
type queryRecorder struct {
	queries []string
}

func (r *queryRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *queryRecorder) Info(context.Context, string, ...interface{})  {}
func (r *queryRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *queryRecorder) Error(context.Context, string, ...interface{}) {}
func (r *queryRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.queries = append(r.queries, sql)
}

// newDryRunDB opens a gorm handle that builds SQL without connecting.
func newDryRunDB(t *testing.T, rec *queryRecorder) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=kardex dbname=kardex",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return db
}

// Stock mutations serialize on a pessimistic row lock; every locking
// read must actually emit FOR UPDATE or concurrent adjustments silently
// race on the same stock value.
func TestLockReadsEmitForUpdate(t *testing.T) {
	rec := &queryRecorder{}
	db := newDryRunDB(t, rec)
	repo := NewProductRepo(db)

	_, _ = repo.LockBySKU(db, "ABC")
	_, _ = repo.LockByID(db, uuid.New())

	require.Len(t, rec.queries, 2)
	for _, q := range rec.queries {
		assert.True(t, strings.Contains(q, "FOR UPDATE"), "expected a row lock in %q", q)
	}
}

// Plain reads must stay lock-free.
func TestFindBySKUDoesNotLock(t *testing.T) {
	rec := &queryRecorder{}
	db := newDryRunDB(t, rec)
	repo := NewProductRepo(db)

	_, _ = repo.FindBySKU("ABC")

	require.NotEmpty(t, rec.queries)
	for _, q := range rec.queries {
		assert.False(t, strings.Contains(q, "FOR UPDATE"), "unexpected row lock in %q", q)
	}
}
