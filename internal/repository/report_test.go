package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(id, kind string, createdAt time.Time) *entity.Report {
	return &entity.Report{
		ID:        id,
		Kind:      kind,
		CreatedAt: createdAt,
		Elapsed:   42 * time.Millisecond,
		States:    5478,
	}
}

func TestReportRepository_Create(t *testing.T) {
	ctx, st := suite.New(t)

	reportRepo := NewReportRepository(st.Storage, 0)

	// Given: an enumeration report
	report := newReport("123", entity.KindEnumerate, time.Now())

	// When: Create is called
	err := reportRepo.Create(ctx, report)

	// Then: no error should be returned, and report is stored
	require.NoError(t, err)
}

func TestReportRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// Given: a stored training report
		report := newReport("123", entity.KindTrain, time.Now().UTC())
		report.Training = &entity.TrainingSummary{
			Episodes:    50000,
			Alpha:       0.1,
			Gamma:       0.9,
			OpeningMove: entity.Move{Row: 1, Col: 1},
		}

		err := reportRepo.Create(ctx, report)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrieved, err := reportRepo.GetByID(ctx, report.ID)

		// Then: the retrieved report should match the saved report
		require.NoError(t, err)
		require.Equal(t, report.ID, retrieved.ID)
		require.Equal(t, report.Kind, retrieved.Kind)
		require.Equal(t, report.Elapsed, retrieved.Elapsed)
		require.Equal(t, report.Training, retrieved.Training)
		require.True(t, report.CreatedAt.Equal(retrieved.CreatedAt))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrieved, err := reportRepo.GetByID(ctx, "9999999")

		// Then: an ErrReportNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrReportNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestReportRepository_ListLatest(t *testing.T) {
	t.Run("Newest first", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// Given: three reports created one after another
		now := time.Now()
		require.NoError(t, reportRepo.Create(ctx, newReport("a", entity.KindEnumerate, now.Add(-2*time.Minute))))
		require.NoError(t, reportRepo.Create(ctx, newReport("b", entity.KindSolve, now.Add(-time.Minute))))
		require.NoError(t, reportRepo.Create(ctx, newReport("c", entity.KindTrain, now)))

		// When: listing the latest two
		reports, err := reportRepo.ListLatest(ctx, 2)

		// Then: the two newest are returned, newest first
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "c", reports[0].ID)
		assert.Equal(t, "b", reports[1].ID)
	})

	t.Run("Skips expired reports", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// Given: a report whose value vanished from redis
		require.NoError(t, reportRepo.Create(ctx, newReport("gone", entity.KindSolve, time.Now())))
		require.NoError(t, st.Storage.Del(ctx, reportKey("gone")).Err())

		// When: listing
		reports, err := reportRepo.ListLatest(ctx, 10)

		// Then: it is skipped and dropped from the index
		require.NoError(t, err)
		assert.Empty(t, reports)

		count, err := st.Storage.ZCard(ctx, reportIndexKey).Result()
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Non-positive limit", func(t *testing.T) {
		ctx, st := suite.New(t)

		reports, err := NewReportRepository(st.Storage, 0).ListLatest(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})
}

func TestReportRepository_Create_TTL(t *testing.T) {
	ctx, st := suite.New(t)

	reportRepo := NewReportRepository(st.Storage, time.Hour)

	require.NoError(t, reportRepo.Create(ctx, newReport("ttl", entity.KindSolve, time.Now())))

	ttl, err := st.Storage.TTL(ctx, reportKey("ttl")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestReportRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// Given: a stored report
		report := newReport("123", entity.KindSolve, time.Now())
		require.NoError(t, reportRepo.Create(ctx, report))

		// When: DeleteByID is called with existing ID
		err := reportRepo.DeleteByID(ctx, report.ID)

		// Then: no error should be returned and the report is gone
		require.NoError(t, err)

		_, err = reportRepo.GetByID(ctx, report.ID)
		require.ErrorIs(t, err, apperror.ErrReportNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		reportRepo := NewReportRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := reportRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrReportNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrReportNotFound)
	})
}
