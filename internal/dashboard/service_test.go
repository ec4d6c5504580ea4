package dashboard

import (
	"context"
	"testing"
	"time"

	"impact-backend/internal/activities"
	"impact-backend/internal/database"
	"impact-backend/internal/models"
	"impact-backend/internal/scope"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDashboardTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func adminScope(t *testing.T, db *gorm.DB) *scope.Scope {
	t.Helper()
	sc, err := scope.Resolve(db, uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	return sc
}

func seed(t *testing.T, db *gorm.DB, a models.Activity) models.Activity {
	t.Helper()
	if a.ActivityTitle == "" {
		a.ActivityTitle = "Seeded"
	}
	if a.ProjectID == uuid.Nil {
		a.ProjectID = uuid.New()
	}
	if a.CreatedByID == uuid.Nil {
		a.CreatedByID = uuid.New()
	}
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func TestGetStats_CountsAndParticipants(t *testing.T) {
	svc, db := setupDashboardTest(t)
	ctx := context.Background()

	seed(t, db, models.Activity{Status: models.StatusDraft, MaleCount: 10, FemaleCount: 15})
	seed(t, db, models.Activity{Status: models.StatusSubmitted, MaleCount: 5})
	seed(t, db, models.Activity{Status: models.StatusValidated, NonBinaryCount: 2})

	stats, err := svc.GetStats(ctx, adminScope(t, db), activities.Filters{})
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalActivities)
	assert.EqualValues(t, 1, stats.DraftActivities)
	assert.EqualValues(t, 1, stats.SubmittedActivities)
	assert.EqualValues(t, 1, stats.ValidatedActivities)
	assert.EqualValues(t, 0, stats.RejectedActivities)
	assert.EqualValues(t, 32, stats.TotalParticipants)
}

func TestActivitiesByStatus_DenseBreakdown(t *testing.T) {
	svc, db := setupDashboardTest(t)
	ctx := context.Background()

	seed(t, db, models.Activity{Status: models.StatusDraft})
	seed(t, db, models.Activity{Status: models.StatusDraft})
	seed(t, db, models.Activity{Status: models.StatusRejected})

	rows, err := svc.ActivitiesByStatus(ctx, adminScope(t, db), activities.Filters{})
	require.NoError(t, err)

	require.Len(t, rows, 4, "every status appears, zero counts included")
	byStatus := map[string]int64{}
	for _, r := range rows {
		byStatus[r.Status] = r.Count
	}
	assert.EqualValues(t, 2, byStatus[models.StatusDraft])
	assert.EqualValues(t, 0, byStatus[models.StatusSubmitted])
	assert.EqualValues(t, 0, byStatus[models.StatusValidated])
	assert.EqualValues(t, 1, byStatus[models.StatusRejected])
}

func TestParticipantsByGender_RawSums(t *testing.T) {
	svc, db := setupDashboardTest(t)
	ctx := context.Background()

	seed(t, db, models.Activity{MaleCount: 4, FemaleCount: 6})
	seed(t, db, models.Activity{MaleCount: 6, FemaleCount: 9})

	rows, err := svc.ParticipantsByGender(ctx, adminScope(t, db), activities.Filters{})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, GenderCount{Gender: "Male", Count: 10}, rows[0])
	assert.Equal(t, GenderCount{Gender: "Female", Count: 15}, rows[1])
	assert.Equal(t, GenderCount{Gender: "Non-Binary", Count: 0}, rows[2], "zero rows are reported, not omitted")
}

func TestParticipantsByGender_EmptySet(t *testing.T) {
	svc, db := setupDashboardTest(t)

	rows, err := svc.ParticipantsByGender(context.Background(), adminScope(t, db), activities.Filters{})
	require.NoError(t, err)

	for _, r := range rows {
		assert.Zero(t, r.Count)
	}
}

func TestActivitiesTrend_SparseAscendingMonths(t *testing.T) {
	svc, db := setupDashboardTest(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	seed(t, db, models.Activity{CreatedAt: jan})
	seed(t, db, models.Activity{CreatedAt: jan.AddDate(0, 0, 5)})
	seed(t, db, models.Activity{CreatedAt: mar})

	points, err := svc.ActivitiesTrend(ctx, adminScope(t, db), activities.Filters{})
	require.NoError(t, err)

	require.Len(t, points, 2, "empty months are omitted")
	assert.Equal(t, TrendPoint{Month: "2026-01", Count: 2}, points[0])
	assert.Equal(t, TrendPoint{Month: "2026-03", Count: 1}, points[1])
}

func TestGetStats_ScopedToFieldCreator(t *testing.T) {
	svc, db := setupDashboardTest(t)
	ctx := context.Background()

	me := uuid.New()
	seed(t, db, models.Activity{CreatedByID: me, MaleCount: 3})
	seed(t, db, models.Activity{MaleCount: 100})

	sc, err := scope.Resolve(db, me, models.RoleField)
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, sc, activities.Filters{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalActivities)
	assert.EqualValues(t, 3, stats.TotalParticipants)
}
