package finance

import (
	"context"
	"testing"

	"impact-backend/internal/database"
	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/scope"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type financeFixture struct {
	db  *gorm.DB
	svc *Service

	manager models.User
	field   models.User

	memberProject models.Project
	otherProject  models.Project
}

func setupFinanceTest(t *testing.T) *financeFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	f := &financeFixture{db: db, svc: &Service{DB: db}}

	f.manager = models.User{Email: "m@example.org", Name: "Manager", Role: models.RoleManager, Status: models.UserStatusActive}
	f.field = models.User{Email: "f@example.org", Name: "Field", Role: models.RoleField, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&f.manager).Error)
	require.NoError(t, db.Create(&f.field).Error)

	f.memberProject = models.Project{Name: "Member", Slug: "member", IsActive: true}
	f.otherProject = models.Project{Name: "Other", Slug: "other", IsActive: true}
	require.NoError(t, db.Create(&f.memberProject).Error)
	require.NoError(t, db.Create(&f.otherProject).Error)
	require.NoError(t, db.Create(&models.UserProject{UserID: f.manager.ID, ProjectID: f.memberProject.ID}).Error)

	return f
}

func (f *financeFixture) scopeFor(t *testing.T, userID uuid.UUID, role string) *scope.Scope {
	t.Helper()
	sc, err := scope.Resolve(f.db, userID, role)
	require.NoError(t, err)
	return sc
}

func (f *financeFixture) adminScope(t *testing.T) *scope.Scope {
	return f.scopeFor(t, uuid.New(), models.RoleAdmin)
}

func seedRecord(t *testing.T, db *gorm.DB, projectID uuid.UUID, amount float64) models.Finance {
	t.Helper()
	r := models.Finance{
		ProjectID: projectID,
		Funder:    "Seed Funder",
		Amount:    amount,
		Currency:  "USD",
		Status:    models.FinanceStatusNew,
		Year:      2026,
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	ae, ok := err.(*apperror.Error)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	return ae.StatusCode
}

func TestFinance_FieldHasNoAccess(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()
	sc := f.scopeFor(t, f.field.ID, models.RoleField)

	_, err := f.svc.List(ctx, sc)
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	_, err = f.svc.BudgetOverview(ctx, sc)
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	_, err = f.svc.Create(ctx, sc, CreateInput{
		ProjectID: f.memberProject.ID.String(),
		Funder:    "Anyone",
		Amount:    100,
		Status:    models.FinanceStatusNew,
		Year:      2026,
	})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))
}

func TestList_ManagerScopedToMemberProjects(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()

	visible := seedRecord(t, f.db, f.memberProject.ID, 1000)
	seedRecord(t, f.db, f.otherProject.ID, 2000)

	records, err := f.svc.List(ctx, f.scopeFor(t, f.manager.ID, models.RoleManager))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, visible.ID, records[0].ID)
	require.NotNil(t, records[0].Project)
	assert.Equal(t, f.memberProject.ID, records[0].Project.ID)

	all, err := f.svc.List(ctx, f.adminScope(t))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBudgetOverview_Math(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()

	seedRecord(t, f.db, f.memberProject.ID, 1000)
	seedRecord(t, f.db, f.memberProject.ID, 500.50)
	seedRecord(t, f.db, f.otherProject.ID, 10000)

	overview, err := f.svc.BudgetOverview(ctx, f.scopeFor(t, f.manager.ID, models.RoleManager))
	require.NoError(t, err)
	assert.InDelta(t, 1500.50, overview.TotalBudget, 0.001)
	assert.InDelta(t, 750.25, overview.AverageBudget, 0.001)
	assert.EqualValues(t, 2, overview.RecordCount)
}

func TestBudgetOverview_EmptySet(t *testing.T) {
	f := setupFinanceTest(t)

	overview, err := f.svc.BudgetOverview(context.Background(), f.adminScope(t))
	require.NoError(t, err)
	assert.Zero(t, overview.TotalBudget)
	assert.Zero(t, overview.AverageBudget)
	assert.Zero(t, overview.RecordCount)
}

func TestCreate_DefaultsAndMembership(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()
	sc := f.scopeFor(t, f.manager.ID, models.RoleManager)

	record, err := f.svc.Create(ctx, sc, CreateInput{
		ProjectID: f.memberProject.ID.String(),
		Funder:    "Global Fund",
		Amount:    2500,
		Status:    models.FinanceStatusContinuous,
		Year:      2026,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", record.Currency, "currency defaults to USD")
	require.NotNil(t, record.Project)

	_, err = f.svc.Create(ctx, sc, CreateInput{
		ProjectID: f.otherProject.ID.String(),
		Funder:    "Global Fund",
		Amount:    2500,
		Status:    models.FinanceStatusNew,
		Year:      2026,
	})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))
}

func TestCreate_UnknownProject(t *testing.T) {
	f := setupFinanceTest(t)

	_, err := f.svc.Create(context.Background(), f.adminScope(t), CreateInput{
		ProjectID: uuid.NewString(),
		Funder:    "Ghost",
		Amount:    100,
		Status:    models.FinanceStatusNew,
		Year:      2026,
	})
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))
}

func TestUpdate_PatchesAndScopes(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()

	record := seedRecord(t, f.db, f.memberProject.ID, 1000)
	outOfReach := seedRecord(t, f.db, f.otherProject.ID, 2000)
	sc := f.scopeFor(t, f.manager.ID, models.RoleManager)

	amount := 1250.0
	updated, err := f.svc.Update(ctx, sc, record.ID, UpdateInput{Amount: &amount})
	require.NoError(t, err)
	assert.InDelta(t, 1250.0, updated.Amount, 0.001)
	assert.Equal(t, "Seed Funder", updated.Funder, "unset fields keep prior values")

	_, err = f.svc.Update(ctx, sc, outOfReach.ID, UpdateInput{Amount: &amount})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))
}

func TestDelete_ScopedAndMissing(t *testing.T) {
	f := setupFinanceTest(t)
	ctx := context.Background()
	sc := f.scopeFor(t, f.manager.ID, models.RoleManager)

	record := seedRecord(t, f.db, f.memberProject.ID, 1000)
	require.NoError(t, f.svc.Delete(ctx, sc, record.ID))

	err := f.svc.Delete(ctx, sc, record.ID)
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))

	outOfReach := seedRecord(t, f.db, f.otherProject.ID, 2000)
	err = f.svc.Delete(ctx, sc, outOfReach.ID)
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))
}
