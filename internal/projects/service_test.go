package projects

import (
	"context"
	"testing"

	"impact-backend/internal/database"
	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProjectTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func newUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: "User " + email, Role: role, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	ae, ok := err.(*apperror.Error)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	return ae.StatusCode
}

func TestCreate_SlugUniqueAndNormalized(t *testing.T) {
	svc, _ := setupProjectTest(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Name: "Youth Voices", Slug: "  Youth-Voices  "})
	require.NoError(t, err)
	assert.Equal(t, "youth-voices", p.Slug)
	assert.True(t, p.IsActive)

	_, err = svc.Create(ctx, CreateInput{Name: "Other", Slug: "YOUTH-VOICES"})
	assert.Equal(t, fiber.StatusConflict, statusOf(t, err))
}

func TestList_NonAdminSeesMembershipsOnly(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	manager := newUser(t, db, "m@example.org", models.RoleManager)
	mine, err := svc.Create(ctx, CreateInput{Name: "Mine", Slug: "mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Theirs", Slug: "theirs"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, mine.ID, manager.ID)
	require.NoError(t, err)

	rows, err := svc.List(ctx, manager.ID, models.RoleManager)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)
	assert.EqualValues(t, 1, rows[0].Count.Users)

	all, err := svc.List(ctx, uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGet_NonMemberDenied(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	field := newUser(t, db, "f@example.org", models.RoleField)
	p, err := svc.Create(ctx, CreateInput{Name: "Closed", Slug: "closed"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID, field.ID, models.RoleField)
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	_, err = svc.AddMember(ctx, p.ID, field.ID)
	require.NoError(t, err)
	detail, err := svc.Get(ctx, p.ID, field.ID, models.RoleField)
	require.NoError(t, err)
	assert.Len(t, detail.Users, 1)
}

func TestUpdate_SlugConflict(t *testing.T) {
	svc, _ := setupProjectTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Slug: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateInput{Name: "B", Slug: "b"})
	require.NoError(t, err)

	taken := "a"
	_, err = svc.Update(ctx, b.ID, UpdateInput{Slug: &taken})
	assert.Equal(t, fiber.StatusConflict, statusOf(t, err))

	renamed := "b-renamed"
	got, err := svc.Update(ctx, b.ID, UpdateInput{Slug: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "b-renamed", got.Slug)
}

func TestDelete_BlockedWhileActivitiesExist(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Name: "Busy", Slug: "busy"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Activity{
		ProjectID:     p.ID,
		CreatedByID:   uuid.New(),
		Status:        models.StatusDraft,
		ActivityTitle: "Keeps the project alive",
	}).Error)

	err = svc.Delete(ctx, p.ID)
	assert.Equal(t, fiber.StatusConflict, statusOf(t, err))

	require.NoError(t, db.Where("project_id = ?", p.ID).Delete(&models.Activity{}).Error)
	assert.NoError(t, svc.Delete(ctx, p.ID))
}

func TestDelete_RemovesMemberships(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	u := newUser(t, db, "member@example.org", models.RoleField)
	p, err := svc.Create(ctx, CreateInput{Name: "Gone", Slug: "gone"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, p.ID, u.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))

	var memberships int64
	require.NoError(t, db.Model(&models.UserProject{}).Where("project_id = ?", p.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)
}

func TestAddMember_DuplicateConflict(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	u := newUser(t, db, "dup@example.org", models.RoleField)
	p, err := svc.Create(ctx, CreateInput{Name: "P", Slug: "p"})
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, p.ID, u.ID)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, p.ID, u.ID)
	assert.Equal(t, fiber.StatusConflict, statusOf(t, err))
}

func TestAddMember_UnknownTargets(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	u := newUser(t, db, "x@example.org", models.RoleField)
	p, err := svc.Create(ctx, CreateInput{Name: "P", Slug: "p"})
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, uuid.New(), u.ID)
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))
	_, err = svc.AddMember(ctx, p.ID, uuid.New())
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))
}

func TestRemoveMember_MissingMembership(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()

	u := newUser(t, db, "y@example.org", models.RoleField)
	p, err := svc.Create(ctx, CreateInput{Name: "P", Slug: "p"})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, p.ID, u.ID)
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))

	_, err = svc.AddMember(ctx, p.ID, u.ID)
	require.NoError(t, err)
	assert.NoError(t, svc.RemoveMember(ctx, p.ID, u.ID))
}
