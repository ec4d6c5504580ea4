package activities

import (
	"testing"

	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	ae, ok := err.(*apperror.Error)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	return ae.StatusCode
}

func TestSubmit_FromDraftAndRejected(t *testing.T) {
	creator := uuid.New()
	caller := Caller{UserID: creator, Role: models.RoleField}

	a := &models.Activity{CreatedByID: creator, Status: models.StatusDraft}
	require.NoError(t, Submit(a, caller))
	assert.Equal(t, models.StatusSubmitted, a.Status)

	a.Status = models.StatusRejected
	reason := "Needs evidence"
	a.RejectionReason = &reason
	require.NoError(t, Submit(a, caller))
	assert.Equal(t, models.StatusSubmitted, a.Status)
	assert.Nil(t, a.RejectionReason, "stale reason must not survive a resubmit")
}

func TestSubmit_AlreadySubmitted(t *testing.T) {
	creator := uuid.New()
	a := &models.Activity{CreatedByID: creator, Status: models.StatusSubmitted}

	err := Submit(a, Caller{UserID: creator, Role: models.RoleField})
	assert.Equal(t, fiber.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, models.StatusSubmitted, a.Status)
}

func TestSubmit_StrangerForbidden(t *testing.T) {
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusDraft}

	err := Submit(a, Caller{UserID: uuid.New(), Role: models.RoleField})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))
	assert.Equal(t, models.StatusDraft, a.Status, "refused submit must not mutate")
}

func TestSubmit_ManagerCanSubmitOthersDraft(t *testing.T) {
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusDraft}

	require.NoError(t, Submit(a, Caller{UserID: uuid.New(), Role: models.RoleManager}))
	assert.Equal(t, models.StatusSubmitted, a.Status)
}

func TestDecide_OnlyFromSubmitted(t *testing.T) {
	reviewer := Caller{UserID: uuid.New(), Role: models.RoleManager}

	for _, status := range []string{models.StatusDraft, models.StatusValidated, models.StatusRejected} {
		a := &models.Activity{CreatedByID: uuid.New(), Status: status}
		err := Decide(a, reviewer, models.StatusValidated, "")
		assert.Equal(t, fiber.StatusBadRequest, statusOf(t, err))
		assert.Equal(t, status, a.Status)
	}
}

func TestDecide_RejectRequiresReason(t *testing.T) {
	reviewer := Caller{UserID: uuid.New(), Role: models.RoleAdmin}
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusSubmitted}

	err := Decide(a, reviewer, models.StatusRejected, "")
	assert.Equal(t, fiber.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, models.StatusSubmitted, a.Status)
	assert.Nil(t, a.RejectionReason)
}

func TestDecide_ValidateRecordsReviewer(t *testing.T) {
	reviewer := Caller{UserID: uuid.New(), Role: models.RoleManager}
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusSubmitted}

	require.NoError(t, Decide(a, reviewer, models.StatusValidated, ""))
	assert.Equal(t, models.StatusValidated, a.Status)
	require.NotNil(t, a.ValidatedByID)
	assert.Equal(t, reviewer.UserID, *a.ValidatedByID)
	assert.Nil(t, a.RejectionReason)
}

func TestDecide_RejectStoresReason(t *testing.T) {
	reviewer := Caller{UserID: uuid.New(), Role: models.RoleManager}
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusSubmitted}

	require.NoError(t, Decide(a, reviewer, models.StatusRejected, "Missing evidence"))
	assert.Equal(t, models.StatusRejected, a.Status)
	require.NotNil(t, a.RejectionReason)
	assert.Equal(t, "Missing evidence", *a.RejectionReason)
}

func TestCanEdit_ValidatedFrozenExceptAdmin(t *testing.T) {
	creator := uuid.New()
	a := &models.Activity{CreatedByID: creator, Status: models.StatusValidated}

	err := CanEdit(a, Caller{UserID: creator, Role: models.RoleField})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	err = CanEdit(a, Caller{UserID: uuid.New(), Role: models.RoleManager})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	assert.NoError(t, CanEdit(a, Caller{UserID: uuid.New(), Role: models.RoleAdmin}))
}

func TestCanEdit_FieldOwnRowsOnly(t *testing.T) {
	a := &models.Activity{CreatedByID: uuid.New(), Status: models.StatusDraft}

	err := CanEdit(a, Caller{UserID: uuid.New(), Role: models.RoleField})
	assert.Equal(t, fiber.StatusForbidden, statusOf(t, err))

	assert.NoError(t, CanEdit(a, Caller{UserID: a.CreatedByID, Role: models.RoleField}))
	assert.NoError(t, CanEdit(a, Caller{UserID: uuid.New(), Role: models.RoleManager}))
}
