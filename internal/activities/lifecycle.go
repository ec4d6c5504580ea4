package activities

import (
	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/google/uuid"
)

// Caller is the acting principal, reduced to what the lifecycle guards need.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

// submitFrom lists the statuses a resubmission is allowed from. VALIDATED
// and REJECTED are not terminal: a rejected activity goes back through
// SUBMITTED.
var submitFrom = map[string]bool{
	models.StatusDraft:    true,
	models.StatusRejected: true,
}

// Submit moves an activity to SUBMITTED. Only the creator or a
// MANAGER/ADMIN may trigger it, and only from DRAFT or REJECTED.
// Resubmitting wipes any previous rejection reason, so a stored reason
// always belongs to the current REJECTED status. The activity is not
// mutated when the transition is refused.
func Submit(a *models.Activity, caller Caller) error {
	if caller.UserID != a.CreatedByID && caller.Role != models.RoleManager && caller.Role != models.RoleAdmin {
		return apperror.Forbidden("Only the creator or a manager can submit this activity")
	}
	if !submitFrom[a.Status] {
		return apperror.InvalidState("Only draft or rejected activities can be submitted")
	}
	a.Status = models.StatusSubmitted
	a.RejectionReason = nil
	return nil
}

// Decide validates or rejects a SUBMITTED activity. Role gating
// (MANAGER/ADMIN) happens at the route; this guards the state machine:
// the activity must be SUBMITTED and a rejection needs a non-empty reason.
func Decide(a *models.Activity, caller Caller, status, rejectionReason string) error {
	if status != models.StatusValidated && status != models.StatusRejected {
		return apperror.Validation("status must be VALIDATED or REJECTED")
	}
	if a.Status != models.StatusSubmitted {
		return apperror.InvalidState("Only submitted activities can be validated or rejected")
	}
	if status == models.StatusRejected && rejectionReason == "" {
		return apperror.Validation("rejectionReason is required when rejecting")
	}

	a.Status = status
	a.ValidatedByID = &caller.UserID
	if status == models.StatusRejected {
		a.RejectionReason = &rejectionReason
	} else {
		a.RejectionReason = nil
	}
	return nil
}

// CanEdit applies the field-update guard: VALIDATED rows are frozen for
// everyone but admins, and FIELD users may only touch their own rows.
func CanEdit(a *models.Activity, caller Caller) error {
	if a.Status == models.StatusValidated && caller.Role != models.RoleAdmin {
		return apperror.Forbidden("Validated activities can only be edited by an administrator")
	}
	if caller.Role == models.RoleField && a.CreatedByID != caller.UserID {
		return apperror.Forbidden("You can only edit your own activities")
	}
	return nil
}
