package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"impact-backend/internal/models"
	"impact-backend/internal/notify"
	"impact-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const invitationTTL = 7 * 24 * time.Hour

// Service manages user accounts and the invitation flow. The one hard
// invariant: at least one ACTIVE ADMIN must exist at all times, checked on
// every status change, role change and delete.
type Service struct {
	DB       *gorm.DB
	Notifier notify.Dispatcher
}

// InviteInput creates an INVITED account.
type InviteInput struct {
	Email      string   `json:"email" validate:"required,email"`
	Name       string   `json:"name" validate:"required,min=2,max=100"`
	Role       string   `json:"role" validate:"required,oneof=ADMIN MANAGER FIELD"`
	ProjectIDs []string `json:"projectIds" validate:"omitempty,dive,uuid"`
}

// UpdateInput patches account fields.
type UpdateInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role   *string `json:"role" validate:"omitempty,oneof=ADMIN MANAGER FIELD"`
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE INVITED INACTIVE"`
}

// InviteResult is the invite response: the account plus the one-time link.
type InviteResult struct {
	User           *models.User `json:"user"`
	InvitationLink string       `json:"invitationLink"`
}

// List returns every account, newest first.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func newInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Invite creates an INVITED account with a one-time token and optional
// project memberships, then notifies the invitee best-effort.
func (s *Service) Invite(ctx context.Context, in InviteInput, actorID uuid.UUID) (*InviteResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict("User with this email already exists")
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(invitationTTL)

	u := &models.User{
		Email:             email,
		Name:              strings.TrimSpace(in.Name),
		Role:              in.Role,
		Status:            models.UserStatusInvited,
		InvitationToken:   &token,
		InvitationExpires: &expires,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		for _, raw := range in.ProjectIDs {
			projectID, perr := uuid.Parse(raw)
			if perr != nil {
				return apperror.Validation("Invalid request", apperror.FieldDetail{Field: "projectIds", Message: "must contain valid UUIDs"})
			}
			var exists int64
			if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return apperror.Validation("Invalid request", apperror.FieldDetail{Field: "projectIds", Message: "project not found"})
			}
			if err := tx.Create(&models.UserProject{UserID: u.ID, ProjectID: projectID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventUserInvited,
			ActorID:   actorID,
			SubjectID: u.ID,
			Title:     u.Name,
			Recipient: u.Email,
			Token:     token,
		})
	}

	return &InviteResult{User: u, InvitationLink: "/accept-invitation?token=" + token}, nil
}

// AcceptInvitation activates an invited account against an unexpired token.
func (s *Service) AcceptInvitation(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return apperror.Validation("Token and password are required")
	}
	if len(password) < 8 {
		return apperror.Validation("Password must be at least 8 characters")
	}

	var u models.User
	err := s.DB.WithContext(ctx).
		Where("invitation_token = ? AND invitation_expires >= ?", token, time.Now()).
		First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return apperror.Validation("Invalid or expired invitation token")
	}
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&u).Updates(map[string]interface{}{
		"password_hash":      string(hash),
		"status":             models.UserStatusActive,
		"invitation_token":   nil,
		"invitation_expires": nil,
	}).Error
}

// ResendInvitation rotates the token for a not-yet-active account.
func (s *Service) ResendInvitation(ctx context.Context, id, actorID uuid.UUID) (*InviteResult, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	if u.Status == models.UserStatusActive {
		return nil, apperror.Validation("User is already active")
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(invitationTTL)
	if err := s.DB.WithContext(ctx).Model(&u).Updates(map[string]interface{}{
		"invitation_token":   token,
		"invitation_expires": expires,
	}).Error; err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventUserInvited,
			ActorID:   actorID,
			SubjectID: u.ID,
			Title:     u.Name,
			Recipient: u.Email,
			Token:     token,
		})
	}
	return &InviteResult{User: &u, InvitationLink: "/accept-invitation?token=" + token}, nil
}

// Update patches an account, refusing any change that would leave the
// system without an ACTIVE ADMIN.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	demoting := in.Role != nil && *in.Role != models.RoleAdmin
	deactivating := in.Status != nil && *in.Status != models.UserStatusActive
	if u.Role == models.RoleAdmin && u.Status == models.UserStatusActive && (demoting || deactivating) {
		last, err := s.isLastActiveAdmin(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		if last {
			return nil, apperror.Conflict("Cannot deactivate the last admin user")
		}
	}

	patch := map[string]interface{}{}
	if in.Name != nil {
		patch["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		patch["role"] = *in.Role
	}
	if in.Status != nil {
		patch["status"] = *in.Status
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(&u).Updates(patch).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// Delete removes an account and its memberships; the last ACTIVE ADMIN
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var u models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return apperror.NotFound("User not found")
	}
	if err != nil {
		return err
	}

	if u.Role == models.RoleAdmin && u.Status == models.UserStatusActive {
		last, err := s.isLastActiveAdmin(ctx, u.ID)
		if err != nil {
			return err
		}
		if last {
			return apperror.Conflict("Cannot delete the last admin user")
		}
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserProject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
}

func (s *Service) isLastActiveAdmin(ctx context.Context, excluding uuid.UUID) (bool, error) {
	var others int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND status = ? AND id <> ?", models.RoleAdmin, models.UserStatusActive, excluding).
		Count(&others).Error
	return others == 0, err
}
