package projects

import (
	"context"
	"fmt"
	"strings"

	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages projects and their memberships. Admins see everything;
// everyone else only the projects they are a member of.
type Service struct {
	DB *gorm.DB
}

// Counts summarizes what hangs off a project.
type Counts struct {
	Activities int64 `json:"activities"`
	Users      int64 `json:"users"`
	Finances   int64 `json:"finances"`
}

// Summary is a project with its relation counts, the list row shape.
type Summary struct {
	models.Project
	Count Counts `json:"_count"`
}

// Detail is one project with members and counts.
type Detail struct {
	models.Project
	Users []models.UserProject `json:"users"`
	Count Counts               `json:"_count"`
}

// CreateInput for a new project.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Slug        string  `json:"slug" validate:"required,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateInput patches project fields.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Service) counts(ctx context.Context, projectID uuid.UUID) (Counts, error) {
	var c Counts
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Activity{}).Where("project_id = ?", projectID).Count(&c.Activities).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.UserProject{}).Where("project_id = ?", projectID).Count(&c.Users).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Finance{}).Where("project_id = ?", projectID).Count(&c.Finances).Error; err != nil {
		return c, err
	}
	return c, nil
}

// List returns projects visible to the caller, ordered by name, with
// relation counts.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role string) ([]Summary, error) {
	q := s.DB.WithContext(ctx).Model(&models.Project{}).Order("name ASC")
	if role != models.RoleAdmin {
		memberIDs, err := scope.ProjectIDsFor(s.DB.WithContext(ctx), userID)
		if err != nil {
			return nil, err
		}
		if len(memberIDs) == 0 {
			return []Summary{}, nil
		}
		q = q.Where("id IN ?", memberIDs)
	}

	var rows []models.Project
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(rows))
	for _, p := range rows {
		c, err := s.counts(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{Project: p, Count: c})
	}
	return out, nil
}

// Get returns one project with members. Non-admins must be members.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID, role string) (*Detail, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Project not found")
	}
	if err != nil {
		return nil, err
	}

	var members []models.UserProject
	if err := s.DB.WithContext(ctx).Preload("User").Where("project_id = ?", id).Find(&members).Error; err != nil {
		return nil, err
	}

	if role != models.RoleAdmin {
		member := false
		for _, m := range members {
			if m.UserID == userID {
				member = true
				break
			}
		}
		if !member {
			return nil, apperror.Forbidden("Access denied")
		}
	}

	c, err := s.counts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Project: p, Users: members, Count: c}, nil
}

// Create adds a project; the slug is unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Project, error) {
	slug := strings.ToLower(strings.TrimSpace(in.Slug))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict("Project with this slug already exists")
	}

	p := &models.Project{
		Name:     strings.TrimSpace(in.Name),
		Slug:     slug,
		IsActive: true,
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			p.Description = &d
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Update patches a project; a changed slug must stay unique.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Project not found")
	}
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if in.Name != nil {
		patch["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*in.Slug))
		if slug != p.Slug {
			var count int64
			if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("slug = ? AND id <> ?", slug, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, apperror.Conflict("Project with this slug already exists")
			}
		}
		patch["slug"] = slug
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			patch["description"] = d
		} else {
			patch["description"] = nil
		}
	}
	if in.IsActive != nil {
		patch["is_active"] = *in.IsActive
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(&p).Updates(patch).Error; err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// Delete removes a project and its memberships; blocked while activities
// still reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var p models.Project
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return apperror.NotFound("Project not found")
	}
	if err != nil {
		return err
	}

	var activities int64
	if err := s.DB.WithContext(ctx).Model(&models.Activity{}).Where("project_id = ?", id).Count(&activities).Error; err != nil {
		return err
	}
	if activities > 0 {
		return apperror.ConflictDetails(
			fmt.Sprintf("Cannot delete project with %d associated activities", activities),
			map[string]interface{}{"activities": activities},
		)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.UserProject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// AddMember associates a user with a project.
func (s *Service) AddMember(ctx context.Context, projectID, userID uuid.UUID) (*models.UserProject, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperror.NotFound("Project not found")
	}
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperror.NotFound("User not found")
	}
	if err := s.DB.WithContext(ctx).Model(&models.UserProject{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict("User is already associated with this project")
	}

	up := &models.UserProject{UserID: userID, ProjectID: projectID}
	if err := s.DB.WithContext(ctx).Create(up).Error; err != nil {
		return nil, err
	}
	return up, nil
}

// RemoveMember removes a user's membership.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.UserProject{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Membership not found")
	}
	return nil
}
