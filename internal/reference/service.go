package reference

import (
	"context"
	"fmt"
	"strings"

	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the reference catalog store: uniform CRUD over the closed
// category set, with hierarchy and in-use checks at write time.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a new taxonomy entry.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description"`
	ParentID    *string `json:"parentId" validate:"omitempty,uuid"`
}

// UpdateInput patches name and/or description.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

// List returns every item of a category, ordered by name.
func (s *Service) List(ctx context.Context, category models.Category) ([]models.ReferenceItem, error) {
	items := []models.ReferenceItem{}
	err := s.DB.WithContext(ctx).
		Where("category = ?", category).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// Children returns the items whose parent is parentID, ordered by name.
func (s *Service) Children(ctx context.Context, parentID uuid.UUID) ([]models.ReferenceItem, error) {
	items := []models.ReferenceItem{}
	err := s.DB.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// Get returns one item; the category in the path must match the stored one.
func (s *Service) Get(ctx context.Context, category models.Category, id uuid.UUID) (*models.ReferenceItem, error) {
	var item models.ReferenceItem
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Item not found")
	}
	if err != nil {
		return nil, err
	}
	if item.Category != category {
		return nil, apperror.NotFound("Item not found")
	}
	return &item, nil
}

// Create adds a taxonomy entry. Names are unique within a category, and a
// parent must carry the category's logical parent category (region→country,
// city→region); flat categories cannot nest at all.
func (s *Service) Create(ctx context.Context, category models.Category, in CreateInput) (*models.ReferenceItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("Name is required and must be non-empty")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.ReferenceItem{}).
		Where("category = ? AND name = ?", category, name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.Conflict(fmt.Sprintf("%s already exists in %s", name, category))
	}

	item := &models.ReferenceItem{
		Category: category,
		Name:     name,
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			item.Description = &d
		}
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parentCat, hierarchical := category.ParentCategory()
		if !hierarchical {
			return nil, apperror.Validation(fmt.Sprintf("%s items cannot have a parent", category))
		}
		parentID, err := uuid.Parse(*in.ParentID)
		if err != nil {
			return nil, apperror.Validation("parentId must be a valid UUID")
		}
		var parent models.ReferenceItem
		err = s.DB.WithContext(ctx).Where("id = ?", parentID).First(&parent).Error
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Validation("Parent item not found")
		}
		if err != nil {
			return nil, err
		}
		if parent.Category != parentCat {
			return nil, apperror.Validation(fmt.Sprintf("parent of a %s must be a %s", category, parentCat))
		}
		item.ParentID = &parentID
	}

	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update renames or re-describes an item, keeping category-level name
// uniqueness.
func (s *Service) Update(ctx context.Context, category models.Category, id uuid.UUID, in UpdateInput) (*models.ReferenceItem, error) {
	item, err := s.Get(ctx, category, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("Name is required and must be non-empty")
		}
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.ReferenceItem{}).
			Where("category = ? AND name = ? AND id <> ?", category, name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperror.Conflict(fmt.Sprintf("%s already exists in %s", name, category))
		}
		patch["name"] = name
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			patch["description"] = d
		} else {
			patch["description"] = nil
		}
	}

	if len(patch) == 0 {
		return item, nil
	}
	if err := s.DB.WithContext(ctx).Model(item).Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, category, id)
}

// Delete removes an item unless it still has children or is referenced by
// an activity location or association.
func (s *Service) Delete(ctx context.Context, category models.Category, id uuid.UUID) error {
	item, err := s.Get(ctx, category, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.DB.WithContext(ctx).Model(&models.ReferenceItem{}).
		Where("parent_id = ?", id).
		Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return apperror.ConflictDetails(
			fmt.Sprintf("Cannot delete item with %d child item(s). Delete children first.", children),
			map[string]interface{}{"children": children},
		)
	}

	inUse, err := s.activityReferences(ctx, item)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperror.ConflictDetails(
			fmt.Sprintf("Cannot delete item referenced by %d activities", inUse),
			map[string]interface{}{"activities": inUse},
		)
	}

	return s.DB.WithContext(ctx).Delete(item).Error
}

// activityReferences counts activity rows that still reference the item,
// either through a location column or an association join table.
func (s *Service) activityReferences(ctx context.Context, item *models.ReferenceItem) (int64, error) {
	var count int64
	var err error
	db := s.DB.WithContext(ctx)

	switch item.Category {
	case models.CategoryCountry:
		err = db.Model(&models.ActivityLocation{}).Where("country_id = ?", item.ID).Count(&count).Error
	case models.CategoryRegion:
		err = db.Model(&models.ActivityLocation{}).Where("region_id = ?", item.ID).Count(&count).Error
	case models.CategoryCity:
		err = db.Model(&models.ActivityLocation{}).Where("city_id = ?", item.ID).Count(&count).Error
	case models.CategoryFunder:
		err = db.Table(models.JoinActivityFunders).Where("reference_item_id = ?", item.ID).Count(&count).Error
	case models.CategoryActivityType:
		err = db.Table(models.JoinActivityTypes).Where("reference_item_id = ?", item.ID).Count(&count).Error
	case models.CategoryThematicFocus:
		err = db.Table(models.JoinActivityThematicFocus).Where("reference_item_id = ?", item.ID).Count(&count).Error
	case models.CategoryTargetGroup:
		err = db.Table(models.JoinActivityTargetGroups).Where("reference_item_id = ?", item.ID).Count(&count).Error
	default:
		// programme_area has no activity references
	}
	return count, err
}
