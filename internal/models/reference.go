package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category tags a reference item with the taxonomy it belongs to.
// The set is closed; handlers reject anything outside it.
type Category string

const (
	CategoryCountry       Category = "country"
	CategoryRegion        Category = "region"
	CategoryCity          Category = "city"
	CategoryFunder        Category = "funder"
	CategoryThematicFocus Category = "thematic_focus"
	CategoryActivityType  Category = "activity_type"
	CategoryTargetGroup   Category = "target_group"
	CategoryProgrammeArea Category = "programme_area"
)

// Categories lists every valid category, used for boundary validation.
var Categories = []Category{
	CategoryCountry,
	CategoryRegion,
	CategoryCity,
	CategoryFunder,
	CategoryThematicFocus,
	CategoryActivityType,
	CategoryTargetGroup,
	CategoryProgrammeArea,
}

// parentCategory maps a child category to the category its parent must have.
// Only the geographic hierarchy is nested; everything else is flat.
var parentCategory = map[Category]Category{
	CategoryRegion: CategoryCountry,
	CategoryCity:   CategoryRegion,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParentCategory returns the required category of a parent item, if the
// category is hierarchical.
func (c Category) ParentCategory() (Category, bool) {
	p, ok := parentCategory[c]
	return p, ok
}

// ReferenceItem is one taxonomy entry. All categories share a single
// self-referencing table; the geographic categories chain via ParentID.
type ReferenceItem struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Category    Category   `gorm:"column:category;type:varchar(30);not null;index;uniqueIndex:idx_reference_category_name,priority:1" json:"category"`
	Name        string     `gorm:"column:name;not null;uniqueIndex:idx_reference_category_name,priority:2" json:"name"`
	Description *string    `gorm:"column:description" json:"description"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid;index" json:"parentId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Parent *ReferenceItem `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (ReferenceItem) TableName() string {
	return "reference_items"
}

func (r *ReferenceItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
