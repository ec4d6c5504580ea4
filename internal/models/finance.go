package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Finance record statuses.
const (
	FinanceStatusNew        = "NEW"
	FinanceStatusContinuous = "CONTINUOUS"
)

// ValidFinanceStatus reports whether status is a known finance status.
func ValidFinanceStatus(status string) bool {
	return status == FinanceStatusNew || status == FinanceStatusContinuous
}

// Finance is one funding record for a project. Read-scoped like activities
// but with no lifecycle; the funder here is free text, not a reference item.
type Finance struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	Funder    string    `gorm:"column:funder;not null" json:"funder"`
	Amount    float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Currency  string    `gorm:"column:currency;type:varchar(10);not null;default:USD" json:"currency"`
	Status    string    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Year      int       `gorm:"column:year;not null" json:"year"`
	Notes     *string   `gorm:"column:notes" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Finance) TableName() string {
	return "finances"
}

func (f *Finance) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
