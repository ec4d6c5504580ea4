package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles determine the activity scope a user can see and act on.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleField   = "FIELD"
)

// User account statuses.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInvited  = "INVITED"
	UserStatusInactive = "INACTIVE"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleField
}

// ValidUserStatus reports whether status is a known account status.
func ValidUserStatus(status string) bool {
	return status == UserStatusActive || status == UserStatusInvited || status == UserStatusInactive
}

// User is an account that records or reviews activities.
type User struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email             string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name              string     `gorm:"column:name;not null" json:"name"`
	PasswordHash      string     `gorm:"column:password_hash;not null;default:''" json:"-"`
	Role              string     `gorm:"column:role;type:varchar(20);not null;default:FIELD" json:"role"`
	Status            string     `gorm:"column:status;type:varchar(20);not null;default:INVITED" json:"status"`
	InvitationToken   *string    `gorm:"column:invitation_token;index" json:"-"`
	InvitationExpires *time.Time `gorm:"column:invitation_expires" json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets the UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProject links a user to a project they are a member of.
type UserProject struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"userId"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey" json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (UserProject) TableName() string {
	return "user_projects"
}
