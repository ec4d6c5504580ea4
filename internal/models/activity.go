package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity lifecycle statuses.
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusValidated = "VALIDATED"
	StatusRejected  = "REJECTED"
)

// Statuses lists every lifecycle status in reporting order.
var Statuses = []string{StatusDraft, StatusSubmitted, StatusValidated, StatusRejected}

// ValidStatus reports whether status is a known lifecycle status.
func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Activity is the central aggregate: one recorded programme event with its
// locations, taxonomy associations, demographic counts and narrative fields.
type Activity struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index" json:"projectId"`
	CreatedByID   uuid.UUID  `gorm:"column:created_by_id;type:uuid;not null;index" json:"createdById"`
	ValidatedByID *uuid.UUID `gorm:"column:validated_by_id;type:uuid" json:"validatedById"`

	Status          string  `gorm:"column:status;type:varchar(20);not null;default:DRAFT;index" json:"status"`
	RejectionReason *string `gorm:"column:rejection_reason" json:"rejectionReason"`

	ActivityTitle string `gorm:"column:activity_title;type:varchar(500);not null" json:"activityTitle"`

	// Denormalized from the locations so date filters hit a single column.
	ActivityStartDate *datatypes.Date `gorm:"column:activity_start_date;index" json:"activityStartDate"`
	ActivityEndDate   *datatypes.Date `gorm:"column:activity_end_date" json:"activityEndDate"`

	MaleCount      int `gorm:"column:male_count;not null;default:0" json:"maleCount"`
	FemaleCount    int `gorm:"column:female_count;not null;default:0" json:"femaleCount"`
	NonBinaryCount int `gorm:"column:non_binary_count;not null;default:0" json:"nonBinaryCount"`
	AgeUnder25     int `gorm:"column:age_under_25;not null;default:0" json:"ageUnder25"`
	Age25to40      int `gorm:"column:age_25_to_40;not null;default:0" json:"age25to40"`
	Age40plus      int `gorm:"column:age_40_plus;not null;default:0" json:"age40plus"`
	DisabilityYes  int `gorm:"column:disability_yes;not null;default:0" json:"disabilityYes"`
	DisabilityNo   int `gorm:"column:disability_no;not null;default:0" json:"disabilityNo"`

	KeyOutputs            string `gorm:"column:key_outputs;not null;default:''" json:"keyOutputs"`
	ImmediateOutcomes     string `gorm:"column:immediate_outcomes;not null;default:''" json:"immediateOutcomes"`
	SkillsGained          string `gorm:"column:skills_gained;not null;default:''" json:"skillsGained"`
	ActionsTaken          string `gorm:"column:actions_taken;not null;default:''" json:"actionsTaken"`
	MeansOfVerification   string `gorm:"column:means_of_verification;not null;default:''" json:"meansOfVerification"`
	EvidenceAvailable     string `gorm:"column:evidence_available;not null;default:''" json:"evidenceAvailable"`
	PoliciesInfluenced    string `gorm:"column:policies_influenced;not null;default:''" json:"policiesInfluenced"`
	InstitutionalChanges  string `gorm:"column:institutional_changes;not null;default:''" json:"institutionalChanges"`
	CommitmentsSecured    string `gorm:"column:commitments_secured;not null;default:''" json:"commitmentsSecured"`
	MediaMentions         string `gorm:"column:media_mentions;not null;default:''" json:"mediaMentions"`
	PublicationsProduced  string `gorm:"column:publications_produced;not null;default:''" json:"publicationsProduced"`
	GenderOutcomes        string `gorm:"column:gender_outcomes;not null;default:''" json:"genderOutcomes"`
	InclusionMarginalised string `gorm:"column:inclusion_marginalised;not null;default:''" json:"inclusionMarginalised"`
	WomenLeadership       string `gorm:"column:women_leadership;not null;default:''" json:"womenLeadership"`
	NewPartnerships       string `gorm:"column:new_partnerships;not null;default:''" json:"newPartnerships"`
	ExistingPartnerships  string `gorm:"column:existing_partnerships;not null;default:''" json:"existingPartnerships"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Project       *Project           `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy     *User              `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Locations     []ActivityLocation `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"locations"`
	Funders       []ReferenceItem    `gorm:"many2many:activity_funders;constraint:OnDelete:CASCADE" json:"funders"`
	ActivityTypes []ReferenceItem    `gorm:"many2many:activity_type_assignments;constraint:OnDelete:CASCADE" json:"activityTypes"`
	ThematicFocus []ReferenceItem    `gorm:"many2many:activity_thematic_focus;constraint:OnDelete:CASCADE" json:"thematicFocus"`
	TargetGroups  []ReferenceItem    `gorm:"many2many:activity_target_groups;constraint:OnDelete:CASCADE" json:"targetGroups"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ActivityLocation is one place and date range where the activity happened.
// Region and city are optional but must chain to their parents when set.
type ActivityLocation struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ActivityID uuid.UUID       `gorm:"column:activity_id;type:uuid;not null;index" json:"activityId"`
	CountryID  uuid.UUID       `gorm:"column:country_id;type:uuid;not null" json:"countryId"`
	RegionID   *uuid.UUID      `gorm:"column:region_id;type:uuid" json:"regionId"`
	CityID     *uuid.UUID      `gorm:"column:city_id;type:uuid" json:"cityId"`
	DateStart  datatypes.Date  `gorm:"column:date_start;not null" json:"dateStart"`
	DateEnd    *datatypes.Date `gorm:"column:date_end" json:"dateEnd"`

	Country *ReferenceItem `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Region  *ReferenceItem `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	City    *ReferenceItem `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

func (ActivityLocation) TableName() string {
	return "activity_locations"
}

func (l *ActivityLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Association join table names, shared by the query engine (membership
// filters) and the reference store (delete-in-use checks).
const (
	JoinActivityFunders       = "activity_funders"
	JoinActivityTypes         = "activity_type_assignments"
	JoinActivityThematicFocus = "activity_thematic_focus"
	JoinActivityTargetGroups  = "activity_target_groups"
)
