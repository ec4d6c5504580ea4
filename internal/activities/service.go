package activities

import (
	"context"
	"fmt"
	"time"

	"impact-backend/internal/models"
	"impact-backend/internal/notify"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service is the activity aggregate repository: transactional writes of the
// parent plus every child collection, scope-aware listing, and lifecycle
// transitions.
type Service struct {
	DB       *gorm.DB
	Notifier notify.Dispatcher
}

// LocationInput is one location entry on create/update.
type LocationInput struct {
	CountryID string  `json:"countryId" validate:"required,uuid"`
	RegionID  *string `json:"regionId" validate:"omitempty,uuid"`
	CityID    *string `json:"cityId" validate:"omitempty,uuid"`
	DateStart string  `json:"dateStart" validate:"required,datetime=2006-01-02"`
	DateEnd   *string `json:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
}

// CreateInput carries a full activity. Every association collection needs at
// least one entry; demographic counts default to zero and cannot be negative.
type CreateInput struct {
	ProjectID     string `json:"projectId" validate:"required,uuid"`
	ActivityTitle string `json:"activityTitle" validate:"required,min=3,max=500"`
	Status        string `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED"`

	Locations     []LocationInput `json:"locations" validate:"required,min=1,dive"`
	ActivityTypes []string        `json:"activityTypes" validate:"required,min=1,dive,uuid"`
	TargetGroups  []string        `json:"targetGroups" validate:"required,min=1,dive,uuid"`
	ThematicFocus []string        `json:"thematicFocus" validate:"required,min=1,dive,uuid"`
	Funders       []string        `json:"funders" validate:"required,min=1,dive,uuid"`

	MaleCount      int `json:"maleCount" validate:"gte=0"`
	FemaleCount    int `json:"femaleCount" validate:"gte=0"`
	NonBinaryCount int `json:"nonBinaryCount" validate:"gte=0"`
	AgeUnder25     int `json:"ageUnder25" validate:"gte=0"`
	Age25to40      int `json:"age25to40" validate:"gte=0"`
	Age40plus      int `json:"age40plus" validate:"gte=0"`
	DisabilityYes  int `json:"disabilityYes" validate:"gte=0"`
	DisabilityNo   int `json:"disabilityNo" validate:"gte=0"`

	KeyOutputs            string `json:"keyOutputs"`
	ImmediateOutcomes     string `json:"immediateOutcomes"`
	SkillsGained          string `json:"skillsGained"`
	ActionsTaken          string `json:"actionsTaken"`
	MeansOfVerification   string `json:"meansOfVerification"`
	EvidenceAvailable     string `json:"evidenceAvailable"`
	PoliciesInfluenced    string `json:"policiesInfluenced"`
	InstitutionalChanges  string `json:"institutionalChanges"`
	CommitmentsSecured    string `json:"commitmentsSecured"`
	MediaMentions         string `json:"mediaMentions"`
	PublicationsProduced  string `json:"publicationsProduced"`
	GenderOutcomes        string `json:"genderOutcomes"`
	InclusionMarginalised string `json:"inclusionMarginalised"`
	WomenLeadership       string `json:"womenLeadership"`
	NewPartnerships       string `json:"newPartnerships"`
	ExistingPartnerships  string `json:"existingPartnerships"`
}

// UpdateInput patches scalar fields individually (nil means keep) while the
// child collections are always replaced wholesale with the new set.
type UpdateInput struct {
	ProjectID     *string `json:"projectId" validate:"omitempty,uuid"`
	ActivityTitle *string `json:"activityTitle" validate:"omitempty,min=3,max=500"`

	Locations     []LocationInput `json:"locations" validate:"required,min=1,dive"`
	ActivityTypes []string        `json:"activityTypes" validate:"required,min=1,dive,uuid"`
	TargetGroups  []string        `json:"targetGroups" validate:"required,min=1,dive,uuid"`
	ThematicFocus []string        `json:"thematicFocus" validate:"required,min=1,dive,uuid"`
	Funders       []string        `json:"funders" validate:"required,min=1,dive,uuid"`

	MaleCount      *int `json:"maleCount" validate:"omitempty,gte=0"`
	FemaleCount    *int `json:"femaleCount" validate:"omitempty,gte=0"`
	NonBinaryCount *int `json:"nonBinaryCount" validate:"omitempty,gte=0"`
	AgeUnder25     *int `json:"ageUnder25" validate:"omitempty,gte=0"`
	Age25to40      *int `json:"age25to40" validate:"omitempty,gte=0"`
	Age40plus      *int `json:"age40plus" validate:"omitempty,gte=0"`
	DisabilityYes  *int `json:"disabilityYes" validate:"omitempty,gte=0"`
	DisabilityNo   *int `json:"disabilityNo" validate:"omitempty,gte=0"`

	KeyOutputs            *string `json:"keyOutputs"`
	ImmediateOutcomes     *string `json:"immediateOutcomes"`
	SkillsGained          *string `json:"skillsGained"`
	ActionsTaken          *string `json:"actionsTaken"`
	MeansOfVerification   *string `json:"meansOfVerification"`
	EvidenceAvailable     *string `json:"evidenceAvailable"`
	PoliciesInfluenced    *string `json:"policiesInfluenced"`
	InstitutionalChanges  *string `json:"institutionalChanges"`
	CommitmentsSecured    *string `json:"commitmentsSecured"`
	MediaMentions         *string `json:"mediaMentions"`
	PublicationsProduced  *string `json:"publicationsProduced"`
	GenderOutcomes        *string `json:"genderOutcomes"`
	InclusionMarginalised *string `json:"inclusionMarginalised"`
	WomenLeadership       *string `json:"womenLeadership"`
	NewPartnerships       *string `json:"newPartnerships"`
	ExistingPartnerships  *string `json:"existingPartnerships"`
}

// withAggregate preloads every child collection and resolved reference name.
func withAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Project").
		Preload("CreatedBy").
		Preload("Locations").
		Preload("Locations.Country").
		Preload("Locations.Region").
		Preload("Locations.City").
		Preload("Funders").
		Preload("ActivityTypes").
		Preload("ThematicFocus").
		Preload("TargetGroups")
}

// Get returns the hydrated aggregate. No ownership narrowing here: read
// access narrowing happens only in List via the scope resolver.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var a models.Activity
	err := withAggregate(s.DB.WithContext(ctx)).Where("id = ?", id).First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Activity not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List applies the resolved scope plus filters and returns one page of
// hydrated rows together with the total match count.
func (s *Service) List(ctx context.Context, sc *scope.Scope, f Filters, p Page) ([]models.Activity, int64, error) {
	build := func() *gorm.DB {
		return f.Apply(sc.Apply(s.DB.WithContext(ctx).Model(&models.Activity{})))
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []models.Activity{}
	err := withAggregate(build()).
		Order(p.OrderClause()).
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create validates the aggregate, persists parent and children atomically,
// then emits a post-commit notification. The notification is best effort
// and never fails the create.
func (s *Service) Create(ctx context.Context, in CreateInput, caller Caller) (*models.Activity, error) {
	projectID, err := uuid.Parse(in.ProjectID)
	if err != nil {
		return nil, apperror.Validation("Invalid projectId")
	}
	if err := s.checkProjectAccess(ctx, projectID, caller); err != nil {
		return nil, err
	}

	locations, start, end, err := s.resolveLocations(ctx, in.Locations)
	if err != nil {
		return nil, err
	}
	funders, err := s.resolveRefs(ctx, in.Funders, models.CategoryFunder)
	if err != nil {
		return nil, err
	}
	types, err := s.resolveRefs(ctx, in.ActivityTypes, models.CategoryActivityType)
	if err != nil {
		return nil, err
	}
	thematic, err := s.resolveRefs(ctx, in.ThematicFocus, models.CategoryThematicFocus)
	if err != nil {
		return nil, err
	}
	groups, err := s.resolveRefs(ctx, in.TargetGroups, models.CategoryTargetGroup)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}

	a := &models.Activity{
		ProjectID:     projectID,
		CreatedByID:   caller.UserID,
		Status:        status,
		ActivityTitle: in.ActivityTitle,

		ActivityStartDate: start,
		ActivityEndDate:   end,

		MaleCount:      in.MaleCount,
		FemaleCount:    in.FemaleCount,
		NonBinaryCount: in.NonBinaryCount,
		AgeUnder25:     in.AgeUnder25,
		Age25to40:      in.Age25to40,
		Age40plus:      in.Age40plus,
		DisabilityYes:  in.DisabilityYes,
		DisabilityNo:   in.DisabilityNo,

		KeyOutputs:            in.KeyOutputs,
		ImmediateOutcomes:     in.ImmediateOutcomes,
		SkillsGained:          in.SkillsGained,
		ActionsTaken:          in.ActionsTaken,
		MeansOfVerification:   in.MeansOfVerification,
		EvidenceAvailable:     in.EvidenceAvailable,
		PoliciesInfluenced:    in.PoliciesInfluenced,
		InstitutionalChanges:  in.InstitutionalChanges,
		CommitmentsSecured:    in.CommitmentsSecured,
		MediaMentions:         in.MediaMentions,
		PublicationsProduced:  in.PublicationsProduced,
		GenderOutcomes:        in.GenderOutcomes,
		InclusionMarginalised: in.InclusionMarginalised,
		WomenLeadership:       in.WomenLeadership,
		NewPartnerships:       in.NewPartnerships,
		ExistingPartnerships:  in.ExistingPartnerships,

		Locations:     locations,
		Funders:       funders,
		ActivityTypes: types,
		ThematicFocus: thematic,
		TargetGroups:  groups,
	}

	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(a).Error
	}); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventActivityCreated,
			ActorID:   caller.UserID,
			SubjectID: a.ID,
			Title:     a.ActivityTitle,
		})
	}

	return s.Get(ctx, a.ID)
}

// Update applies the lifecycle edit guard, then patches scalar fields and
// replaces every child collection in one transaction. Fields absent from the
// input keep their prior value; the collections are always the new set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, caller Caller) (*models.Activity, error) {
	var existing models.Activity
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Activity not found")
	}
	if err != nil {
		return nil, err
	}

	if err := CanEdit(&existing, caller); err != nil {
		return nil, err
	}

	locations, start, end, err := s.resolveLocations(ctx, in.Locations)
	if err != nil {
		return nil, err
	}
	funders, err := s.resolveRefs(ctx, in.Funders, models.CategoryFunder)
	if err != nil {
		return nil, err
	}
	types, err := s.resolveRefs(ctx, in.ActivityTypes, models.CategoryActivityType)
	if err != nil {
		return nil, err
	}
	thematic, err := s.resolveRefs(ctx, in.ThematicFocus, models.CategoryThematicFocus)
	if err != nil {
		return nil, err
	}
	groups, err := s.resolveRefs(ctx, in.TargetGroups, models.CategoryTargetGroup)
	if err != nil {
		return nil, err
	}

	patch := scalarPatch(in)
	patch["activity_start_date"] = start
	patch["activity_end_date"] = end
	if in.ProjectID != nil {
		projectID, perr := uuid.Parse(*in.ProjectID)
		if perr != nil {
			return nil, apperror.Validation("Invalid projectId")
		}
		if err := s.checkProjectAccess(ctx, projectID, caller); err != nil {
			return nil, err
		}
		patch["project_id"] = projectID
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Activity{ID: existing.ID}).Updates(patch).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", existing.ID).Delete(&models.ActivityLocation{}).Error; err != nil {
			return err
		}
		for i := range locations {
			locations[i].ActivityID = existing.ID
		}
		if err := tx.Create(&locations).Error; err != nil {
			return err
		}
		owner := &models.Activity{ID: existing.ID}
		if err := tx.Model(owner).Association("Funders").Replace(toPtrs(funders)...); err != nil {
			return err
		}
		if err := tx.Model(owner).Association("ActivityTypes").Replace(toPtrs(types)...); err != nil {
			return err
		}
		if err := tx.Model(owner).Association("ThematicFocus").Replace(toPtrs(thematic)...); err != nil {
			return err
		}
		return tx.Model(owner).Association("TargetGroups").Replace(toPtrs(groups)...)
	})
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}

	return s.Get(ctx, existing.ID)
}

// Submit moves the activity to SUBMITTED per the lifecycle guards. A
// manager must also be a member of the activity's project.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, caller Caller) (*models.Activity, error) {
	var a models.Activity
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Activity not found")
	}
	if err != nil {
		return nil, err
	}

	if caller.Role == models.RoleManager && caller.UserID != a.CreatedByID {
		member, merr := s.isProjectMember(ctx, caller.UserID, a.ProjectID)
		if merr != nil {
			return nil, merr
		}
		if !member {
			return nil, apperror.Forbidden("No access to this project")
		}
	}

	if err := Submit(&a, caller); err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(&a).Updates(map[string]interface{}{
		"status":           a.Status,
		"rejection_reason": a.RejectionReason,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, a.ID)
}

// Decide validates or rejects a submitted activity and records the reviewer.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, caller Caller, status, rejectionReason string) (*models.Activity, error) {
	var a models.Activity
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Activity not found")
	}
	if err != nil {
		return nil, err
	}

	if err := Decide(&a, caller, status, rejectionReason); err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(&a).Updates(map[string]interface{}{
		"status":           a.Status,
		"validated_by_id":  a.ValidatedByID,
		"rejection_reason": a.RejectionReason,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, a.ID)
}

// Delete hard-deletes the aggregate and all child rows. Role gating (ADMIN
// only) happens at the route.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var a models.Activity
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return apperror.NotFound("Activity not found")
	}
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, join := range []string{
			models.JoinActivityFunders,
			models.JoinActivityTypes,
			models.JoinActivityThematicFocus,
			models.JoinActivityTargetGroups,
		} {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE activity_id = ?", join), a.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("activity_id = ?", a.ID).Delete(&models.ActivityLocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
}

// checkProjectAccess verifies the project exists and, for non-admins, that
// the caller is a member of it.
func (s *Service) checkProjectAccess(ctx context.Context, projectID uuid.UUID, caller Caller) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperror.Validation("Invalid request", apperror.FieldDetail{Field: "projectId", Message: "project not found"})
	}
	if caller.Role == models.RoleAdmin {
		return nil
	}
	member, err := s.isProjectMember(ctx, caller.UserID, projectID)
	if err != nil {
		return err
	}
	if !member {
		return apperror.Forbidden("No access to this project")
	}
	return nil
}

func (s *Service) isProjectMember(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.UserProject{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	return count > 0, err
}

// resolveRefs loads the referenced taxonomy items and checks each one
// belongs to the expected category.
func (s *Service) resolveRefs(ctx context.Context, rawIDs []string, category models.Category) ([]models.ReferenceItem, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.Validation("Invalid request", apperror.FieldDetail{Field: string(category), Message: "must contain valid UUIDs"})
		}
		ids = append(ids, id)
	}

	var items []models.ReferenceItem
	if err := s.DB.WithContext(ctx).Where("id IN ? AND category = ?", ids, category).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		return nil, apperror.Validation("Invalid request", apperror.FieldDetail{
			Field:   string(category),
			Message: fmt.Sprintf("one or more items are not known %s entries", category),
		})
	}
	return items, nil
}

// resolveLocations validates each location's geographic chain (region's
// parent must be the country, city's parent must be the region) and returns
// the rows plus the earliest start date and its matching end date.
func (s *Service) resolveLocations(ctx context.Context, in []LocationInput) ([]models.ActivityLocation, *datatypes.Date, *datatypes.Date, error) {
	locations := make([]models.ActivityLocation, 0, len(in))
	var earliestStart, matchingEnd *time.Time

	for i, loc := range in {
		countryID, err := uuid.Parse(loc.CountryID)
		if err != nil {
			return nil, nil, nil, locationErr(i, "countryId must be a valid UUID")
		}
		country, err := s.getRef(ctx, countryID)
		if err != nil {
			return nil, nil, nil, err
		}
		if country == nil || country.Category != models.CategoryCountry {
			return nil, nil, nil, locationErr(i, "countryId is not a known country")
		}

		row := models.ActivityLocation{CountryID: countryID}

		if loc.RegionID != nil && *loc.RegionID != "" {
			regionID, err := uuid.Parse(*loc.RegionID)
			if err != nil {
				return nil, nil, nil, locationErr(i, "regionId must be a valid UUID")
			}
			region, err := s.getRef(ctx, regionID)
			if err != nil {
				return nil, nil, nil, err
			}
			if region == nil || region.Category != models.CategoryRegion {
				return nil, nil, nil, locationErr(i, "regionId is not a known region")
			}
			if region.ParentID == nil || *region.ParentID != countryID {
				return nil, nil, nil, locationErr(i, "region does not belong to the given country")
			}
			row.RegionID = &regionID

			if loc.CityID != nil && *loc.CityID != "" {
				cityID, err := uuid.Parse(*loc.CityID)
				if err != nil {
					return nil, nil, nil, locationErr(i, "cityId must be a valid UUID")
				}
				city, err := s.getRef(ctx, cityID)
				if err != nil {
					return nil, nil, nil, err
				}
				if city == nil || city.Category != models.CategoryCity {
					return nil, nil, nil, locationErr(i, "cityId is not a known city")
				}
				if city.ParentID == nil || *city.ParentID != regionID {
					return nil, nil, nil, locationErr(i, "city does not belong to the given region")
				}
				row.CityID = &cityID
			}
		} else if loc.CityID != nil && *loc.CityID != "" {
			return nil, nil, nil, locationErr(i, "cityId requires a regionId")
		}

		start, err := time.Parse("2006-01-02", loc.DateStart)
		if err != nil {
			return nil, nil, nil, locationErr(i, "dateStart must be a date in YYYY-MM-DD format")
		}
		row.DateStart = datatypes.Date(start)

		var end *time.Time
		if loc.DateEnd != nil && *loc.DateEnd != "" {
			e, err := time.Parse("2006-01-02", *loc.DateEnd)
			if err != nil {
				return nil, nil, nil, locationErr(i, "dateEnd must be a date in YYYY-MM-DD format")
			}
			if e.Before(start) {
				return nil, nil, nil, locationErr(i, "dateEnd must not be before dateStart")
			}
			d := datatypes.Date(e)
			row.DateEnd = &d
			end = &e
		}

		if earliestStart == nil || start.Before(*earliestStart) {
			earliestStart = &start
			matchingEnd = end
		}

		locations = append(locations, row)
	}

	var startDate, endDate *datatypes.Date
	if earliestStart != nil {
		d := datatypes.Date(*earliestStart)
		startDate = &d
	}
	if matchingEnd != nil {
		d := datatypes.Date(*matchingEnd)
		endDate = &d
	}
	return locations, startDate, endDate, nil
}

func (s *Service) getRef(ctx context.Context, id uuid.UUID) (*models.ReferenceItem, error) {
	var item models.ReferenceItem
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func locationErr(index int, message string) error {
	return apperror.Validation("Invalid location", apperror.FieldDetail{
		Field:   fmt.Sprintf("locations.%d", index),
		Message: message,
	})
}

// scalarPatch collects the set scalar fields into a column update map.
func scalarPatch(in UpdateInput) map[string]interface{} {
	patch := map[string]interface{}{}
	setStr := func(col string, v *string) {
		if v != nil {
			patch[col] = *v
		}
	}
	setInt := func(col string, v *int) {
		if v != nil {
			patch[col] = *v
		}
	}

	setStr("activity_title", in.ActivityTitle)
	setInt("male_count", in.MaleCount)
	setInt("female_count", in.FemaleCount)
	setInt("non_binary_count", in.NonBinaryCount)
	setInt("age_under_25", in.AgeUnder25)
	setInt("age_25_to_40", in.Age25to40)
	setInt("age_40_plus", in.Age40plus)
	setInt("disability_yes", in.DisabilityYes)
	setInt("disability_no", in.DisabilityNo)
	setStr("key_outputs", in.KeyOutputs)
	setStr("immediate_outcomes", in.ImmediateOutcomes)
	setStr("skills_gained", in.SkillsGained)
	setStr("actions_taken", in.ActionsTaken)
	setStr("means_of_verification", in.MeansOfVerification)
	setStr("evidence_available", in.EvidenceAvailable)
	setStr("policies_influenced", in.PoliciesInfluenced)
	setStr("institutional_changes", in.InstitutionalChanges)
	setStr("commitments_secured", in.CommitmentsSecured)
	setStr("media_mentions", in.MediaMentions)
	setStr("publications_produced", in.PublicationsProduced)
	setStr("gender_outcomes", in.GenderOutcomes)
	setStr("inclusion_marginalised", in.InclusionMarginalised)
	setStr("women_leadership", in.WomenLeadership)
	setStr("new_partnerships", in.NewPartnerships)
	setStr("existing_partnerships", in.ExistingPartnerships)
	return patch
}

func toPtrs(items []models.ReferenceItem) []interface{} {
	out := make([]interface{}, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
