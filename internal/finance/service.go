package finance

import (
	"context"
	"math"

	"impact-backend/internal/models"
	"impact-backend/internal/pkg/apperror"
	"impact-backend/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages project finance records. FIELD users have no finance
// access at all; MANAGER visibility follows project membership.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	ProjectID string  `json:"projectId" validate:"required,uuid"`
	Funder    string  `json:"funder" validate:"required,min=2,max=200"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"omitempty,len=3"`
	Status    string  `json:"status" validate:"required,oneof=NEW CONTINUOUS"`
	Year      int     `json:"year" validate:"required,gte=2000,lte=2100"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateInput struct {
	Funder   *string  `json:"funder" validate:"omitempty,min=2,max=200"`
	Amount   *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency *string  `json:"currency" validate:"omitempty,len=3"`
	Status   *string  `json:"status" validate:"omitempty,oneof=NEW CONTINUOUS"`
	Year     *int     `json:"year" validate:"omitempty,gte=2000,lte=2100"`
	Notes    *string  `json:"notes" validate:"omitempty,max=2000"`
}

// Overview summarizes the budget visible to the caller.
type Overview struct {
	TotalBudget   float64 `json:"totalBudget"`
	AverageBudget float64 `json:"averageBudget"`
	RecordCount   int64   `json:"recordCount"`
}

func requireFinanceAccess(sc *scope.Scope) error {
	if sc.Role() == models.RoleField {
		return apperror.Forbidden("Insufficient permissions")
	}
	return nil
}

// List returns finance records visible to the caller, newest first.
func (s *Service) List(ctx context.Context, sc *scope.Scope) ([]models.Finance, error) {
	if err := requireFinanceAccess(sc); err != nil {
		return nil, err
	}
	records := []models.Finance{}
	err := sc.ApplyProjects(s.DB.WithContext(ctx).Model(&models.Finance{})).
		Preload("Project").
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// BudgetOverview aggregates the records visible to the caller.
func (s *Service) BudgetOverview(ctx context.Context, sc *scope.Scope) (*Overview, error) {
	if err := requireFinanceAccess(sc); err != nil {
		return nil, err
	}

	var row struct {
		Total float64
		Count int64
	}
	err := sc.ApplyProjects(s.DB.WithContext(ctx).Model(&models.Finance{})).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	overview := &Overview{TotalBudget: row.Total, RecordCount: row.Count}
	if row.Count > 0 {
		overview.AverageBudget = math.Round(row.Total/float64(row.Count)*100) / 100
	}
	return overview, nil
}

// Create adds a record to a project the caller can reach.
func (s *Service) Create(ctx context.Context, sc *scope.Scope, in CreateInput) (*models.Finance, error) {
	if err := requireFinanceAccess(sc); err != nil {
		return nil, err
	}
	projectID, err := uuid.Parse(in.ProjectID)
	if err != nil {
		return nil, apperror.Validation("Invalid project id")
	}
	if !sc.HasProject(projectID) {
		return nil, apperror.Forbidden("You do not have access to this project")
	}

	var exists int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, apperror.NotFound("Project not found")
	}

	record := &models.Finance{
		ProjectID: projectID,
		Funder:    in.Funder,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Status:    in.Status,
		Year:      in.Year,
		Notes:     in.Notes,
	}
	if record.Currency == "" {
		record.Currency = "USD"
	}
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return s.get(ctx, record.ID)
}

// Update patches a record the caller can reach.
func (s *Service) Update(ctx context.Context, sc *scope.Scope, id uuid.UUID, in UpdateInput) (*models.Finance, error) {
	record, err := s.load(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if in.Funder != nil {
		patch["funder"] = *in.Funder
	}
	if in.Amount != nil {
		patch["amount"] = *in.Amount
	}
	if in.Currency != nil {
		patch["currency"] = *in.Currency
	}
	if in.Status != nil {
		patch["status"] = *in.Status
	}
	if in.Year != nil {
		patch["year"] = *in.Year
	}
	if in.Notes != nil {
		patch["notes"] = *in.Notes
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(record).Updates(patch).Error; err != nil {
			return nil, err
		}
	}
	return s.get(ctx, record.ID)
}

// Delete removes a record the caller can reach.
func (s *Service) Delete(ctx context.Context, sc *scope.Scope, id uuid.UUID) error {
	record, err := s.load(ctx, sc, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(record).Error
}

func (s *Service) load(ctx context.Context, sc *scope.Scope, id uuid.UUID) (*models.Finance, error) {
	if err := requireFinanceAccess(sc); err != nil {
		return nil, err
	}
	var record models.Finance
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperror.NotFound("Finance record not found")
	}
	if err != nil {
		return nil, err
	}
	if !sc.HasProject(record.ProjectID) {
		return nil, apperror.Forbidden("You do not have access to this project")
	}
	return &record, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*models.Finance, error) {
	var record models.Finance
	err := s.DB.WithContext(ctx).Preload("Project").Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
