package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"impact-backend/internal/activities"
	"impact-backend/internal/models"
	"impact-backend/internal/scope"

	"gorm.io/gorm"
)

// Service computes the four aggregate views. Each view re-applies the
// caller's scope plus the shared filters; nothing is cached.
type Service struct {
	DB *gorm.DB
}

// Stats is the headline view: totals, per-status counts and the summed
// participant count over the matching set.
type Stats struct {
	TotalActivities     int64 `json:"totalActivities"`
	DraftActivities     int64 `json:"draftActivities"`
	SubmittedActivities int64 `json:"submittedActivities"`
	ValidatedActivities int64 `json:"validatedActivities"`
	RejectedActivities  int64 `json:"rejectedActivities"`
	TotalParticipants   int64 `json:"totalParticipants"`
}

// StatusCount is one row of the status breakdown. The breakdown is dense:
// every status is reported even with a zero count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GenderCount is one row of the gender breakdown, a raw sum over the
// matching activities rather than a per-activity average.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int64  `json:"count"`
}

// TrendPoint is one month of the creation trend. The series is sparse:
// months without activities are omitted.
type TrendPoint struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

func (s *Service) base(ctx context.Context, sc *scope.Scope, f activities.Filters) *gorm.DB {
	return f.Apply(sc.Apply(s.DB.WithContext(ctx).Model(&models.Activity{})))
}

func (s *Service) statusCounts(ctx context.Context, sc *scope.Scope, f activities.Filters) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.base(ctx, sc, f).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

type genderSums struct {
	Male      int64
	Female    int64
	NonBinary int64
}

func (s *Service) genderSums(ctx context.Context, sc *scope.Scope, f activities.Filters) (genderSums, error) {
	var sums genderSums
	err := s.base(ctx, sc, f).
		Select("COALESCE(SUM(male_count), 0) AS male, COALESCE(SUM(female_count), 0) AS female, COALESCE(SUM(non_binary_count), 0) AS non_binary").
		Scan(&sums).Error
	return sums, err
}

// GetStats returns the headline counts for the scoped, filtered set.
func (s *Service) GetStats(ctx context.Context, sc *scope.Scope, f activities.Filters) (*Stats, error) {
	var total int64
	if err := s.base(ctx, sc, f).Count(&total).Error; err != nil {
		return nil, err
	}
	counts, err := s.statusCounts(ctx, sc, f)
	if err != nil {
		return nil, err
	}
	sums, err := s.genderSums(ctx, sc, f)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalActivities:     total,
		DraftActivities:     counts[models.StatusDraft],
		SubmittedActivities: counts[models.StatusSubmitted],
		ValidatedActivities: counts[models.StatusValidated],
		RejectedActivities:  counts[models.StatusRejected],
		TotalParticipants:   sums.Male + sums.Female + sums.NonBinary,
	}, nil
}

// ActivitiesByStatus returns the dense status breakdown, all four statuses.
func (s *Service) ActivitiesByStatus(ctx context.Context, sc *scope.Scope, f activities.Filters) ([]StatusCount, error) {
	counts, err := s.statusCounts(ctx, sc, f)
	if err != nil {
		return nil, err
	}
	out := make([]StatusCount, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out, nil
}

// ParticipantsByGender returns the summed demographic counts.
func (s *Service) ParticipantsByGender(ctx context.Context, sc *scope.Scope, f activities.Filters) ([]GenderCount, error) {
	sums, err := s.genderSums(ctx, sc, f)
	if err != nil {
		return nil, err
	}
	return []GenderCount{
		{Gender: "Male", Count: sums.Male},
		{Gender: "Female", Count: sums.Female},
		{Gender: "Non-Binary", Count: sums.NonBinary},
	}, nil
}

// ActivitiesTrend buckets the matching activities by creation month,
// ascending. Bucketing happens in Go so the query stays portable across
// the production and test drivers.
func (s *Service) ActivitiesTrend(ctx context.Context, sc *scope.Scope, f activities.Filters) ([]TrendPoint, error) {
	var createdAts []time.Time
	if err := s.base(ctx, sc, f).Pluck("created_at", &createdAts).Error; err != nil {
		return nil, err
	}

	buckets := map[string]int64{}
	for _, t := range createdAts {
		key := fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
		buckets[key]++
	}

	out := make([]TrendPoint, 0, len(buckets))
	for month, count := range buckets {
		out = append(out, TrendPoint{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
