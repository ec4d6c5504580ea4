package scope

import (
	"impact-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is the visibility predicate computed from a caller's role and
// project memberships. It is combined (AND) with any caller-supplied
// filters before a query runs.
type Scope struct {
	role       string
	userID     uuid.UUID
	projectIDs []uuid.UUID
}

// Resolve computes the scope for a caller. A MANAGER with zero memberships
// resolves to a predicate matching no rows, not an error.
func Resolve(db *gorm.DB, userID uuid.UUID, role string) (*Scope, error) {
	s := &Scope{role: role, userID: userID}
	if role == models.RoleManager {
		ids, err := ProjectIDsFor(db, userID)
		if err != nil {
			return nil, err
		}
		s.projectIDs = ids
	}
	return s, nil
}

// ProjectIDsFor returns the IDs of every project the user is a member of.
func ProjectIDsFor(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&models.UserProject{}).Where("user_id = ?", userID).Pluck("project_id", &ids).Error
	return ids, err
}

// Apply narrows an activity (or finance) query to the rows this scope may
// see. ADMIN passes the query through unchanged.
func (s *Scope) Apply(q *gorm.DB) *gorm.DB {
	switch s.role {
	case models.RoleField:
		return q.Where("created_by_id = ?", s.userID)
	case models.RoleManager:
		if len(s.projectIDs) == 0 {
			return q.Where("1 = 0")
		}
		return q.Where("project_id IN ?", s.projectIDs)
	default:
		return q
	}
}

// ApplyProjects narrows by project membership only, for aggregates keyed by
// project rather than creator (finance records).
func (s *Scope) ApplyProjects(q *gorm.DB) *gorm.DB {
	if s.role == models.RoleAdmin {
		return q
	}
	if len(s.projectIDs) == 0 {
		return q.Where("1 = 0")
	}
	return q.Where("project_id IN ?", s.projectIDs)
}

// HasProject reports whether the scope grants access to projectID. ADMIN
// always has access; FIELD access is row-level, so project filters pass
// through and the creator predicate still applies.
func (s *Scope) HasProject(projectID uuid.UUID) bool {
	if s.role != models.RoleManager {
		return true
	}
	for _, id := range s.projectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// Role returns the role this scope was resolved for.
func (s *Scope) Role() string {
	return s.role
}

// UserID returns the caller this scope was resolved for.
func (s *Scope) UserID() uuid.UUID {
	return s.userID
}
