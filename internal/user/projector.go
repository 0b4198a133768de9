package user

import (
	"sort"

	userDatamodel "github.com/serfi-platform/user-management/internal/core/datamodel/user"
)

// ProjectorRepository is the read surface the projector needs. Lookups return
// (nil, nil) on a missing row so callers can tell "absent" from "failed".
type ProjectorRepository interface {
	GetByID(id int64) (*userDatamodel.User, error)
	GetRoleByID(id int64) (*userDatamodel.Role, error)
	GetPermissionsForRole(roleID int64) ([]*userDatamodel.Permission, error)
}

// Projector builds AuthorizationViews: user -> role -> permissions, flattened
// into one read-only structure.
type Projector struct {
	repo ProjectorRepository
}

func NewProjector(repo ProjectorRepository) *Projector {
	return &Projector{repo: repo}
}

// View resolves the flattened authorization view for a user id. A missing
// user yields (nil, nil); a user whose role row is missing still yields a
// view, with an empty role name and no permissions.
func (p *Projector) View(userID int64) (*AuthorizationView, error) {
	record, err := p.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return p.project(record)
}

func (p *Projector) project(record *userDatamodel.User) (*AuthorizationView, error) {
	view := &AuthorizationView{
		ID:          record.ID,
		Name:        record.Name,
		Email:       record.Email,
		Country:     record.Country,
		LastLoginAt: record.LastLoginAt,
		Permissions: []string{},
	}

	role, err := p.repo.GetRoleByID(record.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return view, nil
	}
	view.RoleName = role.Name

	permissions, err := p.repo.GetPermissionsForRole(role.ID)
	if err != nil {
		return nil, err
	}

	// The association table tolerated duplicate grants historically, so
	// deduplicate by permission id before flattening to names.
	seen := make(map[int64]struct{}, len(permissions))
	for _, permission := range permissions {
		if _, dup := seen[permission.ID]; dup {
			continue
		}
		seen[permission.ID] = struct{}{}
		view.Permissions = append(view.Permissions, permission.Name)
	}
	sort.Strings(view.Permissions)

	return view, nil
}
