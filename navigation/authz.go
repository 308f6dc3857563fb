package navigation

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hackboard/go-session-client/identity"
)

// Authorizer is the route-authorization map derived from a Manifest. It binds
// every reachable path to the roles allowed there and answers access checks
// as a pure function: no I/O, deterministic, cacheable for the process
// lifetime since the manifest is static.
type Authorizer struct {
	paths []string // bound paths, manifest order; prefix scan follows this order
	roles map[string][]identity.Role
}

// NewAuthorizer validates the manifest and builds the authorization map.
func NewAuthorizer(manifest Manifest) (*Authorizer, error) {
	if len(manifest) == 0 {
		return nil, errors.New("[NewAuthorizer] manifest is required")
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	a := &Authorizer{roles: make(map[string][]identity.Role)}

	for _, entry := range manifest {
		if entry.Path != "" {
			a.bind(entry.Path, entry.Roles)
		}
		if len(entry.Children) > 0 {
			// The section root is implied by the first child: its path with
			// the final segment stripped. Binding it lets prefix checks pass
			// even when nothing is routed at the root itself.
			if root := sectionRoot(entry.Children[0].Path); root != "" {
				a.bind(root, entry.Roles)
			}
			for _, child := range entry.Children {
				a.bind(child.Path, entry.Roles)
			}
		}
	}
	return a, nil
}

func (a *Authorizer) bind(path string, roles []identity.Role) {
	if _, ok := a.roles[path]; ok {
		return
	}
	a.paths = append(a.paths, path)
	a.roles[path] = append([]identity.Role(nil), roles...)
}

// sectionRoot strips the final segment from a child path: "/admin/users"
// implies the "/admin" section. Paths with a single segment have no root.
func sectionRoot(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}

// CanAccessPath reports whether role may reach path. An exact binding wins;
// otherwise the first bound path (manifest order) that is an ancestor prefix
// of path decides. Unknown paths and invalid roles are denied.
func (a *Authorizer) CanAccessPath(path string, role identity.Role) bool {
	if path == "" {
		return false
	}
	if _, ok := identity.ParseRole(string(role)); !ok {
		return false
	}

	if roles, ok := a.roles[path]; ok {
		return containsRole(roles, role)
	}
	for _, bound := range a.paths {
		if strings.HasPrefix(path, bound+"/") {
			return containsRole(a.roles[bound], role)
		}
	}
	return false
}

// AllowedRoles returns the role list bound at exactly path.
func (a *Authorizer) AllowedRoles(path string) ([]identity.Role, bool) {
	roles, ok := a.roles[path]
	if !ok {
		return nil, false
	}
	return append([]identity.Role(nil), roles...), true
}

// BuildMap returns a copy of the path-to-roles map. Two authorizers built
// from the same manifest produce pointwise-equal maps.
func (a *Authorizer) BuildMap() map[string][]identity.Role {
	built := make(map[string][]identity.Role, len(a.roles))
	for path, roles := range a.roles {
		built[path] = append([]identity.Role(nil), roles...)
	}
	return built
}

func containsRole(roles []identity.Role, role identity.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
