package navigation

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hackboard/go-session-client/identity"
	apperrors "github.com/hackboard/go-session-client/internal/errors"
)

// Child is a route grouped under a dropdown entry. Children inherit the
// parent entry's role list and never declare their own.
type Child struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path" json:"path"`
}

// Entry is one item of the navigation manifest: either a direct route (Path
// set) or a dropdown grouping child routes. An entry with neither a path nor
// children is invalid.
type Entry struct {
	Label    string          `yaml:"label" json:"label"`
	Path     string          `yaml:"path,omitempty" json:"path,omitempty"`
	Roles    []identity.Role `yaml:"roles" json:"roles"`
	Children []Child         `yaml:"children,omitempty" json:"children,omitempty"`
}

// Manifest is the ordered, declarative navigation table. It is fixed at
// startup and never mutated afterwards.
type Manifest []Entry

// Default returns the built-in hackboard navigation.
func Default() Manifest {
	return Manifest{
		{
			Label: "Dashboard",
			Path:  "/dashboard",
			Roles: identity.AllRoles(),
		},
		{
			Label: "Hackathons",
			Path:  "/hackathons",
			Roles: identity.AllRoles(),
		},
		{
			Label: "Challenges",
			Roles: []identity.Role{identity.RoleAdmin, identity.RoleSponsor},
			Children: []Child{
				{Label: "All Challenges", Path: "/challenges/manage"},
				{Label: "Create Challenge", Path: "/challenges/create"},
			},
		},
		{
			Label: "Submissions",
			Roles: []identity.Role{identity.RoleParticipant},
			Children: []Child{
				{Label: "My Submissions", Path: "/submissions/mine"},
				{Label: "New Submission", Path: "/submissions/new"},
			},
		},
		{
			Label: "Teams",
			Path:  "/teams",
			Roles: []identity.Role{identity.RoleParticipant},
		},
		{
			Label: "Judging",
			Path:  "/judging",
			Roles: []identity.Role{identity.RoleJudge},
		},
		{
			Label: "Administration",
			Roles: []identity.Role{identity.RoleAdmin},
			Children: []Child{
				{Label: "Users", Path: "/admin/users"},
				{Label: "Invites", Path: "/admin/invites"},
				{Label: "Settings", Path: "/admin/settings"},
			},
		},
	}
}

// Load reads a manifest override from YAML. The result is validated.
func Load(r io.Reader) (Manifest, error) {
	var manifest Manifest
	if err := yaml.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, errors.Wrap(err, "[navigation.Load] decode manifest")
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// LoadFile reads a manifest override from a YAML file.
func LoadFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "[navigation.LoadFile] open manifest")
	}
	defer f.Close()
	return Load(f)
}

// Validate enforces the manifest invariants: every entry has a path or
// children, every role names a known role, and no path is bound twice.
func (m Manifest) Validate() error {
	seen := make(map[string]struct{})

	bind := func(path string) error {
		if _, ok := seen[path]; ok {
			return errors.Wrapf(apperrors.ErrDuplicateRoute, "[Manifest.Validate] %q", path)
		}
		seen[path] = struct{}{}
		return nil
	}

	for _, entry := range m {
		if entry.Path == "" && len(entry.Children) == 0 {
			return errors.Wrapf(apperrors.ErrInvalidManifest, "[Manifest.Validate] entry %q has neither path nor children", entry.Label)
		}
		for _, role := range entry.Roles {
			if _, ok := identity.ParseRole(string(role)); !ok {
				return errors.Wrapf(apperrors.ErrInvalidRole, "[Manifest.Validate] entry %q role %q", entry.Label, role)
			}
		}
		if entry.Path != "" {
			if err := bind(entry.Path); err != nil {
				return err
			}
		}
		for _, child := range entry.Children {
			if child.Path == "" {
				return errors.Wrapf(apperrors.ErrInvalidManifest, "[Manifest.Validate] entry %q child %q has no path", entry.Label, child.Label)
			}
			if err := bind(child.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// VisibleEntries filters the manifest down to the entries whose role list
// contains role, for layout-level navigation rendering. An invalid role sees
// nothing.
func (m Manifest) VisibleEntries(role identity.Role) Manifest {
	if _, ok := identity.ParseRole(string(role)); !ok {
		return nil
	}
	visible := make(Manifest, 0, len(m))
	for _, entry := range m {
		for _, allowed := range entry.Roles {
			if allowed == role {
				visible = append(visible, entry)
				break
			}
		}
	}
	return visible
}
