package navigation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackboard/go-session-client/identity"
	apperrors "github.com/hackboard/go-session-client/internal/errors"
	"github.com/hackboard/go-session-client/navigation"
)

func TestManifest_Validate(t *testing.T) {
	t.Run("default manifest is valid", func(t *testing.T) {
		require.NoError(t, navigation.Default().Validate())
	})

	t.Run("entry without path or children", func(t *testing.T) {
		m := navigation.Manifest{{Label: "Ghost", Roles: []identity.Role{identity.RoleAdmin}}}
		require.ErrorIs(t, m.Validate(), apperrors.ErrInvalidManifest)
	})

	t.Run("unknown role", func(t *testing.T) {
		m := navigation.Manifest{{Label: "X", Path: "/x", Roles: []identity.Role{"root"}}}
		require.ErrorIs(t, m.Validate(), apperrors.ErrInvalidRole)
	})

	t.Run("duplicate path across entries", func(t *testing.T) {
		m := navigation.Manifest{
			{Label: "A", Path: "/x", Roles: []identity.Role{identity.RoleAdmin}},
			{Label: "B", Roles: []identity.Role{identity.RoleJudge}, Children: []navigation.Child{{Label: "C", Path: "/x"}}},
		}
		require.ErrorIs(t, m.Validate(), apperrors.ErrDuplicateRoute)
	})

	t.Run("child without path", func(t *testing.T) {
		m := navigation.Manifest{
			{Label: "A", Roles: []identity.Role{identity.RoleAdmin}, Children: []navigation.Child{{Label: "C"}}},
		}
		require.ErrorIs(t, m.Validate(), apperrors.ErrInvalidManifest)
	})
}

func TestManifest_VisibleEntries(t *testing.T) {
	manifest := navigation.Default()

	t.Run("judge sees only judge sections", func(t *testing.T) {
		visible := manifest.VisibleEntries(identity.RoleJudge)
		labels := make([]string, 0, len(visible))
		for _, entry := range visible {
			labels = append(labels, entry.Label)
		}
		require.Equal(t, []string{"Dashboard", "Hackathons", "Judging"}, labels)
	})

	t.Run("invalid role sees nothing", func(t *testing.T) {
		require.Empty(t, manifest.VisibleEntries(identity.Role("root")))
	})
}

func TestLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		const doc = `
- label: Dashboard
  path: /dashboard
  roles: [admin, sponsor, participant, judge]
- label: Challenges
  roles: [admin, sponsor]
  children:
    - label: Manage
      path: /challenges/manage
`
		manifest, err := navigation.Load(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, manifest, 2)
		require.Equal(t, "/dashboard", manifest[0].Path)
		require.Equal(t, []identity.Role{identity.RoleAdmin, identity.RoleSponsor}, manifest[1].Roles)
		require.Equal(t, "/challenges/manage", manifest[1].Children[0].Path)
	})

	t.Run("invalid documents are rejected", func(t *testing.T) {
		_, err := navigation.Load(strings.NewReader(`- label: Ghost`))
		require.Error(t, err)

		_, err = navigation.Load(strings.NewReader(`{notyaml`))
		require.Error(t, err)
	})
}
