package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolePerms() Tree {
	return Tree{
		"accounts": map[string]any{
			"role": map[string]any{"view": true, "create": false, "edit": false, "delete": false},
		},
	}
}

func TestHasPermissionNilTreeDenied(t *testing.T) {
	require.False(t, HasPermission(nil, "/dashboard"))
	require.False(t, HasPermission(nil, "/profile"))
}

func TestHasPermissionUnmappedRouteAllowed(t *testing.T) {
	for _, perms := range []Tree{{}, rolePerms(), {"dashboard": map[string]any{"view": false}}} {
		require.True(t, HasPermission(perms, "/profile"))
		require.True(t, HasPermission(perms, "/change-password"))
		require.True(t, HasPermission(perms, "/"))
	}
}

func TestHasPermissionPrefixInheritance(t *testing.T) {
	perms := Tree{"dashboard": map[string]any{"view": true}}

	require.True(t, HasPermission(perms, "/dashboard/LOT-55"))
	require.True(t, HasPermission(perms, "/dashboard/LOT-55/entries"))
	// a shared prefix without the separator does not match
	require.True(t, HasPermission(Tree{}, "/dashboards"))
}

func TestHasPermissionRoleScenario(t *testing.T) {
	perms := rolePerms()

	require.True(t, HasPermission(perms, "/accounts/role"))
	require.False(t, HasPermission(perms, "/accounts/user"))
	require.False(t, HasPermission(perms, "/accounts/role/add"))
	require.False(t, HasPermission(perms, "/accounts/role/edit/42"))
}

func TestHasPermissionNormalizesRoute(t *testing.T) {
	perms := Tree{"dashboard": map[string]any{"view": true}}

	assert.True(t, HasPermission(perms, "/dashboard/"))
	assert.True(t, HasPermission(perms, "/dashboard?lot=A"))
	assert.True(t, HasPermission(perms, "/dashboard/?lot=A"))
	assert.False(t, HasPermission(Tree{}, "/dashboard?x=1"))
}

func TestPathForLongestPrefix(t *testing.T) {
	tests := []struct {
		route string
		path  string
		ok    bool
	}{
		{"/master/category", CategoryView, true},
		{"/master/category/7", CategoryView, true},
		{"/master/category/add", CategoryCreate, true},
		{"/master/category/edit/7", CategoryEdit, true},
		{"/master/party/edit/9/", PartyEdit, true},
		{"/out-entry", OutEntryCreate, true},
		{"/profile", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			path, ok := PathFor(tt.route)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.path, path)
		})
	}
}

func TestNormalizeRoute(t *testing.T) {
	assert.Equal(t, "/", NormalizeRoute(""))
	assert.Equal(t, "/", NormalizeRoute("/"))
	assert.Equal(t, "/", NormalizeRoute("/?next=/dashboard"))
	assert.Equal(t, "/in-entry", NormalizeRoute("/in-entry/"))
}

func TestResolveStrictBoolean(t *testing.T) {
	perms := Tree{
		"dashboard": map[string]any{"view": "true"},
		"inEntry":   map[string]any{"create": 1},
		"outEntry":  true,
		"master":    map[string]any{"category": map[string]any{"view": true}},
	}

	assert.False(t, Resolve(perms, DashboardView))
	assert.False(t, Resolve(perms, InEntryCreate))
	assert.False(t, Resolve(perms, OutEntryCreate))
	assert.False(t, Resolve(perms, "master.category"))
	assert.False(t, Resolve(perms, "master.party.view"))
	assert.False(t, Resolve(perms, ""))
	assert.True(t, Resolve(perms, CategoryView))
}

func TestRoutesReturnsCopy(t *testing.T) {
	r := Routes()
	r[0].Path = "tampered"
	path, ok := PathFor("/dashboard")
	require.True(t, ok)
	require.Equal(t, DashboardView, path)
}
