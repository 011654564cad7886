package permission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanAccessNavigationItem(t *testing.T) {
	perms := Tree{
		"dashboard": map[string]any{"view": true},
		"master": map[string]any{
			"party": map[string]any{"view": true},
		},
	}

	require.True(t, CanAccessNavigationItem(perms, NavItem{Href: "/dashboard"}))
	require.False(t, CanAccessNavigationItem(perms, NavItem{Href: "/in-entry"}))

	master := NavItem{Title: "Master", Children: []NavItem{
		{Href: "/master/category"},
		{Href: "/master/party"},
	}}
	accounts := NavItem{Title: "Accounts", Children: []NavItem{
		{Href: "/accounts/user"},
		{Href: "/accounts/role"},
	}}
	require.True(t, CanAccessNavigationItem(perms, master))
	require.False(t, CanAccessNavigationItem(perms, accounts))
	require.False(t, CanAccessNavigationItem(nil, master))
	require.False(t, CanAccessNavigationItem(perms, NavItem{Title: "Empty"}))
}

func TestFilterNavigation(t *testing.T) {
	perms := Tree{
		"outEntry": map[string]any{"create": true},
		"master": map[string]any{
			"category": map[string]any{"view": true},
		},
	}

	nav := FilterNavigation(perms, Navigation)

	require.Len(t, nav, 2)
	require.Equal(t, "/out-entry", nav[0].Href)
	require.Equal(t, "Master", nav[1].Title)
	require.Len(t, nav[1].Children, 1)
	require.Equal(t, "/master/category", nav[1].Children[0].Href)

	// the shared menu is left untouched
	require.Len(t, Navigation[3].Children, 2)
}

func TestFilterNavigationNilDeniesAll(t *testing.T) {
	require.Empty(t, FilterNavigation(nil, Navigation))
}
