// Package permission decides whether a role's permission tree grants access
// to an application route.
package permission

import (
	"strings"
)

// Tree is a nested permission document, e.g.
// {"accounts": {"role": {"view": true}}}.
type Tree = map[string]any

// Dot paths of the fixed permission tree.
const (
	DashboardView  = "dashboard.view"
	InEntryCreate  = "inEntry.create"
	OutEntryCreate = "outEntry.create"
	CategoryView   = "master.category.view"
	CategoryCreate = "master.category.create"
	CategoryEdit   = "master.category.edit"
	CategoryDelete = "master.category.delete"
	PartyView      = "master.party.view"
	PartyCreate    = "master.party.create"
	PartyEdit      = "master.party.edit"
	PartyDelete    = "master.party.delete"
	UserView       = "accounts.user.view"
	UserCreate     = "accounts.user.create"
	UserEdit       = "accounts.user.edit"
	UserDelete     = "accounts.user.delete"
	RoleView       = "accounts.role.view"
	RoleCreate     = "accounts.role.create"
	RoleEdit       = "accounts.role.edit"
	RoleDelete     = "accounts.role.delete"
)

// Route maps an application route to the permission guarding it.
type Route struct {
	Prefix string
	Path   string
}

// routes is the managed permission surface. Sub-routes inherit the entry
// with the longest matching prefix.
var routes = []Route{
	{"/dashboard", DashboardView},
	{"/in-entry", InEntryCreate},
	{"/out-entry", OutEntryCreate},
	{"/master/category", CategoryView},
	{"/master/category/add", CategoryCreate},
	{"/master/category/edit", CategoryEdit},
	{"/master/party", PartyView},
	{"/master/party/add", PartyCreate},
	{"/master/party/edit", PartyEdit},
	{"/accounts/user", UserView},
	{"/accounts/user/add", UserCreate},
	{"/accounts/user/edit", UserEdit},
	{"/accounts/role", RoleView},
	{"/accounts/role/add", RoleCreate},
	{"/accounts/role/edit", RoleEdit},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// HasPermission reports whether perms grants access to route.
//
// A nil tree is always denied. A route outside the table is always allowed:
// pages such as /profile carry no permission of their own. New protected
// pages must therefore be added to the table.
func HasPermission(perms Tree, route string) bool {
	if perms == nil {
		return false
	}
	path, ok := PathFor(route)
	if !ok {
		return true
	}
	return Resolve(perms, path)
}

// PathFor returns the permission path guarding route, if the route is
// managed.
func PathFor(route string) (string, bool) {
	route = NormalizeRoute(route)

	for _, r := range routes {
		if r.Prefix == route {
			return r.Path, true
		}
	}

	best := -1
	for i, r := range routes {
		if !strings.HasPrefix(route, r.Prefix+"/") {
			continue
		}
		if best < 0 || len(r.Prefix) > len(routes[best].Prefix) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return routes[best].Path, true
}

// NormalizeRoute drops the query string and any trailing slash.
func NormalizeRoute(route string) string {
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}
	route = strings.TrimRight(route, "/")
	if route == "" {
		return "/"
	}
	return route
}

// Resolve walks perms along the dot separated path. Only a final value that
// is the boolean true grants.
func Resolve(perms Tree, path string) bool {
	if perms == nil || path == "" {
		return false
	}
	var node any = perms
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return false
		}
		node, ok = m[key]
		if !ok {
			return false
		}
	}
	granted, ok := node.(bool)
	return ok && granted
}
