package permission

// NavItem is an entry of the application menu. Leaves carry an Href,
// collapsible parents carry Children.
type NavItem struct {
	Title    string    `json:"title"`
	Href     string    `json:"href,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// Navigation is the full application menu.
var Navigation = []NavItem{
	{Title: "Dashboard", Href: "/dashboard", Icon: "dashboard"},
	{Title: "In Entry", Href: "/in-entry", Icon: "download"},
	{Title: "Out Entry", Href: "/out-entry", Icon: "upload"},
	{Title: "Master", Icon: "database", Children: []NavItem{
		{Title: "Category", Href: "/master/category"},
		{Title: "Party", Href: "/master/party"},
	}},
	{Title: "Accounts", Icon: "users", Children: []NavItem{
		{Title: "User", Href: "/accounts/user"},
		{Title: "Role", Href: "/accounts/role"},
	}},
}

// CanAccessNavigationItem reports whether item should be shown. A parent is
// shown when any of its children's routes is granted.
func CanAccessNavigationItem(perms Tree, item NavItem) bool {
	if item.Href != "" {
		return HasPermission(perms, item.Href)
	}
	for _, child := range item.Children {
		if child.Href != "" && HasPermission(perms, child.Href) {
			return true
		}
	}
	return false
}

// FilterNavigation returns the menu as visible to perms, with parents
// reduced to their accessible children.
func FilterNavigation(perms Tree, items []NavItem) []NavItem {
	res := make([]NavItem, 0, len(items))
	for _, item := range items {
		if !CanAccessNavigationItem(perms, item) {
			continue
		}
		if len(item.Children) > 0 {
			children := make([]NavItem, 0, len(item.Children))
			for _, child := range item.Children {
				if child.Href != "" && HasPermission(perms, child.Href) {
					children = append(children, child)
				}
			}
			item.Children = children
		}
		res = append(res, item)
	}
	return res
}
