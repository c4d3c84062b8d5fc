package route

import "strings"

// Entry is a route with its full path and effective metadata.
type Entry struct {
	FullPath string
	Name     string
	// Redirect is the absolute redirect target, if any.
	Redirect string
	Meta     Meta
	Depth    int
}

// MenuItem is a navigable, visible entry of the side menu.
type MenuItem struct {
	Title      string     `json:"title"`
	Icon       string     `json:"icon,omitempty"`
	Path       string     `json:"path"`
	ActiveMenu string     `json:"activeMenu,omitempty"`
	Children   []MenuItem `json:"children,omitempty"`
}

// Flatten lists every route depth-first with joined full paths.
// RequiresAuth is inherited from ancestors.
func Flatten(tree []Node) []Entry {
	var out []Entry
	flatten(tree, "", false, 0, &out)
	return out
}

func flatten(nodes []Node, parent string, requiresAuth bool, depth int, out *[]Entry) {
	for _, n := range nodes {
		full := JoinPath(parent, n.Path)
		meta := n.Meta.clone()
		meta.RequiresAuth = meta.RequiresAuth || requiresAuth
		e := Entry{
			FullPath: full,
			Name:     n.Name,
			Meta:     meta,
			Depth:    depth,
		}
		if n.Redirect != "" {
			e.Redirect = resolveRedirect(parent, n.Redirect)
		}
		*out = append(*out, e)
		flatten(n.Children, full, meta.RequiresAuth, depth+1, out)
	}
}

func resolveRedirect(parent, redirect string) string {
	if strings.HasPrefix(redirect, "/") {
		return redirect
	}
	return JoinPath(parent, redirect)
}

// Menu builds the side menu from tree. Hidden routes are skipped and the
// children of untitled wrapper routes are lifted to the wrapper's level.
func Menu(tree []Node) []MenuItem {
	return menu(tree, "")
}

func menu(nodes []Node, parent string) []MenuItem {
	var out []MenuItem
	for _, n := range nodes {
		if n.Meta.Hidden {
			continue
		}
		full := JoinPath(parent, n.Path)
		children := menu(n.Children, full)
		if n.Meta.Title == "" {
			out = append(out, children...)
			continue
		}
		out = append(out, MenuItem{
			Title:      n.Meta.Title,
			Icon:       n.Meta.Icon,
			Path:       full,
			ActiveMenu: n.Meta.ActiveMenu,
			Children:   children,
		})
	}
	return out
}
