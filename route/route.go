package route

import (
	"path"
	"strings"
)

// Meta is the display and access metadata attached to a route.
type Meta struct {
	Title        string   `yaml:"title,omitempty" json:"title,omitempty"`
	Icon         string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Hidden       bool     `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	RequiresAuth bool     `yaml:"requiresAuth,omitempty" json:"requiresAuth,omitempty"`
	Roles        []string `yaml:"roles,omitempty" json:"roles,omitempty"`
	ActiveMenu   string   `yaml:"activeMenu,omitempty" json:"activeMenu,omitempty"`
}

// Public reports whether the route requires no role.
func (m Meta) Public() bool {
	return len(m.Roles) == 0
}

func (m Meta) clone() Meta {
	out := m
	if m.Roles != nil {
		out.Roles = append([]string(nil), m.Roles...)
	}
	return out
}

// Node is one entry of a static route tree. Child paths are relative to the
// parent unless they start with "/".
type Node struct {
	Path     string `yaml:"path" json:"path"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Redirect string `yaml:"redirect,omitempty" json:"redirect,omitempty"`
	Meta     Meta   `yaml:"meta,omitempty" json:"meta,omitempty"`
	Children []Node `yaml:"children,omitempty" json:"children,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Meta = n.Meta.clone()
	out.Children = CloneTree(n.Children)
	return out
}

// CloneTree returns a deep copy of tree.
func CloneTree(tree []Node) []Node {
	if tree == nil {
		return nil
	}
	out := make([]Node, len(tree))
	for i := range tree {
		out[i] = tree[i].Clone()
	}
	return out
}

// JoinPath resolves child against parent the way nested routes do: absolute
// children stand alone, relative ones are appended.
func JoinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return cleanPath(child)
	}
	if child == "" {
		return cleanPath(parent)
	}
	if parent == "" {
		return cleanPath("/" + child)
	}
	return cleanPath(parent + "/" + child)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}
