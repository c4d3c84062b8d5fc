package route

import (
	"fmt"

	"github.com/MrEthical07/goNebula/permission"
)

// Assembler filters a fixed route tree against role sets.
//
// The source tree is copied at construction and never mutated. Role names are
// compiled to a frozen [permission.Registry] once; each Filter call only reads
// it, so concurrent and repeated filtering with different role sets is safe.
type Assembler struct {
	tree     []Node
	compiled []compiledNode
	registry *permission.Registry
}

type compiledNode struct {
	public   bool
	mask     permission.Mask64
	children []compiledNode
}

// NewAssembler compiles tree. It fails when the tree names more than
// [permission.MaxRoles] distinct roles.
func NewAssembler(tree []Node) (*Assembler, error) {
	reg := permission.NewRegistry()
	src := CloneTree(tree)
	compiled, err := compile(src, reg, compiledNode{public: true})
	if err != nil {
		return nil, err
	}
	reg.Freeze()
	return &Assembler{tree: src, compiled: compiled, registry: reg}, nil
}

func compile(nodes []Node, reg *permission.Registry, parent compiledNode) ([]compiledNode, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]compiledNode, len(nodes))
	for i, n := range nodes {
		c := compiledNode{public: parent.public, mask: parent.mask}
		if !n.Meta.Public() {
			c = compiledNode{}
			for _, role := range n.Meta.Roles {
				bit, err := reg.Ensure(role)
				if err != nil {
					return nil, fmt.Errorf("route %q: role %q: %w", n.Path, role, err)
				}
				c.mask.Set(bit)
			}
		}
		children, err := compile(n.Children, reg, c)
		if err != nil {
			return nil, err
		}
		c.children = children
		out[i] = c
	}
	return out, nil
}

// Tree returns a copy of the unfiltered source tree.
func (a *Assembler) Tree() []Node {
	return CloneTree(a.tree)
}

// Roles returns every role name the tree requires somewhere.
func (a *Assembler) Roles() []string {
	var all permission.Mask64
	for bit := 0; bit < a.registry.Count(); bit++ {
		all.Set(bit)
	}
	return a.registry.Names(all)
}

// Filter returns a new tree holding the nodes visible to roles.
//
// A node without roles inherits the roles of its nearest ancestor that
// declares some; only nodes with no such ancestor are public. A node is kept
// when it is public, when its roles intersect roles, or when any descendant
// is kept. A kept but non-permitted ancestor carries only its
// kept children; if its redirect pointed at a dropped route it is rewritten
// to the first kept child. Sibling order is preserved.
func (a *Assembler) Filter(roles []string) []Node {
	user := a.registry.Mask(roles)
	return filterNodes(a.tree, a.compiled, user, "")
}

func filterNodes(nodes []Node, compiled []compiledNode, user permission.Mask64, parent string) []Node {
	var out []Node
	for i, n := range nodes {
		c := compiled[i]
		full := JoinPath(parent, n.Path)
		permitted := c.public || c.mask.Intersects(user)
		kids := filterNodes(n.Children, c.children, user, full)
		if !permitted && len(kids) == 0 {
			continue
		}

		kept := Node{
			Path:     n.Path,
			Name:     n.Name,
			Redirect: n.Redirect,
			Meta:     n.Meta.clone(),
			Children: kids,
		}
		if kept.Redirect != "" && len(kids) > 0 && len(kids) < len(n.Children) {
			target := resolveRedirect(parent, kept.Redirect)
			if !containsPath(kids, full, target) {
				kept.Redirect = JoinPath(full, kids[0].Path)
			}
		}
		out = append(out, kept)
	}
	return out
}

func containsPath(nodes []Node, parent, target string) bool {
	for _, n := range nodes {
		full := JoinPath(parent, n.Path)
		if full == target || containsPath(n.Children, full, target) {
			return true
		}
	}
	return false
}

// Filter compiles tree and filters it once. Use an [Assembler] when the same
// tree is filtered repeatedly.
func Filter(tree []Node, roles []string) ([]Node, error) {
	a, err := NewAssembler(tree)
	if err != nil {
		return nil, err
	}
	return a.Filter(roles), nil
}
