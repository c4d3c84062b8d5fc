package route

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTable is returned for route tables that fail validation.
var ErrInvalidTable = errors.New("invalid route table")

type table struct {
	Routes []Node `yaml:"routes"`
}

// Load reads a YAML route table of the form:
//
//	routes:
//	  - path: /dashboard
//	    meta: {title: Dashboard, roles: [ADMIN]}
//
// Unknown fields are rejected.
func Load(r io.Reader) ([]Node, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidTable)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := Validate(t.Routes); err != nil {
		return nil, err
	}
	return t.Routes, nil
}

// Validate checks that top-level paths are absolute, nested paths are
// non-empty or index children, and route names are unique.
func Validate(tree []Node) error {
	names := map[string]string{}
	for _, n := range tree {
		if !strings.HasPrefix(n.Path, "/") {
			return fmt.Errorf("%w: top-level path %q must start with /", ErrInvalidTable, n.Path)
		}
	}
	return validate(tree, "", names)
}

func validate(nodes []Node, parent string, names map[string]string) error {
	for _, n := range nodes {
		full := JoinPath(parent, n.Path)
		if n.Path == "" && parent == "" {
			return fmt.Errorf("%w: empty path at top level", ErrInvalidTable)
		}
		if n.Name != "" {
			if prev, dup := names[n.Name]; dup {
				return fmt.Errorf("%w: route name %q used by %s and %s", ErrInvalidTable, n.Name, prev, full)
			}
			names[n.Name] = full
		}
		for _, role := range n.Meta.Roles {
			if strings.TrimSpace(role) == "" {
				return fmt.Errorf("%w: empty role on %s", ErrInvalidTable, full)
			}
		}
		if err := validate(n.Children, full, names); err != nil {
			return err
		}
	}
	return nil
}
