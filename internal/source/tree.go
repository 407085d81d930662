package source

import (
	"sort"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
)

// Tree is an in-memory DataSource. It backs the dump reader and tests.
type Tree struct {
	root   *TreeGroup
	path   string
	format string
}

// NewTree creates an empty tree with a root group.
func NewTree(path, format string) *Tree {
	return &Tree{root: NewTreeGroup("/"), path: path, format: format}
}

// Root implements contract.DataSource.
func (t *Tree) Root() contract.Group { return t.root }

// RootGroup returns the root for building.
func (t *Tree) RootGroup() *TreeGroup { return t.root }

// Path implements contract.DataSource.
func (t *Tree) Path() string { return t.path }

// Format implements contract.DataSource.
func (t *Tree) Format() string { return t.format }

// Close implements contract.DataSource.
func (t *Tree) Close() error { return nil }

// TreeGroup is a group node of a Tree.
type TreeGroup struct {
	name      string
	attrs     map[string]schema.Value
	variables map[string]*TreeVariable
	groups    map[string]*TreeGroup
}

// NewTreeGroup creates an empty group.
func NewTreeGroup(name string) *TreeGroup {
	return &TreeGroup{
		name:      name,
		attrs:     make(map[string]schema.Value),
		variables: make(map[string]*TreeVariable),
		groups:    make(map[string]*TreeGroup),
	}
}

// SetAttribute stores an attribute and returns the group for chaining.
func (g *TreeGroup) SetAttribute(name string, v schema.Value) *TreeGroup {
	g.attrs[name] = v
	return g
}

// AddVariable creates or replaces a variable.
func (g *TreeGroup) AddVariable(name string, dt schema.DataType, shape []int, values ...schema.Value) *TreeVariable {
	v := &TreeVariable{name: name, dtype: dt, shape: shape, values: values, attrs: make(map[string]schema.Value)}
	g.variables[name] = v
	return v
}

// AddGroup returns the named child group, creating it when missing.
func (g *TreeGroup) AddGroup(name string) *TreeGroup {
	if child, ok := g.groups[name]; ok {
		return child
	}
	child := NewTreeGroup(name)
	g.groups[name] = child
	return child
}

// Name implements contract.Group.
func (g *TreeGroup) Name() string { return g.name }

// Attribute implements contract.Group.
func (g *TreeGroup) Attribute(name string) (schema.Value, bool) {
	v, ok := g.attrs[name]
	return v, ok
}

// Variable implements contract.Group.
func (g *TreeGroup) Variable(name string) (contract.Variable, bool) {
	v, ok := g.variables[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// Group implements contract.Group.
func (g *TreeGroup) Group(name string) (contract.Group, bool) {
	child, ok := g.groups[name]
	if !ok {
		return nil, false
	}
	return child, true
}

// GroupNames implements contract.Group.
func (g *TreeGroup) GroupNames() []string {
	names := make([]string, 0, len(g.groups))
	for name := range g.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AttributeNames lists attribute names in order.
func (g *TreeGroup) AttributeNames() []string {
	return sortedKeys(g.attrs)
}

// VariableNames lists variable names in order.
func (g *TreeGroup) VariableNames() []string {
	names := make([]string, 0, len(g.variables))
	for name := range g.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TreeVariable is a variable node of a Tree. Only the leading values are kept.
type TreeVariable struct {
	name   string
	dtype  schema.DataType
	shape  []int
	values []schema.Value
	attrs  map[string]schema.Value
}

// SetAttribute stores an attribute and returns the variable for chaining.
func (v *TreeVariable) SetAttribute(name string, val schema.Value) *TreeVariable {
	v.attrs[name] = val
	return v
}

// Name implements contract.Variable.
func (v *TreeVariable) Name() string { return v.name }

// DataType implements contract.Variable.
func (v *TreeVariable) DataType() schema.DataType { return v.dtype }

// Shape implements contract.Variable.
func (v *TreeVariable) Shape() []int { return v.shape }

// Attribute implements contract.Variable.
func (v *TreeVariable) Attribute(name string) (schema.Value, bool) {
	val, ok := v.attrs[name]
	return val, ok
}

// AttributeNames lists attribute names in order.
func (v *TreeVariable) AttributeNames() []string {
	return sortedKeys(v.attrs)
}

// Representative implements contract.Variable.
func (v *TreeVariable) Representative() (schema.Value, bool) {
	if len(v.values) == 0 || v.values[0].IsNone() {
		return schema.None, false
	}
	return v.values[0], true
}

func sortedKeys(m map[string]schema.Value) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
