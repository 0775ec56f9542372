package steps

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Property{})
	gremlin.Register(&Drop{})
}

// Property corresponds to .property().
type Property struct {
	Key       string            `json:"key"`
	Value     quad.Value        `json:"value"`
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Property) Description() string {
	return "sets a property of the element"
}

// Compile implements Step.
func (s *Property) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpProperty, gremlin.Args{Key: s.Key, Value: s.Value, Traversal: s.Traversal})
}

// Drop corresponds to .drop().
type Drop struct{}

// Description implements Step.
func (s *Drop) Description() string {
	return "removes elements or properties"
}

// Compile implements Step.
func (s *Drop) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpDrop, gremlin.Args{})
}
