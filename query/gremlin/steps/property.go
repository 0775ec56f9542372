package steps

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Values{})
	gremlin.Register(&Properties{})
	gremlin.Register(&Key{})
	gremlin.Register(&Value{})
	gremlin.Register(&ID{})
	gremlin.Register(&Label{})
	gremlin.Register(&ValueMap{})
	gremlin.Register(&Constant{})
}

// Values corresponds to .values().
type Values struct {
	Keys []string `json:"keys"`
}

// Description implements Step.
func (s *Values) Description() string {
	return "moves to values of given properties; elements without the property are skipped"
}

// Compile implements Step.
func (s *Values) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpValues, gremlin.Args{Keys: s.Keys})
}

// Properties corresponds to .properties().
type Properties struct {
	Keys []string `json:"keys"`
}

// Description implements Step.
func (s *Properties) Description() string {
	return "moves to key-value pairs of given properties"
}

// Compile implements Step.
func (s *Properties) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpProperties, gremlin.Args{Keys: s.Keys})
}

// Key corresponds to .key().
type Key struct{}

// Description implements Step.
func (s *Key) Description() string {
	return "returns a key of a property"
}

// Compile implements Step.
func (s *Key) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpKey, gremlin.Args{})
}

// Value corresponds to .value().
type Value struct{}

// Description implements Step.
func (s *Value) Description() string {
	return "returns a value of a property"
}

// Compile implements Step.
func (s *Value) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpValue, gremlin.Args{})
}

// ID corresponds to .id().
type ID struct{}

// Description implements Step.
func (s *ID) Description() string {
	return "returns an id of the element"
}

// Compile implements Step.
func (s *ID) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpID, gremlin.Args{})
}

// Label corresponds to .label().
type Label struct{}

// Description implements Step.
func (s *Label) Description() string {
	return "returns a label of the element"
}

// Compile implements Step.
func (s *Label) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpLabel, gremlin.Args{})
}

// ValueMap corresponds to .valueMap().
type ValueMap struct {
	Keys []string `json:"keys"`
	// Tokens adds id and label of the element.
	Tokens bool `json:"tokens"`
}

// Description implements Step.
func (s *ValueMap) Description() string {
	return "returns a map of property values of the element"
}

// Compile implements Step.
func (s *ValueMap) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpValueMap, gremlin.Args{Keys: s.Keys, Tokens: s.Tokens})
}

// Constant corresponds to .constant().
type Constant struct {
	Value quad.Value `json:"value"`
}

// Description implements Step.
func (s *Constant) Description() string {
	return "replaces each traverser with a constant value"
}

// Compile implements Step.
func (s *Constant) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpConstant, gremlin.Args{Value: s.Value})
}
