package steps

import (
	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Out{})
	gremlin.Register(&In{})
	gremlin.Register(&Both{})
	gremlin.Register(&OutE{})
	gremlin.Register(&InE{})
	gremlin.Register(&BothE{})
	gremlin.Register(&OutV{})
	gremlin.Register(&InV{})
	gremlin.Register(&BothV{})
	gremlin.Register(&OtherV{})
}

// Out corresponds to .out().
type Out struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *Out) Description() string {
	return "moves to vertices connected by outgoing edges, optionally with given labels"
}

// Compile implements Step.
func (s *Out) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOut, gremlin.Args{Labels: s.Labels})
}

// In corresponds to .in().
type In struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *In) Description() string {
	return "moves to vertices connected by incoming edges, optionally with given labels"
}

// Compile implements Step.
func (s *In) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpIn, gremlin.Args{Labels: s.Labels})
}

// Both corresponds to .both().
type Both struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *Both) Description() string {
	return "moves to vertices connected by edges in any direction"
}

// Compile implements Step.
func (s *Both) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpBoth, gremlin.Args{Labels: s.Labels})
}

// OutE corresponds to .outE().
type OutE struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *OutE) Description() string {
	return "moves to outgoing edges"
}

// Compile implements Step.
func (s *OutE) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOutE, gremlin.Args{Labels: s.Labels})
}

// InE corresponds to .inE().
type InE struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *InE) Description() string {
	return "moves to incoming edges"
}

// Compile implements Step.
func (s *InE) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpInE, gremlin.Args{Labels: s.Labels})
}

// BothE corresponds to .bothE().
type BothE struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *BothE) Description() string {
	return "moves to incident edges in any direction"
}

// Compile implements Step.
func (s *BothE) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpBothE, gremlin.Args{Labels: s.Labels})
}

// OutV corresponds to .outV().
type OutV struct{}

// Description implements Step.
func (s *OutV) Description() string {
	return "moves from an edge to its source vertex"
}

// Compile implements Step.
func (s *OutV) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOutV, gremlin.Args{})
}

// InV corresponds to .inV().
type InV struct{}

// Description implements Step.
func (s *InV) Description() string {
	return "moves from an edge to its target vertex"
}

// Compile implements Step.
func (s *InV) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpInV, gremlin.Args{})
}

// BothV corresponds to .bothV().
type BothV struct{}

// Description implements Step.
func (s *BothV) Description() string {
	return "moves from an edge to both of its vertices"
}

// Compile implements Step.
func (s *BothV) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpBothV, gremlin.Args{})
}

// OtherV corresponds to .otherV().
type OtherV struct{}

// Description implements Step.
func (s *OtherV) Description() string {
	return "moves from an edge to the vertex it was not reached from"
}

// Compile implements Step.
func (s *OtherV) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOtherV, gremlin.Args{})
}
