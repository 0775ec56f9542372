package steps

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&V{})
	gremlin.Register(&E{})
	gremlin.Register(&AddV{})
	gremlin.Register(&AddE{})
	gremlin.Register(&Inject{})
}

var _ gremlin.EndpointModulator = (*AddE)(nil)

// V corresponds to .V().
type V struct {
	IDs []quad.Value `json:"ids"`
}

// Description implements Step.
func (s *V) Description() string {
	return "starts a traversal from all vertices, or from vertices with given ids"
}

// Compile implements Step.
func (s *V) Compile(c *gremlin.Context) error {
	return c.Start(gremlin.OpV, gremlin.Args{Values: s.IDs})
}

// E corresponds to .E().
type E struct {
	IDs []quad.Value `json:"ids"`
}

// Description implements Step.
func (s *E) Description() string {
	return "starts a traversal from all edges, or from edges with given ids"
}

// Compile implements Step.
func (s *E) Compile(c *gremlin.Context) error {
	return c.Start(gremlin.OpE, gremlin.Args{Values: s.IDs})
}

// AddV corresponds to .addV().
type AddV struct {
	Label string `json:"label"`
}

// Description implements Step.
func (s *AddV) Description() string {
	return "adds a vertex with a given label"
}

// Compile implements Step.
func (s *AddV) Compile(c *gremlin.Context) error {
	return c.Start(gremlin.OpAddV, gremlin.Args{Label: s.Label})
}

// AddE corresponds to .addE().
type AddE struct {
	Label string           `json:"label"`
	From  gremlin.Endpoint `json:"from"`
	To    gremlin.Endpoint `json:"to"`
}

// Description implements Step.
func (s *AddE) Description() string {
	return "adds an edge with a given label; endpoints are set with from() and to() and default to the current vertex"
}

// SetFrom implements EndpointModulator.
func (s *AddE) SetFrom(e gremlin.Endpoint) error {
	s.From = e
	return nil
}

// SetTo implements EndpointModulator.
func (s *AddE) SetTo(e gremlin.Endpoint) error {
	s.To = e
	return nil
}

// Compile implements Step.
func (s *AddE) Compile(c *gremlin.Context) error {
	return c.Start(gremlin.OpAddE, gremlin.Args{Label: s.Label, From: s.From, To: s.To})
}

// Inject corresponds to .inject().
type Inject struct {
	Values []quad.Value `json:"values"`
}

// Description implements Step.
func (s *Inject) Description() string {
	return "starts a traversal from constant values"
}

// Compile implements Step.
func (s *Inject) Compile(c *gremlin.Context) error {
	return c.Start(gremlin.OpInject, gremlin.Args{Values: s.Values})
}
