package steps

import (
	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&As{})
	gremlin.Register(&Select{})
	gremlin.Register(&Project{})
	gremlin.Register(&Aggregate{})
	gremlin.Register(&Store{})
	gremlin.Register(&Cap{})
	gremlin.Register(&Match{})
}

var (
	_ gremlin.Labeled     = (*As)(nil)
	_ gremlin.ByModulator = (*Select)(nil)
	_ gremlin.ByModulator = (*Project)(nil)
)

// As corresponds to .as().
type As struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *As) Description() string {
	return "binds labels to the current element"
}

// StepLabels implements Labeled.
func (s *As) StepLabels() []string {
	return s.Labels
}

// Compile implements Step.
func (s *As) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpAs, gremlin.Args{Labels: s.Labels})
}

// Select corresponds to .select().
type Select struct {
	Labels []string     `json:"labels"`
	By     []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *Select) Description() string {
	return "returns elements bound to labels; a single label returns the element, several labels return a map"
}

// AddBy implements ByModulator.
func (s *Select) AddBy(b gremlin.By) error {
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Select) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpSelect, gremlin.Args{Labels: s.Labels, By: s.By})
}

// Project corresponds to .project().
type Project struct {
	Keys []string     `json:"keys"`
	By   []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *Project) Description() string {
	return "returns a map with given keys; values are computed by by() modulators in order"
}

// AddBy implements ByModulator.
func (s *Project) AddBy(b gremlin.By) error {
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Project) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpProject, gremlin.Args{Keys: s.Keys, By: s.By})
}

// Aggregate corresponds to .aggregate().
type Aggregate struct {
	Key string `json:"key"`
}

// Description implements Step.
func (s *Aggregate) Description() string {
	return "collects all traversers into a side effect"
}

// Compile implements Step.
func (s *Aggregate) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpAggregate, gremlin.Args{Key: s.Key})
}

// Store corresponds to .store().
type Store struct {
	Key string `json:"key"`
}

// Description implements Step.
func (s *Store) Description() string {
	return "collects traversers into a side effect"
}

// Compile implements Step.
func (s *Store) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpStore, gremlin.Args{Key: s.Key})
}

// Cap corresponds to .cap().
type Cap struct {
	Keys []string `json:"keys"`
}

// Description implements Step.
func (s *Cap) Description() string {
	return "returns collected side effects"
}

// Compile implements Step.
func (s *Cap) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpCap, gremlin.Args{Labels: s.Keys})
}

// Match corresponds to .match().
type Match struct {
	Fragments []gremlin.Traversal `json:"fragments"`
}

// Description implements Step.
func (s *Match) Description() string {
	return "binds labels by matching all fragments; each fragment starts with a label and may end with one"
}

// Compile implements Step.
func (s *Match) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpMatch, gremlin.Args{Branches: s.Fragments})
}
