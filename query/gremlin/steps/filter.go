package steps

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Has{})
	gremlin.Register(&HasLabel{})
	gremlin.Register(&HasID{})
	gremlin.Register(&HasNot{})
	gremlin.Register(&Is{})
	gremlin.Register(&Where{})
	gremlin.Register(&And{})
	gremlin.Register(&Or{})
	gremlin.Register(&Not{})
	gremlin.Register(&Dedup{})
	gremlin.Register(&Range{})
	gremlin.Register(&Limit{})
	gremlin.Register(&Skip{})
	gremlin.Register(&Tail{})
	gremlin.Register(&Sample{})
	gremlin.Register(&SimplePath{})
	gremlin.Register(&CyclicPath{})
}

var _ gremlin.ByModulator = (*Where)(nil)

// predicate returns a predicate that checks for a value, unless a predicate is given explicitly.
func predicate(p *gremlin.P, v quad.Value) *gremlin.P {
	if p != nil || v == nil {
		return p
	}
	eq := gremlin.Eq(v)
	return &eq
}

// Has corresponds to .has().
type Has struct {
	Label     string            `json:"label"`
	Key       string            `json:"key"`
	Value     quad.Value        `json:"value"`
	Pred      *gremlin.P        `json:"pred"`
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Has) Description() string {
	return "keeps elements that have a property, optionally matching a value, a predicate or a traversal"
}

// Compile implements Step.
func (s *Has) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpHas, gremlin.Args{
		Label: s.Label, Key: s.Key,
		Pred: predicate(s.Pred, s.Value), Traversal: s.Traversal,
	})
}

// HasLabel corresponds to .hasLabel().
type HasLabel struct {
	Labels []string   `json:"labels"`
	Pred   *gremlin.P `json:"pred"`
}

// Description implements Step.
func (s *HasLabel) Description() string {
	return "keeps elements with one of the labels"
}

// Compile implements Step.
func (s *HasLabel) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpHasLabel, gremlin.Args{Labels: s.Labels, Pred: s.Pred})
}

// HasID corresponds to .hasId().
type HasID struct {
	IDs  []quad.Value `json:"ids"`
	Pred *gremlin.P   `json:"pred"`
}

// Description implements Step.
func (s *HasID) Description() string {
	return "keeps elements with one of the ids"
}

// Compile implements Step.
func (s *HasID) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpHasID, gremlin.Args{Values: s.IDs, Pred: s.Pred})
}

// HasNot corresponds to .hasNot().
type HasNot struct {
	Key string `json:"key"`
}

// Description implements Step.
func (s *HasNot) Description() string {
	return "keeps elements that do not have a property"
}

// Compile implements Step.
func (s *HasNot) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpHasNot, gremlin.Args{Key: s.Key})
}

// Is corresponds to .is().
type Is struct {
	Value quad.Value `json:"value"`
	Pred  *gremlin.P `json:"pred"`
}

// Description implements Step.
func (s *Is) Description() string {
	return "keeps values equal to a value or matching a predicate"
}

// Compile implements Step.
func (s *Is) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpIs, gremlin.Args{Pred: predicate(s.Pred, s.Value)})
}

// Where corresponds to .where().
type Where struct {
	// Label is compared with the predicate instead of the current element.
	Label     string            `json:"label"`
	Pred      *gremlin.P        `json:"pred"`
	Traversal gremlin.Traversal `json:"traversal"`
	By        []gremlin.By      `json:"by"`
}

// Description implements Step.
func (s *Where) Description() string {
	return "keeps traversers for which the traversal returns results, or that match a predicate over labels"
}

// AddBy implements ByModulator.
func (s *Where) AddBy(b gremlin.By) error {
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Where) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpWhere, gremlin.Args{
		Label: s.Label, Pred: s.Pred, Traversal: s.Traversal, By: s.By,
	})
}

// And corresponds to .and().
type And struct {
	Traversals []gremlin.Traversal `json:"traversals"`
}

// Description implements Step.
func (s *And) Description() string {
	return "keeps traversers for which every traversal returns results"
}

// Compile implements Step.
func (s *And) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpAnd, gremlin.Args{Branches: s.Traversals})
}

// Or corresponds to .or().
type Or struct {
	Traversals []gremlin.Traversal `json:"traversals"`
}

// Description implements Step.
func (s *Or) Description() string {
	return "keeps traversers for which any traversal returns results"
}

// Compile implements Step.
func (s *Or) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOr, gremlin.Args{Branches: s.Traversals})
}

// Not corresponds to .not().
type Not struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Not) Description() string {
	return "keeps traversers for which the traversal returns nothing"
}

// Compile implements Step.
func (s *Not) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpNot, gremlin.Args{Traversal: s.Traversal})
}

// Dedup corresponds to .dedup().
type Dedup struct {
	Labels []string `json:"labels"`
}

// Description implements Step.
func (s *Dedup) Description() string {
	return "removes duplicates of the current element, or of the elements bound to labels"
}

// Compile implements Step.
func (s *Dedup) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpDedup, gremlin.Args{Labels: s.Labels})
}

// Range corresponds to .range().
type Range struct {
	Low int64 `json:"low"`
	// High is exclusive. Negative value means no upper bound.
	High int64 `json:"high"`
}

// Description implements Step.
func (s *Range) Description() string {
	return "keeps traversers from low (inclusive) to high (exclusive)"
}

// Compile implements Step.
func (s *Range) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpRange, gremlin.Args{Low: s.Low, High: s.High})
}

// Limit corresponds to .limit().
type Limit struct {
	N int64 `json:"n"`
}

// Description implements Step.
func (s *Limit) Description() string {
	return "keeps the first n traversers"
}

// Compile implements Step.
func (s *Limit) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpRange, gremlin.Args{Low: 0, High: s.N})
}

// Skip corresponds to .skip().
type Skip struct {
	N int64 `json:"n"`
}

// Description implements Step.
func (s *Skip) Description() string {
	return "skips the first n traversers"
}

// Compile implements Step.
func (s *Skip) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpRange, gremlin.Args{Low: s.N, High: -1})
}

// Tail corresponds to .tail().
type Tail struct {
	N int64 `json:"n"`
}

// Description implements Step.
func (s *Tail) Description() string {
	return "keeps the last n traversers"
}

// Compile implements Step.
func (s *Tail) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpTail, gremlin.Args{High: s.N})
}

// Sample corresponds to .sample().
type Sample struct {
	N int64 `json:"n"`
}

// Description implements Step.
func (s *Sample) Description() string {
	return "keeps n random traversers"
}

// Compile implements Step.
func (s *Sample) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpSample, gremlin.Args{High: s.N})
}

// SimplePath corresponds to .simplePath().
type SimplePath struct{}

// Description implements Step.
func (s *SimplePath) Description() string {
	return "keeps traversers with paths that do not repeat elements"
}

// Compile implements Step.
func (s *SimplePath) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpSimplePath, gremlin.Args{})
}

// CyclicPath corresponds to .cyclicPath().
type CyclicPath struct{}

// Description implements Step.
func (s *CyclicPath) Description() string {
	return "keeps traversers with paths that repeat elements"
}

// Compile implements Step.
func (s *CyclicPath) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpCyclicPath, gremlin.Args{})
}
