package steps

import (
	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Count{})
	gremlin.Register(&Sum{})
	gremlin.Register(&Min{})
	gremlin.Register(&Max{})
	gremlin.Register(&Mean{})
	gremlin.Register(&Fold{})
	gremlin.Register(&Unfold{})
	gremlin.Register(&Group{})
	gremlin.Register(&GroupCount{})
	gremlin.Register(&Order{})
	gremlin.Register(&Path{})
	gremlin.Register(&Tree{})
}

var (
	_ gremlin.Reducer     = (*Count)(nil)
	_ gremlin.Reducer     = (*Sum)(nil)
	_ gremlin.Reducer     = (*Min)(nil)
	_ gremlin.Reducer     = (*Max)(nil)
	_ gremlin.Reducer     = (*Mean)(nil)
	_ gremlin.Reducer     = (*Fold)(nil)
	_ gremlin.ByModulator = (*Group)(nil)
	_ gremlin.ByModulator = (*GroupCount)(nil)
	_ gremlin.ByModulator = (*Order)(nil)
	_ gremlin.ByModulator = (*Path)(nil)
)

// Count corresponds to .count().
type Count struct{}

// Description implements Step.
func (s *Count) Description() string {
	return "counts traversers"
}

// Reduce implements Reducer.
func (s *Count) Reduce() gremlin.Op { return gremlin.OpCount }

// Compile implements Step.
func (s *Count) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpCount, gremlin.Args{})
}

// Sum corresponds to .sum().
type Sum struct{}

// Description implements Step.
func (s *Sum) Description() string {
	return "sums numeric values"
}

// Reduce implements Reducer.
func (s *Sum) Reduce() gremlin.Op { return gremlin.OpSum }

// Compile implements Step.
func (s *Sum) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpSum, gremlin.Args{})
}

// Min corresponds to .min().
type Min struct{}

// Description implements Step.
func (s *Min) Description() string {
	return "returns the smallest value"
}

// Reduce implements Reducer.
func (s *Min) Reduce() gremlin.Op { return gremlin.OpMin }

// Compile implements Step.
func (s *Min) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpMin, gremlin.Args{})
}

// Max corresponds to .max().
type Max struct{}

// Description implements Step.
func (s *Max) Description() string {
	return "returns the largest value"
}

// Reduce implements Reducer.
func (s *Max) Reduce() gremlin.Op { return gremlin.OpMax }

// Compile implements Step.
func (s *Max) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpMax, gremlin.Args{})
}

// Mean corresponds to .mean().
type Mean struct{}

// Description implements Step.
func (s *Mean) Description() string {
	return "returns the average of numeric values"
}

// Reduce implements Reducer.
func (s *Mean) Reduce() gremlin.Op { return gremlin.OpMean }

// Compile implements Step.
func (s *Mean) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpMean, gremlin.Args{})
}

// Fold corresponds to .fold().
type Fold struct{}

// Description implements Step.
func (s *Fold) Description() string {
	return "collects all traversers into a list"
}

// Reduce implements Reducer.
func (s *Fold) Reduce() gremlin.Op { return gremlin.OpFold }

// Compile implements Step.
func (s *Fold) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpFold, gremlin.Args{})
}

// Unfold corresponds to .unfold().
type Unfold struct{}

// Description implements Step.
func (s *Unfold) Description() string {
	return "splits a list made by fold() back into traversers"
}

// Compile implements Step.
func (s *Unfold) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpUnfold, gremlin.Args{})
}

// Group corresponds to .group().
type Group struct {
	// Key stores the result as a side effect instead of returning it.
	Key string       `json:"key"`
	By  []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *Group) Description() string {
	return "groups traversers by a key (first by()) and folds or aggregates values of each group (second by())"
}

// AddBy implements ByModulator.
func (s *Group) AddBy(b gremlin.By) error {
	if len(s.By) >= 2 {
		return &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: "group() accepts at most two by() modulators"}
	}
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Group) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpGroup, gremlin.Args{Key: s.Key, By: s.By})
}

// GroupCount corresponds to .groupCount().
type GroupCount struct {
	Key string       `json:"key"`
	By  []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *GroupCount) Description() string {
	return "counts traversers for each key"
}

// AddBy implements ByModulator.
func (s *GroupCount) AddBy(b gremlin.By) error {
	if len(s.By) >= 1 {
		return &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: "groupCount() accepts a single by() modulator"}
	}
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *GroupCount) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpGroupCount, gremlin.Args{Key: s.Key, By: s.By})
}

// Order corresponds to .order().
type Order struct {
	By []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *Order) Description() string {
	return "sorts traversers by by() modulators, or by the elements themselves"
}

// AddBy implements ByModulator.
func (s *Order) AddBy(b gremlin.By) error {
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Order) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOrder, gremlin.Args{By: s.By})
}

// Path corresponds to .path().
type Path struct {
	By []gremlin.By `json:"by"`
}

// Description implements Step.
func (s *Path) Description() string {
	return "returns the list of elements visited by each traverser"
}

// AddBy implements ByModulator.
func (s *Path) AddBy(b gremlin.By) error {
	s.By = append(s.By, b)
	return nil
}

// Compile implements Step.
func (s *Path) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpPath, gremlin.Args{By: s.By})
}

// Tree corresponds to .tree(). It is not supported by relational databases.
type Tree struct{}

// Description implements Step.
func (s *Tree) Description() string {
	return "returns a tree of paths; not supported"
}

// Compile implements Step.
func (s *Tree) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpTree, gremlin.Args{})
}
