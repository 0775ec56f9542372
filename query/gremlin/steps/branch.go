package steps

import (
	"github.com/cayleygraph/gremsql/query/gremlin"
)

func init() {
	gremlin.Register(&Union{})
	gremlin.Register(&Coalesce{})
	gremlin.Register(&Choose{})
	gremlin.Register(&Optional{})
	gremlin.Register(&Repeat{})
	gremlin.Register(&Map{})
	gremlin.Register(&FlatMap{})
	gremlin.Register(&Local{})
	gremlin.Register(&SideEffect{})
	gremlin.Register(&Identity{})
}

var (
	_ gremlin.OptionModulator = (*Choose)(nil)
	_ gremlin.TimesModulator  = (*Repeat)(nil)
	_ gremlin.LoopModulator   = (*Repeat)(nil)
)

// Union corresponds to .union().
type Union struct {
	Traversals []gremlin.Traversal `json:"traversals"`
}

// Description implements Step.
func (s *Union) Description() string {
	return "merges results of all traversals"
}

// Compile implements Step.
func (s *Union) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpUnion, gremlin.Args{Branches: s.Traversals})
}

// Coalesce corresponds to .coalesce().
type Coalesce struct {
	Traversals []gremlin.Traversal `json:"traversals"`
}

// Description implements Step.
func (s *Coalesce) Description() string {
	return "returns results of the first traversal that returns anything"
}

// Compile implements Step.
func (s *Coalesce) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpCoalesce, gremlin.Args{Branches: s.Traversals})
}

// Choose corresponds to .choose().
//
// With options, Traversal computes a key that selects an option. Otherwise, Traversal or Pred
// is a condition that selects either True or False branch.
type Choose struct {
	Traversal gremlin.Traversal `json:"traversal"`
	Pred      *gremlin.P        `json:"pred"`
	True      gremlin.Traversal `json:"true"`
	False     gremlin.Traversal `json:"false"`
	Options   []gremlin.Option  `json:"options"`
}

// Description implements Step.
func (s *Choose) Description() string {
	return "routes traversers to one of the branches, by a condition or by a key"
}

// AddOption implements OptionModulator.
func (s *Choose) AddOption(o gremlin.Option) error {
	if s.True != nil || s.False != nil {
		return &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: "option() cannot be used with conditional choose()"}
	}
	s.Options = append(s.Options, o)
	return nil
}

// Compile implements Step.
func (s *Choose) Compile(c *gremlin.Context) error {
	a := gremlin.Args{Traversal: s.Traversal, Pred: s.Pred, Options: s.Options, Else: s.False}
	if len(s.Options) == 0 {
		a.Branches = []gremlin.Traversal{s.True}
	}
	return c.Invoke(gremlin.OpChoose, a)
}

// Optional corresponds to .optional().
type Optional struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Optional) Description() string {
	return "returns results of the traversal, or the current element if there are none"
}

// Compile implements Step.
func (s *Optional) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpOptional, gremlin.Args{Traversal: s.Traversal})
}

// Repeat corresponds to .repeat().
type Repeat struct {
	Traversal gremlin.Traversal `json:"traversal"`
	Times     int               `json:"times"`
	Until     gremlin.Traversal `json:"until"`
	Emit      gremlin.Traversal `json:"emit"`
}

// Description implements Step.
func (s *Repeat) Description() string {
	return "applies the traversal a given number of times"
}

// SetTimes implements TimesModulator.
func (s *Repeat) SetTimes(n int) error {
	s.Times = n
	return nil
}

// SetUntil implements LoopModulator.
func (s *Repeat) SetUntil(t gremlin.Traversal) error {
	s.Until = t
	return nil
}

// SetEmit implements LoopModulator.
func (s *Repeat) SetEmit(t gremlin.Traversal) error {
	if t == nil {
		t = gremlin.Traversal{}
	}
	s.Emit = t
	return nil
}

// Compile implements Step.
func (s *Repeat) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpRepeat, gremlin.Args{
		Traversal: s.Traversal, Times: s.Times,
		Loop: s.Until != nil || s.Emit != nil,
	})
}

// Map corresponds to .map().
type Map struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Map) Description() string {
	return "replaces each traverser with the first result of the traversal"
}

// Compile implements Step.
func (s *Map) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpMap, gremlin.Args{Traversal: s.Traversal})
}

// FlatMap corresponds to .flatMap().
type FlatMap struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *FlatMap) Description() string {
	return "replaces each traverser with all results of the traversal"
}

// Compile implements Step.
func (s *FlatMap) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpFlatMap, gremlin.Args{Traversal: s.Traversal})
}

// Local corresponds to .local().
type Local struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *Local) Description() string {
	return "applies the traversal to each traverser separately"
}

// Compile implements Step.
func (s *Local) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpLocal, gremlin.Args{Traversal: s.Traversal})
}

// SideEffect corresponds to .sideEffect().
type SideEffect struct {
	Traversal gremlin.Traversal `json:"traversal"`
}

// Description implements Step.
func (s *SideEffect) Description() string {
	return "applies the traversal for its side effects and keeps the current element"
}

// Compile implements Step.
func (s *SideEffect) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpSideEffect, gremlin.Args{Traversal: s.Traversal})
}

// Identity corresponds to .identity().
type Identity struct{}

// Description implements Step.
func (s *Identity) Description() string {
	return "returns the current element"
}

// Compile implements Step.
func (s *Identity) Compile(c *gremlin.Context) error {
	return c.Invoke(gremlin.OpIdentity, gremlin.Args{})
}
