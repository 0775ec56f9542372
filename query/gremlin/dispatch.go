package gremlin

import (
	"github.com/cayleygraph/quad"
)

// Op is a name of an operation that a step invokes on the pivot variable.
type Op string

const (
	OpV      = Op("V")
	OpE      = Op("E")
	OpAddV   = Op("addV")
	OpAddE   = Op("addE")
	OpInject = Op("inject")

	OpOut    = Op("out")
	OpIn     = Op("in")
	OpBoth   = Op("both")
	OpOutE   = Op("outE")
	OpInE    = Op("inE")
	OpBothE  = Op("bothE")
	OpOutV   = Op("outV")
	OpInV    = Op("inV")
	OpBothV  = Op("bothV")
	OpOtherV = Op("otherV")

	OpHas      = Op("has")
	OpHasLabel = Op("hasLabel")
	OpHasID    = Op("hasId")
	OpHasNot   = Op("hasNot")
	OpIs       = Op("is")

	OpValues     = Op("values")
	OpProperties = Op("properties")
	OpKey        = Op("key")
	OpValue      = Op("value")
	OpID         = Op("id")
	OpLabel      = Op("label")
	OpValueMap   = Op("valueMap")
	OpConstant   = Op("constant")

	OpWhere      = Op("where")
	OpAnd        = Op("and")
	OpOr         = Op("or")
	OpNot        = Op("not")
	OpDedup      = Op("dedup")
	OpRange      = Op("range")
	OpTail       = Op("tail")
	OpSample     = Op("sample")
	OpSimplePath = Op("simplePath")
	OpCyclicPath = Op("cyclicPath")

	OpUnion      = Op("union")
	OpCoalesce   = Op("coalesce")
	OpChoose     = Op("choose")
	OpOptional   = Op("optional")
	OpRepeat     = Op("repeat")
	OpMap        = Op("map")
	OpFlatMap    = Op("flatMap")
	OpLocal      = Op("local")
	OpSideEffect = Op("sideEffect")
	OpIdentity   = Op("identity")

	OpAs        = Op("as")
	OpSelect    = Op("select")
	OpProject   = Op("project")
	OpAggregate = Op("aggregate")
	OpStore     = Op("store")
	OpCap       = Op("cap")
	OpMatch     = Op("match")

	OpCount      = Op("count")
	OpSum        = Op("sum")
	OpMin        = Op("min")
	OpMax        = Op("max")
	OpMean       = Op("mean")
	OpFold       = Op("fold")
	OpUnfold     = Op("unfold")
	OpGroup      = Op("group")
	OpGroupCount = Op("groupCount")
	OpOrder      = Op("order")
	OpPath       = Op("path")
	OpTree       = Op("tree")

	OpProperty = Op("property")
	OpDrop     = Op("drop")
)

// Args are arguments of an operation. Each operation uses only a subset of them.
type Args struct {
	Labels []string // edge labels, step labels or side-effect keys
	Keys   []string // property keys
	Key    string
	Label  string
	Value  quad.Value
	Values []quad.Value
	Pred   *P

	Traversal Traversal
	Branches  []Traversal
	Else      Traversal // second branch of choose
	By        []By
	Options   []Option
	From, To  Endpoint

	Low, High int64 // range bounds; High < 0 means no upper bound
	Times     int
	Loop      bool // repeat has until() or emit()
	Tokens    bool // include id and label in valueMap
}

type opFunc func(c *Context, v Variable, a Args) error

type startFunc func(c *Context, a Args) error

var (
	ops      = make(map[Kind]map[Op]opFunc)
	startOps = make(map[Op]startFunc)
)

func registerOps(kinds []Kind, table map[Op]opFunc) {
	for _, k := range kinds {
		m := ops[k]
		if m == nil {
			m = make(map[Op]opFunc)
			ops[k] = m
		}
		for op, fn := range table {
			m[op] = fn
		}
	}
}

func init() {
	for op, fn := range map[Op]startFunc{
		OpV:      startV,
		OpE:      startE,
		OpAddV:   startAddV,
		OpAddE:   startAddE,
		OpInject: startInject,
	} {
		startOps[op] = fn
	}
	// order matters: more specific groups override generic operations
	registerOps(allKinds, commonOps)
	registerOps(elementKinds, elementOps)
	registerOps(vertexKinds, vertexOps)
	registerOps([]Kind{VertexTable}, tableVertexOps)
	registerOps(edgeKinds, edgeOps)
	registerOps([]Kind{AddedVertex, AddedEdge}, addedOps)
	registerOps([]Kind{Value}, valueOps)
	registerOps([]Kind{PropertyRow}, propertyOps)
}

// Supports reports if a kind implements the operation.
func Supports(k Kind, op Op) bool {
	_, ok := ops[k][op]
	return ok
}

// Invoke applies the operation to the pivot. The kind of the pivot decides how the operation is lowered.
// Pending modifiers of the block are applied first, so operations always work on a block
// where rows can be joined and filtered.
func (c *Context) Invoke(op Op, a Args) error {
	if c.pivot == nil {
		return errMissingPivot()
	}
	c.prepare()
	fn := ops[c.pivot.Kind()][op]
	if fn == nil {
		return errUnsupported(op, c.pivot.Kind())
	}
	return fn(c, c.pivot, a)
}

// Start applies an operation that can start a traversal. If the context already has a pivot,
// the operation is invoked on it instead.
func (c *Context) Start(op Op, a Args) error {
	if c.pivot != nil {
		return c.Invoke(op, a)
	}
	fn := startOps[op]
	if fn == nil {
		return errMissingPivot()
	}
	return fn(c, a)
}
