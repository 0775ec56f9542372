package gremlin

// commonOps are implemented by every kind of variable.
var commonOps = map[Op]opFunc{
	OpV:    scanOp(FreeVertex),
	OpE:    scanOp(FreeEdge),
	OpAddV: opAddV,
	OpAddE: opAddE,

	OpConstant:   opConstant,
	OpWhere:      opWhere,
	OpAnd:        opAnd,
	OpOr:         opOr,
	OpNot:        opNot,
	OpDedup:      opDedup,
	OpRange:      opRange,
	OpTail:       opTail,
	OpSample:     opSample,
	OpSimplePath: opSimplePath,
	OpCyclicPath: opCyclicPath,

	OpUnion:      opUnion,
	OpCoalesce:   opCoalesce,
	OpChoose:     opChoose,
	OpOptional:   opOptional,
	OpRepeat:     opRepeat,
	OpMap:        opMap,
	OpFlatMap:    opFlatMap,
	OpLocal:      opFlatMap,
	OpSideEffect: opSideEffect,
	OpIdentity:   opIdentity,

	OpAs:        opAs,
	OpSelect:    opSelect,
	OpProject:   opProject,
	OpAggregate: opAggregate,
	OpStore:     opAggregate,
	OpCap:       opCap,
	OpMatch:     opMatch,

	OpCount:      opCount,
	OpFold:       opFold,
	OpUnfold:     opUnfold,
	OpGroup:      groupOp(false),
	OpGroupCount: groupOp(true),
	OpOrder:      opOrder,
	OpPath:       opPath,
}
