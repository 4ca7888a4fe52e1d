package instrument

import "github.com/wippyai/wasm-instrument/wasm"

// Group is the instrumentation-relevant classification of an
// instruction, used to select the dispatch arm in the Rewriter and the
// hook signature in the HookRegistry. It is computed from the opcode
// alone; it has nothing to do with the general-purpose wasm IR, which
// has no reason to carry this knowledge.
type Group int

const (
	GroupConst Group = iota
	GroupUnary
	GroupBinary
	GroupMemoryLoad
	GroupMemoryStore
	GroupOther
)

// classInfo is the result of classifying an instruction: its group plus
// the operand/result types the group implies.
type classInfo struct {
	group   Group
	inputs  []wasm.ValType
	result  wasm.ValType
	hasResult bool
}

// classify determines the Group and operand/result types of a concrete
// opcode. Control flow, calls, parametric, variable-access, and memory
// size instructions fall into GroupOther; the Rewriter dispatches those
// by opcode directly rather than through classify.
func classify(op byte) classInfo {
	if ty, ok := constTypes[op]; ok {
		return classInfo{group: GroupConst, result: ty, hasResult: true}
	}
	if u, ok := unaryTypes[op]; ok {
		return classInfo{group: GroupUnary, inputs: []wasm.ValType{u.in}, result: u.out, hasResult: true}
	}
	if b, ok := binaryTypes[op]; ok {
		return classInfo{group: GroupBinary, inputs: []wasm.ValType{b.first, b.second}, result: b.result, hasResult: true}
	}
	if ty, ok := loadTypes[op]; ok {
		return classInfo{group: GroupMemoryLoad, result: ty, hasResult: true}
	}
	if ty, ok := storeTypes[op]; ok {
		return classInfo{group: GroupMemoryStore, inputs: []wasm.ValType{ty}}
	}
	return classInfo{group: GroupOther}
}

type unaryPair struct{ in, out wasm.ValType }
type binaryTriple struct{ first, second, result wasm.ValType }

var constTypes = map[byte]wasm.ValType{
	wasm.OpI32Const: wasm.ValI32,
	wasm.OpI64Const: wasm.ValI64,
	wasm.OpF32Const: wasm.ValF32,
	wasm.OpF64Const: wasm.ValF64,
}

var unaryTypes = map[byte]unaryPair{
	wasm.OpI32Eqz: {wasm.ValI32, wasm.ValI32},
	wasm.OpI64Eqz: {wasm.ValI64, wasm.ValI32},

	wasm.OpI32Clz: {wasm.ValI32, wasm.ValI32}, wasm.OpI32Ctz: {wasm.ValI32, wasm.ValI32}, wasm.OpI32Popcnt: {wasm.ValI32, wasm.ValI32},
	wasm.OpI64Clz: {wasm.ValI64, wasm.ValI64}, wasm.OpI64Ctz: {wasm.ValI64, wasm.ValI64}, wasm.OpI64Popcnt: {wasm.ValI64, wasm.ValI64},

	wasm.OpF32Abs: {wasm.ValF32, wasm.ValF32}, wasm.OpF32Neg: {wasm.ValF32, wasm.ValF32}, wasm.OpF32Ceil: {wasm.ValF32, wasm.ValF32},
	wasm.OpF32Floor: {wasm.ValF32, wasm.ValF32}, wasm.OpF32Trunc: {wasm.ValF32, wasm.ValF32}, wasm.OpF32Nearest: {wasm.ValF32, wasm.ValF32},
	wasm.OpF32Sqrt: {wasm.ValF32, wasm.ValF32},

	wasm.OpF64Abs: {wasm.ValF64, wasm.ValF64}, wasm.OpF64Neg: {wasm.ValF64, wasm.ValF64}, wasm.OpF64Ceil: {wasm.ValF64, wasm.ValF64},
	wasm.OpF64Floor: {wasm.ValF64, wasm.ValF64}, wasm.OpF64Trunc: {wasm.ValF64, wasm.ValF64}, wasm.OpF64Nearest: {wasm.ValF64, wasm.ValF64},
	wasm.OpF64Sqrt: {wasm.ValF64, wasm.ValF64},

	wasm.OpI32WrapI64: {wasm.ValI64, wasm.ValI32},
	wasm.OpI32TruncF32S: {wasm.ValF32, wasm.ValI32}, wasm.OpI32TruncF32U: {wasm.ValF32, wasm.ValI32},
	wasm.OpI32TruncF64S: {wasm.ValF64, wasm.ValI32}, wasm.OpI32TruncF64U: {wasm.ValF64, wasm.ValI32},
	wasm.OpI64ExtendI32S: {wasm.ValI32, wasm.ValI64}, wasm.OpI64ExtendI32U: {wasm.ValI32, wasm.ValI64},
	wasm.OpI64TruncF32S: {wasm.ValF32, wasm.ValI64}, wasm.OpI64TruncF32U: {wasm.ValF32, wasm.ValI64},
	wasm.OpI64TruncF64S: {wasm.ValF64, wasm.ValI64}, wasm.OpI64TruncF64U: {wasm.ValF64, wasm.ValI64},
	wasm.OpF32ConvertI32S: {wasm.ValI32, wasm.ValF32}, wasm.OpF32ConvertI32U: {wasm.ValI32, wasm.ValF32},
	wasm.OpF32ConvertI64S: {wasm.ValI64, wasm.ValF32}, wasm.OpF32ConvertI64U: {wasm.ValI64, wasm.ValF32},
	wasm.OpF32DemoteF64: {wasm.ValF64, wasm.ValF32},
	wasm.OpF64ConvertI32S: {wasm.ValI32, wasm.ValF64}, wasm.OpF64ConvertI32U: {wasm.ValI32, wasm.ValF64},
	wasm.OpF64ConvertI64S: {wasm.ValI64, wasm.ValF64}, wasm.OpF64ConvertI64U: {wasm.ValI64, wasm.ValF64},
	wasm.OpF64PromoteF32: {wasm.ValF32, wasm.ValF64},
	wasm.OpI32ReinterpretF32: {wasm.ValF32, wasm.ValI32},
	wasm.OpI64ReinterpretF64: {wasm.ValF64, wasm.ValI64},
	wasm.OpF32ReinterpretI32: {wasm.ValI32, wasm.ValF32},
	wasm.OpF64ReinterpretI64: {wasm.ValI64, wasm.ValF64},
}

var binaryTypes = map[byte]binaryTriple{
	wasm.OpI32Eq: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32Ne: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32LtS: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32LtU: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32GtS: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32GtU: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32LeS: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32LeU: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32GeS: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32GeU: {wasm.ValI32, wasm.ValI32, wasm.ValI32},

	wasm.OpI64Eq: {wasm.ValI64, wasm.ValI64, wasm.ValI32}, wasm.OpI64Ne: {wasm.ValI64, wasm.ValI64, wasm.ValI32},
	wasm.OpI64LtS: {wasm.ValI64, wasm.ValI64, wasm.ValI32}, wasm.OpI64LtU: {wasm.ValI64, wasm.ValI64, wasm.ValI32},
	wasm.OpI64GtS: {wasm.ValI64, wasm.ValI64, wasm.ValI32}, wasm.OpI64GtU: {wasm.ValI64, wasm.ValI64, wasm.ValI32},
	wasm.OpI64LeS: {wasm.ValI64, wasm.ValI64, wasm.ValI32}, wasm.OpI64LeU: {wasm.ValI64, wasm.ValI64, wasm.ValI32},
	wasm.OpI64GeS: {wasm.ValI64, wasm.ValI64, wasm.ValI32}, wasm.OpI64GeU: {wasm.ValI64, wasm.ValI64, wasm.ValI32},

	wasm.OpF32Eq: {wasm.ValF32, wasm.ValF32, wasm.ValI32}, wasm.OpF32Ne: {wasm.ValF32, wasm.ValF32, wasm.ValI32},
	wasm.OpF32Lt: {wasm.ValF32, wasm.ValF32, wasm.ValI32}, wasm.OpF32Gt: {wasm.ValF32, wasm.ValF32, wasm.ValI32},
	wasm.OpF32Le: {wasm.ValF32, wasm.ValF32, wasm.ValI32}, wasm.OpF32Ge: {wasm.ValF32, wasm.ValF32, wasm.ValI32},

	wasm.OpF64Eq: {wasm.ValF64, wasm.ValF64, wasm.ValI32}, wasm.OpF64Ne: {wasm.ValF64, wasm.ValF64, wasm.ValI32},
	wasm.OpF64Lt: {wasm.ValF64, wasm.ValF64, wasm.ValI32}, wasm.OpF64Gt: {wasm.ValF64, wasm.ValF64, wasm.ValI32},
	wasm.OpF64Le: {wasm.ValF64, wasm.ValF64, wasm.ValI32}, wasm.OpF64Ge: {wasm.ValF64, wasm.ValF64, wasm.ValI32},

	wasm.OpI32Add: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32Sub: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32Mul: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32DivS: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32DivU: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32RemS: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32RemU: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32And: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32Or: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32Xor: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32Shl: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32ShrS: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32ShrU: {wasm.ValI32, wasm.ValI32, wasm.ValI32}, wasm.OpI32Rotl: {wasm.ValI32, wasm.ValI32, wasm.ValI32},
	wasm.OpI32Rotr: {wasm.ValI32, wasm.ValI32, wasm.ValI32},

	wasm.OpI64Add: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64Sub: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64Mul: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64DivS: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64DivU: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64RemS: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64RemU: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64And: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64Or: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64Xor: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64Shl: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64ShrS: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64ShrU: {wasm.ValI64, wasm.ValI64, wasm.ValI64}, wasm.OpI64Rotl: {wasm.ValI64, wasm.ValI64, wasm.ValI64},
	wasm.OpI64Rotr: {wasm.ValI64, wasm.ValI64, wasm.ValI64},

	wasm.OpF32Add: {wasm.ValF32, wasm.ValF32, wasm.ValF32}, wasm.OpF32Sub: {wasm.ValF32, wasm.ValF32, wasm.ValF32},
	wasm.OpF32Mul: {wasm.ValF32, wasm.ValF32, wasm.ValF32}, wasm.OpF32Div: {wasm.ValF32, wasm.ValF32, wasm.ValF32},
	wasm.OpF32Min: {wasm.ValF32, wasm.ValF32, wasm.ValF32}, wasm.OpF32Max: {wasm.ValF32, wasm.ValF32, wasm.ValF32},
	wasm.OpF32Copysign: {wasm.ValF32, wasm.ValF32, wasm.ValF32},

	wasm.OpF64Add: {wasm.ValF64, wasm.ValF64, wasm.ValF64}, wasm.OpF64Sub: {wasm.ValF64, wasm.ValF64, wasm.ValF64},
	wasm.OpF64Mul: {wasm.ValF64, wasm.ValF64, wasm.ValF64}, wasm.OpF64Div: {wasm.ValF64, wasm.ValF64, wasm.ValF64},
	wasm.OpF64Min: {wasm.ValF64, wasm.ValF64, wasm.ValF64}, wasm.OpF64Max: {wasm.ValF64, wasm.ValF64, wasm.ValF64},
	wasm.OpF64Copysign: {wasm.ValF64, wasm.ValF64, wasm.ValF64},
}

var loadTypes = map[byte]wasm.ValType{
	wasm.OpI32Load: wasm.ValI32, wasm.OpI64Load: wasm.ValI64, wasm.OpF32Load: wasm.ValF32, wasm.OpF64Load: wasm.ValF64,
	wasm.OpI32Load8S: wasm.ValI32, wasm.OpI32Load8U: wasm.ValI32, wasm.OpI32Load16S: wasm.ValI32, wasm.OpI32Load16U: wasm.ValI32,
	wasm.OpI64Load8S: wasm.ValI64, wasm.OpI64Load8U: wasm.ValI64, wasm.OpI64Load16S: wasm.ValI64, wasm.OpI64Load16U: wasm.ValI64,
	wasm.OpI64Load32S: wasm.ValI64, wasm.OpI64Load32U: wasm.ValI64,
}

var storeTypes = map[byte]wasm.ValType{
	wasm.OpI32Store: wasm.ValI32, wasm.OpI64Store: wasm.ValI64, wasm.OpF32Store: wasm.ValF32, wasm.OpF64Store: wasm.ValF64,
	wasm.OpI32Store8: wasm.ValI32, wasm.OpI32Store16: wasm.ValI32,
	wasm.OpI64Store8: wasm.ValI64, wasm.OpI64Store16: wasm.ValI64, wasm.OpI64Store32: wasm.ValI64,
}
