package instrument

import (
	"strings"

	"github.com/wippyai/wasm-instrument/wasm"
)

// opcodeName gives the canonical Wasm text-format mnemonic for every
// Const/Unary/Binary/MemoryLoad/MemoryStore opcode. Monomorphic hooks
// for these are named directly from this table since the opcode
// already fully determines the operand types (no extra type suffix is
// mangled in, matching the one-hook-per-concrete-opcode scheme).
var opcodeName = map[byte]string{
	wasm.OpI32Const: "i32.const", wasm.OpI64Const: "i64.const", wasm.OpF32Const: "f32.const", wasm.OpF64Const: "f64.const",

	wasm.OpI32Eqz: "i32.eqz", wasm.OpI32Eq: "i32.eq", wasm.OpI32Ne: "i32.ne",
	wasm.OpI32LtS: "i32.lt_s", wasm.OpI32LtU: "i32.lt_u", wasm.OpI32GtS: "i32.gt_s", wasm.OpI32GtU: "i32.gt_u",
	wasm.OpI32LeS: "i32.le_s", wasm.OpI32LeU: "i32.le_u", wasm.OpI32GeS: "i32.ge_s", wasm.OpI32GeU: "i32.ge_u",

	wasm.OpI64Eqz: "i64.eqz", wasm.OpI64Eq: "i64.eq", wasm.OpI64Ne: "i64.ne",
	wasm.OpI64LtS: "i64.lt_s", wasm.OpI64LtU: "i64.lt_u", wasm.OpI64GtS: "i64.gt_s", wasm.OpI64GtU: "i64.gt_u",
	wasm.OpI64LeS: "i64.le_s", wasm.OpI64LeU: "i64.le_u", wasm.OpI64GeS: "i64.ge_s", wasm.OpI64GeU: "i64.ge_u",

	wasm.OpF32Eq: "f32.eq", wasm.OpF32Ne: "f32.ne", wasm.OpF32Lt: "f32.lt", wasm.OpF32Gt: "f32.gt", wasm.OpF32Le: "f32.le", wasm.OpF32Ge: "f32.ge",
	wasm.OpF64Eq: "f64.eq", wasm.OpF64Ne: "f64.ne", wasm.OpF64Lt: "f64.lt", wasm.OpF64Gt: "f64.gt", wasm.OpF64Le: "f64.le", wasm.OpF64Ge: "f64.ge",

	wasm.OpI32Clz: "i32.clz", wasm.OpI32Ctz: "i32.ctz", wasm.OpI32Popcnt: "i32.popcnt",
	wasm.OpI32Add: "i32.add", wasm.OpI32Sub: "i32.sub", wasm.OpI32Mul: "i32.mul",
	wasm.OpI32DivS: "i32.div_s", wasm.OpI32DivU: "i32.div_u", wasm.OpI32RemS: "i32.rem_s", wasm.OpI32RemU: "i32.rem_u",
	wasm.OpI32And: "i32.and", wasm.OpI32Or: "i32.or", wasm.OpI32Xor: "i32.xor",
	wasm.OpI32Shl: "i32.shl", wasm.OpI32ShrS: "i32.shr_s", wasm.OpI32ShrU: "i32.shr_u",
	wasm.OpI32Rotl: "i32.rotl", wasm.OpI32Rotr: "i32.rotr",

	wasm.OpI64Clz: "i64.clz", wasm.OpI64Ctz: "i64.ctz", wasm.OpI64Popcnt: "i64.popcnt",
	wasm.OpI64Add: "i64.add", wasm.OpI64Sub: "i64.sub", wasm.OpI64Mul: "i64.mul",
	wasm.OpI64DivS: "i64.div_s", wasm.OpI64DivU: "i64.div_u", wasm.OpI64RemS: "i64.rem_s", wasm.OpI64RemU: "i64.rem_u",
	wasm.OpI64And: "i64.and", wasm.OpI64Or: "i64.or", wasm.OpI64Xor: "i64.xor",
	wasm.OpI64Shl: "i64.shl", wasm.OpI64ShrS: "i64.shr_s", wasm.OpI64ShrU: "i64.shr_u",
	wasm.OpI64Rotl: "i64.rotl", wasm.OpI64Rotr: "i64.rotr",

	wasm.OpF32Abs: "f32.abs", wasm.OpF32Neg: "f32.neg", wasm.OpF32Ceil: "f32.ceil", wasm.OpF32Floor: "f32.floor",
	wasm.OpF32Trunc: "f32.trunc", wasm.OpF32Nearest: "f32.nearest", wasm.OpF32Sqrt: "f32.sqrt",
	wasm.OpF32Add: "f32.add", wasm.OpF32Sub: "f32.sub", wasm.OpF32Mul: "f32.mul", wasm.OpF32Div: "f32.div",
	wasm.OpF32Min: "f32.min", wasm.OpF32Max: "f32.max", wasm.OpF32Copysign: "f32.copysign",

	wasm.OpF64Abs: "f64.abs", wasm.OpF64Neg: "f64.neg", wasm.OpF64Ceil: "f64.ceil", wasm.OpF64Floor: "f64.floor",
	wasm.OpF64Trunc: "f64.trunc", wasm.OpF64Nearest: "f64.nearest", wasm.OpF64Sqrt: "f64.sqrt",
	wasm.OpF64Add: "f64.add", wasm.OpF64Sub: "f64.sub", wasm.OpF64Mul: "f64.mul", wasm.OpF64Div: "f64.div",
	wasm.OpF64Min: "f64.min", wasm.OpF64Max: "f64.max", wasm.OpF64Copysign: "f64.copysign",

	wasm.OpI32WrapI64: "i32.wrap_i64",
	wasm.OpI32TruncF32S: "i32.trunc_f32_s", wasm.OpI32TruncF32U: "i32.trunc_f32_u",
	wasm.OpI32TruncF64S: "i32.trunc_f64_s", wasm.OpI32TruncF64U: "i32.trunc_f64_u",
	wasm.OpI64ExtendI32S: "i64.extend_i32_s", wasm.OpI64ExtendI32U: "i64.extend_i32_u",
	wasm.OpI64TruncF32S: "i64.trunc_f32_s", wasm.OpI64TruncF32U: "i64.trunc_f32_u",
	wasm.OpI64TruncF64S: "i64.trunc_f64_s", wasm.OpI64TruncF64U: "i64.trunc_f64_u",
	wasm.OpF32ConvertI32S: "f32.convert_i32_s", wasm.OpF32ConvertI32U: "f32.convert_i32_u",
	wasm.OpF32ConvertI64S: "f32.convert_i64_s", wasm.OpF32ConvertI64U: "f32.convert_i64_u",
	wasm.OpF32DemoteF64: "f32.demote_f64",
	wasm.OpF64ConvertI32S: "f64.convert_i32_s", wasm.OpF64ConvertI32U: "f64.convert_i32_u",
	wasm.OpF64ConvertI64S: "f64.convert_i64_s", wasm.OpF64ConvertI64U: "f64.convert_i64_u",
	wasm.OpF64PromoteF32: "f64.promote_f32",
	wasm.OpI32ReinterpretF32: "i32.reinterpret_f32", wasm.OpI64ReinterpretF64: "i64.reinterpret_f64",
	wasm.OpF32ReinterpretI32: "f32.reinterpret_i32", wasm.OpF64ReinterpretI64: "f64.reinterpret_i64",

	wasm.OpI32Load: "i32.load", wasm.OpI64Load: "i64.load", wasm.OpF32Load: "f32.load", wasm.OpF64Load: "f64.load",
	wasm.OpI32Load8S: "i32.load8_s", wasm.OpI32Load8U: "i32.load8_u",
	wasm.OpI32Load16S: "i32.load16_s", wasm.OpI32Load16U: "i32.load16_u",
	wasm.OpI64Load8S: "i64.load8_s", wasm.OpI64Load8U: "i64.load8_u",
	wasm.OpI64Load16S: "i64.load16_s", wasm.OpI64Load16U: "i64.load16_u",
	wasm.OpI64Load32S: "i64.load32_s", wasm.OpI64Load32U: "i64.load32_u",

	wasm.OpI32Store: "i32.store", wasm.OpI64Store: "i64.store", wasm.OpF32Store: "f32.store", wasm.OpF64Store: "f64.store",
	wasm.OpI32Store8: "i32.store8", wasm.OpI32Store16: "i32.store16",
	wasm.OpI64Store8: "i64.store8", wasm.OpI64Store16: "i64.store16", wasm.OpI64Store32: "i64.store32",
}

// typeSuffix mangles a type vector into a hook name suffix, e.g.
// [i32] -> "_i32", [i64, i32] -> "_i64_i32", [] -> "".
func typeSuffix(tys []wasm.ValType) string {
	if len(tys) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tys {
		b.WriteByte('_')
		b.WriteString(t.String())
	}
	return b.String()
}

// monoHookName names a monomorphic hook for a concrete Const/Unary/
// Binary/MemoryLoad/MemoryStore opcode.
func monoHookName(op byte) string {
	name, ok := opcodeName[op]
	if !ok {
		return ""
	}
	return name + "_hook"
}

// Singleton monomorphic hook names: control-flow bookkeeping and
// parametric/nullary instructions that are not keyed by a type vector.
const (
	nameIf             = "if_hook"
	nameBr             = "br_hook"
	nameBrIf           = "br_if_hook"
	nameBrTable        = "br_table_hook"
	nameNop            = "nop_hook"
	nameUnreachable    = "unreachable_hook"
	nameDrop           = "drop_hook"
	nameSelect         = "select_hook"
	nameCurrentMemory  = "current_memory_hook"
	nameGrowMemory     = "grow_memory_hook"
)

func beginHookName(kind string) string { return "begin_" + kind + "_hook" }
func endHookName(kind string) string   { return "end_" + kind + "_hook" }

// Polymorphic hook base names, mangled with typeSuffix.
const (
	nameReturn       = "return"
	nameGetLocal     = "get_local"
	nameSetLocal     = "set_local"
	nameTeeLocal     = "tee_local"
	nameGetGlobal    = "get_global"
	nameSetGlobal    = "set_global"
	nameCall         = "call"
	nameCallIndirect = "call_indirect"
	nameCallResult   = "call_result"
)

func polyHookName(base string, tys []wasm.ValType) string {
	return base + typeSuffix(tys) + "_hook"
}
