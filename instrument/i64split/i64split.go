// Package i64split implements the one piece of the instrumentation
// pipeline spec.md treats as an external collaborator: expanding an
// i64 value into two i32 halves so it can cross into a host that
// cannot faithfully represent 64-bit integers (the original source's
// convert_i64_instr/convert_i64_type).
package i64split

import "github.com/wippyai/wasm-instrument/wasm"

// Type expands a single value type into the type vector it occupies
// once i64 values are split: i64 becomes two i32s (low, high), every
// other type is unchanged.
func Type(ty wasm.ValType) []wasm.ValType {
	if ty == wasm.ValI64 {
		return []wasm.ValType{wasm.ValI32, wasm.ValI32}
	}
	return []wasm.ValType{ty}
}

// Types expands a type vector, splitting every i64 entry in place.
func Types(tys []wasm.ValType) []wasm.ValType {
	out := make([]wasm.ValType, 0, len(tys))
	for _, ty := range tys {
		out = append(out, Type(ty)...)
	}
	return out
}

// Halves splits a constant i64 value into its low and high i32 halves,
// low bits first.
func Halves(v int64) (low, high int32) {
	return int32(uint64(v) & 0xFFFFFFFF), int32(uint64(v) >> 32)
}

// LoadHalves emits the instruction sequence that pushes the low i32
// half followed by the high i32 half of the i64 value currently held
// in local localIdx, without consuming the local (local.get is used
// for both halves).
func LoadHalves(localIdx uint32) []wasm.Instruction {
	return []wasm.Instruction{
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: localIdx}},
		{Opcode: wasm.OpI32WrapI64},
		{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: localIdx}},
		{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: 32}},
		{Opcode: wasm.OpI64ShrU},
		{Opcode: wasm.OpI32WrapI64},
	}
}
