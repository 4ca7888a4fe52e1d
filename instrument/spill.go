package instrument

import (
	"github.com/wippyai/wasm-instrument/instrument/i64split"
	"github.com/wippyai/wasm-instrument/wasm"
)

// saveStackToLocals produces a stack-neutral instruction sequence that
// stores the top len(locals) values into locals (locals[0] is the
// deepest of the group, locals[len-1] the topmost) and re-pushes them
// in their original order. The last store uses local.tee instead of
// local.set so the final value does not need a redundant local.get.
func saveStackToLocals(locals []uint32) []wasm.Instruction {
	n := len(locals)
	if n == 0 {
		return nil
	}
	out := make([]wasm.Instruction, 0, 2*n-1)
	for i := n - 1; i >= 1; i-- {
		out = append(out, wasm.Instruction{Opcode: wasm.OpLocalSet, Imm: wasm.LocalImm{LocalIdx: locals[i]}})
	}
	out = append(out, wasm.Instruction{Opcode: wasm.OpLocalTee, Imm: wasm.LocalImm{LocalIdx: locals[0]}})
	for i := 1; i < n; i++ {
		out = append(out, wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: locals[i]}})
	}
	return out
}

// restoreLocalsWithI64Handling pushes each of locals in order, splitting
// any i64-typed local into its (low, high) i32 halves via i64split so
// the resulting value sequence is safe to pass across the hook
// boundary.
func restoreLocalsWithI64Handling(locals []uint32, types []wasm.ValType) []wasm.Instruction {
	var out []wasm.Instruction
	for i, idx := range locals {
		if types[i] == wasm.ValI64 {
			out = append(out, i64split.LoadHalves(idx)...)
			continue
		}
		out = append(out, wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: idx}})
	}
	return out
}
