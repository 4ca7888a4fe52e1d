package instrument

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func TestSaveStackToLocalsSingle(t *testing.T) {
	out := saveStackToLocals([]uint32{3})
	if len(out) != 1 || out[0].Opcode != wasm.OpLocalTee {
		t.Fatalf("saveStackToLocals(1 local) = %+v", out)
	}
}

func TestSaveStackToLocalsMultiple(t *testing.T) {
	out := saveStackToLocals([]uint32{1, 2, 3})
	// local.set(3), local.set(2), local.tee(1), local.get(2), local.get(3)
	if len(out) != 5 {
		t.Fatalf("saveStackToLocals len = %d, want 5", len(out))
	}
	if out[0].Opcode != wasm.OpLocalSet || out[0].Imm.(wasm.LocalImm).LocalIdx != 3 {
		t.Errorf("out[0] = %+v, want local.set 3", out[0])
	}
	if out[1].Opcode != wasm.OpLocalSet || out[1].Imm.(wasm.LocalImm).LocalIdx != 2 {
		t.Errorf("out[1] = %+v, want local.set 2", out[1])
	}
	if out[2].Opcode != wasm.OpLocalTee || out[2].Imm.(wasm.LocalImm).LocalIdx != 1 {
		t.Errorf("out[2] = %+v, want local.tee 1", out[2])
	}
	if out[3].Opcode != wasm.OpLocalGet || out[3].Imm.(wasm.LocalImm).LocalIdx != 2 {
		t.Errorf("out[3] = %+v, want local.get 2", out[3])
	}
	if out[4].Opcode != wasm.OpLocalGet || out[4].Imm.(wasm.LocalImm).LocalIdx != 3 {
		t.Errorf("out[4] = %+v, want local.get 3", out[4])
	}
}

func TestSaveStackToLocalsEmpty(t *testing.T) {
	if out := saveStackToLocals(nil); out != nil {
		t.Fatalf("saveStackToLocals(nil) = %+v, want nil", out)
	}
}

func TestRestoreLocalsWithI64Handling(t *testing.T) {
	out := restoreLocalsWithI64Handling([]uint32{0, 1}, []wasm.ValType{wasm.ValI32, wasm.ValI64})
	// local 0 (i32): 1 instruction. local 1 (i64): 6 instructions (LoadHalves).
	if len(out) != 7 {
		t.Fatalf("restoreLocalsWithI64Handling len = %d, want 7", len(out))
	}
	if out[0].Opcode != wasm.OpLocalGet || out[0].Imm.(wasm.LocalImm).LocalIdx != 0 {
		t.Errorf("out[0] = %+v, want local.get 0", out[0])
	}
	if out[1].Opcode != wasm.OpLocalGet || out[1].Imm.(wasm.LocalImm).LocalIdx != 1 {
		t.Errorf("out[1] = %+v, want local.get 1 (low half)", out[1])
	}
	if out[2].Opcode != wasm.OpI32WrapI64 {
		t.Errorf("out[2] = %+v, want i32.wrap_i64", out[2])
	}
}
