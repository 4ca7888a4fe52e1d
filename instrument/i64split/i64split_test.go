package i64split

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func TestType(t *testing.T) {
	if got := Type(wasm.ValI64); len(got) != 2 || got[0] != wasm.ValI32 || got[1] != wasm.ValI32 {
		t.Fatalf("Type(i64) = %v, want [i32 i32]", got)
	}
	if got := Type(wasm.ValF64); len(got) != 1 || got[0] != wasm.ValF64 {
		t.Fatalf("Type(f64) = %v, want [f64]", got)
	}
}

func TestTypes(t *testing.T) {
	got := Types([]wasm.ValType{wasm.ValI32, wasm.ValI64, wasm.ValF32})
	want := []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValF32}
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Types()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHalves(t *testing.T) {
	low, high := Halves(0x00000002FFFFFFFF)
	if low != -1 {
		t.Errorf("low = %#x, want 0xFFFFFFFF", uint32(low))
	}
	if high != 2 {
		t.Errorf("high = %d, want 2", high)
	}

	low, high = Halves(0)
	if low != 0 || high != 0 {
		t.Errorf("Halves(0) = (%d, %d), want (0, 0)", low, high)
	}

	low, high = Halves(-1)
	if low != -1 || high != -1 {
		t.Errorf("Halves(-1) = (%d, %d), want (-1, -1)", low, high)
	}
}

func TestLoadHalves(t *testing.T) {
	instrs := LoadHalves(4)
	if len(instrs) != 6 {
		t.Fatalf("LoadHalves() len = %d, want 6", len(instrs))
	}
	if instrs[0].Opcode != wasm.OpLocalGet || instrs[0].Imm.(wasm.LocalImm).LocalIdx != 4 {
		t.Errorf("instrs[0] = %+v, want local.get 4", instrs[0])
	}
	if instrs[1].Opcode != wasm.OpI32WrapI64 {
		t.Errorf("instrs[1] = %+v, want i32.wrap_i64", instrs[1])
	}
	if instrs[5].Opcode != wasm.OpI32WrapI64 {
		t.Errorf("instrs[5] = %+v, want i32.wrap_i64", instrs[5])
	}
}
