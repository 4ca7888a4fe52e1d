package instrument

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func TestLocalAllocatorTypeOf(t *testing.T) {
	params := []wasm.ValType{wasm.ValI32, wasm.ValF64}
	existing := []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI64}}
	la := NewLocalAllocator(params, existing)

	if ty := la.TypeOf(0); ty != wasm.ValI32 {
		t.Errorf("TypeOf(0) = %v, want i32", ty)
	}
	if ty := la.TypeOf(1); ty != wasm.ValF64 {
		t.Errorf("TypeOf(1) = %v, want f64", ty)
	}
	if ty := la.TypeOf(2); ty != wasm.ValI64 {
		t.Errorf("TypeOf(2) = %v, want i64", ty)
	}
	if ty := la.TypeOf(3); ty != wasm.ValI64 {
		t.Errorf("TypeOf(3) = %v, want i64", ty)
	}

	fresh := la.AddFreshLocal(wasm.ValF32)
	if fresh != 4 {
		t.Fatalf("AddFreshLocal index = %d, want 4", fresh)
	}
	if ty := la.TypeOf(fresh); ty != wasm.ValF32 {
		t.Errorf("TypeOf(fresh) = %v, want f32", ty)
	}
}

func TestLocalAllocatorAddFreshLocals(t *testing.T) {
	la := NewLocalAllocator(nil, nil)
	idxs := la.AddFreshLocals([]wasm.ValType{wasm.ValI32, wasm.ValI64, wasm.ValI32})
	want := []uint32{0, 1, 2}
	for i, idx := range idxs {
		if idx != want[i] {
			t.Fatalf("AddFreshLocals()[%d] = %d, want %d", i, idx, want[i])
		}
	}
}

func TestLocalAllocatorLocalsRunLengthEncoded(t *testing.T) {
	la := NewLocalAllocator([]wasm.ValType{wasm.ValI32}, nil)
	la.AddFreshLocal(wasm.ValI32)
	la.AddFreshLocal(wasm.ValI32)
	la.AddFreshLocal(wasm.ValF64)

	entries := la.Locals()
	if len(entries) != 2 {
		t.Fatalf("Locals() = %+v, want 2 run-length groups", entries)
	}
	if entries[0].Count != 2 || entries[0].ValType != wasm.ValI32 {
		t.Errorf("Locals()[0] = %+v, want {2 i32}", entries[0])
	}
	if entries[1].Count != 1 || entries[1].ValType != wasm.ValF64 {
		t.Errorf("Locals()[1] = %+v, want {1 f64}", entries[1])
	}
}
