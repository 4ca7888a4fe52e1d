package instrument

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func TestClassifyConst(t *testing.T) {
	info := classify(wasm.OpI64Const)
	if info.group != GroupConst || info.result != wasm.ValI64 {
		t.Fatalf("classify(i64.const) = %+v", info)
	}
}

func TestClassifyUnary(t *testing.T) {
	info := classify(wasm.OpI32Eqz)
	if info.group != GroupUnary {
		t.Fatalf("classify(i32.eqz) group = %v, want GroupUnary", info.group)
	}
	if info.inputs[0] != wasm.ValI32 || info.result != wasm.ValI32 {
		t.Fatalf("classify(i32.eqz) = %+v", info)
	}
}

func TestClassifyBinary(t *testing.T) {
	info := classify(wasm.OpI32DivS)
	if info.group != GroupBinary {
		t.Fatalf("classify(i32.div_s) group = %v, want GroupBinary", info.group)
	}
	if info.inputs[0] != wasm.ValI32 || info.inputs[1] != wasm.ValI32 || info.result != wasm.ValI32 {
		t.Fatalf("classify(i32.div_s) = %+v", info)
	}

	feq := classify(wasm.OpF64Eq)
	if feq.group != GroupBinary || feq.result != wasm.ValI32 {
		t.Fatalf("classify(f64.eq) = %+v, want binary result i32", feq)
	}
}

func TestClassifyMemoryLoadStore(t *testing.T) {
	load := classify(wasm.OpI64Load32U)
	if load.group != GroupMemoryLoad || load.result != wasm.ValI64 {
		t.Fatalf("classify(i64.load32_u) = %+v", load)
	}

	store := classify(wasm.OpF32Store)
	if store.group != GroupMemoryStore || len(store.inputs) != 1 || store.inputs[0] != wasm.ValF32 {
		t.Fatalf("classify(f32.store) = %+v", store)
	}
}

func TestClassifyOther(t *testing.T) {
	info := classify(wasm.OpCall)
	if info.group != GroupOther {
		t.Fatalf("classify(call) group = %v, want GroupOther", info.group)
	}
}
