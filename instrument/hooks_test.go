package instrument

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func buildHookTestModule() *wasm.Module {
	m := &wasm.Module{}
	sig := m.AddType(wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI64}})
	m.Funcs = []uint32{sig}
	m.Code = []wasm.FuncBody{{}}
	return m
}

func TestNewHookRegistryMonoOpcode(t *testing.T) {
	m := buildHookTestModule()
	catalog, err := NewTypeCatalog(m)
	if err != nil {
		t.Fatalf("NewTypeCatalog: %v", err)
	}
	reg, err := NewHookRegistry(m, catalog)
	if err != nil {
		t.Fatalf("NewHookRegistry: %v", err)
	}

	idx, err := reg.Mono(wasm.OpI32Add)
	if err != nil {
		t.Fatalf("Mono(i32.add): %v", err)
	}
	if int(idx) >= len(m.Imports) {
		t.Fatalf("Mono(i32.add) index %d out of import range", idx)
	}
	if name := m.Imports[idx].Name; name != "i32.add_hook" {
		t.Errorf("Mono(i32.add) import name = %q, want i32.add_hook", name)
	}
}

func TestNewHookRegistrySingleton(t *testing.T) {
	m := buildHookTestModule()
	catalog, _ := NewTypeCatalog(m)
	reg, err := NewHookRegistry(m, catalog)
	if err != nil {
		t.Fatalf("NewHookRegistry: %v", err)
	}

	for _, key := range []string{kindIf, kindBr, kindBrIf, kindBrTable, kindNop, kindUnreachable, kindDrop, kindSelect, kindCurrentMemory, kindGrowMemory} {
		if _, err := reg.Singleton(key); err != nil {
			t.Errorf("Singleton(%q): %v", key, err)
		}
	}

	for _, k := range []beginKind{beginFunction, beginBlock, beginLoop, beginIf, beginElse} {
		if _, err := reg.Singleton(beginKindKey(k)); err != nil {
			t.Errorf("Singleton(begin %v): %v", k, err)
		}
		if _, err := reg.Singleton(endKindKey(k)); err != nil {
			t.Errorf("Singleton(end %v): %v", k, err)
		}
	}
}

func TestNewHookRegistryPolymorphic(t *testing.T) {
	m := buildHookTestModule()
	catalog, _ := NewTypeCatalog(m)
	reg, err := NewHookRegistry(m, catalog)
	if err != nil {
		t.Fatalf("NewHookRegistry: %v", err)
	}

	if _, err := reg.Poly(polyCall, []wasm.ValType{wasm.ValI32}); err != nil {
		t.Errorf("Poly(call, [i32]): %v", err)
	}
	if _, err := reg.Poly(polyReturn, []wasm.ValType{wasm.ValI64}); err != nil {
		t.Errorf("Poly(return, [i64]): %v", err)
	}
	if _, err := reg.Poly(polyGetLocal, []wasm.ValType{wasm.ValF32}); err != nil {
		t.Errorf("Poly(get_local, [f32]): %v", err)
	}
	if _, err := reg.CallResult([]wasm.ValType{wasm.ValI64}); err != nil {
		t.Errorf("CallResult([i64]): %v", err)
	}

	if _, err := reg.Poly(polyCall, []wasm.ValType{wasm.ValF64, wasm.ValF64}); err == nil {
		t.Errorf("Poly(call, [f64 f64]) unexpectedly succeeded for an unregistered type vector")
	}
}

func TestNewHookRegistryAppendsImports(t *testing.T) {
	m := buildHookTestModule()
	before := len(m.Imports)
	catalog, _ := NewTypeCatalog(m)
	if _, err := NewHookRegistry(m, catalog); err != nil {
		t.Fatalf("NewHookRegistry: %v", err)
	}
	if len(m.Imports) <= before {
		t.Fatalf("NewHookRegistry did not append any hook imports")
	}
	for _, imp := range m.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			t.Errorf("non-func import %+v found after hook registration", imp)
		}
	}
}

func TestMonoOpcodeArgsI64Split(t *testing.T) {
	args, err := monoOpcodeArgs(wasm.OpI64Add)
	if err != nil {
		t.Fatalf("monoOpcodeArgs(i64.add): %v", err)
	}
	// two i64 inputs + one i64 result, each split into (low, high) i32s.
	if len(args) != 6 {
		t.Fatalf("monoOpcodeArgs(i64.add) = %v, want 6 i32 args", args)
	}
	for _, a := range args {
		if a != wasm.ValI32 {
			t.Fatalf("monoOpcodeArgs(i64.add) contains non-i32 arg %v", a)
		}
	}
}

func TestMonoOpcodeArgsMemory(t *testing.T) {
	args, err := monoOpcodeArgs(wasm.OpI32Load)
	if err != nil {
		t.Fatalf("monoOpcodeArgs(i32.load): %v", err)
	}
	// offset, alignment, address, result.
	if len(args) != 4 {
		t.Fatalf("monoOpcodeArgs(i32.load) = %v, want 4 args", args)
	}
}

func TestMonoOpcodeArgsRejectsOther(t *testing.T) {
	if _, err := monoOpcodeArgs(wasm.OpCall); err == nil {
		t.Fatalf("monoOpcodeArgs(call) unexpectedly succeeded")
	}
}
