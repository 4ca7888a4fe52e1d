package instrument

import (
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func buildCatalogModule() *wasm.Module {
	m := &wasm.Module{}
	voidToI32 := m.AddType(wasm.FuncType{Results: []wasm.ValType{wasm.ValI32}})
	i32i32ToVoid := m.AddType(wasm.FuncType{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}})
	m.Imports = append(m.Imports, wasm.Import{
		Module: "env", Name: "imported_fn",
		Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: i32i32ToVoid},
	})
	m.Funcs = []uint32{voidToI32, i32i32ToVoid}
	m.Code = []wasm.FuncBody{{}, {}}
	return m
}

func TestNewTypeCatalog(t *testing.T) {
	m := buildCatalogModule()
	cat, err := NewTypeCatalog(m)
	if err != nil {
		t.Fatalf("NewTypeCatalog: %v", err)
	}

	foundEmptyArgs, foundTwoI32Args := false, false
	for _, v := range cat.ArgTypes {
		if len(v) == 0 {
			foundEmptyArgs = true
		}
		if len(v) == 2 && v[0] == wasm.ValI32 && v[1] == wasm.ValI32 {
			foundTwoI32Args = true
		}
	}
	if !foundEmptyArgs || !foundTwoI32Args {
		t.Fatalf("ArgTypes missing expected vectors: %+v", cat.ArgTypes)
	}

	foundI32Result, foundVoidResult := false, false
	for _, v := range cat.ResultTypes {
		if len(v) == 1 && v[0] == wasm.ValI32 {
			foundI32Result = true
		}
		if len(v) == 0 {
			foundVoidResult = true
		}
	}
	if !foundI32Result || !foundVoidResult {
		t.Fatalf("ResultTypes missing expected vectors: %+v", cat.ResultTypes)
	}
}

func TestTypeKeyDistinguishesOrder(t *testing.T) {
	a := typeKey([]wasm.ValType{wasm.ValI32, wasm.ValI64})
	b := typeKey([]wasm.ValType{wasm.ValI64, wasm.ValI32})
	if a == b {
		t.Fatalf("typeKey collapsed distinct orderings: %q", a)
	}
}
