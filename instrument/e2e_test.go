package instrument

import (
	"context"
	"sync"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-instrument/wasm"
)

// hookCall records one observed invocation of a "hooks" import, captured
// by a generic recorder host function built directly from the
// instrumented module's own import signatures.
type hookCall struct {
	name  string
	stack []uint64
}

// buildHookRecorder instantiates a "hooks" host module whose every
// export matches one of module's "hooks"-namespace imports, deriving
// each function's wazero signature straight from the import's own
// wasm.FuncType (wasm.ValType's WASM-spec byte encoding is identical to
// api.ValueType's, so the cast is direct). Every call is appended to the
// shared, mutex-guarded trace for later assertion.
func buildHookRecorder(ctx context.Context, rt wazero.Runtime, module *wasm.Module) (*[]hookCall, error) {
	var mu sync.Mutex
	trace := &[]hookCall{}

	builder := rt.NewHostModuleBuilder("hooks")
	for _, imp := range module.Imports {
		if imp.Module != "hooks" || imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		ft := module.Types[imp.Desc.TypeIdx]
		params := make([]api.ValueType, len(ft.Params))
		for i, p := range ft.Params {
			params[i] = api.ValueType(byte(p))
		}

		name := imp.Name
		handler := func(ctx context.Context, mod api.Module, stack []uint64) {
			recorded := append([]uint64{}, stack...)
			mu.Lock()
			*trace = append(*trace, hookCall{name: name, stack: recorded})
			mu.Unlock()
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(handler), params, nil).
			Export(imp.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return nil, err
	}
	return trace, nil
}

func TestE2EAddOneCallsExpectedHooksInOrder(t *testing.T) {
	module := buildAddOneModule()
	if _, err := Instrument(module); err != nil {
		t.Fatalf("Instrument: %v", err)
	}
	binary := module.Encode()

	reparsed, err := wasm.ParseModule(binary)
	if err != nil {
		t.Fatalf("instrumented binary failed to re-parse: %v", err)
	}
	if len(reparsed.Code) != len(module.Code) {
		t.Fatalf("reparsed function count = %d, want %d", len(reparsed.Code), len(module.Code))
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	trace, err := buildHookRecorder(ctx, rt, module)
	if err != nil {
		t.Fatalf("buildHookRecorder: %v", err)
	}

	compiled, err := rt.CompileModule(ctx, binary)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}

	inst, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}
	defer inst.Close(ctx)

	fn := inst.ExportedFunction("add_one")
	if fn == nil {
		t.Fatal("add_one export missing from instantiated module")
	}

	results, err := fn.Call(ctx, 41)
	if err != nil {
		t.Fatalf("add_one.Call: %v", err)
	}
	if len(results) != 1 || results[0] != 42 {
		t.Fatalf("add_one(41) = %v, want [42]", results)
	}

	if len(*trace) == 0 {
		t.Fatal("no hook calls were recorded")
	}

	first := (*trace)[0]
	if first.name != "begin_function_hook" {
		t.Fatalf("first hook call = %q, want begin_function_hook", first.name)
	}

	sawConstHook, sawAddHook := false, false
	for _, call := range *trace {
		switch call.name {
		case "i32.const_hook":
			sawConstHook = true
		case "i32.add_hook":
			sawAddHook = true
		}
	}
	if !sawConstHook {
		t.Error("i32.const_hook was never called")
	}
	if !sawAddHook {
		t.Error("i32.add_hook was never called")
	}
}

// TestE2ECallIndirectProducesCorrectResult instantiates an instrumented
// call_indirect module for real: if the table index were tee'd instead
// of set (leaving a residual value on the stack and misaligning the
// spilled call arguments), this would either trap or return a wrong
// result instead of apply(5) == double(5) == 10.
func TestE2ECallIndirectProducesCorrectResult(t *testing.T) {
	module := buildCallIndirectModule()
	if _, err := Instrument(module); err != nil {
		t.Fatalf("Instrument: %v", err)
	}
	binary := module.Encode()

	if _, err := wasm.ParseModule(binary); err != nil {
		t.Fatalf("instrumented binary failed to re-parse: %v", err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := buildHookRecorder(ctx, rt, module); err != nil {
		t.Fatalf("buildHookRecorder: %v", err)
	}

	compiled, err := rt.CompileModule(ctx, binary)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}

	inst, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}
	defer inst.Close(ctx)

	fn := inst.ExportedFunction("apply")
	if fn == nil {
		t.Fatal("apply export missing from instantiated module")
	}

	results, err := fn.Call(ctx, 5)
	if err != nil {
		t.Fatalf("apply.Call: %v", err)
	}
	if len(results) != 1 || results[0] != 10 {
		t.Fatalf("apply(5) = %v, want [10]", results)
	}
}
