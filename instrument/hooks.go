package instrument

import (
	"github.com/wippyai/wasm-instrument/instrument/i64split"
	"github.com/wippyai/wasm-instrument/wasm"
)

// HookRegistry declares every hook as an imported function (module
// "hooks") and assigns it a function index, exposing lookups by
// instruction discriminant (monomorphic) and by (discriminant,
// type-vector) (polymorphic). Every hook's signature is prefixed with
// two i32 parameters (function_index, instruction_index); any i64
// parameter after the prefix is expanded into (low, high) i32 pairs.
type HookRegistry struct {
	monoByOpcode  map[byte]uint32
	monoSingleton map[string]uint32
	poly          map[string]map[string]uint32
	callResult    map[string]uint32
}

// singleton monomorphic hook keys, distinct from opcode-keyed names.
const (
	kindIf            = "if"
	kindBr            = "br"
	kindBrIf          = "br_if"
	kindBrTable       = "br_table"
	kindNop           = "nop"
	kindUnreachable   = "unreachable"
	kindDrop          = "drop"
	kindSelect        = "select"
	kindCurrentMemory = "current_memory"
	kindGrowMemory    = "grow_memory"
)

func beginKindKey(k beginKind) string { return "begin_" + k.String() }
func endKindKey(k beginKind) string   { return "end_" + k.String() }

// polymorphic registry kinds.
const (
	polyReturn       = "return"
	polyGetLocal     = "get_local"
	polySetLocal     = "set_local"
	polyTeeLocal     = "tee_local"
	polyGetGlobal    = "get_global"
	polySetGlobal    = "set_global"
	polyCall         = "call"
	polyCallIndirect = "call_indirect"
)

// prefixTypes is the (function_index, instruction_index) parameter
// pair every hook begins with.
var prefixTypes = []wasm.ValType{wasm.ValI32, wasm.ValI32}

// NewHookRegistry declares every hook import the instrumentation pass
// needs, derived from catalog's type alphabet, and appends them to
// module.Imports. It must run before any function body is rewritten.
func NewHookRegistry(module *wasm.Module, catalog *TypeCatalog) (*HookRegistry, error) {
	reg := &HookRegistry{
		monoByOpcode:  map[byte]uint32{},
		monoSingleton: map[string]uint32{},
		poly:          map[string]map[string]uint32{},
		callResult:    map[string]uint32{},
	}

	declare := func(name string, extra []wasm.ValType) (uint32, error) {
		params := append(append([]wasm.ValType{}, prefixTypes...), extra...)
		typeIdx := module.AddType(wasm.FuncType{Params: params})
		idx := uint32(module.NumImportedFuncs())
		module.Imports = append(module.Imports, wasm.Import{
			Module: "hooks",
			Name:   name,
			Desc:   wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx},
		})
		return idx, nil
	}

	// Monomorphic hooks for every concrete Const/Unary/Binary/
	// MemoryLoad/MemoryStore opcode.
	for op := range opcodeName {
		extra, err := monoOpcodeArgs(op)
		if err != nil {
			return nil, err
		}
		idx, err := declare(monoHookName(op), extra)
		if err != nil {
			return nil, err
		}
		reg.monoByOpcode[op] = idx
	}

	// Singleton monomorphic hooks.
	singleton := []struct {
		key   string
		name  string
		extra []wasm.ValType
	}{
		{kindIf, nameIf, []wasm.ValType{wasm.ValI32}},
		{kindBr, nameBr, []wasm.ValType{wasm.ValI32, wasm.ValI32}},
		{kindBrIf, nameBrIf, []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32}},
		{kindBrTable, nameBrTable, []wasm.ValType{wasm.ValI32, wasm.ValI32}},
		{kindNop, nameNop, nil},
		{kindUnreachable, nameUnreachable, nil},
		{kindDrop, nameDrop, nil},
		{kindSelect, nameSelect, []wasm.ValType{wasm.ValI32}},
		{kindCurrentMemory, nameCurrentMemory, []wasm.ValType{wasm.ValI32}},
		{kindGrowMemory, nameGrowMemory, []wasm.ValType{wasm.ValI32, wasm.ValI32}},
	}
	for _, s := range singleton {
		idx, err := declare(s.name, s.extra)
		if err != nil {
			return nil, err
		}
		reg.monoSingleton[s.key] = idx
	}

	for _, k := range []beginKind{beginFunction, beginBlock, beginLoop, beginIf, beginElse} {
		idx, err := declare(beginHookName(k.String()), nil)
		if err != nil {
			return nil, err
		}
		reg.monoSingleton[beginKindKey(k)] = idx

		var endExtra []wasm.ValType
		if k != beginFunction {
			endExtra = []wasm.ValType{wasm.ValI32}
		}
		eidx, err := declare(endHookName(k.String()), endExtra)
		if err != nil {
			return nil, err
		}
		reg.monoSingleton[endKindKey(k)] = eidx
	}

	// Polymorphic hooks.
	for _, tys := range catalog.ResultTypes {
		idx, err := declare(polyHookName(nameReturn, tys), i64split.Types(tys))
		if err != nil {
			return nil, err
		}
		reg.setPoly(polyReturn, tys, idx)
	}

	localGlobalTypes := [][]wasm.ValType{{wasm.ValI32}, {wasm.ValI64}, {wasm.ValF32}, {wasm.ValF64}}
	for _, base := range []string{polyGetLocal, polySetLocal, polyTeeLocal, polyGetGlobal, polySetGlobal} {
		for _, tys := range localGlobalTypes {
			extra := append([]wasm.ValType{wasm.ValI32}, i64split.Types(tys)...)
			idx, err := declare(polyHookName(base, tys), extra)
			if err != nil {
				return nil, err
			}
			reg.setPoly(base, tys, idx)
		}
	}

	for _, tys := range catalog.ArgTypes {
		extra := append([]wasm.ValType{wasm.ValI32}, i64split.Types(tys)...)
		for _, base := range []string{polyCall, polyCallIndirect} {
			idx, err := declare(polyHookName(base, tys), extra)
			if err != nil {
				return nil, err
			}
			reg.setPoly(base, tys, idx)
		}
	}

	// Call-result hooks: not tied to a Wasm instruction, invoked after
	// every call/call_indirect.
	for _, tys := range catalog.ResultTypes {
		idx, err := declare(polyHookName(nameCallResult, tys), i64split.Types(tys))
		if err != nil {
			return nil, err
		}
		reg.callResult[typeKey(tys)] = idx
	}

	return reg, nil
}

func (r *HookRegistry) setPoly(kind string, tys []wasm.ValType, idx uint32) {
	m, ok := r.poly[kind]
	if !ok {
		m = map[string]uint32{}
		r.poly[kind] = m
	}
	m[typeKey(tys)] = idx
}

// Mono looks up the monomorphic hook for a concrete Const/Unary/Binary/
// MemoryLoad/MemoryStore opcode.
func (r *HookRegistry) Mono(op byte) (uint32, error) {
	idx, ok := r.monoByOpcode[op]
	if !ok {
		return 0, instErr(PhaseHooks, "no monomorphic hook for opcode", nil)
	}
	return idx, nil
}

// Singleton looks up a fixed, non-type-parametric monomorphic hook by key.
func (r *HookRegistry) Singleton(key string) (uint32, error) {
	idx, ok := r.monoSingleton[key]
	if !ok {
		return 0, instErr(PhaseHooks, "no singleton hook for key "+key, nil)
	}
	return idx, nil
}

// Poly looks up a polymorphic hook by kind and type vector.
func (r *HookRegistry) Poly(kind string, tys []wasm.ValType) (uint32, error) {
	m, ok := r.poly[kind]
	if !ok {
		return 0, instErr(PhaseHooks, "no polymorphic hook family for kind "+kind, nil)
	}
	idx, ok := m[typeKey(tys)]
	if !ok {
		return 0, instErr(PhaseHooks, "no polymorphic hook for kind "+kind+" and type vector", nil)
	}
	return idx, nil
}

// CallResult looks up the call_result hook for a result type vector.
func (r *HookRegistry) CallResult(tys []wasm.ValType) (uint32, error) {
	idx, ok := r.callResult[typeKey(tys)]
	if !ok {
		return 0, instErr(PhaseHooks, "no call_result hook for type vector", nil)
	}
	return idx, nil
}

// monoOpcodeArgs computes the extra (post-prefix, post-i64-split)
// parameter types for a concrete opcode's monomorphic hook from its
// instruction group.
func monoOpcodeArgs(op byte) ([]wasm.ValType, error) {
	info := classify(op)
	switch info.group {
	case GroupConst:
		return i64split.Type(info.result), nil
	case GroupUnary:
		return append(i64split.Type(info.inputs[0]), i64split.Type(info.result)...), nil
	case GroupBinary:
		args := append([]wasm.ValType{}, i64split.Type(info.inputs[0])...)
		args = append(args, i64split.Type(info.inputs[1])...)
		args = append(args, i64split.Type(info.result)...)
		return args, nil
	case GroupMemoryLoad:
		args := []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32} // offset, alignment, address
		args = append(args, i64split.Type(info.result)...)
		return args, nil
	case GroupMemoryStore:
		args := []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32} // offset, alignment, address
		args = append(args, i64split.Type(info.inputs[0])...)
		return args, nil
	default:
		return nil, instErr(PhaseHooks, "opcode is not mono-hookable", nil)
	}
}
