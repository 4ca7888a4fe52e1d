package instrument

import (
	"sort"
	"strings"

	"github.com/wippyai/wasm-instrument/wasm"
)

// TypeCatalog collects every distinct parameter and result type-vector
// occurring among the module's function signatures (imports and
// definitions alike). It supplies the alphabet of monomorphic hook
// instantiations the HookRegistry generates for call/call_indirect/
// return.
type TypeCatalog struct {
	ArgTypes    [][]wasm.ValType
	ResultTypes [][]wasm.ValType
}

// NewTypeCatalog scans module for every function signature (imported
// and defined) and builds the deduplicated, sorted catalog.
func NewTypeCatalog(module *wasm.Module) (*TypeCatalog, error) {
	argSet := map[string][]wasm.ValType{}
	resultSet := map[string][]wasm.ValType{}

	addSig := func(ft wasm.FuncType) {
		argSet[typeKey(ft.Params)] = ft.Params
		resultSet[typeKey(ft.Results)] = ft.Results
	}

	for _, imp := range module.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		if int(imp.Desc.TypeIdx) >= len(module.Types) {
			return nil, instErr(PhaseCatalog, "import type index out of range", nil)
		}
		addSig(module.Types[imp.Desc.TypeIdx])
	}
	for _, typeIdx := range module.Funcs {
		if int(typeIdx) >= len(module.Types) {
			return nil, instErr(PhaseCatalog, "function type index out of range", nil)
		}
		addSig(module.Types[typeIdx])
	}

	return &TypeCatalog{
		ArgTypes:    sortedVectors(argSet),
		ResultTypes: sortedVectors(resultSet),
	}, nil
}

// typeKey canonicalizes a type vector into a map/dedup key.
func typeKey(tys []wasm.ValType) string {
	var b strings.Builder
	for _, t := range tys {
		b.WriteByte(byte(t))
		b.WriteByte(',')
	}
	return b.String()
}

func sortedVectors(set map[string][]wasm.ValType) [][]wasm.ValType {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]wasm.ValType, len(keys))
	for i, k := range keys {
		out[i] = set[k]
	}
	return out
}
