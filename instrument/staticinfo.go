package instrument

import (
	"encoding/json"

	"github.com/wippyai/wasm-instrument/wasm"
)

// LabelAndLocation pairs a branch's static label with the instruction
// index its target was resolved to. location is currently populated
// with the same value as label (see the design notes on BrTableInfo
// population); a follow-on pass could resolve it to the true target
// instruction index once two-pass end-index tracking is added.
type LabelAndLocation struct {
	Label    uint32 `json:"label"`
	Location uint32 `json:"location"`
}

// BrTableInfo records one rewritten br_table's targets and default, so
// that the emitted code can reference it by index instead of inlining
// a potentially large jump table at every call site.
type BrTableInfo struct {
	Targets []LabelAndLocation `json:"targets"`
	Default LabelAndLocation   `json:"default"`
}

// FunctionInfo is the static description of one function recorded in
// StaticInfo, independent of any instrumentation applied to it.
type FunctionInfo struct {
	Type wasm.FuncType `json:"type"`
}

// StaticInfo is the module-level side table populated during
// instrumentation: the function signatures and global types (as they
// were before instrumentation added hook imports/locals), plus every
// br_table's target labels, in encounter order. It is serialized to
// JSON and returned to the caller alongside the rewritten module.
type StaticInfo struct {
	Functions []FunctionInfo `json:"functions"`
	Globals   []wasm.ValType `json:"globals"`
	BrTables  []BrTableInfo  `json:"br_tables"`
}

// NewStaticInfo derives the function/global portions of StaticInfo from
// module before any hook imports or instrumentation locals are added.
func NewStaticInfo(module *wasm.Module) (*StaticInfo, error) {
	info := &StaticInfo{}

	for i := 0; i < module.NumFuncs(); i++ {
		ft, err := module.GetFuncType(uint32(i))
		if err != nil {
			return nil, instErr(PhaseCatalog, "resolving function type for static info", err)
		}
		info.Functions = append(info.Functions, FunctionInfo{Type: ft})
	}

	for _, imp := range module.Imports {
		if imp.Desc.Kind == wasm.KindGlobal {
			info.Globals = append(info.Globals, imp.Desc.Global.ValType)
		}
	}
	for _, g := range module.Globals {
		info.Globals = append(info.Globals, g.Type.ValType)
	}

	return info, nil
}

// AddBrTable appends a newly rewritten br_table's info and
// returns its index, to be embedded in the emitted br_table_hook call.
func (s *StaticInfo) AddBrTable(info BrTableInfo) uint32 {
	s.BrTables = append(s.BrTables, info)
	return uint32(len(s.BrTables) - 1)
}

// Serialize renders StaticInfo as JSON, matching spec.md's conceptual
// schema (functions/globals/br_tables).
func (s *StaticInfo) Serialize() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", instErr(PhaseSerialize, "marshaling static info", err)
	}
	return string(data), nil
}
