package wasm

import "fmt"

// Module is the decoded representation of a WASM MVP binary: its types,
// imports, functions, tables, memories, globals, exports, and the
// instruction sequences making up each function body.
type Module struct {
	Start          *uint32
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // type indices, one per non-imported function
	Tables         []TableType
	Memories       []MemoryType
	Globals        []Global
	Exports        []Export
	Elements       []Element
	Code           []FuncBody
	Data           []DataSegment
	CustomSections []CustomSection
}

// FuncType is a function signature: a vector of parameter types and a
// vector of result types. MVP Wasm allows at most one result.
type FuncType struct {
	Params  []ValType `json:"params"`
	Results []ValType `json:"results"`
}

func (ft FuncType) String() string {
	return fmt.Sprintf("%v -> %v", ft.Params, ft.Results)
}

func typesEqual(a, b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}

// ValType is a WASM value type byte encoding (i32, i64, f32, f64).
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return fmt.Sprintf("valtype(0x%02x)", byte(v))
	}
}

// Size returns the number of 32-bit machine words the type occupies once
// split for host interop: i64 splits into two i32 halves, everything
// else occupies one word.
func (v ValType) Size() int {
	if v == ValI64 {
		return 2
	}
	return 1
}

// MarshalJSON renders a ValType as its text-format name ("i32", "i64", ...).
func (v ValType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON parses a ValType from its text-format name.
func (v *ValType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	switch s {
	case "i32":
		*v = ValI32
	case "i64":
		*v = ValI64
	case "f32":
		*v = ValF32
	case "f64":
		*v = ValF64
	default:
		return fmt.Errorf("wasm: unknown value type %q", s)
	}
	return nil
}

// Import describes a single imported function, table, memory, or global.
type Import struct {
	Module string
	Name   string
	Desc   ImportDesc
}

// ImportDesc is the tagged payload of an Import: exactly one of TypeIdx
// (for Kind == KindFunc), Table, Memory, or Global is meaningful,
// selected by Kind.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32
	Kind    byte
}

// TableType describes the single MVP table: a funcref element type with
// min/max size limits.
type TableType struct {
	Limits   Limits
	ElemType byte
}

// MemoryType describes the single MVP linear memory's size limits, in
// units of 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// Limits is a resizable size range: Min is required, Max is optional.
type Limits struct {
	Max *uint64
	Min uint64
}

// GlobalType is a global variable's value type and mutability flag.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global is a module-defined global: its type plus a constant
// initializer expression (encoded instruction bytes, normally a single
// const instruction followed by end).
type Global struct {
	Type GlobalType
	Init []byte
}

// Export associates a name with an index into one of the module's index
// spaces, selected by Kind.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Element is an active element segment initializing a range of the
// table with function indices. MVP Wasm only has the active,
// table-index-0, funcref-implicit form (flag 0).
type Element struct {
	Offset   []byte
	FuncIdxs []uint32
	TableIdx uint32
}

// FuncBody is a non-imported function's local variable declarations and
// decoded instruction sequence. Unlike a raw byte-for-byte binary
// passthrough, Instrs holds the already-decoded instruction stream so
// that instrumentation can operate directly on structured instructions
// instead of re-parsing code bytes.
type FuncBody struct {
	Locals []LocalEntry
	Instrs []Instruction
}

// LocalEntry is a run-length encoded group of local variables sharing a
// single value type, as declared at the head of a function body.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment is an active data segment initializing a range of memory
// with bytes. MVP Wasm only has the active, memory-index-0 form (flag 0).
type DataSegment struct {
	Offset []byte
	Init   []byte
	MemIdx uint32
}

// CustomSection is a named, opaque auxiliary section, kept as raw bytes.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of function imports, i.e. the
// size of the prefix of the function index space occupied by imports.
func (m *Module) NumImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			n++
		}
	}
	return n
}

// NumImportedGlobals returns the number of global imports.
func (m *Module) NumImportedGlobals() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindGlobal {
			n++
		}
	}
	return n
}

// NumImportedTables returns the number of table imports.
func (m *Module) NumImportedTables() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindTable {
			n++
		}
	}
	return n
}

// NumImportedMemories returns the number of memory imports.
func (m *Module) NumImportedMemories() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindMemory {
			n++
		}
	}
	return n
}

// NumFuncs returns the total size of the function index space: imported
// functions followed by module-defined functions.
func (m *Module) NumFuncs() int {
	return m.NumImportedFuncs() + len(m.Funcs)
}

// GetFuncType returns the signature of the function at the given index
// in the function index space (imports first, then module-defined
// functions).
func (m *Module) GetFuncType(funcIdx uint32) (FuncType, error) {
	imported := uint32(m.NumImportedFuncs())
	if funcIdx < imported {
		var cur uint32
		for _, imp := range m.Imports {
			if imp.Desc.Kind != KindFunc {
				continue
			}
			if cur == funcIdx {
				return m.getFuncTypeByIdx(imp.Desc.TypeIdx)
			}
			cur++
		}
		return FuncType{}, fmt.Errorf("wasm: no such imported function %d", funcIdx)
	}
	localIdx := funcIdx - imported
	if int(localIdx) >= len(m.Funcs) {
		return FuncType{}, fmt.Errorf("wasm: function index %d out of range", funcIdx)
	}
	return m.getFuncTypeByIdx(m.Funcs[localIdx])
}

func (m *Module) getFuncTypeByIdx(typeIdx uint32) (FuncType, error) {
	if int(typeIdx) >= len(m.Types) {
		return FuncType{}, fmt.Errorf("wasm: type index %d out of range", typeIdx)
	}
	return m.Types[typeIdx], nil
}

// AddType appends ft to the module's type section, reusing an existing
// equal entry when one is present, and returns its index.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, existing := range m.Types {
		if typesEqual(existing, ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}
