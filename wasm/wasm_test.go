package wasm

import (
	"reflect"
	"testing"
)

func TestInstructionRoundTrip(t *testing.T) {
	instrs := []Instruction{
		{Opcode: OpI32Const, Imm: I32Imm{Value: -5}},
		{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: 2}},
		{Opcode: OpI32Add},
		{Opcode: OpI64Const, Imm: I64Imm{Value: 1<<40 + 3}},
		{Opcode: OpF32Const, Imm: F32Imm{Value: 1.5}},
		{Opcode: OpF64Const, Imm: F64Imm{Value: -2.25}},
		{Opcode: OpI32Load, Imm: MemoryImm{Align: 2, Offset: 8}},
		{Opcode: OpCall, Imm: CallImm{FuncIdx: 7}},
		{Opcode: OpCallIndirect, Imm: CallIndirectImm{TypeIdx: 3}},
		{Opcode: OpBlock, Imm: BlockImm{Type: BlockTypeVoid}},
		{Opcode: OpBr, Imm: BranchImm{LabelIdx: 1}},
		{Opcode: OpBrTable, Imm: BrTableImm{Labels: []uint32{0, 1, 2}, Default: 3}},
		{Opcode: OpEnd},
		{Opcode: OpEnd},
	}

	encoded := EncodeInstructions(instrs)
	decoded, err := DecodeInstructions(encoded)
	if err != nil {
		t.Fatalf("DecodeInstructions: %v", err)
	}
	if !reflect.DeepEqual(instrs, decoded) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, instrs)
	}
}

func buildMinimalModule() *Module {
	m := &Module{}
	typeIdx := m.AddType(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}})
	m.Funcs = append(m.Funcs, typeIdx)
	m.Exports = append(m.Exports, Export{Name: "double", Kind: KindFunc, Idx: 0})
	m.Code = append(m.Code, FuncBody{
		Instrs: []Instruction{
			{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: 0}},
			{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: 0}},
			{Opcode: OpI32Add},
			{Opcode: OpEnd},
		},
	})
	return m
}

func TestModuleEncodeParseRoundTrip(t *testing.T) {
	m := buildMinimalModule()
	data := m.Encode()

	parsed, err := ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Types) != 1 {
		t.Fatalf("Types: got %d, want 1", len(parsed.Types))
	}
	if len(parsed.Funcs) != 1 {
		t.Fatalf("Funcs: got %d, want 1", len(parsed.Funcs))
	}
	if len(parsed.Exports) != 1 || parsed.Exports[0].Name != "double" {
		t.Fatalf("Exports: got %#v", parsed.Exports)
	}
	if len(parsed.Code) != 1 {
		t.Fatalf("Code: got %d, want 1", len(parsed.Code))
	}
	if !reflect.DeepEqual(parsed.Code[0].Instrs, m.Code[0].Instrs) {
		t.Fatalf("Code instrs mismatch:\n got %#v\nwant %#v", parsed.Code[0].Instrs, m.Code[0].Instrs)
	}
}

func TestParseModuleInvalidMagic(t *testing.T) {
	_, err := ParseModule([]byte{0x00, 0x00, 0x00, 0x00})
	if err != ErrInvalidMagic {
		t.Fatalf("got %v, want ErrInvalidMagic", err)
	}
}

func TestModuleAddTypeDedups(t *testing.T) {
	m := &Module{}
	a := m.AddType(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}})
	b := m.AddType(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}})
	if a != b {
		t.Fatalf("AddType: expected dedup, got %d and %d", a, b)
	}
	c := m.AddType(FuncType{Params: []ValType{ValI64}, Results: []ValType{ValI32}})
	if c == a {
		t.Fatalf("AddType: distinct signature should get new index")
	}
}

func TestGetFuncType(t *testing.T) {
	m := buildMinimalModule()
	ft, err := m.GetFuncType(0)
	if err != nil {
		t.Fatalf("GetFuncType: %v", err)
	}
	if len(ft.Params) != 1 || ft.Params[0] != ValI32 {
		t.Fatalf("GetFuncType: got %#v", ft)
	}
}

func TestValTypeString(t *testing.T) {
	cases := map[ValType]string{ValI32: "i32", ValI64: "i64", ValF32: "f32", ValF64: "f64"}
	for vt, want := range cases {
		if got := vt.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", vt, got, want)
		}
	}
}
