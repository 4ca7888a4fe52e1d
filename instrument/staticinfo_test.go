package instrument

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/wippyai/wasm-instrument/wasm"
)

func TestNewStaticInfo(t *testing.T) {
	m := &wasm.Module{}
	ft := m.AddType(wasm.FuncType{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI64}})
	m.Funcs = []uint32{ft}
	m.Code = []wasm.FuncBody{{}}
	m.Globals = []wasm.Global{{Type: wasm.GlobalType{ValType: wasm.ValF32}}}

	info, err := NewStaticInfo(m)
	if err != nil {
		t.Fatalf("NewStaticInfo: %v", err)
	}
	if len(info.Functions) != 1 || info.Functions[0].Type.Results[0] != wasm.ValI64 {
		t.Fatalf("Functions = %+v", info.Functions)
	}
	if len(info.Globals) != 1 || info.Globals[0] != wasm.ValF32 {
		t.Fatalf("Globals = %+v", info.Globals)
	}
}

func TestStaticInfoAddBrTableAndSerialize(t *testing.T) {
	info := &StaticInfo{}
	idx := info.AddBrTable(BrTableInfo{
		Targets: []LabelAndLocation{{Label: 0, Location: 0}},
		Default: LabelAndLocation{Label: 1, Location: 1},
	})
	if idx != 0 {
		t.Fatalf("AddBrTable index = %d, want 0", idx)
	}

	serialized, err := info.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(serialized), &decoded); err != nil {
		t.Fatalf("Serialize output is not valid JSON: %v", err)
	}
	if _, ok := decoded["br_tables"]; !ok {
		t.Fatalf("serialized output missing br_tables key: %s", serialized)
	}
}

func TestStaticInfoValTypeJSONUsesTextNames(t *testing.T) {
	info := &StaticInfo{Globals: []wasm.ValType{wasm.ValI32, wasm.ValI64}}
	serialized, err := info.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(serialized, `"i32"`) || !strings.Contains(serialized, `"i64"`) {
		t.Fatalf("serialized globals do not use text names: %s", serialized)
	}
}
