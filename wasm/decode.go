package wasm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-instrument/wasm/internal/binary"
)

// ErrInvalidMagic is returned when a binary does not start with the
// WASM magic number.
var ErrInvalidMagic = errors.New("wasm: invalid magic number")

// ErrInvalidVersion is returned when a binary's version field is not
// the one this package supports.
var ErrInvalidVersion = errors.New("wasm: unsupported version")

// ParseModule decodes a WASM MVP binary into a Module.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("wasm: reading magic: %w", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, fmt.Errorf("wasm: reading version: %w", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}
	lastID := -1
	for {
		id, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("wasm: reading section id: %w", err)
		}

		size, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("wasm: section %d size: %w", id, err)
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("wasm: section %d body: %w", id, err)
		}

		if id != SectionCustom {
			order := sectionOrder(id)
			if order <= lastID {
				return nil, fmt.Errorf("wasm: section %d out of order", id)
			}
			lastID = order
		}

		sr := binary.NewReader(bytes.NewReader(body))
		switch id {
		case SectionCustom:
			err = parseCustomSection(m, sr)
		case SectionType:
			err = parseTypeSection(m, sr)
		case SectionImport:
			err = parseImportSection(m, sr)
		case SectionFunction:
			err = parseFunctionSection(m, sr)
		case SectionTable:
			err = parseTableSection(m, sr)
		case SectionMemory:
			err = parseMemorySection(m, sr)
		case SectionGlobal:
			err = parseGlobalSection(m, sr)
		case SectionExport:
			err = parseExportSection(m, sr)
		case SectionStart:
			err = parseStartSection(m, sr)
		case SectionElement:
			err = parseElementSection(m, sr)
		case SectionCode:
			err = parseCodeSection(m, sr)
		case SectionData:
			err = parseDataSection(m, sr)
		default:
			return nil, fmt.Errorf("wasm: unknown section id %d", id)
		}
		if err != nil {
			return nil, fmt.Errorf("wasm: section %d: %w", id, err)
		}
	}

	return m, nil
}

// sectionOrder maps a section id to its required relative ordering.
// Custom sections are exempt and never call this.
func sectionOrder(id byte) int {
	return int(id)
}

func parseCustomSection(m *Module, r *binary.Reader) error {
	name, err := r.ReadName()
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	data, err := r.ReadRemaining()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: data})
	return nil
}

func parseTypeSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("type %d: %w", i, err)
		}
		if form != 0x60 {
			return fmt.Errorf("type %d: unsupported type form 0x%02x", i, form)
		}
		params, err := readValTypeVec(r)
		if err != nil {
			return fmt.Errorf("type %d params: %w", i, err)
		}
		results, err := readValTypeVec(r)
		if err != nil {
			return fmt.Errorf("type %d results: %w", i, err)
		}
		m.Types = append(m.Types, FuncType{Params: params, Results: results})
	}
	return nil
}

func readValTypeVec(r *binary.Reader) ([]ValType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	vals := make([]ValType, count)
	for i := range vals {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		vals[i] = ValType(b)
	}
	return vals, nil
}

func parseImportSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		modName, err := r.ReadName()
		if err != nil {
			return fmt.Errorf("import %d module: %w", i, err)
		}
		name, err := r.ReadName()
		if err != nil {
			return fmt.Errorf("import %d name: %w", i, err)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("import %d kind: %w", i, err)
		}
		desc := ImportDesc{Kind: kind}
		switch kind {
		case KindFunc:
			desc.TypeIdx, err = r.ReadU32()
		case KindTable:
			var tt TableType
			tt, err = readTableType(r)
			desc.Table = &tt
		case KindMemory:
			var mt MemoryType
			mt, err = readMemoryType(r)
			desc.Memory = &mt
		case KindGlobal:
			var gt GlobalType
			gt, err = readGlobalType(r)
			desc.Global = &gt
		default:
			return fmt.Errorf("import %d: unknown kind %d", i, kind)
		}
		if err != nil {
			return fmt.Errorf("import %d desc: %w", i, err)
		}
		m.Imports = append(m.Imports, Import{Module: modName, Name: name, Desc: desc})
	}
	return nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	elemType, err := r.ReadByte()
	if err != nil {
		return TableType{}, err
	}
	if elemType != ElemTypeFuncRef {
		return TableType{}, fmt.Errorf("unsupported table element type 0x%02x", elemType)
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elemType, Limits: limits}, nil
}

func readMemoryType(r *binary.Reader) (MemoryType, error) {
	limits, err := readLimits(r)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: limits}, nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	min, err := r.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	limits := Limits{Min: uint64(min)}
	if flags&0x01 != 0 {
		max, err := r.ReadU32()
		if err != nil {
			return Limits{}, err
		}
		m := uint64(max)
		limits.Max = &m
	}
	return limits, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	vt, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	return GlobalType{ValType: ValType(vt), Mutable: mut == 1}, nil
}

func parseFunctionSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		typeIdx, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("func %d: %w", i, err)
		}
		m.Funcs = append(m.Funcs, typeIdx)
	}
	return nil
}

func parseTableSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		tt, err := readTableType(r)
		if err != nil {
			return fmt.Errorf("table %d: %w", i, err)
		}
		m.Tables = append(m.Tables, tt)
	}
	return nil
}

func parseMemorySection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		mt, err := readMemoryType(r)
		if err != nil {
			return fmt.Errorf("memory %d: %w", i, err)
		}
		m.Memories = append(m.Memories, mt)
	}
	return nil
}

func parseGlobalSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		gt, err := readGlobalType(r)
		if err != nil {
			return fmt.Errorf("global %d type: %w", i, err)
		}
		init, err := readConstExpr(r)
		if err != nil {
			return fmt.Errorf("global %d init: %w", i, err)
		}
		m.Globals = append(m.Globals, Global{Type: gt, Init: init})
	}
	return nil
}

// readConstExpr reads a constant initializer expression, returning the
// raw encoded bytes up to and including the terminating end opcode.
func readConstExpr(r *binary.Reader) ([]byte, error) {
	var buf []byte
	for {
		instr, err := decodeInstruction(r)
		if err != nil {
			return nil, err
		}
		w := binary.NewWriter()
		EncodeInstructionTo(w, instr)
		buf = append(buf, w.Bytes()...)
		if instr.Opcode == OpEnd {
			return buf, nil
		}
	}
}

func parseExportSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return fmt.Errorf("export %d name: %w", i, err)
		}
		kind, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("export %d kind: %w", i, err)
		}
		idx, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("export %d index: %w", i, err)
		}
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
	}
	return nil
}

func parseStartSection(m *Module, r *binary.Reader) error {
	idx, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

func parseElementSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		flags, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("element %d flags: %w", i, err)
		}
		if flags != 0 {
			return fmt.Errorf("element %d: unsupported flags %d", i, flags)
		}
		offset, err := readConstExpr(r)
		if err != nil {
			return fmt.Errorf("element %d offset: %w", i, err)
		}
		fcount, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("element %d func count: %w", i, err)
		}
		funcIdxs := make([]uint32, fcount)
		for j := range funcIdxs {
			funcIdxs[j], err = r.ReadU32()
			if err != nil {
				return fmt.Errorf("element %d func %d: %w", i, j, err)
			}
		}
		m.Elements = append(m.Elements, Element{Offset: offset, FuncIdxs: funcIdxs})
	}
	return nil
}

func parseCodeSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("code %d size: %w", i, err)
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return fmt.Errorf("code %d body: %w", i, err)
		}
		fb, err := parseFuncBody(body)
		if err != nil {
			return fmt.Errorf("code %d: %w", i, err)
		}
		m.Code = append(m.Code, fb)
	}
	return nil
}

func parseFuncBody(body []byte) (FuncBody, error) {
	br := binary.NewReader(bytes.NewReader(body))
	localGroups, err := br.ReadU32()
	if err != nil {
		return FuncBody{}, fmt.Errorf("local groups: %w", err)
	}
	locals := make([]LocalEntry, localGroups)
	for i := range locals {
		count, err := br.ReadU32()
		if err != nil {
			return FuncBody{}, fmt.Errorf("local group %d count: %w", i, err)
		}
		vt, err := br.ReadByte()
		if err != nil {
			return FuncBody{}, fmt.Errorf("local group %d type: %w", i, err)
		}
		locals[i] = LocalEntry{Count: count, ValType: ValType(vt)}
	}
	rest, err := br.ReadRemaining()
	if err != nil {
		return FuncBody{}, fmt.Errorf("code bytes: %w", err)
	}
	instrs, err := DecodeInstructions(rest)
	if err != nil {
		return FuncBody{}, fmt.Errorf("instructions: %w", err)
	}
	return FuncBody{Locals: locals, Instrs: instrs}, nil
}

func parseDataSection(m *Module, r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		flags, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("data %d flags: %w", i, err)
		}
		if flags != 0 {
			return fmt.Errorf("data %d: unsupported flags %d", i, flags)
		}
		offset, err := readConstExpr(r)
		if err != nil {
			return fmt.Errorf("data %d offset: %w", i, err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return fmt.Errorf("data %d size: %w", i, err)
		}
		init, err := r.ReadBytes(int(size))
		if err != nil {
			return fmt.Errorf("data %d init: %w", i, err)
		}
		m.Data = append(m.Data, DataSegment{Offset: offset, Init: init})
	}
	return nil
}
