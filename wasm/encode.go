package wasm

import (
	"github.com/wippyai/wasm-instrument/wasm/internal/binary"
)

// Encode serializes the module back into a WASM MVP binary.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	writeSection(w, SectionType, func(sw *binary.Writer) { writeTypeSection(sw, m) })
	writeSection(w, SectionImport, func(sw *binary.Writer) { writeImportSection(sw, m) })
	writeSection(w, SectionFunction, func(sw *binary.Writer) { writeFunctionSection(sw, m) })
	writeSection(w, SectionTable, func(sw *binary.Writer) { writeTableSection(sw, m) })
	writeSection(w, SectionMemory, func(sw *binary.Writer) { writeMemorySection(sw, m) })
	writeSection(w, SectionGlobal, func(sw *binary.Writer) { writeGlobalSection(sw, m) })
	writeSection(w, SectionExport, func(sw *binary.Writer) { writeExportSection(sw, m) })
	if m.Start != nil {
		writeSection(w, SectionStart, func(sw *binary.Writer) { sw.WriteU32(*m.Start) })
	}
	writeSection(w, SectionElement, func(sw *binary.Writer) { writeElementSection(sw, m) })
	writeSection(w, SectionCode, func(sw *binary.Writer) { writeCodeSection(sw, m) })
	writeSection(w, SectionData, func(sw *binary.Writer) { writeDataSection(sw, m) })

	for _, cs := range m.CustomSections {
		writeSection(w, SectionCustom, func(sw *binary.Writer) {
			sw.WriteName(cs.Name)
			sw.WriteBytes(cs.Data)
		})
	}

	return w.Bytes()
}

// writeSection writes a section with its id and u32 size prefix,
// skipping sections whose body would be empty (other than start,
// handled separately, and custom sections which are always emitted).
func writeSection(w *binary.Writer, id byte, body func(*binary.Writer)) {
	sw := binary.NewWriter()
	body(sw)
	if sw.Len() == 0 && id != SectionCustom {
		return
	}
	w.Byte(id)
	w.WriteU32(uint32(sw.Len()))
	w.WriteBytes(sw.Bytes())
}

func writeValTypes(w *binary.Writer, vals []ValType) {
	w.WriteU32(uint32(len(vals)))
	for _, v := range vals {
		w.Byte(byte(v))
	}
}

func writeTypeSection(w *binary.Writer, m *Module) {
	if len(m.Types) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Types)))
	for _, ft := range m.Types {
		w.Byte(0x60)
		writeValTypes(w, ft.Params)
		writeValTypes(w, ft.Results)
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	if l.Max != nil {
		w.Byte(0x01)
		w.WriteU32(uint32(l.Min))
		w.WriteU32(uint32(*l.Max))
	} else {
		w.Byte(0x00)
		w.WriteU32(uint32(l.Min))
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	w.Byte(t.ElemType)
	writeLimits(w, t.Limits)
}

func writeMemoryType(w *binary.Writer, t MemoryType) {
	writeLimits(w, t.Limits)
}

func writeGlobalType(w *binary.Writer, t GlobalType) {
	w.Byte(byte(t.ValType))
	if t.Mutable {
		w.Byte(0x01)
	} else {
		w.Byte(0x00)
	}
}

func writeImportSection(w *binary.Writer, m *Module) {
	if len(m.Imports) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		w.WriteName(imp.Module)
		w.WriteName(imp.Name)
		w.Byte(imp.Desc.Kind)
		switch imp.Desc.Kind {
		case KindFunc:
			w.WriteU32(imp.Desc.TypeIdx)
		case KindTable:
			writeTableType(w, *imp.Desc.Table)
		case KindMemory:
			writeMemoryType(w, *imp.Desc.Memory)
		case KindGlobal:
			writeGlobalType(w, *imp.Desc.Global)
		}
	}
}

func writeFunctionSection(w *binary.Writer, m *Module) {
	if len(m.Funcs) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Funcs)))
	for _, typeIdx := range m.Funcs {
		w.WriteU32(typeIdx)
	}
}

func writeTableSection(w *binary.Writer, m *Module) {
	if len(m.Tables) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Tables)))
	for _, t := range m.Tables {
		writeTableType(w, t)
	}
}

func writeMemorySection(w *binary.Writer, m *Module) {
	if len(m.Memories) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Memories)))
	for _, t := range m.Memories {
		writeMemoryType(w, t)
	}
}

func writeGlobalSection(w *binary.Writer, m *Module) {
	if len(m.Globals) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Globals)))
	for _, g := range m.Globals {
		writeGlobalType(w, g.Type)
		w.WriteBytes(g.Init)
	}
}

func writeExportSection(w *binary.Writer, m *Module) {
	if len(m.Exports) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Exports)))
	for _, e := range m.Exports {
		w.WriteName(e.Name)
		w.Byte(e.Kind)
		w.WriteU32(e.Idx)
	}
}

func writeElementSection(w *binary.Writer, m *Module) {
	if len(m.Elements) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Elements)))
	for _, el := range m.Elements {
		w.WriteU32(0)
		w.WriteBytes(el.Offset)
		w.WriteU32(uint32(len(el.FuncIdxs)))
		for _, idx := range el.FuncIdxs {
			w.WriteU32(idx)
		}
	}
}

func writeCodeSection(w *binary.Writer, m *Module) {
	if len(m.Code) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Code)))
	for _, fb := range m.Code {
		body := binary.NewWriter()
		body.WriteU32(uint32(len(fb.Locals)))
		for _, le := range fb.Locals {
			body.WriteU32(le.Count)
			body.Byte(byte(le.ValType))
		}
		EncodeInstructionsTo(body, fb.Instrs)
		w.WriteU32(uint32(body.Len()))
		w.WriteBytes(body.Bytes())
	}
}

func writeDataSection(w *binary.Writer, m *Module) {
	if len(m.Data) == 0 {
		return
	}
	w.WriteU32(uint32(len(m.Data)))
	for _, d := range m.Data {
		w.WriteU32(0)
		w.WriteBytes(d.Offset)
		w.WriteU32(uint32(len(d.Init)))
		w.WriteBytes(d.Init)
	}
}
