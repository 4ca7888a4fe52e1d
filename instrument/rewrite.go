package instrument

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-instrument/instrument/i64split"
	"github.com/wippyai/wasm-instrument/wasm"
)

// Instrument rewrites module in place so that every executed
// instruction invokes an imported "hooks" function with enough context
// for an external observer to reconstruct the dynamic trace, and
// returns the JSON-serialized StaticInfo side table.
func Instrument(module *wasm.Module) (string, error) {
	info, err := NewStaticInfo(module)
	if err != nil {
		return "", err
	}

	catalog, err := NewTypeCatalog(module)
	if err != nil {
		return "", err
	}

	if !tableIsExported(module) {
		exportTable(module)
	}

	originalImportedFuncs := module.NumImportedFuncs()
	hooks, err := NewHookRegistry(module, catalog)
	if err != nil {
		return "", err
	}
	numHooks := module.NumImportedFuncs() - originalImportedFuncs
	adjustFuncIndices(module, originalImportedFuncs, numHooks)

	for fn := range module.Code {
		if err := rewriteFunction(module, fn, hooks, info); err != nil {
			return "", err
		}
	}

	serialized, err := info.Serialize()
	if err != nil {
		return "", err
	}

	Logger().Info("instrumentation complete",
		zap.Int("functions", len(module.Code)),
		zap.Int("br_tables", len(info.BrTables)),
		zap.Int("hooks", numHooks),
	)

	return serialized, nil
}

func tableIsExported(module *wasm.Module) bool {
	for _, e := range module.Exports {
		if e.Kind == wasm.KindTable {
			return true
		}
	}
	return false
}

func exportTable(module *wasm.Module) {
	if len(module.Tables) == 0 && module.NumImportedTables() == 0 {
		return
	}
	module.Exports = append(module.Exports, wasm.Export{Name: "table", Kind: wasm.KindTable, Idx: 0})
}

// adjustFuncIndices shifts every reference to an original module-defined
// function (one whose index was >= originalImportedFuncs before the
// hook imports were prepended to the function index space) by numHooks,
// so call sites, exports, the start function, and element segments keep
// pointing at the correct function after hook imports are inserted
// ahead of them in the index space.
func adjustFuncIndices(module *wasm.Module, originalImportedFuncs, numHooks int) {
	if numHooks == 0 {
		return
	}
	adjust := func(idx uint32) uint32 {
		if idx >= uint32(originalImportedFuncs) {
			return idx + uint32(numHooks)
		}
		return idx
	}

	for fn := range module.Code {
		for i, instr := range module.Code[fn].Instrs {
			if instr.Opcode == wasm.OpCall {
				imm := instr.Imm.(wasm.CallImm)
				imm.FuncIdx = adjust(imm.FuncIdx)
				module.Code[fn].Instrs[i].Imm = imm
			}
		}
	}
	for i, e := range module.Exports {
		if e.Kind == wasm.KindFunc {
			module.Exports[i].Idx = adjust(e.Idx)
		}
	}
	if module.Start != nil {
		adjusted := adjust(*module.Start)
		module.Start = &adjusted
	}
	for i, el := range module.Elements {
		for j, idx := range el.FuncIdxs {
			module.Elements[i].FuncIdxs[j] = adjust(idx)
		}
	}
}

// loc emits the two-instruction (function_index, instruction_index)
// location prefix every hook call carries.
func loc(fidx, iidx int) []wasm.Instruction {
	return []wasm.Instruction{
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(fidx)}},
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(iidx)}},
	}
}

func callHook(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: idx}}
}

func i32const(v int32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: v}}
}

func localGet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: idx}}
}

func localTee(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpLocalTee, Imm: wasm.LocalImm{LocalIdx: idx}}
}

func localSet(idx uint32) wasm.Instruction {
	return wasm.Instruction{Opcode: wasm.OpLocalSet, Imm: wasm.LocalImm{LocalIdx: idx}}
}

// rewriteFunction runs the Rewriter over one non-imported function,
// replacing its original body with the instrumented sequence.
func rewriteFunction(module *wasm.Module, fn int, hooks *HookRegistry, info *StaticInfo) error {
	funcIdx := module.NumImportedFuncs() + fn
	body := module.Code[fn]
	original := body.Instrs

	ft, err := module.GetFuncType(uint32(funcIdx))
	if err != nil {
		return instErrAt(PhaseRewrite, funcIdx, 0, "resolving function type", err)
	}

	locals := NewLocalAllocator(ft.Params, body.Locals)
	cs := NewControlStack()

	out := make([]wasm.Instruction, 0, 4*len(original))

	beginFuncHook, err := hooks.Singleton(beginKindKey(beginFunction))
	if err != nil {
		return instErrAt(PhaseRewrite, funcIdx, 0, "begin_function hook", err)
	}
	out = append(out, i32const(int32(funcIdx)), i32const(-1), callHook(beginFuncHook))

	for iidx, instr := range original {
		emitted, err := rewriteInstruction(module, funcIdx, iidx, instr, hooks, locals, cs, info)
		if err != nil {
			return err
		}
		out = append(out, emitted...)
	}

	if !cs.Empty() {
		return instErrAt(PhaseControl, funcIdx, len(original), "unclosed structured region at function end", nil)
	}

	module.Code[fn] = wasm.FuncBody{Locals: locals.Locals(), Instrs: out}

	Logger().Debug("instrumented function",
		zap.Int("func_index", funcIdx), zap.Int("instr_count", len(original)),
	)
	return nil
}

// rewriteInstruction dispatches a single original instruction to its
// instrumented replacement sequence.
func rewriteInstruction(
	module *wasm.Module,
	funcIdx, iidx int,
	instr wasm.Instruction,
	hooks *HookRegistry,
	locals *LocalAllocator,
	cs *ControlStack,
	info *StaticInfo,
) ([]wasm.Instruction, error) {
	fail := func(reason string, cause error) ([]wasm.Instruction, error) {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, reason, cause)
	}

	switch instr.Opcode {
	case wasm.OpBlock, wasm.OpLoop:
		kind := beginBlock
		name := "begin_block"
		if instr.Opcode == wasm.OpLoop {
			kind = beginLoop
			name = "begin_loop"
		}
		h, err := hooks.Singleton(beginKindKey(kind))
		if err != nil {
			return fail(name, err)
		}
		cs.Push(kind, iidx)
		out := []wasm.Instruction{instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, callHook(h))
		return out, nil

	case wasm.OpIf:
		c := locals.AddFreshLocal(wasm.ValI32)
		ifHook, err := hooks.Singleton(kindIf)
		if err != nil {
			return fail("if_hook", err)
		}
		beginIfHook, err := hooks.Singleton(beginKindKey(beginIf))
		if err != nil {
			return fail("begin_if_hook", err)
		}
		cs.Push(beginIf, iidx)

		out := []wasm.Instruction{localTee(c)}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, localGet(c), callHook(ifHook), instr)
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, callHook(beginIfHook))
		return out, nil

	case wasm.OpElse:
		opened, err := cs.Pop()
		if err != nil {
			return fail("else with no matching if", err)
		}
		if opened.kind != beginIf {
			return fail("else with no matching if", nil)
		}
		endElseHook, err := hooks.Singleton(endKindKey(beginElse))
		if err != nil {
			return fail("end_else_hook", err)
		}
		beginElseHook, err := hooks.Singleton(beginKindKey(beginElse))
		if err != nil {
			return fail("begin_else_hook", err)
		}
		cs.Push(beginElse, iidx)

		out := append(loc(funcIdx, iidx), i32const(int32(opened.idx)), callHook(endElseHook), instr)
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, callHook(beginElseHook))
		return out, nil

	case wasm.OpEnd:
		opened, err := cs.Pop()
		if err != nil {
			return fail("end with no matching begin", err)
		}
		h, err := hooks.Singleton(endKindKey(opened.kind))
		if err != nil {
			return fail("end hook", err)
		}
		out := loc(funcIdx, iidx)
		if opened.kind != beginFunction {
			out = append(out, i32const(int32(opened.idx)))
		}
		out = append(out, callHook(h), instr)
		return out, nil

	case wasm.OpNop, wasm.OpUnreachable:
		key := kindNop
		if instr.Opcode == wasm.OpUnreachable {
			key = kindUnreachable
		}
		h, err := hooks.Singleton(key)
		if err != nil {
			return fail(key+"_hook", err)
		}
		out := []wasm.Instruction{instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, callHook(h))
		return out, nil

	case wasm.OpDrop:
		h, err := hooks.Singleton(kindDrop)
		if err != nil {
			return fail("drop_hook", err)
		}
		out := []wasm.Instruction{instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, callHook(h))
		return out, nil

	case wasm.OpSelect:
		c := locals.AddFreshLocal(wasm.ValI32)
		h, err := hooks.Singleton(kindSelect)
		if err != nil {
			return fail("select_hook", err)
		}
		out := []wasm.Instruction{localTee(c), instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, localGet(c), callHook(h))
		return out, nil

	case wasm.OpMemorySize:
		r := locals.AddFreshLocal(wasm.ValI32)
		h, err := hooks.Singleton(kindCurrentMemory)
		if err != nil {
			return fail("current_memory_hook", err)
		}
		out := []wasm.Instruction{instr, localTee(r)}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, localGet(r), callHook(h))
		return out, nil

	case wasm.OpMemoryGrow:
		in := locals.AddFreshLocal(wasm.ValI32)
		r := locals.AddFreshLocal(wasm.ValI32)
		h, err := hooks.Singleton(kindGrowMemory)
		if err != nil {
			return fail("grow_memory_hook", err)
		}
		out := []wasm.Instruction{localTee(in), instr, localTee(r)}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, localGet(in), localGet(r), callHook(h))
		return out, nil

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee:
		imm := instr.Imm.(wasm.LocalImm)
		ty := locals.TypeOf(imm.LocalIdx)
		base := map[byte]string{wasm.OpLocalGet: polyGetLocal, wasm.OpLocalSet: polySetLocal, wasm.OpLocalTee: polyTeeLocal}[instr.Opcode]
		h, err := hooks.Poly(base, []wasm.ValType{ty})
		if err != nil {
			return fail(base+" hook", err)
		}
		out := []wasm.Instruction{instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, i32const(int32(imm.LocalIdx)))
		out = append(out, restoreLocalsWithI64Handling([]uint32{imm.LocalIdx}, []wasm.ValType{ty})...)
		out = append(out, callHook(h))
		return out, nil

	case wasm.OpGlobalGet, wasm.OpGlobalSet:
		imm := instr.Imm.(wasm.GlobalImm)
		ty, err := globalType(module, imm.GlobalIdx)
		if err != nil {
			return fail("resolving global type", err)
		}
		base := polyGetGlobal
		if instr.Opcode == wasm.OpGlobalSet {
			base = polySetGlobal
		}
		h, err := hooks.Poly(base, []wasm.ValType{ty})
		if err != nil {
			return fail(base+" hook", err)
		}
		out := []wasm.Instruction{instr}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, i32const(int32(imm.GlobalIdx)))
		out = append(out, restoreGlobalValue(module, imm.GlobalIdx, ty)...)
		out = append(out, callHook(h))
		return out, nil

	case wasm.OpReturn:
		ft, err := module.GetFuncType(uint32(funcIdx))
		if err != nil {
			return fail("resolving function type", err)
		}
		saved := locals.AddFreshLocals(ft.Results)
		h, err := hooks.Poly(polyReturn, ft.Results)
		if err != nil {
			return fail("return hook", err)
		}
		out := saveStackToLocals(saved)
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, restoreLocalsWithI64Handling(saved, ft.Results)...)
		out = append(out, callHook(h), instr)
		return out, nil

	case wasm.OpCall:
		return rewriteCall(module, funcIdx, iidx, instr, hooks, locals)

	case wasm.OpCallIndirect:
		return rewriteCallIndirect(module, funcIdx, iidx, instr, hooks, locals)

	case wasm.OpBr:
		imm := instr.Imm.(wasm.BranchImm)
		target, err := cs.LabelToInstrIdx(imm.LabelIdx)
		if err != nil {
			return fail("resolving branch target", err)
		}
		h, err := hooks.Singleton(kindBr)
		if err != nil {
			return fail("br_hook", err)
		}
		out := loc(funcIdx, iidx)
		out = append(out, i32const(int32(imm.LabelIdx)), i32const(int32(target)), callHook(h), instr)
		return out, nil

	case wasm.OpBrIf:
		imm := instr.Imm.(wasm.BranchImm)
		target, err := cs.LabelToInstrIdx(imm.LabelIdx)
		if err != nil {
			return fail("resolving branch target", err)
		}
		c := locals.AddFreshLocal(wasm.ValI32)
		h, err := hooks.Singleton(kindBrIf)
		if err != nil {
			return fail("br_if_hook", err)
		}
		out := []wasm.Instruction{localTee(c)}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, i32const(int32(imm.LabelIdx)), i32const(int32(target)), localGet(c), callHook(h), instr)
		return out, nil

	case wasm.OpBrTable:
		imm := instr.Imm.(wasm.BrTableImm)
		brInfo := BrTableInfo{Default: resolveLabel(cs, imm.Default)}
		for _, l := range imm.Labels {
			brInfo.Targets = append(brInfo.Targets, resolveLabel(cs, l))
		}
		tableIdx := info.AddBrTable(brInfo)

		t := locals.AddFreshLocal(wasm.ValI32)
		h, err := hooks.Singleton(kindBrTable)
		if err != nil {
			return fail("br_table_hook", err)
		}
		out := []wasm.Instruction{localTee(t)}
		out = append(out, loc(funcIdx, iidx)...)
		out = append(out, i32const(int32(tableIdx)), localGet(t), callHook(h), instr)
		return out, nil
	}

	info2 := classify(instr.Opcode)
	switch info2.group {
	case GroupConst:
		return rewriteConst(funcIdx, iidx, instr, hooks)
	case GroupUnary:
		return rewriteUnary(funcIdx, iidx, instr, info2, hooks, locals)
	case GroupBinary:
		return rewriteBinary(funcIdx, iidx, instr, info2, hooks, locals)
	case GroupMemoryLoad:
		return rewriteMemoryLoad(funcIdx, iidx, instr, info2, hooks, locals)
	case GroupMemoryStore:
		return rewriteMemoryStore(funcIdx, iidx, instr, info2, hooks, locals)
	}

	return fail("unsupported instruction", nil)
}

// location is populated with the label itself rather than a resolved
// instruction index, matching the source's documented (unfixed) behavior
// -- see design notes on BrTableInfo.
func resolveLabel(cs *ControlStack, label uint32) LabelAndLocation {
	return LabelAndLocation{Label: label, Location: label}
}

func rewriteConst(funcIdx, iidx int, instr wasm.Instruction, hooks *HookRegistry) ([]wasm.Instruction, error) {
	h, err := hooks.Mono(instr.Opcode)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "const hook", err)
	}
	out := loc(funcIdx, iidx)
	out = append(out, constValueArgs(instr)...)
	out = append(out, callHook(h), instr)
	return out, nil
}

func constValueArgs(instr wasm.Instruction) []wasm.Instruction {
	switch imm := instr.Imm.(type) {
	case wasm.I32Imm:
		return []wasm.Instruction{i32const(imm.Value)}
	case wasm.I64Imm:
		low, high := i64split.Halves(imm.Value)
		return []wasm.Instruction{i32const(low), i32const(high)}
	case wasm.F32Imm:
		return []wasm.Instruction{{Opcode: wasm.OpF32Const, Imm: imm}}
	case wasm.F64Imm:
		return []wasm.Instruction{{Opcode: wasm.OpF64Const, Imm: imm}}
	}
	return nil
}

func rewriteUnary(funcIdx, iidx int, instr wasm.Instruction, info classInfo, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	h, err := hooks.Mono(instr.Opcode)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "unary hook", err)
	}
	in := locals.AddFreshLocal(info.inputs[0])
	r := locals.AddFreshLocal(info.result)
	out := []wasm.Instruction{localTee(in), instr, localTee(r)}
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, restoreLocalsWithI64Handling([]uint32{in, r}, []wasm.ValType{info.inputs[0], info.result})...)
	out = append(out, callHook(h))
	return out, nil
}

func rewriteBinary(funcIdx, iidx int, instr wasm.Instruction, info classInfo, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	h, err := hooks.Mono(instr.Opcode)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "binary hook", err)
	}
	first := locals.AddFreshLocal(info.inputs[0])
	second := locals.AddFreshLocal(info.inputs[1])
	saved := saveStackToLocals([]uint32{first, second})
	r := locals.AddFreshLocal(info.result)

	out := saved
	out = append(out, instr, localTee(r))
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, restoreLocalsWithI64Handling(
		[]uint32{first, second, r},
		[]wasm.ValType{info.inputs[0], info.inputs[1], info.result},
	)...)
	out = append(out, callHook(h))
	return out, nil
}

func rewriteMemoryLoad(funcIdx, iidx int, instr wasm.Instruction, info classInfo, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	h, err := hooks.Mono(instr.Opcode)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "memory load hook", err)
	}
	imm := instr.Imm.(wasm.MemoryImm)
	a := locals.AddFreshLocal(wasm.ValI32)
	v := locals.AddFreshLocal(info.result)

	out := []wasm.Instruction{localTee(a), instr, localTee(v)}
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, i32const(int32(imm.Offset)), i32const(int32(imm.Align)))
	out = append(out, restoreLocalsWithI64Handling([]uint32{a, v}, []wasm.ValType{wasm.ValI32, info.result})...)
	out = append(out, callHook(h))
	return out, nil
}

func rewriteMemoryStore(funcIdx, iidx int, instr wasm.Instruction, info classInfo, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	h, err := hooks.Mono(instr.Opcode)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "memory store hook", err)
	}
	imm := instr.Imm.(wasm.MemoryImm)
	a := locals.AddFreshLocal(wasm.ValI32)
	v := locals.AddFreshLocal(info.inputs[0])
	saved := saveStackToLocals([]uint32{a, v})

	out := saved
	out = append(out, instr)
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, i32const(int32(imm.Offset)), i32const(int32(imm.Align)))
	out = append(out, restoreLocalsWithI64Handling([]uint32{a, v}, []wasm.ValType{wasm.ValI32, info.inputs[0]})...)
	out = append(out, callHook(h))
	return out, nil
}

func rewriteCall(module *wasm.Module, funcIdx, iidx int, instr wasm.Instruction, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	imm := instr.Imm.(wasm.CallImm)
	ft, err := module.GetFuncType(imm.FuncIdx)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "resolving call target type", err)
	}

	argLocals := locals.AddFreshLocals(ft.Params)
	preHook, err := hooks.Poly(polyCall, ft.Params)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "call hook", err)
	}

	out := saveStackToLocals(argLocals)
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, i32const(int32(imm.FuncIdx)))
	out = append(out, restoreLocalsWithI64Handling(argLocals, ft.Params)...)
	out = append(out, callHook(preHook), instr)

	post, err := postCallSequence(funcIdx, iidx, ft.Results, hooks, locals)
	if err != nil {
		return nil, err
	}
	out = append(out, post...)
	return out, nil
}

func rewriteCallIndirect(module *wasm.Module, funcIdx, iidx int, instr wasm.Instruction, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	imm := instr.Imm.(wasm.CallIndirectImm)
	if int(imm.TypeIdx) >= len(module.Types) {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "call_indirect type index out of range", nil)
	}
	ft := module.Types[imm.TypeIdx]

	t := locals.AddFreshLocal(wasm.ValI32)
	argLocals := locals.AddFreshLocals(ft.Params)
	preHook, err := hooks.Poly(polyCallIndirect, ft.Params)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "call_indirect hook", err)
	}

	out := []wasm.Instruction{localSet(t)}
	out = append(out, saveStackToLocals(argLocals)...)
	out = append(out, localGet(t))
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, localGet(t))
	out = append(out, restoreLocalsWithI64Handling(argLocals, ft.Params)...)
	out = append(out, callHook(preHook), instr)

	post, err := postCallSequence(funcIdx, iidx, ft.Results, hooks, locals)
	if err != nil {
		return nil, err
	}
	out = append(out, post...)
	return out, nil
}

func postCallSequence(funcIdx, iidx int, results []wasm.ValType, hooks *HookRegistry, locals *LocalAllocator) ([]wasm.Instruction, error) {
	resultLocals := locals.AddFreshLocals(results)
	resultHook, err := hooks.CallResult(results)
	if err != nil {
		return nil, instErrAt(PhaseRewrite, funcIdx, iidx, "call_result hook", err)
	}
	out := saveStackToLocals(resultLocals)
	out = append(out, loc(funcIdx, iidx)...)
	out = append(out, restoreLocalsWithI64Handling(resultLocals, results)...)
	out = append(out, callHook(resultHook))
	return out, nil
}

func globalType(module *wasm.Module, idx uint32) (wasm.ValType, error) {
	imported := uint32(module.NumImportedGlobals())
	if idx < imported {
		var cur uint32
		for _, imp := range module.Imports {
			if imp.Desc.Kind != wasm.KindGlobal {
				continue
			}
			if cur == idx {
				return imp.Desc.Global.ValType, nil
			}
			cur++
		}
	}
	local := idx - imported
	if int(local) >= len(module.Globals) {
		return 0, instErr(PhaseRewrite, "global index out of range", nil)
	}
	return module.Globals[local].Type.ValType, nil
}

func restoreGlobalValue(module *wasm.Module, idx uint32, ty wasm.ValType) []wasm.Instruction {
	// Globals are not locals, so the generic local-restore helper does
	// not apply; global.get is re-issued and i64 values are split
	// exactly as restoreLocalsWithI64Handling would split a local.
	if ty != wasm.ValI64 {
		return []wasm.Instruction{{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{GlobalIdx: idx}}}
	}
	return []wasm.Instruction{
		{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{GlobalIdx: idx}},
		{Opcode: wasm.OpI32WrapI64},
		{Opcode: wasm.OpGlobalGet, Imm: wasm.GlobalImm{GlobalIdx: idx}},
		{Opcode: wasm.OpI64Const, Imm: wasm.I64Imm{Value: 32}},
		{Opcode: wasm.OpI64ShrU},
		{Opcode: wasm.OpI32WrapI64},
	}
}
