package wasm

import (
	"bytes"
	"fmt"

	"github.com/wippyai/wasm-instrument/wasm/internal/binary"
)

// Instruction is a single decoded WASM instruction: an opcode plus its
// immediate operand, if any. The concrete type of Imm depends on Opcode;
// see the Imm* types below.
type Instruction struct {
	Imm    interface{}
	Opcode byte
}

// BlockImm is the immediate of block, loop, and if: the block's result
// type, encoded as one of the BlockType* constants (void or a single
// value type).
type BlockImm struct {
	Type int32
}

// BranchImm is the immediate of br and br_if: a relative label index
// counting outward from the innermost enclosing structured block.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm is the immediate of br_table: a vector of label indices
// selected by an i32 on the stack, plus a default taken when the index
// is out of range.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm is the immediate of call: the target function index.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm is the immediate of call_indirect: the expected
// signature's type index and, in MVP Wasm, the table index (always 0).
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// LocalImm is the immediate of local.get, local.set, and local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm is the immediate of global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm is the immediate of a load/store instruction: its static
// alignment hint and byte offset. MemIdx is always 0 in MVP Wasm.
type MemoryImm struct {
	Offset uint64
	Align  uint32
	MemIdx uint32
}

// MemoryIdxImm is the immediate of memory.size and memory.grow. Idx is
// always 0 in MVP Wasm.
type MemoryIdxImm struct {
	Idx uint32
}

// I32Imm is the immediate of i32.const.
type I32Imm struct {
	Value int32
}

// I64Imm is the immediate of i64.const.
type I64Imm struct {
	Value int64
}

// F32Imm is the immediate of f32.const.
type F32Imm struct {
	Value float32
}

// F64Imm is the immediate of f64.const.
type F64Imm struct {
	Value float64
}

// GetCallTarget returns the statically known callee function index for
// a call instruction, and whether the instruction is a direct call.
func (i Instruction) GetCallTarget() (uint32, bool) {
	if i.Opcode != OpCall {
		return 0, false
	}
	return i.Imm.(CallImm).FuncIdx, true
}

// IsIndirectCall reports whether the instruction is call_indirect.
func (i Instruction) IsIndirectCall() bool {
	return i.Opcode == OpCallIndirect
}

// DecodeInstructions decodes a function body's instruction stream
// (everything after the local declarations, including the trailing
// end) from raw bytes.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	r := binary.NewReader(bytes.NewReader(code))
	var instrs []Instruction
	for {
		instr, err := decodeInstruction(r)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
		if instr.Opcode == OpEnd && blockDepth(instrs) < 0 {
			break
		}
	}
	return instrs, nil
}

// blockDepth reports the net nesting depth implied by the block/loop/if
// openers and end closers seen so far; DecodeInstructions stops once
// the function's own implicit block is closed by the final end, which
// takes the depth below 0.
func blockDepth(instrs []Instruction) int {
	depth := 0
	for _, instr := range instrs {
		switch instr.Opcode {
		case OpBlock, OpLoop, OpIf:
			depth++
		case OpEnd:
			depth--
		}
	}
	return depth
}

func decodeInstruction(r *binary.Reader) (Instruction, error) {
	op, err := r.ReadByte()
	if err != nil {
		return Instruction{}, fmt.Errorf("opcode: %w", err)
	}

	switch op {
	case OpUnreachable, OpNop, OpElse, OpEnd, OpReturn, OpDrop, OpSelect,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge,
		OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge,
		OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU,
		OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt,
		OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt,
		OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign,
		OpI32WrapI64, OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64ExtendI32S, OpI64ExtendI32U, OpI64TruncF32S, OpI64TruncF32U, OpI64TruncF64S, OpI64TruncF64U,
		OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U, OpF32DemoteF64,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U, OpF64PromoteF32,
		OpI32ReinterpretF32, OpI64ReinterpretF64, OpF32ReinterpretI32, OpF64ReinterpretI64:
		return Instruction{Opcode: op}, nil

	case OpBlock, OpLoop, OpIf:
		bt, err := r.ReadS32()
		if err != nil {
			return Instruction{}, fmt.Errorf("block type: %w", err)
		}
		return Instruction{Opcode: op, Imm: BlockImm{Type: bt}}, nil

	case OpBr, OpBrIf:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("label index: %w", err)
		}
		return Instruction{Opcode: op, Imm: BranchImm{LabelIdx: idx}}, nil

	case OpBrTable:
		count, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("br_table count: %w", err)
		}
		labels := make([]uint32, count)
		for i := range labels {
			labels[i], err = r.ReadU32()
			if err != nil {
				return Instruction{}, fmt.Errorf("br_table label %d: %w", i, err)
			}
		}
		def, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("br_table default: %w", err)
		}
		return Instruction{Opcode: op, Imm: BrTableImm{Labels: labels, Default: def}}, nil

	case OpCall:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("call target: %w", err)
		}
		return Instruction{Opcode: op, Imm: CallImm{FuncIdx: idx}}, nil

	case OpCallIndirect:
		typeIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("call_indirect type: %w", err)
		}
		tableIdx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("call_indirect table: %w", err)
		}
		return Instruction{Opcode: op, Imm: CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}}, nil

	case OpLocalGet, OpLocalSet, OpLocalTee:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("local index: %w", err)
		}
		return Instruction{Opcode: op, Imm: LocalImm{LocalIdx: idx}}, nil

	case OpGlobalGet, OpGlobalSet:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("global index: %w", err)
		}
		return Instruction{Opcode: op, Imm: GlobalImm{GlobalIdx: idx}}, nil

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		return decodeMemArg(r, op)

	case OpMemorySize, OpMemoryGrow:
		idx, err := r.ReadU32()
		if err != nil {
			return Instruction{}, fmt.Errorf("memory index: %w", err)
		}
		return Instruction{Opcode: op, Imm: MemoryIdxImm{Idx: idx}}, nil

	case OpI32Const:
		v, err := r.ReadS32()
		if err != nil {
			return Instruction{}, fmt.Errorf("i32.const: %w", err)
		}
		return Instruction{Opcode: op, Imm: I32Imm{Value: v}}, nil

	case OpI64Const:
		v, err := r.ReadS64()
		if err != nil {
			return Instruction{}, fmt.Errorf("i64.const: %w", err)
		}
		return Instruction{Opcode: op, Imm: I64Imm{Value: v}}, nil

	case OpF32Const:
		v, err := r.ReadF32()
		if err != nil {
			return Instruction{}, fmt.Errorf("f32.const: %w", err)
		}
		return Instruction{Opcode: op, Imm: F32Imm{Value: v}}, nil

	case OpF64Const:
		v, err := r.ReadF64()
		if err != nil {
			return Instruction{}, fmt.Errorf("f64.const: %w", err)
		}
		return Instruction{Opcode: op, Imm: F64Imm{Value: v}}, nil

	default:
		return Instruction{}, fmt.Errorf("unsupported opcode 0x%02x", op)
	}
}

func decodeMemArg(r *binary.Reader, op byte) (Instruction, error) {
	align, err := r.ReadU32()
	if err != nil {
		return Instruction{}, fmt.Errorf("memarg align: %w", err)
	}
	offset, err := r.ReadU32()
	if err != nil {
		return Instruction{}, fmt.Errorf("memarg offset: %w", err)
	}
	return Instruction{Opcode: op, Imm: MemoryImm{Align: align, Offset: uint64(offset)}}, nil
}

// EncodeInstructions encodes a sequence of instructions to bytes.
func EncodeInstructions(instrs []Instruction) []byte {
	w := binary.NewWriter()
	EncodeInstructionsTo(w, instrs)
	return w.Bytes()
}

// EncodeInstructionsTo encodes a sequence of instructions into an
// existing Writer.
func EncodeInstructionsTo(w *binary.Writer, instrs []Instruction) {
	for _, instr := range instrs {
		EncodeInstructionTo(w, instr)
	}
}

// EncodeInstructionTo encodes a single instruction into an existing
// Writer.
func EncodeInstructionTo(w *binary.Writer, instr Instruction) {
	w.Byte(instr.Opcode)
	switch imm := instr.Imm.(type) {
	case nil:
		// no immediate
	case BlockImm:
		w.WriteS32(imm.Type)
	case BranchImm:
		w.WriteU32(imm.LabelIdx)
	case BrTableImm:
		w.WriteU32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.WriteU32(l)
		}
		w.WriteU32(imm.Default)
	case CallImm:
		w.WriteU32(imm.FuncIdx)
	case CallIndirectImm:
		w.WriteU32(imm.TypeIdx)
		w.WriteU32(imm.TableIdx)
	case LocalImm:
		w.WriteU32(imm.LocalIdx)
	case GlobalImm:
		w.WriteU32(imm.GlobalIdx)
	case MemoryImm:
		w.WriteU32(imm.Align)
		w.WriteU32(uint32(imm.Offset))
	case MemoryIdxImm:
		w.WriteU32(imm.Idx)
	case I32Imm:
		w.WriteS32(imm.Value)
	case I64Imm:
		w.WriteS64(imm.Value)
	case F32Imm:
		w.WriteF32(imm.Value)
	case F64Imm:
		w.WriteF64(imm.Value)
	default:
		panic(fmt.Sprintf("wasm: unknown immediate type %T for opcode 0x%02x", imm, instr.Opcode))
	}
}
