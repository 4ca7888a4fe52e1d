package instrument

import (
	"fmt"
	"strings"
)

// Phase names the stage of the instrumentation pipeline in which an
// Error originated.
type Phase string

const (
	PhaseCatalog   Phase = "catalog"
	PhaseHooks     Phase = "hooks"
	PhaseControl   Phase = "control"
	PhaseRewrite   Phase = "rewrite"
	PhaseSerialize Phase = "serialize"
)

// Error provides context when instrumentation fails: invariant
// violations, missing hooks, and unsupported instructions are all
// reported as one of these rather than a bare panic.
type Error struct {
	Cause      error
	Phase      Phase
	Reason     string
	FuncIdx    int
	InstrIdx   int
	HasFuncIdx bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("instrumentation failed")

	if e.Phase != "" {
		b.WriteString(" at ")
		b.WriteString(string(e.Phase))
	}

	if e.HasFuncIdx {
		fmt.Fprintf(&b, " (func %d, instr %d)", e.FuncIdx, e.InstrIdx)
	}

	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// instErr creates an Error not tied to a particular function/instruction.
func instErr(phase Phase, reason string, cause error) *Error {
	return &Error{Phase: phase, Reason: reason, Cause: cause}
}

// instErrAt creates an Error naming the offending function and instruction.
func instErrAt(phase Phase, funcIdx, instrIdx int, reason string, cause error) *Error {
	return &Error{
		Phase:      phase,
		Reason:     reason,
		Cause:      cause,
		FuncIdx:    funcIdx,
		InstrIdx:   instrIdx,
		HasFuncIdx: true,
	}
}
