// Package instrument implements the dynamic-analysis instrumentation
// pass: given a parsed MVP wasm.Module, it rewrites every function body
// so that each executed instruction also invokes an imported "hooks"
// function carrying that instruction's operands, result, and static
// location.
//
// Polymorphic instructions (return, call, call_indirect, drop, select,
// local/global access) are monomorphized: one hook import per distinct
// type vector observed in the module, computed by TypeCatalog and
// declared by HookRegistry. Every hook call is stack-preserving: the
// values an instruction would have consumed or produced are spilled
// into fresh locals (LocalAllocator, saveStackToLocals) and reloaded as
// hook arguments, with any i64 split into (low, high) i32 halves
// (package i64split) since the intended host cannot pass a bare i64
// across the import boundary. ControlStack tracks structured control
// flow so branch targets can be resolved to the begin-instruction index
// of their target region, and StaticInfo records per-function
// signatures, global types, and the target labels of every br_table as a
// JSON side table returned alongside the rewritten module.
//
// Binary parsing and emission, and the instruction-level IR itself, are
// the wasm package's concern; this package only ever operates on an
// already-decoded wasm.Module.
package instrument
