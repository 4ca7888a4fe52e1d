package instrument

import "github.com/wippyai/wasm-instrument/wasm"

// LocalAllocator hands out fresh typed locals for a single function
// being rewritten, tracking the function's existing parameter and
// local types so that it can resolve any local index (old or new) to
// its type and produce the updated declared-locals list at the end of
// the rewrite.
type LocalAllocator struct {
	params   []wasm.ValType
	declared []wasm.ValType
	added    []wasm.ValType
}

// NewLocalAllocator builds an allocator for a function with the given
// parameter types and pre-existing declared locals (run-length decoded
// into a flat type list).
func NewLocalAllocator(params []wasm.ValType, existing []wasm.LocalEntry) *LocalAllocator {
	var declared []wasm.ValType
	for _, e := range existing {
		for i := uint32(0); i < e.Count; i++ {
			declared = append(declared, e.ValType)
		}
	}
	return &LocalAllocator{params: params, declared: declared}
}

// AddFreshLocal allocates one new local of the given type and returns
// its index in the function's local index space (which follows params
// then declared locals).
func (la *LocalAllocator) AddFreshLocal(ty wasm.ValType) uint32 {
	idx := uint32(len(la.params) + len(la.declared) + len(la.added))
	la.added = append(la.added, ty)
	return idx
}

// AddFreshLocals allocates one new local per type in tys, in order, and
// returns their indices.
func (la *LocalAllocator) AddFreshLocals(tys []wasm.ValType) []uint32 {
	idxs := make([]uint32, len(tys))
	for i, ty := range tys {
		idxs[i] = la.AddFreshLocal(ty)
	}
	return idxs
}

// TypeOf resolves a local index (parameter, pre-existing, or freshly
// added) to its value type.
func (la *LocalAllocator) TypeOf(localIdx uint32) wasm.ValType {
	if int(localIdx) < len(la.params) {
		return la.params[localIdx]
	}
	off := int(localIdx) - len(la.params)
	if off < len(la.declared) {
		return la.declared[off]
	}
	return la.added[off-len(la.declared)]
}

// Locals returns the function's complete declared-locals list (original
// plus fresh), run-length encoded for serialization.
func (la *LocalAllocator) Locals() []wasm.LocalEntry {
	all := make([]wasm.ValType, 0, len(la.declared)+len(la.added))
	all = append(all, la.declared...)
	all = append(all, la.added...)

	var entries []wasm.LocalEntry
	for _, ty := range all {
		if n := len(entries); n > 0 && entries[n-1].ValType == ty {
			entries[n-1].Count++
			continue
		}
		entries = append(entries, wasm.LocalEntry{Count: 1, ValType: ty})
	}
	return entries
}
