// Package wasm implements a minimal WebAssembly MVP binary format
// decoder, encoder, and in-memory module representation.
//
// It supports exactly the feature set of the WebAssembly 1.0 (MVP)
// specification: a single linear memory, a single funcref table, the
// four numeric value types (i32, i64, f32, f64), and structured control
// flow (block, loop, if/else). It does not support reference types
// beyond the implicit table element type, the GC or exception-handling
// proposals, SIMD, atomics, tail calls, or multiple memories/tables.
//
// Function bodies are decoded eagerly into a structured instruction
// sequence ([]Instruction) rather than kept as raw bytes, so that
// callers can inspect and rewrite code without re-parsing it.
package wasm
