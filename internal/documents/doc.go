// Package documents manages the on-disk PDF artifacts behind the record
// corpus.
//
// Documents live in exactly one of three partitions: pending (the flat
// documents directory), approved, or rejected. The store exposes read, write,
// list, existence, and relocation primitives plus plain-text sidecar
// snapshots written next to filed documents. PDF magic-byte validation is a
// helper here but callers decide when a failed check is fatal.
package documents
