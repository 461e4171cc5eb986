// Package protocol owns the WBXML error contract shared by the codec layers.
//
// Ownership boundary:
// - wire/ byte-level primitives (header, mb_u_int, strings, opaque, tags)
// - wbxml/ single-pass parser, writer and the codepage contract
// - content/ file/folder codepage
// - syncml/ name-only SyncML tag tables
package protocol
