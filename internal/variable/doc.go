// Package variable projects the automation host's object tree into
// flat, addressable variable records and dispatches writes back.
//
// This package contains:
//   - Walker: recursive flattening of a subtree into Records with
//     human-readable " / "-joined paths
//   - Page: case-insensitive substring filtering plus paging
//   - Coerce: total, deterministic conversion of untyped input into a
//     variable's declared type
//   - Writer: the two-stage write dispatch (actuate via the owning
//     instance first, direct value write as fallback)
//
// Records are derived on demand and never cached; the host remains
// the single source of truth.
package variable
