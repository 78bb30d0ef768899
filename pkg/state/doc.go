// Package state defines persistence contracts for watch face styles.
//
// A Store loads and saves one encoded style blob per Ref. Resolver layers
// the blobs of several scopes into a userstyle.StyleStack and applies
// mutations with optimistic concurrency:
//
//	Store -> Resolver -> userstyle.NewStyleStack(...).Resolve(...) -> *userstyle.ResolvedStyle
//
// Blobs use the userstyle binary encoding. Meta.SnapshotID is stamped on the
// stack layer built from each blob, so it shows up in ResolvedStyle.Trace and
// in userstyle.layer.applied activity events.
package state
