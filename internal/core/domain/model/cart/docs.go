// Package cart implements the session-scoped shopping cart aggregate: priced
// line entries split into an active partition and a saved-for-later partition.
// Entries are identified by the composite key (product, color, spec); no two
// active entries may share a key. The aggregate has a single logical owner per
// session and carries the bookkeeping used by abandoned-cart recovery.
package cart
