// Package mirror runs two store.Store backends side by side.
//
// [MirrorStore] exists to move views between the nested-set and the graph encoding
// without downtime, and to check that both encodings answer every query the same way.
// Its [Mode] decides where reads and writes go:
//
//	single      primary only
//	read_only   reads from primary, writes rejected
//	dual_write  writes to both, reads from primary
//	validation  like dual_write; whole-view reads are also run on the secondary and
//	            differences are logged
//	switching   writes to both, reads from secondary
//
// A typical migration copies existing views with [MirrorStore.Sync] under read_only,
// moves to dual_write or validation, then to switching, and finally calls
// [MirrorStore.SwapStores] and returns to single.
//
// NodeIDs are backend specific. Operations that take a NodeID are always resolved by
// the store that serves reads; in the dual modes an UpdateNodeData is mirrored by
// copying the whole updated view to the other store.
package mirror
