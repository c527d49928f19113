/*
Package storage provides BoltDB-backed persistence for a PD's restart-recovery
state: the roster of known PDs, the elected schedulerLocation, and the DB
directory.

Payload bytes are never stored here — only DB metadata (GUID, size, home PD,
mode). Reconstructing the live container.PdSpace tree (deques, DbSpace state
machines, EdtProxy suspensions) from this snapshot is pkg/reconciler's job on
startup; this package only gets the bytes onto and off of disk.

# Buckets

	pds        PDRecord, keyed by PDLocation
	scheduler  single fixed key holding the current schedulerLocation
	dbs        types.Db, keyed by GUID

Everything is JSON-encoded inside bbolt's single-file B+tree, matching the
serialization choice used throughout the rest of this module's ambient
stack (transact's own marshalling is the one exception, since that format
has to be bit-exact across PDs rather than merely round-trip within one).
*/
package storage
