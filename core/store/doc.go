// Package store publishes finished builds and keeps their history.
//
// A Store holds the current Snapshot behind an atomic pointer. Builds are
// assembled privately and handed to Publish only when complete, so readers
// either see the old snapshot or the new one, never a mix. Undo and Redo move
// between the last published snapshots.
//
// The cache file is a msgpack dump of the model and localisation. It is a
// local shortcut only: a different CacheVersion or root list invalidates it.
package store
