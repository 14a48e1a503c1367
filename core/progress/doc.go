// Package progress carries progress updates out of background builds.
//
// Cancellation is not part of this package: long operations take a
// context.Context and stop when it is done. A Reporter only ever moves
// information from the worker to whoever is watching, through a bounded
// channel that never blocks the worker.
package progress
