// Package atlas implements the map atlas feature: building, publishing and
// serving snapshots of the game's map data.
//
// # Build Pipeline
//
// Service.Reload runs, in a single writer:
//  1. Resolve content roots (base, mods, primary).
//  2. Merge localisation.
//  3. Load the entity model (mapdata.Load) and index it.
//  4. Decode the base bitmaps (raster.LoadLayers).
//  5. Render the thematic views concurrently.
//
// Everything is built into a private snapshot which is published to the
// store only when the pipeline succeeds. A failed or cancelled build leaves
// the published snapshot untouched. A view that hits an unknown bitmap colour
// is dropped from the snapshot with its error; the other views are kept.
//
// Service.Load is the startup variant: it reuses the on-disk model cache when
// it was written for the same roots.
//
// # Watcher
//
// Watcher follows the content directories of every root with fsnotify and
// triggers Reload once changes settle for the debounce period.
//
// # HTTP Endpoints
//
//   - GET  /atlas/summary              : table sizes, roots, views
//   - GET  /atlas/status               : progress of the running build
//   - GET  /atlas/issues               : problems found by the last build
//   - GET  /atlas/provinces/:id        : province with state and region
//   - GET  /atlas/provinces/at?color=  : province by bitmap colour (r,g,b or #rrggbb)
//   - GET  /atlas/states/:id
//   - GET  /atlas/regions/:id
//   - GET  /atlas/countries/:tag
//   - GET  /atlas/localisation/:key
//   - GET  /atlas/views/:view.:format  : rendered view as png or bmp
//   - POST /atlas/reload, /atlas/undo, /atlas/redo
package atlas
