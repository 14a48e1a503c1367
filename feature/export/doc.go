// Package export publishes atlas snapshots outside the process.
//
// # Storage
//
// ToStorage writes, under atlas/<name>/ in the configured bucket:
//   - views/<view>.png for every rendered view
//   - manifest.json (sequence, roots, table sizes, view errors)
//   - provinces, states, regions, countries, adjacencies and issues as JSON
//
// The bucket is created when missing. Uploads are incremental: an object
// whose ETag already equals the MD5 of the new content is skipped, and
// objects left under the prefix by an older export are removed.
//
// # Drift
//
// Drift reconciles the snapshot with both targets through core/reconcile
// and reports what an export would create, update or delete. Listings are
// cached for DriftTTL and dropped after every export.
//
// # Database
//
// ToDatabase upserts the atlas_provinces, atlas_states, atlas_regions and
// atlas_countries tables in one transaction (ON DUPLICATE KEY UPDATE, in
// batches) and deletes rows whose key the snapshot no longer has.
// VerifySchema compares the tables with the GORM models.
//
// # HTTP Endpoints
//
//   - POST /export/storage/:name
//   - POST /export/database?migrate=true
//   - GET  /export/database/schema
//   - GET  /export/drift/:name
package export
