// Package mapdata builds the relational map model: provinces, states,
// strategic regions, countries and their supporting tables.
//
// # Loading
//
// Load reads every category from the resolved content roots. Whole-file
// resources (definition.csv, adjacencies.csv, supply nodes, railways,
// unitstacks) come from the highest priority root; keyed categories are
// merged key by key; per-id records (states, regions) are replaced whole by
// later files. Inside one record a repeated key takes its last value.
//
// A missing optional file is not an error. Unreadable or malformed files are
// recorded on the report and skipped. Cancellation is checked per file.
//
// # Indices
//
// Index derives colour -> province, province -> state and province -> region.
// A colour shared by two provinces is an IntegrityError and stays with the
// lower id. A province listed by two states or two regions is an
// IntegrityError too and is left out of that index.
package mapdata
