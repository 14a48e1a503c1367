// Package integrity runs consistency checks over the published atlas.
//
// The model loader already reports what it can see file by file. These
// checks look across tables once everything is merged.
//
// # Checks Provided
//
//   - regions: provinces without a strategic region.
//   - states: land provinces without a state.
//   - references: states, regions, adjacencies, railways and supply nodes
//     naming undefined provinces.
//   - owners: state owners that are not countries or have no map colour.
//   - adjacency_rules: adjacencies naming an undefined rule.
//   - bitmap: bitmap colours without a province, provinces absent from the bitmap.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/checks : Lists the checks.
//   - GET /integrity/:check : Runs one check.
package integrity
