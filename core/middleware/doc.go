// Package middleware groups the HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or Bearer token).
//   - rayid: assigns a Request ID (RayID) to every request, stores it in
//     Locals for logger.WithRayID and echoes it in the X-Ray-ID header.
//
// Register rayid first so every later log line carries the id.
package middleware
