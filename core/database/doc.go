// Package database handles the export database connection and schema inspection.
//
// It wraps GORM to configure MySQL connections from the application's
// configuration.
//
// # Connect
//
// Connect builds the DSN (see DSN), applies pool limits and pings the server
// within the configured timeout. The connection is optional: only the export
// command and the export feature need it.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read SHOW COLUMNS so the export feature
// can verify that the atlas tables carry the columns its models write.
//
// # Usage
//
//	db, err := database.Connect(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "atlas_provinces", []string{"id", "color"})
package database
