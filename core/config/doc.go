// Package config provides configuration management for the map atlas.
//
// It uses Viper to load settings from environment variables and an optional
// .env file (godotenv). Defaults come from `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, change watching
//   - Game: base install, mods, primary mod, languages, cache file
//   - Database: MySQL connection details for exports
//   - Storage: S3/MinIO credentials and export bucket
//   - Log: Logging level and format
//
// GAME_MOD_PATHS is a comma separated list in ascending priority.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Game.BasePath)
package config
