package source

// Config holds the content roots and language settings of a game install.
type Config struct {
	// BasePath is the game installation directory. It is always the lowest priority root.
	BasePath string `mapstructure:"base_path" default:""`
	// ModPaths lists referenced mod directories in ascending priority (comma separated in env).
	ModPaths []string `mapstructure:"mod_paths" default:""`
	// PrimaryPath is the mod under development. It overrides every other root.
	PrimaryPath string `mapstructure:"primary_path" default:""`
	// Language is the fallback localisation language, scanned before the native one.
	Language string `mapstructure:"language" default:"english"`
	// NativeLanguage is the mod's own localisation language. Empty means same as Language.
	NativeLanguage string `mapstructure:"native_language" default:""`
	// CachePath is where the model cache file is written. Empty disables caching.
	CachePath string `mapstructure:"cache_path" default:""`
	// RequireExecutable names a file that must exist in BasePath (e.g. hoi4.exe). Empty skips the check.
	RequireExecutable string `mapstructure:"require_executable" default:""`
}

// Native returns the effective native language.
func (c Config) Native() string {
	if c.NativeLanguage == "" {
		return c.Language
	}
	return c.NativeLanguage
}
