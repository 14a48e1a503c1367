package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// Watch reloads the atlas when a content root changes.
	Watch bool `mapstructure:"watch" default:"false"`
	// WatchDebounceMs is the quiet period after the last change before a reload.
	WatchDebounceMs int `mapstructure:"watch_debounce_ms" default:"500"`
}

// Debounce returns the watch quiet period, defaulting to 500ms.
func (c Config) Debounce() time.Duration {
	if c.WatchDebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// Address returns the listen address for Port.
func (c Config) Address() string {
	if c.Port == "" {
		return ":8080"
	}
	return ":" + c.Port
}
