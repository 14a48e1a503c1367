package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"map-atlas/core/database"
	"map-atlas/core/logger"
	"map-atlas/core/server"
	"map-atlas/core/source"
	"map-atlas/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full settings tree. Every leaf maps to an environment
// variable named after its path, e.g. game.base_path is GAME_BASE_PATH.
type Config struct {
	Server   server.Config   `mapstructure:"server"`
	Storage  storage.Config  `mapstructure:"storage"`
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	Game     source.Config   `mapstructure:"game"`
}

// LoadConfig reads dir/.env when present, then the environment, over the
// `default` tags of Config.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Game.ModPaths = splitList(cfg.Game.ModPaths)
	cfg.Game.Language = strings.ToLower(strings.TrimSpace(cfg.Game.Language))
	cfg.Game.NativeLanguage = strings.ToLower(strings.TrimSpace(cfg.Game.NativeLanguage))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf key, even with an empty default, so
// AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

func (c *Config) validate() error {
	if c.Game.Language == "" {
		return fmt.Errorf("game.language must not be empty")
	}
	if c.Game.PrimaryPath != "" && c.Game.PrimaryPath == c.Game.BasePath {
		return fmt.Errorf("game.primary_path %q is the base install", c.Game.PrimaryPath)
	}
	return nil
}

// splitList flattens comma separated entries; an env var arrives as one
// element.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
