package database

// Config is the MySQL target of `export database`. The connection is
// optional; without it the database export endpoints answer 503.
type Config struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// Name is the schema holding the atlas_* tables.
	Name string `mapstructure:"name" default:"atlas"`
	// TimeoutSeconds bounds the ping and every read or write.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

func (c Config) timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 30
	}
	return c.TimeoutSeconds
}
